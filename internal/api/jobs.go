package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"mlbstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Routes holds dependencies for the ingestion handlers
type Routes struct {
	jobs    JobService
	trigger Triggerer
}

type createJobRequest struct {
	JobType string `json:"jobType"`
	Season  *int   `json:"season"`
}

// createJob handles POST /jobs. The job runs in the background; the response is its PENDING snapshot.
func (routes *Routes) createJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	jobType, err := models.ParseJobType(req.JobType)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Season != nil && (*req.Season < 1876 || *req.Season > 2100) {
		writeError(w, fmt.Sprintf("invalid season %d", *req.Season), http.StatusBadRequest)
		return
	}

	job, err := routes.trigger.Trigger(r.Context(), jobType, req.Season, models.TriggerManual, nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.Info().
		Int64("job_id", job.ID).
		Str("job_type", string(job.JobType)).
		Msg("Sync job triggered")
	writeJSON(w, job.Snapshot(), http.StatusAccepted)
}

// listJobs handles GET /jobs?limit=N, newest first
func (routes *Routes) listJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	jobs, err := routes.jobs.Recent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, snapshots(jobs), http.StatusOK)
}

// activeJobs handles GET /jobs/active
func (routes *Routes) activeJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := routes.jobs.Active(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, snapshots(jobs), http.StatusOK)
}

// getJob handles GET /jobs/{id}
func (routes *Routes) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	job, err := routes.jobs.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, job.Snapshot(), http.StatusOK)
}

// cancelJob handles POST /jobs/{id}/cancel. Cancelling a finished job is a conflict.
func (routes *Routes) cancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	job, err := routes.jobs.Cancel(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	log.Info().Int64("job_id", id).Msg("Sync job cancelled")
	writeJSON(w, job.Snapshot(), http.StatusOK)
}

// streamJob handles GET /jobs/{id}/stream as server-sent events named "progress"
func (routes *Routes) streamJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	updates, err := routes.jobs.Subscribe(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for snapshot := range updates {
		data, err := json.Marshal(snapshot)
		if err != nil {
			log.Warn().Err(err).Int64("job_id", id).Msg("Failed to encode progress event")
			continue
		}
		if _, err := fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data); err != nil {
			log.Debug().Err(err).Int64("job_id", id).Msg("Progress stream closed by client")
			return
		}
		flusher.Flush()
	}
}

// freshness handles GET /freshness
func (routes *Routes) freshness(w http.ResponseWriter, r *http.Request) {
	report, err := routes.jobs.Freshness(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, report, http.StatusOK)
}

// freshnessFor handles GET /freshness/{type}
func (routes *Routes) freshnessFor(w http.ResponseWriter, r *http.Request) {
	jobType, err := models.ParseJobType(chiParam(r, "type"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	report, err := routes.jobs.FreshnessFor(r.Context(), jobType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, report, http.StatusOK)
}

func snapshots(jobs []*models.SyncJob) []models.JobSnapshot {
	out := make([]models.JobSnapshot, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Snapshot())
	}
	return out
}
