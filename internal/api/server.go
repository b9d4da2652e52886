// Package api exposes sync job control, live progress streams and data freshness over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/syncjob"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// JobService is the job query and control surface the handlers use
type JobService interface {
	Get(ctx context.Context, id int64) (*models.SyncJob, error)
	Recent(ctx context.Context, limit int) ([]*models.SyncJob, error)
	Active(ctx context.Context) ([]*models.SyncJob, error)
	Cancel(ctx context.Context, id int64) (*models.SyncJob, error)
	Subscribe(ctx context.Context, id int64) (<-chan models.JobSnapshot, error)
	Freshness(ctx context.Context) ([]syncjob.Freshness, error)
	FreshnessFor(ctx context.Context, jobType models.JobType) (syncjob.Freshness, error)
}

// Triggerer starts sync jobs in the background
type Triggerer interface {
	Trigger(ctx context.Context, jobType models.JobType, season *int, trigger models.TriggerType, actorID *int64) (*models.SyncJob, error)
}

// NewServer creates the HTTP router with every ingestion route mounted under /api/ingestion
func NewServer(jobs JobService, trigger Triggerer) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})
	r.Mount("/api/ingestion", Router(jobs, trigger))
	return r
}

// Router returns the ingestion routes
func Router(jobs JobService, trigger Triggerer) http.Handler {
	r := chi.NewRouter()
	routes := &Routes{jobs: jobs, trigger: trigger}

	r.Post("/jobs", routes.createJob)
	r.Get("/jobs", routes.listJobs)
	r.Get("/jobs/active", routes.activeJobs)
	r.Get("/jobs/{id}", routes.getJob)
	r.Post("/jobs/{id}/cancel", routes.cancelJob)
	r.Get("/jobs/{id}/stream", routes.streamJob)
	r.Get("/freshness", routes.freshness)
	r.Get("/freshness/{type}", routes.freshnessFor)
	return r
}

const requestIDHeader = "X-Request-ID"

// RequestID tags each request with a UUID, reusing one supplied by the caller
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
