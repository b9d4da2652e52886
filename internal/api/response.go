package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"mlbstats/ingestion/internal/syncjob"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, map[string]string{"error": message}, statusCode)
}

// writeServiceError maps job service errors to status codes
func writeServiceError(w http.ResponseWriter, err error) {
	var conflict *syncjob.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, conflictResponse{
			ExistingJobID: conflict.ExistingJobID,
			JobType:       string(conflict.JobType),
			Message:       conflict.Error(),
		}, http.StatusConflict)
	case errors.Is(err, syncjob.ErrJobNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, syncjob.ErrJobTerminal), errors.Is(err, syncjob.ErrInvalidTransition):
		writeError(w, err.Error(), http.StatusConflict)
	default:
		log.Error().Err(err).Msg("Request failed")
		writeError(w, "internal server error", http.StatusInternalServerError)
	}
}

type conflictResponse struct {
	ExistingJobID int64  `json:"existingJobId"`
	JobType       string `json:"jobType"`
	Message       string `json:"message"`
}

func chiParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

func jobIDParam(r *http.Request) (int64, error) {
	raw := chiParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", raw)
	}
	return id, nil
}
