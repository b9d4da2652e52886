package syncjob

import (
	"errors"
	"fmt"

	"mlbstats/ingestion/internal/models"
)

var (
	// ErrJobNotFound is returned when no job has the requested id
	ErrJobNotFound = errors.New("sync job not found")

	// ErrJobTerminal is returned for any mutation of a completed, failed or cancelled job
	ErrJobTerminal = errors.New("sync job already finished")

	// ErrInvalidTransition is returned when a transition is not allowed from the job's current status
	ErrInvalidTransition = errors.New("invalid sync job transition")
)

// ConflictError reports the active job that blocked a new job from being created
type ConflictError struct {
	ExistingJobID int64
	JobType       models.JobType
	Requested     models.JobType
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot start %s sync: %s job %d is already in progress",
		e.Requested, e.JobType, e.ExistingJobID)
}

// IsConflict reports whether err is a *ConflictError
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}
