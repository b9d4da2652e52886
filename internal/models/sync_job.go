package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// JobType identifies the data category a sync job ingests
type JobType string

const (
	JobTypeFullSync     JobType = "FULL_SYNC"
	JobTypeTeams        JobType = "TEAMS"
	JobTypeRosters      JobType = "ROSTERS"
	JobTypeGames        JobType = "GAMES"
	JobTypeStats        JobType = "STATS"
	JobTypeStandings    JobType = "STANDINGS"
	JobTypeBoxScores    JobType = "BOX_SCORES"
	JobTypeLinescores   JobType = "LINESCORES"
	JobTypeSabermetrics JobType = "SABERMETRICS"
)

// AllJobTypes lists every job type in display order
var AllJobTypes = []JobType{
	JobTypeFullSync,
	JobTypeTeams,
	JobTypeRosters,
	JobTypeGames,
	JobTypeStats,
	JobTypeStandings,
	JobTypeBoxScores,
	JobTypeLinescores,
	JobTypeSabermetrics,
}

// ParseJobType accepts the canonical name in any case
func ParseJobType(s string) (JobType, error) {
	candidate := JobType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range AllJobTypes {
		if t == candidate {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown job type: %q", s)
}

// DisplayName returns a human readable label
func (t JobType) DisplayName() string {
	switch t {
	case JobTypeFullSync:
		return "Full Sync"
	case JobTypeTeams:
		return "Teams"
	case JobTypeRosters:
		return "Rosters"
	case JobTypeGames:
		return "Games"
	case JobTypeStats:
		return "Player Stats"
	case JobTypeStandings:
		return "Standings"
	case JobTypeBoxScores:
		return "Box Scores"
	case JobTypeLinescores:
		return "Linescores"
	case JobTypeSabermetrics:
		return "Sabermetrics"
	}
	return string(t)
}

// JobStatus is the lifecycle state of a sync job
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusCancelled JobStatus = "CANCELLED"
)

// IsActive reports whether the status still holds a conflict lock
func (s JobStatus) IsActive() bool {
	return s == JobStatusPending || s == JobStatusRunning
}

// IsTerminal reports whether no further transitions are allowed
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// TriggerType records what started a job
type TriggerType string

const (
	TriggerManual    TriggerType = "MANUAL"
	TriggerScheduled TriggerType = "SCHEDULED"
)

// SyncJob represents one ingestion run
type SyncJob struct {
	ID             int64          `db:"id"`
	JobType        JobType        `db:"job_type"`
	Status         JobStatus      `db:"status"`
	Season         sql.NullInt32  `db:"season"`
	TriggeredBy    TriggerType    `db:"triggered_by"`
	ActorID        sql.NullInt64  `db:"triggered_by_user_id"`
	TotalItems     sql.NullInt32  `db:"total_items"`
	ProcessedItems int            `db:"processed_items"`
	CurrentStep    sql.NullString `db:"current_step"`
	StartedAt      sql.NullTime   `db:"started_at"`
	CompletedAt    sql.NullTime   `db:"completed_at"`
	RecordsCreated int            `db:"records_created"`
	RecordsUpdated int            `db:"records_updated"`
	ErrorCount     int            `db:"error_count"`
	ErrorMessage   sql.NullString `db:"error_message"`
	CreatedAt      time.Time      `db:"created_at"`
}

// ProgressPercentage is min(100, processed*100/total), or 0 while total is unknown
func (j *SyncJob) ProgressPercentage() int {
	if !j.TotalItems.Valid || j.TotalItems.Int32 <= 0 {
		return 0
	}
	pct := j.ProcessedItems * 100 / int(j.TotalItems.Int32)
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// Clone returns a copy safe to hand to other goroutines
func (j *SyncJob) Clone() *SyncJob {
	c := *j
	return &c
}

// JobSnapshot is the progress event payload sent to observers
type JobSnapshot struct {
	ID                 int64       `json:"id"`
	JobType            JobType     `json:"jobType"`
	Status             JobStatus   `json:"status"`
	Season             *int        `json:"season"`
	TriggeredBy        TriggerType `json:"triggeredBy"`
	ProcessedItems     int         `json:"processedItems"`
	TotalItems         *int        `json:"totalItems"`
	ProgressPercentage int         `json:"progressPercentage"`
	CurrentStep        *string     `json:"currentStep"`
	StartedAt          *time.Time  `json:"startedAt"`
	CompletedAt        *time.Time  `json:"completedAt"`
	RecordsCreated     int         `json:"recordsCreated"`
	RecordsUpdated     int         `json:"recordsUpdated"`
	ErrorCount         int         `json:"errorCount"`
	ErrorMessage       *string     `json:"errorMessage"`
}

// Snapshot converts the job to its observer representation
func (j *SyncJob) Snapshot() JobSnapshot {
	s := JobSnapshot{
		ID:                 j.ID,
		JobType:            j.JobType,
		Status:             j.Status,
		TriggeredBy:        j.TriggeredBy,
		ProcessedItems:     j.ProcessedItems,
		ProgressPercentage: j.ProgressPercentage(),
		RecordsCreated:     j.RecordsCreated,
		RecordsUpdated:     j.RecordsUpdated,
		ErrorCount:         j.ErrorCount,
	}
	if j.Season.Valid {
		v := int(j.Season.Int32)
		s.Season = &v
	}
	if j.TotalItems.Valid {
		v := int(j.TotalItems.Int32)
		s.TotalItems = &v
	}
	if j.CurrentStep.Valid {
		v := j.CurrentStep.String
		s.CurrentStep = &v
	}
	if j.StartedAt.Valid {
		v := j.StartedAt.Time
		s.StartedAt = &v
	}
	if j.CompletedAt.Valid {
		v := j.CompletedAt.Time
		s.CompletedAt = &v
	}
	if j.ErrorMessage.Valid {
		v := j.ErrorMessage.String
		s.ErrorMessage = &v
	}
	return s
}

// NullSeason wraps an optional season for storage
func NullSeason(season *int) sql.NullInt32 {
	if season == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*season), Valid: true}
}

// CurrentSeason returns the season year for t
func CurrentSeason(t time.Time) int {
	return t.Year()
}
