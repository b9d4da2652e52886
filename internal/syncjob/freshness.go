package syncjob

import (
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"
)

// FreshnessLevel grades how recently a data category was synced
type FreshnessLevel string

const (
	FreshnessFresh    FreshnessLevel = "FRESH"
	FreshnessStale    FreshnessLevel = "STALE"
	FreshnessCritical FreshnessLevel = "CRITICAL"
)

// Freshness describes the last successful sync of one job type
type Freshness struct {
	Type         models.JobType `json:"type"`
	DisplayName  string         `json:"displayName"`
	LastSyncedAt *time.Time     `json:"lastSyncedAt"`
	Level        FreshnessLevel `json:"level"`
	Description  string         `json:"description"`
}

const neverSynced = "Never synced"

// thresholds returns the exclusive upper bounds of the FRESH and STALE bands for a job type
func thresholds(t models.JobType) (fresh, stale time.Duration) {
	const day = 24 * time.Hour

	switch t {
	case models.JobTypeTeams:
		return 7 * day, 30 * day
	case models.JobTypeRosters:
		return 7 * day, 14 * day
	case models.JobTypeGames:
		return time.Hour, 6 * time.Hour
	case models.JobTypeStats, models.JobTypeSabermetrics:
		return 24 * time.Hour, 3 * day
	case models.JobTypeStandings:
		return 15 * time.Minute, 60 * time.Minute
	case models.JobTypeBoxScores, models.JobTypeLinescores:
		return 6 * time.Hour, 24 * time.Hour
	case models.JobTypeFullSync:
		return 24 * time.Hour, 7 * day
	}
	// unknown types are treated like a full sync
	return 24 * time.Hour, 7 * day
}

// Classify grades a sync that completed age ago
func Classify(t models.JobType, age time.Duration) FreshnessLevel {
	if age < 0 {
		age = 0
	}
	fresh, stale := thresholds(t)
	switch {
	case age < fresh:
		return FreshnessFresh
	case age < stale:
		return FreshnessStale
	default:
		return FreshnessCritical
	}
}

// FormatAge renders an age as "Just now", "5 minutes ago", "1 hour ago", "3 days ago" or "2 months ago"
func FormatAge(age time.Duration) string {
	minutes := int(age / time.Minute)
	hours := int(age / time.Hour)
	days := int(age / (24 * time.Hour))

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return plural(minutes, "minute") + " ago"
	case hours < 24:
		return plural(hours, "hour") + " ago"
	case days < 30:
		return plural(days, "day") + " ago"
	default:
		return plural(days/30, "month") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func freshnessOf(t models.JobType, last *models.SyncJob, now time.Time) Freshness {
	f := Freshness{Type: t, DisplayName: t.DisplayName()}
	if last == nil || !last.CompletedAt.Valid {
		f.Level = FreshnessCritical
		f.Description = neverSynced
		return f
	}
	at := last.CompletedAt.Time
	age := now.Sub(at)
	f.LastSyncedAt = &at
	f.Level = Classify(t, age)
	f.Description = FormatAge(age)
	return f
}
