package ingestion

import (
	"context"
	"fmt"

	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// SyncTeams upserts every major league club
func (in *Ingester) SyncTeams(ctx context.Context) (Result, error) {
	log.Info().Msg("Starting teams sync")

	teams, err := in.api.FetchTeams(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch teams: %w", err)
	}

	var res Result
	for _, t := range teams {
		created, err := in.stores.Teams.Upsert(ctx, teamFromAPI(t))
		if err != nil {
			res.Errors++
			log.Warn().Err(err).Int("mlb_id", t.ID).Str("team", t.Name).Msg("Failed to upsert team")
			continue
		}
		res.count(created)
	}

	metrics.RecordStepResult(StepTeams, res.Processed(), res.Skipped+res.Errors)
	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("errors", res.Errors).
		Msg("Teams sync completed")
	return res, nil
}

func teamFromAPI(t client.Team) *models.Team {
	return &models.Team{
		MlbID:           t.ID,
		Name:            t.Name,
		Abbreviation:    models.NullString(t.Abbreviation),
		LocationName:    models.NullString(t.LocationName),
		VenueName:       models.NullString(t.Venue.Name),
		League:          models.NullString(t.League.Name),
		Division:        models.NullString(models.ShortDivision(t.Division.Name)),
		FirstYearOfPlay: models.NullString(t.FirstYearOfPlay),
	}
}
