package ingestion

import (
	"context"
	"errors"
	"fmt"

	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/normalize"
	"mlbstats/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

// SyncStandings upserts the regular season standings of both leagues
func (in *Ingester) SyncStandings(ctx context.Context, season int) (Result, error) {
	log.Info().Int("season", season).Msg("Starting standings sync")

	records, err := in.api.FetchStandings(ctx, season)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch standings: %w", err)
	}

	var res Result
	for _, rec := range records {
		team, err := in.stores.Teams.GetByMlbID(ctx, rec.Team.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				res.Skipped++
				log.Warn().Int("team_mlb_id", rec.Team.ID).Msg("Skipping standing: team not found")
			} else {
				res.Errors++
				log.Warn().Err(err).Int("team_mlb_id", rec.Team.ID).Msg("Failed to look up standing team")
			}
			continue
		}

		standing := standingFromAPI(rec, team.ID, season)
		created, err := in.stores.Standings.Upsert(ctx, standing)
		if err != nil {
			res.Errors++
			log.Warn().Err(err).Str("team", team.Name).Msg("Failed to upsert standing")
			continue
		}
		res.count(created)
	}

	metrics.RecordStepResult(StepStandings, res.Processed(), res.Skipped+res.Errors)
	log.Info().
		Int("season", season).
		Int("teams", res.Processed()).
		Int("skipped", res.Skipped).
		Msg("Standings sync completed")
	return res, nil
}

func standingFromAPI(rec client.TeamRecord, teamID, season int) *models.Standing {
	s := &models.Standing{
		TeamID:            teamID,
		Season:            season,
		Wins:              rec.Wins,
		Losses:            rec.Losses,
		WinningPct:        models.NullString(rec.WinningPercentage),
		GamesBack:         models.NullString(rec.GamesBack),
		WildCardGamesBack: models.NullString(rec.WildCardGamesBack),
		DivisionRank:      models.NullInt32(normalize.ParseInteger(rec.DivisionRank)),
		LeagueRank:        models.NullInt32(normalize.ParseInteger(rec.LeagueRank)),
		WildCardRank:      models.NullInt32(normalize.ParseInteger(rec.WildCardRank)),
		RunsScored:        models.NullInt32(rec.RunsScored),
		RunsAllowed:       models.NullInt32(rec.RunsAllowed),
		RunDifferential:   models.NullInt32(rec.RunDifferential),
		StreakCode:        models.NullString(rec.Streak.StreakCode),
	}

	if wins, losses, err := normalize.SplitRecord(rec.Records, "home"); err != nil {
		log.Warn().Err(err).Int("team_id", teamID).Msg("Failed to read home record")
	} else {
		s.HomeWins, s.HomeLosses = models.NullInt32(wins), models.NullInt32(losses)
	}
	if wins, losses, err := normalize.SplitRecord(rec.Records, "away"); err != nil {
		log.Warn().Err(err).Int("team_id", teamID).Msg("Failed to read away record")
	} else {
		s.AwayWins, s.AwayLosses = models.NullInt32(wins), models.NullInt32(losses)
	}
	return s
}
