package ingestion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

// SyncRosters loads each team's 40-man roster, creating players on first sight
func (in *Ingester) SyncRosters(ctx context.Context, season int) (Result, error) {
	log.Info().Int("season", season).Msg("Starting rosters sync")

	teams, err := in.stores.Teams.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list teams: %w", err)
	}

	var res Result
	for _, team := range teams {
		entries, err := in.api.FetchRoster(ctx, team.MlbID, season)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Errors++
			log.Warn().Err(err).Str("team", team.Name).Msg("Failed to fetch roster")
			continue
		}

		for _, entry := range entries {
			player, err := in.ensurePlayer(ctx, entry)
			if err != nil {
				res.Errors++
				log.Warn().Err(err).Int("mlb_id", entry.Person.ID).Msg("Failed to resolve roster player")
				continue
			}

			created, err := in.stores.Rosters.InsertIfAbsent(ctx, &models.RosterEntry{
				TeamID:       team.ID,
				PlayerID:     player.ID,
				Season:       season,
				JerseyNumber: models.NullString(entry.JerseyNumber),
				Position:     models.NullString(entry.Position.Abbreviation),
				Status:       models.NullString(entry.Status.Code),
			})
			switch {
			case err != nil:
				res.Errors++
				log.Warn().Err(err).Int("player_id", player.ID).Str("team", team.Name).Msg("Failed to save roster entry")
			case created:
				res.Created++
			default:
				res.Skipped++
			}
		}

		log.Debug().Str("team", team.Name).Int("entries", len(entries)).Msg("Roster processed")
	}

	metrics.RecordStepResult(StepRosters, res.Processed(), res.Skipped+res.Errors)
	log.Info().
		Int("season", season).
		Int("added", res.Created).
		Int("existing", res.Skipped).
		Int("errors", res.Errors).
		Msg("Rosters sync completed")
	return res, nil
}

// ensurePlayer returns the stored player, fetching full details when the player is new or incomplete.
// When the detail fetch fails a new player is stored with the roster's name and position.
func (in *Ingester) ensurePlayer(ctx context.Context, entry client.RosterEntry) (*models.Player, error) {
	existing, err := in.stores.Players.GetByMlbID(ctx, entry.Person.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil && !existing.IsIncomplete() {
		return existing, nil
	}

	var player *models.Player
	person, err := in.api.FetchPerson(ctx, entry.Person.ID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if existing != nil {
			return existing, nil
		}
		log.Warn().Err(err).Int("mlb_id", entry.Person.ID).Msg("Player details unavailable, storing roster data")
		player = &models.Player{
			MlbID:        entry.Person.ID,
			FullName:     entry.Person.FullName,
			Position:     models.NullString(entry.Position.Abbreviation),
			PositionType: models.NullString(entry.Position.Type),
			Active:       true,
		}
	} else {
		player = playerFromAPI(person)
		if player.FullName == "" {
			player.FullName = entry.Person.FullName
		}
	}

	if _, err := in.stores.Players.Upsert(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func playerFromAPI(p *client.Person) *models.Player {
	player := &models.Player{
		MlbID:         p.ID,
		FullName:      p.FullName,
		FirstName:     models.NullString(p.FirstName),
		LastName:      models.NullString(p.LastName),
		PrimaryNumber: models.NullString(p.PrimaryNumber),
		Height:        models.NullString(p.Height),
		Weight:        models.NullInt32(p.Weight),
		Bats:          models.NullString(p.BatSide.Code),
		Throws:        models.NullString(p.PitchHand.Code),
		Position:      models.NullString(p.PrimaryPosition.Abbreviation),
		PositionType:  models.NullString(p.PrimaryPosition.Type),
		Active:        p.Active,
	}
	if born, err := time.Parse("2006-01-02", p.BirthDate); err == nil {
		player.BirthDate = sql.NullTime{Time: born, Valid: true}
	}
	return player
}
