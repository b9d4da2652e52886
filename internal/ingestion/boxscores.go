package ingestion

import (
	"context"
	"errors"
	"fmt"

	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/normalize"
	"mlbstats/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

// SyncBoxScores stores player game lines for final games that have none yet
func (in *Ingester) SyncBoxScores(ctx context.Context, season int) (Result, error) {
	games, err := in.stores.Games.ListFinalWithoutBoxScore(ctx, season)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list games without box scores: %w", err)
	}
	log.Info().Int("season", season).Int("games", len(games)).Msg("Starting box scores sync")

	players := newPlayerLookup(in.stores.Players)
	var res Result
	for i, game := range games {
		if i > 0 {
			if err := pace(ctx, in.boxScoreDelay); err != nil {
				return res, err
			}
		}

		if err := in.syncBoxScore(ctx, players, game); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Errors++
			log.Warn().Err(err).Int("game_pk", game.MlbID).Msg("Failed to sync box score")
			continue
		}
		res.Created++
	}

	metrics.RecordStepResult(StepBoxScores, res.Processed(), res.Skipped+res.Errors)
	log.Info().
		Int("season", season).
		Int("games", res.Created).
		Int("errors", res.Errors).
		Msg("Box scores sync completed")
	return res, nil
}

func (in *Ingester) syncBoxScore(ctx context.Context, players *playerLookup, game *models.Game) error {
	payload, err := in.api.FetchBoxScore(ctx, game.MlbID)
	if err != nil {
		return err
	}
	home, away, err := normalize.ParseBoxScore(payload)
	if err != nil {
		return err
	}

	var (
		batting  []models.PlayerGameBatting
		pitching []models.PlayerGamePitching
	)
	for _, side := range []struct {
		teamID int
		lines  normalize.BoxScoreSide
	}{{game.HomeTeamID, home}, {game.AwayTeamID, away}} {
		for _, b := range side.lines.Batting {
			playerID, err := players.resolve(ctx, b.PlayerMlbID, b.FullName)
			if err != nil {
				return err
			}
			batting = append(batting, models.PlayerGameBatting{
				GameID:       game.ID,
				PlayerID:     playerID,
				TeamID:       side.teamID,
				BattingOrder: models.NullInt32(b.BattingOrder),
				AtBats:       models.NullInt32(b.AtBats),
				Runs:         models.NullInt32(b.Runs),
				Hits:         models.NullInt32(b.Hits),
				Doubles:      models.NullInt32(b.Doubles),
				Triples:      models.NullInt32(b.Triples),
				HomeRuns:     models.NullInt32(b.HomeRuns),
				Rbi:          models.NullInt32(b.Rbi),
				Walks:        models.NullInt32(b.Walks),
				Strikeouts:   models.NullInt32(b.Strikeouts),
				StolenBases:  models.NullInt32(b.StolenBases),
				LeftOnBase:   models.NullInt32(b.LeftOnBase),
			})
		}
		for _, p := range side.lines.Pitching {
			playerID, err := players.resolve(ctx, p.PlayerMlbID, p.FullName)
			if err != nil {
				return err
			}
			pitching = append(pitching, models.PlayerGamePitching{
				GameID:          game.ID,
				PlayerID:        playerID,
				TeamID:          side.teamID,
				IsStarter:       p.IsStarter,
				InningsPitched:  models.NullDecimal(p.InningsPitched),
				HitsAllowed:     models.NullInt32(p.HitsAllowed),
				RunsAllowed:     models.NullInt32(p.RunsAllowed),
				EarnedRuns:      models.NullInt32(p.EarnedRuns),
				Walks:           models.NullInt32(p.Walks),
				Strikeouts:      models.NullInt32(p.Strikeouts),
				HomeRunsAllowed: models.NullInt32(p.HomeRunsAllowed),
				PitchCount:      models.NullInt32(p.PitchCount),
			})
		}
	}

	if len(batting) == 0 && len(pitching) == 0 {
		return fmt.Errorf("box score for game %d has no player lines", game.MlbID)
	}
	return in.stores.BoxScores.SaveGame(ctx, batting, pitching)
}

// playerLookup resolves MLB person ids to stored player ids, creating a minimal player for
// anyone who appears in a box score without being on a synced roster
type playerLookup struct {
	store PlayerStore
	ids   map[int]int
}

func newPlayerLookup(store PlayerStore) *playerLookup {
	return &playerLookup{store: store, ids: make(map[int]int)}
}

func (l *playerLookup) resolve(ctx context.Context, mlbID int, fullName string) (int, error) {
	if id, ok := l.ids[mlbID]; ok {
		return id, nil
	}

	p, err := l.store.GetByMlbID(ctx, mlbID)
	if errors.Is(err, repository.ErrNotFound) {
		p = &models.Player{MlbID: mlbID, FullName: fullName, Active: true}
		if _, err = l.store.Upsert(ctx, p); err == nil {
			log.Debug().Int("mlb_id", mlbID).Str("player", fullName).Msg("Created player from box score")
		}
	}
	if err != nil {
		return 0, err
	}

	l.ids[mlbID] = p.ID
	return p.ID, nil
}
