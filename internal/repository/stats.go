package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// StatsRepository handles season batting and pitching lines
type StatsRepository struct {
	db *Database
}

const battingColumns = `
	id, player_id, team_id, season, game_type,
	games_played, plate_appearances, at_bats, runs, hits, doubles, triples, home_runs, rbi,
	stolen_bases, caught_stealing, walks, strikeouts, extra_base_hits,
	batting_avg, obp, slg, ops, iso, babip, woba, wrc_plus, war,
	oaa, xba, xslg, xwoba, exit_velocity, launch_angle, barrel_pct, hard_hit_pct, sprint_speed,
	gwar, gwar_batting, gwar_baserunning, gwar_fielding, gwar_positional, gwar_replacement,
	created_at, updated_at
`

func scanBatting(row pgx.Row) (*models.BattingStats, error) {
	var s models.BattingStats
	err := row.Scan(
		&s.ID, &s.PlayerID, &s.TeamID, &s.Season, &s.GameType,
		&s.GamesPlayed, &s.PlateAppearances, &s.AtBats, &s.Runs, &s.Hits, &s.Doubles, &s.Triples, &s.HomeRuns, &s.Rbi,
		&s.StolenBases, &s.CaughtStealing, &s.Walks, &s.Strikeouts, &s.ExtraBaseHits,
		&s.BattingAvg, &s.Obp, &s.Slg, &s.Ops, &s.Iso, &s.Babip, &s.Woba, &s.WrcPlus, &s.War,
		&s.Oaa, &s.Xba, &s.Xslg, &s.Xwoba, &s.ExitVelocity, &s.LaunchAngle, &s.BarrelPct, &s.HardHitPct, &s.SprintSpeed,
		&s.Gwar.Total, &s.Gwar.Batting, &s.Gwar.Baserunning, &s.Gwar.Fielding, &s.Gwar.Positional, &s.Gwar.Replacement,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertBatting inserts or replaces a season batting line keyed by (player, team, season, game type)
func (r *StatsRepository) UpsertBatting(ctx context.Context, s *models.BattingStats) (bool, error) {
	if s.GameType == "" {
		s.GameType = models.GameTypeRegular
	}
	query := `
		INSERT INTO player_batting_stats (
			player_id, team_id, season, game_type,
			games_played, plate_appearances, at_bats, runs, hits, doubles, triples, home_runs, rbi,
			stolen_bases, caught_stealing, walks, strikeouts, extra_base_hits,
			batting_avg, obp, slg, ops, iso, babip, woba, wrc_plus, war,
			oaa, xba, xslg, xwoba, exit_velocity, launch_angle, barrel_pct, hard_hit_pct, sprint_speed,
			gwar, gwar_batting, gwar_baserunning, gwar_fielding, gwar_positional, gwar_replacement
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36,
			$37, $38, $39, $40, $41, $42
		)
		ON CONFLICT (player_id, team_id, season, game_type) DO UPDATE SET
			games_played = EXCLUDED.games_played,
			plate_appearances = EXCLUDED.plate_appearances,
			at_bats = EXCLUDED.at_bats,
			runs = EXCLUDED.runs,
			hits = EXCLUDED.hits,
			doubles = EXCLUDED.doubles,
			triples = EXCLUDED.triples,
			home_runs = EXCLUDED.home_runs,
			rbi = EXCLUDED.rbi,
			stolen_bases = EXCLUDED.stolen_bases,
			caught_stealing = EXCLUDED.caught_stealing,
			walks = EXCLUDED.walks,
			strikeouts = EXCLUDED.strikeouts,
			extra_base_hits = EXCLUDED.extra_base_hits,
			batting_avg = EXCLUDED.batting_avg,
			obp = EXCLUDED.obp,
			slg = EXCLUDED.slg,
			ops = EXCLUDED.ops,
			iso = EXCLUDED.iso,
			babip = EXCLUDED.babip,
			woba = COALESCE(EXCLUDED.woba, player_batting_stats.woba),
			wrc_plus = COALESCE(EXCLUDED.wrc_plus, player_batting_stats.wrc_plus),
			war = COALESCE(EXCLUDED.war, player_batting_stats.war),
			oaa = COALESCE(EXCLUDED.oaa, player_batting_stats.oaa),
			xba = COALESCE(EXCLUDED.xba, player_batting_stats.xba),
			xslg = COALESCE(EXCLUDED.xslg, player_batting_stats.xslg),
			xwoba = COALESCE(EXCLUDED.xwoba, player_batting_stats.xwoba),
			exit_velocity = COALESCE(EXCLUDED.exit_velocity, player_batting_stats.exit_velocity),
			launch_angle = COALESCE(EXCLUDED.launch_angle, player_batting_stats.launch_angle),
			barrel_pct = COALESCE(EXCLUDED.barrel_pct, player_batting_stats.barrel_pct),
			hard_hit_pct = COALESCE(EXCLUDED.hard_hit_pct, player_batting_stats.hard_hit_pct),
			sprint_speed = COALESCE(EXCLUDED.sprint_speed, player_batting_stats.sprint_speed),
			gwar = COALESCE(EXCLUDED.gwar, player_batting_stats.gwar),
			gwar_batting = COALESCE(EXCLUDED.gwar_batting, player_batting_stats.gwar_batting),
			gwar_baserunning = COALESCE(EXCLUDED.gwar_baserunning, player_batting_stats.gwar_baserunning),
			gwar_fielding = COALESCE(EXCLUDED.gwar_fielding, player_batting_stats.gwar_fielding),
			gwar_positional = COALESCE(EXCLUDED.gwar_positional, player_batting_stats.gwar_positional),
			gwar_replacement = COALESCE(EXCLUDED.gwar_replacement, player_batting_stats.gwar_replacement),
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0)
	`

	start := time.Now()
	var inserted bool
	err := r.db.Pool.QueryRow(
		ctx, query,
		s.PlayerID, s.TeamID, s.Season, s.GameType,
		s.GamesPlayed, s.PlateAppearances, s.AtBats, s.Runs, s.Hits, s.Doubles, s.Triples, s.HomeRuns, s.Rbi,
		s.StolenBases, s.CaughtStealing, s.Walks, s.Strikeouts, s.ExtraBaseHits,
		s.BattingAvg, s.Obp, s.Slg, s.Ops, s.Iso, s.Babip, s.Woba, s.WrcPlus, s.War,
		s.Oaa, s.Xba, s.Xslg, s.Xwoba, s.ExitVelocity, s.LaunchAngle, s.BarrelPct, s.HardHitPct, s.SprintSpeed,
		s.Gwar.Total, s.Gwar.Batting, s.Gwar.Baserunning, s.Gwar.Fielding, s.Gwar.Positional, s.Gwar.Replacement,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &inserted)
	observe("upsert", "player_batting_stats", start, err)

	if err != nil {
		return false, fmt.Errorf("failed to upsert batting stats: %w", err)
	}
	return inserted, nil
}

// GetBatting retrieves a season batting line by its natural key
func (r *StatsRepository) GetBatting(ctx context.Context, playerID, teamID, season int) (*models.BattingStats, error) {
	s, err := scanBatting(r.db.Pool.QueryRow(ctx, `SELECT `+battingColumns+` FROM player_batting_stats
		WHERE player_id = $1 AND team_id = $2 AND season = $3 AND game_type = $4`,
		playerID, teamID, season, models.GameTypeRegular))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("batting stats not found: player_id=%d season=%d: %w", playerID, season, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batting stats: %w", err)
	}
	return s, nil
}

// ListBattingByPlayer returns a player's batting lines for a season, one per team
func (r *StatsRepository) ListBattingByPlayer(ctx context.Context, playerID, season int) ([]*models.BattingStats, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+battingColumns+` FROM player_batting_stats
		WHERE player_id = $1 AND season = $2 ORDER BY team_id`, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list batting stats: %w", err)
	}
	return collectBatting(rows)
}

// ListBattingBySeason returns every batting line of a season
func (r *StatsRepository) ListBattingBySeason(ctx context.Context, season int) ([]*models.BattingStats, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+battingColumns+` FROM player_batting_stats
		WHERE season = $1 ORDER BY player_id, team_id`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list batting stats: %w", err)
	}
	return collectBatting(rows)
}

func collectBatting(rows pgx.Rows) ([]*models.BattingStats, error) {
	defer rows.Close()

	var out []*models.BattingStats
	for rows.Next() {
		s, err := scanBatting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batting stats: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batting stats: %w", err)
	}
	return out, nil
}

const pitchingColumns = `
	id, player_id, team_id, season, game_type,
	games_played, games_started, wins, losses, saves, innings_pitched,
	hits_allowed, runs_allowed, earned_runs, walks_allowed, strikeouts, home_runs_allowed,
	era, whip, k_per_9, bb_per_9, h_per_9, fip, xfip, war,
	gwar, gwar_pitching, gwar_replacement, created_at, updated_at
`

func scanPitching(row pgx.Row) (*models.PitchingStats, error) {
	var s models.PitchingStats
	err := row.Scan(
		&s.ID, &s.PlayerID, &s.TeamID, &s.Season, &s.GameType,
		&s.GamesPlayed, &s.GamesStarted, &s.Wins, &s.Losses, &s.Saves, &s.InningsPitched,
		&s.HitsAllowed, &s.RunsAllowed, &s.EarnedRuns, &s.WalksAllowed, &s.Strikeouts, &s.HomeRunsAllowed,
		&s.Era, &s.Whip, &s.KPer9, &s.BbPer9, &s.HPer9, &s.Fip, &s.Xfip, &s.War,
		&s.Gwar.Total, &s.Gwar.Pitching, &s.Gwar.Replacement, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertPitching inserts or replaces a season pitching line keyed by (player, team, season, game type)
func (r *StatsRepository) UpsertPitching(ctx context.Context, s *models.PitchingStats) (bool, error) {
	if s.GameType == "" {
		s.GameType = models.GameTypeRegular
	}
	query := `
		INSERT INTO player_pitching_stats (
			player_id, team_id, season, game_type,
			games_played, games_started, wins, losses, saves, innings_pitched,
			hits_allowed, runs_allowed, earned_runs, walks_allowed, strikeouts, home_runs_allowed,
			era, whip, k_per_9, bb_per_9, h_per_9, fip, xfip, war,
			gwar, gwar_pitching, gwar_replacement
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		)
		ON CONFLICT (player_id, team_id, season, game_type) DO UPDATE SET
			games_played = EXCLUDED.games_played,
			games_started = EXCLUDED.games_started,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			saves = EXCLUDED.saves,
			innings_pitched = EXCLUDED.innings_pitched,
			hits_allowed = EXCLUDED.hits_allowed,
			runs_allowed = EXCLUDED.runs_allowed,
			earned_runs = EXCLUDED.earned_runs,
			walks_allowed = EXCLUDED.walks_allowed,
			strikeouts = EXCLUDED.strikeouts,
			home_runs_allowed = EXCLUDED.home_runs_allowed,
			era = EXCLUDED.era,
			whip = EXCLUDED.whip,
			k_per_9 = EXCLUDED.k_per_9,
			bb_per_9 = EXCLUDED.bb_per_9,
			h_per_9 = EXCLUDED.h_per_9,
			fip = COALESCE(EXCLUDED.fip, player_pitching_stats.fip),
			xfip = COALESCE(EXCLUDED.xfip, player_pitching_stats.xfip),
			war = COALESCE(EXCLUDED.war, player_pitching_stats.war),
			gwar = COALESCE(EXCLUDED.gwar, player_pitching_stats.gwar),
			gwar_pitching = COALESCE(EXCLUDED.gwar_pitching, player_pitching_stats.gwar_pitching),
			gwar_replacement = COALESCE(EXCLUDED.gwar_replacement, player_pitching_stats.gwar_replacement),
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0)
	`

	start := time.Now()
	var inserted bool
	err := r.db.Pool.QueryRow(
		ctx, query,
		s.PlayerID, s.TeamID, s.Season, s.GameType,
		s.GamesPlayed, s.GamesStarted, s.Wins, s.Losses, s.Saves, s.InningsPitched,
		s.HitsAllowed, s.RunsAllowed, s.EarnedRuns, s.WalksAllowed, s.Strikeouts, s.HomeRunsAllowed,
		s.Era, s.Whip, s.KPer9, s.BbPer9, s.HPer9, s.Fip, s.Xfip, s.War,
		s.Gwar.Total, s.Gwar.Pitching, s.Gwar.Replacement,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &inserted)
	observe("upsert", "player_pitching_stats", start, err)

	if err != nil {
		return false, fmt.Errorf("failed to upsert pitching stats: %w", err)
	}
	return inserted, nil
}

// ListPitchingByPlayer returns a player's pitching lines for a season, one per team
func (r *StatsRepository) ListPitchingByPlayer(ctx context.Context, playerID, season int) ([]*models.PitchingStats, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+pitchingColumns+` FROM player_pitching_stats
		WHERE player_id = $1 AND season = $2 ORDER BY team_id`, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list pitching stats: %w", err)
	}
	defer rows.Close()

	var out []*models.PitchingStats
	for rows.Next() {
		s, err := scanPitching(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pitching stats: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pitching stats: %w", err)
	}
	return out, nil
}
