package models

import (
	"database/sql"
	"time"
)

// GameStatusFinal is the detailed state of a completed game
const GameStatusFinal = "Final"

// Game represents a scheduled or played MLB game
type Game struct {
	ID                     int            `db:"id"`
	MlbID                  int            `db:"mlb_id"`
	Season                 int            `db:"season"`
	GameDate               time.Time      `db:"game_date"`
	ScheduledAt            sql.NullTime   `db:"scheduled_at"`
	GameType               sql.NullString `db:"game_type"`
	Status                 sql.NullString `db:"status"`
	HomeTeamID             int            `db:"home_team_id"`
	AwayTeamID             int            `db:"away_team_id"`
	HomeScore              sql.NullInt32  `db:"home_score"`
	AwayScore              sql.NullInt32  `db:"away_score"`
	Venue                  sql.NullString `db:"venue"`
	DayNight               sql.NullString `db:"day_night"`
	ScheduledInnings       int            `db:"scheduled_innings"`
	HomeProbablePitcherMlb sql.NullInt32  `db:"home_probable_pitcher_mlb_id"`
	AwayProbablePitcherMlb sql.NullInt32  `db:"away_probable_pitcher_mlb_id"`

	// Linescore
	HomeHits       sql.NullInt32  `db:"home_hits"`
	AwayHits       sql.NullInt32  `db:"away_hits"`
	HomeErrors     sql.NullInt32  `db:"home_errors"`
	AwayErrors     sql.NullInt32  `db:"away_errors"`
	CurrentInning  sql.NullInt32  `db:"current_inning"`
	InningState    sql.NullString `db:"inning_state"`
	RunnerOnFirst  bool           `db:"runner_on_first"`
	RunnerOnSecond bool           `db:"runner_on_second"`
	RunnerOnThird  bool           `db:"runner_on_third"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsFinal reports whether the game has been completed
func (g *Game) IsFinal() bool {
	return g.Status.Valid && g.Status.String == GameStatusFinal
}

// GameInning holds per-inning runs, hits and errors for both teams
type GameInning struct {
	GameID     int           `db:"game_id"`
	Inning     int           `db:"inning"`
	AwayRuns   sql.NullInt32 `db:"away_runs"`
	HomeRuns   sql.NullInt32 `db:"home_runs"`
	AwayHits   sql.NullInt32 `db:"away_hits"`
	HomeHits   sql.NullInt32 `db:"home_hits"`
	AwayErrors sql.NullInt32 `db:"away_errors"`
	HomeErrors sql.NullInt32 `db:"home_errors"`
}
