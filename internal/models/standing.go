package models

import (
	"database/sql"
	"time"
)

// Standing is a team's regular season record
type Standing struct {
	ID                int            `db:"id"`
	TeamID            int            `db:"team_id"`
	Season            int            `db:"season"`
	Wins              int            `db:"wins"`
	Losses            int            `db:"losses"`
	WinningPct        sql.NullString `db:"winning_pct"`
	GamesBack         sql.NullString `db:"games_back"`
	WildCardGamesBack sql.NullString `db:"wild_card_games_back"`
	DivisionRank      sql.NullInt32  `db:"division_rank"`
	LeagueRank        sql.NullInt32  `db:"league_rank"`
	WildCardRank      sql.NullInt32  `db:"wild_card_rank"`
	RunsScored        sql.NullInt32  `db:"runs_scored"`
	RunsAllowed       sql.NullInt32  `db:"runs_allowed"`
	RunDifferential   sql.NullInt32  `db:"run_differential"`
	StreakCode        sql.NullString `db:"streak_code"`
	HomeWins          sql.NullInt32  `db:"home_wins"`
	HomeLosses        sql.NullInt32  `db:"home_losses"`
	AwayWins          sql.NullInt32  `db:"away_wins"`
	AwayLosses        sql.NullInt32  `db:"away_losses"`
	UpdatedAt         time.Time      `db:"updated_at"`
}
