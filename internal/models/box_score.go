package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// PlayerGameBatting is a player's batting line for a single game
type PlayerGameBatting struct {
	ID           int           `db:"id"`
	GameID       int           `db:"game_id"`
	PlayerID     int           `db:"player_id"`
	TeamID       int           `db:"team_id"`
	BattingOrder sql.NullInt32 `db:"batting_order"`
	AtBats       sql.NullInt32 `db:"at_bats"`
	Runs         sql.NullInt32 `db:"runs"`
	Hits         sql.NullInt32 `db:"hits"`
	Doubles      sql.NullInt32 `db:"doubles"`
	Triples      sql.NullInt32 `db:"triples"`
	HomeRuns     sql.NullInt32 `db:"home_runs"`
	Rbi          sql.NullInt32 `db:"rbi"`
	Walks        sql.NullInt32 `db:"walks"`
	Strikeouts   sql.NullInt32 `db:"strikeouts"`
	StolenBases  sql.NullInt32 `db:"stolen_bases"`
	LeftOnBase   sql.NullInt32 `db:"left_on_base"`
}

// PlayerGamePitching is a player's pitching line for a single game
type PlayerGamePitching struct {
	ID              int                 `db:"id"`
	GameID          int                 `db:"game_id"`
	PlayerID        int                 `db:"player_id"`
	TeamID          int                 `db:"team_id"`
	IsStarter       bool                `db:"is_starter"`
	InningsPitched  decimal.NullDecimal `db:"innings_pitched"`
	HitsAllowed     sql.NullInt32       `db:"hits_allowed"`
	RunsAllowed     sql.NullInt32       `db:"runs_allowed"`
	EarnedRuns      sql.NullInt32       `db:"earned_runs"`
	Walks           sql.NullInt32       `db:"walks"`
	Strikeouts      sql.NullInt32       `db:"strikeouts"`
	HomeRunsAllowed sql.NullInt32       `db:"home_runs_allowed"`
	PitchCount      sql.NullInt32       `db:"pitch_count"`
}
