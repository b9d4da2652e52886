package models

import (
	"database/sql"
	"time"
)

// Player represents a person appearing on an MLB roster
type Player struct {
	ID            int            `db:"id"`
	MlbID         int            `db:"mlb_id"`
	FullName      string         `db:"full_name"`
	FirstName     sql.NullString `db:"first_name"`
	LastName      sql.NullString `db:"last_name"`
	PrimaryNumber sql.NullString `db:"primary_number"`
	BirthDate     sql.NullTime   `db:"birth_date"`
	Height        sql.NullString `db:"height"`
	Weight        sql.NullInt32  `db:"weight"`
	Bats          sql.NullString `db:"bats"`
	Throws        sql.NullString `db:"throws"`
	Position      sql.NullString `db:"position"`
	PositionType  sql.NullString `db:"position_type"`
	Active        bool           `db:"active"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// IsIncomplete reports whether biographical fields are missing and a full fetch is due
func (p *Player) IsIncomplete() bool {
	return !p.Bats.Valid || !p.Height.Valid || !p.BirthDate.Valid
}

// IsPitcher reports whether pitching stats should be requested
func (p *Player) IsPitcher() bool {
	return (p.PositionType.Valid && p.PositionType.String == "Pitcher") ||
		(p.Position.Valid && p.Position.String == "P")
}

// RosterEntry places a player on a team for a season
type RosterEntry struct {
	ID           int            `db:"id"`
	TeamID       int            `db:"team_id"`
	PlayerID     int            `db:"player_id"`
	Season       int            `db:"season"`
	JerseyNumber sql.NullString `db:"jersey_number"`
	Position     sql.NullString `db:"position"`
	Status       sql.NullString `db:"status"`
	StartDate    sql.NullTime   `db:"start_date"`
	CreatedAt    time.Time      `db:"created_at"`
}
