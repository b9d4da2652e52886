package models

import (
	"database/sql"
	"strings"
	"time"
)

// Team represents an MLB club
type Team struct {
	ID              int            `db:"id"`
	MlbID           int            `db:"mlb_id"`
	Name            string         `db:"name"`
	Abbreviation    sql.NullString `db:"abbreviation"`
	LocationName    sql.NullString `db:"location_name"`
	VenueName       sql.NullString `db:"venue_name"`
	League          sql.NullString `db:"league"`
	Division        sql.NullString `db:"division"`
	FirstYearOfPlay sql.NullString `db:"first_year_of_play"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// ShortDivision reduces "American League East" style names to East, Central or West
func ShortDivision(name string) string {
	switch {
	case strings.Contains(name, "East"):
		return "East"
	case strings.Contains(name, "Central"):
		return "Central"
	case strings.Contains(name, "West"):
		return "West"
	}
	return name
}
