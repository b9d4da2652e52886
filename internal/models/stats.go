package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// GameTypeRegular is the natural-key qualifier for regular season stat lines
const GameTypeRegular = "R"

// BattingStats is a player's season batting line for one team
type BattingStats struct {
	ID       int    `db:"id"`
	PlayerID int    `db:"player_id"`
	TeamID   int    `db:"team_id"`
	Season   int    `db:"season"`
	GameType string `db:"game_type"`

	// Counting
	GamesPlayed      sql.NullInt32 `db:"games_played"`
	PlateAppearances sql.NullInt32 `db:"plate_appearances"`
	AtBats           sql.NullInt32 `db:"at_bats"`
	Runs             sql.NullInt32 `db:"runs"`
	Hits             sql.NullInt32 `db:"hits"`
	Doubles          sql.NullInt32 `db:"doubles"`
	Triples          sql.NullInt32 `db:"triples"`
	HomeRuns         sql.NullInt32 `db:"home_runs"`
	Rbi              sql.NullInt32 `db:"rbi"`
	StolenBases      sql.NullInt32 `db:"stolen_bases"`
	CaughtStealing   sql.NullInt32 `db:"caught_stealing"`
	Walks            sql.NullInt32 `db:"walks"`
	Strikeouts       sql.NullInt32 `db:"strikeouts"`
	ExtraBaseHits    sql.NullInt32 `db:"extra_base_hits"`

	// Rates
	BattingAvg decimal.NullDecimal `db:"batting_avg"`
	Obp        decimal.NullDecimal `db:"obp"`
	Slg        decimal.NullDecimal `db:"slg"`
	Ops        decimal.NullDecimal `db:"ops"`
	Iso        decimal.NullDecimal `db:"iso"`
	Babip      decimal.NullDecimal `db:"babip"`

	// Sabermetrics
	Woba    decimal.NullDecimal `db:"woba"`
	WrcPlus decimal.NullDecimal `db:"wrc_plus"`
	War     decimal.NullDecimal `db:"war"`

	// Leaderboards
	Oaa          sql.NullInt32       `db:"oaa"`
	Xba          decimal.NullDecimal `db:"xba"`
	Xslg         decimal.NullDecimal `db:"xslg"`
	Xwoba        decimal.NullDecimal `db:"xwoba"`
	ExitVelocity decimal.NullDecimal `db:"exit_velocity"`
	LaunchAngle  decimal.NullDecimal `db:"launch_angle"`
	BarrelPct    decimal.NullDecimal `db:"barrel_pct"`
	HardHitPct   decimal.NullDecimal `db:"hard_hit_pct"`
	SprintSpeed  decimal.NullDecimal `db:"sprint_speed"`

	Gwar GwarFields

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PitchingStats is a player's season pitching line for one team
type PitchingStats struct {
	ID       int    `db:"id"`
	PlayerID int    `db:"player_id"`
	TeamID   int    `db:"team_id"`
	Season   int    `db:"season"`
	GameType string `db:"game_type"`

	GamesPlayed     sql.NullInt32       `db:"games_played"`
	GamesStarted    sql.NullInt32       `db:"games_started"`
	Wins            sql.NullInt32       `db:"wins"`
	Losses          sql.NullInt32       `db:"losses"`
	Saves           sql.NullInt32       `db:"saves"`
	InningsPitched  decimal.NullDecimal `db:"innings_pitched"`
	HitsAllowed     sql.NullInt32       `db:"hits_allowed"`
	RunsAllowed     sql.NullInt32       `db:"runs_allowed"`
	EarnedRuns      sql.NullInt32       `db:"earned_runs"`
	WalksAllowed    sql.NullInt32       `db:"walks_allowed"`
	Strikeouts      sql.NullInt32       `db:"strikeouts"`
	HomeRunsAllowed sql.NullInt32       `db:"home_runs_allowed"`

	Era    decimal.NullDecimal `db:"era"`
	Whip   decimal.NullDecimal `db:"whip"`
	KPer9  decimal.NullDecimal `db:"k_per_9"`
	BbPer9 decimal.NullDecimal `db:"bb_per_9"`
	HPer9  decimal.NullDecimal `db:"h_per_9"`

	Fip  decimal.NullDecimal `db:"fip"`
	Xfip decimal.NullDecimal `db:"xfip"`
	War  decimal.NullDecimal `db:"war"`

	Gwar GwarFields

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GwarFields are the stored gWAR results attached to a stat line.
// Batting lines use Batting through Replacement, pitching lines use Pitching and Replacement.
type GwarFields struct {
	Total       decimal.NullDecimal `db:"gwar"`
	Batting     decimal.NullDecimal `db:"gwar_batting"`
	Baserunning decimal.NullDecimal `db:"gwar_baserunning"`
	Fielding    decimal.NullDecimal `db:"gwar_fielding"`
	Positional  decimal.NullDecimal `db:"gwar_positional"`
	Pitching    decimal.NullDecimal `db:"gwar_pitching"`
	Replacement decimal.NullDecimal `db:"gwar_replacement"`
}

// GwarComponents is the result of a gWAR computation.
// Components are unrounded run values; Summary is wins rounded to one decimal.
type GwarComponents struct {
	Summary     decimal.Decimal
	Batting     decimal.Decimal
	Baserunning decimal.Decimal
	Fielding    decimal.Decimal
	Positional  decimal.Decimal
	Pitching    decimal.Decimal
	Replacement decimal.Decimal
}

// BattingFields returns the components rounded for storage on a batting line
func (c GwarComponents) BattingFields() GwarFields {
	return GwarFields{
		Total:       valid(c.Summary),
		Batting:     valid(c.Batting.Round(1)),
		Baserunning: valid(c.Baserunning.Round(1)),
		Fielding:    valid(c.Fielding.Round(1)),
		Positional:  valid(c.Positional.Round(1)),
		Replacement: valid(c.Replacement.Round(1)),
	}
}

// PitchingFields returns the components rounded for storage on a pitching line
func (c GwarComponents) PitchingFields() GwarFields {
	return GwarFields{
		Total:       valid(c.Summary),
		Pitching:    valid(c.Pitching.Round(1)),
		Replacement: valid(c.Replacement.Round(1)),
	}
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
