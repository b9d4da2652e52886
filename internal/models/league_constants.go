package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeagueConstants are the season-level inputs to gWAR
type LeagueConstants struct {
	ID          int             `db:"id" toml:"-"`
	Season      int             `db:"season" toml:"season"`
	LgWoba      decimal.Decimal `db:"lg_woba" toml:"lg_woba"`
	WobaScale   decimal.Decimal `db:"woba_scale" toml:"woba_scale"`
	LgRPerPa    decimal.Decimal `db:"lg_r_per_pa" toml:"lg_r_per_pa"`
	FipConstant decimal.Decimal `db:"fip_constant" toml:"fip_constant"`
	RunsPerWin  decimal.Decimal `db:"runs_per_win" toml:"runs_per_win"`
	CreatedAt   time.Time       `db:"created_at" toml:"-"`
}
