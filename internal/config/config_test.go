package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://statsapi.mlb.com/api/v1", cfg.MlbAPIBaseURL)
	assert.Equal(t, 20, cfg.MlbAPIMaxConcurrency)
	assert.Equal(t, "0 0 * * * *", cfg.CronHourlyGames)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Contains(t, cfg.DatabaseDSN(), "dbname=mlbstats")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabasePassword:     "secret",
			MlbAPIMaxConcurrency: 4,
			HTTPPort:             8080,
			MetricsPort:          9090,
			EnableMetrics:        true,
			EnableScheduler:      true,
			CronDailyStats:       "0 0 6 * * *",
			CronHourlyGames:      "0 0 * * * *",
			CronWeeklyRosters:    "0 0 5 * * MON",
			CronDailyStandings:   "0 0 7 * * *",
			CronSabermetrics:     "0 0 8 * * *",
			CronLeaderboards:     "@daily",
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.DatabasePassword = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.MlbAPIMaxConcurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.MetricsPort = cfg.HTTPPort
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.CronHourlyGames = "every hour"
	assert.ErrorContains(t, cfg.Validate(), "CRON_HOURLY_GAMES")

	cfg.EnableScheduler = false
	assert.NoError(t, cfg.Validate(), "Cron specs are ignored with the scheduler off")
}

const seed = `
[[season]]
season = 2024
lg_woba = "0.310"
woba_scale = "1.24"
lg_r_per_pa = "0.118"
fip_constant = "3.17"
runs_per_win = "9.7"

[[season]]
season = 2025
lg_woba = "0.313"
woba_scale = "1.23"
lg_r_per_pa = "0.120"
fip_constant = "3.15"
runs_per_win = "9.8"
`

func TestLoadLeagueConstants(t *testing.T) {
	path := filepath.Join(t.TempDir(), "constants.toml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	constants, err := LoadLeagueConstants(path)
	require.NoError(t, err)
	require.Len(t, constants, 2)
	assert.Equal(t, 2024, constants[0].Season)
	assert.Equal(t, "0.31", constants[0].LgWoba.String())
	assert.Equal(t, "9.8", constants[1].RunsPerWin.String())
}

func TestDecodeLeagueConstants_Invalid(t *testing.T) {
	_, err := DecodeLeagueConstants(seed + seed)
	assert.ErrorContains(t, err, "listed twice")

	_, err = DecodeLeagueConstants("[[season]]\nseason = 2024\nwoba_scale = \"0\"\nruns_per_win = \"9.7\"\n")
	assert.Error(t, err)

	_, err = LoadLeagueConstants(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
