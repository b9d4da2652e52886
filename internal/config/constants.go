package config

import (
	"fmt"

	"mlbstats/ingestion/internal/models"

	"github.com/BurntSushi/toml"
)

// leagueConstantsFile is the layout of the LEAGUE_CONSTANTS_FILE seed:
//
//	[[season]]
//	season = 2024
//	lg_woba = "0.310"
//	woba_scale = "1.24"
//	lg_r_per_pa = "0.118"
//	fip_constant = "3.17"
//	runs_per_win = "9.7"
type leagueConstantsFile struct {
	Seasons []models.LeagueConstants `toml:"season"`
}

// LoadLeagueConstants reads per-season gWAR constants from a TOML file
func LoadLeagueConstants(path string) ([]models.LeagueConstants, error) {
	var file leagueConstantsFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode league constants %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in league constants %s: %v", path, undecoded)
	}
	return parseLeagueConstants(file.Seasons)
}

// DecodeLeagueConstants reads constants from TOML text
func DecodeLeagueConstants(text string) ([]models.LeagueConstants, error) {
	var file leagueConstantsFile
	if _, err := toml.Decode(text, &file); err != nil {
		return nil, fmt.Errorf("failed to decode league constants: %w", err)
	}
	return parseLeagueConstants(file.Seasons)
}

func parseLeagueConstants(seasons []models.LeagueConstants) ([]models.LeagueConstants, error) {
	seen := make(map[int]bool, len(seasons))
	for _, lc := range seasons {
		if lc.Season < 1871 {
			return nil, fmt.Errorf("invalid season %d in league constants", lc.Season)
		}
		if seen[lc.Season] {
			return nil, fmt.Errorf("season %d listed twice in league constants", lc.Season)
		}
		seen[lc.Season] = true
		if lc.WobaScale.IsZero() || lc.RunsPerWin.IsZero() {
			return nil, fmt.Errorf("season %d: woba_scale and runs_per_win must be non-zero", lc.Season)
		}
	}
	return seasons, nil
}
