// Command manualsync runs one sync from the command line against the configured database.
// Tracked syncs are recorded as MANUAL jobs and respect the same conflict rules as the API.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
