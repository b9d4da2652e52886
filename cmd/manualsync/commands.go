package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mlbstats/ingestion/internal/cache"
	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/config"
	"mlbstats/ingestion/internal/gwar"
	"mlbstats/ingestion/internal/ingestion"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/repository"
	"mlbstats/ingestion/internal/syncjob"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// syncCommand maps a subcommand to the job it runs. An empty job type runs the leaderboards untracked.
type syncCommand struct {
	use     string
	short   string
	jobType models.JobType
}

var syncCommands = []syncCommand{
	{"full", "Sync teams, rosters, games, stats and standings in order", models.JobTypeFullSync},
	{"teams", "Sync teams", models.JobTypeTeams},
	{"rosters", "Sync active rosters and their players", models.JobTypeRosters},
	{"games", "Sync the regular season schedule", models.JobTypeGames},
	{"stats", "Sync season batting and pitching lines", models.JobTypeStats},
	{"standings", "Sync division standings", models.JobTypeStandings},
	{"boxscores", "Sync per-game player lines for final games, then linescores", models.JobTypeBoxScores},
	{"linescores", "Sync inning-by-inning scoring for final games", models.JobTypeLinescores},
	{"sabermetrics", "Sync advanced metrics, apply gWAR and refresh leaderboards", models.JobTypeSabermetrics},
	{"leaderboards", "Refresh Statcast leaderboards without recording a job", ""},
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "manualsync",
		Short:        "Run a single MLB data sync",
		SilenceUsage: true,
	}
	root.PersistentFlags().Int("season", 0, "Season to sync (defaults to the current season)")
	root.PersistentFlags().Bool("migrate", false, "Apply database migrations before syncing")

	for _, sc := range syncCommands {
		root.AddCommand(&cobra.Command{
			Use:   sc.use,
			Short: sc.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runSync(cmd, sc.jobType)
			},
		})
	}
	return root
}

// seasonFlag returns nil when --season was not given
func seasonFlag(cmd *cobra.Command) (*int, error) {
	season, err := cmd.Flags().GetInt("season")
	if err != nil {
		return nil, fmt.Errorf("failed to get season flag: %w", err)
	}
	if season == 0 {
		return nil, nil
	}
	if season < 1876 || season > 2100 {
		return nil, fmt.Errorf("invalid season %d", season)
	}
	return &season, nil
}

func runSync(cmd *cobra.Command, jobType models.JobType) error {
	season, err := seasonFlag(cmd)
	if err != nil {
		return err
	}
	migrate, err := cmd.Flags().GetBool("migrate")
	if err != nil {
		return fmt.Errorf("failed to get migrate flag: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	// The CLI never reads cached responses, but evicting keeps a running worker's cache honest
	var responseCache cache.Cache = cache.Nop{}
	if cfg.RedisEnabled {
		redisCache, err := cache.Connect(ctx, cache.Config{Addr: cfg.RedisAddr(), Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, cache groups will not be evicted")
		} else {
			defer redisCache.Close()
			responseCache = redisCache
		}
	}

	ingester := ingestion.NewIngester(
		client.NewClient(client.Options{
			BaseURL:        cfg.MlbAPIBaseURL,
			Timeout:        cfg.MlbAPITimeout,
			MaxConcurrency: cfg.MlbAPIMaxConcurrency,
			MaxRetries:     cfg.MlbAPIMaxRetries,
		}),
		client.NewSavantClient(cfg.SavantBaseURL, cfg.MlbAPITimeout, cfg.MlbAPIMaxRetries),
		ingestion.StoresFromDatabase(db),
		gwar.NewCalculator(db.Constants),
		ingestion.WithPacing(cfg.BoxScoreDelay, cfg.LinescoreDelay),
	)
	jobs := syncjob.NewService(db.Jobs, syncjob.NewChannelBroadcaster(0))
	orch := ingestion.NewOrchestrator(ingester, jobs, responseCache)
	defer orch.Close()

	start := time.Now()
	if jobType == "" {
		s := models.CurrentSeason(time.Now())
		if season != nil {
			s = *season
		}
		res, err := orch.RunLeaderboards(ctx, s)
		if err != nil {
			return err
		}
		log.Info().
			Int("season", s).
			Int("updated", res.Updated).
			Int("errors", res.Errors).
			Dur("duration", time.Since(start)).
			Msg("Leaderboards refreshed")
		return nil
	}

	job, err := orch.Run(ctx, jobType, season, models.TriggerManual)
	if err != nil {
		return err
	}
	log.Info().
		Int64("job_id", job.ID).
		Str("job_type", string(job.JobType)).
		Str("status", string(job.Status)).
		Int("created", job.RecordsCreated).
		Int("updated", job.RecordsUpdated).
		Int("errors", job.ErrorCount).
		Dur("duration", time.Since(start)).
		Msg("Sync finished")
	return nil
}
