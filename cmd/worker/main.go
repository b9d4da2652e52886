package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mlbstats/ingestion/internal/api"
	"mlbstats/ingestion/internal/cache"
	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/config"
	"mlbstats/ingestion/internal/gwar"
	"mlbstats/ingestion/internal/ingestion"
	"mlbstats/ingestion/internal/metrics"
	"mlbstats/ingestion/internal/repository"
	"mlbstats/ingestion/internal/scheduler"
	"mlbstats/ingestion/internal/syncjob"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting MLB stats ingestion worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize database connection
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	// Jobs left PENDING or RUNNING by a previous process would block new ones forever
	orphaned, err := db.Jobs.FailOrphaned(ctx, "Worker restarted before the job finished")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to clean up orphaned sync jobs")
	}
	if orphaned > 0 {
		log.Warn().Int64("count", orphaned).Msg("Failed orphaned sync jobs")
	}

	if cfg.LeagueConstantsFile != "" {
		seasons, err := config.LoadLeagueConstants(cfg.LeagueConstantsFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.LeagueConstantsFile).Msg("Failed to load league constants")
		}
		if err := db.Constants.Seed(ctx, seasons); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed league constants")
		}
	}

	// Initialize Redis cache
	var responseCache cache.Cache = cache.Nop{}
	if cfg.RedisEnabled {
		redisCache, err := cache.Connect(ctx, cache.Config{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			defer redisCache.Close()
			responseCache = redisCache
		}
	}

	// Upstream clients
	mlb := client.NewClient(client.Options{
		BaseURL:        cfg.MlbAPIBaseURL,
		Timeout:        cfg.MlbAPITimeout,
		MaxConcurrency: cfg.MlbAPIMaxConcurrency,
		MaxRetries:     cfg.MlbAPIMaxRetries,
		Cache:          responseCache,
		CacheTTL:       cfg.CacheTTL,
	})
	savant := client.NewSavantClient(cfg.SavantBaseURL, cfg.MlbAPITimeout, cfg.MlbAPIMaxRetries)
	log.Info().Str("base_url", cfg.MlbAPIBaseURL).Msg("MLB Stats API client initialized")

	// Sync pipeline
	jobs := syncjob.NewService(db.Jobs, syncjob.NewChannelBroadcaster(0), syncjob.WithStreamTimeout(cfg.SSETimeout))
	ingester := ingestion.NewIngester(
		mlb,
		savant,
		ingestion.StoresFromDatabase(db),
		gwar.NewCalculator(db.Constants),
		ingestion.WithPacing(cfg.BoxScoreDelay, cfg.LinescoreDelay),
	)
	orch := ingestion.NewOrchestrator(ingester, jobs, responseCache)

	sched := scheduler.NewScheduler(cfg, orch)
	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           api.NewServer(jobs, orch),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.EnableMetrics {
		metricsServer = newMetricsServer(cfg.MetricsPort, db)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serve(apiServer, "api") })
	if metricsServer != nil {
		g.Go(func() error { return serve(metricsServer, "metrics") })
	}
	g.Go(func() error {
		reportRuntimeStats(gctx, db)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		// Graceful shutdown
		if cfg.EnableScheduler {
			log.Info().Msg("Shutting down scheduler...")
			sched.Stop()
		}
		log.Info().Msg("Waiting for running sync jobs...")
		orch.Close()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		var errs []error
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker stopped with error")
	}

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// serve runs srv until it is shut down
func serve(srv *http.Server, name string) error {
	log.Info().Str("server", name).Str("addr", srv.Addr).Msg("Starting HTTP server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server failed: %w", name, err)
	}
	return nil
}

// newMetricsServer builds the Prometheus metrics HTTP server
func newMetricsServer(port int, db *repository.Database) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// reportRuntimeStats updates the uptime and connection pool gauges until ctx is done
func reportRuntimeStats(ctx context.Context, db *repository.Database) {
	startTime := time.Now()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			db.PoolStats()
		case <-ctx.Done():
			return
		}
	}
}
