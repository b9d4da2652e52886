package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
type Config struct {
	// MLB Stats API
	MlbAPIBaseURL        string        `envconfig:"MLB_API_BASE_URL" default:"https://statsapi.mlb.com/api/v1"`
	MlbAPITimeout        time.Duration `envconfig:"MLB_API_TIMEOUT" default:"30s"`
	MlbAPIMaxConcurrency int           `envconfig:"MLB_API_MAX_CONCURRENCY" default:"20"`
	MlbAPIMaxRetries     int           `envconfig:"MLB_API_MAX_RETRIES" default:"3"`

	// Baseball Savant leaderboards
	SavantBaseURL string `envconfig:"SAVANT_BASE_URL" default:"https://baseballsavant.mlb.com"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"mlbstats"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"mlbstats"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP API
	HTTPPort   int           `envconfig:"HTTP_PORT" default:"8080"`
	SSETimeout time.Duration `envconfig:"SSE_TIMEOUT" default:"30m"`

	// Scheduler (cron specs with a leading seconds field; an empty spec disables the entry)
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	CronDailyStats     string `envconfig:"CRON_DAILY_STATS" default:"0 0 6 * * *"`
	CronHourlyGames    string `envconfig:"CRON_HOURLY_GAMES" default:"0 0 * * * *"`
	CronWeeklyRosters  string `envconfig:"CRON_WEEKLY_ROSTERS" default:"0 0 5 * * MON"`
	CronDailyStandings string `envconfig:"CRON_DAILY_STANDINGS" default:"0 0 7 * * *"`
	CronSabermetrics   string `envconfig:"CRON_SABERMETRICS" default:"0 0 8 * * *"`
	CronLeaderboards   string `envconfig:"CRON_LEADERBOARDS" default:"0 30 8 * * *"`

	// Ingestion pacing
	BoxScoreDelay  time.Duration `envconfig:"BOX_SCORE_DELAY" default:"100ms"`
	LinescoreDelay time.Duration `envconfig:"LINESCORE_DELAY" default:"50ms"`

	// Caching
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// Seed file for per-season gWAR constants
	LeagueConstantsFile string `envconfig:"LEAGUE_CONSTANTS_FILE" default:""`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.MlbAPIMaxConcurrency < 1 {
		return fmt.Errorf("MLB_API_MAX_CONCURRENCY must be at least 1")
	}

	if c.MlbAPIMaxRetries < 0 {
		return fmt.Errorf("MLB_API_MAX_RETRIES must not be negative")
	}

	if c.HTTPPort == c.MetricsPort && c.EnableMetrics {
		return fmt.Errorf("HTTP_PORT and METRICS_PORT must differ")
	}

	if c.EnableScheduler {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		for name, spec := range c.CronSpecs() {
			if spec == "" {
				continue
			}
			if _, err := parser.Parse(spec); err != nil {
				return fmt.Errorf("%s is not a valid cron spec: %w", name, err)
			}
		}
	}

	return nil
}

// CronSpecs returns the scheduler specs keyed by their environment variable
func (c *Config) CronSpecs() map[string]string {
	return map[string]string{
		"CRON_DAILY_STATS":     c.CronDailyStats,
		"CRON_HOURLY_GAMES":    c.CronHourlyGames,
		"CRON_WEEKLY_ROSTERS":  c.CronWeeklyRosters,
		"CRON_DAILY_STANDINGS": c.CronDailyStandings,
		"CRON_SABERMETRICS":    c.CronSabermetrics,
		"CRON_LEADERBOARDS":    c.CronLeaderboards,
	}
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
