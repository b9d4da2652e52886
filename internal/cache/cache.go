// Package cache stores short-lived upstream responses in Redis and evicts the read caches
// that become stale after an ingestion step.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mlbstats/ingestion/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "mlbstats"

// Cache groups invalidated by ingestion steps
const (
	GroupTeams     = "teams"
	GroupPlayers   = "players"
	GroupGames     = "games"
	GroupStandings = "standings"
	GroupStats     = "stats"
	GroupLeaders   = "leaders"
	GroupUpstream  = "upstream"
)

// Cache is the subset of cache behaviour the ingestion pipeline relies on
type Cache interface {
	Get(ctx context.Context, group, key string) ([]byte, bool, error)
	Set(ctx context.Context, group, key string, value []byte, ttl time.Duration) error
	EvictGroups(ctx context.Context, groups ...string) error
}

// Key builds the namespaced Redis key for an entry
func Key(group, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, group, key)
}

// Config holds Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache implements Cache on go-redis
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache wraps an existing client
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// Connect opens a client and verifies it with PING
func Connect(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	log.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("Redis connection established")
	return &RedisCache{client: client}, nil
}

var _ Cache = (*RedisCache)(nil)

// Get returns the cached value and whether it was present
func (c *RedisCache) Get(ctx context.Context, group, key string) ([]byte, bool, error) {
	start := time.Now()
	defer func() { metrics.RecordCacheOperation("get", time.Since(start).Seconds()) }()

	value, err := c.client.Get(ctx, Key(group, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss()
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	metrics.RecordCacheHit()
	return value, true, nil
}

// Set stores a value with a TTL
func (c *RedisCache) Set(ctx context.Context, group, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	defer func() { metrics.RecordCacheOperation("set", time.Since(start).Seconds()) }()

	if err := c.client.Set(ctx, Key(group, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// EvictGroups deletes every key under the given groups
func (c *RedisCache) EvictGroups(ctx context.Context, groups ...string) error {
	start := time.Now()
	defer func() { metrics.RecordCacheOperation("evict", time.Since(start).Seconds()) }()

	for _, group := range groups {
		var (
			cursor  uint64
			evicted int
		)
		pattern := Key(group, "*")
		for {
			keys, next, err := c.client.Scan(ctx, cursor, pattern, 500).Result()
			if err != nil {
				return fmt.Errorf("redis scan %s: %w", pattern, err)
			}
			if len(keys) > 0 {
				n, err := c.client.Del(ctx, keys...).Result()
				if err != nil {
					return fmt.Errorf("redis del: %w", err)
				}
				evicted += int(n)
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
		metrics.RecordCacheEviction(group, evicted)
		log.Debug().Str("group", group).Int("keys", evicted).Msg("Evicted cache group")
	}
	return nil
}

// Health pings Redis
func (c *RedisCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Nop is a Cache that stores nothing, used when Redis is disabled
type Nop struct{}

var _ Cache = Nop{}

func (Nop) Get(context.Context, string, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, string, []byte, time.Duration) error { return nil }

func (Nop) EvictGroups(context.Context, ...string) error { return nil }
