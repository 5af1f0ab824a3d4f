// Package cache keeps recently fetched game stats in Redis so that several
// processes watching the same slate share one upstream fetch per game.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rewired-gh/slatewatch/internal/logger"
	"github.com/rewired-gh/slatewatch/internal/models"
)

const (
	DefaultTTL      = 10 * time.Second
	DefaultFinalTTL = 6 * time.Hour
)

// StatsFetcher returns the normalized stats of one game.
type StatsFetcher interface {
	FetchGameStats(ctx context.Context, gameID string) (*models.GameStats, error)
}

// Store is the subset of the Redis command set the cache uses.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCache decorates a StatsFetcher with a Redis read-through cache.
// Redis failures fall back to the wrapped fetcher.
type RedisCache struct {
	store    Store
	next     StatsFetcher
	ttl      time.Duration
	finalTTL time.Duration
}

// NewRedisCache wraps next. Non-positive TTLs take the defaults.
func NewRedisCache(store Store, next StatsFetcher, ttl, finalTTL time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if finalTTL <= 0 {
		finalTTL = DefaultFinalTTL
	}
	return &RedisCache{store: store, next: next, ttl: ttl, finalTTL: finalTTL}
}

// NewClient opens a Redis client and checks the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// FetchGameStats returns cached stats when present and fetches otherwise.
func (c *RedisCache) FetchGameStats(ctx context.Context, gameID string) (*models.GameStats, error) {
	key := statsKey(gameID)

	data, err := c.store.Get(ctx, key).Result()
	switch {
	case err == nil:
		var gs models.GameStats
		if err := json.Unmarshal([]byte(data), &gs); err == nil {
			logger.Debug("Cache hit for game %s", gameID)
			return &gs, nil
		}
		logger.Warn("Discarding unreadable cache entry %s", key)
	case errors.Is(err, redis.Nil):
	default:
		logger.Warn("Cache read failed for game %s: %v", gameID, err)
	}

	gs, err := c.next.FetchGameStats(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(gs); err != nil {
		logger.Warn("Failed to encode stats for game %s: %v", gameID, err)
	} else if err := c.store.Set(ctx, key, payload, c.ttlFor(gs)).Err(); err != nil {
		logger.Warn("Cache write failed for game %s: %v", gameID, err)
	}
	return gs, nil
}

func (c *RedisCache) ttlFor(gs *models.GameStats) time.Duration {
	if gs.Status.Completed {
		return c.finalTTL
	}
	return c.ttl
}

func statsKey(gameID string) string {
	return fmt.Sprintf("game:%s:stats", gameID)
}
