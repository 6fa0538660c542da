// Package cache keeps per-user stats in Redis so the bell poll does not hit
// Postgres every tick.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"notification-center/internal/models"
)

// ErrMiss is returned when a key is not cached.
var ErrMiss = errors.New("cache miss")

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client, ttl: time.Minute}, nil
}

func statsKey(userID int64) string {
	return fmt.Sprintf("notification-center:stats:%d", userID)
}

func (c *Cache) GetStats(ctx context.Context, userID int64) (models.Stats, error) {
	val, err := c.client.Get(ctx, statsKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Stats{}, ErrMiss
		}
		return models.Stats{}, fmt.Errorf("failed to get cached stats: %w", err)
	}

	var s models.Stats
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return models.Stats{}, fmt.Errorf("failed to decode cached stats: %w", err)
	}
	return s, nil
}

func (c *Cache) SetStats(ctx context.Context, userID int64, s models.Stats) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := c.client.Set(ctx, statsKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache stats: %w", err)
	}
	return nil
}

// InvalidateStats drops the cached entry after any write touching the user's
// feed.
func (c *Cache) InvalidateStats(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, statsKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
