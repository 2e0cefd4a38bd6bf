// Package cache stores the dashboard metrics snapshot in Redis under a single key.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nadmax/tasktracker/internal/dashboard"
	"github.com/redis/go-redis/v9"
)

const MetricsKey = "dashboard:metrics"

type MetricsCache struct {
	client *redis.Client
	key    string
}

var _ dashboard.Cache = (*MetricsCache)(nil)

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func NewMetricsCache(client *redis.Client) *MetricsCache {
	return &MetricsCache{
		client: client,
		key:    MetricsKey,
	}
}

// Get returns the stored snapshot, or ok == false when the key is absent or
// has expired. An entry that no longer decodes is reported as a miss.
func (c *MetricsCache) Get(ctx context.Context) (*dashboard.Snapshot, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var snapshot dashboard.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		slog.Warn("Discarding undecodable metrics cache entry", "key", c.key, "error", err)
		return nil, false, nil
	}

	return &snapshot, true, nil
}

func (c *MetricsCache) Put(ctx context.Context, snapshot *dashboard.Snapshot, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("invalid metrics cache ttl %s", ttl)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return c.client.Set(ctx, c.key, data, ttl).Err()
}

// Invalidate deletes the entry. Deleting an absent key is not an error.
func (c *MetricsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

func (c *MetricsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *MetricsCache) Close() error {
	return c.client.Close()
}
