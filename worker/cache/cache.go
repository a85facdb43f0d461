package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key layout matches the api service: task statuses under task:status:,
// in-flight stage markers under article:inflight:.
const (
	statusKeyPrefix   = "task:status:"
	inflightKeyPrefix = "article:inflight:"
	statusTTL         = 10 * time.Minute
)

type StatusCache struct {
	client *redis.Client
}

func NewStatusCache(client *redis.Client) *StatusCache {
	return &StatusCache{client: client}
}

func (c *StatusCache) Set(ctx context.Context, taskID string, status string) error {
	return c.client.Set(ctx, statusKeyPrefix+taskID, status, statusTTL).Err()
}

type Markers struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMarkers(client *redis.Client, ttl time.Duration) *Markers {
	return &Markers{client: client, ttl: ttl}
}

func (m *Markers) Acquire(ctx context.Context, articleID, stage string) (bool, error) {
	return m.client.SetNX(ctx, inflightKeyPrefix+articleID+":"+stage, "1", m.ttl).Result()
}

func (m *Markers) Release(ctx context.Context, articleID, stage string) error {
	return m.client.Del(ctx, inflightKeyPrefix+articleID+":"+stage).Err()
}
