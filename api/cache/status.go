package cache

import (
	"context"
	"time"

	"newsVoice/api/database"
	"newsVoice/api/models"
)

const (
	statusKeyPrefix = "task:status:"
	statusTTL       = 10 * time.Minute
)

type StatusCache struct {
	cache *database.Cache
}

func NewStatusCache(cache *database.Cache) *StatusCache {
	return &StatusCache{cache: cache}
}

func (sc *StatusCache) Get(ctx context.Context, taskID string) (models.TaskStatus, error) {
	data, err := sc.cache.Get(ctx, statusKeyPrefix+taskID)
	if err != nil {
		return "", err
	}
	return models.TaskStatus(data), nil
}

func (sc *StatusCache) Set(ctx context.Context, taskID string, status models.TaskStatus) error {
	return sc.cache.Set(ctx, statusKeyPrefix+taskID, string(status), statusTTL)
}

func (sc *StatusCache) Clear(ctx context.Context) error {
	return sc.cache.DelPattern(ctx, statusKeyPrefix+"*")
}
