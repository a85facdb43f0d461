package cache

import (
	"context"
	"time"

	"newsVoice/api/database"
	"newsVoice/api/models"
)

const inflightKeyPrefix = "article:inflight:"

// InflightMarkers guards each (article, variant) stage with a SetNX
// compare-and-set so two concurrent requests cannot both win. The TTL
// is a backstop against a worker crashing without releasing.
type InflightMarkers struct {
	cache *database.Cache
	ttl   time.Duration
}

func NewInflightMarkers(cache *database.Cache, ttl time.Duration) *InflightMarkers {
	return &InflightMarkers{cache: cache, ttl: ttl}
}

func inflightKey(articleID string, variant models.AudioVariant) string {
	return inflightKeyPrefix + articleID + ":" + string(variant)
}

// Acquire reports true when this caller won the marker.
func (m *InflightMarkers) Acquire(ctx context.Context, articleID string, variant models.AudioVariant) (bool, error) {
	return m.cache.SetNX(ctx, inflightKey(articleID, variant), "1", m.ttl)
}

func (m *InflightMarkers) Release(ctx context.Context, articleID string, variant models.AudioVariant) error {
	return m.cache.Del(ctx, inflightKey(articleID, variant))
}

func (m *InflightMarkers) Clear(ctx context.Context) error {
	return m.cache.DelPattern(ctx, inflightKeyPrefix+"*")
}
