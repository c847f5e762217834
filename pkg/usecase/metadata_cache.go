package usecase

import (
	"sync"
	"time"

	"github.com/secmon-lab/fredboard/pkg/domain/model"
)

type cachedMetadata struct {
	meta      *model.SeriesMetadata
	expiresAt time.Time
}

// metadataCache keeps series metadata for a fixed TTL. Only existing series
// are cached so a series created upstream becomes visible on the next lookup.
type metadataCache struct {
	cache sync.Map
	ttl   time.Duration
	now   func() time.Time
}

func newMetadataCache(ttl time.Duration, now func() time.Time) *metadataCache {
	return &metadataCache{ttl: ttl, now: now}
}

func (c *metadataCache) get(seriesID string) (*model.SeriesMetadata, bool) {
	val, ok := c.cache.Load(seriesID)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedMetadata)
	if c.now().After(cached.expiresAt) {
		c.cache.Delete(seriesID)
		return nil, false
	}

	copied := *cached.meta
	return &copied, true
}

func (c *metadataCache) set(seriesID string, meta *model.SeriesMetadata) {
	if meta == nil {
		return
	}
	copied := *meta
	c.cache.Store(seriesID, &cachedMetadata{
		meta:      &copied,
		expiresAt: c.now().Add(c.ttl),
	})
}
