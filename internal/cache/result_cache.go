package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bbernstein/shorewatch/internal/config"
	"github.com/bbernstein/shorewatch/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// ResultStore is the durable layer behind the result cache
type ResultStore interface {
	GetRecords(ctx context.Context, siteID, kind string) ([]models.ResultRecord, error)
	ReplaceRecords(ctx context.Context, siteID, kind string, records []models.ResultRecord) error
}

var _ ResultStore = (*DynamoResultStore)(nil)

// LRUCacheEntry wraps the cached data with metadata
type LRUCacheEntry struct {
	Data      *models.CrossDistanceSeries
	ExpiresAt time.Time
}

// ResultCache keeps recent site series in memory in front of a ResultStore.
// Either layer may be disabled through the cache configuration.
type ResultCache struct {
	lru    *lru.Cache[string, *LRUCacheEntry]
	store  ResultStore
	config *config.CacheConfig
	ttl    time.Duration
	clock  clock

	lruHits     atomic.Uint64
	lruMisses   atomic.Uint64
	storeHits   atomic.Uint64
	storeMisses atomic.Uint64
}

func NewResultCache(store ResultStore, cacheConfig *config.CacheConfig) (*ResultCache, error) {
	if cacheConfig == nil {
		cacheConfig = config.GetCacheConfig()
	}

	lruCache, err := lru.New[string, *LRUCacheEntry](cacheConfig.ResultLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &ResultCache{
		lru:    lruCache,
		store:  store,
		config: cacheConfig,
		ttl:    cacheConfig.GetResultLRUTTL(),
		clock:  systemClock{},
	}, nil
}

func getCacheKey(siteID, kind string) string {
	return fmt.Sprintf("%s:%s", siteID, kind)
}

// Get returns the stored series of one kind for a site, or nil if none is
// cached. transectIDs fixes the column order; nil sorts the stored ids.
func (c *ResultCache) Get(ctx context.Context, siteID, kind string, transectIDs []string) (*models.CrossDistanceSeries, error) {
	key := getCacheKey(siteID, kind)
	if c.config.EnableLRUCache {
		if entry, ok := c.lru.Get(key); ok {
			if c.clock.Now().Before(entry.ExpiresAt) {
				c.lruHits.Add(1)
				return entry.Data, nil
			}
			c.lru.Remove(key)
		}
		c.lruMisses.Add(1)
	}

	if !c.config.EnableDynamoCache || c.store == nil {
		return nil, nil
	}

	records, err := c.store.GetRecords(ctx, siteID, kind)
	if err != nil {
		return nil, fmt.Errorf("getting results from store: %w", err)
	}
	if len(records) == 0 {
		c.storeMisses.Add(1)
		return nil, nil
	}
	c.storeHits.Add(1)

	series, err := models.SeriesFromRecords(records, transectIDs)
	if err != nil {
		return nil, err
	}
	c.addToLRU(key, series)
	return series, nil
}

// Save stores a series in both layers, replacing what was stored for the kind
func (c *ResultCache) Save(ctx context.Context, siteID, kind string, series *models.CrossDistanceSeries) error {
	c.addToLRU(getCacheKey(siteID, kind), series)

	if !c.config.EnableDynamoCache || c.store == nil {
		return nil
	}
	if err := c.store.ReplaceRecords(ctx, siteID, kind, models.RecordsFromSeries(siteID, kind, series)); err != nil {
		return fmt.Errorf("saving results to store: %w", err)
	}

	log.Debug().Str("site", siteID).Str("kind", kind).Int("dates", len(series.Dates)).Msg("Saved results")
	return nil
}

func (c *ResultCache) addToLRU(key string, series *models.CrossDistanceSeries) {
	if !c.config.EnableLRUCache {
		return
	}
	c.lru.Add(key, &LRUCacheEntry{
		Data:      series,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
}

// GetCacheStats returns statistics about cache hits and misses
func (c *ResultCache) GetCacheStats() map[string]uint64 {
	return map[string]uint64{
		"lru_hits":     c.lruHits.Load(),
		"lru_misses":   c.lruMisses.Load(),
		"store_hits":   c.storeHits.Load(),
		"store_misses": c.storeMisses.Load(),
	}
}
