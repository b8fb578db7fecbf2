package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/bbernstein/shorewatch/internal/tide"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// TideCache memoizes a tide source per requested range so warm invocations
// do not refetch the same station data.
type TideCache struct {
	source tide.Source
	name   string
	lru    *lru.Cache[string, []models.TideSample]
}

var _ tide.Source = (*TideCache)(nil)

// NewTideCache wraps source; name distinguishes sources sharing a key space,
// typically the station id.
func NewTideCache(source tide.Source, name string, size int) (*TideCache, error) {
	lruCache, err := lru.New[string, []models.TideSample](size)
	if err != nil {
		return nil, fmt.Errorf("creating tide LRU cache: %w", err)
	}
	return &TideCache{source: source, name: name, lru: lruCache}, nil
}

func (c *TideCache) Samples(ctx context.Context, start, end time.Time) ([]models.TideSample, error) {
	key := fmt.Sprintf("%s:%s:%s", c.name, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if samples, ok := c.lru.Get(key); ok {
		log.Debug().Str("key", key).Msg("Tide cache hit")
		return samples, nil
	}

	samples, err := c.source.Samples(ctx, start, end)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, samples)
	return samples, nil
}
