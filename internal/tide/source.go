package tide

import (
	"context"
	"time"

	"github.com/bbernstein/shorewatch/internal/models"
)

// Source provides a tide level series covering a time range
type Source interface {
	Samples(ctx context.Context, start, end time.Time) ([]models.TideSample, error)
}

// StaticSource serves a series already held in memory, such as a site's tide file
type StaticSource struct {
	samples []models.TideSample
}

var _ Source = (*StaticSource)(nil)

func NewStaticSource(samples []models.TideSample) *StaticSource {
	return &StaticSource{samples: SortSamples(samples)}
}

// Samples returns the whole series; range limits are not applied so dates
// outside it still match the nearest endpoint.
func (s *StaticSource) Samples(_ context.Context, _, _ time.Time) ([]models.TideSample, error) {
	if len(s.samples) == 0 {
		return nil, &models.NoTideDataError{Source: "tide file"}
	}
	return s.samples, nil
}
