package shoreline

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/spatial/r2"
)

// Options configures the intersection engine
type Options struct {
	// AlongDist is the half-width of the along-shore band around each transect
	AlongDist float64
	// MaxOriginDist ignores points farther than this from the origin. 0 disables.
	MaxOriginDist float64
	// Workers > 1 computes transects concurrently
	Workers int
}

// Engine turns shorelines into one cross-shore distance per transect and date
type Engine struct {
	opts Options
}

func NewEngine(opts Options) (*Engine, error) {
	if opts.AlongDist <= 0 || math.IsNaN(opts.AlongDist) {
		return nil, fmt.Errorf("along distance must be positive, got %g", opts.AlongDist)
	}
	if opts.MaxOriginDist < 0 {
		return nil, fmt.Errorf("max origin distance must not be negative, got %g", opts.MaxOriginDist)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Engine{opts: opts}, nil
}

// Intersect returns the median cross-shore position of the shoreline points
// lying within the along-shore band of the transect, or a missing distance
// when no point qualifies.
func (e *Engine) Intersect(t models.Transect, shoreline []models.Point) (models.Distance, error) {
	cross, along, err := t.Axes()
	if err != nil {
		return models.Missing(), err
	}
	return e.intersect(t.Origin, cross, along, shoreline), nil
}

func (e *Engine) intersect(origin models.Point, cross, along r2.Vec, shoreline []models.Point) models.Distance {
	projections := make([]float64, 0, 16)
	for _, p := range shoreline {
		rel := p.Sub(origin)
		if math.Abs(r2.Dot(rel, along)) > e.opts.AlongDist {
			continue
		}
		if e.opts.MaxOriginDist > 0 && r2.Norm(rel) > e.opts.MaxOriginDist {
			continue
		}
		projections = append(projections, r2.Dot(rel, cross))
	}

	m, ok := median(projections)
	if !ok {
		return models.Missing()
	}
	return models.Measured(m)
}

// ComputeCrossDistances intersects every observation with every transect.
// An invalid transect or observation does not stop the others: its cells are
// left missing and the failure is reported in the joined error, alongside the
// series computed for everything else.
func (e *Engine) ComputeCrossDistances(observations []models.Observation, transects []models.Transect) (*models.CrossDistanceSeries, error) {
	transectErrs := make([]error, len(transects))
	ids := make([]string, 0, len(transects))
	seen := make(map[string]bool, len(transects))
	for j, t := range transects {
		if seen[t.ID] {
			transectErrs[j] = models.NewInvalidTransectError(t.ID, "duplicate transect id")
			continue
		}
		seen[t.ID] = true
		ids = append(ids, t.ID)
	}
	series := NewSeriesForTransects(observations, ids)

	var errs []error
	shorelines := make([][]models.Point, len(observations))
	for i, o := range observations {
		points, err := o.Shoreline()
		if err != nil {
			log.Warn().Err(err).Str("observation", o.Key()).Msg("Skipping malformed observation")
			errs = append(errs, err)
			continue
		}
		shorelines[i] = points
	}

	compute := func(j int) {
		if transectErrs[j] != nil {
			return
		}
		t := transects[j]
		cross, along, err := t.Axes()
		if err != nil {
			transectErrs[j] = err
			return
		}
		col := series.Values[t.ID]
		for i := range observations {
			col[i] = e.intersect(t.Origin, cross, along, shorelines[i])
		}
	}

	if e.opts.Workers > 1 && len(transects) > 1 {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < e.opts.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range jobs {
					compute(j)
				}
			}()
		}
		for j := range transects {
			jobs <- j
		}
		close(jobs)
		wg.Wait()
	} else {
		for j := range transects {
			compute(j)
		}
	}

	for j, err := range transectErrs {
		if err != nil {
			log.Warn().Err(err).Str("transect", transects[j].ID).Msg("Skipping invalid transect")
			errs = append(errs, err)
		}
	}

	for _, id := range ids {
		log.Debug().
			Str("transect", id).
			Int("dates", len(observations)).
			Int("valid", series.ValidCount(id)).
			Msg("Computed cross-shore distances")
	}

	return series, errors.Join(errs...)
}

// NewSeriesForTransects allocates an all-missing series over the observation dates
func NewSeriesForTransects(observations []models.Observation, transectIDs []string) *models.CrossDistanceSeries {
	return models.NewCrossDistanceSeries(models.ObservationDates(observations), transectIDs)
}
