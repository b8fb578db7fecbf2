package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bbernstein/shorewatch/internal/archive"
	"github.com/bbernstein/shorewatch/internal/config"
	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/bbernstein/shorewatch/internal/shoreline"
	"github.com/bbernstein/shorewatch/internal/tide"
	"github.com/bbernstein/shorewatch/internal/transect"
	"github.com/bbernstein/shorewatch/internal/trend"
	"github.com/rs/zerolog/log"
)

// Archive is where site inputs are read and exports written
type Archive interface {
	LoadObservations(ctx context.Context, siteID string) ([]models.Observation, error)
	LoadTransects(ctx context.Context, siteID string) (*transect.Store, error)
	LoadTides(ctx context.Context, siteID string) ([]models.TideSample, error)
	LoadReference(ctx context.Context, siteID string) ([]models.Point, error)
	SaveCSV(ctx context.Context, siteID, name string, series *models.CrossDistanceSeries) (string, error)
	ExportTransects(ctx context.Context, siteID string, store *transect.Store) (string, error)
	ExportObservations(ctx context.Context, siteID string, observations []models.Observation) (string, error)
}

var _ Archive = (*archive.Archive)(nil)

// ResultStore persists computed series between invocations
type ResultStore interface {
	Get(ctx context.Context, siteID, kind string, transectIDs []string) (*models.CrossDistanceSeries, error)
	Save(ctx context.Context, siteID, kind string, series *models.CrossDistanceSeries) error
}

// TideSourceFactory returns the tide source for a NOAA station
type TideSourceFactory func(stationID string) (tide.Source, error)

// tidePadding widens a NOAA request so the first and last dates have samples
// on both sides.
const tidePadding = 24 * time.Hour

type Service struct {
	archive  Archive
	results  ResultStore
	noaa     TideSourceFactory
	defaults config.Settings
}

type Option func(*Service)

// WithResultStore persists raw and corrected series after each analysis
func WithResultStore(store ResultStore) Option {
	return func(s *Service) {
		s.results = store
	}
}

// WithNOAA enables tide levels from NOAA stations
func WithNOAA(factory TideSourceFactory) Option {
	return func(s *Service) {
		s.noaa = factory
	}
}

func NewService(a Archive, defaults config.Settings, opts ...Option) *Service {
	s := &Service{archive: a, defaults: defaults}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the settings applied when a request leaves them unset
func (s *Service) Defaults() config.Settings {
	return s.defaults
}

// Request describes one analysis of a site
type Request struct {
	SiteID   string
	Settings config.Settings
	// Slope is the beach slope used for transects missing from Slopes
	Slope  float64
	Slopes map[string]float64
	// ReferenceElevation defaults to the mean of the tide series when nil
	ReferenceElevation *float64
	// NOAAStation takes tide levels from NOAA instead of the site's tide file
	NOAAStation string
	Export      bool
}

// Result is the outcome of an analysis. Per-transect and per-date failures
// do not fail the analysis; they are listed in Warnings.
type Result struct {
	Site               string                          `json:"site"`
	Settings           config.Settings                 `json:"settings"`
	Stats              shoreline.FilterStats           `json:"stats"`
	Raw                *models.CrossDistanceSeries     `json:"raw"`
	Corrected          *models.CorrectedDistanceSeries `json:"corrected"`
	Tides              []models.TideSample             `json:"tides"`
	TideMatch          tide.MatchStats                 `json:"tideMatch"`
	ReferenceElevation float64                         `json:"referenceElevation"`
	Trends             []trend.Trend                   `json:"trends"`
	Exports            []string                        `json:"exports,omitempty"`
	Warnings           []string                        `json:"warnings,omitempty"`
}

func (r *Result) warn(err error) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			r.warn(e)
		}
		return
	}
	r.Warnings = append(r.Warnings, err.Error())
}

type output struct {
	kind   string
	series *models.CrossDistanceSeries
}

func (r *Result) outputs() []output {
	return []output{
		{kind: models.ResultKindRaw, series: r.Raw},
		{kind: models.ResultKindCorrected, series: r.Corrected},
	}
}

// Analyze runs the full pipeline for a site: filter the archive, intersect
// shorelines with transects, match tide levels, correct to the reference
// elevation, fit trends, then persist and optionally export the series.
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	if req.SiteID == "" {
		return nil, NewValidationError("site is required", nil)
	}
	if err := req.Settings.Validate(); err != nil {
		return nil, NewValidationError("invalid settings", err)
	}
	if req.Slope == 0 && len(req.Slopes) == 0 {
		return nil, NewValidationError("beach slope is required", nil)
	}
	if !finite(req.Slope) {
		return nil, NewValidationError(fmt.Sprintf("beach slope must be finite, got %g", req.Slope), nil)
	}
	for id, slope := range req.Slopes {
		if !finite(slope) {
			return nil, NewValidationError(fmt.Sprintf("beach slope for transect %s must be finite, got %g", id, slope), nil)
		}
	}
	if req.ReferenceElevation != nil && !finite(*req.ReferenceElevation) {
		return nil, NewValidationError(fmt.Sprintf("reference elevation must be finite, got %g", *req.ReferenceElevation), nil)
	}

	result := &Result{Site: req.SiteID, Settings: req.Settings}
	logger := log.With().Str("site", req.SiteID).Logger()

	observations, err := s.archive.LoadObservations(ctx, req.SiteID)
	if err != nil {
		return nil, fmt.Errorf("loading observations: %w", err)
	}
	observations, result.Stats = shoreline.Filter(observations, shoreline.FilterOptions{
		GeorefThreshold: req.Settings.GeorefThreshold,
		MaxCloudCover:   req.Settings.MaxCloudCover,
	})

	store, err := s.archive.LoadTransects(ctx, req.SiteID)
	if store == nil {
		return nil, fmt.Errorf("loading transects: %w", err)
	}
	result.warn(err)
	if store.Len() == 0 {
		return nil, NewValidationError("site has no usable transects", err)
	}

	if req.Settings.MaxDistRef > 0 {
		reference, err := s.archive.LoadReference(ctx, req.SiteID)
		if err != nil {
			return nil, fmt.Errorf("loading reference shoreline: %w", err)
		}
		if reference != nil {
			observations = shoreline.FilterObservationsByReference(observations, reference, req.Settings.MaxDistRef)
		} else {
			logger.Warn().Msg("No reference shoreline; distance to reference filter skipped")
		}
	}

	engine, err := shoreline.NewEngine(shoreline.Options{
		AlongDist:     req.Settings.AlongDist,
		MaxOriginDist: req.Settings.MaxOriginDist,
		Workers:       req.Settings.Workers,
	})
	if err != nil {
		return nil, NewValidationError("invalid intersection settings", err)
	}
	raw, err := engine.ComputeCrossDistances(observations, store.All())
	result.warn(err)
	result.Raw = raw

	if err := s.correct(ctx, req, result); err != nil {
		return nil, err
	}
	result.Trends = trend.Compute(result.Corrected)

	s.persist(ctx, req.SiteID, result)

	if req.Export {
		if err := s.export(ctx, req.SiteID, result, store, observations); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Int("dates", len(raw.Dates)).
		Int("transects", len(raw.TransectIDs)).
		Int("trends", len(result.Trends)).
		Int("warnings", len(result.Warnings)).
		Msg("Analysis complete")

	return result, nil
}

// export writes both series as CSV, then the transects and observations
// they were computed from.
func (s *Service) export(ctx context.Context, siteID string, result *Result, store *transect.Store, observations []models.Observation) error {
	for _, out := range result.outputs() {
		key, err := s.archive.SaveCSV(ctx, siteID, out.kind, out.series)
		if err != nil {
			return fmt.Errorf("exporting %s series: %w", out.kind, err)
		}
		result.Exports = append(result.Exports, key)
	}

	key, err := s.archive.ExportTransects(ctx, siteID, store)
	if err != nil {
		return fmt.Errorf("exporting transects: %w", err)
	}
	result.Exports = append(result.Exports, key)

	key, err = s.archive.ExportObservations(ctx, siteID, observations)
	if err != nil {
		return fmt.Errorf("exporting observations: %w", err)
	}
	result.Exports = append(result.Exports, key)
	return nil
}

// correct matches tide levels to the raw dates and applies the correction
func (s *Service) correct(ctx context.Context, req Request, result *Result) error {
	raw := result.Raw
	if len(raw.Dates) == 0 {
		result.Corrected = models.NewCrossDistanceSeries(nil, raw.TransectIDs)
		if req.ReferenceElevation != nil {
			result.ReferenceElevation = *req.ReferenceElevation
		}
		return nil
	}

	samples, err := s.tideSamples(ctx, req, raw.Dates)
	if err != nil {
		return err
	}

	matched, stats, err := tide.MatchNearest(raw.Dates, samples)
	if err != nil {
		return err
	}
	result.Tides = matched
	result.TideMatch = stats
	if stats.OutOfRange > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d dates outside the tide series matched to its nearest end", stats.OutOfRange))
	}

	if req.ReferenceElevation != nil {
		result.ReferenceElevation = *req.ReferenceElevation
	} else {
		// mean over the whole series, not just the matched levels
		result.ReferenceElevation, err = tide.MeanElevation(samples)
		if err != nil {
			return err
		}
	}

	slopes := tide.UniformSlopes(raw.TransectIDs, req.Slope)
	for id, slope := range req.Slopes {
		slopes[id] = slope
	}

	corrected, err := tide.Correct(raw, tide.Elevations(matched), result.ReferenceElevation, slopes)
	if err != nil && corrected == nil {
		return err
	}
	result.warn(err)
	result.Corrected = corrected
	return nil
}

func (s *Service) tideSamples(ctx context.Context, req Request, dates []time.Time) ([]models.TideSample, error) {
	source, err := s.tideSource(ctx, req)
	if err != nil {
		return nil, err
	}

	start, end := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(start) {
			start = d
		}
		if d.After(end) {
			end = d
		}
	}
	return source.Samples(ctx, start.Add(-tidePadding), end.Add(tidePadding))
}

// tideSource is the requested NOAA station, or the site's tide file
func (s *Service) tideSource(ctx context.Context, req Request) (tide.Source, error) {
	if req.NOAAStation != "" {
		if s.noaa == nil {
			return nil, NewValidationError("NOAA tide source is not configured", nil)
		}
		source, err := s.noaa(req.NOAAStation)
		if err != nil {
			return nil, fmt.Errorf("creating NOAA source: %w", err)
		}
		return source, nil
	}

	samples, err := s.archive.LoadTides(ctx, req.SiteID)
	if errors.Is(err, archive.ErrNotFound) {
		return nil, &models.NoTideDataError{Source: "site tide file"}
	}
	if err != nil {
		return nil, fmt.Errorf("loading tides: %w", err)
	}
	return tide.NewStaticSource(samples), nil
}

// persist saves both series; a failing store is reported but does not fail
// the analysis.
func (s *Service) persist(ctx context.Context, siteID string, result *Result) {
	if s.results == nil {
		return
	}
	for _, out := range result.outputs() {
		if err := s.results.Save(ctx, siteID, out.kind, out.series); err != nil {
			log.Error().Err(err).Str("site", siteID).Str("kind", out.kind).Msg("Failed to save results")
			result.Warnings = append(result.Warnings, fmt.Sprintf("saving %s results: %v", out.kind, err))
		}
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Stored returns the last persisted series of one kind for a site, or nil
func (s *Service) Stored(ctx context.Context, siteID, kind string) (*models.CrossDistanceSeries, error) {
	if siteID == "" {
		return nil, NewValidationError("site is required", nil)
	}
	switch kind {
	case models.ResultKindRaw, models.ResultKindCorrected:
	default:
		return nil, NewValidationError(fmt.Sprintf("unknown result kind %q", kind), nil)
	}
	if s.results == nil {
		return nil, nil
	}
	return s.results.Get(ctx, siteID, kind, nil)
}
