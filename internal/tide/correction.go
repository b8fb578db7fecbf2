package tide

import (
	"errors"
	"fmt"
	"math"

	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// Correct projects every raw distance to the reference elevation with a
// linear beach-slope model:
//
//	corrected = raw + (tide - reference) / slope[transect]
//
// tides holds one matched elevation per series date. Missing values stay
// missing. A transect without a usable slope gets an all-missing column and a
// ZeroSlopeError in the joined error; the other transects are still corrected.
func Correct(series *models.CrossDistanceSeries, tides []float64, reference float64, slopes map[string]float64) (*models.CorrectedDistanceSeries, error) {
	if len(tides) != len(series.Dates) {
		return nil, fmt.Errorf("got %d tide levels for %d dates", len(tides), len(series.Dates))
	}

	corrected := models.NewCrossDistanceSeries(series.Dates, series.TransectIDs)
	var errs []error
	for _, id := range series.TransectIDs {
		slope := slopes[id]
		if slope == 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
			errs = append(errs, &models.ZeroSlopeError{TransectID: id, Slope: slope})
			continue
		}

		raw := series.Column(id)
		out := corrected.Values[id]
		for i, d := range raw {
			if !d.Valid {
				continue
			}
			out[i] = models.Measured(d.Value + (tides[i]-reference)/slope)
		}
	}

	if len(errs) > 0 {
		log.Warn().Int("transects", len(errs)).Msg("Transects left uncorrected")
	}
	return corrected, errors.Join(errs...)
}

// UniformSlopes assigns the same beach slope to every transect
func UniformSlopes(transectIDs []string, slope float64) map[string]float64 {
	slopes := make(map[string]float64, len(transectIDs))
	for _, id := range transectIDs {
		slopes[id] = slope
	}
	return slopes
}

// MeanElevation returns the mean water level of the series, the usual choice
// of reference elevation.
func MeanElevation(samples []models.TideSample) (float64, error) {
	if len(samples) == 0 {
		return 0, &models.NoTideDataError{}
	}
	return stat.Mean(Elevations(samples), nil), nil
}
