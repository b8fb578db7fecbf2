package trend

import (
	"sort"
	"time"

	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

const secondsPerYear = 365.25 * 24 * 3600

// Trend is a least-squares linear fit of shoreline position against time
type Trend struct {
	TransectID string `json:"transectId"`
	// Slope is the rate of change in distance units per year; positive is seaward
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	RSquared  float64   `json:"rSquared"`
	N         int       `json:"n"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// Compute fits one trend per transect, skipping missing values. Transects with
// fewer than two measurements or a single distinct date get no trend.
// Intercept is the fitted position at the earliest measured date. Dates need
// not be sorted.
func Compute(series *models.CrossDistanceSeries) []Trend {
	trends := make([]Trend, 0, len(series.TransectIDs))
	for _, id := range series.TransectIDs {
		var points []point
		for i, d := range series.Column(id) {
			if d.Valid {
				points = append(points, point{date: series.Dates[i], value: d.Value})
			}
		}
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].date.Before(points[j].date)
		})

		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for i, p := range points {
			xs[i] = p.date.Sub(points[0].date).Seconds() / secondsPerYear
			ys[i] = p.value
		}
		if len(xs) < 2 || distinct(xs) < 2 {
			log.Debug().Str("transect", id).Int("n", len(xs)).Msg("Not enough measurements for a trend")
			continue
		}

		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		trends = append(trends, Trend{
			TransectID: id,
			Slope:      beta,
			Intercept:  alpha,
			RSquared:   rSquared(xs, ys, alpha, beta),
			N:          len(xs),
			Start:      points[0].date,
			End:        points[len(points)-1].date,
		})
	}
	return trends
}

type point struct {
	date  time.Time
	value float64
}

// rSquared is 1 for a series with no variance, which the fitted flat line
// reproduces exactly.
func rSquared(xs, ys []float64, alpha, beta float64) float64 {
	for _, y := range ys[1:] {
		if y != ys[0] {
			return stat.RSquared(xs, ys, nil, alpha, beta)
		}
	}
	return 1
}

func distinct(xs []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
	}
	return len(seen)
}
