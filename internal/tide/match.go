package tide

import (
	"sort"
	"time"

	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/rs/zerolog/log"
)

// MatchStats describes how well a tide series covers the matched dates
type MatchStats struct {
	// OutOfRange counts dates before the first or after the last sample.
	// They are matched to the nearest endpoint sample regardless of distance.
	OutOfRange int           `json:"outOfRange"`
	MaxGap     time.Duration `json:"maxGap"`
}

// MatchNearest returns, for every date, the tide sample closest in time. No
// interpolation is done. A date exactly halfway between two samples matches
// the earlier one. The samples are sorted once and searched with a binary
// search per date.
func MatchNearest(dates []time.Time, samples []models.TideSample) ([]models.TideSample, MatchStats, error) {
	var stats MatchStats
	if len(samples) == 0 {
		return nil, stats, &models.NoTideDataError{}
	}

	sorted := SortSamples(samples)
	first, last := sorted[0].Time, sorted[len(sorted)-1].Time

	matched := make([]models.TideSample, len(dates))
	for i, date := range dates {
		if date.Before(first) || date.After(last) {
			stats.OutOfRange++
		}
		s := sorted[findNearestIndex(sorted, date)]
		matched[i] = s
		if gap := absDuration(s.Time.Sub(date)); gap > stats.MaxGap {
			stats.MaxGap = gap
		}
	}

	if stats.OutOfRange > 0 {
		log.Warn().
			Int("dates", stats.OutOfRange).
			Time("series_start", first).
			Time("series_end", last).
			Msg("Dates outside tide series span matched to nearest endpoint")
	}

	return matched, stats, nil
}

// findNearestIndex returns the index of the sample nearest to t; sorted must be non-empty.
func findNearestIndex(sorted []models.TideSample, t time.Time) int {
	idx := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].Time.Before(t)
	})
	if idx == 0 {
		return 0
	}
	if idx == len(sorted) {
		return len(sorted) - 1
	}
	before := t.Sub(sorted[idx-1].Time)
	after := sorted[idx].Time.Sub(t)
	if after < before {
		return idx
	}
	return idx - 1
}

// SortSamples returns a time-ordered copy of the samples
func SortSamples(samples []models.TideSample) []models.TideSample {
	sorted := append([]models.TideSample(nil), samples...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return sorted
}

// Elevations extracts the water levels of matched samples
func Elevations(samples []models.TideSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Elevation
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
