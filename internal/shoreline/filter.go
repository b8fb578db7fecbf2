package shoreline

import (
	"sort"
	"time"

	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/rs/zerolog/log"
)

// FilterOptions controls which observations survive quality filtering
type FilterOptions struct {
	GeorefThreshold float64
	// MaxCloudCover drops cloudier observations. 0 disables.
	MaxCloudCover float64
}

// FilterStats counts the observations removed by each rule
type FilterStats struct {
	Duplicates       int `json:"duplicates"`
	InaccurateGeoref int `json:"inaccurateGeoref"`
	Cloudy           int `json:"cloudy"`
}

func (s FilterStats) Total() int {
	return s.Duplicates + s.InaccurateGeoref + s.Cloudy
}

// Filter removes duplicate and poorly georeferenced observations. The input
// slice is not modified; the surviving observations keep their archive order.
func Filter(observations []models.Observation, opts FilterOptions) ([]models.Observation, FilterStats) {
	var stats FilterStats

	kept, n := RemoveDuplicates(observations)
	stats.Duplicates = n

	kept, n = RemoveInaccurateGeoref(kept, opts.GeorefThreshold)
	stats.InaccurateGeoref = n

	if opts.MaxCloudCover > 0 {
		kept, n = DropCloudy(kept, opts.MaxCloudCover)
		stats.Cloudy = n
	}

	log.Info().
		Int("input", len(observations)).
		Int("kept", len(kept)).
		Int("duplicates", stats.Duplicates).
		Int("inaccurate_georef", stats.InaccurateGeoref).
		Int("cloudy", stats.Cloudy).
		Msg("Filtered shoreline archive")

	return kept, stats
}

// DuplicateWindow is the widest gap between two captures by one satellite
// that still belong to the same pass.
const DuplicateWindow = 12 * time.Hour

// RemoveDuplicates keeps one observation per satellite pass. Captures by the
// same satellite form a pass while each lies within DuplicateWindow of the
// previous one, so scenes straddling midnight UTC are still grouped. The
// observation with the most shoreline points wins; ties go to the first one
// in archive order.
func RemoveDuplicates(observations []models.Observation) ([]models.Observation, int) {
	bySatellite := make(map[models.Satellite][]int)
	for i, o := range observations {
		bySatellite[o.Satellite] = append(bySatellite[o.Satellite], i)
	}

	keep := make([]bool, len(observations))
	for _, idx := range bySatellite {
		sort.SliceStable(idx, func(a, b int) bool {
			return observations[idx[a]].Date.Before(observations[idx[b]].Date)
		})
		best := idx[0]
		for k := 1; k < len(idx); k++ {
			i := idx[k]
			if observations[i].Date.Sub(observations[idx[k-1]].Date) > DuplicateWindow {
				keep[best] = true
				best = i
				continue
			}
			if better(observations, i, best) {
				best = i
			}
		}
		keep[best] = true
	}

	kept := make([]models.Observation, 0, len(observations))
	for i, o := range observations {
		if keep[i] {
			kept = append(kept, o)
		}
	}

	removed := len(observations) - len(kept)
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("Removed duplicate observations")
	}
	return kept, removed
}

func better(observations []models.Observation, i, j int) bool {
	ni, nj := len(observations[i].Points), len(observations[j].Points)
	return ni > nj || (ni == nj && i < j)
}

// RemoveInaccurateGeoref drops observations whose georeferencing error exceeds
// threshold. A negative accuracy marks a failed registration and is dropped too.
func RemoveInaccurateGeoref(observations []models.Observation, threshold float64) ([]models.Observation, int) {
	kept := make([]models.Observation, 0, len(observations))
	for _, o := range observations {
		if o.GeorefAccuracy < 0 || o.GeorefAccuracy > threshold {
			log.Debug().
				Str("observation", o.Key()).
				Float64("georef_accuracy", o.GeorefAccuracy).
				Msg("Dropping inaccurately georeferenced observation")
			continue
		}
		kept = append(kept, o)
	}
	return kept, len(observations) - len(kept)
}

// DropCloudy removes observations with more cloud cover than maxCloudCover
func DropCloudy(observations []models.Observation, maxCloudCover float64) ([]models.Observation, int) {
	kept := make([]models.Observation, 0, len(observations))
	for _, o := range observations {
		if o.CloudCover > maxCloudCover {
			continue
		}
		kept = append(kept, o)
	}
	return kept, len(observations) - len(kept)
}
