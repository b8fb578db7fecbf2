package shoreline

import (
	"testing"
	"time"

	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(date string, sat models.Satellite, georef float64, nPoints int) models.Observation {
	d, err := time.Parse(time.RFC3339, date)
	if err != nil {
		panic(err)
	}
	points := make([][]float64, nPoints)
	for i := range points {
		points[i] = []float64{float64(i), float64(i)}
	}
	return models.Observation{
		Date:           d.UTC(),
		Satellite:      sat,
		Points:         points,
		GeorefAccuracy: georef,
	}
}

func TestRemoveDuplicates(t *testing.T) {
	tests := []struct {
		name        string
		input       []models.Observation
		wantRemoved int
		wantKept    []string
	}{
		{
			name: "no duplicates",
			input: []models.Observation{
				obs("2020-01-01T10:00:00Z", models.SatelliteL8, 5, 3),
				obs("2020-01-02T10:00:00Z", models.SatelliteL8, 5, 3),
			},
			wantRemoved: 0,
			wantKept:    []string{"2020-01-01T10:00:00Z/L8", "2020-01-02T10:00:00Z/L8"},
		},
		{
			name: "same day same satellite keeps longest shoreline",
			input: []models.Observation{
				obs("2020-01-01T10:00:00Z", models.SatelliteL8, 5, 3),
				obs("2020-01-01T10:00:25Z", models.SatelliteL8, 5, 10),
			},
			wantRemoved: 1,
			wantKept:    []string{"2020-01-01T10:00:25Z/L8"},
		},
		{
			name: "tie keeps first encountered",
			input: []models.Observation{
				obs("2020-01-01T10:00:00Z", models.SatelliteS2, 5, 4),
				obs("2020-01-01T10:00:00Z", models.SatelliteS2, 5, 4),
				obs("2020-01-01T10:00:10Z", models.SatelliteS2, 5, 4),
			},
			wantRemoved: 2,
			wantKept:    []string{"2020-01-01T10:00:00Z/S2"},
		},
		{
			name: "same day different satellites are kept",
			input: []models.Observation{
				obs("2020-01-01T10:00:00Z", models.SatelliteL8, 5, 3),
				obs("2020-01-01T10:00:00Z", models.SatelliteS2, 5, 3),
			},
			wantRemoved: 0,
			wantKept:    []string{"2020-01-01T10:00:00Z/L8", "2020-01-01T10:00:00Z/S2"},
		},
		{
			name: "pass straddling midnight",
			input: []models.Observation{
				obs("2020-01-01T23:59:50Z", models.SatelliteL8, 5, 3),
				obs("2020-01-02T00:00:10Z", models.SatelliteL8, 5, 6),
			},
			wantRemoved: 1,
			wantKept:    []string{"2020-01-02T00:00:10Z/L8"},
		},
		{
			name: "tie keeps first in archive order when out of date order",
			input: []models.Observation{
				obs("2020-01-01T10:00:20Z", models.SatelliteL9, 5, 4),
				obs("2020-01-01T10:00:00Z", models.SatelliteL9, 5, 4),
			},
			wantRemoved: 1,
			wantKept:    []string{"2020-01-01T10:00:20Z/L9"},
		},
		{
			name: "captures more than the window apart are kept",
			input: []models.Observation{
				obs("2020-01-01T00:10:00Z", models.SatelliteS2, 5, 3),
				obs("2020-01-01T23:50:00Z", models.SatelliteS2, 5, 3),
			},
			wantRemoved: 0,
			wantKept:    []string{"2020-01-01T00:10:00Z/S2", "2020-01-01T23:50:00Z/S2"},
		},
		{
			name:        "empty archive",
			input:       nil,
			wantRemoved: 0,
			wantKept:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, removed := RemoveDuplicates(tt.input)

			assert.Equal(t, tt.wantRemoved, removed)
			keys := make([]string, 0, len(kept))
			for _, o := range kept {
				keys = append(keys, o.Key())
			}
			assert.Equal(t, tt.wantKept, keys)
		})
	}
}

func TestRemoveInaccurateGeoref(t *testing.T) {
	input := []models.Observation{
		obs("2020-01-01T10:00:00Z", models.SatelliteL8, 5, 3),
		obs("2020-01-02T10:00:00Z", models.SatelliteL8, 10, 3),
		obs("2020-01-03T10:00:00Z", models.SatelliteL8, 10.5, 3),
		obs("2020-01-04T10:00:00Z", models.SatelliteL8, -1, 3),
	}

	kept, removed := RemoveInaccurateGeoref(input, 10)

	assert.Equal(t, 2, removed)
	require.Len(t, kept, 2)
	assert.Equal(t, 5.0, kept[0].GeorefAccuracy)
	assert.Equal(t, 10.0, kept[1].GeorefAccuracy)
}

func TestFilter(t *testing.T) {
	input := []models.Observation{
		obs("2020-01-01T10:00:00Z", models.SatelliteL8, 5, 3),
		obs("2020-01-01T10:00:20Z", models.SatelliteL8, 5, 2),
		obs("2020-01-02T10:00:00Z", models.SatelliteL8, 25, 3),
		obs("2020-01-03T10:00:00Z", models.SatelliteS2, 3, 3),
	}
	input[3].CloudCover = 0.8
	original := append([]models.Observation(nil), input...)

	kept, stats := Filter(input, FilterOptions{GeorefThreshold: 10})

	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, stats.InaccurateGeoref)
	assert.Equal(t, 0, stats.Cloudy)
	assert.Equal(t, 2, stats.Total())
	assert.Len(t, kept, 2)
	assert.Equal(t, original, input, "input must not be mutated")

	t.Run("cloud cover rule", func(t *testing.T) {
		kept, stats := Filter(input, FilterOptions{GeorefThreshold: 10, MaxCloudCover: 0.5})
		assert.Equal(t, 1, stats.Cloudy)
		assert.Len(t, kept, 1)
	})

	t.Run("idempotent", func(t *testing.T) {
		again, stats := Filter(kept, FilterOptions{GeorefThreshold: 10})
		assert.Zero(t, stats.Total())
		assert.Equal(t, kept, again)
	})
}
