package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 25.0, s.AlongDist)
	assert.Equal(t, 10.0, s.GeorefThreshold)
	assert.Equal(t, 28356, s.OutputEPSG)
	assert.Zero(t, s.MaxDistRef)
	assert.Zero(t, s.MaxCloudCover)
	require.NoError(t, s.Validate())
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr string
	}{
		{
			name:   "defaults",
			modify: func(*Settings) {},
		},
		{
			name:    "zero along distance",
			modify:  func(s *Settings) { s.AlongDist = 0 },
			wantErr: "along distance",
		},
		{
			name:    "negative reference distance",
			modify:  func(s *Settings) { s.MaxDistRef = -1 },
			wantErr: "reference",
		},
		{
			name:    "negative origin distance",
			modify:  func(s *Settings) { s.MaxOriginDist = -5 },
			wantErr: "origin distance",
		},
		{
			name:    "negative georef threshold",
			modify:  func(s *Settings) { s.GeorefThreshold = -0.1 },
			wantErr: "georeferencing",
		},
		{
			name:    "cloud cover above one",
			modify:  func(s *Settings) { s.MaxCloudCover = 1.5 },
			wantErr: "cloud cover",
		},
		{
			name:    "NaN georef threshold",
			modify:  func(s *Settings) { s.GeorefThreshold = math.NaN() },
			wantErr: "georeferencing threshold must be finite",
		},
		{
			name:    "NaN cloud cover",
			modify:  func(s *Settings) { s.MaxCloudCover = math.NaN() },
			wantErr: "max cloud cover must be finite",
		},
		{
			name:    "infinite along distance",
			modify:  func(s *Settings) { s.AlongDist = math.Inf(1) },
			wantErr: "along distance must be finite",
		},
		{
			name:    "missing EPSG",
			modify:  func(s *Settings) { s.OutputEPSG = 0 },
			wantErr: "EPSG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)

			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("ANALYSIS_ALONG_DIST", "40")
	t.Setenv("ANALYSIS_GEOREF_THRESHOLD", "12.5")
	t.Setenv("ANALYSIS_OUTPUT_EPSG", "32756")
	t.Setenv("ANALYSIS_WORKERS", "not-a-number")

	s := SettingsFromEnv()

	assert.Equal(t, 40.0, s.AlongDist)
	assert.Equal(t, 12.5, s.GeorefThreshold)
	assert.Equal(t, 32756, s.OutputEPSG)
	assert.Equal(t, 1, s.Workers)
}
