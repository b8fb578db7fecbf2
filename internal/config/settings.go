package config

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// Settings is the immutable configuration of one shoreline analysis run.
// Distances are in the linear units of the output projection.
type Settings struct {
	// AlongDist is the half-width of the band around a transect within which
	// shoreline points are considered to lie on it.
	AlongDist float64 `json:"alongDist"`
	// MaxDistRef drops shoreline points farther than this from the reference
	// shoreline before intersecting. 0 disables the pre-filter.
	MaxDistRef float64 `json:"maxDistRef"`
	// MaxOriginDist ignores points farther than this from a transect origin. 0 disables.
	MaxOriginDist float64 `json:"maxOriginDist"`
	// OutputEPSG identifies the projected coordinate reference system of all geometry.
	OutputEPSG int `json:"outputEpsg"`
	// GeorefThreshold drops observations with a larger georeferencing error.
	GeorefThreshold float64 `json:"georefThreshold"`
	// MaxCloudCover drops observations with more cloud cover. 0 disables.
	MaxCloudCover float64 `json:"maxCloudCover"`
	// Workers fans intersection out across transects when > 1.
	Workers int `json:"workers"`
}

const (
	defaultAlongDist       = 25.0
	defaultGeorefThreshold = 10.0
	defaultOutputEPSG      = 28356
)

// DefaultSettings returns the settings used when a request does not override them
func DefaultSettings() Settings {
	return Settings{
		AlongDist:       defaultAlongDist,
		OutputEPSG:      defaultOutputEPSG,
		GeorefThreshold: defaultGeorefThreshold,
		Workers:         1,
	}
}

// SettingsFromEnv reads analysis defaults from environment variables
func SettingsFromEnv() Settings {
	s := Settings{
		AlongDist:       getEnvFloat("ANALYSIS_ALONG_DIST", defaultAlongDist),
		MaxDistRef:      getEnvFloat("ANALYSIS_MAX_DIST_REF", 0),
		MaxOriginDist:   getEnvFloat("ANALYSIS_MAX_ORIGIN_DIST", 0),
		OutputEPSG:      getEnvInt("ANALYSIS_OUTPUT_EPSG", defaultOutputEPSG),
		GeorefThreshold: getEnvFloat("ANALYSIS_GEOREF_THRESHOLD", defaultGeorefThreshold),
		MaxCloudCover:   getEnvFloat("ANALYSIS_MAX_CLOUD_COVER", 0),
		Workers:         getEnvInt("ANALYSIS_WORKERS", 1),
	}

	log.Debug().
		Float64("AlongDist", s.AlongDist).
		Float64("MaxDistRef", s.MaxDistRef).
		Float64("MaxOriginDist", s.MaxOriginDist).
		Int("OutputEPSG", s.OutputEPSG).
		Float64("GeorefThreshold", s.GeorefThreshold).
		Float64("MaxCloudCover", s.MaxCloudCover).
		Int("Workers", s.Workers).
		Msg("Analysis settings loaded")

	return s
}

// Validate checks if the settings can drive an analysis
func (s Settings) Validate() error {
	finite := []struct {
		name  string
		value float64
	}{
		{"along distance", s.AlongDist},
		{"max distance to reference", s.MaxDistRef},
		{"max origin distance", s.MaxOriginDist},
		{"georeferencing threshold", s.GeorefThreshold},
		{"max cloud cover", s.MaxCloudCover},
	}
	for _, f := range finite {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s must be finite, got %g", f.name, f.value)
		}
	}
	if s.AlongDist <= 0 {
		return fmt.Errorf("along distance must be positive, got %g", s.AlongDist)
	}
	if s.MaxDistRef < 0 {
		return fmt.Errorf("max distance to reference must not be negative, got %g", s.MaxDistRef)
	}
	if s.MaxOriginDist < 0 {
		return fmt.Errorf("max origin distance must not be negative, got %g", s.MaxOriginDist)
	}
	if s.GeorefThreshold < 0 {
		return fmt.Errorf("georeferencing threshold must not be negative, got %g", s.GeorefThreshold)
	}
	if s.MaxCloudCover < 0 || s.MaxCloudCover > 1 {
		return fmt.Errorf("max cloud cover must be within [0,1], got %g", s.MaxCloudCover)
	}
	if s.OutputEPSG <= 0 {
		return fmt.Errorf("invalid output EPSG code: %d", s.OutputEPSG)
	}
	return nil
}
