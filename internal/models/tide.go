package models

import (
	"fmt"
	"math"
	"time"
)

// TideSample is one water level reading from an independently sampled series
type TideSample struct {
	Time      time.Time `json:"time"`
	Elevation float64   `json:"elevation"`
}

// Validate checks if a TideSample's fields are valid
func (ts *TideSample) Validate() error {
	if ts.Time.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if math.IsNaN(ts.Elevation) || math.IsInf(ts.Elevation, 0) {
		return fmt.Errorf("invalid elevation: %f", ts.Elevation)
	}
	return nil
}

// NoaaPrediction represents the raw NOAA API prediction response
type NoaaPrediction struct {
	Time   string `json:"t"` // Time of prediction
	Height string `json:"v"` // Predicted water level
}

type NoaaResponse struct {
	Predictions []NoaaPrediction `json:"predictions"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
