package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

type Satellite string

const (
	SatelliteL5 Satellite = "L5"
	SatelliteL7 Satellite = "L7"
	SatelliteL8 Satellite = "L8"
	SatelliteL9 Satellite = "L9"
	SatelliteS2 Satellite = "S2"
)

func (s Satellite) Valid() bool {
	switch s {
	case SatelliteL5, SatelliteL7, SatelliteL8, SatelliteL9, SatelliteS2:
		return true
	}
	return false
}

// Observation is one shoreline extraction result for a single acquisition
type Observation struct {
	Date           time.Time   `json:"date"`
	Satellite      Satellite   `json:"satellite"`
	Points         [][]float64 `json:"points"`
	CloudCover     float64     `json:"cloudCover"`
	GeorefAccuracy float64     `json:"georefAccuracy"`
}

// Key identifies the acquisition in logs and errors
func (o Observation) Key() string {
	return fmt.Sprintf("%s/%s", o.Date.UTC().Format(time.RFC3339), o.Satellite)
}

// Shoreline returns the observation's points as planar coordinates.
func (o Observation) Shoreline() ([]Point, error) {
	points := make([]Point, 0, len(o.Points))
	for i, coords := range o.Points {
		p, ok := PointFromSlice(coords)
		if !ok {
			return nil, NewInvalidObservationError(o, i,
				fmt.Sprintf("expected 2 coordinates, got %d", len(coords)))
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil, NewInvalidObservationError(o, i, "coordinates must be finite")
		}
		points = append(points, p)
	}
	return points, nil
}

// Validate checks if an Observation's fields are valid
func (o *Observation) Validate() error {
	if o.Date.IsZero() {
		return fmt.Errorf("date is required")
	}

	if !o.Satellite.Valid() {
		return fmt.Errorf("invalid satellite: %s", o.Satellite)
	}

	if o.CloudCover < 0 || o.CloudCover > 1 {
		return fmt.Errorf("invalid cloud cover: %f", o.CloudCover)
	}

	if _, err := o.Shoreline(); err != nil {
		return err
	}

	return nil
}

// NormalizeObservations returns a copy of the observations with dates in UTC,
// in chronological order. Equal dates keep their archive order.
func NormalizeObservations(observations []Observation) []Observation {
	out := make([]Observation, len(observations))
	for i, o := range observations {
		o.Date = o.Date.UTC()
		out[i] = o
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// ObservationDates lists the acquisition dates in archive order
func ObservationDates(observations []Observation) []time.Time {
	dates := make([]time.Time, len(observations))
	for i, o := range observations {
		dates[i] = o.Date
	}
	return dates
}
