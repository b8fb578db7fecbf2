package models

import "fmt"

// InvalidTransectError is returned for transects whose geometry cannot be used
// as a measurement reference, e.g. when the origin equals the endpoint.
type InvalidTransectError struct {
	TransectID string
	Message    string
}

func (e *InvalidTransectError) Error() string {
	if e.TransectID == "" {
		return fmt.Sprintf("invalid transect: %s", e.Message)
	}
	return fmt.Sprintf("invalid transect %s: %s", e.TransectID, e.Message)
}

func NewInvalidTransectError(transectID, message string) *InvalidTransectError {
	return &InvalidTransectError{
		TransectID: transectID,
		Message:    message,
	}
}

// InvalidObservationError is returned when an observation carries malformed
// shoreline coordinates.
type InvalidObservationError struct {
	Date    string
	Index   int
	Message string
}

func (e *InvalidObservationError) Error() string {
	return fmt.Sprintf("invalid observation %s (point %d): %s", e.Date, e.Index, e.Message)
}

func NewInvalidObservationError(obs Observation, index int, message string) *InvalidObservationError {
	return &InvalidObservationError{
		Date:    obs.Key(),
		Index:   index,
		Message: message,
	}
}

// NoTideDataError is returned when a tide series has no samples to match against
type NoTideDataError struct {
	Source string
}

func (e *NoTideDataError) Error() string {
	if e.Source == "" {
		return "no tide data"
	}
	return fmt.Sprintf("no tide data from %s", e.Source)
}

// ZeroSlopeError is returned when a transect has no usable beach slope
type ZeroSlopeError struct {
	TransectID string
	Slope      float64
}

func (e *ZeroSlopeError) Error() string {
	return fmt.Sprintf("beach slope for transect %s must be non-zero, got %g", e.TransectID, e.Slope)
}
