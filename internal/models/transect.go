package models

import "gonum.org/v1/gonum/spatial/r2"

// Transect is a shore-normal reference line. Distances are measured from Origin.
type Transect struct {
	ID       string `json:"id"`
	Origin   Point  `json:"origin"`
	Endpoint Point  `json:"endpoint"`
}

// NewTransect builds a validated transect
func NewTransect(id string, origin, endpoint Point) (Transect, error) {
	t := Transect{ID: id, Origin: origin, Endpoint: endpoint}
	if err := t.Validate(); err != nil {
		return Transect{}, err
	}
	return t, nil
}

func (t Transect) Validate() error {
	if t.ID == "" {
		return NewInvalidTransectError("", "id is required")
	}
	if t.Origin == t.Endpoint {
		return NewInvalidTransectError(t.ID, "origin and endpoint are identical")
	}
	return nil
}

// Axes returns the unit cross-shore direction (origin to endpoint) and the
// unit along-shore direction perpendicular to it.
func (t Transect) Axes() (cross, along r2.Vec, err error) {
	if err := t.Validate(); err != nil {
		return r2.Vec{}, r2.Vec{}, err
	}
	cross = r2.Unit(t.Endpoint.Sub(t.Origin))
	along = r2.Vec{X: -cross.Y, Y: cross.X}
	return cross, along, nil
}

func (t Transect) Length() float64 {
	return t.Endpoint.Distance(t.Origin)
}
