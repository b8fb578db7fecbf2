package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Distance is a cross-shore distance that may be missing. A missing value is
// never represented by a sentinel number; Valid is false instead.
type Distance struct {
	Value float64
	Valid bool
}

func Measured(v float64) Distance {
	return Distance{Value: v, Valid: true}
}

func Missing() Distance {
	return Distance{}
}

// Ptr returns nil for a missing distance
func (d Distance) Ptr() *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Value
	return &v
}

func DistanceFromPtr(v *float64) Distance {
	if v == nil {
		return Missing()
	}
	return Measured(*v)
}

func (d Distance) String() string {
	if !d.Valid {
		return ""
	}
	return strconv.FormatFloat(d.Value, 'f', -1, 64)
}

func (d Distance) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Ptr())
}

func (d *Distance) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = DistanceFromPtr(v)
	return nil
}

// CrossDistanceSeries maps each transect to one distance per observation date.
// Values[id][i] belongs to Dates[i].
type CrossDistanceSeries struct {
	Dates       []time.Time           `json:"dates"`
	TransectIDs []string              `json:"transects"`
	Values      map[string][]Distance `json:"values"`
}

// CorrectedDistanceSeries has the same shape as the raw series, with each
// value projected to the reference water elevation.
type CorrectedDistanceSeries = CrossDistanceSeries

// NewCrossDistanceSeries allocates a series with every value missing
func NewCrossDistanceSeries(dates []time.Time, transectIDs []string) *CrossDistanceSeries {
	s := &CrossDistanceSeries{
		Dates:       append([]time.Time(nil), dates...),
		TransectIDs: append([]string(nil), transectIDs...),
		Values:      make(map[string][]Distance, len(transectIDs)),
	}
	for _, id := range transectIDs {
		s.Values[id] = make([]Distance, len(dates))
	}
	return s
}

// Column returns the values for a transect, or nil if it is unknown
func (s *CrossDistanceSeries) Column(transectID string) []Distance {
	return s.Values[transectID]
}

// Get returns the value for a transect at date index i
func (s *CrossDistanceSeries) Get(transectID string, i int) Distance {
	col := s.Values[transectID]
	if i < 0 || i >= len(col) {
		return Missing()
	}
	return col[i]
}

// Validate checks that every column is aligned with the dates
func (s *CrossDistanceSeries) Validate() error {
	for _, id := range s.TransectIDs {
		col, ok := s.Values[id]
		if !ok {
			return fmt.Errorf("missing column for transect %s", id)
		}
		if len(col) != len(s.Dates) {
			return fmt.Errorf("transect %s has %d values for %d dates", id, len(col), len(s.Dates))
		}
	}
	return nil
}

// Header returns the tabular export header: date followed by transect ids
func (s *CrossDistanceSeries) Header() []string {
	return append([]string{"date"}, s.TransectIDs...)
}

// Rows returns the series as tabular rows (date, transect_1, transect_2, ...).
// Missing values are empty cells.
func (s *CrossDistanceSeries) Rows() [][]string {
	rows := make([][]string, len(s.Dates))
	for i, date := range s.Dates {
		row := make([]string, 0, len(s.TransectIDs)+1)
		row = append(row, date.UTC().Format("2006-01-02 15:04:05"))
		for _, id := range s.TransectIDs {
			row = append(row, s.Get(id, i).String())
		}
		rows[i] = row
	}
	return rows
}

// ValidCount returns the number of non-missing values for a transect
func (s *CrossDistanceSeries) ValidCount(transectID string) int {
	n := 0
	for _, d := range s.Values[transectID] {
		if d.Valid {
			n++
		}
	}
	return n
}
