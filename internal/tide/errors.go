package tide

import (
	"errors"
	"fmt"
	"time"
)

// ErrStationRequired is returned when a NOAA source is built without a station
var ErrStationRequired = errors.New("tide station id is required")

// FetchError is a failed or rejected request for a station's predictions
type FetchError struct {
	Station string
	Reason  string
	Err     error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetching tides for station %s: %s", e.Station, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RangeError reports a tide request window that is empty or reversed
type RangeError struct {
	Start time.Time
	End   time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("tide range end %s must be after start %s",
		e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}
