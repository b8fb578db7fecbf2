package cache

import "time"

// clock abstracts time so expiry can be tested
type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
