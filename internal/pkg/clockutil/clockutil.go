package clockutil

import "time"

// Clock is injected wherever "now" matters (cache expiry, daily bucketing) so
// tests can drive time explicitly.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func System() Clock { return systemClock{} }

// StartOfDayUTC is the single daily-bucketing function. Stat rows for one
// calendar day must all use the same bucket, so every caller goes through
// here. Buckets are UTC days.
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
