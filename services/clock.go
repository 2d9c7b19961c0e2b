package services

import "time"

// Clock supplies the reference instant and the zone used for day boundaries.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: time.Now, Location: loc}
}

// FixedClock always reports t. Used by tests and the seeder.
func FixedClock(t time.Time) Clock {
	return Clock{Now: func() time.Time { return t }, Location: t.Location()}
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now().UTC()
}

// StartOfDay is midnight of the current day in the clock's zone, in UTC.
func (c Clock) StartOfDay() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	local := c.now().In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).UTC()
}

// Instant is the current reference time in UTC.
func (c Clock) Instant() time.Time {
	return c.now()
}
