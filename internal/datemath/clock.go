package datemath

import "time"

// Clock supplies the current calendar date.
type Clock interface {
	Today() Date
}

// SystemClock reads the wall clock in Location (time.Local when nil).
type SystemClock struct {
	Location *time.Location
}

// Today returns the current date in the clock's location.
func (c SystemClock) Today() Date {
	now := time.Now()
	if c.Location != nil {
		now = now.In(c.Location)
	}
	return FromTime(now)
}

// FixedClock always reports the same date.
type FixedClock struct {
	Date Date
}

// Today returns the fixed date.
func (c FixedClock) Today() Date {
	return c.Date
}
