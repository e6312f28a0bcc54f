package chrono

import "time"

// API is the interface that anything depending on the system clock should use.
type API interface {
	Now() time.Time
	Location() *time.Location
}

// StandardImpl reads the system clock, times are returned in `location`.
type StandardImpl struct {
	location *time.Location
}

// NewStandardImpl returns a clock in UTC, snapshot dates are stamped in UTC
// regardless of where the fetcher runs.
func NewStandardImpl() StandardImpl {
	return StandardImpl{location: time.UTC}
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// FixedImpl always returns the same instant.
type FixedImpl struct {
	At time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.At
}

func (f FixedImpl) Location() *time.Location {
	return f.At.Location()
}

// Date formats the calendar date of `t` as YYYY-MM-DD.
func Date(t time.Time) string {
	return t.Format(time.DateOnly)
}
