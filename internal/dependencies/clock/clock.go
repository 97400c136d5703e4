package clock

import "time"

// Clock is the single source of wall-clock time for turn budgets and timestamps
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock
type SystemClock struct{}

// New creates a SystemClock
func New() *SystemClock {
	return &SystemClock{}
}

// Now returns the current host time
func (c *SystemClock) Now() time.Time {
	return time.Now()
}

// Elapsed returns the non-negative time since start according to c
func Elapsed(c Clock, start time.Time) time.Duration {
	d := c.Now().Sub(start)
	if d < 0 {
		return 0
	}
	return d
}
