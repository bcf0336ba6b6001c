package week

import "time"

// Clock supplies the current time. Production code uses SystemClock; tests
// pass a fixed implementation. Time-sensitive components take a Clock
// instead of reading an ambient global.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by the real wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// FixedClock is a Clock frozen at a single instant, for tests.
type FixedClock struct {
	T time.Time
}

// Now returns the frozen instant.
func (f FixedClock) Now() time.Time {
	return f.T
}
