package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The registry uses it for cooldown arithmetic, the lifecycle manager and
// sweeper for date matching and expiry.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
