package behaviortreex

import "time"

// Clock is the simulation time of one tree. It only moves when the root is
// ticked, so Wait and Service measure elapsed steps, never wall time.
// Durations are integer nanoseconds, which keeps elapsed comparisons exact.
type Clock struct {
	now time.Duration
}

// NewClock creates a clock at zero.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the elapsed simulation time.
func (c *Clock) Now() time.Duration {
	return c.now
}

// Advance moves the clock forward. Negative steps are ignored.
func (c *Clock) Advance(dt time.Duration) {
	if dt > 0 {
		c.now += dt
	}
}
