package sim

import "time"

// Clock is the monotonic simulation clock. Every Advance moves it forward by
// exactly one timestep, independent of wall time.
type Clock struct {
	step   time.Duration
	now    time.Duration
	frames uint64
}

// NewClock returns a Clock at zero with the given timestep.
//
// Precondition: step > 0; NewClock panics otherwise.
func NewClock(step time.Duration) *Clock {
	if step <= 0 {
		panic("sim.NewClock: step must be > 0")
	}
	return &Clock{step: step}
}

// Advance moves the clock one timestep and returns the new time and the
// timestep in seconds.
func (c *Clock) Advance() (now time.Duration, dt float64) {
	c.now += c.step
	c.frames++
	return c.now, c.step.Seconds()
}

// Now returns the current simulation time.
func (c *Clock) Now() time.Duration { return c.now }

// Step returns the timestep.
func (c *Clock) Step() time.Duration { return c.step }

// Frames returns the number of Advance calls.
func (c *Clock) Frames() uint64 { return c.frames }
