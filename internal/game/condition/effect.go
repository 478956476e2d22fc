// Package condition implements the status effect state machine that governs
// an actor's transient movement condition and its time-bounded expiry.
package condition

import (
	"fmt"
	"math"
	"time"
)

// Kind is the closed set of status conditions.
type Kind int

const (
	Normal Kind = iota
	Stunned
	Slowed
	Immobilized
)

// String returns a lower-case condition label.
func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Stunned:
		return "stunned"
	case Slowed:
		return "slowed"
	case Immobilized:
		return "immobilized"
	default:
		return "unknown"
	}
}

// ParseKind maps a condition label back to its Kind.
//
// Postcondition: Returns an error for any label String does not produce.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "normal":
		return Normal, nil
	case "stunned":
		return Stunned, nil
	case "slowed":
		return Slowed, nil
	case "immobilized":
		return Immobilized, nil
	default:
		return Normal, fmt.Errorf("condition: unknown kind %q", s)
	}
}

// Effect is one application of a condition: its kind, how long it lasts and,
// for Slowed, the speed factor.
type Effect struct {
	Kind     Kind
	Duration time.Duration
	// Factor is the speed multiplier while Slowed; ignored for other kinds.
	Factor float64
}

// None is the Normal effect. Applying it clears any active condition.
var None = Effect{Kind: Normal}

// Stun returns a Stunned effect lasting d.
func Stun(d time.Duration) Effect {
	return Effect{Kind: Stunned, Duration: d}
}

// Slow returns a Slowed effect lasting d with speed factor clamped to [0, 1].
func Slow(factor float64, d time.Duration) Effect {
	return Effect{Kind: Slowed, Duration: d, Factor: clamp01(factor)}
}

// Immobilize returns an Immobilized effect lasting d.
func Immobilize(d time.Duration) Effect {
	return Effect{Kind: Immobilized, Duration: d}
}

// SpeedMultiplier returns the movement multiplier an effect imposes.
//
// Postcondition: Returns a value in [0, 1]; 1 for Normal, 0 for Stunned and
// Immobilized, the clamped factor for Slowed.
func (e Effect) SpeedMultiplier() float64 {
	switch e.Kind {
	case Stunned, Immobilized:
		return 0
	case Slowed:
		return clamp01(e.Factor)
	default:
		return 1
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
