// Package ai provides enemy controllers: a native chaser and a Lua-scripted
// controller, and a registry that resolves behavior names from level files.
package ai

import (
	"math"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/combat"
)

// Chaser turns toward a visible player and closes in, firing when the player
// is inside FireRange and within AimTolerance of its facing. Without sight of
// the player it turns in place to search.
type Chaser struct {
	// FireRange is the maximum distance at which the chaser fires. Zero never fires.
	FireRange float64
	// AimTolerance is the largest bearing, in radians, treated as on target.
	AimTolerance float64
	// HoldDistance is how close the chaser approaches before stopping.
	HoldDistance float64
	// Search turns in place while the player is out of sight.
	Search bool
}

// DefaultChaser returns a Chaser with the stock tuning.
func DefaultChaser() Chaser {
	return Chaser{
		FireRange:    4,
		AimTolerance: 0.1,
		HoldDistance: 1,
		Search:       true,
	}
}

// Decide implements combat.Controller.
func (c Chaser) Decide(self *actor.Actor, v combat.View) combat.Decision {
	var d combat.Decision
	if v.Player == nil || !v.PlayerVisible {
		d.Move.TurnRight = c.Search
		return d
	}

	bearing := self.BearingTo(v.Player.X, v.Player.Y)
	dist := self.DistanceTo(v.Player.X, v.Player.Y)
	onTarget := math.Abs(bearing) <= c.AimTolerance

	switch {
	case onTarget:
	case bearing > 0:
		d.Move.TurnRight = true
	default:
		d.Move.TurnLeft = true
	}
	d.Move.Forward = dist > c.HoldDistance && math.Abs(bearing) < math.Pi/2
	d.Fire = onTarget && c.FireRange > 0 && dist <= c.FireRange
	return d
}
