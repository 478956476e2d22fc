// Package movement advances actors through the occupancy grid with
// axis-separated collision so actors slide along walls.
package movement

import (
	"math"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/grid"
)

// DefaultPointerScale converts one unit of pointer delta into radians before
// sensitivity is applied.
const DefaultPointerScale = 0.002

// Intent is one frame of movement input for an actor.
type Intent struct {
	Forward   bool
	Back      bool
	Left      bool
	Right     bool
	TurnLeft  bool
	TurnRight bool
	// PointerDX is the horizontal pointer delta accumulated this frame.
	PointerDX float64
}

// IsIdle reports whether the intent requests neither translation nor rotation.
func (in Intent) IsIdle() bool {
	return !in.Forward && !in.Back && !in.Left && !in.Right &&
		!in.TurnLeft && !in.TurnRight && in.PointerDX == 0
}

// Result is the outcome of one Resolve call.
type Result struct {
	X, Y float64
	// BlockedX and BlockedY report which candidate axes were rejected.
	BlockedX bool
	BlockedY bool
}

// Resolver applies movement intent against an occupancy grid.
type Resolver struct {
	// PointerScale is the fixed radians-per-pointer-unit constant.
	PointerScale float64
}

// NewResolver returns a Resolver using pointerScale, or DefaultPointerScale
// when pointerScale <= 0.
func NewResolver(pointerScale float64) *Resolver {
	if pointerScale <= 0 {
		pointerScale = DefaultPointerScale
	}
	return &Resolver{PointerScale: pointerScale}
}

func axis(pos, neg bool) float64 {
	v := 0.0
	if pos {
		v++
	}
	if neg {
		v--
	}
	return v
}

// Turn applies rotation only. Keyboard turning scales with dt; pointer delta
// is added unconditionally and does not depend on dt.
func (r *Resolver) Turn(a *actor.Actor, in Intent, dt float64) {
	a.Angle += axis(in.TurnRight, in.TurnLeft) * a.TurnSpeed() * dt
	if in.PointerDX != 0 {
		a.Angle += in.PointerDX * r.PointerScale * a.Sensitivity()
	}
}

// Resolve rotates the actor, then moves it by its effective speed for dt
// seconds. The x candidate is kept only if the cell at (candidateX, currentY)
// is open; the y candidate only if (currentX, candidateY) is open. Both axes
// are checked against the position held before this move, so an accepted x
// step does not change the y check.
//
// Precondition: a and g must be non-nil; dt >= 0.
// Postcondition: a.X, a.Y hold the returned position; an actor whose
// effective speed is 0 does not translate.
func (r *Resolver) Resolve(a *actor.Actor, in Intent, dt float64, g grid.Grid) Result {
	r.Turn(a, in, dt)

	fwd := axis(in.Forward, in.Back)
	strafe := axis(in.Right, in.Left)
	step := a.EffectiveSpeed() * dt
	if step == 0 || (fwd == 0 && strafe == 0) {
		return Result{X: a.X, Y: a.Y}
	}

	dx := (math.Cos(a.Angle)*fwd + math.Cos(a.Angle+math.Pi/2)*strafe) * step
	dy := (math.Sin(a.Angle)*fwd + math.Sin(a.Angle+math.Pi/2)*strafe) * step

	res := Result{}
	x0 := a.X
	if dx != 0 {
		if grid.IsOpen(g, a.X+dx, a.Y) {
			a.X += dx
		} else {
			res.BlockedX = true
		}
	}
	if dy != 0 {
		if grid.IsOpen(g, x0, a.Y+dy) {
			a.Y += dy
		} else {
			res.BlockedY = true
		}
	}
	res.X, res.Y = a.X, a.Y
	return res
}
