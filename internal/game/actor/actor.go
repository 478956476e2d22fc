// Package actor defines the shared entity shape for the player and enemies.
package actor

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/mazestrike/internal/game/condition"
)

// Kind distinguishes the player from enemies.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
)

// String returns a lower-case kind label.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// Spec holds the per-actor tuning read at construction time.
type Spec struct {
	BaseSpeed       float64
	TurnSpeed       float64
	CollisionRadius float64
	Sensitivity     float64
}

// Actor is a player or enemy in the maze.
type Actor struct {
	ID   string
	Kind Kind
	X    float64
	Y    float64
	// Angle is the facing angle in radians; it is never normalised.
	Angle float64

	radius      float64
	baseSpeed   float64
	turnSpeed   float64
	sensitivity float64

	// Status is the actor's status effect machine.
	Status condition.State
}

// New creates an actor with a fresh ID at (x, y) facing angle.
//
// Precondition: spec.CollisionRadius > 0.
// Postcondition: Status is Normal.
func New(kind Kind, spec Spec, x, y, angle float64) *Actor {
	return &Actor{
		ID:          uuid.New().String(),
		Kind:        kind,
		X:           x,
		Y:           y,
		Angle:       angle,
		radius:      spec.CollisionRadius,
		baseSpeed:   spec.BaseSpeed,
		turnSpeed:   spec.TurnSpeed,
		sensitivity: spec.Sensitivity,
	}
}

// Radius returns the collision radius fixed at creation.
func (a *Actor) Radius() float64 { return a.radius }

// BaseSpeed returns the unmodified movement speed in grid units per second.
func (a *Actor) BaseSpeed() float64 { return a.baseSpeed }

// TurnSpeed returns the keyboard turn rate in radians per second.
func (a *Actor) TurnSpeed() float64 { return a.turnSpeed }

// Sensitivity returns the pointer sensitivity.
func (a *Actor) Sensitivity() float64 { return a.sensitivity }

// SpeedMultiplier is derived strictly from the current status.
func (a *Actor) SpeedMultiplier() float64 { return a.Status.SpeedMultiplier() }

// EffectiveSpeed returns BaseSpeed scaled by the status speed multiplier.
//
// Postcondition: Returns 0 while Stunned or Immobilized.
func (a *Actor) EffectiveSpeed() float64 {
	return a.baseSpeed * a.SpeedMultiplier()
}

// ApplyEffect transitions the actor's status machine at now.
func (a *Actor) ApplyEffect(e condition.Effect, now time.Duration) {
	a.Status.Apply(e, now)
}

// Forward returns the unit vector along the facing angle.
func (a *Actor) Forward() (float64, float64) {
	return math.Cos(a.Angle), math.Sin(a.Angle)
}

// PointAhead returns the point dist units ahead of the actor along its facing.
func (a *Actor) PointAhead(dist float64) (float64, float64) {
	fx, fy := a.Forward()
	return a.X + fx*dist, a.Y + fy*dist
}

// DistanceTo returns the Euclidean distance from the actor to (x, y).
func (a *Actor) DistanceTo(x, y float64) float64 {
	return math.Hypot(a.X-x, a.Y-y)
}

// Hostile reports whether a and other are on opposing sides.
func (a *Actor) Hostile(other *Actor) bool {
	return a.Kind != other.Kind
}

// BearingTo returns the signed turn, in (-pi, pi], from the actor's facing to
// the point (x, y). Positive values are clockwise in screen space (increasing angle).
func (a *Actor) BearingTo(x, y float64) float64 {
	return WrapAngle(math.Atan2(y-a.Y, x-a.X) - a.Angle)
}

// WrapAngle maps angle into (-pi, pi].
func WrapAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	switch {
	case angle <= -math.Pi:
		angle += 2 * math.Pi
	case angle > math.Pi:
		angle -= 2 * math.Pi
	}
	return angle
}
