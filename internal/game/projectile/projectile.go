// Package projectile owns in-flight projectiles: it advances them, detects
// wall and actor impacts, and applies the owning weapon's effect on hit.
package projectile

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
)

// Effector applies a weapon's effect to a struck actor. A projectile holds a
// non-owning reference to the Effector that spawned it.
type Effector interface {
	Name() string
	ApplyEffect(target *actor.Actor, now time.Duration)
}

// Projectile is one in-flight shot.
type Projectile struct {
	ID        string
	OwnerID   string
	OwnerKind actor.Kind
	X         float64
	Y         float64
	Angle     float64
	// Speed is in grid units per second.
	Speed     float64
	Radius    float64
	Source    Effector
	SpawnedAt time.Duration
	// Traveled is the total distance covered since spawn.
	Traveled float64
}

// New creates a projectile fired by owner from (x, y) along angle.
//
// Precondition: owner and src must be non-nil; speed >= 0; radius >= 0.
func New(owner *actor.Actor, x, y, angle, speed, radius float64, src Effector, now time.Duration) *Projectile {
	return &Projectile{
		ID:        uuid.New().String(),
		OwnerID:   owner.ID,
		OwnerKind: owner.Kind,
		X:         x,
		Y:         y,
		Angle:     angle,
		Speed:     speed,
		Radius:    radius,
		Source:    src,
		SpawnedAt: now,
	}
}

// Age returns how long the projectile has been alive at now.
func (p *Projectile) Age(now time.Duration) time.Duration {
	return now - p.SpawnedAt
}

// step moves the projectile along its angle for dt seconds.
func (p *Projectile) step(dt float64) {
	d := p.Speed * dt
	p.X += math.Cos(p.Angle) * d
	p.Y += math.Sin(p.Angle) * d
	p.Traveled += d
}

// canHit reports whether the projectile may strike a. Projectiles never hit
// their owner or the owner's side.
func (p *Projectile) canHit(a *actor.Actor) bool {
	return a.ID != p.OwnerID && a.Kind != p.OwnerKind
}

// Overlaps reports whether the projectile and a are within the sum of their radii.
func (p *Projectile) Overlaps(a *actor.Actor) bool {
	return a.DistanceTo(p.X, p.Y) <= p.Radius+a.Radius()
}
