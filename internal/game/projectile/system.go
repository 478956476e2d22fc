package projectile

import (
	"time"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/grid"
)

// Outcome is the terminal condition that removed a projectile.
type Outcome int

const (
	HitActor Outcome = iota
	HitWall
	Expired
)

// String returns a lower-case outcome label.
func (o Outcome) String() string {
	switch o {
	case HitActor:
		return "hit_actor"
	case HitWall:
		return "hit_wall"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Impact reports one projectile leaving the live set.
type Impact struct {
	Projectile *Projectile
	Outcome    Outcome
	// Target is the struck actor; nil unless Outcome == HitActor.
	Target *actor.Actor
}

// Limits bounds projectile lifetime. A zero field disables that bound.
type Limits struct {
	MaxAge   time.Duration
	MaxRange float64
}

// System owns every live projectile.
//
// System is not safe for concurrent use; the frame loop is its only caller.
type System struct {
	limits Limits
	live   []*Projectile
}

// NewSystem creates an empty System with the given lifetime limits.
func NewSystem(limits Limits) *System {
	return &System{limits: limits}
}

// Add hands ownership of p to the system.
//
// Precondition: p must be non-nil and not already live.
// Postcondition: Len() is incremented by 1.
func (s *System) Add(p *Projectile) {
	s.live = append(s.live, p)
}

// Len returns the number of live projectiles.
func (s *System) Len() int { return len(s.live) }

// Live returns a snapshot slice of the live projectiles.
func (s *System) Live() []*Projectile {
	out := make([]*Projectile, len(s.live))
	copy(out, s.live)
	return out
}

// Clear destroys every live projectile without effect.
func (s *System) Clear() { s.live = nil }

// Advance moves every live projectile by speed*dt along its angle and resolves
// terminal conditions in order: age expiry, wall, actor hit, range expiry.
// A projectile that overlaps several hostile actors strikes only the nearest
// one (ties go to the earliest actor in the slice); the struck actor receives
// the owning weapon's effect at now and the projectile is destroyed.
//
// Precondition: g must be non-nil; dt >= 0.
// Postcondition: Every projectile named in the returned impacts is no longer live.
func (s *System) Advance(now time.Duration, dt float64, actors []*actor.Actor, g grid.Grid) []Impact {
	if len(s.live) == 0 {
		return nil
	}
	var impacts []Impact
	kept := s.live[:0]
	for _, p := range s.live {
		if s.limits.MaxAge > 0 && p.Age(now) > s.limits.MaxAge {
			impacts = append(impacts, Impact{Projectile: p, Outcome: Expired})
			continue
		}

		p.step(dt)

		if !grid.IsOpen(g, p.X, p.Y) {
			impacts = append(impacts, Impact{Projectile: p, Outcome: HitWall})
			continue
		}

		if target := nearestHit(p, actors); target != nil {
			p.Source.ApplyEffect(target, now)
			impacts = append(impacts, Impact{Projectile: p, Outcome: HitActor, Target: target})
			continue
		}

		if s.limits.MaxRange > 0 && p.Traveled > s.limits.MaxRange {
			impacts = append(impacts, Impact{Projectile: p, Outcome: Expired})
			continue
		}

		kept = append(kept, p)
	}
	for i := len(kept); i < len(s.live); i++ {
		s.live[i] = nil
	}
	s.live = kept
	return impacts
}

func nearestHit(p *Projectile, actors []*actor.Actor) *actor.Actor {
	var best *actor.Actor
	bestDist := 0.0
	for _, a := range actors {
		if !p.canHit(a) || !p.Overlaps(a) {
			continue
		}
		d := a.DistanceTo(p.X, p.Y)
		if best == nil || d < bestDist {
			best, bestDist = a, d
		}
	}
	return best
}
