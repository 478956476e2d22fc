package weapon

import (
	"time"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/projectile"
)

// FlashDistance is how far ahead of the firer the muzzle flash spawns.
const FlashDistance = 0.8

// Outcome is the result of one trigger pull.
type Outcome int

const (
	// OutcomeEmpty means the weapon had no ammo.
	OutcomeEmpty Outcome = iota
	// OutcomeCooldown means the cooldown had not elapsed.
	OutcomeCooldown
	// OutcomeHit means an instant-hit raycast struck a target.
	OutcomeHit
	// OutcomeMiss means an instant-hit raycast found nothing.
	OutcomeMiss
	// OutcomeLaunched means a projectile was handed to the projectile system.
	OutcomeLaunched
)

// String returns a lower-case outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomeCooldown:
		return "cooldown"
	case OutcomeHit:
		return "hit"
	case OutcomeMiss:
		return "miss"
	case OutcomeLaunched:
		return "launched"
	default:
		return "unknown"
	}
}

// Fired reports whether the trigger pull consumed ammo.
func (o Outcome) Fired() bool {
	return o == OutcomeHit || o == OutcomeMiss || o == OutcomeLaunched
}

// Flash is a transient visual flash request.
type Flash struct {
	X, Y  float64
	Color string
}

// Shot is the result of Discharge.
type Shot struct {
	Weapon  Kind
	Outcome Outcome
	// Target is the actor struck by an instant hit.
	Target *actor.Actor
	// Projectile is the spawned projectile for projectile variants.
	Projectile *projectile.Projectile
	// Flash is set whenever an instant-hit weapon fires.
	Flash *Flash
}

// Raycaster finds the nearest actor hostile to shooter along a ray.
type Raycaster interface {
	Raycast(shooter *actor.Actor, originX, originY, angle, maxRange float64) *actor.Actor
}

// Spawner takes ownership of a newly fired projectile.
type Spawner interface {
	Add(p *projectile.Projectile)
}

// Discharge fires the weapon from firer at now and runs the variant's
// behavior: an instant-hit variant raycasts and applies its effect within
// this call; a projectile variant hands one projectile to sp.
//
// Precondition: firer, rc and sp must be non-nil.
// Postcondition: Outcome.Fired() is true iff Fire(now) succeeded.
func (w *Weapon) Discharge(now time.Duration, firer *actor.Actor, rc Raycaster, sp Spawner) Shot {
	shot := Shot{Weapon: w.params.Kind}
	if !w.Fire(now) {
		if w.ammo <= 0 {
			shot.Outcome = OutcomeEmpty
		} else {
			shot.Outcome = OutcomeCooldown
		}
		return shot
	}

	switch w.params.Mechanism {
	case InstantHit:
		fx, fy := firer.PointAhead(FlashDistance)
		shot.Flash = &Flash{X: fx, Y: fy, Color: w.params.FlashColor}
		target := rc.Raycast(firer, firer.X, firer.Y, firer.Angle, w.params.Range)
		if target == nil {
			shot.Outcome = OutcomeMiss
			return shot
		}
		w.ApplyEffect(target, now)
		shot.Outcome = OutcomeHit
		shot.Target = target
	case SlowProjectile, FastProjectile:
		p := projectile.New(firer, firer.X, firer.Y, firer.Angle,
			w.params.ProjectileSpeed, w.params.ProjectileRadius, w, now)
		sp.Add(p)
		shot.Outcome = OutcomeLaunched
		shot.Projectile = p
	}
	return shot
}
