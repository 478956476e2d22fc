// Package weapon implements the closed set of weapon variants, their
// ammo/cooldown gating, and their discharge behavior.
package weapon

import (
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/mazestrike/internal/game/condition"
)

// Kind identifies a weapon variant.
type Kind string

const (
	// Taser resolves instantly along the firer's facing and stuns.
	Taser Kind = "taser"
	// Stun launches a slow projectile that slows its target.
	Stun Kind = "stun"
	// Tranq launches a fast projectile that immobilizes its target.
	Tranq Kind = "tranq"
)

// ErrUnknownKind is returned when a weapon is requested for a kind outside
// the variant table. It indicates a configuration error.
var ErrUnknownKind = errors.New("weapon: unknown kind")

// Mechanism is how a variant discharges.
type Mechanism int

const (
	InstantHit Mechanism = iota
	SlowProjectile
	FastProjectile
)

// String returns a lower-case mechanism label.
func (m Mechanism) String() string {
	switch m {
	case InstantHit:
		return "instant_hit"
	case SlowProjectile:
		return "slow_projectile"
	case FastProjectile:
		return "fast_projectile"
	default:
		return "unknown"
	}
}

// IsProjectile reports whether the mechanism spawns a projectile.
func (m Mechanism) IsProjectile() bool {
	return m == SlowProjectile || m == FastProjectile
}

// Params is one row of the variant table.
type Params struct {
	Kind      Kind
	Name      string
	Mechanism Mechanism
	MaxAmmo   int
	Cooldown  time.Duration
	// Range is the raycast length for InstantHit variants.
	Range float64
	// ProjectileSpeed is in grid units per second.
	ProjectileSpeed  float64
	ProjectileRadius float64
	EffectDuration   time.Duration
	// SlowdownFactor is the speed multiplier a Slowed target keeps.
	SlowdownFactor float64
	// FlashColor is the muzzle flash color requested from the visual layer.
	FlashColor string
}

// Effect returns the status effect this variant applies on hit.
func (p Params) Effect() condition.Effect {
	switch p.Kind {
	case Taser:
		return condition.Stun(p.EffectDuration)
	case Stun:
		return condition.Slow(p.SlowdownFactor, p.EffectDuration)
	case Tranq:
		return condition.Immobilize(p.EffectDuration)
	default:
		return condition.None
	}
}

// Validate checks the invariants a weapon needs to be constructed.
//
// Postcondition: Returns nil iff Kind is known, MaxAmmo > 0 and the
// mechanism-specific fields are usable.
func (p Params) Validate() error {
	if _, ok := table[p.Kind]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, p.Kind)
	}
	var errs []error
	if p.MaxAmmo <= 0 {
		errs = append(errs, fmt.Errorf("max ammo must be > 0, got %d", p.MaxAmmo))
	}
	if p.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown must not be negative, got %s", p.Cooldown))
	}
	if p.Mechanism == InstantHit && p.Range <= 0 {
		errs = append(errs, fmt.Errorf("range must be > 0, got %g", p.Range))
	}
	if p.Mechanism.IsProjectile() && p.ProjectileSpeed < 0 {
		errs = append(errs, fmt.Errorf("projectile speed must not be negative, got %g", p.ProjectileSpeed))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon %s: %w", p.Kind, errors.Join(errs...))
	}
	return nil
}

// table is the per-variant dispatch table. Adding a variant means adding a
// Kind constant, a row here, and a case in Params.Effect.
var table = map[Kind]Params{
	Taser: {
		Kind:           Taser,
		Name:           "Taser",
		Mechanism:      InstantHit,
		MaxAmmo:        8,
		Cooldown:       600 * time.Millisecond,
		Range:          1.6,
		EffectDuration: 1500 * time.Millisecond,
		FlashColor:     "#7fd4ff",
	},
	Stun: {
		Kind:             Stun,
		Name:             "Stun Gun",
		Mechanism:        SlowProjectile,
		MaxAmmo:          6,
		Cooldown:         900 * time.Millisecond,
		ProjectileSpeed:  3.2,
		ProjectileRadius: 0.15,
		EffectDuration:   2500 * time.Millisecond,
		SlowdownFactor:   0.35,
		FlashColor:       "#ffe066",
	},
	Tranq: {
		Kind:             Tranq,
		Name:             "Tranquilizer",
		Mechanism:        FastProjectile,
		MaxAmmo:          4,
		Cooldown:         1200 * time.Millisecond,
		ProjectileSpeed:  5.0,
		ProjectileRadius: 0.1,
		EffectDuration:   3000 * time.Millisecond,
		FlashColor:       "#9cff8a",
	},
}

// order fixes the inventory order of the variants.
var order = []Kind{Taser, Stun, Tranq}

// Kinds returns every known variant in inventory order.
func Kinds() []Kind {
	out := make([]Kind, len(order))
	copy(out, order)
	return out
}

// Lookup returns the default parameters for k.
//
// Postcondition: Returns an error wrapping ErrUnknownKind when k has no row.
func Lookup(k Kind) (Params, error) {
	p, ok := table[k]
	if !ok {
		return Params{}, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	return p, nil
}

// Tuning overrides table values. A nil field keeps the table default; a
// non-nil field replaces it, zero included.
type Tuning struct {
	MaxAmmo          *int
	Cooldown         *time.Duration
	Range            *float64
	ProjectileSpeed  *float64
	ProjectileRadius *float64
	EffectDuration   *time.Duration
	SlowdownFactor   *float64
}

// With returns p with every set field of t applied.
func (p Params) With(t Tuning) Params {
	override(&p.MaxAmmo, t.MaxAmmo)
	override(&p.Cooldown, t.Cooldown)
	override(&p.Range, t.Range)
	override(&p.ProjectileSpeed, t.ProjectileSpeed)
	override(&p.ProjectileRadius, t.ProjectileRadius)
	override(&p.EffectDuration, t.EffectDuration)
	override(&p.SlowdownFactor, t.SlowdownFactor)
	return p
}

func override[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
