package weapon

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
)

// Weapon is one wielded weapon instance with its ammo and cooldown state.
//
// Invariant: 0 <= ammo <= params.MaxAmmo.
type Weapon struct {
	params     Params
	ammo       int
	lastFireAt time.Duration
	hasFired   bool
}

// New returns a fully loaded weapon of kind k using the table defaults.
//
// Postcondition: Returns an error wrapping ErrUnknownKind when k is not a
// known variant.
func New(k Kind) (*Weapon, error) {
	p, err := Lookup(k)
	if err != nil {
		return nil, err
	}
	return NewWithParams(p)
}

// NewWithParams returns a fully loaded weapon built from p.
//
// Postcondition: Ammo() == p.MaxAmmo on success.
func NewWithParams(p Params) (*Weapon, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Weapon{params: p, ammo: p.MaxAmmo}, nil
}

// MustNew is New that panics on error. Intended for fixed kinds known at
// compile time.
func MustNew(k Kind) *Weapon {
	w, err := New(k)
	if err != nil {
		panic(fmt.Sprintf("weapon: MustNew(%q): %v", k, err))
	}
	return w
}

// Kind returns the weapon's variant.
func (w *Weapon) Kind() Kind { return w.params.Kind }

// Name returns the display name of the variant.
func (w *Weapon) Name() string { return w.params.Name }

// Params returns the variant parameters this weapon was built with.
func (w *Weapon) Params() Params { return w.params }

// Ammo returns the rounds remaining.
func (w *Weapon) Ammo() int { return w.ammo }

// MaxAmmo returns the ammo capacity.
func (w *Weapon) MaxAmmo() int { return w.params.MaxAmmo }

// LastFireAt returns the time of the last successful fire and whether the
// weapon has ever fired.
func (w *Weapon) LastFireAt() (time.Duration, bool) { return w.lastFireAt, w.hasFired }

// CanFire reports whether the weapon has ammo and its cooldown has elapsed at now.
func (w *Weapon) CanFire(now time.Duration) bool {
	if w.ammo <= 0 {
		return false
	}
	return !w.hasFired || now-w.lastFireAt >= w.params.Cooldown
}

// Fire pulls the trigger at now. Ammo is consumed and the cooldown clock is
// reset together, or not at all.
//
// Postcondition: On true, Ammo() decreased by exactly 1 and LastFireAt() == now.
// On false, no state changed.
func (w *Weapon) Fire(now time.Duration) bool {
	if !w.CanFire(now) {
		return false
	}
	w.ammo--
	w.lastFireAt = now
	w.hasFired = true
	return true
}

// Reload restores ammo to capacity. Cooldown state is untouched.
//
// Postcondition: Ammo() == MaxAmmo().
func (w *Weapon) Reload() {
	w.ammo = w.params.MaxAmmo
}

// AmmoRatio returns Ammo()/MaxAmmo() in [0, 1].
func (w *Weapon) AmmoRatio() float64 {
	return float64(w.ammo) / float64(w.params.MaxAmmo)
}

// ApplyEffect puts target into this variant's status effect at now.
func (w *Weapon) ApplyEffect(target *actor.Actor, now time.Duration) {
	target.ApplyEffect(w.params.Effect(), now)
}
