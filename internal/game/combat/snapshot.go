package combat

import (
	"time"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
)

// ActorSnapshot is a read-only copy of one actor's state.
type ActorSnapshot struct {
	ID              string  `json:"id"`
	Kind            string  `json:"kind"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Angle           float64 `json:"angle"`
	Status          string  `json:"status"`
	StatusRemaining string  `json:"status_remaining,omitempty"`
	SpeedMultiplier float64 `json:"speed_multiplier"`
}

// ProjectileSnapshot is a read-only copy of one live projectile.
type ProjectileSnapshot struct {
	ID       string  `json:"id"`
	Weapon   string  `json:"weapon"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Traveled float64 `json:"traveled"`
}

// WeaponSnapshot is a read-only copy of one held weapon.
type WeaponSnapshot struct {
	Kind      string  `json:"kind"`
	Ammo      int     `json:"ammo"`
	AmmoRatio float64 `json:"ammo_ratio"`
	Selected  bool    `json:"selected"`
}

// Snapshot is a point-in-time copy of the world, safe to hand to other goroutines.
type Snapshot struct {
	Frame       uint64               `json:"frame"`
	Player      ActorSnapshot        `json:"player"`
	Weapons     []WeaponSnapshot     `json:"weapons"`
	Enemies     []ActorSnapshot      `json:"enemies"`
	Projectiles []ProjectileSnapshot `json:"projectiles"`
}

// Snapshot copies the world state at now. The caller must serialise it with Step.
func (l *Loop) Snapshot(now time.Duration) Snapshot {
	s := Snapshot{
		Frame:       l.frames,
		Player:      actorSnapshot(l.player, now),
		Enemies:     make([]ActorSnapshot, 0, len(l.enemies)),
		Projectiles: make([]ProjectileSnapshot, 0, l.projectiles.Len()),
	}
	current := l.arsenal.Current()
	for _, w := range l.arsenal.All() {
		s.Weapons = append(s.Weapons, WeaponSnapshot{
			Kind:      string(w.Kind()),
			Ammo:      w.Ammo(),
			AmmoRatio: w.AmmoRatio(),
			Selected:  w == current,
		})
	}
	for _, e := range l.enemies {
		s.Enemies = append(s.Enemies, actorSnapshot(e.Actor, now))
	}
	for _, p := range l.projectiles.Live() {
		s.Projectiles = append(s.Projectiles, ProjectileSnapshot{
			ID:       p.ID,
			Weapon:   p.Source.Name(),
			X:        p.X,
			Y:        p.Y,
			Traveled: p.Traveled,
		})
	}
	return s
}

func actorSnapshot(a *actor.Actor, now time.Duration) ActorSnapshot {
	snap := ActorSnapshot{
		ID:              a.ID,
		Kind:            a.Kind.String(),
		X:               a.X,
		Y:               a.Y,
		Angle:           a.Angle,
		Status:          a.Status.Kind().String(),
		SpeedMultiplier: a.SpeedMultiplier(),
	}
	if rem := a.Status.Remaining(now); rem > 0 {
		snap.StatusRemaining = rem.String()
	}
	return snap
}
