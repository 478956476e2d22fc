package weapon_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/condition"
	"github.com/cory-johannsen/mazestrike/internal/game/projectile"
	"github.com/cory-johannsen/mazestrike/internal/game/weapon"
)

type stubRaycaster struct {
	target   *actor.Actor
	maxRange float64
	calls    int
}

func (s *stubRaycaster) Raycast(_ *actor.Actor, _, _, _, maxRange float64) *actor.Actor {
	s.calls++
	s.maxRange = maxRange
	return s.target
}

type collectSpawner struct {
	spawned []*projectile.Projectile
}

func (c *collectSpawner) Add(p *projectile.Projectile) { c.spawned = append(c.spawned, p) }

var spec = actor.Spec{BaseSpeed: 2, TurnSpeed: 2, CollisionRadius: 0.3}

func TestDischarge_TaserHit(t *testing.T) {
	firer := actor.New(actor.KindPlayer, spec, 1, 1, math.Pi/2)
	enemy := actor.New(actor.KindEnemy, spec, 1, 2, 0)
	rc := &stubRaycaster{target: enemy}
	sp := &collectSpawner{}
	w := weapon.MustNew(weapon.Taser)

	shot := w.Discharge(time.Second, firer, rc, sp)
	assert.Equal(t, weapon.OutcomeHit, shot.Outcome)
	assert.Same(t, enemy, shot.Target)
	assert.Equal(t, 1.6, rc.maxRange)
	assert.Equal(t, condition.Stunned, enemy.Status.Kind())
	assert.Equal(t, 0.0, enemy.SpeedMultiplier())
	assert.Empty(t, sp.spawned)
	require.NotNil(t, shot.Flash)
	assert.InDelta(t, 1.0, shot.Flash.X, 1e-9)
	assert.InDelta(t, 1.8, shot.Flash.Y, 1e-9)
	assert.Equal(t, w.Params().FlashColor, shot.Flash.Color)
}

func TestDischarge_TaserMiss(t *testing.T) {
	firer := actor.New(actor.KindPlayer, spec, 1, 1, 0)
	w := weapon.MustNew(weapon.Taser)
	shot := w.Discharge(0, firer, &stubRaycaster{}, &collectSpawner{})
	assert.Equal(t, weapon.OutcomeMiss, shot.Outcome)
	assert.True(t, shot.Outcome.Fired())
	assert.Nil(t, shot.Target)
	assert.NotNil(t, shot.Flash)
	assert.Equal(t, w.MaxAmmo()-1, w.Ammo())
}

func TestDischarge_StunLaunchesOneProjectile(t *testing.T) {
	firer := actor.New(actor.KindPlayer, spec, 1.5, 2.5, 0.25)
	rc := &stubRaycaster{}
	sp := &collectSpawner{}
	w := weapon.MustNew(weapon.Stun)

	shot := w.Discharge(3*time.Second, firer, rc, sp)
	assert.Equal(t, weapon.OutcomeLaunched, shot.Outcome)
	require.Len(t, sp.spawned, 1)
	p := sp.spawned[0]
	assert.Same(t, p, shot.Projectile)
	assert.Equal(t, 3.2, p.Speed)
	assert.Equal(t, 0.25, p.Angle)
	assert.Equal(t, firer.ID, p.OwnerID)
	assert.Equal(t, 3*time.Second, p.SpawnedAt)
	assert.Same(t, w, p.Source)
	assert.Nil(t, shot.Flash)
	assert.Zero(t, rc.calls)
}

func TestDischarge_FailedFireReportsReason(t *testing.T) {
	firer := actor.New(actor.KindPlayer, spec, 1, 1, 0)
	sp := &collectSpawner{}
	w := weapon.MustNew(weapon.Tranq)

	require.Equal(t, weapon.OutcomeLaunched, w.Discharge(0, firer, &stubRaycaster{}, sp).Outcome)
	shot := w.Discharge(ms, firer, &stubRaycaster{}, sp)
	assert.Equal(t, weapon.OutcomeCooldown, shot.Outcome)
	assert.False(t, shot.Outcome.Fired())

	now := time.Duration(0)
	for w.Ammo() > 0 {
		now += time.Hour
		w.Fire(now)
	}
	shot = w.Discharge(now+time.Hour, firer, &stubRaycaster{}, sp)
	assert.Equal(t, weapon.OutcomeEmpty, shot.Outcome)
	assert.Len(t, sp.spawned, 1)
}

func TestArsenal(t *testing.T) {
	a, err := weapon.NewDefaultArsenal(map[weapon.Kind]weapon.Tuning{
		weapon.Tranq: {MaxAmmo: ptr(9)},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, weapon.Taser, a.Current().Kind())

	a.Next()
	assert.Equal(t, weapon.Stun, a.Current().Kind())
	a.Next()
	a.Next()
	assert.Equal(t, weapon.Taser, a.Current().Kind())

	assert.True(t, a.Select(weapon.Tranq))
	assert.Equal(t, 9, a.Current().MaxAmmo())
	assert.False(t, a.Select("flamethrower"))
	assert.Equal(t, weapon.Tranq, a.Current().Kind())

	w, ok := a.Get(weapon.Stun)
	assert.True(t, ok)
	assert.Equal(t, weapon.Stun, w.Kind())
}

func TestArsenal_Empty(t *testing.T) {
	a := weapon.NewArsenal()
	assert.Nil(t, a.Current())
	a.Next()
	assert.Equal(t, 0, a.Len())
}

func TestNewDefaultArsenal_InvalidTuning(t *testing.T) {
	_, err := weapon.NewDefaultArsenal(map[weapon.Kind]weapon.Tuning{
		weapon.Taser: {MaxAmmo: ptr(-1)},
	})
	assert.Error(t, err)
}
