package combat_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/combat"
	"github.com/cory-johannsen/mazestrike/internal/game/condition"
	"github.com/cory-johannsen/mazestrike/internal/game/grid"
	"github.com/cory-johannsen/mazestrike/internal/game/movement"
	"github.com/cory-johannsen/mazestrike/internal/game/projectile"
	"github.com/cory-johannsen/mazestrike/internal/game/weapon"
)

const ms = time.Millisecond

var hall = grid.MustParseMaze(
	"############",
	"#..........#",
	"#..........#",
	"############",
)

var (
	playerSpec = actor.Spec{BaseSpeed: 2, TurnSpeed: 3, CollisionRadius: 0.25, Sensitivity: 1}
	enemySpec  = actor.Spec{BaseSpeed: 1, TurnSpeed: 2, CollisionRadius: 0.3}
)

type recordingAudio struct{ cues []combat.Cue }

func (r *recordingAudio) Play(c combat.Cue) { r.cues = append(r.cues, c) }

func (r *recordingAudio) events() []combat.Event {
	out := make([]combat.Event, 0, len(r.cues))
	for _, c := range r.cues {
		out = append(out, c.Event)
	}
	return out
}

type recordingVisual struct{ flashes []weapon.Flash }

func (r *recordingVisual) Flash(f weapon.Flash) { r.flashes = append(r.flashes, f) }

type fixedController struct{ d combat.Decision }

func (f fixedController) Decide(*actor.Actor, combat.View) combat.Decision { return f.d }

type fixture struct {
	loop   *combat.Loop
	player *actor.Actor
	audio  *recordingAudio
	visual *recordingVisual
	logs   *observer.ObservedLogs
}

func newFixture(t *testing.T, g grid.Grid, limits projectile.Limits) *fixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	arsenal, err := weapon.NewDefaultArsenal(nil)
	require.NoError(t, err)
	player := actor.New(actor.KindPlayer, playerSpec, 1.5, 1.5, 0)
	f := &fixture{player: player, audio: &recordingAudio{}, visual: &recordingVisual{}, logs: logs}
	f.loop = combat.NewLoop(g, player, arsenal, combat.Options{
		Logger: zap.New(core),
		Audio:  f.audio,
		Visual: f.visual,
		Limits: limits,
	})
	return f
}

func TestStep_TaserStunsEnemyInRange(t *testing.T) {
	f := newFixture(t, hall, projectile.Limits{})
	enemy := actor.New(actor.KindEnemy, enemySpec, 2.7, 1.5, 0)
	f.loop.AddEnemy(enemy, nil, nil)

	frame := f.loop.Step(time.Second, 1.0/60, combat.Input{Fire: true})

	require.Len(t, frame.Shots, 1)
	assert.Equal(t, weapon.OutcomeHit, frame.Shots[0].Outcome)
	assert.Same(t, enemy, frame.Shots[0].Target)
	assert.Equal(t, condition.Stunned, enemy.Status.Kind())
	assert.Equal(t, 0.0, enemy.SpeedMultiplier())
	assert.Equal(t, []combat.Event{combat.EventHit}, f.audio.events())
	assert.Equal(t, "Taser", f.audio.cues[0].Weapon)
	require.Len(t, f.visual.flashes, 1)
	assert.InDelta(t, 2.3, f.visual.flashes[0].X, 1e-9)
	assert.InDelta(t, 1.5, f.visual.flashes[0].Y, 1e-9)
	assert.Equal(t, 0, f.loop.Projectiles().Len())
}

func TestStep_TaserMissesOutOfRange(t *testing.T) {
	f := newFixture(t, hall, projectile.Limits{})
	enemy := actor.New(actor.KindEnemy, enemySpec, 3.5, 1.5, 0)
	f.loop.AddEnemy(enemy, nil, nil)

	frame := f.loop.Step(0, 0, combat.Input{Fire: true})
	require.Len(t, frame.Shots, 1)
	assert.Equal(t, weapon.OutcomeMiss, frame.Shots[0].Outcome)
	assert.Equal(t, condition.Normal, enemy.Status.Kind())
	assert.Equal(t, []combat.Event{combat.EventMiss}, f.audio.events())
	assert.Len(t, f.visual.flashes, 1)
}

func TestStep_TaserBlockedByWall(t *testing.T) {
	g := grid.MustParseMaze(
		"#####",
		"#.#.#",
		"#####",
	)
	f := newFixture(t, g, projectile.Limits{})
	enemy := actor.New(actor.KindEnemy, enemySpec, 3.1, 1.5, 0)
	f.loop.AddEnemy(enemy, nil, nil)

	frame := f.loop.Step(0, 0, combat.Input{Fire: true})
	assert.Equal(t, weapon.OutcomeMiss, frame.Shots[0].Outcome)
	assert.Equal(t, condition.Normal, enemy.Status.Kind())
}

func TestStep_StunProjectileTravelsProportionally(t *testing.T) {
	f := newFixture(t, hall, projectile.Limits{MaxAge: 5 * time.Second})
	require.True(t, f.loop.Arsenal().Select(weapon.Stun))

	frame := f.loop.Step(0, 0, combat.Input{Fire: true})
	require.Len(t, frame.Shots, 1)
	assert.Equal(t, weapon.OutcomeLaunched, frame.Shots[0].Outcome)
	require.Equal(t, 1, f.loop.Projectiles().Len())

	// 3.2 units at 3.2 u/s takes one second.
	now := time.Duration(0)
	for i := 0; i < 10; i++ {
		now += 100 * ms
		f.loop.Step(now, 0.1, combat.Input{})
	}
	live := f.loop.Projectiles().Live()
	require.Len(t, live, 1)
	assert.InDelta(t, 1.5+3.2, live[0].X, 1e-9)
	assert.InDelta(t, 1.5, live[0].Y, 1e-9)
	assert.InDelta(t, 3.2, live[0].Traveled, 1e-9)
	assert.Equal(t, []combat.Event{combat.EventFire}, f.audio.events())
}

func TestStep_TranqProjectileImmobilizesEnemy(t *testing.T) {
	f := newFixture(t, hall, projectile.Limits{MaxAge: 5 * time.Second})
	require.True(t, f.loop.Arsenal().Select(weapon.Tranq))
	enemy := actor.New(actor.KindEnemy, enemySpec, 4.5, 1.5, 0)
	f.loop.AddEnemy(enemy, nil, nil)

	f.loop.Step(0, 0, combat.Input{Fire: true})
	var impacts []projectile.Impact
	now := time.Duration(0)
	for i := 0; i < 60 && f.loop.Projectiles().Len() > 0; i++ {
		now += 50 * ms
		impacts = append(impacts, f.loop.Step(now, 0.05, combat.Input{}).Impacts...)
	}
	require.Len(t, impacts, 1)
	assert.Equal(t, projectile.HitActor, impacts[0].Outcome)
	assert.Equal(t, condition.Immobilized, enemy.Status.Kind())
	assert.Contains(t, f.audio.events(), combat.EventHit)
}

func TestStep_EffectVisibleFromNextFrameMovement(t *testing.T) {
	f := newFixture(t, hall, projectile.Limits{})
	enemy := actor.New(actor.KindEnemy, enemySpec, 2.5, 1.5, 0)
	f.loop.AddEnemy(enemy, fixedController{d: combat.Decision{Move: movement.Intent{Forward: true}}}, nil)

	f.loop.Step(0, 0.1, combat.Input{Fire: true})
	assert.InDelta(t, 2.6, enemy.X, 1e-9, "movement this frame precedes the hit")
	assert.Equal(t, condition.Stunned, enemy.Status.Kind())

	f.loop.Step(100*ms, 0.1, combat.Input{})
	assert.InDelta(t, 2.6, enemy.X, 1e-9, "stunned enemy must not move next frame")
}

func TestStep_StatusExpiresBeforeMovement(t *testing.T) {
	f := newFixture(t, hall, projectile.Limits{})
	enemy := actor.New(actor.KindEnemy, enemySpec, 2.5, 1.5, 0)
	f.loop.AddEnemy(enemy, fixedController{d: combat.Decision{Move: movement.Intent{Forward: true}}}, nil)
	enemy.ApplyEffect(condition.Stun(1500*ms), 0)

	frame := f.loop.Step(1499*ms, 0.1, combat.Input{})
	assert.Empty(t, frame.Expired)
	assert.Equal(t, 2.5, enemy.X)

	frame = f.loop.Step(1501*ms, 0.1, combat.Input{})
	require.Len(t, frame.Expired, 1)
	assert.Same(t, enemy, frame.Expired[0].Actor)
	assert.Equal(t, condition.Stunned, frame.Expired[0].Was)
	assert.Equal(t, 1.0, enemy.SpeedMultiplier())
	assert.InDelta(t, 2.6, enemy.X, 1e-9)
	assert.Contains(t, f.audio.events(), combat.EventRecover)
	assert.NotEmpty(t, f.logs.FilterMessage("status expired").All())
}

func TestStep_DryFireEmitsEmptyCue(t *testing.T) {
	f := newFixture(t, hall, projectile.Limits{})
	require.True(t, f.loop.Arsenal().Select(weapon.Tranq))
	w := f.loop.Arsenal().Current()
	now := time.Duration(0)
	for w.Ammo() > 0 {
		now += time.Hour
		require.True(t, w.Fire(now))
	}

	frame := f.loop.Step(now+time.Hour, 0, combat.Input{Fire: true})
	require.Len(t, frame.Shots, 1)
	assert.Equal(t, weapon.OutcomeEmpty, frame.Shots[0].Outcome)
	assert.Equal(t, []combat.Event{combat.EventEmpty}, f.audio.events())
	assert.Equal(t, 0, f.loop.Projectiles().Len())
}

func TestStep_CooldownIsSilent(t *testing.T) {
	f := newFixture(t, hall, projectile.Limits{})
	f.loop.Step(0, 0, combat.Input{Fire: true})
	frame := f.loop.Step(ms, 0, combat.Input{Fire: true})
	assert.Equal(t, weapon.OutcomeCooldown, frame.Shots[0].Outcome)
	assert.Len(t, f.audio.cues, 1)
}

func TestStep_ReloadAndSwitch(t *testing.T) {
	f := newFixture(t, hall, projectile.Limits{})
	f.loop.Step(0, 0, combat.Input{Fire: true})
	taser := f.loop.Arsenal().Current()
	assert.Equal(t, taser.MaxAmmo()-1, taser.Ammo())

	f.loop.Step(time.Second, 0, combat.Input{Reload: true})
	assert.Equal(t, taser.MaxAmmo(), taser.Ammo())

	f.loop.Step(2*time.Second, 0, combat.Input{NextWeapon: true})
	assert.Equal(t, weapon.Stun, f.loop.Arsenal().Current().Kind())

	f.loop.Step(3*time.Second, 0, combat.Input{Select: weapon.Tranq})
	assert.Equal(t, weapon.Tranq, f.loop.Arsenal().Current().Kind())

	f.loop.Step(4*time.Second, 0, combat.Input{Select: "flamethrower"})
	assert.Equal(t, weapon.Tranq, f.loop.Arsenal().Current().Kind())
}

func TestStep_EnemyFireTargetsPlayerOnly(t *testing.T) {
	f := newFixture(t, hall, projectile.Limits{MaxAge: 5 * time.Second})
	f.player.X = 6.5
	shooter := actor.New(actor.KindEnemy, enemySpec, 2.5, 1.5, 0)
	ally := actor.New(actor.KindEnemy, enemySpec, 4.0, 1.5, 0)
	f.loop.AddEnemy(shooter, fixedController{d: combat.Decision{Fire: true}}, weapon.MustNew(weapon.Tranq))
	f.loop.AddEnemy(ally, nil, nil)

	var impacts []projectile.Impact
	now := time.Duration(0)
	for i := 0; i < 40; i++ {
		impacts = append(impacts, f.loop.Step(now, 0.05, combat.Input{}).Impacts...)
		now += 50 * ms
		if len(impacts) > 0 {
			break
		}
	}
	require.Len(t, impacts, 1)
	assert.Same(t, f.player, impacts[0].Target)
	assert.Equal(t, condition.Immobilized, f.player.Status.Kind())
	assert.Equal(t, condition.Normal, ally.Status.Kind())
}

func TestStep_PlayerMovesWithIntent(t *testing.T) {
	f := newFixture(t, hall, projectile.Limits{})
	f.loop.Step(0, 0.5, combat.Input{Move: movement.Intent{Forward: true}})
	assert.InDelta(t, 2.5, f.player.X, 1e-9)
	assert.Equal(t, uint64(1), f.loop.Frames())
}

func TestStep_ControllerSeesPlayerVisibility(t *testing.T) {
	g := grid.MustParseMaze(
		"#######",
		"#..#..#",
		"#.....#",
		"#######",
	)
	f := newFixture(t, g, projectile.Limits{})
	var seen []bool
	spy := controllerFunc(func(_ *actor.Actor, v combat.View) combat.Decision {
		seen = append(seen, v.PlayerVisible)
		return combat.Decision{}
	})
	f.loop.AddEnemy(actor.New(actor.KindEnemy, enemySpec, 5.5, 1.5, math.Pi), spy, nil)
	f.loop.AddEnemy(actor.New(actor.KindEnemy, enemySpec, 5.5, 2.5, math.Pi), spy, nil)
	f.player.Y = 2.5
	f.loop.Step(0, 0, combat.Input{})
	assert.Equal(t, []bool{false, true}, seen)
}

type controllerFunc func(*actor.Actor, combat.View) combat.Decision

func (fn controllerFunc) Decide(a *actor.Actor, v combat.View) combat.Decision { return fn(a, v) }

func TestSnapshot(t *testing.T) {
	f := newFixture(t, hall, projectile.Limits{MaxAge: time.Second})
	enemy := actor.New(actor.KindEnemy, enemySpec, 2.7, 1.5, 0)
	f.loop.AddEnemy(enemy, nil, nil)
	f.loop.Step(0, 0, combat.Input{Fire: true})
	f.loop.Step(time.Second, 0, combat.Input{Select: weapon.Stun, Fire: true})

	snap := f.loop.Snapshot(time.Second)
	assert.Equal(t, uint64(2), snap.Frame)
	assert.Equal(t, "player", snap.Player.Kind)
	require.Len(t, snap.Enemies, 1)
	assert.Equal(t, "stunned", snap.Enemies[0].Status)
	assert.Equal(t, "500ms", snap.Enemies[0].StatusRemaining)
	require.Len(t, snap.Weapons, 3)
	assert.True(t, snap.Weapons[1].Selected)
	require.Len(t, snap.Projectiles, 1)
	assert.Equal(t, "Stun Gun", snap.Projectiles[0].Weapon)
}
