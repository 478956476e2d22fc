// Package combat implements the per-frame combat loop for the maze: status
// expiry, movement, weapon discharge and projectile resolution for the player
// and every enemy.
package combat

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/condition"
	"github.com/cory-johannsen/mazestrike/internal/game/grid"
	"github.com/cory-johannsen/mazestrike/internal/game/movement"
	"github.com/cory-johannsen/mazestrike/internal/game/projectile"
	"github.com/cory-johannsen/mazestrike/internal/game/weapon"
)

// Input is one frame of player intent.
type Input struct {
	Move movement.Intent
	Fire bool
	// Reload refills the current weapon before any fire this frame.
	Reload bool
	// Select switches to the named weapon before any fire this frame.
	Select weapon.Kind
	// NextWeapon cycles the selection before any fire this frame.
	NextWeapon bool
}

// View is what a controller may observe when deciding.
type View struct {
	Now    time.Duration
	Player *actor.Actor
	Grid   grid.Grid
	// PlayerVisible is true when no wall lies between the enemy and the player.
	PlayerVisible bool
}

// Decision is a controller's intent for one enemy for one frame.
type Decision struct {
	Move movement.Intent
	Fire bool
}

// Controller decides an enemy's movement and whether it fires.
// Controllers must treat View.Player as read-only.
type Controller interface {
	Decide(self *actor.Actor, v View) Decision
}

// Idle is a Controller that never moves or fires.
type Idle struct{}

// Decide implements Controller.
func (Idle) Decide(*actor.Actor, View) Decision { return Decision{} }

// Enemy is one enemy actor with its controller and optional weapon.
type Enemy struct {
	Actor      *actor.Actor
	Controller Controller
	// Weapon is nil for unarmed enemies.
	Weapon *weapon.Weapon
}

// Expiry reports an actor's status reverting to Normal.
type Expiry struct {
	Actor *actor.Actor
	Was   condition.Kind
}

// Frame summarises what happened during one Step.
type Frame struct {
	Now     time.Duration
	Shots   []weapon.Shot
	Impacts []projectile.Impact
	Expired []Expiry
}

// Options configures a Loop. Zero fields select no-op collaborators and defaults.
type Options struct {
	Logger   *zap.Logger
	Audio    Audio
	Visual   Visual
	Recorder Recorder
	Resolver *movement.Resolver
	Limits   projectile.Limits
}

// Loop owns the simulated world: one player, the enemies, and the projectile
// system. It is driven by Step once per frame from a single goroutine.
type Loop struct {
	grid        grid.Grid
	player      *actor.Actor
	arsenal     *weapon.Arsenal
	enemies     []*Enemy
	projectiles *projectile.System
	resolver    *movement.Resolver
	logger      *zap.Logger
	audio       Audio
	visual      Visual
	recorder    Recorder
	frames      uint64
}

// NewLoop creates a Loop over g for player wielding arsenal.
//
// Precondition: g, player and arsenal must be non-nil.
// Postcondition: Returns a Loop with no enemies and no live projectiles.
func NewLoop(g grid.Grid, player *actor.Actor, arsenal *weapon.Arsenal, opts Options) *Loop {
	l := &Loop{
		grid:        g,
		player:      player,
		arsenal:     arsenal,
		projectiles: projectile.NewSystem(opts.Limits),
		resolver:    opts.Resolver,
		logger:      opts.Logger,
		audio:       opts.Audio,
		visual:      opts.Visual,
		recorder:    opts.Recorder,
	}
	if l.resolver == nil {
		l.resolver = movement.NewResolver(0)
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	if l.audio == nil {
		l.audio = nopAudio{}
	}
	if l.visual == nil {
		l.visual = nopVisual{}
	}
	if l.recorder == nil {
		l.recorder = nopRecorder{}
	}
	return l
}

// AddEnemy places an enemy in the world. A nil controller idles.
//
// Precondition: a must be non-nil and of KindEnemy.
func (l *Loop) AddEnemy(a *actor.Actor, c Controller, w *weapon.Weapon) *Enemy {
	if c == nil {
		c = Idle{}
	}
	e := &Enemy{Actor: a, Controller: c, Weapon: w}
	l.enemies = append(l.enemies, e)
	return e
}

// Player returns the player actor.
func (l *Loop) Player() *actor.Actor { return l.player }

// Arsenal returns the player's weapon inventory.
func (l *Loop) Arsenal() *weapon.Arsenal { return l.arsenal }

// Enemies returns the enemies in world order.
func (l *Loop) Enemies() []*Enemy {
	out := make([]*Enemy, len(l.enemies))
	copy(out, l.enemies)
	return out
}

// Projectiles returns the projectile system.
func (l *Loop) Projectiles() *projectile.System { return l.projectiles }

// Grid returns the occupancy grid.
func (l *Loop) Grid() grid.Grid { return l.grid }

// Frames returns the number of completed Step calls.
func (l *Loop) Frames() uint64 { return l.frames }

// actors returns the player followed by every enemy, in world order.
func (l *Loop) actors() []*actor.Actor {
	out := make([]*actor.Actor, 0, len(l.enemies)+1)
	out = append(out, l.player)
	for _, e := range l.enemies {
		out = append(out, e.Actor)
	}
	return out
}

// Step advances the world by dt seconds ending at simulation time now.
// Phases run in a fixed order across all actors: status expiry, controller
// decisions and movement, weapon fire, then one global projectile advance.
// Effects applied by this frame's fire therefore first influence movement on
// the next Step.
//
// Precondition: now must not decrease between calls; dt >= 0.
func (l *Loop) Step(now time.Duration, dt float64, in Input) Frame {
	frame := Frame{Now: now}
	actors := l.actors()

	for _, a := range actors {
		if was, ok := a.Status.Tick(now); ok {
			frame.Expired = append(frame.Expired, Expiry{Actor: a, Was: was})
			l.recorder.StatusExpired(was.String())
			l.audio.Play(Cue{Event: EventRecover, Source: a.Kind})
			l.logger.Debug("status expired",
				zap.String("actor", a.ID),
				zap.Stringer("kind", a.Kind),
				zap.Stringer("was", was),
			)
		}
	}

	l.resolver.Resolve(l.player, in.Move, dt, l.grid)
	decisions := make([]Decision, len(l.enemies))
	for i, e := range l.enemies {
		view := View{
			Now:           now,
			Player:        l.player,
			Grid:          l.grid,
			PlayerVisible: LineOfSight(l.grid, e.Actor, l.player),
		}
		decisions[i] = e.Controller.Decide(e.Actor, view)
		l.resolver.Resolve(e.Actor, decisions[i].Move, dt, l.grid)
	}

	l.handleLoadout(in)
	if in.Fire {
		if w := l.arsenal.Current(); w != nil {
			frame.Shots = append(frame.Shots, l.discharge(now, l.player, w))
		}
	}
	for i, e := range l.enemies {
		if decisions[i].Fire && e.Weapon != nil {
			frame.Shots = append(frame.Shots, l.discharge(now, e.Actor, e.Weapon))
		}
	}

	frame.Impacts = l.projectiles.Advance(now, dt, actors, l.grid)
	for _, im := range frame.Impacts {
		l.onImpact(im)
	}
	l.recorder.LiveProjectiles(l.projectiles.Len())
	l.frames++
	return frame
}

func (l *Loop) handleLoadout(in Input) {
	if in.Select != "" && !l.arsenal.Select(in.Select) {
		l.logger.Debug("weapon not held", zap.String("weapon", string(in.Select)))
	}
	if in.NextWeapon {
		l.arsenal.Next()
	}
	if in.Reload {
		if w := l.arsenal.Current(); w != nil {
			w.Reload()
		}
	}
}

func (l *Loop) discharge(now time.Duration, firer *actor.Actor, w *weapon.Weapon) weapon.Shot {
	shot := w.Discharge(now, firer, l, l.projectiles)
	l.recorder.ShotFired(string(shot.Weapon), shot.Outcome.String())

	switch shot.Outcome {
	case weapon.OutcomeEmpty:
		l.audio.Play(Cue{Weapon: w.Name(), Event: EventEmpty, Source: firer.Kind})
	case weapon.OutcomeHit:
		l.audio.Play(Cue{Weapon: w.Name(), Event: EventHit, Source: firer.Kind})
		l.recorder.StatusApplied(shot.Target.Status.Kind().String())
	case weapon.OutcomeMiss:
		l.audio.Play(Cue{Weapon: w.Name(), Event: EventMiss, Source: firer.Kind})
	case weapon.OutcomeLaunched:
		l.audio.Play(Cue{Weapon: w.Name(), Event: EventFire, Source: firer.Kind})
	}
	if shot.Flash != nil {
		l.visual.Flash(*shot.Flash)
	}

	fields := []zap.Field{
		zap.String("firer", firer.ID),
		zap.String("weapon", string(shot.Weapon)),
		zap.Stringer("outcome", shot.Outcome),
		zap.Int("ammo", w.Ammo()),
	}
	if shot.Target != nil {
		fields = append(fields, zap.String("target", shot.Target.ID))
	}
	l.logger.Debug("weapon discharged", fields...)
	return shot
}

func (l *Loop) onImpact(im projectile.Impact) {
	p := im.Projectile
	l.recorder.ProjectileRemoved(im.Outcome.String())
	switch im.Outcome {
	case projectile.HitActor:
		l.recorder.StatusApplied(im.Target.Status.Kind().String())
		l.audio.Play(Cue{Weapon: p.Source.Name(), Event: EventHit, Source: p.OwnerKind})
		l.logger.Debug("projectile hit",
			zap.String("projectile", p.ID),
			zap.String("target", im.Target.ID),
			zap.Stringer("status", im.Target.Status.Kind()),
		)
	case projectile.HitWall:
		l.audio.Play(Cue{Weapon: p.Source.Name(), Event: EventWall, Source: p.OwnerKind})
		l.logger.Debug("projectile hit wall",
			zap.String("projectile", p.ID),
			zap.Float64("x", p.X),
			zap.Float64("y", p.Y),
		)
	case projectile.Expired:
		l.logger.Debug("projectile expired",
			zap.String("projectile", p.ID),
			zap.Float64("traveled", p.Traveled),
		)
	}
}
