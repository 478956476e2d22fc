// Package sim assembles a combat world from configuration and drives it at a
// fixed timestep.
package sim

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mazestrike/internal/config"
	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/ai"
	"github.com/cory-johannsen/mazestrike/internal/game/combat"
	"github.com/cory-johannsen/mazestrike/internal/game/grid"
	"github.com/cory-johannsen/mazestrike/internal/game/movement"
	"github.com/cory-johannsen/mazestrike/internal/game/projectile"
	"github.com/cory-johannsen/mazestrike/internal/game/weapon"
	"github.com/cory-johannsen/mazestrike/internal/scripting"
)

// ErrUnknownBehavior is returned when an enemy spawn names a behavior that is
// neither built in nor a loaded script.
var ErrUnknownBehavior = errors.New("sim: unknown behavior")

// Collaborators are the optional notification sinks handed to the loop.
// Nil fields select the loop's no-op defaults.
type Collaborators struct {
	Audio    combat.Audio
	Visual   combat.Visual
	Recorder combat.Recorder
}

// Build creates a combat loop for lvl using the tuning in cfg. Enemy
// behaviors are resolved through reg.
//
// Precondition: cfg has been validated; lvl and reg must be non-nil.
// Postcondition: Returns a loop with one enemy per level spawn, or an error
// naming the first spawn that could not be built.
func Build(cfg config.Config, lvl *grid.Level, reg *ai.Registry, logger *zap.Logger, c Collaborators) (*combat.Loop, error) {
	tunings := cfg.WeaponTunings()
	arsenal, err := weapon.NewDefaultArsenal(tunings)
	if err != nil {
		return nil, fmt.Errorf("building player arsenal: %w", err)
	}

	player := actor.New(actor.KindPlayer, cfg.Player.Spec(), lvl.Player.X, lvl.Player.Y, lvl.Player.Angle)
	loop := combat.NewLoop(lvl.Maze, player, arsenal, combat.Options{
		Logger:   logger,
		Audio:    c.Audio,
		Visual:   c.Visual,
		Recorder: c.Recorder,
		Resolver: movement.NewResolver(cfg.Simulation.PointerScale),
		Limits: projectile.Limits{
			MaxAge:   cfg.Simulation.ProjectileMaxAge,
			MaxRange: cfg.Simulation.ProjectileMaxRange,
		},
	})

	for i, spawn := range lvl.Enemies {
		ctrl, ok := reg.ControllerFor(spawn.Script)
		if !ok {
			return nil, fmt.Errorf("enemy spawn %d: %w: %q", i, ErrUnknownBehavior, spawn.Script)
		}
		var w *weapon.Weapon
		if spawn.Weapon != "" {
			w, err = tunedWeapon(weapon.Kind(spawn.Weapon), tunings)
			if err != nil {
				return nil, fmt.Errorf("enemy spawn %d: %w", i, err)
			}
		}
		a := actor.New(actor.KindEnemy, cfg.Enemy.Spec(), spawn.X, spawn.Y, spawn.Angle)
		loop.AddEnemy(a, ctrl, w)
		logger.Debug("enemy spawned",
			zap.String("actor", a.ID),
			zap.String("behavior", behaviorName(spawn.Script)),
			zap.String("weapon", spawn.Weapon),
			zap.Float64("x", a.X),
			zap.Float64("y", a.Y),
		)
	}
	return loop, nil
}

func tunedWeapon(k weapon.Kind, tunings map[weapon.Kind]weapon.Tuning) (*weapon.Weapon, error) {
	p, err := weapon.Lookup(k)
	if err != nil {
		return nil, err
	}
	return weapon.NewWithParams(p.With(tunings[k]))
}

func behaviorName(script string) string {
	if script == "" {
		return ai.BehaviorChaser
	}
	return script
}

// NewRegistry returns a behavior registry holding the built-in behaviors
// tuned from cfg and a scripted behavior for every script in mgr.
func NewRegistry(cfg config.Config, mgr *scripting.Manager, logger *zap.Logger) (*ai.Registry, error) {
	reg := ai.NewRegistry(ai.Chaser{
		FireRange:    cfg.Chaser.FireRange,
		AimTolerance: cfg.Chaser.AimTolerance,
		HoldDistance: cfg.Chaser.HoldDistance,
		Search:       cfg.Chaser.Search,
	})
	if mgr != nil {
		if err := reg.RegisterScripts(mgr, logger); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// World is everything Setup assembles.
type World struct {
	Level   *grid.Level
	Loop    *combat.Loop
	Scripts *scripting.Manager
}

// Close releases the script VMs.
func (w *World) Close() {
	if w.Scripts != nil {
		w.Scripts.Close()
	}
}

// Setup loads the level and behavior scripts named in cfg and builds the loop.
// A missing scripts directory is logged and skipped.
//
// Precondition: cfg has been validated.
// Postcondition: On success the caller owns the World and must Close it.
func Setup(cfg config.Config, logger *zap.Logger, c Collaborators) (*World, error) {
	lvl, err := grid.LoadLevelFromFile(cfg.Simulation.Level)
	if err != nil {
		return nil, err
	}

	mgr := scripting.NewManager(logger)
	if dir := cfg.Scripts.Dir; dir != "" {
		if _, statErr := os.Stat(dir); statErr != nil {
			logger.Warn("scripts directory unavailable", zap.String("dir", dir), zap.Error(statErr))
		} else {
			names, err := mgr.LoadDir(dir, cfg.Scripts.InstructionLimit)
			if err != nil {
				mgr.Close()
				return nil, err
			}
			logger.Info("behavior scripts loaded", zap.Strings("scripts", names))
		}
	}

	reg, err := NewRegistry(cfg, mgr, logger)
	if err != nil {
		mgr.Close()
		return nil, err
	}
	loop, err := Build(cfg, lvl, reg, logger, c)
	if err != nil {
		mgr.Close()
		return nil, fmt.Errorf("level %q: %w", lvl.Name, err)
	}
	logger.Info("world ready",
		zap.String("level", lvl.Name),
		zap.Int("width", lvl.Maze.Width),
		zap.Int("height", lvl.Maze.Height),
		zap.Int("enemies", len(lvl.Enemies)),
	)
	return &World{Level: lvl, Loop: loop, Scripts: mgr}, nil
}
