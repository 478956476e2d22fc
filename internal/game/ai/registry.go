package ai

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mazestrike/internal/game/combat"
	"github.com/cory-johannsen/mazestrike/internal/scripting"
)

// Built-in behavior names usable from level files without a script.
const (
	BehaviorIdle   = "idle"
	BehaviorChaser = "chaser"
)

// Registry indexes controllers by behavior name.
//
// Invariant: each behavior name is registered at most once.
type Registry struct {
	controllers map[string]combat.Controller
}

// NewRegistry returns a Registry holding the built-in idle and chaser
// behaviors.
func NewRegistry(chaser Chaser) *Registry {
	return &Registry{controllers: map[string]combat.Controller{
		BehaviorIdle:   combat.Idle{},
		BehaviorChaser: chaser,
	}}
}

// Register stores c under name.
//
// Precondition: c must not be nil.
// Postcondition: returns error on name collision.
func (r *Registry) Register(name string, c combat.Controller) error {
	if _, exists := r.controllers[name]; exists {
		return fmt.Errorf("ai.Registry: behavior %q already registered", name)
	}
	r.controllers[name] = c
	return nil
}

// RegisterScripts registers a Scripted controller for every script loaded in
// mgr.
//
// Postcondition: returns error if a script name collides with a registered behavior.
func (r *Registry) RegisterScripts(mgr *scripting.Manager, logger *zap.Logger) error {
	for _, name := range mgr.Names() {
		if err := r.Register(name, NewScripted(mgr, name, logger)); err != nil {
			return err
		}
	}
	return nil
}

// ControllerFor returns the controller for name. The empty name resolves to
// the chaser.
func (r *Registry) ControllerFor(name string) (combat.Controller, bool) {
	if name == "" {
		name = BehaviorChaser
	}
	c, ok := r.controllers[name]
	return c, ok
}

// Names returns the registered behavior names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
