package combat

import (
	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/weapon"
)

// Event is what an audio cue reports.
type Event string

const (
	EventFire    Event = "fire"
	EventHit     Event = "hit"
	EventMiss    Event = "miss"
	EventEmpty   Event = "empty"
	EventWall    Event = "wall"
	EventRecover Event = "recover"
)

// Cue is a notification for the external audio layer.
type Cue struct {
	// Weapon is the weapon display name; empty for EventRecover.
	Weapon string
	Event  Event
	// Source is the side of the actor that fired or recovered.
	Source actor.Kind
}

// Audio renders cues. Implementations must not block the frame.
type Audio interface {
	Play(c Cue)
}

// Visual renders transient flashes. Implementations must not block the frame.
type Visual interface {
	Flash(f weapon.Flash)
}

// Recorder receives per-frame counters for metrics.
type Recorder interface {
	ShotFired(weapon, outcome string)
	ProjectileRemoved(outcome string)
	StatusApplied(status string)
	StatusExpired(status string)
	LiveProjectiles(n int)
}

type nopAudio struct{}

func (nopAudio) Play(Cue) {}

type nopVisual struct{}

func (nopVisual) Flash(weapon.Flash) {}

type nopRecorder struct{}

func (nopRecorder) ShotFired(string, string) {}
func (nopRecorder) ProjectileRemoved(string) {}
func (nopRecorder) StatusApplied(string) {}
func (nopRecorder) StatusExpired(string) {}
func (nopRecorder) LiveProjectiles(int) {}
