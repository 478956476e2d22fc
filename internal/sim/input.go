package sim

import (
	"math"
	"sort"
	"time"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/ai"
	"github.com/cory-johannsen/mazestrike/internal/game/combat"
)

// InputSource produces the player's input for each frame.
type InputSource interface {
	Input(now time.Duration, l *combat.Loop) combat.Input
}

// InputFunc adapts a function to InputSource.
type InputFunc func(now time.Duration, l *combat.Loop) combat.Input

// Input implements InputSource.
func (f InputFunc) Input(now time.Duration, l *combat.Loop) combat.Input { return f(now, l) }

// NoInput leaves the player idle.
type NoInput struct{}

// Input implements InputSource.
func (NoInput) Input(time.Duration, *combat.Loop) combat.Input { return combat.Input{} }

// Cue is one scheduled player input.
type Cue struct {
	At    time.Duration
	Input combat.Input
}

// Playback replays a fixed schedule: each cue's input is delivered on the
// first frame at or after its time, and at most one cue is delivered per
// frame. It is safe for use by one Runner only.
type Playback struct {
	cues []Cue
	next int
}

// NewPlayback returns a Playback over cues, sorted by time.
func NewPlayback(cues ...Cue) *Playback {
	sorted := append([]Cue(nil), cues...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return &Playback{cues: sorted}
}

// Input implements InputSource.
func (p *Playback) Input(now time.Duration, _ *combat.Loop) combat.Input {
	if p.next < len(p.cues) && p.cues[p.next].At <= now {
		in := p.cues[p.next].Input
		p.next++
		return in
	}
	return combat.Input{}
}

// Done reports whether every cue has been delivered.
func (p *Playback) Done() bool { return p.next >= len(p.cues) }

// Autopilot steers the player with a controller aimed at the nearest enemy in
// sight, reloading whenever the current weapon runs dry.
type Autopilot struct {
	Controller combat.Controller
}

// NewAutopilot returns an Autopilot driven by a chaser tuned to the current
// weapon's reach.
func NewAutopilot() *Autopilot {
	return &Autopilot{Controller: ai.Chaser{
		FireRange:    1.5,
		AimTolerance: 0.08,
		HoldDistance: 1,
	}}
}

// Input implements InputSource.
func (a *Autopilot) Input(now time.Duration, l *combat.Loop) combat.Input {
	player := l.Player()
	var in combat.Input
	if w := l.Arsenal().Current(); w != nil && w.Ammo() == 0 {
		in.Reload = true
	}

	target := nearestVisibleEnemy(l, player)
	if target == nil {
		return in
	}
	d := a.Controller.Decide(player, combat.View{
		Now:           now,
		Player:        target,
		Grid:          l.Grid(),
		PlayerVisible: true,
	})
	in.Move = d.Move
	in.Fire = d.Fire && !in.Reload
	return in
}

func nearestVisibleEnemy(l *combat.Loop, from *actor.Actor) *actor.Actor {
	var best *actor.Actor
	bestDist := math.Inf(1)
	for _, e := range l.Enemies() {
		if !combat.LineOfSight(l.Grid(), from, e.Actor) {
			continue
		}
		if d := from.DistanceTo(e.Actor.X, e.Actor.Y); d < bestDist {
			best, bestDist = e.Actor, d
		}
	}
	return best
}
