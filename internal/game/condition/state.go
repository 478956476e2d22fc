package condition

import "time"

// State is the status machine of one actor: Normal, or one active effect
// with the simulation time it was entered.
//
// The zero value is Normal. State is not safe for concurrent use; the
// simulation mutates it from the frame loop only.
type State struct {
	effect    Effect
	enteredAt time.Duration
}

// Apply overwrites the current condition with e and restarts its clock at now.
// Re-application never stacks: the new effect and duration replace the old.
// Applying None to a Normal state is a no-op.
//
// Postcondition: Kind() == e.Kind; EnteredAt() == now unless e is None.
func (s *State) Apply(e Effect, now time.Duration) {
	if e.Kind == Normal {
		s.effect = None
		s.enteredAt = 0
		return
	}
	if e.Kind == Slowed {
		e.Factor = clamp01(e.Factor)
	}
	if e.Duration < 0 {
		e.Duration = 0
	}
	s.effect = e
	s.enteredAt = now
}

// Tick performs the lazy expiry check for this frame. An active effect whose
// duration has elapsed (now - enteredAt >= duration) reverts to Normal.
//
// Postcondition: Returns the expired kind and true iff a transition to Normal
// happened on this call.
func (s *State) Tick(now time.Duration) (Kind, bool) {
	if s.effect.Kind == Normal {
		return Normal, false
	}
	if now-s.enteredAt < s.effect.Duration {
		return Normal, false
	}
	expired := s.effect.Kind
	s.effect = None
	s.enteredAt = 0
	return expired, true
}

// Kind returns the current condition.
func (s *State) Kind() Kind { return s.effect.Kind }

// Effect returns the active effect, or None.
func (s *State) Effect() Effect { return s.effect }

// EnteredAt returns the simulation time the active effect was applied.
// It is zero while Normal.
func (s *State) EnteredAt() time.Duration { return s.enteredAt }

// Remaining returns how long the active effect has left at now, floored at zero.
func (s *State) Remaining(now time.Duration) time.Duration {
	if s.effect.Kind == Normal {
		return 0
	}
	left := s.effect.Duration - (now - s.enteredAt)
	if left < 0 {
		return 0
	}
	return left
}

// SpeedMultiplier is derived from the current condition only.
//
// Postcondition: Returns a value in [0, 1].
func (s *State) SpeedMultiplier() float64 {
	return s.effect.SpeedMultiplier()
}
