package sim

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/mazestrike/internal/game/combat"
	"github.com/cory-johannsen/mazestrike/internal/game/weapon"
)

// LogSink stands in for the audio and visual layers in a headless run by
// logging every cue and flash at Debug.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a LogSink writing to logger.
//
// Precondition: logger must be non-nil.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("presentation")}
}

// Play implements combat.Audio.
func (s *LogSink) Play(c combat.Cue) {
	s.logger.Debug("audio cue",
		zap.String("weapon", c.Weapon),
		zap.String("event", string(c.Event)),
		zap.Stringer("source", c.Source),
	)
}

// Flash implements combat.Visual.
func (s *LogSink) Flash(f weapon.Flash) {
	s.logger.Debug("muzzle flash",
		zap.Float64("x", f.X),
		zap.Float64("y", f.Y),
		zap.String("color", f.Color),
	)
}
