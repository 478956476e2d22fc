package sim

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mazestrike/internal/game/combat"
)

// FrameObserver receives the wall time of every stepped frame.
type FrameObserver interface {
	ObserveFrame(d time.Duration)
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// Timestep is the fixed frame length. Required.
	Timestep time.Duration
	// Input defaults to NoInput.
	Input InputSource
	// Observer is optional.
	Observer FrameObserver
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Duration ends Run once the simulation clock reaches it; zero runs until stopped.
	Duration time.Duration
}

// Runner drives a combat loop at a fixed timestep. Step and Snapshot are
// serialized, so Snapshot may be called from any goroutine while Run is active.
//
// Invariant: the loop is only ever stepped while mu is held.
type Runner struct {
	mu       sync.Mutex
	loop     *combat.Loop
	clock    *Clock
	input    InputSource
	observer FrameObserver
	logger   *zap.Logger
	duration time.Duration

	subMu       sync.Mutex
	subscribers map[chan<- combat.Frame]struct{}

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRunner returns a stopped Runner over loop.
//
// Precondition: loop must be non-nil; opts.Timestep > 0.
func NewRunner(loop *combat.Loop, opts RunnerOptions) *Runner {
	r := &Runner{
		loop:        loop,
		clock:       NewClock(opts.Timestep),
		input:       opts.Input,
		observer:    opts.Observer,
		logger:      opts.Logger,
		duration:    opts.Duration,
		subscribers: make(map[chan<- combat.Frame]struct{}),
		stopCh:      make(chan struct{}),
	}
	if r.input == nil {
		r.input = NoInput{}
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Subscribe registers ch to receive every frame. A full channel drops the
// frame for that subscriber.
//
// Precondition: ch must not be nil.
func (r *Runner) Subscribe(ch chan<- combat.Frame) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	r.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch.
func (r *Runner) Unsubscribe(ch chan<- combat.Frame) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	delete(r.subscribers, ch)
}

// Step advances the simulation by exactly one timestep.
func (r *Runner) Step() combat.Frame {
	r.mu.Lock()
	start := time.Now()
	now, dt := r.clock.Advance()
	frame := r.loop.Step(now, dt, r.input.Input(now, r.loop))
	elapsed := time.Since(start)
	r.mu.Unlock()

	if r.observer != nil {
		r.observer.ObserveFrame(elapsed)
	}
	r.broadcast(frame)
	return frame
}

func (r *Runner) broadcast(frame combat.Frame) {
	r.subMu.Lock()
	subs := make([]chan<- combat.Frame, 0, len(r.subscribers))
	for ch := range r.subscribers {
		subs = append(subs, ch)
	}
	r.subMu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- frame:
		default:
		}
	}
}

// Snapshot copies the world at the current simulation time.
func (r *Runner) Snapshot() combat.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loop.Snapshot(r.clock.Now())
}

// Now returns the current simulation time.
func (r *Runner) Now() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clock.Now()
}

// Done reports whether the configured duration has elapsed.
func (r *Runner) Done() bool {
	return r.duration > 0 && r.Now() >= r.duration
}

// Run steps the loop once per timestep of wall time until ctx is cancelled,
// Stop is called, or the configured duration elapses.
//
// Postcondition: Returns nil on a clean stop.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.clock.Step())
	defer ticker.Stop()

	r.logger.Info("simulation running",
		zap.Duration("timestep", r.clock.Step()),
		zap.Duration("duration", r.duration),
	)
	for !r.Done() {
		select {
		case <-ctx.Done():
			r.logSummary("context cancelled")
			return nil
		case <-r.stopCh:
			r.logSummary("stopped")
			return nil
		case <-ticker.C:
			r.Step()
		}
	}
	r.logSummary("duration reached")
	return nil
}

// RunFrames steps n frames back to back without waiting on wall time.
func (r *Runner) RunFrames(n int) []combat.Frame {
	frames := make([]combat.Frame, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, r.Step())
	}
	return frames
}

// Start implements the lifecycle Service contract by calling Run.
func (r *Runner) Start() error {
	return r.Run(context.Background())
}

// Stop ends Run. Calling Stop more than once is safe.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

func (r *Runner) logSummary(reason string) {
	snap := r.Snapshot()
	disabled := 0
	for _, e := range snap.Enemies {
		if e.Status != "normal" {
			disabled++
		}
	}
	r.logger.Info("simulation finished",
		zap.String("reason", reason),
		zap.Uint64("frames", snap.Frame),
		zap.Duration("sim_time", r.Now()),
		zap.Int("enemies", len(snap.Enemies)),
		zap.Int("enemies_disabled", disabled),
		zap.Int("live_projectiles", len(snap.Projectiles)),
	)
}
