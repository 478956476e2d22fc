package debugserver

import (
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cory-johannsen/mazestrike/internal/game/combat"
	"github.com/cory-johannsen/mazestrike/internal/observability"
)

const (
	// DefaultStreamRate is the snapshot rate used when RouterConfig.StreamRate is unset.
	DefaultStreamRate = 10.0
	// streamBuffer is the per-client frame backlog; frames beyond it are dropped.
	streamBuffer = 64
	writeTimeout = time.Second
)

// FrameSource publishes every stepped frame to subscribed channels.
type FrameSource interface {
	Subscribe(ch chan<- combat.Frame)
	Unsubscribe(ch chan<- combat.Frame)
}

// StreamEvent is one shot, impact or expiry reported in a stream message.
type StreamEvent struct {
	Type    string `json:"type"`
	Weapon  string `json:"weapon,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Target  string `json:"target,omitempty"`
	At      string `json:"at"`
}

// StreamMessage is what a stream client receives: the events since the
// previous message and the world as it stands now.
type StreamMessage struct {
	Events   []StreamEvent   `json:"events"`
	Snapshot combat.Snapshot `json:"snapshot"`
}

type streamHandler struct {
	state    StateProvider
	frames   FrameSource
	rate     float64
	upgrader websocket.Upgrader
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func newStreamHandler(cfg RouterConfig) *streamHandler {
	hz := cfg.StreamRate
	if hz <= 0 {
		hz = DefaultStreamRate
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &streamHandler{
		state:   cfg.State,
		frames:  cfg.Frames,
		rate:    hz,
		logger:  logger,
		metrics: cfg.Metrics,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

// originChecker admits requests without an Origin header (non-browser tools),
// same-host origins, and origins matching one of the allowed patterns.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if u.Host == r.Host {
			return true
		}
		for _, pattern := range allowed {
			if ok, _ := path.Match(pattern, origin); ok {
				return true
			}
		}
		return false
	}
}

func (h *streamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("stream upgrade rejected", zap.Error(err))
		return
	}
	defer conn.Close()

	frames := make(chan combat.Frame, streamBuffer)
	h.frames.Subscribe(frames)
	defer h.frames.Unsubscribe(frames)
	if h.metrics != nil {
		h.metrics.StreamClients(1)
		defer h.metrics.StreamClients(-1)
	}
	h.logger.Info("stream client connected", zap.String("remote", r.RemoteAddr))
	defer h.logger.Info("stream client disconnected", zap.String("remote", r.RemoteAddr))

	// The read loop only exists to notice the client going away.
	gone := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				once.Do(func() { close(gone) })
				return
			}
		}
	}()

	// Events arriving faster than the rate are held in pending and go out
	// with the next message. When the limiter defers a send, a timer makes
	// sure that message is written even if no further frame arrives.
	limiter := rate.NewLimiter(rate.Limit(h.rate), 1)
	var (
		pending []StreamEvent
		timer   *time.Timer
		flush   <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	send := func() bool {
		msg := StreamMessage{Events: pending, Snapshot: h.state.Snapshot()}
		if msg.Events == nil {
			msg.Events = []StreamEvent{}
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug("stream write failed", zap.Error(err))
			return false
		}
		pending = nil
		return true
	}
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-flush:
			flush = nil
			if !send() {
				return
			}
		case f := <-frames:
			pending = append(pending, frameEvents(f)...)
			if flush != nil {
				continue
			}
			if d := limiter.Reserve().Delay(); d > 0 {
				if timer == nil {
					timer = time.NewTimer(d)
				} else {
					timer.Reset(d)
				}
				flush = timer.C
				continue
			}
			if !send() {
				return
			}
		}
	}
}

// frameEvents flattens one frame into stream events. Actor IDs are immutable,
// so reading them off the frame is safe outside the frame loop.
func frameEvents(f combat.Frame) []StreamEvent {
	var out []StreamEvent
	at := f.Now.String()
	for _, s := range f.Shots {
		e := StreamEvent{Type: "shot", Weapon: string(s.Weapon), Outcome: s.Outcome.String(), At: at}
		if s.Target != nil {
			e.Target = s.Target.ID
		}
		out = append(out, e)
	}
	for _, im := range f.Impacts {
		e := StreamEvent{Type: "impact", Outcome: im.Outcome.String(), At: at}
		if im.Projectile != nil && im.Projectile.Source != nil {
			e.Weapon = im.Projectile.Source.Name()
		}
		if im.Target != nil {
			e.Target = im.Target.ID
		}
		out = append(out, e)
	}
	for _, x := range f.Expired {
		out = append(out, StreamEvent{Type: "recovered", Outcome: x.Was.String(), Target: x.Actor.ID, At: at})
	}
	return out
}
