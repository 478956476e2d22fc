// Package debugserver exposes a read-only HTTP surface over a running
// simulation: liveness, Prometheus metrics, world snapshots and a
// websocket snapshot stream.
package debugserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mazestrike/internal/game/combat"
	"github.com/cory-johannsen/mazestrike/internal/game/weapon"
	"github.com/cory-johannsen/mazestrike/internal/observability"
)

// StateProvider returns a consistent copy of the world.
type StateProvider interface {
	Snapshot() combat.Snapshot
}

// RouterConfig holds the router's dependencies.
type RouterConfig struct {
	// State is required.
	State StateProvider
	// Metrics is optional; without it /metrics is not mounted.
	Metrics *observability.Metrics
	// Logger is optional; nil disables request logging.
	Logger *zap.Logger
	// Frames is optional; without it /stream is not mounted.
	Frames FrameSource
	// StreamRate caps snapshots per second per stream client; zero uses
	// DefaultStreamRate.
	StreamRate float64
	// LogLevel is optional; when set it is served at /loglevel for GET and
	// PUT, typically a zap.AtomicLevel.
	LogLevel http.Handler
	// AllowedOrigins enables CORS for the listed origin patterns and admits
	// them to /stream.
	AllowedOrigins []string
}

// weaponInfo is the /weapons view of one variant's default parameters.
type weaponInfo struct {
	Kind           string  `json:"kind"`
	Name           string  `json:"name"`
	Mechanism      string  `json:"mechanism"`
	MaxAmmo        int     `json:"max_ammo"`
	Cooldown       string  `json:"cooldown"`
	Range          float64 `json:"range,omitempty"`
	Speed          float64 `json:"projectile_speed,omitempty"`
	EffectDuration string  `json:"effect_duration"`
}

// NewRouter constructs the debug router. It starts no goroutines and opens
// no listeners, so it can be served with httptest directly.
//
// Precondition: cfg.State must be non-nil.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
	if cfg.Logger != nil || cfg.Metrics != nil {
		r.Use(requestObserver(cfg.Logger, cfg.Metrics))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, cfg.State.Snapshot())
	})
	r.Get("/weapons", func(w http.ResponseWriter, _ *http.Request) {
		var out []weaponInfo
		for _, k := range weapon.Kinds() {
			p, err := weapon.Lookup(k)
			if err != nil {
				continue
			}
			out = append(out, weaponInfo{
				Kind:           string(p.Kind),
				Name:           p.Name,
				Mechanism:      p.Mechanism.String(),
				MaxAmmo:        p.MaxAmmo,
				Cooldown:       p.Cooldown.String(),
				Range:          p.Range,
				Speed:          p.ProjectileSpeed,
				EffectDuration: p.EffectDuration.String(),
			})
		}
		writeJSON(w, out)
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}
	if cfg.Frames != nil {
		r.Method(http.MethodGet, "/stream", newStreamHandler(cfg))
	}
	if cfg.LogLevel != nil {
		r.Method(http.MethodGet, "/loglevel", cfg.LogLevel)
		r.Method(http.MethodPut, "/loglevel", cfg.LogLevel)
	}
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// requestObserver logs each request at Debug and records its latency under
// the matched route pattern.
func requestObserver(logger *zap.Logger, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			if metrics != nil {
				metrics.ObserveRequest(r.Method, route, strconv.Itoa(status), elapsed)
			}
			if logger != nil {
				logger.Debug("debug http request",
					zap.String("method", r.Method),
					zap.String("route", route),
					zap.Int("status", status),
					zap.Duration("elapsed", elapsed),
				)
			}
		})
	}
}
