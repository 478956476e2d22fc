package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the simulation's Prometheus collectors on a private registry.
// Label values come from closed sets (weapon kinds, outcomes, statuses) so
// cardinality stays bounded.
//
// Metrics satisfies the combat loop's Recorder contract.
type Metrics struct {
	registry *prometheus.Registry

	frameDuration     prometheus.Histogram
	frames            prometheus.Counter
	shots             *prometheus.CounterVec
	projectileRemoved *prometheus.CounterVec
	statusApplied     *prometheus.CounterVec
	statusExpired     *prometheus.CounterVec
	liveProjectiles   prometheus.Gauge
	requestLatency    *prometheus.HistogramVec
	streamClients     prometheus.Gauge
}

// NewMetrics creates and registers every collector on a fresh registry,
// together with the Go runtime and process collectors.
//
// Postcondition: Returns a non-nil Metrics whose Handler serves all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "maze_frame_duration_seconds",
			Help:    "Wall time spent in one simulation frame",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.016, 0.033},
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maze_frames_total",
			Help: "Simulation frames stepped",
		}),
		shots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maze_shots_total",
			Help: "Weapon discharge attempts by weapon and outcome",
		}, []string{"weapon", "outcome"}),
		projectileRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maze_projectiles_removed_total",
			Help: "Projectiles removed by outcome",
		}, []string{"outcome"}),
		statusApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maze_status_applied_total",
			Help: "Status effects applied by status",
		}, []string{"status"}),
		statusExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maze_status_expired_total",
			Help: "Status effects that expired back to normal, by expired status",
		}, []string{"status"}),
		liveProjectiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "maze_live_projectiles",
			Help: "Projectiles in flight after the last frame",
		}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "maze_http_request_duration_seconds",
			Help:    "Debug HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		streamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "maze_stream_clients",
			Help: "Connected debug snapshot stream clients",
		}),
	}
	m.registry.MustRegister(
		m.frameDuration,
		m.frames,
		m.shots,
		m.projectileRemoved,
		m.statusApplied,
		m.statusExpired,
		m.liveProjectiles,
		m.requestLatency,
		m.streamClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFrame records the wall time of one frame.
func (m *Metrics) ObserveFrame(d time.Duration) {
	m.frames.Inc()
	m.frameDuration.Observe(d.Seconds())
}

// ObserveRequest records one debug HTTP request. route must be a route
// pattern, never a raw path.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	m.requestLatency.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// ShotFired counts one discharge attempt.
func (m *Metrics) ShotFired(weapon, outcome string) {
	m.shots.WithLabelValues(weapon, outcome).Inc()
}

// ProjectileRemoved counts one projectile leaving the world.
func (m *Metrics) ProjectileRemoved(outcome string) {
	m.projectileRemoved.WithLabelValues(outcome).Inc()
}

// StatusApplied counts one status transition caused by a hit.
func (m *Metrics) StatusApplied(status string) {
	m.statusApplied.WithLabelValues(status).Inc()
}

// StatusExpired counts one status reverting to normal.
func (m *Metrics) StatusExpired(status string) {
	m.statusExpired.WithLabelValues(status).Inc()
}

// LiveProjectiles sets the in-flight projectile gauge.
func (m *Metrics) LiveProjectiles(n int) {
	m.liveProjectiles.Set(float64(n))
}

// StreamClients adjusts the connected stream client gauge by delta.
func (m *Metrics) StreamClients(delta int) {
	m.streamClients.Add(float64(delta))
}
