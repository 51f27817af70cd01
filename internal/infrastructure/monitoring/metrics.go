package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Module metrics
	PositionRenders *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	ModuleFailures  *prometheus.CounterVec

	// Registry metrics
	RegisteredModules prometheus.Gauge
	Positions         prometheus.Gauge

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot
	renders  *window

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	Renders       int64   `json:"renders"`
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
	Failures      int64   `json:"failures"`
	HitRatio      float64 `json:"hit_ratio"`
	UptimeSeconds float64 `json:"uptime_seconds"`

	RenderLatency LatencySummary `json:"render_latency"`
}

// NewMetrics creates a metrics collector on its own Prometheus registry,
// with the Go runtime and process collectors attached.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),
		renders:   newWindow(latencyWindowSize),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modulekit_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modulekit_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modulekit_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Module metrics
		PositionRenders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modulekit_position_renders_total",
				Help: "Total number of completed position renders",
			},
			[]string{"position"},
		),
		RenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modulekit_position_render_duration_seconds",
				Help:    "Position render duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"position"},
		),
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modulekit_cache_hits_total",
				Help: "Module outputs served from the cache",
			},
			[]string{"position"},
		),
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modulekit_cache_misses_total",
				Help: "Cached modules that had to render",
			},
			[]string{"position"},
		),
		ModuleFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modulekit_module_failures_total",
				Help: "Module renders that returned an error",
			},
			[]string{"position", "type"},
		),

		// Registry metrics
		RegisteredModules: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "modulekit_registered_modules",
				Help: "Number of registered module entries",
			},
		),
		Positions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "modulekit_positions",
				Help: "Number of positions holding at least one module",
			},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "modulekit_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the underlying registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// SetRegistryStats records registry totals
func (m *Metrics) SetRegistryStats(positions, modules int) {
	m.Positions.Set(float64(positions))
	m.RegisteredModules.Set(float64(modules))
}

// Snapshot returns the current JSON snapshot
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()

	if lookups := s.CacheHits + s.CacheMisses; lookups > 0 {
		s.HitRatio = float64(s.CacheHits) / float64(lookups)
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	s.RenderLatency = m.renders.summary()
	return s
}
