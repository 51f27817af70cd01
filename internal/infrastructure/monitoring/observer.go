package monitoring

import "time"

// PositionRendered records a completed position render
func (m *Metrics) PositionRendered(position string, duration time.Duration) {
	m.PositionRenders.WithLabelValues(position).Inc()
	m.RenderDuration.WithLabelValues(position).Observe(duration.Seconds())
	m.renders.add(float64(duration) / float64(time.Millisecond))

	m.mu.Lock()
	m.snapshot.Renders++
	m.mu.Unlock()
}

// CacheHit records a module served from the cache
func (m *Metrics) CacheHit(position string) {
	m.CacheHits.WithLabelValues(position).Inc()

	m.mu.Lock()
	m.snapshot.CacheHits++
	m.mu.Unlock()
}

// CacheMiss records a cached module that had to render
func (m *Metrics) CacheMiss(position string) {
	m.CacheMisses.WithLabelValues(position).Inc()

	m.mu.Lock()
	m.snapshot.CacheMisses++
	m.mu.Unlock()
}

// ModuleFailed records a module render error
func (m *Metrics) ModuleFailed(position, typeName string) {
	m.ModuleFailures.WithLabelValues(position, typeName).Inc()

	m.mu.Lock()
	m.snapshot.Failures++
	m.mu.Unlock()
}
