package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/modulekit/internal/domain/module"
)

var _ module.Observer = (*Metrics)(nil)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewMetricsIsolated(t *testing.T) {
	// Separate registries must not collide on registration
	a := NewMetrics()
	b := NewMetrics()

	a.CacheHit("sidebar")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.CacheHits.WithLabelValues("sidebar")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CacheHits.WithLabelValues("sidebar")))
}

func TestObserverEvents(t *testing.T) {
	m := NewMetrics()

	m.PositionRendered("header", 3*time.Millisecond)
	m.PositionRendered("header", time.Millisecond)
	m.CacheHit("header")
	m.CacheHit("header")
	m.CacheHit("header")
	m.CacheMiss("header")
	m.ModuleFailed("header", "NewsModule")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PositionRenders.WithLabelValues("header")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CacheHits.WithLabelValues("header")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses.WithLabelValues("header")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModuleFailures.WithLabelValues("header", "NewsModule")))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Renders)
	assert.Equal(t, int64(3), snap.CacheHits)
	assert.Equal(t, int64(1), snap.CacheMisses)
	assert.Equal(t, int64(1), snap.Failures)
	assert.InDelta(t, 0.75, snap.HitRatio, 1e-9)
}

func TestSnapshotWithoutLookups(t *testing.T) {
	m := NewMetrics()
	assert.Zero(t, m.Snapshot().HitRatio)
}

func TestSetRegistryStats(t *testing.T) {
	m := NewMetrics()
	m.SetRegistryStats(2, 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Positions))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RegisteredModules))
}

func TestMiddleware(t *testing.T) {
	m := NewMetrics()
	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/positions/:name", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for _, path := range []string{"/positions/a", "/positions/b", "/nowhere"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/positions/:name", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
}

func TestHandler(t *testing.T) {
	m := NewMetrics()
	m.PositionRendered("footer", time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `modulekit_position_renders_total{position="footer"} 1`))
	assert.Contains(t, body, "modulekit_uptime_seconds")
	assert.Contains(t, body, "go_goroutines")
}
