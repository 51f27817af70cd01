package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/modulekit/internal/domain/module"
	"github.com/GriffinCanCode/modulekit/internal/domain/view"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/modulekit/internal/shared/utils"
)

const (
	serviceName = "modulekit"
	version     = "0.1.0"
)

// BreakerReporter exposes circuit breaker states. *modules.Client and
// *module.Registry satisfy it.
type BreakerReporter interface {
	BreakerStates() map[string]resilience.State
}

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *module.Registry
	engine   *view.Engine
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	remote   BreakerReporter
	hasher   *utils.Hasher
	logger   *zap.Logger
}

// NewHandlers creates a new handler set. metrics, tracer and remote may be
// nil.
func NewHandlers(
	registry *module.Registry,
	engine *view.Engine,
	metrics *monitoring.Metrics,
	tracer *tracing.Tracer,
	remote BreakerReporter,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry: registry,
		engine:   engine,
		metrics:  metrics,
		tracer:   tracer,
		remote:   remote,
		hasher:   utils.DefaultHasher(),
		logger:   logger,
	}
}

// Register mounts every route on router
func (h *Handlers) Register(router gin.IRoutes) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	router.GET("/positions", h.ListPositions)
	router.GET("/positions/:name", h.RenderPosition)
	router.GET("/positions/:name/modules", h.ListModules)

	router.GET("/pages/*page", h.RenderPage)

	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
}

// Root handles status check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": serviceName,
		"version": version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	breakers := gin.H{"modules": stateNames(h.registry.BreakerStates())}
	if h.remote != nil {
		breakers["remote"] = stateNames(h.remote.BreakerStates())
	}

	body := gin.H{
		"status":   "healthy",
		"registry": h.registry.Stats(),
		"pages":    len(h.engine.Pages()),
		"breakers": breakers,
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	if h.tracer != nil {
		body["dropped_spans"] = h.tracer.Dropped()
	}
	c.JSON(http.StatusOK, body)
}

// span starts a child span of the request span. The returned function
// finishes and submits it.
func (h *Handlers) span(ctx context.Context, name string, tags map[string]string) (context.Context, func(error)) {
	if h.tracer == nil {
		return ctx, func(error) {}
	}
	span, ctx := h.tracer.StartSpan(ctx, name)
	for k, v := range tags {
		span.SetTag(k, v)
	}
	return ctx, func(err error) {
		span.Finish(err)
		h.tracer.Submit(span)
	}
}

func stateNames(states map[string]resilience.State) map[string]string {
	names := make(map[string]string, len(states))
	for name, state := range states {
		names[name] = state.String()
	}
	return names
}

func errorJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
