package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/modulekit/internal/api/http"
	"github.com/GriffinCanCode/modulekit/internal/api/middleware"
	"github.com/GriffinCanCode/modulekit/internal/api/ws"
	"github.com/GriffinCanCode/modulekit/internal/domain/catalog"
	"github.com/GriffinCanCode/modulekit/internal/domain/module"
	"github.com/GriffinCanCode/modulekit/internal/domain/view"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/cache"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/config"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/modulekit/internal/modules"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	registry   *module.Registry
	catalog    *catalog.Catalog
	engine     *view.Engine
	store      *cache.Store
	client     *modules.Client
	tracer     *tracing.Tracer
	metrics    *monitoring.Metrics
	logger     *logging.Logger
	config     *config.Config

	stopWatch context.CancelFunc
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing module server",
		zap.String("port", cfg.Server.Port),
		zap.String("groups_file", cfg.Modules.GroupsFile),
		zap.String("views_dir", cfg.Views.Dir),
	)

	// Initialize metrics first (the registry reports to them)
	metrics := monitoring.NewMetrics()

	// Initialize distributed tracing
	tracer := tracing.New("modulekit", logger.Component("tracing"))

	store := cache.NewStore(
		cache.WithPrefix(cfg.Cache.Prefix),
		cache.WithCleanupInterval(cfg.Cache.CleanupInterval),
		cache.WithCompression(cfg.Cache.CompressThreshold),
	)
	cleanup := func() {
		tracer.Close()
		_ = store.Close()
	}

	opts := []module.Option{
		module.WithDefaults(cfg.Modules.DefaultPriority, cfg.Modules.CacheTTL()),
		module.WithCache(store),
		module.WithLogger(logger.Component("registry")),
		module.WithObserver(metrics),
	}
	if cfg.Modules.IsolateFailures {
		opts = append(opts, module.WithIsolation(isolationSettings(logger.Component("registry"))))
		logger.Info("Module failure isolation enabled")
	}
	registry := module.NewRegistry(opts...)

	clientCfg := modules.DefaultClientConfig()
	clientCfg.Logger = logger.Component("remote")
	client := modules.NewClient(clientCfg)

	cat := catalog.New()
	if err := modules.RegisterBuiltins(cat, client, modules.Defaults{Priority: cfg.Modules.DefaultPriority}); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to register built-in modules: %w", err)
	}

	if err := bootGroups(cat, registry, cfg.Modules, logger.Component("catalog")); err != nil {
		cleanup()
		return nil, err
	}

	policy, err := view.PolicyFor(cfg.Modules.Sanitize)
	if err != nil {
		cleanup()
		return nil, err
	}
	engine := view.NewEngine(registry, view.WithPolicy(policy), view.WithEngineLogger(logger.Component("views")))
	if err := loadViews(engine, cfg.Views, logger.Component("views")); err != nil {
		cleanup()
		return nil, err
	}

	stopWatch, err := watchViews(engine, cfg.Views, logger.Component("views"))
	if err != nil {
		cleanup()
		return nil, err
	}

	stats := registry.Stats()
	metrics.SetRegistryStats(stats.Positions, stats.Modules)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(middleware.Recovery(logger.Component("http")))
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	router.Use(middleware.CORS(corsCfg))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.String("scope", cfg.RateLimit.Scope),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		rl.Scope = cfg.RateLimit.Scope
		limit, err := middleware.RateLimit(rl)
		if err != nil {
			stopWatch()
			cleanup()
			return nil, err
		}
		router.Use(limit)
	}
	router.Use(middleware.Grants(cfg.Modules.PublicPermissions...))
	if cfg.Modules.TokenHash != "" {
		tokenGrants, err := middleware.TokenGrants(cfg.Modules.TokenHash, cfg.Modules.TokenPermissions...)
		if err != nil {
			stopWatch()
			cleanup()
			return nil, err
		}
		router.Use(tokenGrants)
	}

	// Register routes
	handlers := apihttp.NewHandlers(registry, engine, metrics, tracer, client, logger.Component("http"))
	handlers.Register(router)

	// Live fragments
	streamInterval := cfg.Server.StreamInterval
	if streamInterval <= 0 {
		streamInterval = 5 * time.Second
	}
	router.GET("/stream", ws.NewHandler(engine, streamInterval, logger.Component("stream")).HandleConnection)

	logger.Info("Server initialized successfully",
		zap.Int("positions", stats.Positions),
		zap.Int("modules", stats.Modules),
		zap.Int("pages", len(engine.Pages())),
	)

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		registry:  registry,
		catalog:   cat,
		engine:    engine,
		store:     store,
		client:    client,
		tracer:    tracer,
		metrics:   metrics,
		logger:    logger,
		config:    cfg,
		stopWatch: stopWatch,
	}, nil
}

// bootGroups loads the groups file and registers every boot group.
func bootGroups(cat *catalog.Catalog, registry *module.Registry, cfg config.ModulesConfig, logger *zap.Logger) error {
	if cfg.GroupsFile == "" {
		if len(cfg.BootGroups) > 0 {
			return fmt.Errorf("boot groups %v need a groups file", cfg.BootGroups)
		}
		return nil
	}

	groups, err := config.LoadGroups(cfg.GroupsFile)
	if err != nil {
		return err
	}
	logger.Info("Module groups loaded",
		zap.String("file", cfg.GroupsFile),
		zap.Strings("groups", groups.Names()),
	)

	for _, name := range cfg.BootGroups {
		if err := cat.RegisterGroup(registry, groups, name); err != nil {
			return fmt.Errorf("failed to register group %s: %w", name, err)
		}
		logger.Info("Registered module group", zap.String("group", name))
	}
	return nil
}

// loadViews parses page templates when the views directory exists.
func loadViews(engine *view.Engine, cfg config.ViewsConfig, logger *zap.Logger) error {
	if cfg.Dir == "" {
		return nil
	}
	info, err := os.Stat(cfg.Dir)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("Views directory not found, pages disabled", zap.String("dir", cfg.Dir))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat views directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("views path %s is not a directory", cfg.Dir)
	}
	return engine.Load(os.DirFS(cfg.Dir), cfg.Pattern)
}

// watchViews starts reloading pages in the background when a watch interval
// is configured. The returned func stops it.
func watchViews(engine *view.Engine, cfg config.ViewsConfig, logger *zap.Logger) (context.CancelFunc, error) {
	if cfg.WatchInterval <= 0 || cfg.Dir == "" {
		return func() {}, nil
	}
	if info, err := os.Stat(cfg.Dir); err != nil || !info.IsDir() {
		return func() {}, nil
	}

	watcher, err := view.NewWatcher(engine, cfg.Dir, cfg.Pattern, logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	go watcher.Run(ctx, cfg.WatchInterval)

	logger.Info("Watching views for changes",
		zap.String("dir", cfg.Dir),
		zap.Duration("interval", cfg.WatchInterval),
	)
	return cancel, nil
}

func isolationSettings(logger *zap.Logger) resilience.Settings {
	return resilience.Settings{
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Module breaker state changed",
				zap.String("type", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Registry returns the module registry
func (s *Server) Registry() *module.Registry {
	return s.registry
}

// Catalog returns the module type catalog
func (s *Server) Catalog() *catalog.Catalog {
	return s.catalog
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run starts the HTTP server and blocks until it stops. It returns nil
// after a graceful Shutdown.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx
// ends, and then releases resources.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(shutdownErr))
		err = fmt.Errorf("failed to shut down http server: %w", shutdownErr)
	}
	return errors.Join(err, s.Close())
}

// Close releases the cache and tracer
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.stopWatch()

	s.tracer.Close()
	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close cache", zap.Error(err))
		return fmt.Errorf("failed to close cache: %w", err)
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return nil
}
