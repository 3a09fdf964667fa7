package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/runpad/backend/internal/api/middleware"
	"github.com/runpad/backend/internal/engine"
	"github.com/runpad/backend/internal/http"
	"github.com/runpad/backend/internal/infrastructure/config"
	"github.com/runpad/backend/internal/infrastructure/monitoring"
	"github.com/runpad/backend/internal/loader"
	"github.com/runpad/backend/internal/logging"
	"github.com/runpad/backend/internal/store"
	"github.com/runpad/backend/internal/worker"
	"github.com/runpad/backend/internal/ws"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	store   *store.Store
	loader  *loader.Loader
	metrics *monitoring.Metrics
	logger  *logging.Logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	metrics := monitoring.NewMetrics()

	engineCfg := engine.Config{
		Timeout:       cfg.Engine.Timeout,
		MaxMemoryMB:   cfg.Engine.MaxMemoryMB,
		PoolSize:      cfg.Engine.PoolSize,
		EnableConsole: cfg.Engine.EnableConsole,
	}

	ld := loader.New(cfg.Engine.Locator, engineCfg, logger)

	// Pick the isolation level; either way the resolver is wrapped
	// so module loads land in the metrics.
	resolve := loader.Resolve
	if cfg.Worker.Isolated {
		spawner := worker.NewIsolated(worker.Config{
			WallTimeout: cfg.Worker.WallTimeout,
			QueueSize:   cfg.Worker.QueueSize,
		}, logger)
		resolve = spawner.Resolver()
	}
	ld.WithResolver(instrumented(resolve, metrics))

	st := store.New(ld, logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(monitoring.Middleware(metrics))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := http.NewHandlers(st, ld, metrics)
	wsHandler := ws.NewHandler(st, metrics, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Code buffer
	router.GET("/code", handlers.GetCode)
	router.PUT("/code", handlers.UpdateCode)
	router.POST("/run", handlers.Run)

	// WebSocket editor binding
	router.GET("/stream", wsHandler.HandleConnection)

	// Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		router:  router,
		store:   st,
		loader:  ld,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Store exposes the code store, for embedding and tests.
func (s *Server) Store() *store.Store {
	return s.store
}

// Run starts the server
func (s *Server) Run(addr string) error {
	s.logger.Info("starting runpad backend", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close cleans up resources
func (s *Server) Close() error {
	if err := s.loader.Close(); err != nil {
		s.logger.Warn("error closing engine", zap.Error(err))
	}
	s.logger.Sync()
	return nil
}

// instrumented wraps a resolver with load metrics.
func instrumented(resolve loader.ResolveFunc, metrics *monitoring.Metrics) loader.ResolveFunc {
	return func(ctx context.Context, locator string, cfg engine.Config) (engine.Engine, error) {
		start := time.Now()
		eng, err := resolve(ctx, locator, cfg)
		metrics.RecordEngineLoad(time.Since(start), err)
		return eng, err
	}
}
