package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/supplyadvisor/pkg/application/services/orchestration"
)

// MetricsProvider records request metrics and serves the scrape endpoint
type MetricsProvider interface {
	HTTPMetrics
	Handler() http.Handler
}

// ReadinessCheck reports whether a backing service is reachable
type ReadinessCheck func(ctx context.Context) error

// Server exposes the planning orchestrator over HTTP
type Server struct {
	log       *slog.Logger
	engine    *gin.Engine
	srv       *http.Server
	metrics   MetricsProvider
	readiness ReadinessCheck
}

type ServerOption func(*Server)

// WithMetrics records request metrics and serves /metrics
func WithMetrics(m MetricsProvider) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithReadiness serves /ready backed by check
func WithReadiness(check ReadinessCheck) ServerOption {
	return func(s *Server) { s.readiness = check }
}

// NewServer builds the router and the underlying http.Server
func NewServer(logger *slog.Logger, addr string, timeout time.Duration, po *orchestration.PlanningOrchestrator, opts ...ServerOption) *Server {
	s := &Server{
		log: logger.With(slog.String("component", "http")),
	}
	for _, opt := range opts {
		opt(s)
	}

	InitValidator()
	s.engine = s.routes(po)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	return s
}

func (s *Server) routes(po *orchestration.PlanningOrchestrator) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(s.log))
	router.Use(RequestID())
	router.Use(Logger(s.log, "/health", "/ready", "/metrics"))
	if s.metrics != nil {
		router.Use(Metrics(s.metrics))
	}
	router.Use(ErrorHandler(s.log))
	router.NoRoute(NoRoute())

	h := &handlers{po: po}
	router.GET("/health", h.health)
	if s.readiness != nil {
		router.GET("/ready", s.ready)
	}
	if s.metrics != nil {
		handler := s.metrics.Handler()
		router.GET("/metrics", func(c *gin.Context) {
			handler.ServeHTTP(c.Writer, c.Request)
		})
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/forecasts", h.forecast)
		v1.GET("/alerts", h.stockAlerts)

		products := v1.Group("/products/:id")
		products.GET("/simulation", h.simulation)
		products.GET("/simulation/delivery", h.deliverySimulation)
		products.GET("/substitutes", h.substitutes)
		products.GET("/analysis", h.analysis)
		products.GET("/bom-tree", h.bomTree)
		products.POST("/advice", h.advice)
	}
	return router
}

func (s *Server) ready(c *gin.Context) {
	if err := s.readiness(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until Shutdown is called
func (s *Server) Run() error {
	s.log.Info("http server started", slog.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
