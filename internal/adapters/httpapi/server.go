// Package httpapi exposes the risk engine as a JSON API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/upi-risk-engine/internal/metrics"
	"github.com/mikey/upi-risk-engine/internal/ports"
	"go.uber.org/zap"
)

// DefaultMaxBatch caps the payloads accepted by one batch QR request
const DefaultMaxBatch = 100

// Server serves the JSON API
type Server struct {
	service    ports.RiskService
	metrics    *metrics.Metrics
	logger     *zap.Logger
	listenAddr string
	maxBatch   int
	router     *gin.Engine
	server     *http.Server
}

// NewServer creates the API server and registers its routes
func NewServer(service ports.RiskService, m *metrics.Metrics, logger *zap.Logger, listenAddr string, maxBatch int) *Server {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	s := &Server{
		service:    service,
		metrics:    m,
		logger:     logger,
		listenAddr: listenAddr,
		maxBatch:   maxBatch,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.metrics.Middleware())

	r.GET("/healthz", s.health)
	r.GET("/metrics", s.metrics.Handler())

	api := r.Group("/api")
	api.POST("/upi/check", s.checkIdentifier)
	api.POST("/text/analyze", s.analyzeText)
	api.POST("/messages/analyze", s.analyzeMessage)
	api.POST("/qr/analyze", s.analyzeQR)
	api.POST("/qr/batch", s.analyzeQRBatch)
	api.POST("/qr/feedback", s.qrFeedback)
	api.POST("/transactions/score", s.scoreTransaction)
	api.POST("/reports", s.submitReport)
	api.GET("/reports/:identifier", s.getReports)
	return r
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Name identifies the listener
func (s *Server) Name() string {
	return "http"
}

// Start starts serving in the background
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	s.logger.Info("HTTP API starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
