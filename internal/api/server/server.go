package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "captionflow/docs" // Generated swagger docs
	"captionflow/internal/api/middleware"
	v1routes "captionflow/internal/api/v1/routes"
)

// Config represents API server configuration
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
	// MaxBodyBytes caps request bodies; zero means unlimited.
	MaxBodyBytes int64
	CORSOrigins  []string
}

// DefaultConfig leaves WriteTimeout unset: synchronous transcription
// responses can take as long as the provider does.
func DefaultConfig(addr, environment string) Config {
	return Config{
		Addr:        addr,
		ReadTimeout: 5 * time.Minute,
		IdleTimeout: 2 * time.Minute,
		Environment: environment,
	}
}

// Server represents the API server
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates a new API server. gatherer backs /metrics and may be nil.
func NewServer(config Config, container *v1routes.ServiceContainer, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(config.CORSOrigins...)))
	if config.MaxBodyBytes > 0 {
		router.Use(limitBody(config.MaxBodyBytes))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1routes.RegisterRoutes(router, container, logger)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":       "captionflow API",
			"version":       "0.0.1",
			"documentation": "/swagger/index.html",
			"endpoints": gin.H{
				"health":     "/health",
				"transcribe": "/transcribe-from-url",
				"translate":  "/translate",
				"export":     "/export",
				"providers":  "/api/v1/providers",
			},
		})
	})

	return &Server{
		config: config,
		router: router,
		httpServer: &http.Server{
			Addr:         config.Addr,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger,
	}
}

// ListenAndServe blocks until ctx is canceled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server",
			zap.String("address", s.httpServer.Addr),
			zap.String("environment", s.config.Environment))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("API server shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
