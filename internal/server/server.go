// Package server
//
// @title Tanami Chat API
// @version 1.0
// @description NamiBot chat proxy for the Tanami farming assistant
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tanami-dev/tanami/internal/chat"
	"github.com/tanami-dev/tanami/internal/config"
)

const (
	writeTimeout = 90 * time.Second

	// upstreamMargin is the minimum gap between the provider deadline and
	// writeTimeout
	upstreamMargin = 10 * time.Second
)

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    zerolog.Logger
	completer chat.Completer
	version   string
}

// Option configures a Server
type Option func(*Server)

// WithCompleter replaces the Groq provider, mainly for tests
func WithCompleter(completer chat.Completer) Option {
	return func(s *Server) {
		s.completer = completer
	}
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string, opts ...Option) *Server {
	server := &Server{
		config:  cfg,
		logger:  zlog,
		version: version,
	}

	for _, opt := range opts {
		opt(server)
	}

	if server.completer == nil {
		if cfg.Chat.GroqAPIKey == "" {
			zlog.Warn().Msg("GROQ_API_KEY not set - chat requests will fail until it is configured")
		}
		server.completer = chat.NewProvider(chat.ProviderConfig{
			APIKey:  cfg.Chat.GroqAPIKey,
			BaseURL: cfg.Chat.GroqBaseURL,
			Model:   cfg.Chat.Model,
			Timeout: upstreamTimeout(cfg.Chat.Timeout),
		})
	}

	// Setup router
	server.setupRouter()

	return server
}

// upstreamTimeout caps the provider timeout below the response write
// deadline
func upstreamTimeout(configured time.Duration) time.Duration {
	if configured <= 0 {
		return chat.DefaultTimeout
	}
	if limit := writeTimeout - upstreamMargin; configured > limit {
		return limit
	}
	return configured
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")
	{
		chat.NewHandler(s.completer, s.logger).Register(api)
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "tanami-chat",
		"version":   s.version,
	})
}

// Handler exposes the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return s.Run(ctx)
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	port := ":" + s.config.Server.Port

	srv := &http.Server{
		Addr:    port,
		Handler: s.router,
		// Provider calls can take a while on long conversations
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("port", port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.logger.Error().Err(err).Msg("HTTP server error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
