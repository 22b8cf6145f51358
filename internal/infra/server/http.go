package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techcorp/classified-doc-broker/internal/adapters/primary/http/controller"
	"github.com/techcorp/classified-doc-broker/internal/adapters/primary/http/middleware"
	"github.com/techcorp/classified-doc-broker/internal/infra/config"
)

// @title           Classified Document Broker API
// @version         1.0
// @description     SSI-gated broker for section-level classified document discovery, upload and download.

// @contact.name    API Support
// @contact.email   support@techcorp.example

// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT

// @host            localhost:8080
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            X-Session-Token

// HTTPServer wraps the configured Gin engine and the server-specific slice
// of configuration needed to run it.
type HTTPServer struct {
	engine *gin.Engine
	config *config.ServerConfig
}

// Controllers bundles every primary HTTP adapter NewHTTPServer wires
// routes for.
type Controllers struct {
	Auth         *controller.AuthController
	Document     *controller.DocumentController
	Ephemeral    *controller.EphemeralController
	ResourceAuth *controller.ResourceAuthController
}

// NewHTTPServer creates a new HTTP server with all routes and middleware
// configured.
func NewHTTPServer(cfg *config.Config, sessions middleware.SessionStore, ctrls Controllers) *HTTPServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())

	engine.GET("/health", healthHandler)
	engine.GET("/ready", readyHandler)

	v1 := engine.Group("/api/v1")
	v1.Use(middleware.Operation())
	v1.Use(middleware.RequestTimeout(cfg.Server.ReadTimeout))

	authenticated := v1.Group("")
	authenticated.Use(middleware.SessionAuth(sessions))

	ctrls.Auth.RegisterRoutes(v1, authenticated)
	ctrls.Document.RegisterRoutes(v1, authenticated)
	ctrls.Ephemeral.RegisterRoutes(v1)
	ctrls.ResourceAuth.RegisterRoutes(authenticated)

	return &HTTPServer{
		engine: engine,
		config: &cfg.Server,
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// server fails.
func (s *HTTPServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", s.config.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errChan := make(chan error, 1)

	go func() {
		slog.Info("starting HTTP server", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		slog.Info("HTTP server stopped gracefully")
		return nil

	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// Engine returns the underlying Gin engine. Useful for testing.
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// healthHandler returns OK if the service is running.
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "classified-doc-broker",
	})
}

// readyHandler returns OK if the service is ready to accept traffic.
func readyHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// corsMiddleware configures CORS for the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Session-Token, X-Session-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
