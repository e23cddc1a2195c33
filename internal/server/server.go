// file: internal/server/server.go
// version: 2.0.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/portal-server/internal/config"
	"github.com/jdfalk/portal-server/internal/database"
	"github.com/jdfalk/portal-server/internal/metrics"
	"github.com/jdfalk/portal-server/internal/resolver"
	"github.com/jdfalk/portal-server/internal/server/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	shutdownTimeout    = 30 * time.Second
	usersGaugeInterval = 30 * time.Second
)

// Dependencies are the collaborators a Server is built from.
type Dependencies struct {
	Store    database.Store
	Resolver *resolver.Resolver
	Config   config.Config
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        config.Config
	users      *UserService
	static     *StaticHandler
	ai         *AIHandler
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a new server instance
func NewServer(deps Dependencies) *Server {
	cfg := deps.Config
	router := gin.New()

	router.Use(recoveryHandler(cfg.Debug))
	router.Use(middleware.RequestID())
	router.Use(requestLogging())
	router.Use(middleware.Metrics())
	router.Use(corsMiddleware())
	router.Use(errorBoundary(cfg.Debug))

	// Register metrics (idempotent)
	metrics.Register()

	s := &Server{
		router: router,
		cfg:    cfg,
		users:  NewUserService(deps.Store),
		static: NewStaticHandler(deps.Resolver, cfg.DefaultDocument, cfg.SuggestionsLimit),
		ai:     NewAIHandler(deps.Resolver, cfg.AIPrefixes, cfg.AICandidates),
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/api/health", s.healthCheck)

	api := s.router.Group("/api")
	if s.cfg.RateLimitPerMinute > 0 {
		api.Use(middleware.NewIPRateLimiter(s.cfg.RateLimitPerMinute, s.cfg.RateLimitBurst).Middleware())
	}
	api.Use(middleware.MaxRequestBodySize(s.cfg.MaxBodyBytes))
	{
		api.GET("/users", s.listUsers)
		api.POST("/users", s.createUser)
		api.POST("/login", s.login)
	}

	// Everything else is a file, an AI page or an unknown endpoint.
	s.router.NoRoute(s.dispatch)
}

func (s *Server) dispatch(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead:
		if s.ai.Matches(c.Request.URL.Path) {
			s.ai.Serve(c)
			return
		}
		s.static.Serve(c)
	default:
		_ = c.Error(&NotFoundError{Message: "Not found"})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	resp := HealthResponse{Success: true, Status: "ok", Root: s.static.root}
	n, err := s.users.Count()
	if err != nil {
		// A broken store degrades health but the file server still works.
		resp.Status = "degraded"
		resp.Error = err.Error()
	}
	resp.Users = n
	c.JSON(http.StatusOK, resp)
}

// Start binds the configured address and serves until SIGINT or SIGTERM.
// A bind failure is returned immediately.
func (s *Server) Start(cfg ServerConfig) error {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.Serve(ctx, ln, cfg)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully, giving in-flight requests a deadline to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		log.Printf("[INFO] Serving %s at http://%s/", s.static.root, ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	gaugeCtx, stopGauge := context.WithCancel(ctx)
	defer stopGauge()
	go s.refreshUsersGauge(gaugeCtx)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("[INFO] Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("[INFO] Server exited")
	return nil
}

// refreshUsersGauge keeps the users gauge current while the server runs.
func (s *Server) refreshUsersGauge(ctx context.Context) {
	ticker := time.NewTicker(usersGaugeInterval)
	defer ticker.Stop()

	for {
		if _, err := s.users.Count(); err != nil {
			log.Printf("[WARN] Failed to refresh users gauge: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// GetDefaultServerConfig returns default server configuration
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:         "8000",
		Host:         "localhost",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ServerConfigFrom derives the listener settings from the application config.
func ServerConfigFrom(cfg config.Config) ServerConfig {
	sc := GetDefaultServerConfig()
	if cfg.Host != "" {
		sc.Host = cfg.Host
	}
	if cfg.Port != "" {
		sc.Port = cfg.Port
	}
	if cfg.ReadTimeout > 0 {
		sc.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		sc.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.IdleTimeout > 0 {
		sc.IdleTimeout = cfg.IdleTimeout
	}
	return sc
}
