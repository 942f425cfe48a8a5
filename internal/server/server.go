package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/gin-gonic/gin"

	"github.com/Vellarasan/AI-Copilot-CLI-Server/config"
)

// Server represents the HTTP server
type Server struct {
	cfg           *config.Config
	router        *gin.Engine
	handlers      *Handlers
	setupHandlers *SetupHandlers
	auth          *AuthService
	limiter       *RateLimiter
	httpServer    *http.Server
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	s := &Server{
		cfg:           cfg,
		router:        router,
		handlers:      NewHandlers(cfg),
		setupHandlers: NewSetupHandlers(cfg),
		auth:          NewAuthService(cfg.APIKey, cfg.JWTSecret),
		limiter:       NewRateLimiter(cfg.RateLimitRPS),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(RecoveryMiddleware())
	s.router.Use(LoggerMiddleware())
	s.router.Use(CORSMiddleware(s.cfg.AllowedOrigins))
	s.router.Use(RateLimitMiddleware(s.limiter))
}

func (s *Server) setupRoutes() {
	// Health check (no auth)
	s.router.GET("/health", s.handlers.HealthCheck)

	// Setup routes (no auth required in setup mode)
	if s.cfg.SetupMode {
		setup := s.router.Group("/setup")
		{
			setup.GET("", s.setupHandlers.SetupStatus)
			setup.POST("/generate", s.setupHandlers.GenerateKey)
			setup.POST("/save", s.setupHandlers.SaveKey)
		}
	}

	// API routes (require auth)
	api := s.router.Group("/api")
	api.Use(AuthMiddleware(s.auth))
	{
		// Server info
		api.GET("/info", s.handlers.GetInfo)

		// Repositories
		api.GET("/repos", s.handlers.ListRepos)

		// Copilot
		api.POST("/copilot/execute", s.handlers.ExecuteCopilot)

		// Git
		api.POST("/git/commit-and-push", s.handlers.CommitAndPush)

		// Combined workflow
		api.POST("/workflow/copilot-commit-push", s.handlers.RunWorkflow)

		// Settings
		api.GET("/settings", s.setupHandlers.GetSettings)
		api.POST("/settings/generate-key", s.setupHandlers.GenerateKey)
		api.POST("/settings/api-key", s.setupHandlers.SaveKey)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("Starting Copilot CLI server on %s (repos: %s)", s.cfg.Addr(), s.cfg.ReposBasePath)

	// Let systemd know the unit is ready; no-op outside systemd
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Printf("sd_notify failed: %v", err)
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Router returns the Gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
