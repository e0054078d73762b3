// Package http provides the local HTTP server, router setup, and shared
// middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	activationHTTP "github.com/savegatehq/savegate/internal/activation/http"
	adminHTTP "github.com/savegatehq/savegate/internal/admintoken/http"
	adminUseCase "github.com/savegatehq/savegate/internal/admintoken/usecase"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	entitlementHTTP "github.com/savegatehq/savegate/internal/entitlement/http"
	"github.com/savegatehq/savegate/internal/metrics"
)

// Server represents the local HTTP server.
type Server struct {
	router *gin.Engine
	server *http.Server
	logger *slog.Logger
	db     *sql.DB
}

// NewServer creates a new HTTP server. SetupRouter must be called before
// Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		logger: logger,
		db:     db,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterConfig carries the handlers and middleware dependencies used to
// build the router.
type RouterConfig struct {
	EntitlementHandler *entitlementHTTP.EntitlementHandler
	AuditHandler       *entitlementHTTP.AuditHandler
	ConsentHandler     *entitlementHTTP.ConsentHandler
	ActivationHandler  *activationHTTP.ActivationHandler
	AdminHandler       *adminHTTP.AdminHandler

	// AdminTokenUseCase backs the admin guard on protected routes.
	AdminTokenUseCase adminUseCase.AdminTokenUseCase

	// RateLimiter applies to every route when non-nil. BreakGlassLimiter
	// additionally applies to the break-glass exchange, which is an offline
	// brute-force target and gets a much lower budget.
	RateLimiter       *RateLimiter
	BreakGlassLimiter *RateLimiter

	CORSEnabled      bool
	CORSAllowOrigins string

	// MeterProvider enables HTTP metrics when non-nil.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
}

// SetupRouter configures the Gin router with all middleware and routes.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	if cfg.RateLimiter != nil {
		router.Use(cfg.RateLimiter.Middleware())
	}

	// Health endpoints
	router.GET("/healthz", s.healthzHandler)
	router.GET("/livez", s.livezHandler)

	adminGuard := adminHTTP.AdminGuardMiddleware(cfg.AdminTokenUseCase, s.logger)

	v1 := router.Group("/v1")
	{
		entitlements := v1.Group("/entitlements")
		{
			entitlements.POST("/check", cfg.EntitlementHandler.CheckHandler)
			entitlements.POST("/grant", adminGuard, cfg.EntitlementHandler.GrantHandler)
			entitlements.POST("/revoke", adminGuard, cfg.EntitlementHandler.RevokeHandler)
			entitlements.POST("/purge", adminGuard, cfg.EntitlementHandler.PurgeHandler)
		}

		activation := v1.Group("/activation")
		{
			activation.POST("/validate", cfg.ActivationHandler.ValidateHandler)
			activation.POST("/redeem", cfg.ActivationHandler.RedeemHandler)
			// Generated codes redeem on any machine, so minting them takes
			// a wildcard admin token rather than a per-game one.
			activation.POST("/generate",
				adminGuard,
				adminHTTP.AdminScopeMiddleware(entitlementDomain.WildcardScope, s.logger),
				cfg.ActivationHandler.GenerateHandler)
		}

		admin := v1.Group("/admin")
		{
			// Token creation is the bootstrap path; it authenticates with
			// the debug password instead of an existing token.
			admin.POST("/tokens", cfg.AdminHandler.CreateTokenHandler)
			admin.GET("/diagnostics", adminGuard, cfg.AdminHandler.DiagnosticsHandler)

			breakGlass := admin.Group("/break-glass")
			if cfg.BreakGlassLimiter != nil {
				breakGlass.Use(cfg.BreakGlassLimiter.Middleware())
			}
			breakGlass.POST("/challenge", cfg.AdminHandler.BreakGlassChallengeHandler)
			breakGlass.POST("/respond", cfg.AdminHandler.BreakGlassRespondHandler)
		}

		audit := v1.Group("/audit")
		{
			audit.GET("/entries", adminGuard, cfg.AuditHandler.ListHandler)
		}

		consent := v1.Group("/consent")
		{
			consent.POST("", cfg.ConsentHandler.RecordHandler)
			consent.GET("", cfg.ConsentHandler.GetHandler)
		}
	}

	s.router = router
}

// healthzHandler reports whether the service can serve entitlement decisions.
// The capability store gets a short ping; any failure makes the whole
// response 503 so a supervising process can restart or surface the problem.
func (s *Server) healthzHandler(c *gin.Context) {
	components := map[string]string{}
	healthy := true

	if s.db == nil {
		components["database"] = "error"
		healthy = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error("health check database ping failed", slog.String("error", err.Error()))
			components["database"] = "error"
			healthy = false
		} else {
			components["database"] = "ok"
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "unhealthy",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"components": components,
	})
}

// livezHandler reports process liveness only. It never touches the store.
func (s *Server) livezHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// GetHandler returns the http.Handler for testing purposes.
// Returns nil until SetupRouter has been called.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured: call SetupRouter before Start")
	}

	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
