// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lmittmann/tint"

	activationHTTP "github.com/savegatehq/savegate/internal/activation/http"
	activationService "github.com/savegatehq/savegate/internal/activation/service"
	activationUseCase "github.com/savegatehq/savegate/internal/activation/usecase"
	adminHTTP "github.com/savegatehq/savegate/internal/admintoken/http"
	adminService "github.com/savegatehq/savegate/internal/admintoken/service"
	adminUseCase "github.com/savegatehq/savegate/internal/admintoken/usecase"
	"github.com/savegatehq/savegate/internal/config"
	"github.com/savegatehq/savegate/internal/database"
	entitlementHTTP "github.com/savegatehq/savegate/internal/entitlement/http"
	entitlementService "github.com/savegatehq/savegate/internal/entitlement/service"
	entitlementUseCase "github.com/savegatehq/savegate/internal/entitlement/usecase"
	"github.com/savegatehq/savegate/internal/http"
	"github.com/savegatehq/savegate/internal/machineid"
	"github.com/savegatehq/savegate/internal/metrics"
	"github.com/savegatehq/savegate/internal/signing"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger            *slog.Logger
	db                *sql.DB
	txManager         database.TxManager
	keyRing           *signing.KeyRing
	machineIDProvider machineid.Provider

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Entitlement context
	capabilityRepo      entitlementUseCase.CapabilityRepository
	auditRepo           entitlementUseCase.AuditRepository
	consentRepo         entitlementUseCase.ConsentRepository
	capabilityValidator entitlementService.CapabilityValidator
	capabilityIssuer    entitlementService.CapabilityIssuer
	entitlementUseCase  entitlementUseCase.EntitlementUseCase
	entitlementHandler  *entitlementHTTP.EntitlementHandler
	auditHandler        *entitlementHTTP.AuditHandler
	consentHandler      *entitlementHTTP.ConsentHandler

	// Activation context
	redemptionRepo    activationUseCase.RedemptionRepository
	codeService       activationService.CodeService
	activationUseCase activationUseCase.ActivationUseCase
	activationHandler *activationHTTP.ActivationHandler

	// Admin token context
	tokenService      adminService.TokenService
	breakGlassService adminService.BreakGlassService
	adminTokenRepo    adminUseCase.TokenRepository
	adminTokenUseCase adminUseCase.AdminTokenUseCase
	adminHandler      *adminHTTP.AdminHandler

	// Servers and limiters
	httpServer        *http.Server
	metricsServer     *http.MetricsServer
	rateLimiter       *http.RateLimiter
	breakGlassLimiter *http.RateLimiter

	// Initialization flags and mutex for thread-safety
	mu                      sync.Mutex
	loggerInit              sync.Once
	dbInit                  sync.Once
	txManagerInit           sync.Once
	keyRingInit             sync.Once
	machineIDProviderInit   sync.Once
	metricsProviderInit     sync.Once
	businessMetricsInit     sync.Once
	capabilityRepoInit      sync.Once
	auditRepoInit           sync.Once
	consentRepoInit         sync.Once
	capabilityValidatorInit sync.Once
	capabilityIssuerInit    sync.Once
	entitlementUseCaseInit  sync.Once
	entitlementHandlerInit  sync.Once
	auditHandlerInit        sync.Once
	consentHandlerInit      sync.Once
	redemptionRepoInit      sync.Once
	codeServiceInit         sync.Once
	activationUseCaseInit   sync.Once
	activationHandlerInit   sync.Once
	tokenServiceInit        sync.Once
	breakGlassServiceInit   sync.Once
	adminTokenRepoInit      sync.Once
	adminTokenUseCaseInit   sync.Once
	adminHandlerInit        sync.Once
	httpServerInit          sync.Once
	metricsServerInit       sync.Once
	rateLimiterInit         sync.Once
	breakGlassLimiterInit   sync.Once
	initErrors              map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level and format
// in configuration, and installs it as the process-wide slog default so
// package-level log calls use the same handler.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
		slog.SetDefault(c.logger)
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the database transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// KeyRing returns the signing key ring derived from the configured master key.
func (c *Container) KeyRing() (*signing.KeyRing, error) {
	var err error
	c.keyRingInit.Do(func() {
		c.keyRing, err = c.initKeyRing()
		if err != nil {
			c.initErrors["keyRing"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRing"]; exists {
		return nil, storedErr
	}
	return c.keyRing, nil
}

// MachineIDProvider returns the local machine identity provider.
func (c *Container) MachineIDProvider() machineid.Provider {
	c.machineIDProviderInit.Do(func() {
		c.machineIDProvider = c.initMachineIDProvider()
	})
	return c.machineIDProvider
}

// MetricsProvider returns the OpenTelemetry metrics provider.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// RateLimiter returns the per-client limiter for the API surface, or nil when
// rate limiting is disabled.
func (c *Container) RateLimiter() *http.RateLimiter {
	c.rateLimiterInit.Do(func() {
		c.rateLimiter = c.initRateLimiter()
	})
	return c.rateLimiter
}

// BreakGlassLimiter returns the tighter limiter for the break-glass exchange,
// or nil when it is disabled.
func (c *Container) BreakGlassLimiter() *http.RateLimiter {
	c.breakGlassLimiterInit.Do(func() {
		c.breakGlassLimiter = c.initBreakGlassLimiter()
	})
	return c.breakGlassLimiter
}

// HTTPServer returns the HTTP server with all routes configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server, or nil when metrics are
// disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP server if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	// Shutdown metrics server if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Stop rate limiter cleanup goroutines if initialized
	if c.rateLimiter != nil {
		c.rateLimiter.Stop()
	}
	if c.breakGlassLimiter != nil {
		c.breakGlassLimiter.Stop()
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Flush and shut down the metrics provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Zero signing key material last; nothing above signs during shutdown
	if c.keyRing != nil {
		c.keyRing.Close()
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log
// level and format.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var handler slog.Handler
	switch c.config.LogFormat {
	case "text":
		// Readable output for the terminal the tool usually runs in.
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
		})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	}

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager over the shared connection pool.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for transaction manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initKeyRing loads the master key from its configured source and derives the
// per-domain signing keys. A missing or short key fails here, at startup.
func (c *Container) initKeyRing() (*signing.KeyRing, error) {
	keyRing, err := signing.LoadKeyRing(context.Background(), signing.Options{
		MasterKey:        c.config.SigningMasterKey,
		MasterKeyWrapped: c.config.SigningMasterKeyWrapped,
		KMSKeyURI:        c.config.SigningKMSKeyURI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key ring: %w", err)
	}
	return keyRing, nil
}

// initMachineIDProvider creates the hardware-fingerprint machine ID provider.
func (c *Container) initMachineIDProvider() machineid.Provider {
	return machineid.NewProvider()
}

// initMetricsProvider creates the OpenTelemetry metrics provider.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	metricsProvider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return metricsProvider, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}

	businessMetrics, err := metrics.NewBusinessMetrics(metricsProvider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initRateLimiter creates the per-client API limiter when enabled.
func (c *Container) initRateLimiter() *http.RateLimiter {
	if !c.config.RateLimitEnabled {
		return nil
	}
	return http.NewRateLimiter(
		c.config.RateLimitRequestsPerSec,
		c.config.RateLimitBurst,
		c.Logger(),
	)
}

// initBreakGlassLimiter creates the break-glass limiter when enabled.
func (c *Container) initBreakGlassLimiter() *http.RateLimiter {
	if !c.config.RateLimitBreakGlassEnabled {
		return nil
	}
	return http.NewRateLimiter(
		c.config.RateLimitBreakGlassRequestsPerSec,
		c.config.RateLimitBreakGlassBurst,
		c.Logger(),
	)
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	entitlementHandler, err := c.EntitlementHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get entitlement handler for http server: %w", err)
	}

	auditHandler, err := c.AuditHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit handler for http server: %w", err)
	}

	consentHandler, err := c.ConsentHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get consent handler for http server: %w", err)
	}

	activationHandler, err := c.ActivationHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get activation handler for http server: %w", err)
	}

	adminHandler, err := c.AdminHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get admin handler for http server: %w", err)
	}

	adminTokenUseCase, err := c.AdminTokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get admin token use case for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)

	routerConfig := http.RouterConfig{
		EntitlementHandler: entitlementHandler,
		AuditHandler:       auditHandler,
		ConsentHandler:     consentHandler,
		ActivationHandler:  activationHandler,
		AdminHandler:       adminHandler,
		AdminTokenUseCase:  adminTokenUseCase,
		RateLimiter:        c.RateLimiter(),
		BreakGlassLimiter:  c.BreakGlassLimiter(),
		CORSEnabled:        c.config.CORSEnabled,
		CORSAllowOrigins:   c.config.CORSAllowOrigins,
		MetricsNamespace:   c.config.MetricsNamespace,
	}

	if c.config.MetricsEnabled {
		metricsProvider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
		routerConfig.MeterProvider = metricsProvider.MeterProvider()
	}

	server.SetupRouter(routerConfig)

	return server, nil
}

// initMetricsServer creates the metrics HTTP server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		metricsProvider,
	), nil
}
