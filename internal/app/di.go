// Package app provides the dependency injection container assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/authware/authority/internal/config"
	"github.com/authware/authority/internal/database"
	eventUseCase "github.com/authware/authority/internal/event/usecase"
	"github.com/authware/authority/internal/http"
	identityHTTP "github.com/authware/authority/internal/identity/http"
	identityService "github.com/authware/authority/internal/identity/service"
	identityUseCase "github.com/authware/authority/internal/identity/usecase"
	"github.com/authware/authority/internal/metrics"
	tokenHTTP "github.com/authware/authority/internal/token/http"
	tokenUseCase "github.com/authware/authority/internal/token/usecase"
)

// Container holds all application dependencies and provides methods to access
// them. Components are created lazily on first access.
type Container struct {
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	keyKeeper       identityService.KeyKeeper
	passwordService *passwordServiceBundle
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Repositories
	membershipRepo   identityUseCase.MembershipRepository
	userRepo         identityUseCase.UserRepository
	applicationRepo  identityUseCase.ApplicationRepository
	roleRepo         identityUseCase.RoleRepository
	revokedTokenRepo tokenUseCase.RevokedTokenRepository
	eventRepo        eventUseCase.EventRepository
	webhookRepo      eventUseCase.WebhookRepository

	// Use cases
	eventEmitter       *eventUseCase.AuditEventUseCase
	webhookUseCase     eventUseCase.WebhookUseCase
	membershipUseCase  identityUseCase.MembershipUseCase
	userUseCase        identityUseCase.UserUseCase
	applicationUseCase identityUseCase.ApplicationUseCase
	roleUseCase        identityUseCase.RoleUseCase
	tokenUseCase       tokenUseCase.TokenUseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	dbInit                 sync.Once
	txManagerInit          sync.Once
	keyKeeperInit          sync.Once
	passwordServiceInit    sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	membershipRepoInit     sync.Once
	userRepoInit           sync.Once
	applicationRepoInit    sync.Once
	roleRepoInit           sync.Once
	revokedTokenRepoInit   sync.Once
	eventRepoInit          sync.Once
	webhookRepoInit        sync.Once
	eventEmitterInit       sync.Once
	webhookUseCaseInit     sync.Once
	membershipUseCaseInit  sync.Once
	userUseCaseInit        sync.Once
	applicationUseCaseInit sync.Once
	roleUseCaseInit        sync.Once
	tokenUseCaseInit       sync.Once
	httpServerInit         sync.Once
	metricsServerInit      sync.Once
	initErrors             map[string]error
}

// passwordServiceBundle exposes the credential service under its two roles.
type passwordServiceBundle struct {
	identityService.PasswordService
	identityService.SecretService
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
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
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := database.Connect(database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			c.initErrors["db"] = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		c.db = db
	})
	if err, exists := c.initErrors["db"]; exists {
		return nil, err
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if err, exists := c.initErrors["txManager"]; exists {
		return nil, err
	}
	return c.txManager, nil
}

// KeyKeeper returns the signing key keeper. With a KMS key URI configured the
// keeper seals keys through gocloud secrets; otherwise keys are stored as
// provided.
func (c *Container) KeyKeeper() (identityService.KeyKeeper, error) {
	c.keyKeeperInit.Do(func() {
		if c.config.KMSKeyURI == "" {
			c.keyKeeper = identityService.NewPlainKeyKeeper()
			return
		}
		keeper, err := identityService.NewKMSKeyKeeper(context.Background(), c.config.KMSKeyURI)
		if err != nil {
			c.initErrors["keyKeeper"] = fmt.Errorf("failed to open KMS keeper: %w", err)
			return
		}
		c.keyKeeper = keeper
	})
	if err, exists := c.initErrors["keyKeeper"]; exists {
		return nil, err
	}
	return c.keyKeeper, nil
}

// PasswordService returns the credential hashing service.
func (c *Container) PasswordService() identityService.PasswordService {
	return c.passwordServices().PasswordService
}

// SecretService returns the application secret generator.
func (c *Container) SecretService() identityService.SecretService {
	return c.passwordServices().SecretService
}

func (c *Container) passwordServices() *passwordServiceBundle {
	c.passwordServiceInit.Do(func() {
		svc := identityService.NewPasswordService()
		c.passwordService = &passwordServiceBundle{
			PasswordService: svc,
			SecretService:   svc,
		}
	})
	return c.passwordService
}

// MetricsProvider returns the Prometheus metrics provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if err, exists := c.initErrors["metricsProvider"]; exists {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder is
// returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = bm
	})
	if err, exists := c.initErrors["businessMetrics"]; exists {
		return nil, err
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if err, exists := c.initErrors["httpServer"]; exists {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if err, exists := c.initErrors["metricsServer"]; exists {
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources. Pending webhook
// deliveries are drained before the connections close.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.eventEmitter != nil {
		c.eventEmitter.Wait()
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates a structured logger based on the configured log level.
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

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initHTTPServer assembles the API server with all handlers and middleware.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	handlers, err := c.initHandlers()
	if err != nil {
		return nil, err
	}

	opts, err := c.initServerOptions()
	if err != nil {
		return nil, err
	}

	return http.NewServer(
		db,
		c.config.ServerHost,
		c.config.ServerPort,
		logger,
		handlers,
		opts,
	), nil
}

// initServerOptions wires the cross-cutting middleware around the routes.
func (c *Container) initServerOptions() (http.Options, error) {
	logger := c.Logger()

	tokens, err := c.TokenUseCase()
	if err != nil {
		return http.Options{}, err
	}
	applications, err := c.ApplicationUseCase()
	if err != nil {
		return http.Options{}, err
	}
	roles, err := c.RoleUseCase()
	if err != nil {
		return http.Options{}, err
	}

	opts := http.Options{
		Authentication: tokenHTTP.AuthenticationMiddleware(tokens, applications, logger),
		Authorize: func(resource string) gin.HandlerFunc {
			return identityHTTP.AuthorizationMiddleware(roles, resource, logger)
		},
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
	}

	if c.config.RateLimitTokenEnabled {
		opts.TokenRateLimit = tokenHTTP.RateLimitMiddleware(
			c.config.RateLimitTokenRequestsPerSec,
			c.config.RateLimitTokenBurst,
			logger,
		)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return http.Options{}, err
	}
	if provider != nil {
		opts.Metrics = metrics.HTTPMetricsMiddleware(provider.MeterProvider(), c.config.MetricsNamespace)
	}

	return opts, nil
}
