// Package http provides the API server: routing, cross-cutting middleware and
// lifecycle management.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	eventHTTP "github.com/authware/authority/internal/event/http"
	identityHTTP "github.com/authware/authority/internal/identity/http"
	tokenHTTP "github.com/authware/authority/internal/token/http"
)

// Handlers groups the request handlers mounted by the server.
type Handlers struct {
	Token       *tokenHTTP.TokenHandler
	Membership  *identityHTTP.MembershipHandler
	User        *identityHTTP.UserHandler
	Application *identityHTTP.ApplicationHandler
	Role        *identityHTTP.RoleHandler
	Event       *eventHTTP.EventHandler
	Webhook     *eventHTTP.WebhookHandler
}

// Options carries the cross-cutting middleware the server wires around the
// routes. Nil entries disable the corresponding concern.
type Options struct {
	// Authentication resolves the request principal. Required for all
	// routes except the token lifecycle and health endpoints.
	Authentication gin.HandlerFunc

	// Authorize builds the permission guard for a named resource. It runs
	// after Authentication.
	Authorize func(resource string) gin.HandlerFunc

	// TokenRateLimit throttles the unauthenticated token endpoints.
	TokenRateLimit gin.HandlerFunc

	// Metrics records request counts and durations.
	Metrics gin.HandlerFunc

	CORSEnabled      bool
	CORSAllowOrigins string
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates the API server and mounts all routes.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
	handlers Handlers,
	opts Options,
) *Server {
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))

	if opts.Metrics != nil {
		router.Use(opts.Metrics)
	}

	if corsMiddleware := createCORSMiddleware(opts.CORSEnabled, opts.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	s := &Server{
		router: router,
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	s.registerRoutes(handlers, opts)

	return s
}

// registerRoutes mounts health endpoints, the token lifecycle and the
// authenticated management API.
func (s *Server) registerRoutes(handlers Handlers, opts Options) {
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/ready", s.readinessHandler)

	v1 := s.router.Group("/v1")

	// Token lifecycle. Generate/verify/refresh carry their own credentials,
	// so they are rate limited per IP instead of authenticated.
	tokens := v1.Group("/tokens")
	if opts.TokenRateLimit != nil {
		tokens.Use(opts.TokenRateLimit)
	}
	tokens.POST("", handlers.Token.GenerateTokenHandler)
	tokens.POST("/verify", handlers.Token.VerifyTokenHandler)
	tokens.POST("/refresh", handlers.Token.RefreshTokenHandler)
	tokens.POST("/revoke", opts.Authentication, handlers.Token.RevokeTokenHandler)

	authed := v1.Group("")
	authed.Use(opts.Authentication)

	authed.GET("/whoami", handlers.Token.WhoAmIHandler)

	// The caller's own membership.
	authed.GET("/membership", handlers.Membership.GetMembershipHandler)
	authed.PUT("/membership", opts.Authorize("memberships"), handlers.Membership.UpdateMembershipHandler)

	memberships := authed.Group("/memberships", opts.Authorize("memberships"))
	memberships.POST("", handlers.Membership.CreateMembershipHandler)
	memberships.GET("", handlers.Membership.ListMembershipsHandler)

	users := authed.Group("/users", opts.Authorize("users"))
	users.POST("", handlers.User.CreateUserHandler)
	users.GET("", handlers.User.ListUsersHandler)
	users.GET("/:id", handlers.User.GetUserHandler)
	users.PUT("/:id", handlers.User.UpdateUserHandler)
	users.DELETE("/:id", handlers.User.DeleteUserHandler)

	applications := authed.Group("/applications", opts.Authorize("applications"))
	applications.POST("", handlers.Application.CreateApplicationHandler)
	applications.GET("", handlers.Application.ListApplicationsHandler)
	applications.GET("/:id", handlers.Application.GetApplicationHandler)
	applications.DELETE("/:id", handlers.Application.DeleteApplicationHandler)

	roles := authed.Group("/roles", opts.Authorize("roles"))
	roles.POST("", handlers.Role.CreateRoleHandler)
	roles.GET("", handlers.Role.ListRolesHandler)
	roles.GET("/:id", handlers.Role.GetRoleHandler)
	roles.PUT("/:id", handlers.Role.UpdateRoleHandler)
	roles.DELETE("/:id", handlers.Role.DeleteRoleHandler)

	events := authed.Group("/events", opts.Authorize("events"))
	events.GET("", handlers.Event.ListEventsHandler)

	webhooks := authed.Group("/webhooks", opts.Authorize("webhooks"))
	webhooks.POST("", handlers.Webhook.CreateWebhookHandler)
	webhooks.GET("", handlers.Webhook.ListWebhooksHandler)
	webhooks.GET("/:id", handlers.Webhook.GetWebhookHandler)
	webhooks.PUT("/:id", handlers.Webhook.UpdateWebhookHandler)
	webhooks.DELETE("/:id", handlers.Webhook.DeleteWebhookHandler)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can reach its dependencies.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else if err := s.db.PingContext(c.Request.Context()); err != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
