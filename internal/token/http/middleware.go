package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/authware/authority/internal/errors"
	"github.com/authware/authority/internal/httputil"
	identityDomain "github.com/authware/authority/internal/identity/domain"
	identityUseCase "github.com/authware/authority/internal/identity/usecase"
	tokenUseCase "github.com/authware/authority/internal/token/usecase"
)

// AuthenticationMiddleware authenticates requests and stores the resolved
// principal in the request context.
//
// Two schemes are accepted:
//   - "Bearer <token>": an access token, resolved through TokenUseCase.WhoAmI.
//   - Basic auth: application credentials, where the username is the
//     membership id and application id joined by a slash and the password is
//     the application secret.
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Invalid/expired/revoked token → 401 Unauthorized
//   - Inactive principal → 401 Unauthorized
//   - Revocation store outage → 503 Service Unavailable
func AuthenticationMiddleware(
	tokens tokenUseCase.TokenUseCase,
	applications identityUseCase.ApplicationUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleError(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) >= len(bearerPrefix) &&
			strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			authenticateBearer(c, tokens, authHeader[len(bearerPrefix):], logger)
			return
		}

		if membershipID, applicationID, secret, ok := parseBasicAuth(c); ok {
			authenticateApplication(c, applications, membershipID, applicationID, secret, logger)
			return
		}

		logger.Debug("authentication failed: malformed authorization header")
		httputil.HandleError(c, apperrors.ErrUnauthorized, logger)
		c.Abort()
	}
}

// authenticateBearer resolves an access token to its principal.
func authenticateBearer(
	c *gin.Context,
	tokens tokenUseCase.TokenUseCase,
	rawToken string,
	logger *slog.Logger,
) {
	if rawToken == "" {
		logger.Debug("authentication failed: empty bearer token")
		httputil.HandleError(c, apperrors.ErrUnauthorized, logger)
		c.Abort()
		return
	}

	principal, err := tokens.WhoAmI(c.Request.Context(), rawToken)
	if err != nil {
		logger.Debug("authentication failed", slog.String("error", err.Error()))
		httputil.HandleError(c, err, logger)
		c.Abort()
		return
	}

	ctx := identityDomain.WithPrincipal(c.Request.Context(), principal)
	c.Request = c.Request.WithContext(ctx)

	logger.Debug("authentication successful",
		slog.String("principal_id", principal.ID.String()),
		slog.String("kind", string(principal.Kind)))

	c.Next()
}

// authenticateApplication verifies basic-auth application credentials.
func authenticateApplication(
	c *gin.Context,
	applications identityUseCase.ApplicationUseCase,
	membershipID, applicationID uuid.UUID,
	secret string,
	logger *slog.Logger,
) {
	application, err := applications.Authenticate(c.Request.Context(), membershipID, applicationID, secret)
	if err != nil {
		logger.Debug("application authentication failed", slog.String("error", err.Error()))
		httputil.HandleError(c, err, logger)
		c.Abort()
		return
	}

	principal := identityDomain.ApplicationPrincipal(application)
	ctx := identityDomain.WithPrincipal(c.Request.Context(), principal)
	c.Request = c.Request.WithContext(ctx)

	logger.Debug("authentication successful",
		slog.String("principal_id", principal.ID.String()),
		slog.String("kind", string(principal.Kind)))

	c.Next()
}

// parseBasicAuth extracts application credentials from basic auth. The
// username carries "membership-id/application-id" so both scopes travel in
// the standard header; a colon would collide with the scheme's own separator.
func parseBasicAuth(c *gin.Context) (membershipID, applicationID uuid.UUID, secret string, ok bool) {
	username, password, hasAuth := c.Request.BasicAuth()
	if !hasAuth {
		return uuid.Nil, uuid.Nil, "", false
	}

	parts := strings.SplitN(username, "/", 2)
	if len(parts) != 2 {
		return uuid.Nil, uuid.Nil, "", false
	}

	membershipID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, uuid.Nil, "", false
	}
	applicationID, err = uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, uuid.Nil, "", false
	}

	return membershipID, applicationID, password, true
}
