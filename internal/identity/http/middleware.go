// Package http provides HTTP handlers and middleware for identity management:
// memberships, users, applications and roles.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/authware/authority/internal/errors"
	"github.com/authware/authority/internal/httputil"
	identityDomain "github.com/authware/authority/internal/identity/domain"
	identityUseCase "github.com/authware/authority/internal/identity/usecase"
	"github.com/authware/authority/internal/rbac"
)

// AuthorizationMiddleware enforces role-based access for identity resources.
//
// It must run after the authentication middleware: the principal is read from
// the request context and its role is resolved inside the principal's own
// membership. The requested permission tuple is built from the request:
//
//	subject  = the principal id
//	resource = the resource name bound at route registration
//	action   = create/read/update/delete, derived from the HTTP method
//	object   = the id path parameter, or "*" for collection routes
//
// Authorization is deny-by-default: the principal's role must carry a
// matching permission and no matching forbidden rule.
func AuthorizationMiddleware(
	roles identityUseCase.RoleUseCase,
	resource string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := identityDomain.PrincipalFromContext(c.Request.Context())
		if !ok || principal == nil {
			logger.Debug("authorization failed: no authenticated principal in context")
			httputil.HandleError(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		requested := rbac.New(
			rbac.Segment(principal.ID.String()),
			rbac.Segment(resource),
			rbac.Segment(actionForMethod(c.Request.Method)),
			objectSegment(c),
		)

		allowed, err := roles.CheckPermission(c.Request.Context(), principal.MembershipID, principal.Role, requested)
		if err != nil {
			// A principal whose role vanished has no permissions.
			if apperrors.Is(err, apperrors.ErrNotFound) {
				httputil.HandleError(c, apperrors.ErrForbidden, logger)
				c.Abort()
				return
			}
			httputil.HandleError(c, err, logger)
			c.Abort()
			return
		}

		if !allowed {
			logger.Debug("authorization failed: insufficient permissions",
				slog.String("principal_id", principal.ID.String()),
				slog.String("role", principal.Role),
				slog.String("permission", requested.String()))
			httputil.HandleError(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

// actionForMethod maps HTTP methods onto permission actions.
func actionForMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// objectSegment returns the id path parameter as the object segment, or the
// wildcard for collection routes.
func objectSegment(c *gin.Context) rbac.Segment {
	if id := c.Param("id"); id != "" {
		return rbac.Segment(id)
	}
	return rbac.Segment(rbac.Wildcard)
}
