package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/authware/authority/internal/errors"
	"github.com/authware/authority/internal/httputil"
	identityDomain "github.com/authware/authority/internal/identity/domain"
	"github.com/authware/authority/internal/identity/http/dto"
	identityUseCase "github.com/authware/authority/internal/identity/usecase"
	customValidation "github.com/authware/authority/internal/validation"
)

// RoleHandler handles HTTP requests for role management.
type RoleHandler struct {
	roleUseCase identityUseCase.RoleUseCase
	logger      *slog.Logger
}

// NewRoleHandler creates a new role handler with required dependencies.
func NewRoleHandler(roleUseCase identityUseCase.RoleUseCase, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{
		roleUseCase: roleUseCase,
		logger:      logger,
	}
}

// CreateRoleHandler creates a role in the caller's membership.
// POST /v1/roles - Requires authentication and roles:create permission.
func (h *RoleHandler) CreateRoleHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	var req dto.CreateRoleRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roleUseCase.Create(c.Request.Context(), &identityDomain.CreateRoleInput{
		MembershipID: membershipID,
		Name:         req.Name,
		Description:  req.Description,
		Permissions:  req.Permissions,
		Forbidden:    req.Forbidden,
	})
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.NewRoleResponse(role))
}

// GetRoleHandler returns a single role.
// GET /v1/roles/:id - Requires authentication and roles:read permission.
func (h *RoleHandler) GetRoleHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationError(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid role id"), h.logger)
		return
	}

	role, err := h.roleUseCase.Get(c.Request.Context(), membershipID, roleID)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewRoleResponse(role))
}

// ListRolesHandler lists roles with pagination.
// GET /v1/roles - Requires authentication and roles:read permission.
func (h *RoleHandler) ListRolesHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	roles, err := h.roleUseCase.List(c.Request.Context(), membershipID, offset, limit)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewRoleListResponse(roles))
}

// UpdateRoleHandler replaces a role's permission lists and description.
// PUT /v1/roles/:id - Requires authentication and roles:update permission.
func (h *RoleHandler) UpdateRoleHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationError(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid role id"), h.logger)
		return
	}

	var req dto.UpdateRoleRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roleUseCase.Update(c.Request.Context(), membershipID, roleID, &identityDomain.UpdateRoleInput{
		Description: req.Description,
		Permissions: req.Permissions,
		Forbidden:   req.Forbidden,
	})
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewRoleResponse(role))
}

// DeleteRoleHandler removes a role. The admin role cannot be deleted.
// DELETE /v1/roles/:id - Requires authentication and roles:delete permission.
func (h *RoleHandler) DeleteRoleHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationError(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid role id"), h.logger)
		return
	}

	if err := h.roleUseCase.Delete(c.Request.Context(), membershipID, roleID); err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
