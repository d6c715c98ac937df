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

// UserHandler handles HTTP requests for user management. All routes operate
// within the authenticated principal's membership.
type UserHandler struct {
	userUseCase identityUseCase.UserUseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(userUseCase identityUseCase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// CreateUserHandler provisions a user in the caller's membership.
// POST /v1/users - Requires authentication and users:create permission.
func (h *UserHandler) CreateUserHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	var req dto.CreateUserRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.Create(c.Request.Context(), &identityDomain.CreateUserInput{
		MembershipID: membershipID,
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Password:     req.Password,
		Role:         req.Role,
		IsActive:     req.IsActive,
	})
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// GetUserHandler returns a single user.
// GET /v1/users/:id - Requires authentication and users:read permission.
func (h *UserHandler) GetUserHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationError(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid user id"), h.logger)
		return
	}

	user, err := h.userUseCase.Get(c.Request.Context(), membershipID, userID)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// ListUsersHandler lists users with pagination.
// GET /v1/users - Requires authentication and users:read permission.
func (h *UserHandler) ListUsersHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	users, err := h.userUseCase.List(c.Request.Context(), membershipID, offset, limit)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserListResponse(users))
}

// UpdateUserHandler modifies a user.
// PUT /v1/users/:id - Requires authentication and users:update permission.
func (h *UserHandler) UpdateUserHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationError(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid user id"), h.logger)
		return
	}

	var req dto.UpdateUserRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.Update(c.Request.Context(), membershipID, userID, &identityDomain.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      req.Role,
		IsActive:  req.IsActive,
	})
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// DeleteUserHandler removes a user.
// DELETE /v1/users/:id - Requires authentication and users:delete permission.
func (h *UserHandler) DeleteUserHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationError(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid user id"), h.logger)
		return
	}

	if err := h.userUseCase.Delete(c.Request.Context(), membershipID, userID); err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// membershipFromContext reads the authenticated principal's membership id.
// Writes a 401 response and returns false when no principal is present.
func membershipFromContext(c *gin.Context, logger *slog.Logger) (uuid.UUID, bool) {
	principal, ok := identityDomain.PrincipalFromContext(c.Request.Context())
	if !ok || principal == nil {
		httputil.HandleError(c, apperrors.ErrUnauthorized, logger)
		return uuid.Nil, false
	}
	return principal.MembershipID, true
}
