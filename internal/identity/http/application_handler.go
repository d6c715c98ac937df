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

// ApplicationHandler handles HTTP requests for machine principals.
type ApplicationHandler struct {
	applicationUseCase identityUseCase.ApplicationUseCase
	logger             *slog.Logger
}

// NewApplicationHandler creates a new application handler with required dependencies.
func NewApplicationHandler(
	applicationUseCase identityUseCase.ApplicationUseCase,
	logger *slog.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		applicationUseCase: applicationUseCase,
		logger:             logger,
	}
}

// CreateApplicationHandler registers an application in the caller's membership.
// POST /v1/applications - Requires authentication and applications:create permission.
// The generated secret appears once in the response body and is never
// retrievable again.
func (h *ApplicationHandler) CreateApplicationHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	var req dto.CreateApplicationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.applicationUseCase.Create(c.Request.Context(), &identityDomain.CreateApplicationInput{
		MembershipID: membershipID,
		Name:         req.Name,
		Role:         req.Role,
		IsActive:     req.IsActive,
	})
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateApplicationResponse{
		ApplicationResponse: dto.NewApplicationResponse(output.Application),
		Secret:              output.PlainSecret,
	})
}

// GetApplicationHandler returns a single application.
// GET /v1/applications/:id - Requires authentication and applications:read permission.
func (h *ApplicationHandler) GetApplicationHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationError(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid application id"), h.logger)
		return
	}

	application, err := h.applicationUseCase.Get(c.Request.Context(), membershipID, applicationID)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewApplicationResponse(application))
}

// ListApplicationsHandler lists applications with pagination.
// GET /v1/applications - Requires authentication and applications:read permission.
func (h *ApplicationHandler) ListApplicationsHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	applications, err := h.applicationUseCase.List(c.Request.Context(), membershipID, offset, limit)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewApplicationListResponse(applications))
}

// DeleteApplicationHandler removes an application.
// DELETE /v1/applications/:id - Requires authentication and applications:delete permission.
func (h *ApplicationHandler) DeleteApplicationHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationError(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid application id"), h.logger)
		return
	}

	if err := h.applicationUseCase.Delete(c.Request.Context(), membershipID, applicationID); err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
