package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/authware/authority/internal/errors"
	"github.com/authware/authority/internal/httputil"
	identityDomain "github.com/authware/authority/internal/identity/domain"
	"github.com/authware/authority/internal/identity/http/dto"
	identityUseCase "github.com/authware/authority/internal/identity/usecase"
	customValidation "github.com/authware/authority/internal/validation"
)

// MembershipHandler handles HTTP requests for tenant management.
type MembershipHandler struct {
	membershipUseCase identityUseCase.MembershipUseCase
	logger            *slog.Logger
}

// NewMembershipHandler creates a new membership handler with required dependencies.
func NewMembershipHandler(
	membershipUseCase identityUseCase.MembershipUseCase,
	logger *slog.Logger,
) *MembershipHandler {
	return &MembershipHandler{
		membershipUseCase: membershipUseCase,
		logger:            logger,
	}
}

// CreateMembershipHandler provisions a new tenant.
// POST /v1/memberships - Requires authentication and memberships:create permission.
// Returns 201 Created. When the request omits a signing key the generated key
// appears once in the response body and is never retrievable again.
func (h *MembershipHandler) CreateMembershipHandler(c *gin.Context) {
	var req dto.CreateMembershipRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.membershipUseCase.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateMembershipResponse{
		MembershipResponse: dto.NewMembershipResponse(output.Membership),
		SecretKey:          output.PlainSecretKey,
	})
}

// GetMembershipHandler returns the authenticated principal's membership.
// GET /v1/membership - Requires authentication.
func (h *MembershipHandler) GetMembershipHandler(c *gin.Context) {
	principal, ok := identityDomain.PrincipalFromContext(c.Request.Context())
	if !ok {
		httputil.HandleError(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	membership, err := h.membershipUseCase.Get(c.Request.Context(), principal.MembershipID)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewMembershipResponse(membership))
}

// UpdateMembershipHandler modifies the authenticated principal's membership policy.
// PUT /v1/membership - Requires authentication and memberships:update permission.
// Rotating the secret key invalidates every outstanding token of the tenant.
func (h *MembershipHandler) UpdateMembershipHandler(c *gin.Context) {
	principal, ok := identityDomain.PrincipalFromContext(c.Request.Context())
	if !ok {
		httputil.HandleError(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.UpdateMembershipRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	membership, err := h.membershipUseCase.Update(c.Request.Context(), principal.MembershipID, req.ToInput())
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewMembershipResponse(membership))
}

// ListMembershipsHandler lists tenants with pagination.
// GET /v1/memberships - Requires authentication and memberships:read permission.
func (h *MembershipHandler) ListMembershipsHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	memberships, err := h.membershipUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewMembershipListResponse(memberships))
}
