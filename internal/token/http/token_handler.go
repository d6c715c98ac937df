// Package http provides HTTP handlers and middleware for token lifecycle
// operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authware/authority/internal/httputil"
	identityDomain "github.com/authware/authority/internal/identity/domain"
	tokenDomain "github.com/authware/authority/internal/token/domain"
	"github.com/authware/authority/internal/token/http/dto"
	tokenUseCase "github.com/authware/authority/internal/token/usecase"
	customValidation "github.com/authware/authority/internal/validation"
)

// TokenHandler handles HTTP requests for token lifecycle operations.
type TokenHandler struct {
	tokenUseCase tokenUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(useCase tokenUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: useCase,
		logger:       logger,
	}
}

// GenerateTokenHandler exchanges user credentials for a token pair.
// POST /v1/tokens - No authentication required (this is the authentication endpoint).
// Returns 201 Created with the token pair.
func (h *TokenHandler) GenerateTokenHandler(c *gin.Context) {
	var req dto.GenerateTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := &tokenDomain.GenerateTokenInput{
		MembershipSlug: req.MembershipSlug,
		Username:       req.Username,
		Password:       req.Password,
	}

	pair, err := h.tokenUseCase.Generate(c.Request.Context(), input)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTokenPairResponse(pair))
}

// VerifyTokenHandler checks a token and reports the structured outcome.
// POST /v1/tokens/verify - No authentication required.
// Returns 200 OK whether the token is valid or not; the body carries the
// verdict. Only backend failures produce error statuses.
func (h *TokenHandler) VerifyTokenHandler(c *gin.Context) {
	var req dto.VerifyTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.tokenUseCase.Verify(c.Request.Context(), req.Token)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewVerifyTokenResponse(result))
}

// RefreshTokenHandler rotates a refresh token into a fresh token pair.
// POST /v1/tokens/refresh - No authentication required beyond the refresh token.
// Returns 201 Created with the new pair.
func (h *TokenHandler) RefreshTokenHandler(c *gin.Context) {
	var req dto.RefreshTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pair, err := h.tokenUseCase.Refresh(c.Request.Context(), req.Token, req.RevokeBefore)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTokenPairResponse(pair))
}

// RevokeTokenHandler invalidates a token ahead of its natural expiry.
// POST /v1/tokens/revoke - Requires authentication.
// Returns 200 OK with revoked=true when the token was parseable; revoking is
// idempotent, so re-revoking an already revoked token is still a 200.
func (h *TokenHandler) RevokeTokenHandler(c *gin.Context) {
	var req dto.RevokeTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	revoked, err := h.tokenUseCase.Revoke(c.Request.Context(), req.Token)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RevokeTokenResponse{Revoked: revoked})
}

// WhoAmIHandler resolves the authenticated principal behind the request.
// GET /v1/whoami - Requires authentication.
// Returns 200 OK with the principal stored by the authentication middleware.
func (h *TokenHandler) WhoAmIHandler(c *gin.Context) {
	principal, ok := identityDomain.PrincipalFromContext(c.Request.Context())
	if !ok {
		httputil.HandleError(c, identityDomain.ErrInvalidCredentials, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewPrincipalResponse(principal))
}
