package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/authware/authority/internal/errors"
	"github.com/authware/authority/internal/event/http/dto"
	eventUseCase "github.com/authware/authority/internal/event/usecase"
	"github.com/authware/authority/internal/httputil"
	customValidation "github.com/authware/authority/internal/validation"
)

// WebhookHandler handles HTTP requests for webhook subscription management.
type WebhookHandler struct {
	webhookUseCase eventUseCase.WebhookUseCase
	logger         *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with required dependencies.
func NewWebhookHandler(webhookUseCase eventUseCase.WebhookUseCase, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookUseCase: webhookUseCase,
		logger:         logger,
	}
}

// CreateWebhookHandler creates a webhook subscription in the caller's membership.
// POST /v1/webhooks - Requires authentication and webhooks:create permission.
func (h *WebhookHandler) CreateWebhookHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	var req dto.CreateWebhookRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := req.ToInput()
	input.MembershipID = membershipID

	webhook, err := h.webhookUseCase.Create(c.Request.Context(), input)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.NewWebhookResponse(webhook))
}

// GetWebhookHandler returns a single webhook subscription.
// GET /v1/webhooks/:id - Requires authentication and webhooks:read permission.
func (h *WebhookHandler) GetWebhookHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	webhookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationError(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid webhook id"), h.logger)
		return
	}

	webhook, err := h.webhookUseCase.Get(c.Request.Context(), membershipID, webhookID)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewWebhookResponse(webhook))
}

// ListWebhooksHandler lists the membership's webhook subscriptions.
// GET /v1/webhooks - Requires authentication and webhooks:read permission.
func (h *WebhookHandler) ListWebhooksHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	webhooks, err := h.webhookUseCase.List(c.Request.Context(), membershipID)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewWebhookListResponse(webhooks))
}

// UpdateWebhookHandler modifies a webhook subscription.
// PUT /v1/webhooks/:id - Requires authentication and webhooks:update permission.
func (h *WebhookHandler) UpdateWebhookHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	webhookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationError(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid webhook id"), h.logger)
		return
	}

	var req dto.UpdateWebhookRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	webhook, err := h.webhookUseCase.Update(c.Request.Context(), membershipID, webhookID, req.ToInput())
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewWebhookResponse(webhook))
}

// DeleteWebhookHandler removes a webhook subscription.
// DELETE /v1/webhooks/:id - Requires authentication and webhooks:delete permission.
func (h *WebhookHandler) DeleteWebhookHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	webhookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationError(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid webhook id"), h.logger)
		return
	}

	if err := h.webhookUseCase.Delete(c.Request.Context(), membershipID, webhookID); err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
