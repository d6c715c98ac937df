// Package http provides HTTP handlers for the audit event log and webhook
// subscriptions. All routes operate within the authenticated principal's
// membership.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/authware/authority/internal/errors"
	eventDomain "github.com/authware/authority/internal/event/domain"
	"github.com/authware/authority/internal/event/http/dto"
	eventUseCase "github.com/authware/authority/internal/event/usecase"
	"github.com/authware/authority/internal/httputil"
	identityDomain "github.com/authware/authority/internal/identity/domain"
)

// EventHandler handles HTTP requests for the audit event log.
type EventHandler struct {
	eventUseCase eventUseCase.EventUseCase
	logger       *slog.Logger
}

// NewEventHandler creates a new event handler with required dependencies.
func NewEventHandler(eventUseCase eventUseCase.EventUseCase, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		eventUseCase: eventUseCase,
		logger:       logger,
	}
}

// ListEventsHandler lists audit events, newest first. The optional event_type
// and utilizer_id query parameters narrow the listing.
// GET /v1/events - Requires authentication and events:read permission.
func (h *EventHandler) ListEventsHandler(c *gin.Context) {
	membershipID, ok := membershipFromContext(c, h.logger)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	filter := &eventDomain.EventFilter{MembershipID: membershipID}

	if raw := c.Query("event_type"); raw != "" {
		eventType := eventDomain.EventType(raw)
		if !eventType.IsValid() {
			httputil.HandleValidationError(c, eventDomain.ErrInvalidEventType, h.logger)
			return
		}
		filter.EventType = eventType
	}

	if raw := c.Query("utilizer_id"); raw != "" {
		utilizerID, err := uuid.Parse(raw)
		if err != nil {
			httputil.HandleValidationError(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid utilizer id"), h.logger)
			return
		}
		filter.UtilizerID = utilizerID
	}

	events, err := h.eventUseCase.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewEventListResponse(events))
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
