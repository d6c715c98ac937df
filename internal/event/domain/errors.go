package domain

import (
	apperrors "github.com/authware/authority/internal/errors"
)

// Domain errors for audit events and webhooks.
var (
	// ErrEventNotFound indicates the requested event does not exist.
	ErrEventNotFound = apperrors.Wrap(apperrors.ErrNotFound, "event not found")

	// ErrWebhookNotFound indicates the requested webhook does not exist.
	ErrWebhookNotFound = apperrors.Wrap(apperrors.ErrNotFound, "webhook not found")

	// ErrInvalidEventType indicates an unknown event type value.
	ErrInvalidEventType = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid event type")
)
