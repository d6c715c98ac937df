// Package usecase implements audit event recording, listing and webhook
// delivery.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/authware/authority/internal/event/domain"
)

// EventRepository defines persistence operations for audit events.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	List(ctx context.Context, filter *domain.EventFilter, offset, limit int) ([]*domain.Event, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// WebhookRepository defines persistence operations for webhook subscriptions.
type WebhookRepository interface {
	Create(ctx context.Context, webhook *domain.Webhook) error
	Update(ctx context.Context, webhook *domain.Webhook) error
	Get(ctx context.Context, membershipID, webhookID uuid.UUID) (*domain.Webhook, error)
	ListByMembership(ctx context.Context, membershipID uuid.UUID) ([]*domain.Webhook, error)
	Delete(ctx context.Context, membershipID, webhookID uuid.UUID) error
}

// Dispatcher delivers an event to its subscribed webhooks.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *domain.Event)
}

// EventUseCase defines read and maintenance operations over the event store.
type EventUseCase interface {
	// List retrieves events matching the filter, newest first.
	List(ctx context.Context, filter *domain.EventFilter, offset, limit int) ([]*domain.Event, error)

	// DeleteExpired removes events older than the configured retention window
	// and returns how many were deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}

// WebhookUseCase defines business logic for webhook subscription management.
type WebhookUseCase interface {
	Create(ctx context.Context, input *domain.CreateWebhookInput) (*domain.Webhook, error)
	Update(ctx context.Context, membershipID, webhookID uuid.UUID, input *domain.UpdateWebhookInput) (*domain.Webhook, error)
	Get(ctx context.Context, membershipID, webhookID uuid.UUID) (*domain.Webhook, error)
	List(ctx context.Context, membershipID uuid.UUID) ([]*domain.Webhook, error)
	Delete(ctx context.Context, membershipID, webhookID uuid.UUID) error
}
