package usecase

import (
	"context"
	"fmt"
	"net/url"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/authware/authority/internal/event/domain"
	appValidation "github.com/authware/authority/internal/validation"
)

// webhookUseCase implements WebhookUseCase.
type webhookUseCase struct {
	webhookRepo WebhookRepository
}

// NewWebhookUseCase creates a new WebhookUseCase with the provided dependencies.
func NewWebhookUseCase(webhookRepo WebhookRepository) WebhookUseCase {
	return &webhookUseCase{webhookRepo: webhookRepo}
}

// validateWebhookFields checks the shared create/update field constraints.
func validateWebhookFields(name, rawURL string, eventTypes []domain.EventType) error {
	err := validation.Errors{
		"name": validation.Validate(name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		"url": validation.Validate(rawURL,
			validation.Required.Error("url is required"),
		),
		"event_types": validation.Validate(eventTypes,
			validation.Required.Error("at least one event type is required"),
		),
	}.Filter()
	if err != nil {
		return appValidation.WrapValidationError(err)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return appValidation.WrapValidationError(
			validation.NewError("validation_webhook_url", "url must be a valid http(s) URL"),
		)
	}

	for _, eventType := range eventTypes {
		if !eventType.IsValid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidEventType, eventType)
		}
	}
	return nil
}

// Create stores a webhook subscription.
func (w *webhookUseCase) Create(ctx context.Context, input *domain.CreateWebhookInput) (*domain.Webhook, error) {
	if err := validateWebhookFields(input.Name, input.URL, input.EventTypes); err != nil {
		return nil, err
	}

	webhook := &domain.Webhook{
		ID:           uuid.Must(uuid.NewV7()),
		MembershipID: input.MembershipID,
		Name:         input.Name,
		URL:          input.URL,
		EventTypes:   input.EventTypes,
		IsActive:     input.IsActive,
	}

	if err := w.webhookRepo.Create(ctx, webhook); err != nil {
		return nil, err
	}
	return webhook, nil
}

// Update replaces a webhook's mutable fields.
func (w *webhookUseCase) Update(
	ctx context.Context,
	membershipID, webhookID uuid.UUID,
	input *domain.UpdateWebhookInput,
) (*domain.Webhook, error) {
	if err := validateWebhookFields(input.Name, input.URL, input.EventTypes); err != nil {
		return nil, err
	}

	webhook, err := w.webhookRepo.Get(ctx, membershipID, webhookID)
	if err != nil {
		return nil, err
	}

	webhook.Name = input.Name
	webhook.URL = input.URL
	webhook.EventTypes = input.EventTypes
	webhook.IsActive = input.IsActive

	if err := w.webhookRepo.Update(ctx, webhook); err != nil {
		return nil, err
	}
	return webhook, nil
}

// Get retrieves a webhook by id within a membership.
func (w *webhookUseCase) Get(ctx context.Context, membershipID, webhookID uuid.UUID) (*domain.Webhook, error) {
	return w.webhookRepo.Get(ctx, membershipID, webhookID)
}

// List retrieves every webhook of a membership.
func (w *webhookUseCase) List(ctx context.Context, membershipID uuid.UUID) ([]*domain.Webhook, error) {
	return w.webhookRepo.ListByMembership(ctx, membershipID)
}

// Delete removes a webhook subscription.
func (w *webhookUseCase) Delete(ctx context.Context, membershipID, webhookID uuid.UUID) error {
	return w.webhookRepo.Delete(ctx, membershipID, webhookID)
}
