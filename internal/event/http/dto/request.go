// Package dto provides data transfer objects for the event and webhook HTTP
// endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	eventDomain "github.com/authware/authority/internal/event/domain"
	customValidation "github.com/authware/authority/internal/validation"
)

// CreateWebhookRequest contains the parameters for creating a webhook
// subscription.
type CreateWebhookRequest struct {
	Name       string   `json:"name"`
	URL        string   `json:"url"`
	EventTypes []string `json:"event_types"`
	IsActive   bool     `json:"is_active"`
}

// Validate checks if the create webhook request is valid. URL and event type
// semantics are validated in the use case.
func (r *CreateWebhookRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.URL,
			validation.Required,
		),
		validation.Field(&r.EventTypes,
			validation.Required,
		),
	)
}

// UpdateWebhookRequest contains the mutable webhook fields.
type UpdateWebhookRequest struct {
	Name       string   `json:"name"`
	URL        string   `json:"url"`
	EventTypes []string `json:"event_types"`
	IsActive   bool     `json:"is_active"`
}

// Validate checks if the update webhook request is valid.
func (r *UpdateWebhookRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.URL,
			validation.Required,
		),
		validation.Field(&r.EventTypes,
			validation.Required,
		),
	)
}

// toEventTypes converts raw strings to domain event types.
func toEventTypes(raw []string) []eventDomain.EventType {
	out := make([]eventDomain.EventType, len(raw))
	for i, s := range raw {
		out[i] = eventDomain.EventType(s)
	}
	return out
}

// ToInput converts the request to a domain input.
func (r *CreateWebhookRequest) ToInput() *eventDomain.CreateWebhookInput {
	return &eventDomain.CreateWebhookInput{
		Name:       r.Name,
		URL:        r.URL,
		EventTypes: toEventTypes(r.EventTypes),
		IsActive:   r.IsActive,
	}
}

// ToInput converts the request to a domain input.
func (r *UpdateWebhookRequest) ToInput() *eventDomain.UpdateWebhookInput {
	return &eventDomain.UpdateWebhookInput{
		Name:       r.Name,
		URL:        r.URL,
		EventTypes: toEventTypes(r.EventTypes),
		IsActive:   r.IsActive,
	}
}
