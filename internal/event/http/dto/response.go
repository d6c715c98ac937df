package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	eventDomain "github.com/authware/authority/internal/event/domain"
)

// EventResponse is the public view of an audit event.
type EventResponse struct {
	ID           uuid.UUID       `json:"id"`
	EventType    string          `json:"event_type"`
	MembershipID uuid.UUID       `json:"membership_id"`
	UtilizerID   *uuid.UUID      `json:"utilizer_id,omitempty"`
	Document     json.RawMessage `json:"document,omitempty"`
	Prior        json.RawMessage `json:"prior,omitempty"`
	EventTime    time.Time       `json:"event_time"`
}

// NewEventResponse builds an EventResponse from a domain event.
func NewEventResponse(e *eventDomain.Event) EventResponse {
	resp := EventResponse{
		ID:           e.ID,
		EventType:    string(e.EventType),
		MembershipID: e.MembershipID,
		Document:     e.Document,
		Prior:        e.Prior,
		EventTime:    e.EventTime,
	}
	if e.UtilizerID != uuid.Nil {
		utilizerID := e.UtilizerID
		resp.UtilizerID = &utilizerID
	}
	return resp
}

// NewEventListResponse builds responses for an event list.
func NewEventListResponse(events []*eventDomain.Event) []EventResponse {
	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = NewEventResponse(e)
	}
	return out
}

// WebhookResponse is the public view of a webhook subscription.
type WebhookResponse struct {
	ID           uuid.UUID `json:"id"`
	MembershipID uuid.UUID `json:"membership_id"`
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	EventTypes   []string  `json:"event_types"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewWebhookResponse builds a WebhookResponse from a domain webhook.
func NewWebhookResponse(w *eventDomain.Webhook) WebhookResponse {
	eventTypes := make([]string, len(w.EventTypes))
	for i, t := range w.EventTypes {
		eventTypes[i] = string(t)
	}
	return WebhookResponse{
		ID:           w.ID,
		MembershipID: w.MembershipID,
		Name:         w.Name,
		URL:          w.URL,
		EventTypes:   eventTypes,
		IsActive:     w.IsActive,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

// NewWebhookListResponse builds responses for a webhook list.
func NewWebhookListResponse(webhooks []*eventDomain.Webhook) []WebhookResponse {
	out := make([]WebhookResponse, len(webhooks))
	for i, w := range webhooks {
		out[i] = NewWebhookResponse(w)
	}
	return out
}
