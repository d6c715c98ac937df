// Package domain defines the audit event model. Events record who did what
// inside a membership, with before/after snapshots of the affected document.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is an immutable audit record. Document holds the state after the
// action, Prior the state before it; both are nil when the action has no
// document (e.g. token lifecycle events carry only metadata in Document).
type Event struct {
	ID           uuid.UUID
	EventType    EventType
	MembershipID uuid.UUID
	// UtilizerID is the principal that triggered the action.
	UtilizerID uuid.UUID
	Document   json.RawMessage
	Prior      json.RawMessage
	EventTime  time.Time
}

// Validate checks event invariants before persistence.
func (e *Event) Validate() error {
	if !e.EventType.IsValid() {
		return ErrInvalidEventType
	}
	return nil
}

// EventFilter narrows event listing. Zero values mean "any".
type EventFilter struct {
	MembershipID uuid.UUID
	EventType    EventType
	UtilizerID   uuid.UUID
}

// Webhook is a membership-scoped subscription: events whose type appears in
// EventTypes are delivered to URL as JSON POST requests.
type Webhook struct {
	ID           uuid.UUID
	MembershipID uuid.UUID
	Name         string
	URL          string
	EventTypes   []EventType
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateWebhookInput contains the parameters for creating a webhook subscription.
type CreateWebhookInput struct {
	MembershipID uuid.UUID
	Name         string
	URL          string
	EventTypes   []EventType
	IsActive     bool
}

// UpdateWebhookInput contains the mutable webhook fields.
type UpdateWebhookInput struct {
	Name       string
	URL        string
	EventTypes []EventType
	IsActive   bool
}

// Subscribed reports whether the webhook wants events of the given type.
func (w *Webhook) Subscribed(eventType EventType) bool {
	if !w.IsActive {
		return false
	}
	for _, t := range w.EventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}
