package domain

// EventType identifies the action an audit event records.
type EventType string

// Audit event types. Token lifecycle events are emitted by the token use
// case; the remaining types are emitted by the identity CRUD use cases.
const (
	EventTokenGenerated EventType = "token_generated"
	EventTokenRefreshed EventType = "token_refreshed"
	EventTokenRevoked   EventType = "token_revoked"

	EventMembershipCreated EventType = "membership_created"
	EventMembershipUpdated EventType = "membership_updated"

	EventUserCreated EventType = "user_created"
	EventUserUpdated EventType = "user_updated"
	EventUserDeleted EventType = "user_deleted"

	EventApplicationCreated EventType = "application_created"
	EventApplicationDeleted EventType = "application_deleted"

	EventRoleCreated EventType = "role_created"
	EventRoleUpdated EventType = "role_updated"
	EventRoleDeleted EventType = "role_deleted"
)

// IsValid checks if the event type is a known value.
func (e EventType) IsValid() bool {
	switch e {
	case EventTokenGenerated, EventTokenRefreshed, EventTokenRevoked,
		EventMembershipCreated, EventMembershipUpdated,
		EventUserCreated, EventUserUpdated, EventUserDeleted,
		EventApplicationCreated, EventApplicationDeleted,
		EventRoleCreated, EventRoleUpdated, EventRoleDeleted:
		return true
	default:
		return false
	}
}
