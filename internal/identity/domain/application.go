package domain

import (
	"time"

	"github.com/google/uuid"
)

// Application is a machine principal authenticating with its id and secret.
// Like users, an application belongs to exactly one membership and references
// a role by name.
type Application struct {
	ID           uuid.UUID
	MembershipID uuid.UUID
	Name         string
	// Secret is the hashed application secret (never the plain text).
	Secret    string
	Role      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateApplicationInput contains the parameters for registering an application.
// The secret is generated by the use case and cannot be chosen by the caller.
type CreateApplicationInput struct {
	MembershipID uuid.UUID
	Name         string
	Role         string
	IsActive     bool
}

// CreateApplicationOutput carries the one-time plain secret back to the caller.
// The plain secret is never retrievable again after creation.
type CreateApplicationOutput struct {
	Application *Application
	PlainSecret string
}
