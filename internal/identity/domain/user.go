package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a human principal. A user belongs to exactly one membership and
// references a role by name (weak reference, no cascading ownership).
type User struct {
	ID           uuid.UUID
	MembershipID uuid.UUID
	Username     string
	Email        string
	FirstName    string
	LastName     string
	// PasswordHash is the stored credential hash (argon2id via go-pwdhash,
	// with bcrypt accepted for hashes imported from legacy systems).
	PasswordHash string
	// Role is the name of the role consulted for authorization decisions.
	Role      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateUserInput contains the mutable user fields. An empty Password leaves
// the stored credential unchanged.
type UpdateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      string
	IsActive  bool
}

// CreateUserInput contains the parameters for provisioning a new user.
// The password is hashed by the use case before persistence.
type CreateUserInput struct {
	MembershipID uuid.UUID
	Username     string
	Email        string
	FirstName    string
	LastName     string
	Password     string
	Role         string
	IsActive     bool
}
