package domain

import (
	"github.com/google/uuid"
)

// Principal is the tagged variant over the two token subject kinds. Users and
// applications only share an id, a membership and a role, so a kind plus the
// optional payloads avoids any inheritance-style modelling.
type Principal struct {
	Kind         PrincipalKind `json:"kind"`
	ID           uuid.UUID     `json:"id"`
	MembershipID uuid.UUID     `json:"membership_id"`
	Role         string        `json:"role"`

	// Exactly one of the following is set, matching Kind.
	User        *User        `json:"user,omitempty"`
	Application *Application `json:"application,omitempty"`
}

// UserPrincipal wraps a user as a token subject.
func UserPrincipal(u *User) *Principal {
	return &Principal{
		Kind:         PrincipalUser,
		ID:           u.ID,
		MembershipID: u.MembershipID,
		Role:         u.Role,
		User:         u,
	}
}

// ApplicationPrincipal wraps an application as a token subject.
func ApplicationPrincipal(a *Application) *Principal {
	return &Principal{
		Kind:         PrincipalApplication,
		ID:           a.ID,
		MembershipID: a.MembershipID,
		Role:         a.Role,
		Application:  a,
	}
}
