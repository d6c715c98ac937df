package dto

import (
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/authware/authority/internal/identity/domain"
)

// MembershipResponse is the public view of a membership. The signing key is
// never exposed through read endpoints.
type MembershipResponse struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Slug                  string    `json:"slug"`
	ExpiresIn             int64     `json:"expires_in"`
	RefreshTokenExpiresIn int64     `json:"refresh_token_expires_in"`
	HashAlgorithm         string    `json:"hash_algorithm"`
	DefaultEncoding       string    `json:"default_encoding"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// NewMembershipResponse builds a MembershipResponse from a domain membership.
func NewMembershipResponse(m *identityDomain.Membership) MembershipResponse {
	return MembershipResponse{
		ID:                    m.ID,
		Name:                  m.Name,
		Slug:                  m.Slug,
		ExpiresIn:             m.ExpiresIn,
		RefreshTokenExpiresIn: m.RefreshTokenExpiresIn,
		HashAlgorithm:         string(m.HashAlgorithm),
		DefaultEncoding:       string(m.DefaultEncoding),
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// NewMembershipListResponse builds responses for a membership list.
func NewMembershipListResponse(memberships []*identityDomain.Membership) []MembershipResponse {
	out := make([]MembershipResponse, len(memberships))
	for i, m := range memberships {
		out[i] = NewMembershipResponse(m)
	}
	return out
}

// CreateMembershipResponse extends MembershipResponse with the generated
// signing key. SecretKey is present only when the server generated the key,
// and only in this response; it is never retrievable again.
type CreateMembershipResponse struct {
	MembershipResponse
	SecretKey string `json:"secret_key,omitempty"`
}

// UserResponse is the public view of a user. The credential hash is never
// exposed.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse builds a UserResponse from a domain user.
func NewUserResponse(u *identityDomain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserListResponse builds responses for a user list.
func NewUserListResponse(users []*identityDomain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = NewUserResponse(u)
	}
	return out
}

// ApplicationResponse is the public view of an application. The hashed secret
// is never exposed.
type ApplicationResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewApplicationResponse builds an ApplicationResponse from a domain application.
func NewApplicationResponse(a *identityDomain.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:        a.ID,
		Name:      a.Name,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// NewApplicationListResponse builds responses for an application list.
func NewApplicationListResponse(applications []*identityDomain.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, len(applications))
	for i, a := range applications {
		out[i] = NewApplicationResponse(a)
	}
	return out
}

// CreateApplicationResponse extends ApplicationResponse with the one-time
// plain secret.
type CreateApplicationResponse struct {
	ApplicationResponse
	Secret string `json:"secret"`
}

// RoleResponse is the public view of a role.
type RoleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	Forbidden   []string  `json:"forbidden"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRoleResponse builds a RoleResponse from a domain role.
func NewRoleResponse(r *identityDomain.Role) RoleResponse {
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
		Forbidden:   r.Forbidden,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// NewRoleListResponse builds responses for a role list.
func NewRoleListResponse(roles []*identityDomain.Role) []RoleResponse {
	out := make([]RoleResponse, len(roles))
	for i, r := range roles {
		out[i] = NewRoleResponse(r)
	}
	return out
}
