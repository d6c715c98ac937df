package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/authware/authority/internal/rbac"
)

// Role groups permission expressions inside a membership. Permissions and
// Forbidden are evaluated as sets; ordering never affects the outcome.
type Role struct {
	ID           uuid.UUID
	MembershipID uuid.UUID
	Name         string
	Description  string
	// Permissions are allow rules in "subject.resource.action.object" form.
	Permissions []string
	// Forbidden are deny rules that override any matching permission.
	Forbidden []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateRoleInput contains the parameters for creating a role.
type CreateRoleInput struct {
	MembershipID uuid.UUID
	Name         string
	Description  string
	Permissions  []string
	Forbidden    []string
}

// UpdateRoleInput contains the mutable role fields. The name is immutable
// because users and applications reference roles by name.
type UpdateRoleInput struct {
	Description string
	Permissions []string
	Forbidden   []string
}

// HasPermission decides whether the role grants the requested expression.
// Safe for concurrent use against an immutable role snapshot.
func (r *Role) HasPermission(requested rbac.Rbac) bool {
	return rbac.HasPermission(r.Permissions, r.Forbidden, requested)
}
