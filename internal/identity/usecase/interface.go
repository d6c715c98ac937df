// Package usecase defines business logic interfaces for identity management:
// memberships, users, applications and roles.
package usecase

import (
	"context"

	"github.com/google/uuid"

	eventDomain "github.com/authware/authority/internal/event/domain"
	"github.com/authware/authority/internal/identity/domain"
	"github.com/authware/authority/internal/rbac"
)

// MembershipRepository defines persistence operations for memberships.
// Implementations must support transaction-aware operations via context propagation.
type MembershipRepository interface {
	// Create stores a new membership. Returns ErrMembershipAlreadyExists on a
	// duplicate slug.
	Create(ctx context.Context, membership *domain.Membership) error

	// Update modifies an existing membership. Returns ErrMembershipNotFound if not found.
	Update(ctx context.Context, membership *domain.Membership) error

	// Get retrieves a membership by id. Returns ErrMembershipNotFound if not found.
	Get(ctx context.Context, membershipID uuid.UUID) (*domain.Membership, error)

	// GetBySlug retrieves a membership by slug. Returns ErrMembershipNotFound if not found.
	GetBySlug(ctx context.Context, slug string) (*domain.Membership, error)

	// List retrieves memberships with pagination, newest first.
	List(ctx context.Context, offset, limit int) ([]*domain.Membership, error)
}

// UserRepository defines persistence operations for users. All operations are
// membership-scoped.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, membershipID, userID uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, membershipID uuid.UUID, username string) (*domain.User, error)
	List(ctx context.Context, membershipID uuid.UUID, offset, limit int) ([]*domain.User, error)
	Delete(ctx context.Context, membershipID, userID uuid.UUID) error
}

// ApplicationRepository defines persistence operations for applications.
type ApplicationRepository interface {
	Create(ctx context.Context, application *domain.Application) error
	Update(ctx context.Context, application *domain.Application) error
	Get(ctx context.Context, membershipID, applicationID uuid.UUID) (*domain.Application, error)
	List(ctx context.Context, membershipID uuid.UUID, offset, limit int) ([]*domain.Application, error)
	Delete(ctx context.Context, membershipID, applicationID uuid.UUID) error
}

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, role *domain.Role) error
	Get(ctx context.Context, membershipID, roleID uuid.UUID) (*domain.Role, error)
	GetByName(ctx context.Context, membershipID uuid.UUID, name string) (*domain.Role, error)
	List(ctx context.Context, membershipID uuid.UUID, offset, limit int) ([]*domain.Role, error)
	Delete(ctx context.Context, membershipID, roleID uuid.UUID) error
}

// EventEmitter records audit events. Emission is fire-and-forget.
type EventEmitter interface {
	Emit(ctx context.Context, event *eventDomain.Event)
}

// MembershipUseCase defines business logic for tenant management.
type MembershipUseCase interface {
	// Create provisions a tenant together with its admin role, in one
	// transaction. The signing key is sealed before persistence; when the
	// input omits a key, a random one is generated and returned through the
	// output so the caller can record it.
	Create(ctx context.Context, input *domain.CreateMembershipInput) (*domain.CreateMembershipOutput, error)

	// Update modifies the tenant's policy. Rotating the secret key
	// invalidates every outstanding token signed with the previous key.
	Update(ctx context.Context, membershipID uuid.UUID, input *domain.UpdateMembershipInput) (*domain.Membership, error)

	Get(ctx context.Context, membershipID uuid.UUID) (*domain.Membership, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Membership, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Membership, error)
}

// UserUseCase defines business logic for user management within a membership.
type UserUseCase interface {
	// Create provisions a user. The password is hashed before persistence
	// and the referenced role must exist in the membership.
	Create(ctx context.Context, input *domain.CreateUserInput) (*domain.User, error)

	// Update modifies a user. An empty password leaves the credential unchanged.
	Update(ctx context.Context, membershipID, userID uuid.UUID, input *domain.UpdateUserInput) (*domain.User, error)

	Get(ctx context.Context, membershipID, userID uuid.UUID) (*domain.User, error)
	List(ctx context.Context, membershipID uuid.UUID, offset, limit int) ([]*domain.User, error)
	Delete(ctx context.Context, membershipID, userID uuid.UUID) error
}

// ApplicationUseCase defines business logic for machine principals.
type ApplicationUseCase interface {
	// Create registers an application with a generated secret. The plain
	// secret appears only in the output and is never retrievable again.
	Create(ctx context.Context, input *domain.CreateApplicationInput) (*domain.CreateApplicationOutput, error)

	// Authenticate verifies an application id/secret pair, for basic-auth
	// callers. Returns ErrInvalidCredentials on any mismatch.
	Authenticate(ctx context.Context, membershipID, applicationID uuid.UUID, plainSecret string) (*domain.Application, error)

	Get(ctx context.Context, membershipID, applicationID uuid.UUID) (*domain.Application, error)
	List(ctx context.Context, membershipID uuid.UUID, offset, limit int) ([]*domain.Application, error)
	Delete(ctx context.Context, membershipID, applicationID uuid.UUID) error
}

// RoleUseCase defines business logic for role management and permission checks.
type RoleUseCase interface {
	Create(ctx context.Context, input *domain.CreateRoleInput) (*domain.Role, error)
	Update(ctx context.Context, membershipID, roleID uuid.UUID, input *domain.UpdateRoleInput) (*domain.Role, error)
	Get(ctx context.Context, membershipID, roleID uuid.UUID) (*domain.Role, error)
	GetByName(ctx context.Context, membershipID uuid.UUID, name string) (*domain.Role, error)
	List(ctx context.Context, membershipID uuid.UUID, offset, limit int) ([]*domain.Role, error)
	Delete(ctx context.Context, membershipID, roleID uuid.UUID) error

	// CheckPermission resolves the named role and decides the requested
	// permission tuple against it. Deny rules override allow rules; a role
	// with no matching allow rule denies by default.
	CheckPermission(ctx context.Context, membershipID uuid.UUID, roleName string, requested rbac.Rbac) (bool, error)
}
