package usecase

import (
	"context"
	"fmt"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	eventDomain "github.com/authware/authority/internal/event/domain"
	"github.com/authware/authority/internal/identity/domain"
	"github.com/authware/authority/internal/rbac"
	appValidation "github.com/authware/authority/internal/validation"
)

// roleUseCase implements RoleUseCase.
type roleUseCase struct {
	roleRepo RoleRepository
	events   EventEmitter
}

// NewRoleUseCase creates a new RoleUseCase with the provided dependencies.
func NewRoleUseCase(roleRepo RoleRepository, events EventEmitter) RoleUseCase {
	return &roleUseCase{
		roleRepo: roleRepo,
		events:   events,
	}
}

// validateCreateRoleInput validates role creation input. Every rule in both
// lists must parse as a four-segment permission expression.
func (r *roleUseCase) validateCreateRoleInput(input *domain.CreateRoleInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			appValidation.NoWhitespace,
			validation.Length(1, 64).Error("name must be between 1 and 64 characters"),
		),
		validation.Field(&input.Permissions,
			validation.Required.Error("at least one permission is required"),
			appValidation.Permissions,
		),
		validation.Field(&input.Forbidden, appValidation.Permissions),
	)
	return appValidation.WrapValidationError(err)
}

// Create stores a role after validating its permission expressions.
func (r *roleUseCase) Create(ctx context.Context, input *domain.CreateRoleInput) (*domain.Role, error) {
	if err := r.validateCreateRoleInput(input); err != nil {
		return nil, err
	}

	role := &domain.Role{
		ID:           uuid.Must(uuid.NewV7()),
		MembershipID: input.MembershipID,
		Name:         input.Name,
		Description:  input.Description,
		Permissions:  input.Permissions,
		Forbidden:    input.Forbidden,
	}

	if err := r.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	emitAudit(ctx, r.events, eventDomain.EventRoleCreated, role.MembershipID, roleSnapshot(role), nil)
	return role, nil
}

// Update replaces a role's description and rule lists. The name is immutable
// because principals reference roles by name.
func (r *roleUseCase) Update(
	ctx context.Context,
	membershipID, roleID uuid.UUID,
	input *domain.UpdateRoleInput,
) (*domain.Role, error) {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Permissions,
			validation.Required.Error("at least one permission is required"),
			appValidation.Permissions,
		),
		validation.Field(&input.Forbidden, appValidation.Permissions),
	)
	if err := appValidation.WrapValidationError(err); err != nil {
		return nil, err
	}

	role, err := r.roleRepo.Get(ctx, membershipID, roleID)
	if err != nil {
		return nil, err
	}
	prior := roleSnapshot(role)

	role.Description = input.Description
	role.Permissions = input.Permissions
	role.Forbidden = input.Forbidden

	if err := r.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}

	emitAudit(ctx, r.events, eventDomain.EventRoleUpdated, membershipID, roleSnapshot(role), prior)
	return role, nil
}

// Get retrieves a role by id within a membership.
func (r *roleUseCase) Get(ctx context.Context, membershipID, roleID uuid.UUID) (*domain.Role, error) {
	return r.roleRepo.Get(ctx, membershipID, roleID)
}

// GetByName retrieves a role by name within a membership.
func (r *roleUseCase) GetByName(ctx context.Context, membershipID uuid.UUID, name string) (*domain.Role, error) {
	return r.roleRepo.GetByName(ctx, membershipID, name)
}

// List retrieves a membership's roles with pagination.
func (r *roleUseCase) List(ctx context.Context, membershipID uuid.UUID, offset, limit int) ([]*domain.Role, error) {
	return r.roleRepo.List(ctx, membershipID, offset, limit)
}

// Delete removes a role and records the deleted state as the event prior.
// Principals still naming the role lose all access until reassigned.
func (r *roleUseCase) Delete(ctx context.Context, membershipID, roleID uuid.UUID) error {
	role, err := r.roleRepo.Get(ctx, membershipID, roleID)
	if err != nil {
		return err
	}
	if role.Name == adminRoleName {
		return fmt.Errorf("%w: the admin role cannot be deleted", domain.ErrForbiddenRoleChange)
	}

	if err := r.roleRepo.Delete(ctx, membershipID, roleID); err != nil {
		return err
	}

	emitAudit(ctx, r.events, eventDomain.EventRoleDeleted, membershipID, nil, roleSnapshot(role))
	return nil
}

// CheckPermission resolves the named role and decides the requested tuple
// against it. Deny rules override allow rules, and a role with no matching
// allow rule denies by default.
func (r *roleUseCase) CheckPermission(
	ctx context.Context,
	membershipID uuid.UUID,
	roleName string,
	requested rbac.Rbac,
) (bool, error) {
	role, err := r.roleRepo.GetByName(ctx, membershipID, roleName)
	if err != nil {
		return false, err
	}
	return role.HasPermission(requested), nil
}
