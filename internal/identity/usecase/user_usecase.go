package usecase

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	eventDomain "github.com/authware/authority/internal/event/domain"
	"github.com/authware/authority/internal/identity/domain"
	identityService "github.com/authware/authority/internal/identity/service"
	appValidation "github.com/authware/authority/internal/validation"
)

// userUseCase implements UserUseCase.
type userUseCase struct {
	userRepo        UserRepository
	roleRepo        RoleRepository
	passwordService identityService.PasswordService
	events          EventEmitter
}

// NewUserUseCase creates a new UserUseCase with the provided dependencies.
func NewUserUseCase(
	userRepo UserRepository,
	roleRepo RoleRepository,
	passwordService identityService.PasswordService,
	events EventEmitter,
) UserUseCase {
	return &userUseCase{
		userRepo:        userRepo,
		roleRepo:        roleRepo,
		passwordService: passwordService,
		events:          events,
	}
}

// userPasswordRules are the strength requirements applied to new passwords.
var userPasswordRules = appValidation.PasswordStrength{
	MinLength:     8,
	RequireUpper:  true,
	RequireLower:  true,
	RequireNumber: true,
}

// validateCreateUserInput validates the user provisioning input.
func (u *userUseCase) validateCreateUserInput(input *domain.CreateUserInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Username,
			validation.Required.Error("username is required"),
			appValidation.NotBlank,
			appValidation.NoWhitespace,
			validation.Length(1, 255).Error("username must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			userPasswordRules,
		),
		validation.Field(&input.Role,
			validation.Required.Error("role is required"),
			appValidation.NotBlank,
		),
	)
	return appValidation.WrapValidationError(err)
}

// Create provisions a user inside a membership. The referenced role must
// already exist; the password is hashed before anything is persisted.
func (u *userUseCase) Create(ctx context.Context, input *domain.CreateUserInput) (*domain.User, error) {
	if err := u.validateCreateUserInput(input); err != nil {
		return nil, err
	}

	if err := u.ensureRoleExists(ctx, input.MembershipID, input.Role); err != nil {
		return nil, err
	}

	passwordHash, err := u.passwordService.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.Must(uuid.NewV7()),
		MembershipID: input.MembershipID,
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: passwordHash,
		Role:         input.Role,
		IsActive:     input.IsActive,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	emitAudit(ctx, u.events, eventDomain.EventUserCreated, user.MembershipID, userSnapshot(user), nil)
	return user, nil
}

// Update modifies a user. An empty password keeps the stored credential; a
// changed role must exist in the membership.
func (u *userUseCase) Update(
	ctx context.Context,
	membershipID, userID uuid.UUID,
	input *domain.UpdateUserInput,
) (*domain.User, error) {
	user, err := u.userRepo.Get(ctx, membershipID, userID)
	if err != nil {
		return nil, err
	}
	prior := userSnapshot(user)

	if input.Email != "" {
		if err := appValidation.Email.Validate(input.Email); err != nil {
			return nil, appValidation.WrapValidationError(err)
		}
		user.Email = input.Email
	}
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.IsActive = input.IsActive

	if input.Role != "" && input.Role != user.Role {
		if err := u.ensureRoleExists(ctx, membershipID, input.Role); err != nil {
			return nil, err
		}
		user.Role = input.Role
	}

	if input.Password != "" {
		if err := userPasswordRules.Validate(input.Password); err != nil {
			return nil, appValidation.WrapValidationError(err)
		}
		passwordHash, err := u.passwordService.Hash(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = passwordHash
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	emitAudit(ctx, u.events, eventDomain.EventUserUpdated, membershipID, userSnapshot(user), prior)
	return user, nil
}

// Get retrieves a user by id within a membership.
func (u *userUseCase) Get(ctx context.Context, membershipID, userID uuid.UUID) (*domain.User, error) {
	return u.userRepo.Get(ctx, membershipID, userID)
}

// List retrieves a membership's users with pagination.
func (u *userUseCase) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.User, error) {
	return u.userRepo.List(ctx, membershipID, offset, limit)
}

// Delete removes a user and records the deleted state as the event prior.
func (u *userUseCase) Delete(ctx context.Context, membershipID, userID uuid.UUID) error {
	user, err := u.userRepo.Get(ctx, membershipID, userID)
	if err != nil {
		return err
	}

	if err := u.userRepo.Delete(ctx, membershipID, userID); err != nil {
		return err
	}

	emitAudit(ctx, u.events, eventDomain.EventUserDeleted, membershipID, nil, userSnapshot(user))
	return nil
}

// ensureRoleExists resolves a role name inside the membership.
func (u *userUseCase) ensureRoleExists(ctx context.Context, membershipID uuid.UUID, roleName string) error {
	if _, err := u.roleRepo.GetByName(ctx, membershipID, roleName); err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return fmt.Errorf("%w: %q", domain.ErrRoleNotFound, roleName)
		}
		return err
	}
	return nil
}
