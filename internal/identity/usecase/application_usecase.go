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

// applicationUseCase implements ApplicationUseCase.
type applicationUseCase struct {
	applicationRepo ApplicationRepository
	roleRepo        RoleRepository
	secretService   identityService.SecretService
	passwordService identityService.PasswordService
	events          EventEmitter
}

// NewApplicationUseCase creates a new ApplicationUseCase with the provided dependencies.
func NewApplicationUseCase(
	applicationRepo ApplicationRepository,
	roleRepo RoleRepository,
	secretService identityService.SecretService,
	passwordService identityService.PasswordService,
	events EventEmitter,
) ApplicationUseCase {
	return &applicationUseCase{
		applicationRepo: applicationRepo,
		roleRepo:        roleRepo,
		secretService:   secretService,
		passwordService: passwordService,
		events:          events,
	}
}

// validateCreateApplicationInput validates application registration input.
func (a *applicationUseCase) validateCreateApplicationInput(input *domain.CreateApplicationInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Role,
			validation.Required.Error("role is required"),
			appValidation.NotBlank,
		),
	)
	return appValidation.WrapValidationError(err)
}

// Create registers an application with a generated secret. Only the hashed
// secret is persisted; the plain secret is returned once through the output.
func (a *applicationUseCase) Create(
	ctx context.Context,
	input *domain.CreateApplicationInput,
) (*domain.CreateApplicationOutput, error) {
	if err := a.validateCreateApplicationInput(input); err != nil {
		return nil, err
	}

	if _, err := a.roleRepo.GetByName(ctx, input.MembershipID, input.Role); err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return nil, fmt.Errorf("%w: %q", domain.ErrRoleNotFound, input.Role)
		}
		return nil, err
	}

	plainSecret, hashedSecret, err := a.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	application := &domain.Application{
		ID:           uuid.Must(uuid.NewV7()),
		MembershipID: input.MembershipID,
		Name:         input.Name,
		Secret:       hashedSecret,
		Role:         input.Role,
		IsActive:     input.IsActive,
	}

	if err := a.applicationRepo.Create(ctx, application); err != nil {
		return nil, err
	}

	emitAudit(ctx, a.events, eventDomain.EventApplicationCreated, application.MembershipID, applicationSnapshot(application), nil)

	return &domain.CreateApplicationOutput{
		Application: application,
		PlainSecret: plainSecret,
	}, nil
}

// Authenticate verifies an application id/secret pair. Unknown applications
// and bad secrets both map to ErrInvalidCredentials so callers cannot probe
// for valid ids.
func (a *applicationUseCase) Authenticate(
	ctx context.Context,
	membershipID, applicationID uuid.UUID,
	plainSecret string,
) (*domain.Application, error) {
	application, err := a.applicationRepo.Get(ctx, membershipID, applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !a.passwordService.Verify(plainSecret, application.Secret) {
		return nil, domain.ErrInvalidCredentials
	}
	if !application.IsActive {
		return nil, domain.ErrApplicationInactive
	}

	return application, nil
}

// Get retrieves an application by id within a membership.
func (a *applicationUseCase) Get(ctx context.Context, membershipID, applicationID uuid.UUID) (*domain.Application, error) {
	return a.applicationRepo.Get(ctx, membershipID, applicationID)
}

// List retrieves a membership's applications with pagination.
func (a *applicationUseCase) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.Application, error) {
	return a.applicationRepo.List(ctx, membershipID, offset, limit)
}

// Delete removes an application and records the deleted state as the event prior.
func (a *applicationUseCase) Delete(ctx context.Context, membershipID, applicationID uuid.UUID) error {
	application, err := a.applicationRepo.Get(ctx, membershipID, applicationID)
	if err != nil {
		return err
	}

	if err := a.applicationRepo.Delete(ctx, membershipID, applicationID); err != nil {
		return err
	}

	emitAudit(ctx, a.events, eventDomain.EventApplicationDeleted, membershipID, nil, applicationSnapshot(application))
	return nil
}
