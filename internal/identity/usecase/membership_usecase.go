// Package usecase implements business logic orchestration for identity management.
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/authware/authority/internal/database"
	apperrors "github.com/authware/authority/internal/errors"
	eventDomain "github.com/authware/authority/internal/event/domain"
	"github.com/authware/authority/internal/identity/domain"
	identityService "github.com/authware/authority/internal/identity/service"
	appValidation "github.com/authware/authority/internal/validation"
)

// adminRoleName is the role seeded with every new membership.
const adminRoleName = "admin"

// membershipUseCase implements MembershipUseCase.
type membershipUseCase struct {
	txManager      database.TxManager
	membershipRepo MembershipRepository
	roleRepo       RoleRepository
	keyKeeper      identityService.KeyKeeper
	events         EventEmitter
}

// NewMembershipUseCase creates a new MembershipUseCase with the provided dependencies.
func NewMembershipUseCase(
	txManager database.TxManager,
	membershipRepo MembershipRepository,
	roleRepo RoleRepository,
	keyKeeper identityService.KeyKeeper,
	events EventEmitter,
) MembershipUseCase {
	return &membershipUseCase{
		txManager:      txManager,
		membershipRepo: membershipRepo,
		roleRepo:       roleRepo,
		keyKeeper:      keyKeeper,
		events:         events,
	}
}

// validateCreateMembershipInput validates tenant provisioning input.
func (m *membershipUseCase) validateCreateMembershipInput(input *domain.CreateMembershipInput) error {
	rules := []*validation.FieldRules{
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Slug,
			validation.Required.Error("slug is required"),
			appValidation.Slug,
			validation.Length(1, 64).Error("slug must be between 1 and 64 characters"),
		),
	}
	if input.DefaultEncoding == domain.EncodingBase64 {
		rules = append(rules, validation.Field(&input.SecretKey, appValidation.Base64))
	}

	err := validation.ValidateStruct(input, rules...)
	return appValidation.WrapValidationError(err)
}

// Create provisions a tenant and seeds its admin role in one transaction.
//
// The admin role grants every permission inside the membership and denies
// nothing; tighter roles are created afterwards through the role API. When
// the input omits a signing key a random 256-bit one is generated, and only
// the sealed form is persisted either way.
func (m *membershipUseCase) Create(
	ctx context.Context,
	input *domain.CreateMembershipInput,
) (*domain.CreateMembershipOutput, error) {
	if err := m.validateCreateMembershipInput(input); err != nil {
		return nil, err
	}

	plainKey := input.SecretKey
	generated := ""
	if plainKey == "" {
		key, err := generateSigningKey()
		if err != nil {
			return nil, err
		}
		plainKey = key
		generated = key
	}

	membership := &domain.Membership{
		ID:                    uuid.Must(uuid.NewV7()),
		Name:                  input.Name,
		Slug:                  input.Slug,
		ExpiresIn:             input.ExpiresIn,
		RefreshTokenExpiresIn: input.RefreshTokenExpiresIn,
		SecretKey:             plainKey,
		HashAlgorithm:         input.HashAlgorithm,
		DefaultEncoding:       input.DefaultEncoding,
	}
	if err := membership.Validate(); err != nil {
		return nil, err
	}

	sealed, err := m.keyKeeper.Seal(ctx, plainKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to seal membership signing key")
	}
	membership.SecretKey = sealed

	adminRole := &domain.Role{
		ID:           uuid.Must(uuid.NewV7()),
		MembershipID: membership.ID,
		Name:         adminRoleName,
		Description:  "Full access within the membership",
		Permissions:  []string{"*.*.*.*"},
		Forbidden:    []string{},
	}

	err = m.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := m.membershipRepo.Create(ctx, membership); err != nil {
			return err
		}
		return m.roleRepo.Create(ctx, adminRole)
	})
	if err != nil {
		return nil, err
	}

	emitAudit(ctx, m.events, eventDomain.EventMembershipCreated, membership.ID, membershipSnapshot(membership), nil)

	return &domain.CreateMembershipOutput{
		Membership:     membership,
		PlainSecretKey: generated,
	}, nil
}

// Update modifies the tenant's token policy. A non-empty SecretKey rotates
// the signing key: every token signed with the previous key stops verifying
// immediately, there is no multi-key grace period.
func (m *membershipUseCase) Update(
	ctx context.Context,
	membershipID uuid.UUID,
	input *domain.UpdateMembershipInput,
) (*domain.Membership, error) {
	membership, err := m.membershipRepo.Get(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	prior := membershipSnapshot(membership)

	if input.Name != "" {
		membership.Name = input.Name
	}
	if input.ExpiresIn != 0 {
		membership.ExpiresIn = input.ExpiresIn
	}
	membership.RefreshTokenExpiresIn = input.RefreshTokenExpiresIn
	if input.HashAlgorithm != "" {
		membership.HashAlgorithm = input.HashAlgorithm
	}
	if input.DefaultEncoding != "" {
		membership.DefaultEncoding = input.DefaultEncoding
	}
	if input.SecretKey != "" {
		sealed, err := m.keyKeeper.Seal(ctx, input.SecretKey)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to seal membership signing key")
		}
		membership.SecretKey = sealed
	}

	if err := membership.Validate(); err != nil {
		return nil, err
	}

	if err := m.membershipRepo.Update(ctx, membership); err != nil {
		return nil, err
	}

	emitAudit(ctx, m.events, eventDomain.EventMembershipUpdated, membership.ID, membershipSnapshot(membership), prior)
	return membership, nil
}

// Get retrieves a membership by id.
func (m *membershipUseCase) Get(ctx context.Context, membershipID uuid.UUID) (*domain.Membership, error) {
	return m.membershipRepo.Get(ctx, membershipID)
}

// GetBySlug retrieves a membership by slug.
func (m *membershipUseCase) GetBySlug(ctx context.Context, slug string) (*domain.Membership, error) {
	return m.membershipRepo.GetBySlug(ctx, slug)
}

// List retrieves memberships with pagination.
func (m *membershipUseCase) List(ctx context.Context, offset, limit int) ([]*domain.Membership, error) {
	return m.membershipRepo.List(ctx, offset, limit)
}

// generateSigningKey creates a random 256-bit signing key, base64-encoded so
// it is usable under both secret encodings.
func generateSigningKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", apperrors.Wrap(err, "failed to generate signing key")
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
