package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/authware/authority/internal/errors"
	eventDomain "github.com/authware/authority/internal/event/domain"
	"github.com/authware/authority/internal/identity/domain"
)

func validCreateMembershipInput() *domain.CreateMembershipInput {
	return &domain.CreateMembershipInput{
		Name:                  "Acme Corporation",
		Slug:                  "acme",
		ExpiresIn:             3600,
		RefreshTokenExpiresIn: 86400,
		HashAlgorithm:         domain.HS256,
		DefaultEncoding:       domain.EncodingUTF8,
	}
}

func TestMembershipUseCaseCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("generates and seals a signing key when the input omits one", func(t *testing.T) {
		membershipRepo := new(mockMembershipRepository)
		roleRepo := new(mockRoleRepository)
		emitter := &recordingEmitter{}
		useCase := NewMembershipUseCase(fakeTxManager{}, membershipRepo, roleRepo, passthroughKeyKeeper{}, emitter)

		membershipRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Membership) bool {
			return strings.HasPrefix(m.SecretKey, "sealed:")
		})).Return(nil)
		roleRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Role) bool {
			return r.Name == "admin" &&
				len(r.Permissions) == 1 && r.Permissions[0] == "*.*.*.*" &&
				len(r.Forbidden) == 0
		})).Return(nil)

		output, err := useCase.Create(ctx, validCreateMembershipInput())
		require.NoError(t, err)
		require.NotEmpty(t, output.PlainSecretKey)

		// The generated key must decode under both secret encodings.
		_, err = base64.StdEncoding.DecodeString(output.PlainSecretKey)
		assert.NoError(t, err)
		assert.Equal(t, "sealed:"+output.PlainSecretKey, output.Membership.SecretKey)

		membershipRepo.AssertExpectations(t)
		roleRepo.AssertExpectations(t)

		events := emitter.byType(eventDomain.EventMembershipCreated)
		require.Len(t, events, 1)
		assert.Equal(t, output.Membership.ID, events[0].MembershipID)
		assert.NotContains(t, string(events[0].Document), output.PlainSecretKey)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(events[0].Document, &doc))
		assert.Equal(t, "acme", doc["slug"])
		assert.NotContains(t, doc, "secret_key")
	})

	t.Run("keeps the caller's key and reports no generated key", func(t *testing.T) {
		membershipRepo := new(mockMembershipRepository)
		roleRepo := new(mockRoleRepository)
		useCase := NewMembershipUseCase(fakeTxManager{}, membershipRepo, roleRepo, passthroughKeyKeeper{}, &recordingEmitter{})

		membershipRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		roleRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		input := validCreateMembershipInput()
		input.SecretKey = "my-signing-key"

		output, err := useCase.Create(ctx, input)
		require.NoError(t, err)
		assert.Empty(t, output.PlainSecretKey)
		assert.Equal(t, "sealed:my-signing-key", output.Membership.SecretKey)
	})

	t.Run("rejects an invalid slug", func(t *testing.T) {
		useCase := NewMembershipUseCase(
			fakeTxManager{}, new(mockMembershipRepository), new(mockRoleRepository),
			passthroughKeyKeeper{}, &recordingEmitter{},
		)

		input := validCreateMembershipInput()
		input.Slug = "Not A Slug"

		_, err := useCase.Create(ctx, input)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("rejects a non-positive access token lifetime", func(t *testing.T) {
		useCase := NewMembershipUseCase(
			fakeTxManager{}, new(mockMembershipRepository), new(mockRoleRepository),
			passthroughKeyKeeper{}, &recordingEmitter{},
		)

		input := validCreateMembershipInput()
		input.ExpiresIn = 0

		_, err := useCase.Create(ctx, input)
		assert.ErrorIs(t, err, domain.ErrInvalidTokenPolicy)
	})

	t.Run("rejects a non-base64 key for a base64 membership", func(t *testing.T) {
		useCase := NewMembershipUseCase(
			fakeTxManager{}, new(mockMembershipRepository), new(mockRoleRepository),
			passthroughKeyKeeper{}, &recordingEmitter{},
		)

		input := validCreateMembershipInput()
		input.DefaultEncoding = domain.EncodingBase64
		input.SecretKey = "not base64!!!"

		_, err := useCase.Create(ctx, input)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("emits no event when persistence fails", func(t *testing.T) {
		membershipRepo := new(mockMembershipRepository)
		roleRepo := new(mockRoleRepository)
		emitter := &recordingEmitter{}
		useCase := NewMembershipUseCase(fakeTxManager{}, membershipRepo, roleRepo, passthroughKeyKeeper{}, emitter)

		membershipRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrMembershipAlreadyExists)

		_, err := useCase.Create(ctx, validCreateMembershipInput())
		assert.ErrorIs(t, err, domain.ErrMembershipAlreadyExists)
		assert.Empty(t, emitter.byType(eventDomain.EventMembershipCreated))
		roleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestMembershipUseCaseUpdate(t *testing.T) {
	ctx := context.Background()
	membershipID := uuid.Must(uuid.NewV7())

	existing := func() *domain.Membership {
		return &domain.Membership{
			ID:                    membershipID,
			Name:                  "Acme Corporation",
			Slug:                  "acme",
			ExpiresIn:             3600,
			RefreshTokenExpiresIn: 86400,
			SecretKey:             "sealed:old-key",
			HashAlgorithm:         domain.HS256,
			DefaultEncoding:       domain.EncodingUTF8,
		}
	}

	t.Run("applies policy changes and records the prior state", func(t *testing.T) {
		membershipRepo := new(mockMembershipRepository)
		emitter := &recordingEmitter{}
		useCase := NewMembershipUseCase(
			fakeTxManager{}, membershipRepo, new(mockRoleRepository), passthroughKeyKeeper{}, emitter,
		)

		membershipRepo.On("Get", mock.Anything, membershipID).Return(existing(), nil)
		membershipRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		updated, err := useCase.Update(ctx, membershipID, &domain.UpdateMembershipInput{
			ExpiresIn:             7200,
			RefreshTokenExpiresIn: 0,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7200), updated.ExpiresIn)
		assert.False(t, updated.RefreshEnabled())
		assert.Equal(t, "sealed:old-key", updated.SecretKey)

		events := emitter.byType(eventDomain.EventMembershipUpdated)
		require.Len(t, events, 1)
		require.NotEmpty(t, events[0].Prior)

		var prior map[string]any
		require.NoError(t, json.Unmarshal(events[0].Prior, &prior))
		assert.Equal(t, float64(3600), prior["expires_in"])
	})

	t.Run("seals a rotated signing key", func(t *testing.T) {
		membershipRepo := new(mockMembershipRepository)
		useCase := NewMembershipUseCase(
			fakeTxManager{}, membershipRepo, new(mockRoleRepository), passthroughKeyKeeper{}, &recordingEmitter{},
		)

		membershipRepo.On("Get", mock.Anything, membershipID).Return(existing(), nil)
		membershipRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *domain.Membership) bool {
			return m.SecretKey == "sealed:new-key"
		})).Return(nil)

		updated, err := useCase.Update(ctx, membershipID, &domain.UpdateMembershipInput{SecretKey: "new-key"})
		require.NoError(t, err)
		assert.Equal(t, "sealed:new-key", updated.SecretKey)
		membershipRepo.AssertExpectations(t)
	})

	t.Run("propagates not found", func(t *testing.T) {
		membershipRepo := new(mockMembershipRepository)
		useCase := NewMembershipUseCase(
			fakeTxManager{}, membershipRepo, new(mockRoleRepository), passthroughKeyKeeper{}, &recordingEmitter{},
		)

		membershipRepo.On("Get", mock.Anything, membershipID).Return(nil, domain.ErrMembershipNotFound)

		_, err := useCase.Update(ctx, membershipID, &domain.UpdateMembershipInput{Name: "Renamed"})
		assert.ErrorIs(t, err, domain.ErrMembershipNotFound)
	})
}
