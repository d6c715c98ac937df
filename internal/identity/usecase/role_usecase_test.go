package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/authware/authority/internal/errors"
	eventDomain "github.com/authware/authority/internal/event/domain"
	"github.com/authware/authority/internal/identity/domain"
	"github.com/authware/authority/internal/rbac"
)

func TestRoleUseCaseCreate(t *testing.T) {
	ctx := context.Background()
	membershipID := uuid.Must(uuid.NewV7())

	t.Run("stores a role with parsed rule lists", func(t *testing.T) {
		roleRepo := new(mockRoleRepository)
		emitter := &recordingEmitter{}
		useCase := NewRoleUseCase(roleRepo, emitter)

		roleRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Role) bool {
			return r.Name == "operator" && len(r.Permissions) == 2 && len(r.Forbidden) == 1
		})).Return(nil)

		role, err := useCase.Create(ctx, &domain.CreateRoleInput{
			MembershipID: membershipID,
			Name:         "operator",
			Description:  "Operates jobs",
			Permissions:  []string{"*.jobs.*.*", "*.queues.read.*"},
			Forbidden:    []string{"*.jobs.delete.*"},
		})
		require.NoError(t, err)
		assert.Equal(t, membershipID, role.MembershipID)

		events := emitter.byType(eventDomain.EventRoleCreated)
		require.Len(t, events, 1)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(events[0].Document, &doc))
		assert.Equal(t, "operator", doc["name"])
	})

	t.Run("rejects a malformed permission expression", func(t *testing.T) {
		roleRepo := new(mockRoleRepository)
		useCase := NewRoleUseCase(roleRepo, &recordingEmitter{})

		_, err := useCase.Create(ctx, &domain.CreateRoleInput{
			MembershipID: membershipID,
			Name:         "operator",
			Permissions:  []string{"jobs.read"},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		roleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects an empty permission list", func(t *testing.T) {
		useCase := NewRoleUseCase(new(mockRoleRepository), &recordingEmitter{})

		_, err := useCase.Create(ctx, &domain.CreateRoleInput{
			MembershipID: membershipID,
			Name:         "operator",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestRoleUseCaseUpdate(t *testing.T) {
	ctx := context.Background()
	membershipID := uuid.Must(uuid.NewV7())
	roleID := uuid.Must(uuid.NewV7())

	t.Run("replaces the rule lists and records the prior state", func(t *testing.T) {
		roleRepo := new(mockRoleRepository)
		emitter := &recordingEmitter{}
		useCase := NewRoleUseCase(roleRepo, emitter)

		roleRepo.On("Get", mock.Anything, membershipID, roleID).Return(&domain.Role{
			ID:           roleID,
			MembershipID: membershipID,
			Name:         "operator",
			Permissions:  []string{"*.jobs.*.*"},
		}, nil)
		roleRepo.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.Role) bool {
			return r.Name == "operator" && len(r.Permissions) == 1 && r.Permissions[0] == "*.queues.*.*"
		})).Return(nil)

		role, err := useCase.Update(ctx, membershipID, roleID, &domain.UpdateRoleInput{
			Permissions: []string{"*.queues.*.*"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"*.queues.*.*"}, role.Permissions)

		events := emitter.byType(eventDomain.EventRoleUpdated)
		require.Len(t, events, 1)

		var prior map[string]any
		require.NoError(t, json.Unmarshal(events[0].Prior, &prior))
		assert.Equal(t, []any{"*.jobs.*.*"}, prior["permissions"])
	})

	t.Run("validates the new rule lists before loading the role", func(t *testing.T) {
		roleRepo := new(mockRoleRepository)
		useCase := NewRoleUseCase(roleRepo, &recordingEmitter{})

		_, err := useCase.Update(ctx, membershipID, roleID, &domain.UpdateRoleInput{
			Permissions: []string{"too.few.segments"},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		roleRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRoleUseCaseDelete(t *testing.T) {
	ctx := context.Background()
	membershipID := uuid.Must(uuid.NewV7())
	roleID := uuid.Must(uuid.NewV7())

	t.Run("refuses to delete the admin role", func(t *testing.T) {
		roleRepo := new(mockRoleRepository)
		useCase := NewRoleUseCase(roleRepo, &recordingEmitter{})

		roleRepo.On("Get", mock.Anything, membershipID, roleID).Return(&domain.Role{
			ID:           roleID,
			MembershipID: membershipID,
			Name:         "admin",
			Permissions:  []string{"*.*.*.*"},
		}, nil)

		err := useCase.Delete(ctx, membershipID, roleID)
		assert.ErrorIs(t, err, domain.ErrForbiddenRoleChange)
		roleRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deletes other roles and records the prior state", func(t *testing.T) {
		roleRepo := new(mockRoleRepository)
		emitter := &recordingEmitter{}
		useCase := NewRoleUseCase(roleRepo, emitter)

		roleRepo.On("Get", mock.Anything, membershipID, roleID).Return(&domain.Role{
			ID:           roleID,
			MembershipID: membershipID,
			Name:         "operator",
			Permissions:  []string{"*.jobs.*.*"},
		}, nil)
		roleRepo.On("Delete", mock.Anything, membershipID, roleID).Return(nil)

		require.NoError(t, useCase.Delete(ctx, membershipID, roleID))
		require.Len(t, emitter.byType(eventDomain.EventRoleDeleted), 1)
	})
}

func TestRoleUseCaseCheckPermission(t *testing.T) {
	ctx := context.Background()
	membershipID := uuid.Must(uuid.NewV7())

	operator := &domain.Role{
		ID:           uuid.Must(uuid.NewV7()),
		MembershipID: membershipID,
		Name:         "operator",
		Permissions:  []string{"*.jobs.*.*", "*.queues.read.*"},
		Forbidden:    []string{"*.jobs.delete.*"},
	}

	mustParse := func(t *testing.T, text string) rbac.Rbac {
		t.Helper()
		r, err := rbac.Parse(text)
		require.NoError(t, err)
		return r
	}

	t.Run("allows a matching permission", func(t *testing.T) {
		roleRepo := new(mockRoleRepository)
		useCase := NewRoleUseCase(roleRepo, &recordingEmitter{})
		roleRepo.On("GetByName", mock.Anything, membershipID, "operator").Return(operator, nil)

		allowed, err := useCase.CheckPermission(ctx, membershipID, "operator", mustParse(t, "user.jobs.create.any"))
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("deny overrides allow", func(t *testing.T) {
		roleRepo := new(mockRoleRepository)
		useCase := NewRoleUseCase(roleRepo, &recordingEmitter{})
		roleRepo.On("GetByName", mock.Anything, membershipID, "operator").Return(operator, nil)

		allowed, err := useCase.CheckPermission(ctx, membershipID, "operator", mustParse(t, "user.jobs.delete.any"))
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("denies by default when nothing matches", func(t *testing.T) {
		roleRepo := new(mockRoleRepository)
		useCase := NewRoleUseCase(roleRepo, &recordingEmitter{})
		roleRepo.On("GetByName", mock.Anything, membershipID, "operator").Return(operator, nil)

		allowed, err := useCase.CheckPermission(ctx, membershipID, "operator", mustParse(t, "user.queues.write.any"))
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("propagates a missing role as an error", func(t *testing.T) {
		roleRepo := new(mockRoleRepository)
		useCase := NewRoleUseCase(roleRepo, &recordingEmitter{})
		roleRepo.On("GetByName", mock.Anything, membershipID, "ghost").Return(nil, domain.ErrRoleNotFound)

		_, err := useCase.CheckPermission(ctx, membershipID, "ghost", mustParse(t, "user.jobs.read.any"))
		assert.ErrorIs(t, err, domain.ErrRoleNotFound)
	})
}
