package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/authware/authority/internal/errors"
	"github.com/authware/authority/internal/event/domain"
)

func TestWebhookUseCaseCreate(t *testing.T) {
	ctx := context.Background()
	membershipID := uuid.Must(uuid.NewV7())

	t.Run("stores a valid subscription", func(t *testing.T) {
		webhookRepo := new(mockWebhookRepository)
		useCase := NewWebhookUseCase(webhookRepo)

		webhookRepo.On("Create", mock.Anything, mock.MatchedBy(func(w *domain.Webhook) bool {
			return w.MembershipID == membershipID && w.URL == "https://example.com/hooks"
		})).Return(nil)

		webhook, err := useCase.Create(ctx, &domain.CreateWebhookInput{
			MembershipID: membershipID,
			Name:         "audit-stream",
			URL:          "https://example.com/hooks",
			EventTypes:   []domain.EventType{domain.EventTokenGenerated, domain.EventTokenRevoked},
			IsActive:     true,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, webhook.ID)
		webhookRepo.AssertExpectations(t)
	})

	t.Run("rejects a non-http url", func(t *testing.T) {
		useCase := NewWebhookUseCase(new(mockWebhookRepository))

		_, err := useCase.Create(ctx, &domain.CreateWebhookInput{
			MembershipID: membershipID,
			Name:         "audit-stream",
			URL:          "ftp://example.com/hooks",
			EventTypes:   []domain.EventType{domain.EventTokenGenerated},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("rejects an unknown event type", func(t *testing.T) {
		useCase := NewWebhookUseCase(new(mockWebhookRepository))

		_, err := useCase.Create(ctx, &domain.CreateWebhookInput{
			MembershipID: membershipID,
			Name:         "audit-stream",
			URL:          "https://example.com/hooks",
			EventTypes:   []domain.EventType{"token_teleported"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidEventType)
	})

	t.Run("rejects an empty event type list", func(t *testing.T) {
		useCase := NewWebhookUseCase(new(mockWebhookRepository))

		_, err := useCase.Create(ctx, &domain.CreateWebhookInput{
			MembershipID: membershipID,
			Name:         "audit-stream",
			URL:          "https://example.com/hooks",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestWebhookUseCaseUpdate(t *testing.T) {
	ctx := context.Background()
	membershipID := uuid.Must(uuid.NewV7())
	webhookID := uuid.Must(uuid.NewV7())

	t.Run("replaces the mutable fields", func(t *testing.T) {
		webhookRepo := new(mockWebhookRepository)
		useCase := NewWebhookUseCase(webhookRepo)

		webhookRepo.On("Get", mock.Anything, membershipID, webhookID).Return(&domain.Webhook{
			ID:           webhookID,
			MembershipID: membershipID,
			Name:         "audit-stream",
			URL:          "https://example.com/hooks",
			EventTypes:   []domain.EventType{domain.EventTokenGenerated},
			IsActive:     true,
		}, nil)
		webhookRepo.On("Update", mock.Anything, mock.MatchedBy(func(w *domain.Webhook) bool {
			return w.URL == "https://example.com/v2/hooks" && !w.IsActive
		})).Return(nil)

		webhook, err := useCase.Update(ctx, membershipID, webhookID, &domain.UpdateWebhookInput{
			Name:       "audit-stream",
			URL:        "https://example.com/v2/hooks",
			EventTypes: []domain.EventType{domain.EventTokenGenerated},
			IsActive:   false,
		})
		require.NoError(t, err)
		assert.False(t, webhook.IsActive)
	})

	t.Run("propagates not found", func(t *testing.T) {
		webhookRepo := new(mockWebhookRepository)
		useCase := NewWebhookUseCase(webhookRepo)

		webhookRepo.On("Get", mock.Anything, membershipID, webhookID).
			Return(nil, domain.ErrWebhookNotFound)

		_, err := useCase.Update(ctx, membershipID, webhookID, &domain.UpdateWebhookInput{
			Name:       "audit-stream",
			URL:        "https://example.com/hooks",
			EventTypes: []domain.EventType{domain.EventTokenGenerated},
		})
		assert.ErrorIs(t, err, domain.ErrWebhookNotFound)
	})
}
