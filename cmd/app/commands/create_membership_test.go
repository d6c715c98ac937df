package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	identityDomain "github.com/authware/authority/internal/identity/domain"
)

// MockMembershipUseCase is a mock implementation of identityUseCase.MembershipUseCase.
type MockMembershipUseCase struct {
	mock.Mock
}

func (m *MockMembershipUseCase) Create(ctx context.Context, input *identityDomain.CreateMembershipInput) (*identityDomain.CreateMembershipOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.CreateMembershipOutput), args.Error(1)
}

func (m *MockMembershipUseCase) Update(ctx context.Context, membershipID uuid.UUID, input *identityDomain.UpdateMembershipInput) (*identityDomain.Membership, error) {
	args := m.Called(ctx, membershipID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Membership), args.Error(1)
}

func (m *MockMembershipUseCase) Get(ctx context.Context, membershipID uuid.UUID) (*identityDomain.Membership, error) {
	args := m.Called(ctx, membershipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Membership), args.Error(1)
}

func (m *MockMembershipUseCase) GetBySlug(ctx context.Context, slug string) (*identityDomain.Membership, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Membership), args.Error(1)
}

func (m *MockMembershipUseCase) List(ctx context.Context, offset, limit int) ([]*identityDomain.Membership, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identityDomain.Membership), args.Error(1)
}

func TestRunCreateMembership(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	membershipID := uuid.Must(uuid.NewV7())

	t.Run("generated-key-text", func(t *testing.T) {
		mockUseCase := &MockMembershipUseCase{}
		input := &identityDomain.CreateMembershipInput{
			Name:                  "Acme Corp",
			Slug:                  "acme",
			ExpiresIn:             3600,
			RefreshTokenExpiresIn: 86400,
			HashAlgorithm:         identityDomain.HS256,
			DefaultEncoding:       identityDomain.EncodingUTF8,
		}
		output := &identityDomain.CreateMembershipOutput{
			Membership: &identityDomain.Membership{
				ID:   membershipID,
				Slug: "acme",
			},
			PlainSecretKey: "generated-signing-key",
		}

		mockUseCase.On("Create", ctx, input).Return(output, nil)

		var out bytes.Buffer
		io := IOTuple{Writer: &out}

		err := RunCreateMembership(
			ctx, mockUseCase, logger,
			"Acme Corp", "acme", 3600, 86400, "", "HS256", "utf8", "text", io,
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), membershipID.String())
		require.Contains(t, out.String(), "generated-signing-key")
		require.Contains(t, out.String(), "shown only once")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("caller-key-json", func(t *testing.T) {
		mockUseCase := &MockMembershipUseCase{}
		output := &identityDomain.CreateMembershipOutput{
			Membership: &identityDomain.Membership{
				ID:   membershipID,
				Slug: "acme",
			},
		}

		mockUseCase.On("Create", ctx, mock.Anything).Return(output, nil)

		var out bytes.Buffer
		io := IOTuple{Writer: &out}

		err := RunCreateMembership(
			ctx, mockUseCase, logger,
			"Acme Corp", "acme", 3600, 0, "caller-key", "HS512", "base64", "json", io,
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), membershipID.String())
		// A caller-provided key is never echoed back
		require.NotContains(t, out.String(), "caller-key")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-algorithm", func(t *testing.T) {
		mockUseCase := &MockMembershipUseCase{}
		io := IOTuple{Writer: &bytes.Buffer{}}

		err := RunCreateMembership(
			ctx, mockUseCase, logger,
			"Acme Corp", "acme", 3600, 86400, "", "RS256", "utf8", "text", io,
		)

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid algorithm")
		mockUseCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid-encoding", func(t *testing.T) {
		mockUseCase := &MockMembershipUseCase{}
		io := IOTuple{Writer: &bytes.Buffer{}}

		err := RunCreateMembership(
			ctx, mockUseCase, logger,
			"Acme Corp", "acme", 3600, 86400, "", "HS256", "hex", "text", io,
		)

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid encoding")
		mockUseCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
