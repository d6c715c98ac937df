package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/authware/authority/internal/errors"
	identityDomain "github.com/authware/authority/internal/identity/domain"
	tokenDomain "github.com/authware/authority/internal/token/domain"
	"github.com/authware/authority/internal/token/http/dto"
)

// MockTokenUseCase is a mock implementation of TokenUseCase for testing.
type MockTokenUseCase struct {
	mock.Mock
}

func (m *MockTokenUseCase) Generate(
	ctx context.Context,
	input *tokenDomain.GenerateTokenInput,
) (*tokenDomain.TokenPair, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.TokenPair), args.Error(1)
}

func (m *MockTokenUseCase) Verify(ctx context.Context, rawToken string) (*tokenDomain.ValidationResult, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.ValidationResult), args.Error(1)
}

func (m *MockTokenUseCase) WhoAmI(ctx context.Context, rawToken string) (*identityDomain.Principal, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Principal), args.Error(1)
}

func (m *MockTokenUseCase) Refresh(
	ctx context.Context,
	rawRefreshToken string,
	revokeBefore bool,
) (*tokenDomain.TokenPair, error) {
	args := m.Called(ctx, rawRefreshToken, revokeBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.TokenPair), args.Error(1)
}

func (m *MockTokenUseCase) Revoke(ctx context.Context, rawToken string) (bool, error) {
	args := m.Called(ctx, rawToken)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenUseCase) DeleteExpiredRevocations(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockApplicationUseCase is a mock implementation of ApplicationUseCase for testing.
type MockApplicationUseCase struct {
	mock.Mock
}

func (m *MockApplicationUseCase) Create(
	ctx context.Context,
	input *identityDomain.CreateApplicationInput,
) (*identityDomain.CreateApplicationOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.CreateApplicationOutput), args.Error(1)
}

func (m *MockApplicationUseCase) Authenticate(
	ctx context.Context,
	membershipID, applicationID uuid.UUID,
	plainSecret string,
) (*identityDomain.Application, error) {
	args := m.Called(ctx, membershipID, applicationID, plainSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Application), args.Error(1)
}

func (m *MockApplicationUseCase) Get(
	ctx context.Context,
	membershipID, applicationID uuid.UUID,
) (*identityDomain.Application, error) {
	args := m.Called(ctx, membershipID, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Application), args.Error(1)
}

func (m *MockApplicationUseCase) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*identityDomain.Application, error) {
	args := m.Called(ctx, membershipID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identityDomain.Application), args.Error(1)
}

func (m *MockApplicationUseCase) Delete(ctx context.Context, membershipID, applicationID uuid.UUID) error {
	args := m.Called(ctx, membershipID, applicationID)
	return args.Error(0)
}

// setupTestHandler creates a test token handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*TokenHandler, *MockTokenUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockTokenUseCase := &MockTokenUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewTokenHandler(mockTokenUseCase, logger)

	return handler, mockTokenUseCase
}

// createTestContext creates a test Gin context with the given request.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func TestTokenHandler_GenerateTokenHandler(t *testing.T) {
	t.Run("Success_ValidCredentials", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		now := time.Now().UTC()
		pair := &tokenDomain.TokenPair{
			AccessToken:      "access.jwt.token",
			RefreshToken:     "refresh.jwt.token",
			AccessExpiresAt:  now.Add(time.Hour),
			RefreshExpiresAt: now.Add(24 * time.Hour),
		}

		mockUseCase.On("Generate", mock.Anything, &tokenDomain.GenerateTokenInput{
			MembershipSlug: "acme",
			Username:       "alice",
			Password:       "hunter2-strong",
		}).Return(pair, nil).Once()

		request := dto.GenerateTokenRequest{
			MembershipSlug: "acme",
			Username:       "alice",
			Password:       "hunter2-strong",
		}

		c, w := createTestContext(http.MethodPost, "/v1/tokens", request)
		handler.GenerateTokenHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.TokenPairResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "access.jwt.token", response.AccessToken)
		assert.Equal(t, "refresh.jwt.token", response.RefreshToken)
		assert.Equal(t, "bearer", response.TokenType)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_RefreshDisabled", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		pair := &tokenDomain.TokenPair{
			AccessToken:     "access.jwt.token",
			AccessExpiresAt: time.Now().UTC().Add(time.Hour),
		}

		mockUseCase.On("Generate", mock.Anything, mock.Anything).Return(pair, nil).Once()

		request := dto.GenerateTokenRequest{
			MembershipSlug: "acme",
			Username:       "alice",
			Password:       "hunter2-strong",
		}

		c, w := createTestContext(http.MethodPost, "/v1/tokens", request)
		handler.GenerateTokenHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var raw map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		assert.NotContains(t, raw, "refresh_token")
		assert.NotContains(t, raw, "refresh_expires_at")
	})

	t.Run("Error_InvalidCredentials", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Generate", mock.Anything, mock.Anything).
			Return(nil, identityDomain.ErrInvalidCredentials).Once()

		request := dto.GenerateTokenRequest{
			MembershipSlug: "acme",
			Username:       "alice",
			Password:       "wrong-password",
		}

		c, w := createTestContext(http.MethodPost, "/v1/tokens", request)
		handler.GenerateTokenHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_MissingFields", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		request := dto.GenerateTokenRequest{MembershipSlug: "acme"}

		c, w := createTestContext(http.MethodPost, "/v1/tokens", request)
		handler.GenerateTokenHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Generate")
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/tokens", nil)
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("not json")))

		handler.GenerateTokenHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTokenHandler_VerifyTokenHandler(t *testing.T) {
	t.Run("Success_ValidToken", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		claims := &tokenDomain.Claims{
			SubjectID:    uuid.Must(uuid.NewV7()),
			MembershipID: uuid.Must(uuid.NewV7()),
			TokenType:    tokenDomain.AccessToken,
			TokenID:      uuid.Must(uuid.NewV7()),
		}

		mockUseCase.On("Verify", mock.Anything, "good.jwt.token").
			Return(tokenDomain.Validated(claims), nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens/verify", dto.VerifyTokenRequest{Token: "good.jwt.token"})
		handler.VerifyTokenHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.VerifyTokenResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.IsValidated)
		assert.Empty(t, response.Reason)
		assert.NotNil(t, response.Claims)
	})

	t.Run("Success_InvalidTokenIsAnOutcome", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Verify", mock.Anything, "expired.jwt.token").
			Return(tokenDomain.Unvalidated(tokenDomain.ReasonExpired), nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens/verify", dto.VerifyTokenRequest{Token: "expired.jwt.token"})
		handler.VerifyTokenHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.VerifyTokenResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.IsValidated)
		assert.Equal(t, "expired", response.Reason)
		assert.Nil(t, response.Claims)
	})

	t.Run("Error_RevocationStoreOutage", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Verify", mock.Anything, "any.jwt.token").
			Return(nil, tokenDomain.ErrRevocationStoreUnavailable).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens/verify", dto.VerifyTokenRequest{Token: "any.jwt.token"})
		handler.VerifyTokenHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Error_EmptyToken", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/tokens/verify", dto.VerifyTokenRequest{})
		handler.VerifyTokenHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Verify")
	})
}

func TestTokenHandler_RefreshTokenHandler(t *testing.T) {
	t.Run("Success_RotatesPair", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		now := time.Now().UTC()
		pair := &tokenDomain.TokenPair{
			AccessToken:      "new.access.token",
			RefreshToken:     "new.refresh.token",
			AccessExpiresAt:  now.Add(time.Hour),
			RefreshExpiresAt: now.Add(24 * time.Hour),
		}

		mockUseCase.On("Refresh", mock.Anything, "old.refresh.token", true).
			Return(pair, nil).Once()

		request := dto.RefreshTokenRequest{Token: "old.refresh.token", RevokeBefore: true}

		c, w := createTestContext(http.MethodPost, "/v1/tokens/refresh", request)
		handler.RefreshTokenHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.TokenPairResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "new.access.token", response.AccessToken)
		assert.Equal(t, "new.refresh.token", response.RefreshToken)
	})

	t.Run("Error_RevokedToken", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Refresh", mock.Anything, "used.refresh.token", false).
			Return(nil, tokenDomain.ErrTokenRevoked).Once()

		request := dto.RefreshTokenRequest{Token: "used.refresh.token"}

		c, w := createTestContext(http.MethodPost, "/v1/tokens/refresh", request)
		handler.RefreshTokenHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTokenHandler_RevokeTokenHandler(t *testing.T) {
	t.Run("Success_Revoked", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Revoke", mock.Anything, "live.jwt.token").Return(true, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens/revoke", dto.RevokeTokenRequest{Token: "live.jwt.token"})
		handler.RevokeTokenHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.RevokeTokenResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Revoked)
	})

	t.Run("Success_UndecodableTokenNotRevoked", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Revoke", mock.Anything, "garbage").Return(false, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens/revoke", dto.RevokeTokenRequest{Token: "garbage"})
		handler.RevokeTokenHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.RevokeTokenResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.Revoked)
	})

	t.Run("Error_StoreUnavailable", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Revoke", mock.Anything, "live.jwt.token").
			Return(false, apperrors.ErrUnavailable).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens/revoke", dto.RevokeTokenRequest{Token: "live.jwt.token"})
		handler.RevokeTokenHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestTokenHandler_WhoAmIHandler(t *testing.T) {
	t.Run("Success_PrincipalInContext", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		user := &identityDomain.User{
			ID:           uuid.Must(uuid.NewV7()),
			MembershipID: uuid.Must(uuid.NewV7()),
			Username:     "alice",
			Role:         "admin",
		}

		c, w := createTestContext(http.MethodGet, "/v1/whoami", nil)
		ctx := identityDomain.WithPrincipal(c.Request.Context(), identityDomain.UserPrincipal(user))
		c.Request = c.Request.WithContext(ctx)

		handler.WhoAmIHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.PrincipalResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, user.ID, response.ID)
		assert.Equal(t, "admin", response.Role)
	})

	t.Run("Error_NoPrincipal", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/whoami", nil)
		handler.WhoAmIHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
