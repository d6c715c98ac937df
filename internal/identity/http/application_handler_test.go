package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/authware/authority/internal/identity/domain"
	"github.com/authware/authority/internal/identity/http/dto"
)

func testApplication(membershipID uuid.UUID) *identityDomain.Application {
	now := time.Now().UTC()
	return &identityDomain.Application{
		ID:           uuid.Must(uuid.NewV7()),
		MembershipID: membershipID,
		Name:         "reporting-service",
		Secret:       "argon2id-hash",
		Role:         "readonly",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestApplicationHandler_CreateApplicationHandler(t *testing.T) {
	t.Run("Success_PlainSecretReturnedOnce", func(t *testing.T) {
		mockUseCase := &MockApplicationUseCase{}
		handler := NewApplicationHandler(mockUseCase, discardLogger())

		membershipID := uuid.Must(uuid.NewV7())
		output := &identityDomain.CreateApplicationOutput{
			Application: testApplication(membershipID),
			PlainSecret: "plain-generated-secret",
		}

		mockUseCase.On("Create", mock.Anything, mock.MatchedBy(func(input *identityDomain.CreateApplicationInput) bool {
			return input.MembershipID == membershipID && input.Name == "reporting-service"
		})).Return(output, nil).Once()

		request := dto.CreateApplicationRequest{
			Name:     "reporting-service",
			Role:     "readonly",
			IsActive: true,
		}

		c, w := createTestContext(http.MethodPost, "/v1/applications", request)
		authenticateContext(c, membershipID, "admin")

		handler.CreateApplicationHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.CreateApplicationResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "plain-generated-secret", response.Secret)
		assert.Equal(t, "reporting-service", response.Name)
	})

	t.Run("Error_BlankName", func(t *testing.T) {
		mockUseCase := &MockApplicationUseCase{}
		handler := NewApplicationHandler(mockUseCase, discardLogger())

		request := dto.CreateApplicationRequest{Name: "   ", Role: "readonly"}

		c, w := createTestContext(http.MethodPost, "/v1/applications", request)
		authenticateContext(c, uuid.Must(uuid.NewV7()), "admin")

		handler.CreateApplicationHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Create")
	})

	t.Run("Error_UnknownRole", func(t *testing.T) {
		mockUseCase := &MockApplicationUseCase{}
		handler := NewApplicationHandler(mockUseCase, discardLogger())

		mockUseCase.On("Create", mock.Anything, mock.Anything).
			Return(nil, identityDomain.ErrRoleNotFound).Once()

		request := dto.CreateApplicationRequest{Name: "reporting-service", Role: "ghost-role"}

		c, w := createTestContext(http.MethodPost, "/v1/applications", request)
		authenticateContext(c, uuid.Must(uuid.NewV7()), "admin")

		handler.CreateApplicationHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestApplicationHandler_GetApplicationHandler(t *testing.T) {
	t.Run("Success_HashedSecretNotExposed", func(t *testing.T) {
		mockUseCase := &MockApplicationUseCase{}
		handler := NewApplicationHandler(mockUseCase, discardLogger())

		membershipID := uuid.Must(uuid.NewV7())
		application := testApplication(membershipID)

		mockUseCase.On("Get", mock.Anything, membershipID, application.ID).
			Return(application, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/applications/"+application.ID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: application.ID.String()}}
		authenticateContext(c, membershipID, "admin")

		handler.GetApplicationHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var raw map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		assert.NotContains(t, raw, "secret")
	})

	t.Run("Error_MalformedID", func(t *testing.T) {
		mockUseCase := &MockApplicationUseCase{}
		handler := NewApplicationHandler(mockUseCase, discardLogger())

		c, w := createTestContext(http.MethodGet, "/v1/applications/xyz", nil)
		c.Params = gin.Params{{Key: "id", Value: "xyz"}}
		authenticateContext(c, uuid.Must(uuid.NewV7()), "admin")

		handler.GetApplicationHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Get")
	})
}

func TestApplicationHandler_DeleteApplicationHandler(t *testing.T) {
	t.Run("Success_NoContent", func(t *testing.T) {
		mockUseCase := &MockApplicationUseCase{}
		handler := NewApplicationHandler(mockUseCase, discardLogger())

		membershipID := uuid.Must(uuid.NewV7())
		applicationID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Delete", mock.Anything, membershipID, applicationID).Return(nil).Once()

		c, w := createTestContext(http.MethodDelete, "/v1/applications/"+applicationID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: applicationID.String()}}
		authenticateContext(c, membershipID, "admin")

		handler.DeleteApplicationHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mockUseCase := &MockApplicationUseCase{}
		handler := NewApplicationHandler(mockUseCase, discardLogger())

		membershipID := uuid.Must(uuid.NewV7())
		applicationID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Delete", mock.Anything, membershipID, applicationID).
			Return(identityDomain.ErrApplicationNotFound).Once()

		c, w := createTestContext(http.MethodDelete, "/v1/applications/"+applicationID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: applicationID.String()}}
		authenticateContext(c, membershipID, "admin")

		handler.DeleteApplicationHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
