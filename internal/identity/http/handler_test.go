package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/authware/authority/internal/identity/domain"
	"github.com/authware/authority/internal/rbac"
)

// MockMembershipUseCase is a mock implementation of MembershipUseCase for testing.
type MockMembershipUseCase struct {
	mock.Mock
}

func (m *MockMembershipUseCase) Create(
	ctx context.Context,
	input *identityDomain.CreateMembershipInput,
) (*identityDomain.CreateMembershipOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.CreateMembershipOutput), args.Error(1)
}

func (m *MockMembershipUseCase) Update(
	ctx context.Context,
	membershipID uuid.UUID,
	input *identityDomain.UpdateMembershipInput,
) (*identityDomain.Membership, error) {
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

// MockUserUseCase is a mock implementation of UserUseCase for testing.
type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) Create(
	ctx context.Context,
	input *identityDomain.CreateUserInput,
) (*identityDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

func (m *MockUserUseCase) Update(
	ctx context.Context,
	membershipID, userID uuid.UUID,
	input *identityDomain.UpdateUserInput,
) (*identityDomain.User, error) {
	args := m.Called(ctx, membershipID, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

func (m *MockUserUseCase) Get(ctx context.Context, membershipID, userID uuid.UUID) (*identityDomain.User, error) {
	args := m.Called(ctx, membershipID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

func (m *MockUserUseCase) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*identityDomain.User, error) {
	args := m.Called(ctx, membershipID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identityDomain.User), args.Error(1)
}

func (m *MockUserUseCase) Delete(ctx context.Context, membershipID, userID uuid.UUID) error {
	args := m.Called(ctx, membershipID, userID)
	return args.Error(0)
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

// MockRoleUseCase is a mock implementation of RoleUseCase for testing.
type MockRoleUseCase struct {
	mock.Mock
}

func (m *MockRoleUseCase) Create(
	ctx context.Context,
	input *identityDomain.CreateRoleInput,
) (*identityDomain.Role, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Role), args.Error(1)
}

func (m *MockRoleUseCase) Update(
	ctx context.Context,
	membershipID, roleID uuid.UUID,
	input *identityDomain.UpdateRoleInput,
) (*identityDomain.Role, error) {
	args := m.Called(ctx, membershipID, roleID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Role), args.Error(1)
}

func (m *MockRoleUseCase) Get(ctx context.Context, membershipID, roleID uuid.UUID) (*identityDomain.Role, error) {
	args := m.Called(ctx, membershipID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Role), args.Error(1)
}

func (m *MockRoleUseCase) GetByName(
	ctx context.Context,
	membershipID uuid.UUID,
	name string,
) (*identityDomain.Role, error) {
	args := m.Called(ctx, membershipID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Role), args.Error(1)
}

func (m *MockRoleUseCase) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*identityDomain.Role, error) {
	args := m.Called(ctx, membershipID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identityDomain.Role), args.Error(1)
}

func (m *MockRoleUseCase) Delete(ctx context.Context, membershipID, roleID uuid.UUID) error {
	args := m.Called(ctx, membershipID, roleID)
	return args.Error(0)
}

func (m *MockRoleUseCase) CheckPermission(
	ctx context.Context,
	membershipID uuid.UUID,
	roleName string,
	requested rbac.Rbac,
) (bool, error) {
	args := m.Called(ctx, membershipID, roleName, requested)
	return args.Bool(0), args.Error(1)
}

// discardLogger returns a logger that writes nowhere.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
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

// authenticateContext stores a user principal in the request context, the way
// the authentication middleware does.
func authenticateContext(c *gin.Context, membershipID uuid.UUID, role string) *identityDomain.Principal {
	user := &identityDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		MembershipID: membershipID,
		Username:     "operator",
		Role:         role,
	}
	principal := identityDomain.UserPrincipal(user)
	ctx := identityDomain.WithPrincipal(c.Request.Context(), principal)
	c.Request = c.Request.WithContext(ctx)
	return principal
}

func init() {
	gin.SetMode(gin.TestMode)
}
