package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	eventDomain "github.com/authware/authority/internal/event/domain"
	"github.com/authware/authority/internal/identity/domain"
)

// mockMembershipRepository is a mock implementation of MembershipRepository for testing.
type mockMembershipRepository struct {
	mock.Mock
}

func (m *mockMembershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *mockMembershipRepository) Update(ctx context.Context, membership *domain.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *mockMembershipRepository) Get(ctx context.Context, membershipID uuid.UUID) (*domain.Membership, error) {
	args := m.Called(ctx, membershipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

func (m *mockMembershipRepository) GetBySlug(ctx context.Context, slug string) (*domain.Membership, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

func (m *mockMembershipRepository) List(ctx context.Context, offset, limit int) ([]*domain.Membership, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Membership), args.Error(1)
}

// mockUserRepository is a mock implementation of UserRepository for testing.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Get(ctx context.Context, membershipID, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, membershipID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByUsername(
	ctx context.Context,
	membershipID uuid.UUID,
	username string,
) (*domain.User, error) {
	args := m.Called(ctx, membershipID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.User, error) {
	args := m.Called(ctx, membershipID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, membershipID, userID uuid.UUID) error {
	args := m.Called(ctx, membershipID, userID)
	return args.Error(0)
}

// mockApplicationRepository is a mock implementation of ApplicationRepository for testing.
type mockApplicationRepository struct {
	mock.Mock
}

func (m *mockApplicationRepository) Create(ctx context.Context, application *domain.Application) error {
	args := m.Called(ctx, application)
	return args.Error(0)
}

func (m *mockApplicationRepository) Update(ctx context.Context, application *domain.Application) error {
	args := m.Called(ctx, application)
	return args.Error(0)
}

func (m *mockApplicationRepository) Get(
	ctx context.Context,
	membershipID, applicationID uuid.UUID,
) (*domain.Application, error) {
	args := m.Called(ctx, membershipID, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *mockApplicationRepository) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.Application, error) {
	args := m.Called(ctx, membershipID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Application), args.Error(1)
}

func (m *mockApplicationRepository) Delete(ctx context.Context, membershipID, applicationID uuid.UUID) error {
	args := m.Called(ctx, membershipID, applicationID)
	return args.Error(0)
}

// mockRoleRepository is a mock implementation of RoleRepository for testing.
type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *mockRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *mockRoleRepository) Get(ctx context.Context, membershipID, roleID uuid.UUID) (*domain.Role, error) {
	args := m.Called(ctx, membershipID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *mockRoleRepository) GetByName(
	ctx context.Context,
	membershipID uuid.UUID,
	name string,
) (*domain.Role, error) {
	args := m.Called(ctx, membershipID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *mockRoleRepository) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.Role, error) {
	args := m.Called(ctx, membershipID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Role), args.Error(1)
}

func (m *mockRoleRepository) Delete(ctx context.Context, membershipID, roleID uuid.UUID) error {
	args := m.Called(ctx, membershipID, roleID)
	return args.Error(0)
}

// mockPasswordService is a mock implementation of identityService.PasswordService.
type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) Verify(password, hash string) bool {
	args := m.Called(password, hash)
	return args.Bool(0)
}

// mockSecretService is a mock implementation of identityService.SecretService.
type mockSecretService struct {
	mock.Mock
}

func (m *mockSecretService) GenerateSecret() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

// passthroughKeyKeeper is a KeyKeeper that stores keys unsealed, prefixing
// sealed values so tests can tell the two forms apart.
type passthroughKeyKeeper struct{}

func (passthroughKeyKeeper) Seal(ctx context.Context, plain string) (string, error) {
	return "sealed:" + plain, nil
}

func (passthroughKeyKeeper) Unseal(ctx context.Context, sealed string) (string, error) {
	return sealed[len("sealed:"):], nil
}

// fakeTxManager runs the callback directly, without a database transaction.
type fakeTxManager struct{}

func (fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingEmitter captures emitted events, safe for concurrent use.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*eventDomain.Event
}

func (r *recordingEmitter) Emit(ctx context.Context, event *eventDomain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) byType(eventType eventDomain.EventType) []*eventDomain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*eventDomain.Event
	for _, e := range r.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
