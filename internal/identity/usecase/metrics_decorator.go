package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/authware/authority/internal/identity/domain"
	"github.com/authware/authority/internal/metrics"
	"github.com/authware/authority/internal/rbac"
)

// membershipUseCaseWithMetrics decorates MembershipUseCase with metrics instrumentation.
type membershipUseCaseWithMetrics struct {
	next    MembershipUseCase
	metrics metrics.BusinessMetrics
}

// NewMembershipUseCaseWithMetrics wraps a MembershipUseCase with metrics recording.
func NewMembershipUseCaseWithMetrics(useCase MembershipUseCase, m metrics.BusinessMetrics) MembershipUseCase {
	return &membershipUseCaseWithMetrics{next: useCase, metrics: m}
}

func (d *membershipUseCaseWithMetrics) Create(
	ctx context.Context,
	input *domain.CreateMembershipInput,
) (*domain.CreateMembershipOutput, error) {
	start := time.Now()
	output, err := d.next.Create(ctx, input)
	record(ctx, d.metrics, "membership", "create", start, err)
	return output, err
}

func (d *membershipUseCaseWithMetrics) Update(
	ctx context.Context,
	membershipID uuid.UUID,
	input *domain.UpdateMembershipInput,
) (*domain.Membership, error) {
	start := time.Now()
	membership, err := d.next.Update(ctx, membershipID, input)
	record(ctx, d.metrics, "membership", "update", start, err)
	return membership, err
}

func (d *membershipUseCaseWithMetrics) Get(ctx context.Context, membershipID uuid.UUID) (*domain.Membership, error) {
	start := time.Now()
	membership, err := d.next.Get(ctx, membershipID)
	record(ctx, d.metrics, "membership", "get", start, err)
	return membership, err
}

func (d *membershipUseCaseWithMetrics) GetBySlug(ctx context.Context, slug string) (*domain.Membership, error) {
	start := time.Now()
	membership, err := d.next.GetBySlug(ctx, slug)
	record(ctx, d.metrics, "membership", "get_by_slug", start, err)
	return membership, err
}

func (d *membershipUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*domain.Membership, error) {
	start := time.Now()
	memberships, err := d.next.List(ctx, offset, limit)
	record(ctx, d.metrics, "membership", "list", start, err)
	return memberships, err
}

// userUseCaseWithMetrics decorates UserUseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UserUseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UserUseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UserUseCase, m metrics.BusinessMetrics) UserUseCase {
	return &userUseCaseWithMetrics{next: useCase, metrics: m}
}

func (d *userUseCaseWithMetrics) Create(ctx context.Context, input *domain.CreateUserInput) (*domain.User, error) {
	start := time.Now()
	user, err := d.next.Create(ctx, input)
	record(ctx, d.metrics, "user", "create", start, err)
	return user, err
}

func (d *userUseCaseWithMetrics) Update(
	ctx context.Context,
	membershipID, userID uuid.UUID,
	input *domain.UpdateUserInput,
) (*domain.User, error) {
	start := time.Now()
	user, err := d.next.Update(ctx, membershipID, userID, input)
	record(ctx, d.metrics, "user", "update", start, err)
	return user, err
}

func (d *userUseCaseWithMetrics) Get(ctx context.Context, membershipID, userID uuid.UUID) (*domain.User, error) {
	start := time.Now()
	user, err := d.next.Get(ctx, membershipID, userID)
	record(ctx, d.metrics, "user", "get", start, err)
	return user, err
}

func (d *userUseCaseWithMetrics) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.User, error) {
	start := time.Now()
	users, err := d.next.List(ctx, membershipID, offset, limit)
	record(ctx, d.metrics, "user", "list", start, err)
	return users, err
}

func (d *userUseCaseWithMetrics) Delete(ctx context.Context, membershipID, userID uuid.UUID) error {
	start := time.Now()
	err := d.next.Delete(ctx, membershipID, userID)
	record(ctx, d.metrics, "user", "delete", start, err)
	return err
}

// applicationUseCaseWithMetrics decorates ApplicationUseCase with metrics instrumentation.
type applicationUseCaseWithMetrics struct {
	next    ApplicationUseCase
	metrics metrics.BusinessMetrics
}

// NewApplicationUseCaseWithMetrics wraps an ApplicationUseCase with metrics recording.
func NewApplicationUseCaseWithMetrics(useCase ApplicationUseCase, m metrics.BusinessMetrics) ApplicationUseCase {
	return &applicationUseCaseWithMetrics{next: useCase, metrics: m}
}

func (d *applicationUseCaseWithMetrics) Create(
	ctx context.Context,
	input *domain.CreateApplicationInput,
) (*domain.CreateApplicationOutput, error) {
	start := time.Now()
	output, err := d.next.Create(ctx, input)
	record(ctx, d.metrics, "application", "create", start, err)
	return output, err
}

func (d *applicationUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	membershipID, applicationID uuid.UUID,
	plainSecret string,
) (*domain.Application, error) {
	start := time.Now()
	application, err := d.next.Authenticate(ctx, membershipID, applicationID, plainSecret)
	record(ctx, d.metrics, "application", "authenticate", start, err)
	return application, err
}

func (d *applicationUseCaseWithMetrics) Get(
	ctx context.Context,
	membershipID, applicationID uuid.UUID,
) (*domain.Application, error) {
	start := time.Now()
	application, err := d.next.Get(ctx, membershipID, applicationID)
	record(ctx, d.metrics, "application", "get", start, err)
	return application, err
}

func (d *applicationUseCaseWithMetrics) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.Application, error) {
	start := time.Now()
	applications, err := d.next.List(ctx, membershipID, offset, limit)
	record(ctx, d.metrics, "application", "list", start, err)
	return applications, err
}

func (d *applicationUseCaseWithMetrics) Delete(ctx context.Context, membershipID, applicationID uuid.UUID) error {
	start := time.Now()
	err := d.next.Delete(ctx, membershipID, applicationID)
	record(ctx, d.metrics, "application", "delete", start, err)
	return err
}

// roleUseCaseWithMetrics decorates RoleUseCase with metrics instrumentation.
type roleUseCaseWithMetrics struct {
	next    RoleUseCase
	metrics metrics.BusinessMetrics
}

// NewRoleUseCaseWithMetrics wraps a RoleUseCase with metrics recording.
func NewRoleUseCaseWithMetrics(useCase RoleUseCase, m metrics.BusinessMetrics) RoleUseCase {
	return &roleUseCaseWithMetrics{next: useCase, metrics: m}
}

func (d *roleUseCaseWithMetrics) Create(ctx context.Context, input *domain.CreateRoleInput) (*domain.Role, error) {
	start := time.Now()
	role, err := d.next.Create(ctx, input)
	record(ctx, d.metrics, "role", "create", start, err)
	return role, err
}

func (d *roleUseCaseWithMetrics) Update(
	ctx context.Context,
	membershipID, roleID uuid.UUID,
	input *domain.UpdateRoleInput,
) (*domain.Role, error) {
	start := time.Now()
	role, err := d.next.Update(ctx, membershipID, roleID, input)
	record(ctx, d.metrics, "role", "update", start, err)
	return role, err
}

func (d *roleUseCaseWithMetrics) Get(ctx context.Context, membershipID, roleID uuid.UUID) (*domain.Role, error) {
	start := time.Now()
	role, err := d.next.Get(ctx, membershipID, roleID)
	record(ctx, d.metrics, "role", "get", start, err)
	return role, err
}

func (d *roleUseCaseWithMetrics) GetByName(
	ctx context.Context,
	membershipID uuid.UUID,
	name string,
) (*domain.Role, error) {
	start := time.Now()
	role, err := d.next.GetByName(ctx, membershipID, name)
	record(ctx, d.metrics, "role", "get_by_name", start, err)
	return role, err
}

func (d *roleUseCaseWithMetrics) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.Role, error) {
	start := time.Now()
	roles, err := d.next.List(ctx, membershipID, offset, limit)
	record(ctx, d.metrics, "role", "list", start, err)
	return roles, err
}

func (d *roleUseCaseWithMetrics) Delete(ctx context.Context, membershipID, roleID uuid.UUID) error {
	start := time.Now()
	err := d.next.Delete(ctx, membershipID, roleID)
	record(ctx, d.metrics, "role", "delete", start, err)
	return err
}

func (d *roleUseCaseWithMetrics) CheckPermission(
	ctx context.Context,
	membershipID uuid.UUID,
	roleName string,
	requested rbac.Rbac,
) (bool, error) {
	start := time.Now()
	allowed, err := d.next.CheckPermission(ctx, membershipID, roleName, requested)
	record(ctx, d.metrics, "role", "check_permission", start, err)
	return allowed, err
}

func record(
	ctx context.Context,
	m metrics.BusinessMetrics,
	domainName, operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RecordOperation(ctx, domainName, operation, status)
	m.RecordDuration(ctx, domainName, operation, time.Since(start), status)
}
