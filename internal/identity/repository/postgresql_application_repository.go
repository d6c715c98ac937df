package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/authware/authority/internal/database"
	apperrors "github.com/authware/authority/internal/errors"
	"github.com/authware/authority/internal/identity/domain"
)

// PostgreSQLApplicationRepository handles application persistence for PostgreSQL.
type PostgreSQLApplicationRepository struct {
	db *sql.DB
}

// NewPostgreSQLApplicationRepository creates a new PostgreSQLApplicationRepository.
func NewPostgreSQLApplicationRepository(db *sql.DB) *PostgreSQLApplicationRepository {
	return &PostgreSQLApplicationRepository{
		db: db,
	}
}

const applicationSelectColumns = `SELECT id, membership_id, name, secret, role, is_active,
			  created_at, updated_at
			  FROM applications`

// Create inserts a new application.
func (r *PostgreSQLApplicationRepository) Create(ctx context.Context, application *domain.Application) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO applications
			  (id, membership_id, name, secret, role, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		application.ID,
		application.MembershipID,
		application.Name,
		application.Secret,
		application.Role,
		application.IsActive,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrApplicationAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create application")
	}
	return nil
}

// Update modifies an existing application within its membership.
func (r *PostgreSQLApplicationRepository) Update(ctx context.Context, application *domain.Application) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE applications
			  SET name = $3, role = $4, is_active = $5, updated_at = NOW()
			  WHERE membership_id = $1 AND id = $2`

	result, err := querier.ExecContext(
		ctx,
		query,
		application.MembershipID,
		application.ID,
		application.Name,
		application.Role,
		application.IsActive,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update application")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update application")
	}
	if rows == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}

// Get retrieves an application by id within a membership.
func (r *PostgreSQLApplicationRepository) Get(
	ctx context.Context,
	membershipID, applicationID uuid.UUID,
) (*domain.Application, error) {
	querier := database.GetTx(ctx, r.db)

	query := applicationSelectColumns + ` WHERE membership_id = $1 AND id = $2`

	var a domain.Application
	err := querier.QueryRowContext(ctx, query, membershipID, applicationID).Scan(
		&a.ID, &a.MembershipID, &a.Name, &a.Secret, &a.Role, &a.IsActive,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get application by id")
	}
	return &a, nil
}

// List retrieves a membership's applications, newest first.
func (r *PostgreSQLApplicationRepository) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.Application, error) {
	querier := database.GetTx(ctx, r.db)

	query := applicationSelectColumns + ` WHERE membership_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, membershipID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list applications")
	}
	defer func() {
		_ = rows.Close()
	}()

	applications := make([]*domain.Application, 0)
	for rows.Next() {
		var a domain.Application
		if err := rows.Scan(
			&a.ID, &a.MembershipID, &a.Name, &a.Secret, &a.Role, &a.IsActive,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan application")
		}
		applications = append(applications, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list applications")
	}
	return applications, nil
}

// Delete removes an application within its membership.
func (r *PostgreSQLApplicationRepository) Delete(ctx context.Context, membershipID, applicationID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM applications WHERE membership_id = $1 AND id = $2`

	result, err := querier.ExecContext(ctx, query, membershipID, applicationID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete application")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete application")
	}
	if rows == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}
