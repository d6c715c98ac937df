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

// MySQLApplicationRepository handles application persistence for MySQL.
type MySQLApplicationRepository struct {
	db *sql.DB
}

// NewMySQLApplicationRepository creates a new MySQLApplicationRepository.
func NewMySQLApplicationRepository(db *sql.DB) *MySQLApplicationRepository {
	return &MySQLApplicationRepository{
		db: db,
	}
}

// Create inserts a new application.
func (r *MySQLApplicationRepository) Create(ctx context.Context, application *domain.Application) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO applications
			  (id, membership_id, name, secret, role, is_active, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		application.ID.String(),
		application.MembershipID.String(),
		application.Name,
		application.Secret,
		application.Role,
		application.IsActive,
	)
	if err != nil {
		if isMySQLDuplicateEntry(err) {
			return domain.ErrApplicationAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create application")
	}
	return nil
}

// Update modifies an existing application within its membership.
func (r *MySQLApplicationRepository) Update(ctx context.Context, application *domain.Application) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE applications
			  SET name = ?, role = ?, is_active = ?, updated_at = NOW()
			  WHERE membership_id = ? AND id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		application.Name,
		application.Role,
		application.IsActive,
		application.MembershipID.String(),
		application.ID.String(),
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
func (r *MySQLApplicationRepository) Get(
	ctx context.Context,
	membershipID, applicationID uuid.UUID,
) (*domain.Application, error) {
	querier := database.GetTx(ctx, r.db)

	query := applicationSelectColumns + ` WHERE membership_id = ? AND id = ?`

	var a domain.Application
	err := querier.QueryRowContext(ctx, query, membershipID.String(), applicationID.String()).Scan(
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
func (r *MySQLApplicationRepository) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.Application, error) {
	querier := database.GetTx(ctx, r.db)

	query := applicationSelectColumns + ` WHERE membership_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, membershipID.String(), limit, offset)
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
func (r *MySQLApplicationRepository) Delete(ctx context.Context, membershipID, applicationID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM applications WHERE membership_id = ? AND id = ?`

	result, err := querier.ExecContext(ctx, query, membershipID.String(), applicationID.String())
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
