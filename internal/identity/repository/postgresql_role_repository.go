package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/authware/authority/internal/database"
	apperrors "github.com/authware/authority/internal/errors"
	"github.com/authware/authority/internal/identity/domain"
)

// PostgreSQLRoleRepository handles role persistence for PostgreSQL.
// Permission and forbidden lists are stored as text[] columns.
type PostgreSQLRoleRepository struct {
	db *sql.DB
}

// NewPostgreSQLRoleRepository creates a new PostgreSQLRoleRepository.
func NewPostgreSQLRoleRepository(db *sql.DB) *PostgreSQLRoleRepository {
	return &PostgreSQLRoleRepository{
		db: db,
	}
}

const roleSelectColumns = `SELECT id, membership_id, name, description, permissions, forbidden,
			  created_at, updated_at
			  FROM roles`

// Create inserts a new role.
func (r *PostgreSQLRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO roles
			  (id, membership_id, name, description, permissions, forbidden, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		role.ID,
		role.MembershipID,
		role.Name,
		role.Description,
		pq.Array(role.Permissions),
		pq.Array(role.Forbidden),
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrRoleAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

// Update modifies an existing role within its membership.
func (r *PostgreSQLRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE roles
			  SET description = $3, permissions = $4, forbidden = $5, updated_at = NOW()
			  WHERE membership_id = $1 AND id = $2`

	result, err := querier.ExecContext(
		ctx,
		query,
		role.MembershipID,
		role.ID,
		role.Description,
		pq.Array(role.Permissions),
		pq.Array(role.Forbidden),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update role")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update role")
	}
	if rows == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

// Get retrieves a role by id within a membership.
func (r *PostgreSQLRoleRepository) Get(ctx context.Context, membershipID, roleID uuid.UUID) (*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := roleSelectColumns + ` WHERE membership_id = $1 AND id = $2`

	return r.scanOne(querier.QueryRowContext(ctx, query, membershipID, roleID), "failed to get role by id")
}

// GetByName retrieves a role by name within a membership. Role references
// from users and applications resolve through this lookup.
func (r *PostgreSQLRoleRepository) GetByName(
	ctx context.Context,
	membershipID uuid.UUID,
	name string,
) (*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := roleSelectColumns + ` WHERE membership_id = $1 AND name = $2`

	return r.scanOne(querier.QueryRowContext(ctx, query, membershipID, name), "failed to get role by name")
}

// List retrieves a membership's roles, newest first.
func (r *PostgreSQLRoleRepository) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := roleSelectColumns + ` WHERE membership_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, membershipID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	defer func() {
		_ = rows.Close()
	}()

	roles := make([]*domain.Role, 0)
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(
			&role.ID, &role.MembershipID, &role.Name, &role.Description,
			pq.Array(&role.Permissions), pq.Array(&role.Forbidden),
			&role.CreatedAt, &role.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role")
		}
		roles = append(roles, &role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	return roles, nil
}

// Delete removes a role within its membership.
func (r *PostgreSQLRoleRepository) Delete(ctx context.Context, membershipID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM roles WHERE membership_id = $1 AND id = $2`

	result, err := querier.ExecContext(ctx, query, membershipID, roleID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role")
	}
	if rows == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

func (r *PostgreSQLRoleRepository) scanOne(row *sql.Row, msg string) (*domain.Role, error) {
	var role domain.Role
	err := row.Scan(
		&role.ID, &role.MembershipID, &role.Name, &role.Description,
		pq.Array(&role.Permissions), pq.Array(&role.Forbidden),
		&role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, msg)
	}
	return &role, nil
}
