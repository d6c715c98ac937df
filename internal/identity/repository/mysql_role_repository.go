package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/authware/authority/internal/database"
	apperrors "github.com/authware/authority/internal/errors"
	"github.com/authware/authority/internal/identity/domain"
)

// MySQLRoleRepository handles role persistence for MySQL. Permission and
// forbidden lists are stored as JSON columns since MySQL has no array type.
type MySQLRoleRepository struct {
	db *sql.DB
}

// NewMySQLRoleRepository creates a new MySQLRoleRepository.
func NewMySQLRoleRepository(db *sql.DB) *MySQLRoleRepository {
	return &MySQLRoleRepository{
		db: db,
	}
}

// Create inserts a new role.
func (r *MySQLRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	permissions, forbidden, err := marshalRoleLists(role)
	if err != nil {
		return err
	}

	query := `INSERT INTO roles
			  (id, membership_id, name, description, permissions, forbidden, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())`

	_, err = querier.ExecContext(
		ctx,
		query,
		role.ID.String(),
		role.MembershipID.String(),
		role.Name,
		role.Description,
		permissions,
		forbidden,
	)
	if err != nil {
		if isMySQLDuplicateEntry(err) {
			return domain.ErrRoleAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

// Update modifies an existing role within its membership.
func (r *MySQLRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	permissions, forbidden, err := marshalRoleLists(role)
	if err != nil {
		return err
	}

	query := `UPDATE roles
			  SET description = ?, permissions = ?, forbidden = ?, updated_at = NOW()
			  WHERE membership_id = ? AND id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		role.Description,
		permissions,
		forbidden,
		role.MembershipID.String(),
		role.ID.String(),
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
func (r *MySQLRoleRepository) Get(ctx context.Context, membershipID, roleID uuid.UUID) (*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := roleSelectColumns + ` WHERE membership_id = ? AND id = ?`

	return r.scanOne(
		querier.QueryRowContext(ctx, query, membershipID.String(), roleID.String()),
		"failed to get role by id",
	)
}

// GetByName retrieves a role by name within a membership.
func (r *MySQLRoleRepository) GetByName(
	ctx context.Context,
	membershipID uuid.UUID,
	name string,
) (*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := roleSelectColumns + ` WHERE membership_id = ? AND name = ?`

	return r.scanOne(
		querier.QueryRowContext(ctx, query, membershipID.String(), name),
		"failed to get role by name",
	)
}

// List retrieves a membership's roles, newest first.
func (r *MySQLRoleRepository) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := roleSelectColumns + ` WHERE membership_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, membershipID.String(), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	defer func() {
		_ = rows.Close()
	}()

	roles := make([]*domain.Role, 0)
	for rows.Next() {
		var role domain.Role
		var permissionsJSON, forbiddenJSON []byte
		if err := rows.Scan(
			&role.ID, &role.MembershipID, &role.Name, &role.Description,
			&permissionsJSON, &forbiddenJSON, &role.CreatedAt, &role.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role")
		}
		if err := unmarshalRoleLists(&role, permissionsJSON, forbiddenJSON); err != nil {
			return nil, err
		}
		roles = append(roles, &role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	return roles, nil
}

// Delete removes a role within its membership.
func (r *MySQLRoleRepository) Delete(ctx context.Context, membershipID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM roles WHERE membership_id = ? AND id = ?`

	result, err := querier.ExecContext(ctx, query, membershipID.String(), roleID.String())
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

func (r *MySQLRoleRepository) scanOne(row *sql.Row, msg string) (*domain.Role, error) {
	var role domain.Role
	var permissionsJSON, forbiddenJSON []byte
	err := row.Scan(
		&role.ID, &role.MembershipID, &role.Name, &role.Description,
		&permissionsJSON, &forbiddenJSON, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, msg)
	}
	if err := unmarshalRoleLists(&role, permissionsJSON, forbiddenJSON); err != nil {
		return nil, err
	}
	return &role, nil
}

func marshalRoleLists(role *domain.Role) ([]byte, []byte, error) {
	permissions, err := json.Marshal(role.Permissions)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal role permissions")
	}
	forbidden, err := json.Marshal(role.Forbidden)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal role forbidden list")
	}
	return permissions, forbidden, nil
}

func unmarshalRoleLists(role *domain.Role, permissionsJSON, forbiddenJSON []byte) error {
	if permissionsJSON != nil {
		if err := json.Unmarshal(permissionsJSON, &role.Permissions); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal role permissions")
		}
	}
	if forbiddenJSON != nil {
		if err := json.Unmarshal(forbiddenJSON, &role.Forbidden); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal role forbidden list")
		}
	}
	return nil
}
