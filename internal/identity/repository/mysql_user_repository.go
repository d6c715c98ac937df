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

// MySQLUserRepository handles user persistence for MySQL.
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

// Create inserts a new user.
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users
			  (id, membership_id, username, email, first_name, last_name,
			   password_hash, role, is_active, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID.String(),
		user.MembershipID.String(),
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
	)
	if err != nil {
		if isMySQLDuplicateEntry(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Update modifies an existing user within its membership.
func (r *MySQLUserRepository) Update(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users
			  SET email = ?, first_name = ?, last_name = ?, password_hash = ?,
			      role = ?, is_active = ?, updated_at = NOW()
			  WHERE membership_id = ? AND id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.MembershipID.String(),
		user.ID.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update user")
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Get retrieves a user by id within a membership.
func (r *MySQLUserRepository) Get(ctx context.Context, membershipID, userID uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := userSelectColumns + ` WHERE membership_id = ? AND id = ?`

	return r.scanOne(
		querier.QueryRowContext(ctx, query, membershipID.String(), userID.String()),
		"failed to get user by id",
	)
}

// GetByUsername retrieves a user by username within a membership.
func (r *MySQLUserRepository) GetByUsername(
	ctx context.Context,
	membershipID uuid.UUID,
	username string,
) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := userSelectColumns + ` WHERE membership_id = ? AND username = ?`

	return r.scanOne(
		querier.QueryRowContext(ctx, query, membershipID.String(), username),
		"failed to get user by username",
	)
}

// List retrieves a membership's users, newest first.
func (r *MySQLUserRepository) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := userSelectColumns + ` WHERE membership_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, membershipID.String(), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}
	defer func() {
		_ = rows.Close()
	}()

	users := make([]*domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.MembershipID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
			&u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan user")
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}
	return users, nil
}

// Delete removes a user within its membership.
func (r *MySQLUserRepository) Delete(ctx context.Context, membershipID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM users WHERE membership_id = ? AND id = ?`

	result, err := querier.ExecContext(ctx, query, membershipID.String(), userID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user")
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MySQLUserRepository) scanOne(row *sql.Row, msg string) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.MembershipID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, msg)
	}
	return &u, nil
}
