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

// PostgreSQLUserRepository handles user persistence for PostgreSQL. All
// lookups are scoped to a membership; users are never addressed globally.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{
		db: db,
	}
}

const userSelectColumns = `SELECT id, membership_id, username, email, first_name, last_name,
			  password_hash, role, is_active, created_at, updated_at
			  FROM users`

// Create inserts a new user.
func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users
			  (id, membership_id, username, email, first_name, last_name,
			   password_hash, role, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.MembershipID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Update modifies an existing user within its membership.
func (r *PostgreSQLUserRepository) Update(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users
			  SET email = $3, first_name = $4, last_name = $5, password_hash = $6,
			      role = $7, is_active = $8, updated_at = NOW()
			  WHERE membership_id = $1 AND id = $2`

	result, err := querier.ExecContext(
		ctx,
		query,
		user.MembershipID,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
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
func (r *PostgreSQLUserRepository) Get(ctx context.Context, membershipID, userID uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := userSelectColumns + ` WHERE membership_id = $1 AND id = $2`

	return r.scanOne(querier.QueryRowContext(ctx, query, membershipID, userID), "failed to get user by id")
}

// GetByUsername retrieves a user by username within a membership.
func (r *PostgreSQLUserRepository) GetByUsername(
	ctx context.Context,
	membershipID uuid.UUID,
	username string,
) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := userSelectColumns + ` WHERE membership_id = $1 AND username = $2`

	return r.scanOne(querier.QueryRowContext(ctx, query, membershipID, username), "failed to get user by username")
}

// List retrieves a membership's users, newest first.
func (r *PostgreSQLUserRepository) List(
	ctx context.Context,
	membershipID uuid.UUID,
	offset, limit int,
) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := userSelectColumns + ` WHERE membership_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, membershipID, limit, offset)
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
func (r *PostgreSQLUserRepository) Delete(ctx context.Context, membershipID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM users WHERE membership_id = $1 AND id = $2`

	result, err := querier.ExecContext(ctx, query, membershipID, userID)
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

func (r *PostgreSQLUserRepository) scanOne(row *sql.Row, msg string) (*domain.User, error) {
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
