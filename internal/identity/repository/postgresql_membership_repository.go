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

// PostgreSQLMembershipRepository handles membership persistence for PostgreSQL.
type PostgreSQLMembershipRepository struct {
	db *sql.DB
}

// NewPostgreSQLMembershipRepository creates a new PostgreSQLMembershipRepository.
func NewPostgreSQLMembershipRepository(db *sql.DB) *PostgreSQLMembershipRepository {
	return &PostgreSQLMembershipRepository{
		db: db,
	}
}

// Create inserts a new membership.
func (r *PostgreSQLMembershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO memberships
			  (id, name, slug, expires_in, refresh_token_expires_in, secret_key,
			   hash_algorithm, default_encoding, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		membership.ID,
		membership.Name,
		membership.Slug,
		membership.ExpiresIn,
		membership.RefreshTokenExpiresIn,
		membership.SecretKey,
		membership.HashAlgorithm,
		membership.DefaultEncoding,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrMembershipAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create membership")
	}
	return nil
}

// Update modifies an existing membership.
func (r *PostgreSQLMembershipRepository) Update(ctx context.Context, membership *domain.Membership) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE memberships
			  SET name = $2, expires_in = $3, refresh_token_expires_in = $4,
			      secret_key = $5, hash_algorithm = $6, default_encoding = $7,
			      updated_at = NOW()
			  WHERE id = $1`

	result, err := querier.ExecContext(
		ctx,
		query,
		membership.ID,
		membership.Name,
		membership.ExpiresIn,
		membership.RefreshTokenExpiresIn,
		membership.SecretKey,
		membership.HashAlgorithm,
		membership.DefaultEncoding,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update membership")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update membership")
	}
	if rows == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}

// Get retrieves a membership by id.
func (r *PostgreSQLMembershipRepository) Get(ctx context.Context, membershipID uuid.UUID) (*domain.Membership, error) {
	querier := database.GetTx(ctx, r.db)

	query := membershipSelectColumns + ` WHERE id = $1`

	return r.scanOne(querier.QueryRowContext(ctx, query, membershipID), "failed to get membership by id")
}

// GetBySlug retrieves a membership by slug.
func (r *PostgreSQLMembershipRepository) GetBySlug(ctx context.Context, slug string) (*domain.Membership, error) {
	querier := database.GetTx(ctx, r.db)

	query := membershipSelectColumns + ` WHERE slug = $1`

	return r.scanOne(querier.QueryRowContext(ctx, query, slug), "failed to get membership by slug")
}

// List retrieves memberships ordered by creation, newest first.
func (r *PostgreSQLMembershipRepository) List(ctx context.Context, offset, limit int) ([]*domain.Membership, error) {
	querier := database.GetTx(ctx, r.db)

	query := membershipSelectColumns + ` ORDER BY id DESC LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list memberships")
	}
	defer func() {
		_ = rows.Close()
	}()

	memberships := make([]*domain.Membership, 0)
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Slug, &m.ExpiresIn, &m.RefreshTokenExpiresIn,
			&m.SecretKey, &m.HashAlgorithm, &m.DefaultEncoding, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan membership")
		}
		memberships = append(memberships, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list memberships")
	}
	return memberships, nil
}

const membershipSelectColumns = `SELECT id, name, slug, expires_in, refresh_token_expires_in,
			  secret_key, hash_algorithm, default_encoding, created_at, updated_at
			  FROM memberships`

func (r *PostgreSQLMembershipRepository) scanOne(row *sql.Row, msg string) (*domain.Membership, error) {
	var m domain.Membership
	err := row.Scan(
		&m.ID, &m.Name, &m.Slug, &m.ExpiresIn, &m.RefreshTokenExpiresIn,
		&m.SecretKey, &m.HashAlgorithm, &m.DefaultEncoding, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, apperrors.Wrap(err, msg)
	}
	return &m, nil
}
