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

// MySQLMembershipRepository handles membership persistence for MySQL.
// UUIDs are stored as CHAR(36) strings.
type MySQLMembershipRepository struct {
	db *sql.DB
}

// NewMySQLMembershipRepository creates a new MySQLMembershipRepository.
func NewMySQLMembershipRepository(db *sql.DB) *MySQLMembershipRepository {
	return &MySQLMembershipRepository{
		db: db,
	}
}

// Create inserts a new membership.
func (r *MySQLMembershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO memberships
			  (id, name, slug, expires_in, refresh_token_expires_in, secret_key,
			   hash_algorithm, default_encoding, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		membership.ID.String(),
		membership.Name,
		membership.Slug,
		membership.ExpiresIn,
		membership.RefreshTokenExpiresIn,
		membership.SecretKey,
		membership.HashAlgorithm,
		membership.DefaultEncoding,
	)
	if err != nil {
		if isMySQLDuplicateEntry(err) {
			return domain.ErrMembershipAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create membership")
	}
	return nil
}

// Update modifies an existing membership.
func (r *MySQLMembershipRepository) Update(ctx context.Context, membership *domain.Membership) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE memberships
			  SET name = ?, expires_in = ?, refresh_token_expires_in = ?,
			      secret_key = ?, hash_algorithm = ?, default_encoding = ?,
			      updated_at = NOW()
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		membership.Name,
		membership.ExpiresIn,
		membership.RefreshTokenExpiresIn,
		membership.SecretKey,
		membership.HashAlgorithm,
		membership.DefaultEncoding,
		membership.ID.String(),
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
func (r *MySQLMembershipRepository) Get(ctx context.Context, membershipID uuid.UUID) (*domain.Membership, error) {
	querier := database.GetTx(ctx, r.db)

	query := membershipSelectColumns + ` WHERE id = ?`

	return r.scanOne(querier.QueryRowContext(ctx, query, membershipID.String()), "failed to get membership by id")
}

// GetBySlug retrieves a membership by slug.
func (r *MySQLMembershipRepository) GetBySlug(ctx context.Context, slug string) (*domain.Membership, error) {
	querier := database.GetTx(ctx, r.db)

	query := membershipSelectColumns + ` WHERE slug = ?`

	return r.scanOne(querier.QueryRowContext(ctx, query, slug), "failed to get membership by slug")
}

// List retrieves memberships ordered by creation, newest first.
func (r *MySQLMembershipRepository) List(ctx context.Context, offset, limit int) ([]*domain.Membership, error) {
	querier := database.GetTx(ctx, r.db)

	query := membershipSelectColumns + ` ORDER BY id DESC LIMIT ? OFFSET ?`

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

func (r *MySQLMembershipRepository) scanOne(row *sql.Row, msg string) (*domain.Membership, error) {
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
