// Package repository implements persistence for the token revocation store.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/authware/authority/internal/database"
	apperrors "github.com/authware/authority/internal/errors"
	tokenDomain "github.com/authware/authority/internal/token/domain"
)

// PostgreSQLRevokedTokenRepository implements RevokedToken persistence for
// PostgreSQL. Uses transaction support via database.GetTx().
type PostgreSQLRevokedTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLRevokedTokenRepository creates a new PostgreSQL revoked token repository.
func NewPostgreSQLRevokedTokenRepository(db *sql.DB) *PostgreSQLRevokedTokenRepository {
	return &PostgreSQLRevokedTokenRepository{db: db}
}

// Revoke inserts a revocation record for the token id. The insert is the
// serialization point for refresh rotation races: the first writer wins and
// inserted reports whether this call created the record. Returns an error
// only when the store cannot be reached.
func (p *PostgreSQLRevokedTokenRepository) Revoke(
	ctx context.Context,
	revoked *tokenDomain.RevokedToken,
) (inserted bool, err error) {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO revoked_tokens (token_id, membership_id, expires_at, revoked_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (token_id) DO NOTHING`

	result, err := querier.ExecContext(
		ctx,
		query,
		revoked.TokenID,
		revoked.MembershipID,
		revoked.ExpiresAt,
		revoked.RevokedAt,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to revoke token")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to revoke token")
	}
	return rows > 0, nil
}

// IsRevoked reports whether the token id is present in the revocation store.
// Returns an error when the store cannot be reached; callers fail closed.
func (p *PostgreSQLRevokedTokenRepository) IsRevoked(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token_id = $1)`

	var revoked bool
	if err := querier.QueryRowContext(ctx, query, tokenID).Scan(&revoked); err != nil {
		return false, apperrors.Wrap(err, "failed to check token revocation")
	}
	return revoked, nil
}

// DeleteExpired removes revocation records whose token expiry passed before
// the cutoff. Natural expiry makes these records redundant.
func (p *PostgreSQLRevokedTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM revoked_tokens WHERE expires_at < $1`

	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired revoked tokens")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired revoked tokens")
	}
	return rows, nil
}
