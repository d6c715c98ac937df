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

// MySQLRevokedTokenRepository implements RevokedToken persistence for MySQL.
// UUIDs are stored as CHAR(36) strings since MySQL has no native UUID type.
type MySQLRevokedTokenRepository struct {
	db *sql.DB
}

// NewMySQLRevokedTokenRepository creates a new MySQL revoked token repository.
func NewMySQLRevokedTokenRepository(db *sql.DB) *MySQLRevokedTokenRepository {
	return &MySQLRevokedTokenRepository{db: db}
}

// Revoke inserts a revocation record for the token id. INSERT IGNORE makes
// the primary key the rotation serialization point, mirroring the PostgreSQL
// ON CONFLICT DO NOTHING behavior.
func (m *MySQLRevokedTokenRepository) Revoke(
	ctx context.Context,
	revoked *tokenDomain.RevokedToken,
) (inserted bool, err error) {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT IGNORE INTO revoked_tokens (token_id, membership_id, expires_at, revoked_at)
			  VALUES (?, ?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		revoked.TokenID.String(),
		revoked.MembershipID.String(),
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
func (m *MySQLRevokedTokenRepository) IsRevoked(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token_id = ?)`

	var revoked bool
	if err := querier.QueryRowContext(ctx, query, tokenID.String()).Scan(&revoked); err != nil {
		return false, apperrors.Wrap(err, "failed to check token revocation")
	}
	return revoked, nil
}

// DeleteExpired removes revocation records whose token expiry passed before the cutoff.
func (m *MySQLRevokedTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM revoked_tokens WHERE expires_at < ?`

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
