package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authware/authority/internal/identity/domain"
)

func membershipRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "slug", "expires_in", "refresh_token_expires_in",
		"secret_key", "hash_algorithm", "default_encoding", "created_at", "updated_at",
	})
}

func TestPostgreSQLMembershipRepository_Create(t *testing.T) {
	ctx := context.Background()
	insertQuery := regexp.QuoteMeta(`INSERT INTO memberships`)

	membership := &domain.Membership{
		ID:                    uuid.Must(uuid.NewV7()),
		Name:                  "Acme",
		Slug:                  "acme",
		ExpiresIn:             3600,
		RefreshTokenExpiresIn: 86400,
		SecretKey:             "sealed-key",
		HashAlgorithm:         domain.HS256,
		DefaultEncoding:       domain.EncodingUTF8,
	}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(insertQuery).
			WithArgs(
				membership.ID, membership.Name, membership.Slug,
				membership.ExpiresIn, membership.RefreshTokenExpiresIn,
				membership.SecretKey, membership.HashAlgorithm, membership.DefaultEncoding,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewPostgreSQLMembershipRepository(db)
		require.NoError(t, repo.Create(ctx, membership))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate slug", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(insertQuery).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "memberships_slug_key"`))

		repo := NewPostgreSQLMembershipRepository(db)
		err = repo.Create(ctx, membership)
		assert.ErrorIs(t, err, domain.ErrMembershipAlreadyExists)
	})
}

func TestPostgreSQLMembershipRepository_Get(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found by id", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		id := uuid.Must(uuid.NewV7())
		mock.ExpectQuery(`SELECT .* FROM memberships WHERE id`).
			WithArgs(id).
			WillReturnRows(membershipRows().AddRow(
				id, "Acme", "acme", int64(3600), int64(86400),
				"sealed-key", "HS256", "utf8", now, now,
			))

		repo := NewPostgreSQLMembershipRepository(db)
		membership, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, membership.ID)
		assert.Equal(t, "acme", membership.Slug)
		assert.Equal(t, domain.HS256, membership.HashAlgorithm)
		assert.Equal(t, int64(3600), membership.ExpiresIn)
	})

	t.Run("not found by slug", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .* FROM memberships WHERE slug`).
			WithArgs("ghost").
			WillReturnRows(membershipRows())

		repo := NewPostgreSQLMembershipRepository(db)
		_, err = repo.GetBySlug(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrMembershipNotFound)
	})
}

func TestPostgreSQLRoleRepository_GetByName(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("parses permission arrays", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		membershipID := uuid.Must(uuid.NewV7())
		roleID := uuid.Must(uuid.NewV7())
		rows := sqlmock.NewRows([]string{
			"id", "membership_id", "name", "description", "permissions", "forbidden",
			"created_at", "updated_at",
		}).AddRow(
			roleID, membershipID, "admin", "administrators",
			[]byte(`{"*.users.*.*","*.roles.read.*"}`), []byte(`{"*.roles.delete.*"}`),
			now, now,
		)
		mock.ExpectQuery(`SELECT .* FROM roles WHERE membership_id`).
			WithArgs(membershipID, "admin").
			WillReturnRows(rows)

		repo := NewPostgreSQLRoleRepository(db)
		role, err := repo.GetByName(ctx, membershipID, "admin")
		require.NoError(t, err)
		assert.Equal(t, []string{"*.users.*.*", "*.roles.read.*"}, role.Permissions)
		assert.Equal(t, []string{"*.roles.delete.*"}, role.Forbidden)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		membershipID := uuid.Must(uuid.NewV7())
		mock.ExpectQuery(`SELECT .* FROM roles WHERE membership_id`).
			WithArgs(membershipID, "ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		repo := NewPostgreSQLRoleRepository(db)
		_, err = repo.GetByName(ctx, membershipID, "ghost")
		assert.ErrorIs(t, err, domain.ErrRoleNotFound)
	})
}
