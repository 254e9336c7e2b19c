package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	roleDomain "github.com/allisson/identity/internal/role/domain"
)

var roleTestColumns = []string{
	"id", "membership_id", "name", "slug", "description",
	"permissions", "forbidden", "created_at", "updated_at",
}

func TestPostgreSQLRoleRepository_GetBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLRoleRepository(db)
		now := time.Now().UTC()

		rows := sqlmock.NewRows(roleTestColumns).AddRow(
			"role-1", "membership-1", "Admins", "admins", "Full access",
			"{users.*.*}", "{users.payments.delete}", now, now,
		)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, membership_id, name, slug`)).
			WithArgs("membership-1", "admins").
			WillReturnRows(rows)

		role, err := repo.GetBySlug(ctx, "admins", "membership-1")
		require.NoError(t, err)
		assert.Equal(t, "role-1", role.ID)
		assert.Equal(t, "admins", role.Slug)
		assert.Equal(t, []string{"users.*.*"}, role.Permissions)
		assert.Equal(t, []string{"users.payments.delete"}, role.Forbidden)

		statements, err := role.Statements()
		require.NoError(t, err)
		assert.Len(t, statements, 2)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, membership_id, name, slug`)).
			WithArgs("membership-1", "missing").
			WillReturnRows(sqlmock.NewRows(roleTestColumns))

		role, err := repo.GetBySlug(ctx, "missing", "membership-1")
		assert.Nil(t, role)
		assert.ErrorIs(t, err, roleDomain.ErrRoleNotFound)
	})
}

func TestPostgreSQLRoleRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLRoleRepository(db)
	now := time.Now().UTC()

	role := &roleDomain.Role{
		ID:           "role-1",
		MembershipID: "membership-1",
		Name:         "Readers",
		Slug:         "readers",
		Description:  "Read-only access",
		Permissions:  []string{"users.*.read"},
		Forbidden:    nil,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO roles`)).
		WithArgs(
			role.ID, role.MembershipID, role.Name, role.Slug, role.Description,
			sqlmock.AnyArg(), sqlmock.AnyArg(), now, now,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), role))
	assert.NoError(t, mock.ExpectationsWereMet())
}
