// Package repository implements user persistence for PostgreSQL with
// transaction support via database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"github.com/allisson/identity/internal/database"
	"github.com/allisson/identity/internal/document"
	apperrors "github.com/allisson/identity/internal/errors"
	userDomain "github.com/allisson/identity/internal/user/domain"
)

// PostgreSQLUserRepository implements User persistence for PostgreSQL.
// Permission statements use native text arrays; the free-form properties
// document is stored as JSONB with field order preserved.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

const userColumns = `id, membership_id, firstname, lastname, username, email_address,
				  password_hash, role_slug, permissions, forbidden, properties, created_at, updated_at`

// Create inserts a new User into the PostgreSQL database.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *userDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	propertiesJSON, err := marshalProperties(user.Properties)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.MembershipID,
		user.FirstName,
		user.LastName,
		user.Username,
		user.EmailAddress,
		user.PasswordHash,
		user.RoleSlug,
		pq.Array(user.Permissions),
		pq.Array(user.Forbidden),
		propertiesJSON,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Get retrieves a User by ID within a membership.
func (p *PostgreSQLUserRepository) Get(
	ctx context.Context,
	membershipID string,
	userID string,
) (*userDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE membership_id = $1 AND id = $2`

	return p.scanUser(querier.QueryRowContext(ctx, query, membershipID, userID))
}

// GetByUsernameOrEmail retrieves a User matching the identifier as either
// username or email address within a membership.
func (p *PostgreSQLUserRepository) GetByUsernameOrEmail(
	ctx context.Context,
	identifier string,
	membershipID string,
) (*userDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE membership_id = $1 AND (username = $2 OR email_address = $2)`

	return p.scanUser(querier.QueryRowContext(ctx, query, membershipID, identifier))
}

// CountByMembership returns the number of users within a membership.
func (p *PostgreSQLUserRepository) CountByMembership(
	ctx context.Context,
	membershipID string,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM users WHERE membership_id = $1`,
		membershipID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count users")
	}
	return count, nil
}

func (p *PostgreSQLUserRepository) scanUser(row *sql.Row) (*userDomain.User, error) {
	var user userDomain.User
	var propertiesJSON []byte

	err := row.Scan(
		&user.ID,
		&user.MembershipID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.EmailAddress,
		&user.PasswordHash,
		&user.RoleSlug,
		pq.Array(&user.Permissions),
		pq.Array(&user.Forbidden),
		&propertiesJSON,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	if propertiesJSON != nil {
		properties := document.New()
		if err := json.Unmarshal(propertiesJSON, properties); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal user properties")
		}
		user.Properties = properties
	}

	return &user, nil
}

// marshalProperties serializes the properties document, mapping nil to NULL.
func marshalProperties(properties *document.Document) ([]byte, error) {
	if properties == nil {
		return nil, nil
	}
	data, err := json.Marshal(properties)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user properties")
	}
	return data, nil
}

// NewPostgreSQLUserRepository creates a new PostgreSQL User repository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}
