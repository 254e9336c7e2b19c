package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/allisson/identity/internal/database"
	"github.com/allisson/identity/internal/document"
	apperrors "github.com/allisson/identity/internal/errors"
	userDomain "github.com/allisson/identity/internal/user/domain"
)

// MySQLUserRepository implements User persistence for MySQL.
// Permission statements are stored as JSON arrays; the free-form properties
// document is stored as JSON with field order preserved.
type MySQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new User into the MySQL database.
func (m *MySQLUserRepository) Create(ctx context.Context, user *userDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	permissionsJSON, err := json.Marshal(user.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user permissions")
	}
	forbiddenJSON, err := json.Marshal(user.Forbidden)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user forbidden statements")
	}
	propertiesJSON, err := marshalProperties(user.Properties)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + userColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

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
		permissionsJSON,
		forbiddenJSON,
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
func (m *MySQLUserRepository) Get(
	ctx context.Context,
	membershipID string,
	userID string,
) (*userDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE membership_id = ? AND id = ?`

	return m.scanUser(querier.QueryRowContext(ctx, query, membershipID, userID))
}

// GetByUsernameOrEmail retrieves a User matching the identifier as either
// username or email address within a membership.
func (m *MySQLUserRepository) GetByUsernameOrEmail(
	ctx context.Context,
	identifier string,
	membershipID string,
) (*userDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE membership_id = ? AND (username = ? OR email_address = ?)`

	return m.scanUser(querier.QueryRowContext(ctx, query, membershipID, identifier, identifier))
}

// CountByMembership returns the number of users within a membership.
func (m *MySQLUserRepository) CountByMembership(
	ctx context.Context,
	membershipID string,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM users WHERE membership_id = ?`,
		membershipID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count users")
	}
	return count, nil
}

func (m *MySQLUserRepository) scanUser(row *sql.Row) (*userDomain.User, error) {
	var user userDomain.User
	var permissionsJSON, forbiddenJSON, propertiesJSON []byte

	err := row.Scan(
		&user.ID,
		&user.MembershipID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.EmailAddress,
		&user.PasswordHash,
		&user.RoleSlug,
		&permissionsJSON,
		&forbiddenJSON,
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

	if err := json.Unmarshal(permissionsJSON, &user.Permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user permissions")
	}
	if err := json.Unmarshal(forbiddenJSON, &user.Forbidden); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user forbidden statements")
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

// NewMySQLUserRepository creates a new MySQL User repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}
