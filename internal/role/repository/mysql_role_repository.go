package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/allisson/identity/internal/database"
	apperrors "github.com/allisson/identity/internal/errors"
	roleDomain "github.com/allisson/identity/internal/role/domain"
)

// MySQLRoleRepository implements Role persistence for MySQL.
// Permission statements are stored as JSON arrays.
type MySQLRoleRepository struct {
	db *sql.DB
}

// Create inserts a new Role into the MySQL database.
func (m *MySQLRoleRepository) Create(ctx context.Context, role *roleDomain.Role) error {
	querier := database.GetTx(ctx, m.db)

	permissionsJSON, err := json.Marshal(role.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role permissions")
	}
	forbiddenJSON, err := json.Marshal(role.Forbidden)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role forbidden statements")
	}

	query := `INSERT INTO roles (id, membership_id, name, slug, description,
				  permissions, forbidden, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		role.ID,
		role.MembershipID,
		role.Name,
		role.Slug,
		role.Description,
		permissionsJSON,
		forbiddenJSON,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

// GetBySlug retrieves a Role by slug within a membership.
func (m *MySQLRoleRepository) GetBySlug(
	ctx context.Context,
	slug string,
	membershipID string,
) (*roleDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, membership_id, name, slug, description,
				  permissions, forbidden, created_at, updated_at
			  FROM roles
			  WHERE membership_id = ? AND slug = ?`

	var role roleDomain.Role
	var permissionsJSON, forbiddenJSON []byte

	err := querier.QueryRowContext(ctx, query, membershipID, slug).Scan(
		&role.ID,
		&role.MembershipID,
		&role.Name,
		&role.Slug,
		&role.Description,
		&permissionsJSON,
		&forbiddenJSON,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, roleDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}

	if err := json.Unmarshal(permissionsJSON, &role.Permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal role permissions")
	}
	if err := json.Unmarshal(forbiddenJSON, &role.Forbidden); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal role forbidden statements")
	}

	return &role, nil
}

// CountByMembership returns the number of roles within a membership.
func (m *MySQLRoleRepository) CountByMembership(
	ctx context.Context,
	membershipID string,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM roles WHERE membership_id = ?`,
		membershipID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count roles")
	}
	return count, nil
}

// NewMySQLRoleRepository creates a new MySQL Role repository.
func NewMySQLRoleRepository(db *sql.DB) *MySQLRoleRepository {
	return &MySQLRoleRepository{db: db}
}
