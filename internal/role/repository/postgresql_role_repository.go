// Package repository implements role persistence for PostgreSQL with
// transaction support via database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/allisson/identity/internal/database"
	apperrors "github.com/allisson/identity/internal/errors"
	roleDomain "github.com/allisson/identity/internal/role/domain"
)

// PostgreSQLRoleRepository implements Role persistence for PostgreSQL.
// Permission statements use native text arrays.
type PostgreSQLRoleRepository struct {
	db *sql.DB
}

// Create inserts a new Role into the PostgreSQL database.
func (p *PostgreSQLRoleRepository) Create(ctx context.Context, role *roleDomain.Role) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO roles (id, membership_id, name, slug, description,
				  permissions, forbidden, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		role.ID,
		role.MembershipID,
		role.Name,
		role.Slug,
		role.Description,
		pq.Array(role.Permissions),
		pq.Array(role.Forbidden),
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

// GetBySlug retrieves a Role by slug within a membership.
func (p *PostgreSQLRoleRepository) GetBySlug(
	ctx context.Context,
	slug string,
	membershipID string,
) (*roleDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, membership_id, name, slug, description,
				  permissions, forbidden, created_at, updated_at
			  FROM roles
			  WHERE membership_id = $1 AND slug = $2`

	var role roleDomain.Role

	err := querier.QueryRowContext(ctx, query, membershipID, slug).Scan(
		&role.ID,
		&role.MembershipID,
		&role.Name,
		&role.Slug,
		&role.Description,
		pq.Array(&role.Permissions),
		pq.Array(&role.Forbidden),
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, roleDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}

	return &role, nil
}

// CountByMembership returns the number of roles within a membership.
func (p *PostgreSQLRoleRepository) CountByMembership(
	ctx context.Context,
	membershipID string,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM roles WHERE membership_id = $1`,
		membershipID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count roles")
	}
	return count, nil
}

// NewPostgreSQLRoleRepository creates a new PostgreSQL Role repository.
func NewPostgreSQLRoleRepository(db *sql.DB) *PostgreSQLRoleRepository {
	return &PostgreSQLRoleRepository{db: db}
}
