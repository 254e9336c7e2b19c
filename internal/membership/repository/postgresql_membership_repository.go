// Package repository implements membership persistence for PostgreSQL with
// transaction support via database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/identity/internal/database"
	apperrors "github.com/allisson/identity/internal/errors"
	membershipDomain "github.com/allisson/identity/internal/membership/domain"
)

// PostgreSQLMembershipRepository implements Membership persistence for PostgreSQL.
// Lifetimes are stored as whole seconds.
type PostgreSQLMembershipRepository struct {
	db *sql.DB
}

// Create inserts a new Membership into the PostgreSQL database.
func (p *PostgreSQLMembershipRepository) Create(
	ctx context.Context,
	membership *membershipDomain.Membership,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO memberships (id, name, slug, secret_key, hash_algorithm, default_encoding,
				  token_lifetime_seconds, refresh_token_lifetime_seconds, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		membership.ID,
		membership.Name,
		membership.Slug,
		membership.SecretKey,
		membership.HashAlgorithm,
		membership.DefaultEncoding,
		int64(membership.TokenLifetime.Seconds()),
		int64(membership.RefreshTokenLifetime.Seconds()),
		membership.CreatedAt,
		membership.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create membership")
	}
	return nil
}

// Get retrieves a Membership by ID from the PostgreSQL database.
func (p *PostgreSQLMembershipRepository) Get(
	ctx context.Context,
	membershipID string,
) (*membershipDomain.Membership, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, slug, secret_key, hash_algorithm, default_encoding,
				  token_lifetime_seconds, refresh_token_lifetime_seconds, created_at, updated_at
			  FROM memberships
			  WHERE id = $1`

	var membership membershipDomain.Membership
	var tokenLifetimeSeconds, refreshLifetimeSeconds int64

	err := querier.QueryRowContext(ctx, query, membershipID).Scan(
		&membership.ID,
		&membership.Name,
		&membership.Slug,
		&membership.SecretKey,
		&membership.HashAlgorithm,
		&membership.DefaultEncoding,
		&tokenLifetimeSeconds,
		&refreshLifetimeSeconds,
		&membership.CreatedAt,
		&membership.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, membershipDomain.ErrMembershipNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get membership")
	}

	membership.TokenLifetime = time.Duration(tokenLifetimeSeconds) * time.Second
	membership.RefreshTokenLifetime = time.Duration(refreshLifetimeSeconds) * time.Second

	return &membership, nil
}

// Update modifies an existing Membership in the PostgreSQL database.
func (p *PostgreSQLMembershipRepository) Update(
	ctx context.Context,
	membership *membershipDomain.Membership,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE memberships
			  SET name = $1,
				  slug = $2,
				  secret_key = $3,
				  hash_algorithm = $4,
				  default_encoding = $5,
				  token_lifetime_seconds = $6,
				  refresh_token_lifetime_seconds = $7,
				  updated_at = $8
			  WHERE id = $9`

	_, err := querier.ExecContext(
		ctx,
		query,
		membership.Name,
		membership.Slug,
		membership.SecretKey,
		membership.HashAlgorithm,
		membership.DefaultEncoding,
		int64(membership.TokenLifetime.Seconds()),
		int64(membership.RefreshTokenLifetime.Seconds()),
		membership.UpdatedAt,
		membership.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update membership")
	}
	return nil
}

// NewPostgreSQLMembershipRepository creates a new PostgreSQL Membership repository.
func NewPostgreSQLMembershipRepository(db *sql.DB) *PostgreSQLMembershipRepository {
	return &PostgreSQLMembershipRepository{db: db}
}
