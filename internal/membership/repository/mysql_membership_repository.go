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

// MySQLMembershipRepository implements Membership persistence for MySQL.
// Lifetimes are stored as whole seconds.
type MySQLMembershipRepository struct {
	db *sql.DB
}

// Create inserts a new Membership into the MySQL database.
func (m *MySQLMembershipRepository) Create(
	ctx context.Context,
	membership *membershipDomain.Membership,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO memberships (id, name, slug, secret_key, hash_algorithm, default_encoding,
				  token_lifetime_seconds, refresh_token_lifetime_seconds, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

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

// Get retrieves a Membership by ID from the MySQL database.
func (m *MySQLMembershipRepository) Get(
	ctx context.Context,
	membershipID string,
) (*membershipDomain.Membership, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, slug, secret_key, hash_algorithm, default_encoding,
				  token_lifetime_seconds, refresh_token_lifetime_seconds, created_at, updated_at
			  FROM memberships
			  WHERE id = ?`

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

// Update modifies an existing Membership in the MySQL database.
func (m *MySQLMembershipRepository) Update(
	ctx context.Context,
	membership *membershipDomain.Membership,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE memberships
			  SET name = ?,
				  slug = ?,
				  secret_key = ?,
				  hash_algorithm = ?,
				  default_encoding = ?,
				  token_lifetime_seconds = ?,
				  refresh_token_lifetime_seconds = ?,
				  updated_at = ?
			  WHERE id = ?`

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

// NewMySQLMembershipRepository creates a new MySQL Membership repository.
func NewMySQLMembershipRepository(db *sql.DB) *MySQLMembershipRepository {
	return &MySQLMembershipRepository{db: db}
}
