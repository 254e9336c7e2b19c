// Package repository implements revoked token persistence for PostgreSQL with
// transaction support via database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/identity/internal/database"
	apperrors "github.com/allisson/identity/internal/errors"
	tokenDomain "github.com/allisson/identity/internal/token/domain"
)

// PostgreSQLRevokedTokenRepository implements the revocation store for
// PostgreSQL. Records are keyed by the exact raw signed token string.
type PostgreSQLRevokedTokenRepository struct {
	db *sql.DB
}

// Insert appends a revocation record.
func (p *PostgreSQLRevokedTokenRepository) Insert(
	ctx context.Context,
	record *tokenDomain.RevokedToken,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO revoked_tokens (id, token, user_id, membership_id, revoked_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.Token,
		record.UserID,
		record.MembershipID,
		record.RevokedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert revoked token")
	}
	return nil
}

// FindByToken retrieves the revocation record for the raw token string.
func (p *PostgreSQLRevokedTokenRepository) FindByToken(
	ctx context.Context,
	rawToken string,
) (*tokenDomain.RevokedToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, token, user_id, membership_id, revoked_at
			  FROM revoked_tokens
			  WHERE token = $1`

	var record tokenDomain.RevokedToken

	err := querier.QueryRowContext(ctx, query, rawToken).Scan(
		&record.ID,
		&record.Token,
		&record.UserID,
		&record.MembershipID,
		&record.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tokenDomain.ErrRevokedTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find revoked token")
	}

	return &record, nil
}

// CountByMembership returns the number of revoked tokens within a membership.
func (p *PostgreSQLRevokedTokenRepository) CountByMembership(
	ctx context.Context,
	membershipID string,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE membership_id = $1`,
		membershipID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count revoked tokens")
	}
	return count, nil
}

// DeleteOlderThan removes revocation records revoked before the cutoff.
// Expired tokens fail verification on their own, so aged records are safe to
// prune.
func (p *PostgreSQLRevokedTokenRepository) DeleteOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM revoked_tokens WHERE revoked_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete revoked tokens")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return deleted, nil
}

// NewPostgreSQLRevokedTokenRepository creates a new PostgreSQL revoked token repository.
func NewPostgreSQLRevokedTokenRepository(db *sql.DB) *PostgreSQLRevokedTokenRepository {
	return &PostgreSQLRevokedTokenRepository{db: db}
}
