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

// MySQLRevokedTokenRepository implements the revocation store for MySQL.
// Records are keyed by the exact raw signed token string.
type MySQLRevokedTokenRepository struct {
	db *sql.DB
}

// Insert appends a revocation record.
func (m *MySQLRevokedTokenRepository) Insert(
	ctx context.Context,
	record *tokenDomain.RevokedToken,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO revoked_tokens (id, token, user_id, membership_id, revoked_at)
			  VALUES (?, ?, ?, ?, ?)`

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
func (m *MySQLRevokedTokenRepository) FindByToken(
	ctx context.Context,
	rawToken string,
) (*tokenDomain.RevokedToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, token, user_id, membership_id, revoked_at
			  FROM revoked_tokens
			  WHERE token = ?`

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
func (m *MySQLRevokedTokenRepository) CountByMembership(
	ctx context.Context,
	membershipID string,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE membership_id = ?`,
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
func (m *MySQLRevokedTokenRepository) DeleteOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM revoked_tokens WHERE revoked_at < ?`,
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

// NewMySQLRevokedTokenRepository creates a new MySQL revoked token repository.
func NewMySQLRevokedTokenRepository(db *sql.DB) *MySQLRevokedTokenRepository {
	return &MySQLRevokedTokenRepository{db: db}
}
