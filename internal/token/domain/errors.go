package domain

import (
	apperrors "github.com/allisson/identity/internal/errors"
)

// Token lifecycle errors. Every lifecycle operation fails fast with one of
// these so callers can distinguish the failure kind with errors.Is.
var (
	// ErrInvalidCredentials indicates the password hash did not match the
	// stored hash during issuance.
	ErrInvalidCredentials = apperrors.Wrap(apperrors.ErrUnauthorized, "username or password is wrong")

	// ErrInvalidToken indicates a decode or signature failure, or a required
	// claim that is missing or empty.
	ErrInvalidToken = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid token")

	// ErrTokenExpired indicates the token's expiry instant has elapsed.
	ErrTokenExpired = apperrors.Wrap(apperrors.ErrUnauthorized, "token was expired")

	// ErrRefreshTokenExpired indicates the refresh token's expiry instant has elapsed.
	ErrRefreshTokenExpired = apperrors.Wrap(apperrors.ErrUnauthorized, "refresh token was expired")

	// ErrTokenRevoked indicates the token is present in the revocation store.
	ErrTokenRevoked = apperrors.Wrap(apperrors.ErrUnauthorized, "token was revoked")

	// ErrRefreshTokenRevoked indicates the refresh token is present in the revocation store.
	ErrRefreshTokenRevoked = apperrors.Wrap(apperrors.ErrUnauthorized, "refresh token was revoked")

	// ErrTokenNotRefreshable indicates a refresh attempt with an access-typed token.
	ErrTokenNotRefreshable = apperrors.Wrap(apperrors.ErrUnauthorized, "token is not refreshable")

	// ErrRevokedTokenNotFound indicates the revocation store has no record for
	// the given raw token string.
	ErrRevokedTokenNotFound = apperrors.Wrap(apperrors.ErrNotFound, "revoked token not found")
)
