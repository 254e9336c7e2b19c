// Package usecase implements the bearer token lifecycle: issuance,
// verification, refresh, and revocation.
package usecase

import (
	"context"

	eventDomain "github.com/allisson/identity/internal/event/domain"
	membershipDomain "github.com/allisson/identity/internal/membership/domain"
	tokenDomain "github.com/allisson/identity/internal/token/domain"
	userDomain "github.com/allisson/identity/internal/user/domain"
)

// TxManager runs a function within a storage transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// MembershipRepository defines the membership lookup the lifecycle needs.
type MembershipRepository interface {
	// Get retrieves a membership by ID. Returns ErrMembershipNotFound if not found.
	Get(ctx context.Context, membershipID string) (*membershipDomain.Membership, error)
}

// UserRepository defines the user lookups the lifecycle needs. Both lookups
// are membership-bounded.
type UserRepository interface {
	// GetByUsernameOrEmail retrieves a user matching the identifier as either
	// username or email address. Returns ErrUserNotFound if not found.
	GetByUsernameOrEmail(ctx context.Context, identifier string, membershipID string) (*userDomain.User, error)

	// Get retrieves a user by ID within a membership. Returns ErrUserNotFound
	// if not found.
	Get(ctx context.Context, membershipID string, userID string) (*userDomain.User, error)
}

// RevokedTokenRepository is the revocation store. A record keyed by the exact
// raw signed string is authoritative proof of revocation.
type RevokedTokenRepository interface {
	// FindByToken retrieves the revocation record for the raw token string.
	// Returns ErrRevokedTokenNotFound if no record exists.
	FindByToken(ctx context.Context, rawToken string) (*tokenDomain.RevokedToken, error)

	// Insert appends a revocation record.
	Insert(ctx context.Context, record *tokenDomain.RevokedToken) error
}

// EventNotifier announces token lifecycle events. Notification is
// fire-and-forget: implementations must never block the caller and their
// failures are not the lifecycle's concern.
type EventNotifier interface {
	Notify(ctx context.Context, event *eventDomain.Event)
}

// TokenUseCase is the bearer credential lifecycle.
type TokenUseCase interface {
	// Issue authenticates the user's password within the membership and mints
	// a fresh access/refresh token pair.
	Issue(ctx context.Context, usernameOrEmail, password, membershipID string) (*tokenDomain.BearerToken, error)

	// Verify checks revocation, signature, expiry, and claims of a token and
	// resolves its owning user.
	Verify(ctx context.Context, rawToken string) (*tokenDomain.TokenValidationResult, error)

	// Refresh exchanges a refresh-typed token for a brand-new pair. When
	// revokeBefore is true the presented token is revoked after the new pair
	// is minted.
	Refresh(ctx context.Context, refreshToken string, revokeBefore bool) (*tokenDomain.BearerToken, error)

	// Revoke permanently invalidates a token. Revoking an access token also
	// revokes its derived sibling refresh token.
	Revoke(ctx context.Context, rawToken string) error
}
