// Package domain defines bearer credential domain models: token claims, the
// issued access/refresh pair, revocation records, and verification results.
package domain

import (
	"time"

	userDomain "github.com/allisson/identity/internal/user/domain"
)

// RefreshTokenClaim is the reserved additional claim marking a token as
// refresh-typed. Its name is part of the wire format.
const RefreshTokenClaim = "refresh_token"

// TokenClaims is the claim set minted once per issuance. TokenID is unique
// per issuance and shared by the access/refresh pair, which is what makes the
// sibling refresh token derivable during revocation.
type TokenClaims struct {
	TokenID      string
	UserID       string
	MembershipID string
	IssuedAt     time.Time
	ExpiresIn    time.Duration
	Extra        map[string]any
}

// ExpiresAt returns the expiry instant of the claims.
func (c *TokenClaims) ExpiresAt() time.Time {
	return c.IssuedAt.Add(c.ExpiresIn)
}

// WithClaim returns a copy of the claims carrying an additional named claim.
// The receiver is not modified.
func (c *TokenClaims) WithClaim(name string, value any) *TokenClaims {
	clone := *c
	clone.Extra = make(map[string]any, len(c.Extra)+1)
	for k, v := range c.Extra {
		clone.Extra[k] = v
	}
	clone.Extra[name] = value
	return &clone
}

// IsRefreshToken reports whether the claims carry the refresh marker claim
// set to true. Decoded claim values may arrive as bool or string.
func (c *TokenClaims) IsRefreshToken() bool {
	value, ok := c.Extra[RefreshTokenClaim]
	if !ok {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// BearerToken is the signed credential pair produced once per successful
// issuance or refresh. Immutable.
type BearerToken struct {
	AccessToken      string
	ExpiresIn        time.Duration
	RefreshToken     string
	RefreshExpiresIn time.Duration
}

// RevokedToken is an append-only revocation record. The existence of a record
// for a given raw signed string is authoritative proof of revocation,
// regardless of the token's signature or expiry status.
type RevokedToken struct {
	ID           string
	Token        string
	UserID       string
	MembershipID string
	RevokedAt    time.Time
}

// TokenValidationResult is produced by verification and never persisted.
type TokenValidationResult struct {
	Valid             bool
	Token             string
	User              *userDomain.User
	RemainingLifetime time.Duration
	IsRefreshToken    bool
}
