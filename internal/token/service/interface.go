// Package service provides the technical capabilities the token lifecycle
// depends on: a keyed token signer and the per-tenant password hash strategy.
package service

import (
	"context"

	membershipDomain "github.com/allisson/identity/internal/membership/domain"
	tokenDomain "github.com/allisson/identity/internal/token/domain"
)

// MembershipGetter resolves a membership by ID. The signer needs it during
// decoding: the membership id claim inside the token selects the tenant whose
// secret verifies the signature.
type MembershipGetter interface {
	Get(ctx context.Context, membershipID string) (*membershipDomain.Membership, error)
}

// TokenSigner signs and decodes bearer credentials. The signing scheme is
// selectable per tenant through the membership's hash algorithm and encoding.
type TokenSigner interface {
	// Sign produces a signed string for the claims using the given algorithm,
	// key encoding, and secret key.
	Sign(claims *tokenDomain.TokenClaims, algorithm string, encoding string, secretKey string) (string, error)

	// Decode parses a signed string, verifies its signature against the owning
	// membership's secret, and returns the claims. Expiry is NOT validated
	// here; the lifecycle checks it separately so expiry and signature
	// failures stay distinguishable.
	Decode(ctx context.Context, rawToken string) (*tokenDomain.TokenClaims, error)
}

// PasswordService computes and compares password hashes using the
// algorithm/encoding pair configured on a membership. Strategies are resolved
// per call so tenants with different configurations can be served
// concurrently without interference.
type PasswordService interface {
	// Hash computes the password hash for storage.
	Hash(password string, algorithm string, encoding string) (string, error)

	// Compare reports whether the password matches the stored hash. Digest
	// comparisons are constant-time.
	Compare(password string, storedHash string, algorithm string, encoding string) bool
}
