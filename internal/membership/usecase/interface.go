// Package usecase implements membership-level operations: tenant resolution
// and per-tenant usage aggregation.
package usecase

import (
	"context"

	membershipDomain "github.com/allisson/identity/internal/membership/domain"
)

// MembershipRepository defines the membership lookups the use case needs.
type MembershipRepository interface {
	// Get retrieves a membership by ID. Returns ErrMembershipNotFound if not found.
	Get(ctx context.Context, membershipID string) (*membershipDomain.Membership, error)
}

// MembershipCounter counts resources owned by a membership. Each subsystem's
// repository satisfies this for its own table.
type MembershipCounter interface {
	CountByMembership(ctx context.Context, membershipID string) (int64, error)
}

// MembershipUseCase exposes membership operations.
type MembershipUseCase interface {
	// Get retrieves a membership by ID.
	Get(ctx context.Context, membershipID string) (*membershipDomain.Membership, error)

	// Usage aggregates the tenant's resource counts across subsystems.
	Usage(ctx context.Context, membershipID string) (*membershipDomain.Usage, error)
}
