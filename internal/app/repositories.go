package app

import (
	"context"
	"time"

	eventDomain "github.com/allisson/identity/internal/event/domain"
	membershipDomain "github.com/allisson/identity/internal/membership/domain"
	roleDomain "github.com/allisson/identity/internal/role/domain"
	tokenDomain "github.com/allisson/identity/internal/token/domain"
	userDomain "github.com/allisson/identity/internal/user/domain"
)

// Repository interfaces cover the full persistence surface shared by the
// PostgreSQL and MySQL implementations. The container selects the
// implementation based on the configured database driver.

// MembershipRepository is the membership persistence surface.
type MembershipRepository interface {
	Create(ctx context.Context, membership *membershipDomain.Membership) error
	Get(ctx context.Context, membershipID string) (*membershipDomain.Membership, error)
	Update(ctx context.Context, membership *membershipDomain.Membership) error
}

// UserRepository is the user persistence surface.
type UserRepository interface {
	Create(ctx context.Context, user *userDomain.User) error
	Get(ctx context.Context, membershipID string, userID string) (*userDomain.User, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string, membershipID string) (*userDomain.User, error)
	CountByMembership(ctx context.Context, membershipID string) (int64, error)
}

// RoleRepository is the role persistence surface.
type RoleRepository interface {
	Create(ctx context.Context, role *roleDomain.Role) error
	GetBySlug(ctx context.Context, slug string, membershipID string) (*roleDomain.Role, error)
	CountByMembership(ctx context.Context, membershipID string) (int64, error)
}

// RevokedTokenRepository is the revocation store surface.
type RevokedTokenRepository interface {
	Insert(ctx context.Context, record *tokenDomain.RevokedToken) error
	FindByToken(ctx context.Context, rawToken string) (*tokenDomain.RevokedToken, error)
	CountByMembership(ctx context.Context, membershipID string) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventRepository is the event persistence surface.
type EventRepository interface {
	Insert(ctx context.Context, event *eventDomain.Event) error
	List(ctx context.Context, membershipID string, offset, limit int) ([]*eventDomain.Event, error)
	CountByMembership(ctx context.Context, membershipID string) (int64, error)
}
