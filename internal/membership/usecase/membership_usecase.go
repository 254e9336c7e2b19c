package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	membershipDomain "github.com/allisson/identity/internal/membership/domain"
)

// membershipUseCase implements MembershipUseCase.
type membershipUseCase struct {
	membershipRepo MembershipRepository
	users          MembershipCounter
	roles          MembershipCounter
	revokedTokens  MembershipCounter
	events         MembershipCounter
}

// NewMembershipUseCase creates a new MembershipUseCase with per-subsystem counters.
func NewMembershipUseCase(
	membershipRepo MembershipRepository,
	users MembershipCounter,
	roles MembershipCounter,
	revokedTokens MembershipCounter,
	events MembershipCounter,
) MembershipUseCase {
	return &membershipUseCase{
		membershipRepo: membershipRepo,
		users:          users,
		roles:          roles,
		revokedTokens:  revokedTokens,
		events:         events,
	}
}

// Get retrieves a membership by ID.
func (m *membershipUseCase) Get(
	ctx context.Context,
	membershipID string,
) (*membershipDomain.Membership, error) {
	return m.membershipRepo.Get(ctx, membershipID)
}

// Usage aggregates resource counts for the membership. The four counts are
// independent queries, so they run concurrently; the first failure cancels
// the rest.
func (m *membershipUseCase) Usage(
	ctx context.Context,
	membershipID string,
) (*membershipDomain.Usage, error) {
	if _, err := m.membershipRepo.Get(ctx, membershipID); err != nil {
		return nil, err
	}

	usage := &membershipDomain.Usage{MembershipID: membershipID}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		count, err := m.users.CountByMembership(groupCtx, membershipID)
		usage.Users = count
		return err
	})
	group.Go(func() error {
		count, err := m.roles.CountByMembership(groupCtx, membershipID)
		usage.Roles = count
		return err
	})
	group.Go(func() error {
		count, err := m.revokedTokens.CountByMembership(groupCtx, membershipID)
		usage.RevokedTokens = count
		return err
	})
	group.Go(func() error {
		count, err := m.events.CountByMembership(groupCtx, membershipID)
		usage.Events = count
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return usage, nil
}
