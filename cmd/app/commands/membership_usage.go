package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/allisson/identity/internal/app"
	"github.com/allisson/identity/internal/config"
)

// RunMembershipUsage aggregates and prints per-tenant resource counts.
//
// Requirements: database must be migrated and accessible.
func RunMembershipUsage(ctx context.Context, membershipID, format string, cmdIO IOTuple) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	membershipUseCase, err := container.MembershipUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize membership use case: %w", err)
	}

	usage, err := membershipUseCase.Usage(ctx, membershipID)
	if err != nil {
		return fmt.Errorf("failed to aggregate membership usage: %w", err)
	}

	output := map[string]any{
		"membership_id":  usage.MembershipID,
		"users":          usage.Users,
		"roles":          usage.Roles,
		"revoked_tokens": usage.RevokedTokens,
		"events":         usage.Events,
	}
	return writeOutput(cmdIO.Writer, format, output, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Membership:     %s\n", usage.MembershipID)
		_, _ = fmt.Fprintf(w, "Users:          %d\n", usage.Users)
		_, _ = fmt.Fprintf(w, "Roles:          %d\n", usage.Roles)
		_, _ = fmt.Fprintf(w, "Revoked tokens: %d\n", usage.RevokedTokens)
		_, _ = fmt.Fprintf(w, "Events:         %d\n", usage.Events)
	})
}
