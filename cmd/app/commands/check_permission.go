package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/identity/internal/app"
	"github.com/allisson/identity/internal/config"
)

// RunCheckPermission evaluates whether a user may perform the required
// permission, expressed as subject.resource.action[.object].
//
// Requirements: database must be migrated and accessible.
func RunCheckPermission(
	ctx context.Context,
	usernameOrEmail, membershipID, required, format string,
	cmdIO IOTuple,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	userRepo, err := container.UserRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize user repository: %w", err)
	}

	accessUseCase, err := container.AccessControlUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize access control use case: %w", err)
	}

	user, err := userRepo.GetByUsernameOrEmail(ctx, usernameOrEmail, membershipID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	permitted, err := accessUseCase.HasUserPermission(ctx, user, required)
	if err != nil {
		return fmt.Errorf("failed to check permission: %w", err)
	}

	logger.Info("permission checked",
		slog.String("user_id", user.ID),
		slog.String("membership_id", membershipID),
		slog.String("required", required),
		slog.Bool("permitted", permitted),
	)

	output := map[string]any{
		"user_id":    user.ID,
		"required":   required,
		"permitted":  permitted,
		"membership": membershipID,
	}
	return writeOutput(cmdIO.Writer, format, output, func(w io.Writer) {
		verdict := "denied"
		if permitted {
			verdict = "permitted"
		}
		_, _ = fmt.Fprintf(w, "%s: %s for user %s\n", required, verdict, user.Username)
	})
}
