package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/identity/internal/app"
	"github.com/allisson/identity/internal/config"
)

// RunIssueToken authenticates a user within a membership and prints a fresh
// access/refresh token pair.
//
// Requirements: database must be migrated and accessible.
func RunIssueToken(
	ctx context.Context,
	usernameOrEmail, password, membershipID, format string,
	cmdIO IOTuple,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	tokenUseCase, err := container.TokenUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize token use case: %w", err)
	}

	token, err := tokenUseCase.Issue(ctx, usernameOrEmail, password, membershipID)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	logger.Info("token issued",
		slog.String("membership_id", membershipID),
	)

	output := map[string]any{
		"access_token":       token.AccessToken,
		"expires_in":         int64(token.ExpiresIn.Seconds()),
		"refresh_token":      token.RefreshToken,
		"refresh_expires_in": int64(token.RefreshExpiresIn.Seconds()),
	}
	return writeOutput(cmdIO.Writer, format, output, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Access token:  %s\n", token.AccessToken)
		_, _ = fmt.Fprintf(w, "Expires in:    %s\n", token.ExpiresIn)
		_, _ = fmt.Fprintf(w, "Refresh token: %s\n", token.RefreshToken)
		_, _ = fmt.Fprintf(w, "Refresh expires in: %s\n", token.RefreshExpiresIn)
	})
}

// RunVerifyToken verifies a token and prints its owner and remaining lifetime.
func RunVerifyToken(ctx context.Context, rawToken, format string, cmdIO IOTuple) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	tokenUseCase, err := container.TokenUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize token use case: %w", err)
	}

	result, err := tokenUseCase.Verify(ctx, rawToken)
	if err != nil {
		return fmt.Errorf("failed to verify token: %w", err)
	}

	output := map[string]any{
		"valid":              result.Valid,
		"user_id":            result.User.ID,
		"membership_id":      result.User.MembershipID,
		"username":           result.User.Username,
		"remaining_lifetime": int64(result.RemainingLifetime.Seconds()),
		"is_refresh_token":   result.IsRefreshToken,
	}
	return writeOutput(cmdIO.Writer, format, output, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Valid:         true\n")
		_, _ = fmt.Fprintf(w, "User:          %s (%s)\n", result.User.Username, result.User.ID)
		_, _ = fmt.Fprintf(w, "Membership:    %s\n", result.User.MembershipID)
		_, _ = fmt.Fprintf(w, "Remaining:     %s\n", result.RemainingLifetime)
		_, _ = fmt.Fprintf(w, "Refresh token: %t\n", result.IsRefreshToken)
	})
}

// RunRefreshToken exchanges a refresh token for a new pair. When revokeBefore
// is set the presented token is revoked as part of the exchange.
func RunRefreshToken(
	ctx context.Context,
	refreshToken string,
	revokeBefore bool,
	format string,
	cmdIO IOTuple,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	tokenUseCase, err := container.TokenUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize token use case: %w", err)
	}

	token, err := tokenUseCase.Refresh(ctx, refreshToken, revokeBefore)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	output := map[string]any{
		"access_token":       token.AccessToken,
		"expires_in":         int64(token.ExpiresIn.Seconds()),
		"refresh_token":      token.RefreshToken,
		"refresh_expires_in": int64(token.RefreshExpiresIn.Seconds()),
	}
	return writeOutput(cmdIO.Writer, format, output, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Access token:  %s\n", token.AccessToken)
		_, _ = fmt.Fprintf(w, "Expires in:    %s\n", token.ExpiresIn)
		_, _ = fmt.Fprintf(w, "Refresh token: %s\n", token.RefreshToken)
		_, _ = fmt.Fprintf(w, "Refresh expires in: %s\n", token.RefreshExpiresIn)
	})
}

// RunRevokeToken permanently invalidates a token. Revoking an access token
// also revokes its sibling refresh token.
func RunRevokeToken(ctx context.Context, rawToken string, cmdIO IOTuple) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	tokenUseCase, err := container.TokenUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize token use case: %w", err)
	}

	if err := tokenUseCase.Revoke(ctx, rawToken); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	_, _ = fmt.Fprintln(cmdIO.Writer, "Token revoked")
	return nil
}
