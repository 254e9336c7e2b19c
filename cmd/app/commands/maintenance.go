package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allisson/identity/internal/app"
	"github.com/allisson/identity/internal/config"
)

// RunPruneRevokedTokens deletes revocation records older than the retention
// window. Expired tokens fail verification on their own, so records past the
// longest refresh lifetime carry no information.
func RunPruneRevokedTokens(ctx context.Context, olderThan time.Duration, cmdIO IOTuple) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	if olderThan <= 0 {
		return fmt.Errorf("retention window must be positive")
	}

	revokedTokenRepo, err := container.RevokedTokenRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize revoked token repository: %w", err)
	}

	cutoff := time.Now().UTC().Add(-olderThan)
	deleted, err := revokedTokenRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune revoked tokens: %w", err)
	}

	logger.Info("revoked tokens pruned",
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff),
	)

	_, _ = fmt.Fprintf(cmdIO.Writer, "Deleted %d revocation records older than %s\n", deleted, olderThan)
	return nil
}

// RunListEvents prints the most recent token lifecycle events for a membership.
func RunListEvents(
	ctx context.Context,
	membershipID string,
	offset, limit int,
	format string,
	cmdIO IOTuple,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	eventRepo, err := container.EventRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize event repository: %w", err)
	}

	events, err := eventRepo.List(ctx, membershipID, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	output := make([]map[string]any, 0, len(events))
	for _, event := range events {
		output = append(output, map[string]any{
			"id":         event.ID,
			"event_type": string(event.Type),
			"user_id":    event.UserID,
			"event_time": event.EventTime,
		})
	}
	return writeOutput(cmdIO.Writer, format, output, func(w io.Writer) {
		if len(events) == 0 {
			_, _ = fmt.Fprintln(w, "No events found")
			return
		}
		for _, event := range events {
			_, _ = fmt.Fprintf(w, "%s  %-16s user=%s\n",
				event.EventTime.Format(time.RFC3339), event.Type, event.UserID)
		}
	})
}
