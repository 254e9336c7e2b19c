package usecase

import (
	"context"
	"time"

	"github.com/allisson/identity/internal/metrics"
	tokenDomain "github.com/allisson/identity/internal/token/domain"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for token issuance operations.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	usernameOrEmail, password, membershipID string,
) (*tokenDomain.BearerToken, error) {
	start := time.Now()
	token, err := t.next.Issue(ctx, usernameOrEmail, password, membershipID)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "token", "token_issue", status)
	t.metrics.RecordDuration(ctx, "token", "token_issue", time.Since(start), status)

	return token, err
}

// Verify records metrics for token verification operations.
func (t *tokenUseCaseWithMetrics) Verify(
	ctx context.Context,
	rawToken string,
) (*tokenDomain.TokenValidationResult, error) {
	start := time.Now()
	result, err := t.next.Verify(ctx, rawToken)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "token", "token_verify", status)
	t.metrics.RecordDuration(ctx, "token", "token_verify", time.Since(start), status)

	return result, err
}

// Refresh records metrics for token refresh operations.
func (t *tokenUseCaseWithMetrics) Refresh(
	ctx context.Context,
	refreshToken string,
	revokeBefore bool,
) (*tokenDomain.BearerToken, error) {
	start := time.Now()
	token, err := t.next.Refresh(ctx, refreshToken, revokeBefore)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "token", "token_refresh", status)
	t.metrics.RecordDuration(ctx, "token", "token_refresh", time.Since(start), status)

	return token, err
}

// Revoke records metrics for token revocation operations.
func (t *tokenUseCaseWithMetrics) Revoke(ctx context.Context, rawToken string) error {
	start := time.Now()
	err := t.next.Revoke(ctx, rawToken)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "token", "token_revoke", status)
	t.metrics.RecordDuration(ctx, "token", "token_revoke", time.Since(start), status)

	return err
}
