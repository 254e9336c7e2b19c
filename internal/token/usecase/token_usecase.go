package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/identity/internal/document"
	apperrors "github.com/allisson/identity/internal/errors"
	eventDomain "github.com/allisson/identity/internal/event/domain"
	membershipDomain "github.com/allisson/identity/internal/membership/domain"
	tokenDomain "github.com/allisson/identity/internal/token/domain"
	tokenService "github.com/allisson/identity/internal/token/service"
	userDomain "github.com/allisson/identity/internal/user/domain"
)

// tokenUseCase implements TokenUseCase. All collaborator calls within one
// operation are strictly ordered; the revoked-token insert is the only
// persisted side effect and happens last among the meaningful steps.
type tokenUseCase struct {
	txManager       TxManager
	membershipRepo  MembershipRepository
	userRepo        UserRepository
	revokedRepo     RevokedTokenRepository
	signer          tokenService.TokenSigner
	passwordService tokenService.PasswordService
	notifier        EventNotifier

	// clock is injectable for expiry-boundary tests.
	clock func() time.Time
}

// NewTokenUseCase creates a new TokenUseCase with the provided collaborators.
func NewTokenUseCase(
	txManager TxManager,
	membershipRepo MembershipRepository,
	userRepo UserRepository,
	revokedRepo RevokedTokenRepository,
	signer tokenService.TokenSigner,
	passwordService tokenService.PasswordService,
	notifier EventNotifier,
) TokenUseCase {
	return &tokenUseCase{
		txManager:       txManager,
		membershipRepo:  membershipRepo,
		userRepo:        userRepo,
		revokedRepo:     revokedRepo,
		signer:          signer,
		passwordService: passwordService,
		notifier:        notifier,
		clock:           time.Now,
	}
}

// Issue authenticates the user within the membership and mints a token pair.
//
// Order of checks: membership existence, membership self-validation, user
// lookup by username-or-email, password hash comparison. The first violated
// precondition aborts the operation with its named error.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	usernameOrEmail, password, membershipID string,
) (*tokenDomain.BearerToken, error) {
	membership, err := t.membershipRepo.Get(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	if violations := membership.Validate(); len(violations) > 0 {
		return nil, malformedMembership(violations)
	}

	user, err := t.userRepo.GetByUsernameOrEmail(ctx, usernameOrEmail, membership.ID)
	if err != nil {
		return nil, err
	}

	if !t.passwordService.Compare(password, user.PasswordHash, membership.HashAlgorithm, membership.DefaultEncoding) {
		return nil, tokenDomain.ErrInvalidCredentials
	}

	token, err := t.generateBearerToken(user, membership)
	if err != nil {
		return nil, err
	}

	t.notify(ctx, eventDomain.EventTokenGenerated, user, bearerTokenPayload(token))

	return token, nil
}

// Verify checks a token: revocation first, then signature, expiry, required
// claims, and finally user resolution within the claimed membership.
func (t *tokenUseCase) Verify(ctx context.Context, rawToken string) (*tokenDomain.TokenValidationResult, error) {
	return t.verify(ctx, rawToken, true)
}

func (t *tokenUseCase) verify(
	ctx context.Context,
	rawToken string,
	fireEvent bool,
) (*tokenDomain.TokenValidationResult, error) {
	if err := t.checkRevocation(ctx, rawToken, tokenDomain.ErrTokenRevoked); err != nil {
		return nil, err
	}

	claims, err := t.signer.Decode(ctx, rawToken)
	if err != nil {
		return nil, apperrors.Wrap(tokenDomain.ErrInvalidToken, err.Error())
	}

	now := t.clock().UTC()
	if now.After(claims.ExpiresAt()) {
		return nil, tokenDomain.ErrTokenExpired
	}

	if claims.MembershipID == "" || claims.UserID == "" {
		return nil, tokenDomain.ErrInvalidToken
	}

	user, err := t.userRepo.Get(ctx, claims.MembershipID, claims.UserID)
	if err != nil {
		return nil, err
	}

	result := &tokenDomain.TokenValidationResult{
		Valid:             true,
		Token:             rawToken,
		User:              user,
		RemainingLifetime: claims.ExpiresAt().Sub(now),
		IsRefreshToken:    claims.IsRefreshToken(),
	}

	if fireEvent {
		payload := document.New()
		payload.Set("token", rawToken)
		t.notify(ctx, eventDomain.EventTokenVerified, user, payload)
	}

	return result, nil
}

// Refresh exchanges a refresh-typed token for a new pair. The new pair is
// minted before the presented token is revoked: revocation decodes the same
// token and must not race its replacement.
func (t *tokenUseCase) Refresh(
	ctx context.Context,
	refreshToken string,
	revokeBefore bool,
) (*tokenDomain.BearerToken, error) {
	if err := t.checkRevocation(ctx, refreshToken, tokenDomain.ErrRefreshTokenRevoked); err != nil {
		return nil, err
	}

	claims, err := t.signer.Decode(ctx, refreshToken)
	if err != nil {
		return nil, apperrors.Wrap(tokenDomain.ErrInvalidToken, err.Error())
	}

	if !claims.IsRefreshToken() {
		return nil, tokenDomain.ErrTokenNotRefreshable
	}

	now := t.clock().UTC()
	if now.After(claims.ExpiresAt()) {
		return nil, tokenDomain.ErrRefreshTokenExpired
	}

	if claims.MembershipID == "" || claims.UserID == "" {
		return nil, tokenDomain.ErrInvalidToken
	}

	membership, err := t.membershipRepo.Get(ctx, claims.MembershipID)
	if err != nil {
		return nil, err
	}

	user, err := t.userRepo.Get(ctx, claims.MembershipID, claims.UserID)
	if err != nil {
		return nil, err
	}

	token, err := t.generateBearerToken(user, membership)
	if err != nil {
		return nil, err
	}

	if revokeBefore {
		if err := t.revoke(ctx, refreshToken, false); err != nil {
			return nil, err
		}
	}

	payload := document.New()
	payload.Set("refresh_token", refreshToken)
	t.notify(ctx, eventDomain.EventTokenRefreshed, user, payload)

	return token, nil
}

// Revoke permanently invalidates a token. For an access token, the sibling
// refresh token is derived deterministically from the shared token id and
// issuance time, then revoked as well; the relation is computable, never
// stored. The cascade runs in one transaction so the pair is never left
// half-revoked.
func (t *tokenUseCase) Revoke(ctx context.Context, rawToken string) error {
	return t.txManager.WithTx(ctx, func(ctx context.Context) error {
		return t.revoke(ctx, rawToken, true)
	})
}

func (t *tokenUseCase) revoke(ctx context.Context, rawToken string, fireEvent bool) error {
	result, err := t.verify(ctx, rawToken, false)
	if err != nil {
		return err
	}

	record := &tokenDomain.RevokedToken{
		ID:           uuid.NewString(),
		Token:        rawToken,
		UserID:       result.User.ID,
		MembershipID: result.User.MembershipID,
		RevokedAt:    t.clock().UTC(),
	}
	if err := t.revokedRepo.Insert(ctx, record); err != nil {
		return err
	}

	membership, err := t.membershipRepo.Get(ctx, result.User.MembershipID)
	if err != nil {
		return err
	}

	if !result.IsRefreshToken {
		siblingToken, err := t.deriveRefreshToken(ctx, rawToken, result.User, membership)
		if err == nil && siblingToken != "" {
			// A sibling that is already revoked or expired is already dead;
			// only an unexpected failure may roll back the cascade.
			err := t.revoke(ctx, siblingToken, false)
			if err != nil &&
				!errors.Is(err, tokenDomain.ErrTokenRevoked) &&
				!errors.Is(err, tokenDomain.ErrTokenExpired) {
				return err
			}
		}
	}

	if fireEvent {
		payload := document.New()
		payload.Set("token", rawToken)
		t.notify(ctx, eventDomain.EventTokenRevoked, result.User, payload)
	}

	return nil
}

// generateBearerToken mints one fresh claim set and signs it twice: once as
// the access token and once, with the refresh marker claim and the refresh
// lifetime, as the refresh token.
func (t *tokenUseCase) generateBearerToken(
	user *userDomain.User,
	membership *membershipDomain.Membership,
) (*tokenDomain.BearerToken, error) {
	claims := &tokenDomain.TokenClaims{
		TokenID:      uuid.NewString(),
		UserID:       user.ID,
		MembershipID: membership.ID,
		IssuedAt:     t.clock().UTC(),
		ExpiresIn:    membership.TokenLifetime,
	}

	accessToken, err := t.signer.Sign(claims, membership.HashAlgorithm, membership.DefaultEncoding, membership.SecretKey)
	if err != nil {
		return nil, err
	}

	refreshClaims := claims.WithClaim(tokenDomain.RefreshTokenClaim, true)
	refreshClaims.ExpiresIn = membership.RefreshTokenLifetime

	refreshToken, err := t.signer.Sign(refreshClaims, membership.HashAlgorithm, membership.DefaultEncoding, membership.SecretKey)
	if err != nil {
		return nil, err
	}

	return &tokenDomain.BearerToken{
		AccessToken:      accessToken,
		ExpiresIn:        claims.ExpiresIn,
		RefreshToken:     refreshToken,
		RefreshExpiresIn: refreshClaims.ExpiresIn,
	}, nil
}

// deriveRefreshToken reconstructs the refresh token paired with an access
// token: same token id, same issuance time, refresh lifetime, refresh marker
// claim, re-signed with the membership's scheme.
func (t *tokenUseCase) deriveRefreshToken(
	ctx context.Context,
	accessToken string,
	user *userDomain.User,
	membership *membershipDomain.Membership,
) (string, error) {
	claims, err := t.signer.Decode(ctx, accessToken)
	if err != nil {
		return "", err
	}
	if claims.TokenID == "" {
		return "", tokenDomain.ErrInvalidToken
	}

	refreshClaims := &tokenDomain.TokenClaims{
		TokenID:      claims.TokenID,
		UserID:       user.ID,
		MembershipID: membership.ID,
		IssuedAt:     claims.IssuedAt,
		ExpiresIn:    membership.RefreshTokenLifetime,
	}
	refreshClaims = refreshClaims.WithClaim(tokenDomain.RefreshTokenClaim, true)

	return t.signer.Sign(refreshClaims, membership.HashAlgorithm, membership.DefaultEncoding, membership.SecretKey)
}

// checkRevocation consults the revocation store for the exact raw string.
// A found record fails with the flavored revoked error; a store miss is the
// only error treated as "not revoked".
func (t *tokenUseCase) checkRevocation(ctx context.Context, rawToken string, revokedErr error) error {
	_, err := t.revokedRepo.FindByToken(ctx, rawToken)
	if err == nil {
		return revokedErr
	}
	if errors.Is(err, tokenDomain.ErrRevokedTokenNotFound) {
		return nil
	}
	return err
}

// notify emits a lifecycle event. Emission is best-effort: the notifier
// contract guarantees it never blocks, and nothing here can fail the
// operation.
func (t *tokenUseCase) notify(
	ctx context.Context,
	eventType eventDomain.EventType,
	user *userDomain.User,
	payload *document.Document,
) {
	if t.notifier == nil {
		return
	}
	t.notifier.Notify(ctx, &eventDomain.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		UserID:       user.ID,
		MembershipID: user.MembershipID,
		Payload:      payload,
		EventTime:    t.clock().UTC(),
	})
}

// malformedMembership folds the membership's validation violations into a
// single distinguishable error.
func malformedMembership(violations []error) error {
	messages := make([]string, len(violations))
	for i, violation := range violations {
		messages[i] = violation.Error()
	}
	return apperrors.Wrap(membershipDomain.ErrMalformedMembership, strings.Join(messages, "; "))
}

// bearerTokenPayload builds the event payload for an issued pair.
func bearerTokenPayload(token *tokenDomain.BearerToken) *document.Document {
	payload := document.New()
	payload.Set("access_token", token.AccessToken)
	payload.Set("expires_in", token.ExpiresIn.Seconds())
	payload.Set("refresh_token", token.RefreshToken)
	payload.Set("refresh_expires_in", token.RefreshExpiresIn.Seconds())
	return payload
}
