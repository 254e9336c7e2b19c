package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	eventDomain "github.com/allisson/identity/internal/event/domain"
	membershipDomain "github.com/allisson/identity/internal/membership/domain"
	tokenDomain "github.com/allisson/identity/internal/token/domain"
	userDomain "github.com/allisson/identity/internal/user/domain"
)

// mockMembershipRepository is a mock implementation of MembershipRepository for testing.
type mockMembershipRepository struct {
	mock.Mock
}

func (m *mockMembershipRepository) Get(
	ctx context.Context,
	membershipID string,
) (*membershipDomain.Membership, error) {
	args := m.Called(ctx, membershipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membershipDomain.Membership), args.Error(1)
}

// mockUserRepository is a mock implementation of UserRepository for testing.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByUsernameOrEmail(
	ctx context.Context,
	identifier string,
	membershipID string,
) (*userDomain.User, error) {
	args := m.Called(ctx, identifier, membershipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserRepository) Get(
	ctx context.Context,
	membershipID string,
	userID string,
) (*userDomain.User, error) {
	args := m.Called(ctx, membershipID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

// mockRevokedTokenRepository is a mock implementation of RevokedTokenRepository for testing.
type mockRevokedTokenRepository struct {
	mock.Mock
}

func (m *mockRevokedTokenRepository) FindByToken(
	ctx context.Context,
	rawToken string,
) (*tokenDomain.RevokedToken, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.RevokedToken), args.Error(1)
}

func (m *mockRevokedTokenRepository) Insert(
	ctx context.Context,
	record *tokenDomain.RevokedToken,
) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// mockTokenSigner is a mock implementation of TokenSigner for testing.
type mockTokenSigner struct {
	mock.Mock
}

func (m *mockTokenSigner) Sign(
	claims *tokenDomain.TokenClaims,
	algorithm string,
	encoding string,
	secretKey string,
) (string, error) {
	args := m.Called(claims, algorithm, encoding, secretKey)
	return args.String(0), args.Error(1)
}

func (m *mockTokenSigner) Decode(
	ctx context.Context,
	rawToken string,
) (*tokenDomain.TokenClaims, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.TokenClaims), args.Error(1)
}

// mockPasswordService is a mock implementation of PasswordService for testing.
type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(password string, algorithm string, encoding string) (string, error) {
	args := m.Called(password, algorithm, encoding)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) Compare(password string, storedHash string, algorithm string, encoding string) bool {
	args := m.Called(password, storedHash, algorithm, encoding)
	return args.Bool(0)
}

// mockEventNotifier is a mock implementation of EventNotifier for testing.
type mockEventNotifier struct {
	mock.Mock
}

func (m *mockEventNotifier) Notify(ctx context.Context, event *eventDomain.Event) {
	m.Called(ctx, event)
}

// passthroughTxManager runs the function directly, without a transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type lifecycleMocks struct {
	membershipRepo  *mockMembershipRepository
	userRepo        *mockUserRepository
	revokedRepo     *mockRevokedTokenRepository
	signer          *mockTokenSigner
	passwordService *mockPasswordService
	notifier        *mockEventNotifier
}

func newLifecycle(now time.Time) (*tokenUseCase, *lifecycleMocks) {
	mocks := &lifecycleMocks{
		membershipRepo:  &mockMembershipRepository{},
		userRepo:        &mockUserRepository{},
		revokedRepo:     &mockRevokedTokenRepository{},
		signer:          &mockTokenSigner{},
		passwordService: &mockPasswordService{},
		notifier:        &mockEventNotifier{},
	}
	uc := NewTokenUseCase(
		passthroughTxManager{},
		mocks.membershipRepo,
		mocks.userRepo,
		mocks.revokedRepo,
		mocks.signer,
		mocks.passwordService,
		mocks.notifier,
	).(*tokenUseCase)
	uc.clock = func() time.Time { return now }
	return uc, mocks
}

func lifecycleMembership() *membershipDomain.Membership {
	now := time.Now().UTC()
	return &membershipDomain.Membership{
		ID:                   "membership-1",
		Name:                 "Acme",
		Slug:                 "acme",
		SecretKey:            "a-long-signing-secret-for-tests",
		HashAlgorithm:        membershipDomain.HashAlgorithmSHA256,
		DefaultEncoding:      membershipDomain.EncodingHex,
		TokenLifetime:        time.Hour,
		RefreshTokenLifetime: 24 * time.Hour,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func lifecycleUser() *userDomain.User {
	return &userDomain.User{
		ID:           "user-1",
		MembershipID: "membership-1",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Username:     "ada",
		EmailAddress: "ada@example.com",
		PasswordHash: "stored-hash",
		RoleSlug:     "admins",
	}
}

func notRevoked(repo *mockRevokedTokenRepository, rawToken string) {
	repo.On("FindByToken", mock.Anything, rawToken).
		Return(nil, tokenDomain.ErrRevokedTokenNotFound)
}

func eventOfType(eventType eventDomain.EventType) interface{} {
	return mock.MatchedBy(func(event *eventDomain.Event) bool {
		return event.Type == eventType
	})
}

func TestTokenUseCase_Issue(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("Success", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		membership := lifecycleMembership()
		user := lifecycleUser()

		mocks.membershipRepo.On("Get", ctx, "membership-1").Return(membership, nil)
		mocks.userRepo.On("GetByUsernameOrEmail", ctx, "ada", "membership-1").Return(user, nil)
		mocks.passwordService.
			On("Compare", "hunter2", "stored-hash", membership.HashAlgorithm, membership.DefaultEncoding).
			Return(true)
		mocks.signer.
			On("Sign", mock.MatchedBy(func(claims *tokenDomain.TokenClaims) bool {
				return !claims.IsRefreshToken()
			}), membership.HashAlgorithm, membership.DefaultEncoding, membership.SecretKey).
			Return("signed-access", nil)
		mocks.signer.
			On("Sign", mock.MatchedBy(func(claims *tokenDomain.TokenClaims) bool {
				return claims.IsRefreshToken() && claims.ExpiresIn == membership.RefreshTokenLifetime
			}), membership.HashAlgorithm, membership.DefaultEncoding, membership.SecretKey).
			Return("signed-refresh", nil)
		mocks.notifier.On("Notify", ctx, eventOfType(eventDomain.EventTokenGenerated)).Return()

		token, err := uc.Issue(ctx, "ada", "hunter2", "membership-1")
		require.NoError(t, err)
		assert.Equal(t, "signed-access", token.AccessToken)
		assert.Equal(t, "signed-refresh", token.RefreshToken)
		assert.Equal(t, time.Hour, token.ExpiresIn)
		assert.Equal(t, 24*time.Hour, token.RefreshExpiresIn)
		mocks.notifier.AssertExpectations(t)
	})

	t.Run("Error_MembershipNotFound", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		mocks.membershipRepo.On("Get", ctx, "missing").
			Return(nil, membershipDomain.ErrMembershipNotFound)

		_, err := uc.Issue(ctx, "ada", "hunter2", "missing")
		assert.ErrorIs(t, err, membershipDomain.ErrMembershipNotFound)
	})

	t.Run("Error_MalformedMembership", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		membership := lifecycleMembership()
		membership.SecretKey = ""
		mocks.membershipRepo.On("Get", ctx, "membership-1").Return(membership, nil)

		_, err := uc.Issue(ctx, "ada", "hunter2", "membership-1")
		assert.ErrorIs(t, err, membershipDomain.ErrMalformedMembership)
		mocks.userRepo.AssertNotCalled(t, "GetByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_UserNotFound", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		mocks.membershipRepo.On("Get", ctx, "membership-1").Return(lifecycleMembership(), nil)
		mocks.userRepo.On("GetByUsernameOrEmail", ctx, "ghost", "membership-1").
			Return(nil, userDomain.ErrUserNotFound)

		_, err := uc.Issue(ctx, "ghost", "hunter2", "membership-1")
		assert.ErrorIs(t, err, userDomain.ErrUserNotFound)
	})

	t.Run("Error_InvalidCredentials", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		membership := lifecycleMembership()
		mocks.membershipRepo.On("Get", ctx, "membership-1").Return(membership, nil)
		mocks.userRepo.On("GetByUsernameOrEmail", ctx, "ada", "membership-1").
			Return(lifecycleUser(), nil)
		mocks.passwordService.
			On("Compare", "wrong", "stored-hash", membership.HashAlgorithm, membership.DefaultEncoding).
			Return(false)

		_, err := uc.Issue(ctx, "ada", "wrong", "membership-1")
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidCredentials)
		mocks.signer.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mocks.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	})
}

func TestTokenUseCase_Verify(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	accessClaims := func(issuedAt time.Time, lifetime time.Duration) *tokenDomain.TokenClaims {
		return &tokenDomain.TokenClaims{
			TokenID:      "token-1",
			UserID:       "user-1",
			MembershipID: "membership-1",
			IssuedAt:     issuedAt,
			ExpiresIn:    lifetime,
		}
	}

	t.Run("Success", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		user := lifecycleUser()

		notRevoked(mocks.revokedRepo, "raw-token")
		mocks.signer.On("Decode", ctx, "raw-token").
			Return(accessClaims(now.Add(-30*time.Minute), time.Hour), nil)
		mocks.userRepo.On("Get", ctx, "membership-1", "user-1").Return(user, nil)
		mocks.notifier.On("Notify", ctx, eventOfType(eventDomain.EventTokenVerified)).Return()

		result, err := uc.Verify(ctx, "raw-token")
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, "raw-token", result.Token)
		assert.Equal(t, user, result.User)
		assert.Equal(t, 30*time.Minute, result.RemainingLifetime)
		assert.False(t, result.IsRefreshToken)
		mocks.notifier.AssertExpectations(t)
	})

	t.Run("Success_AtExactExpiryInstant", func(t *testing.T) {
		// A token is valid through its expiry instant, invalid only after.
		uc, mocks := newLifecycle(now)

		notRevoked(mocks.revokedRepo, "raw-token")
		mocks.signer.On("Decode", ctx, "raw-token").
			Return(accessClaims(now.Add(-time.Hour), time.Hour), nil)
		mocks.userRepo.On("Get", ctx, "membership-1", "user-1").Return(lifecycleUser(), nil)
		mocks.notifier.On("Notify", ctx, mock.Anything).Return()

		result, err := uc.Verify(ctx, "raw-token")
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), result.RemainingLifetime)
	})

	t.Run("Error_Expired", func(t *testing.T) {
		uc, mocks := newLifecycle(now)

		notRevoked(mocks.revokedRepo, "raw-token")
		mocks.signer.On("Decode", ctx, "raw-token").
			Return(accessClaims(now.Add(-time.Hour-time.Second), time.Hour), nil)

		_, err := uc.Verify(ctx, "raw-token")
		assert.ErrorIs(t, err, tokenDomain.ErrTokenExpired)
		mocks.userRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_Revoked", func(t *testing.T) {
		// Revocation is checked before the signature is even inspected.
		uc, mocks := newLifecycle(now)
		mocks.revokedRepo.On("FindByToken", ctx, "raw-token").
			Return(&tokenDomain.RevokedToken{ID: "rev-1", Token: "raw-token"}, nil)

		_, err := uc.Verify(ctx, "raw-token")
		assert.ErrorIs(t, err, tokenDomain.ErrTokenRevoked)
		mocks.signer.AssertNotCalled(t, "Decode", mock.Anything, mock.Anything)
	})

	t.Run("Error_UndecodableToken", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		notRevoked(mocks.revokedRepo, "garbage")
		mocks.signer.On("Decode", ctx, "garbage").
			Return(nil, assert.AnError)

		_, err := uc.Verify(ctx, "garbage")
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken)
	})

	t.Run("Error_MissingClaims", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		claims := accessClaims(now, time.Hour)
		claims.UserID = ""

		notRevoked(mocks.revokedRepo, "raw-token")
		mocks.signer.On("Decode", ctx, "raw-token").Return(claims, nil)

		_, err := uc.Verify(ctx, "raw-token")
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken)
	})

	t.Run("Error_UserNotFound", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		notRevoked(mocks.revokedRepo, "raw-token")
		mocks.signer.On("Decode", ctx, "raw-token").
			Return(accessClaims(now, time.Hour), nil)
		mocks.userRepo.On("Get", ctx, "membership-1", "user-1").
			Return(nil, userDomain.ErrUserNotFound)

		_, err := uc.Verify(ctx, "raw-token")
		assert.ErrorIs(t, err, userDomain.ErrUserNotFound)
	})
}

func TestTokenUseCase_Refresh(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	refreshClaims := func(issuedAt time.Time, lifetime time.Duration) *tokenDomain.TokenClaims {
		claims := &tokenDomain.TokenClaims{
			TokenID:      "token-1",
			UserID:       "user-1",
			MembershipID: "membership-1",
			IssuedAt:     issuedAt,
			ExpiresIn:    lifetime,
		}
		return claims.WithClaim(tokenDomain.RefreshTokenClaim, true)
	}

	t.Run("Success", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		membership := lifecycleMembership()
		user := lifecycleUser()

		notRevoked(mocks.revokedRepo, "old-refresh")
		mocks.signer.On("Decode", ctx, "old-refresh").
			Return(refreshClaims(now.Add(-time.Hour), 24*time.Hour), nil)
		mocks.membershipRepo.On("Get", ctx, "membership-1").Return(membership, nil)
		mocks.userRepo.On("Get", ctx, "membership-1", "user-1").Return(user, nil)
		mocks.signer.
			On("Sign", mock.MatchedBy(func(claims *tokenDomain.TokenClaims) bool {
				return !claims.IsRefreshToken()
			}), membership.HashAlgorithm, membership.DefaultEncoding, membership.SecretKey).
			Return("new-access", nil)
		mocks.signer.
			On("Sign", mock.MatchedBy(func(claims *tokenDomain.TokenClaims) bool {
				return claims.IsRefreshToken()
			}), membership.HashAlgorithm, membership.DefaultEncoding, membership.SecretKey).
			Return("new-refresh", nil)
		mocks.notifier.On("Notify", ctx, eventOfType(eventDomain.EventTokenRefreshed)).Return()

		token, err := uc.Refresh(ctx, "old-refresh", false)
		require.NoError(t, err)
		assert.Equal(t, "new-access", token.AccessToken)
		assert.Equal(t, "new-refresh", token.RefreshToken)
		mocks.revokedRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("Success_RevokeBeforeRetiresPresentedToken", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		membership := lifecycleMembership()
		user := lifecycleUser()

		notRevoked(mocks.revokedRepo, "old-refresh")
		mocks.signer.On("Decode", ctx, "old-refresh").
			Return(refreshClaims(now.Add(-time.Hour), 24*time.Hour), nil)
		mocks.membershipRepo.On("Get", ctx, "membership-1").Return(membership, nil)
		mocks.userRepo.On("Get", ctx, "membership-1", "user-1").Return(user, nil)
		mocks.signer.
			On("Sign", mock.Anything, membership.HashAlgorithm, membership.DefaultEncoding, membership.SecretKey).
			Return("new-token", nil)
		mocks.revokedRepo.
			On("Insert", ctx, mock.MatchedBy(func(record *tokenDomain.RevokedToken) bool {
				return record.Token == "old-refresh" && record.UserID == "user-1"
			})).
			Return(nil)
		mocks.notifier.On("Notify", ctx, eventOfType(eventDomain.EventTokenRefreshed)).Return()

		_, err := uc.Refresh(ctx, "old-refresh", true)
		require.NoError(t, err)
		mocks.revokedRepo.AssertExpectations(t)
		// The internal revocation stays silent; only the refresh event fires.
		mocks.notifier.AssertNumberOfCalls(t, "Notify", 1)
	})

	t.Run("Error_NotRefreshable", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		accessOnly := &tokenDomain.TokenClaims{
			TokenID:      "token-1",
			UserID:       "user-1",
			MembershipID: "membership-1",
			IssuedAt:     now,
			ExpiresIn:    time.Hour,
		}

		notRevoked(mocks.revokedRepo, "access-token")
		mocks.signer.On("Decode", ctx, "access-token").Return(accessOnly, nil)

		_, err := uc.Refresh(ctx, "access-token", false)
		assert.ErrorIs(t, err, tokenDomain.ErrTokenNotRefreshable)
	})

	t.Run("Error_Revoked", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		mocks.revokedRepo.On("FindByToken", ctx, "old-refresh").
			Return(&tokenDomain.RevokedToken{ID: "rev-1", Token: "old-refresh"}, nil)

		_, err := uc.Refresh(ctx, "old-refresh", false)
		assert.ErrorIs(t, err, tokenDomain.ErrRefreshTokenRevoked)
	})

	t.Run("Error_Expired", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		notRevoked(mocks.revokedRepo, "old-refresh")
		mocks.signer.On("Decode", ctx, "old-refresh").
			Return(refreshClaims(now.Add(-25*time.Hour), 24*time.Hour), nil)

		_, err := uc.Refresh(ctx, "old-refresh", false)
		assert.ErrorIs(t, err, tokenDomain.ErrRefreshTokenExpired)
	})
}

func TestTokenUseCase_Revoke(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("Success_AccessTokenRevokesSiblingRefresh", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		membership := lifecycleMembership()
		user := lifecycleUser()

		accessClaims := &tokenDomain.TokenClaims{
			TokenID:      "token-1",
			UserID:       "user-1",
			MembershipID: "membership-1",
			IssuedAt:     now.Add(-time.Minute),
			ExpiresIn:    time.Hour,
		}
		siblingClaims := accessClaims.WithClaim(tokenDomain.RefreshTokenClaim, true)
		siblingClaims.ExpiresIn = membership.RefreshTokenLifetime

		notRevoked(mocks.revokedRepo, "access-token")
		notRevoked(mocks.revokedRepo, "sibling-refresh")
		mocks.signer.On("Decode", ctx, "access-token").Return(accessClaims, nil)
		mocks.signer.On("Decode", ctx, "sibling-refresh").Return(siblingClaims, nil)
		mocks.userRepo.On("Get", ctx, "membership-1", "user-1").Return(user, nil)
		mocks.membershipRepo.On("Get", ctx, "membership-1").Return(membership, nil)
		mocks.signer.
			On("Sign", mock.MatchedBy(func(claims *tokenDomain.TokenClaims) bool {
				return claims.IsRefreshToken() && claims.TokenID == "token-1" &&
					claims.IssuedAt.Equal(accessClaims.IssuedAt)
			}), membership.HashAlgorithm, membership.DefaultEncoding, membership.SecretKey).
			Return("sibling-refresh", nil)
		mocks.revokedRepo.
			On("Insert", ctx, mock.MatchedBy(func(record *tokenDomain.RevokedToken) bool {
				return record.Token == "access-token"
			})).
			Return(nil)
		mocks.revokedRepo.
			On("Insert", ctx, mock.MatchedBy(func(record *tokenDomain.RevokedToken) bool {
				return record.Token == "sibling-refresh"
			})).
			Return(nil)
		mocks.notifier.On("Notify", ctx, eventOfType(eventDomain.EventTokenRevoked)).Return()

		err := uc.Revoke(ctx, "access-token")
		require.NoError(t, err)
		mocks.revokedRepo.AssertExpectations(t)
		// Single event for the whole cascade; the sibling revocation is silent.
		mocks.notifier.AssertNumberOfCalls(t, "Notify", 1)
	})

	t.Run("Success_SiblingAlreadyRevoked", func(t *testing.T) {
		// The derived refresh token is already in the revocation store, as
		// after a Refresh with revocation. The access token must still be
		// revoked and the cascade must not roll back.
		uc, mocks := newLifecycle(now)
		membership := lifecycleMembership()
		user := lifecycleUser()

		accessClaims := &tokenDomain.TokenClaims{
			TokenID:      "token-1",
			UserID:       "user-1",
			MembershipID: "membership-1",
			IssuedAt:     now.Add(-time.Minute),
			ExpiresIn:    time.Hour,
		}

		notRevoked(mocks.revokedRepo, "access-token")
		mocks.revokedRepo.On("FindByToken", ctx, "sibling-refresh").
			Return(&tokenDomain.RevokedToken{ID: "rev-1", Token: "sibling-refresh"}, nil)
		mocks.signer.On("Decode", ctx, "access-token").Return(accessClaims, nil)
		mocks.userRepo.On("Get", ctx, "membership-1", "user-1").Return(user, nil)
		mocks.membershipRepo.On("Get", ctx, "membership-1").Return(membership, nil)
		mocks.signer.
			On("Sign", mock.MatchedBy(func(claims *tokenDomain.TokenClaims) bool {
				return claims.IsRefreshToken() && claims.TokenID == "token-1"
			}), membership.HashAlgorithm, membership.DefaultEncoding, membership.SecretKey).
			Return("sibling-refresh", nil)
		mocks.revokedRepo.
			On("Insert", ctx, mock.MatchedBy(func(record *tokenDomain.RevokedToken) bool {
				return record.Token == "access-token"
			})).
			Return(nil)
		mocks.notifier.On("Notify", ctx, eventOfType(eventDomain.EventTokenRevoked)).Return()

		err := uc.Revoke(ctx, "access-token")
		require.NoError(t, err)
		mocks.revokedRepo.AssertNumberOfCalls(t, "Insert", 1)
		mocks.notifier.AssertNumberOfCalls(t, "Notify", 1)
	})

	t.Run("Success_RefreshTokenNoSiblingCascade", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		membership := lifecycleMembership()
		user := lifecycleUser()

		refreshClaims := (&tokenDomain.TokenClaims{
			TokenID:      "token-1",
			UserID:       "user-1",
			MembershipID: "membership-1",
			IssuedAt:     now.Add(-time.Minute),
			ExpiresIn:    24 * time.Hour,
		}).WithClaim(tokenDomain.RefreshTokenClaim, true)

		notRevoked(mocks.revokedRepo, "refresh-token")
		mocks.signer.On("Decode", ctx, "refresh-token").Return(refreshClaims, nil)
		mocks.userRepo.On("Get", ctx, "membership-1", "user-1").Return(user, nil)
		mocks.membershipRepo.On("Get", ctx, "membership-1").Return(membership, nil)
		mocks.revokedRepo.On("Insert", ctx, mock.Anything).Return(nil)
		mocks.notifier.On("Notify", ctx, eventOfType(eventDomain.EventTokenRevoked)).Return()

		err := uc.Revoke(ctx, "refresh-token")
		require.NoError(t, err)
		mocks.revokedRepo.AssertNumberOfCalls(t, "Insert", 1)
		mocks.signer.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_AlreadyRevoked", func(t *testing.T) {
		// Revoking twice fails on the internal verification.
		uc, mocks := newLifecycle(now)
		mocks.revokedRepo.On("FindByToken", ctx, "access-token").
			Return(&tokenDomain.RevokedToken{ID: "rev-1", Token: "access-token"}, nil)

		err := uc.Revoke(ctx, "access-token")
		assert.ErrorIs(t, err, tokenDomain.ErrTokenRevoked)
		mocks.revokedRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("Error_ExpiredToken", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		expiredClaims := &tokenDomain.TokenClaims{
			TokenID:      "token-1",
			UserID:       "user-1",
			MembershipID: "membership-1",
			IssuedAt:     now.Add(-2 * time.Hour),
			ExpiresIn:    time.Hour,
		}

		notRevoked(mocks.revokedRepo, "stale-token")
		mocks.signer.On("Decode", ctx, "stale-token").Return(expiredClaims, nil)

		err := uc.Revoke(ctx, "stale-token")
		assert.ErrorIs(t, err, tokenDomain.ErrTokenExpired)
	})

	t.Run("Error_InsertFails", func(t *testing.T) {
		uc, mocks := newLifecycle(now)
		claims := &tokenDomain.TokenClaims{
			TokenID:      "token-1",
			UserID:       "user-1",
			MembershipID: "membership-1",
			IssuedAt:     now,
			ExpiresIn:    time.Hour,
		}

		notRevoked(mocks.revokedRepo, "access-token")
		mocks.signer.On("Decode", ctx, "access-token").Return(claims, nil)
		mocks.userRepo.On("Get", ctx, "membership-1", "user-1").Return(lifecycleUser(), nil)
		mocks.revokedRepo.On("Insert", ctx, mock.Anything).Return(assert.AnError)

		err := uc.Revoke(ctx, "access-token")
		assert.ErrorIs(t, err, assert.AnError)
		mocks.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	})
}
