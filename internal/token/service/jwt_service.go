package service

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/allisson/identity/internal/errors"
	membershipDomain "github.com/allisson/identity/internal/membership/domain"
	tokenDomain "github.com/allisson/identity/internal/token/domain"
)

// Registered claim names used on the wire. "prn" carries the membership id,
// matching the original wire format.
const (
	claimTokenID      = "jti"
	claimSubject      = "sub"
	claimMembershipID = "prn"
	claimIssuedAt     = "iat"
	claimExpiresAt    = "exp"
)

// jwtTokenService implements TokenSigner on JSON Web Tokens with HMAC
// signatures. The HMAC variant is selected by the membership hash algorithm.
type jwtTokenService struct {
	memberships MembershipGetter
}

// NewJWTTokenService creates a TokenSigner backed by golang-jwt. The
// membership getter resolves per-tenant signing secrets during decoding.
func NewJWTTokenService(memberships MembershipGetter) TokenSigner {
	return &jwtTokenService{memberships: memberships}
}

// Sign produces a signed JWT for the claims.
func (s *jwtTokenService) Sign(
	claims *tokenDomain.TokenClaims,
	algorithm string,
	encoding string,
	secretKey string,
) (string, error) {
	mapClaims := jwt.MapClaims{
		claimTokenID:      claims.TokenID,
		claimSubject:      claims.UserID,
		claimMembershipID: claims.MembershipID,
		claimIssuedAt:     claims.IssuedAt.Unix(),
		claimExpiresAt:    claims.ExpiresAt().Unix(),
	}
	for name, value := range claims.Extra {
		mapClaims[name] = value
	}

	token := jwt.NewWithClaims(signingMethod(algorithm), mapClaims)
	signed, err := token.SignedString(keyBytes(secretKey, encoding))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Decode parses and signature-verifies a raw token. The keyfunc reads the
// membership id claim to resolve the tenant secret, then restricts the
// signing method to the one that tenant configured. Claim validation
// (expiry) is disabled; the lifecycle performs it with its own clock.
func (s *jwtTokenService) Decode(ctx context.Context, rawToken string) (*tokenDomain.TokenClaims, error) {
	keyfunc := func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		mapClaims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return nil, fmt.Errorf("unexpected claims type: %T", token.Claims)
		}
		membershipID, _ := mapClaims[claimMembershipID].(string)
		if membershipID == "" {
			return nil, fmt.Errorf("token carries no membership id claim")
		}

		membership, err := s.memberships.Get(ctx, membershipID)
		if err != nil {
			return nil, err
		}
		if token.Method.Alg() != signingMethod(membership.HashAlgorithm).Alg() {
			return nil, fmt.Errorf("signing method %s not allowed for membership", token.Method.Alg())
		}
		return keyBytes(membership.SecretKey, membership.DefaultEncoding), nil
	}

	token, err := jwt.Parse(
		rawToken,
		keyfunc,
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decode token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.New("token claims are not valid")
	}

	return claimsFromMap(mapClaims), nil
}

// claimsFromMap rebuilds TokenClaims out of decoded map claims. Unknown
// claims land in Extra.
func claimsFromMap(mapClaims jwt.MapClaims) *tokenDomain.TokenClaims {
	claims := &tokenDomain.TokenClaims{Extra: make(map[string]any)}

	for name, value := range mapClaims {
		switch name {
		case claimTokenID:
			claims.TokenID, _ = value.(string)
		case claimSubject:
			claims.UserID, _ = value.(string)
		case claimMembershipID:
			claims.MembershipID, _ = value.(string)
		case claimIssuedAt, claimExpiresAt:
			// handled below from both values
		default:
			claims.Extra[name] = value
		}
	}

	issuedAt := numericTime(mapClaims[claimIssuedAt])
	expiresAt := numericTime(mapClaims[claimExpiresAt])
	claims.IssuedAt = issuedAt
	if !issuedAt.IsZero() && !expiresAt.IsZero() {
		claims.ExpiresIn = expiresAt.Sub(issuedAt)
	}

	return claims
}

// numericTime converts a decoded unix timestamp claim to a time.Time.
func numericTime(value any) time.Time {
	switch v := value.(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC()
	case int64:
		return time.Unix(v, 0).UTC()
	default:
		return time.Time{}
	}
}

// signingMethod maps a membership hash algorithm onto an HMAC signing method.
// Digest strength follows the tenant's hash choice; everything else signs
// with HS256.
func signingMethod(algorithm string) *jwt.SigningMethodHMAC {
	switch algorithm {
	case membershipDomain.HashAlgorithmSHA512:
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}

// keyBytes derives the HMAC key from the tenant secret. Hex and base64
// encoded secrets are decoded; anything else is used verbatim.
func keyBytes(secretKey string, encoding string) []byte {
	switch encoding {
	case membershipDomain.EncodingHex:
		if decoded, err := hex.DecodeString(secretKey); err == nil {
			return decoded
		}
	case membershipDomain.EncodingBase64:
		if decoded, err := base64.StdEncoding.DecodeString(secretKey); err == nil {
			return decoded
		}
	}
	return []byte(secretKey)
}
