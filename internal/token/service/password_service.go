package service

import (
	"crypto/md5"  //nolint:gosec // legacy tenant-selectable digest, not used for new tenants
	"crypto/sha1" //nolint:gosec // legacy tenant-selectable digest, not used for new tenants
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/allisson/identity/internal/errors"
	membershipDomain "github.com/allisson/identity/internal/membership/domain"
)

// passwordService implements PasswordService. Digest algorithms (sha256,
// sha512, sha1, md5) hash deterministically and compare in constant time;
// bcrypt and argon2id use their salted verifiers.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordService creates a PasswordService. Argon2id hashing uses the
// moderate pwdhash policy, balancing security and login latency.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &passwordService{hasher: hasher}
}

// Hash computes the password hash using the tenant's algorithm and encoding.
func (p *passwordService) Hash(password string, algorithm string, encoding string) (string, error) {
	switch algorithm {
	case membershipDomain.HashAlgorithmBcrypt:
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", apperrors.Wrap(err, "failed to hash password")
		}
		return string(hashed), nil
	case membershipDomain.HashAlgorithmArgon2id:
		hashed, err := p.hasher.Hash([]byte(password))
		if err != nil {
			return "", apperrors.Wrap(err, "failed to hash password")
		}
		return hashed, nil
	default:
		digest, err := digestOf(password, algorithm)
		if err != nil {
			return "", err
		}
		return encodeDigest(digest, encoding), nil
	}
}

// Compare reports whether the password matches the stored hash using the
// tenant's algorithm and encoding.
func (p *passwordService) Compare(password string, storedHash string, algorithm string, encoding string) bool {
	switch algorithm {
	case membershipDomain.HashAlgorithmBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
	case membershipDomain.HashAlgorithmArgon2id:
		ok, err := p.hasher.Verify([]byte(password), storedHash)
		return err == nil && ok
	default:
		digest, err := digestOf(password, algorithm)
		if err != nil {
			return false
		}
		computed := encodeDigest(digest, encoding)
		return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
	}
}

// digestOf computes the raw digest for the deterministic algorithms.
func digestOf(password string, algorithm string) ([]byte, error) {
	data := []byte(password)

	switch algorithm {
	case membershipDomain.HashAlgorithmSHA256:
		digest := sha256.Sum256(data)
		return digest[:], nil
	case membershipDomain.HashAlgorithmSHA512:
		digest := sha512.Sum512(data)
		return digest[:], nil
	case membershipDomain.HashAlgorithmSHA1:
		digest := sha1.Sum(data) //nolint:gosec // tenant-selected legacy algorithm
		return digest[:], nil
	case membershipDomain.HashAlgorithmMD5:
		digest := md5.Sum(data) //nolint:gosec // tenant-selected legacy algorithm
		return digest[:], nil
	default:
		return nil, apperrors.Wrap(
			apperrors.ErrInvalidInput,
			fmt.Sprintf("unsupported hash algorithm: %s", algorithm),
		)
	}
}

// encodeDigest renders a raw digest with the tenant's text encoding.
func encodeDigest(digest []byte, encoding string) string {
	if encoding == membershipDomain.EncodingBase64 {
		return base64.StdEncoding.EncodeToString(digest)
	}
	return hex.EncodeToString(digest)
}
