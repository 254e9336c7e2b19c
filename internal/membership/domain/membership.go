// Package domain defines the membership (tenant) domain model.
// Every role, user, and token in the system is bounded to exactly one
// membership and is never evaluated against another tenant's data.
package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/identity/internal/errors"
)

// Password hash algorithms a membership may select for credential verification.
const (
	HashAlgorithmSHA256   = "sha256"
	HashAlgorithmSHA512   = "sha512"
	HashAlgorithmSHA1     = "sha1"
	HashAlgorithmMD5      = "md5"
	HashAlgorithmBcrypt   = "bcrypt"
	HashAlgorithmArgon2id = "argon2id"
)

// Text encodings for digest-based password hashes.
const (
	EncodingHex    = "hex"
	EncodingBase64 = "base64"
)

// Membership domain errors.
var (
	// ErrMembershipNotFound indicates a membership with the specified ID was not found.
	ErrMembershipNotFound = apperrors.Wrap(apperrors.ErrNotFound, "membership not found")

	// ErrMalformedMembership indicates the membership's own configuration is invalid.
	ErrMalformedMembership = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed membership")
)

// Membership is the tenant boundary. It carries the credential-verification
// strategy (hash algorithm and text encoding), the signing secret, and the
// token lifetimes used for every credential issued within the tenant.
type Membership struct {
	ID                   string
	Name                 string
	Slug                 string
	SecretKey            string
	HashAlgorithm        string
	DefaultEncoding      string
	TokenLifetime        time.Duration
	RefreshTokenLifetime time.Duration
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate performs the membership self-check and returns every violated
// constraint. An empty result means the membership is usable for token
// issuance and verification.
func (m *Membership) Validate() []error {
	err := validation.ValidateStruct(m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.SecretKey, validation.Required),
		validation.Field(&m.HashAlgorithm,
			validation.Required,
			validation.In(
				HashAlgorithmSHA256,
				HashAlgorithmSHA512,
				HashAlgorithmSHA1,
				HashAlgorithmMD5,
				HashAlgorithmBcrypt,
				HashAlgorithmArgon2id,
			),
		),
		validation.Field(&m.DefaultEncoding,
			validation.Required,
			validation.In(EncodingHex, EncodingBase64),
		),
		validation.Field(&m.TokenLifetime, validation.By(positiveDuration)),
		validation.Field(&m.RefreshTokenLifetime, validation.By(positiveDuration)),
	)
	if err == nil {
		return nil
	}

	if fieldErrors, ok := err.(validation.Errors); ok {
		violations := make([]error, 0, len(fieldErrors))
		for field, fieldErr := range fieldErrors {
			violations = append(violations, apperrors.Wrap(fieldErr, field))
		}
		return violations
	}
	return []error{err}
}

// positiveDuration validates that a duration field is strictly positive.
func positiveDuration(value any) error {
	d, ok := value.(time.Duration)
	if !ok {
		return validation.NewError("validation_duration", "must be a duration")
	}
	if d <= 0 {
		return validation.NewError("validation_duration_positive", "must be a positive duration")
	}
	return nil
}

// Usage aggregates per-tenant resource counts gathered across subsystems.
type Usage struct {
	MembershipID  string
	Users         int64
	Roles         int64
	RevokedTokens int64
	Events        int64
}
