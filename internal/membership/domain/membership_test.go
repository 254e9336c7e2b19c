package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validMembership() *Membership {
	return &Membership{
		ID:                   "membership-id",
		Name:                 "Acme",
		Slug:                 "acme",
		SecretKey:            "super-secret-signing-key",
		HashAlgorithm:        HashAlgorithmSHA256,
		DefaultEncoding:      EncodingHex,
		TokenLifetime:        time.Hour,
		RefreshTokenLifetime: 24 * time.Hour,
	}
}

func TestMembershipValidate(t *testing.T) {
	t.Run("Success_ValidMembership", func(t *testing.T) {
		assert.Empty(t, validMembership().Validate())
	})

	t.Run("Success_AllAlgorithmsAccepted", func(t *testing.T) {
		for _, algorithm := range []string{
			HashAlgorithmSHA256,
			HashAlgorithmSHA512,
			HashAlgorithmSHA1,
			HashAlgorithmMD5,
			HashAlgorithmBcrypt,
			HashAlgorithmArgon2id,
		} {
			membership := validMembership()
			membership.HashAlgorithm = algorithm
			assert.Empty(t, membership.Validate(), algorithm)
		}
	})

	t.Run("Error_MissingSecretKey", func(t *testing.T) {
		membership := validMembership()
		membership.SecretKey = ""
		assert.NotEmpty(t, membership.Validate())
	})

	t.Run("Error_UnknownHashAlgorithm", func(t *testing.T) {
		membership := validMembership()
		membership.HashAlgorithm = "rot13"
		assert.NotEmpty(t, membership.Validate())
	})

	t.Run("Error_UnknownEncoding", func(t *testing.T) {
		membership := validMembership()
		membership.DefaultEncoding = "utf-7"
		assert.NotEmpty(t, membership.Validate())
	})

	t.Run("Error_NonPositiveLifetimes", func(t *testing.T) {
		membership := validMembership()
		membership.TokenLifetime = 0
		membership.RefreshTokenLifetime = -time.Second
		violations := membership.Validate()
		assert.Len(t, violations, 2)
	})

	t.Run("Error_CollectsAllViolations", func(t *testing.T) {
		membership := &Membership{ID: "membership-id"}
		violations := membership.Validate()
		assert.GreaterOrEqual(t, len(violations), 4)
	})
}
