package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/identity/internal/app"
	"github.com/allisson/identity/internal/config"
	membershipDomain "github.com/allisson/identity/internal/membership/domain"
	"github.com/allisson/identity/internal/rbac"
	roleDomain "github.com/allisson/identity/internal/role/domain"
	userDomain "github.com/allisson/identity/internal/user/domain"
)

// RunCreateMembership creates a new membership (tenant). When secretKey is
// empty a random signing secret is generated. Zero lifetimes fall back to the
// configured defaults.
//
// Requirements: database must be migrated and accessible.
func RunCreateMembership(
	ctx context.Context,
	name, slug, secretKey, hashAlgorithm, encoding string,
	tokenLifetime, refreshTokenLifetime time.Duration,
	format string,
	cmdIO IOTuple,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	if secretKey == "" {
		generated, err := generateSecretKey()
		if err != nil {
			return fmt.Errorf("failed to generate secret key: %w", err)
		}
		secretKey = generated
	}
	if tokenLifetime <= 0 {
		tokenLifetime = cfg.TokenDefaultLifetime
	}
	if refreshTokenLifetime <= 0 {
		refreshTokenLifetime = cfg.RefreshTokenDefaultLifetime
	}

	now := time.Now().UTC()
	membership := &membershipDomain.Membership{
		ID:                   uuid.NewString(),
		Name:                 name,
		Slug:                 slug,
		SecretKey:            secretKey,
		HashAlgorithm:        hashAlgorithm,
		DefaultEncoding:      encoding,
		TokenLifetime:        tokenLifetime,
		RefreshTokenLifetime: refreshTokenLifetime,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if violations := membership.Validate(); len(violations) > 0 {
		for _, violation := range violations {
			_, _ = fmt.Fprintf(cmdIO.Writer, "invalid membership: %s\n", violation)
		}
		return fmt.Errorf("membership validation failed")
	}

	membershipRepo, err := container.MembershipRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize membership repository: %w", err)
	}

	if err := membershipRepo.Create(ctx, membership); err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}

	logger.Info("membership created",
		slog.String("membership_id", membership.ID),
		slog.String("slug", membership.Slug),
	)

	output := map[string]any{
		"membership_id": membership.ID,
		"slug":          membership.Slug,
		"secret_key":    membership.SecretKey,
	}
	return writeOutput(cmdIO.Writer, format, output, func(w io.Writer) {
		_, _ = fmt.Fprintln(w, "Membership created successfully!")
		_, _ = fmt.Fprintf(w, "Membership ID: %s\n", membership.ID)
		_, _ = fmt.Fprintf(w, "Slug:          %s\n", membership.Slug)
		_, _ = fmt.Fprintf(w, "Secret key:    %s\n", membership.SecretKey)
		_, _ = fmt.Fprintln(w, "\nIMPORTANT: The secret key signs every token in this tenant. Store it securely.")
	})
}

// RunCreateRole creates a new role within a membership. Permit and forbid
// patterns are parsed up front so malformed statements are rejected before
// anything is stored.
func RunCreateRole(
	ctx context.Context,
	membershipID, name, slug, description string,
	permissions, forbidden []string,
	format string,
	cmdIO IOTuple,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	if _, err := rbac.ParseStatements(permissions, forbidden); err != nil {
		return fmt.Errorf("invalid permission statement: %w", err)
	}

	membershipRepo, err := container.MembershipRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize membership repository: %w", err)
	}
	if _, err := membershipRepo.Get(ctx, membershipID); err != nil {
		return fmt.Errorf("failed to resolve membership: %w", err)
	}

	roleRepo, err := container.RoleRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize role repository: %w", err)
	}

	now := time.Now().UTC()
	role := &roleDomain.Role{
		ID:           uuid.NewString(),
		MembershipID: membershipID,
		Name:         name,
		Slug:         slug,
		Description:  description,
		Permissions:  permissions,
		Forbidden:    forbidden,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := roleRepo.Create(ctx, role); err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	logger.Info("role created",
		slog.String("role_id", role.ID),
		slog.String("membership_id", membershipID),
		slog.String("slug", role.Slug),
	)

	output := map[string]any{
		"role_id":       role.ID,
		"membership_id": role.MembershipID,
		"slug":          role.Slug,
	}
	return writeOutput(cmdIO.Writer, format, output, func(w io.Writer) {
		_, _ = fmt.Fprintln(w, "Role created successfully!")
		_, _ = fmt.Fprintf(w, "Role ID: %s\n", role.ID)
		_, _ = fmt.Fprintf(w, "Slug:    %s\n", role.Slug)
	})
}

// RunCreateUser creates a new user within a membership. The password is
// hashed with the membership's configured algorithm and encoding.
func RunCreateUser(
	ctx context.Context,
	membershipID, username, emailAddress, password, roleSlug, firstName, lastName string,
	permissions, forbidden []string,
	format string,
	cmdIO IOTuple,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	if _, err := rbac.ParseStatements(permissions, forbidden); err != nil {
		return fmt.Errorf("invalid permission statement: %w", err)
	}

	membershipRepo, err := container.MembershipRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize membership repository: %w", err)
	}
	membership, err := membershipRepo.Get(ctx, membershipID)
	if err != nil {
		return fmt.Errorf("failed to resolve membership: %w", err)
	}

	if roleSlug != "" {
		roleRepo, err := container.RoleRepository()
		if err != nil {
			return fmt.Errorf("failed to initialize role repository: %w", err)
		}
		if _, err := roleRepo.GetBySlug(ctx, roleSlug, membershipID); err != nil {
			return fmt.Errorf("failed to resolve role: %w", err)
		}
	}

	passwordService, err := container.PasswordService()
	if err != nil {
		return fmt.Errorf("failed to initialize password service: %w", err)
	}
	passwordHash, err := passwordService.Hash(password, membership.HashAlgorithm, membership.DefaultEncoding)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userRepo, err := container.UserRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize user repository: %w", err)
	}

	now := time.Now().UTC()
	user := &userDomain.User{
		ID:           uuid.NewString(),
		MembershipID: membershipID,
		FirstName:    firstName,
		LastName:     lastName,
		Username:     username,
		EmailAddress: emailAddress,
		PasswordHash: passwordHash,
		RoleSlug:     roleSlug,
		Permissions:  permissions,
		Forbidden:    forbidden,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user created",
		slog.String("user_id", user.ID),
		slog.String("membership_id", membershipID),
		slog.String("username", username),
	)

	output := map[string]any{
		"user_id":       user.ID,
		"membership_id": user.MembershipID,
		"username":      user.Username,
	}
	return writeOutput(cmdIO.Writer, format, output, func(w io.Writer) {
		_, _ = fmt.Fprintln(w, "User created successfully!")
		_, _ = fmt.Fprintf(w, "User ID:  %s\n", user.ID)
		_, _ = fmt.Fprintf(w, "Username: %s\n", user.Username)
	})
}

// generateSecretKey produces a 256-bit random key encoded as hex.
func generateSecretKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
