// Package usecase implements permission checks for role and user principals.
package usecase

import (
	"context"

	roleDomain "github.com/allisson/identity/internal/role/domain"
	userDomain "github.com/allisson/identity/internal/user/domain"
)

// RoleRepository defines the role lookup the access control use case needs.
type RoleRepository interface {
	// GetBySlug retrieves a role by slug within a membership.
	// Returns ErrRoleNotFound if not found.
	GetBySlug(ctx context.Context, slug string, membershipID string) (*roleDomain.Role, error)
}

// AccessControlUseCase decides whether a principal may perform an action on a
// resource, expressed as a subject.resource.action[.object] permission string.
type AccessControlUseCase interface {
	// HasRolePermission evaluates the required permission against the role's
	// own statements.
	HasRolePermission(ctx context.Context, role *roleDomain.Role, required string) (bool, error)

	// HasUserPermission evaluates the required permission against the user's
	// own statements combined with its assigned role's statements.
	HasUserPermission(ctx context.Context, user *userDomain.User, required string) (bool, error)
}
