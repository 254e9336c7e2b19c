package usecase

import (
	"context"

	"github.com/allisson/identity/internal/rbac"
	roleDomain "github.com/allisson/identity/internal/role/domain"
	userDomain "github.com/allisson/identity/internal/user/domain"
)

// accessControlUseCase implements AccessControlUseCase on top of the pure
// rbac engine. Role resolution is its only collaborator call; evaluation
// itself performs no I/O.
type accessControlUseCase struct {
	roleRepo RoleRepository
}

// HasRolePermission evaluates the required permission against the role's
// statement set. A malformed required string or stored pattern fails the
// whole check.
func (a *accessControlUseCase) HasRolePermission(
	ctx context.Context,
	role *roleDomain.Role,
	required string,
) (bool, error) {
	statements, err := role.Statements()
	if err != nil {
		return false, err
	}
	return rbac.HasPermission(statements, required)
}

// HasUserPermission evaluates the required permission against the user's own
// statements merged with its assigned role's statements. User statements
// augment the role's; at equal specificity a forbid from either set denies.
// Users without a role are evaluated on their own statements only.
func (a *accessControlUseCase) HasUserPermission(
	ctx context.Context,
	user *userDomain.User,
	required string,
) (bool, error) {
	var statements []rbac.Statement

	if user.RoleSlug != "" {
		role, err := a.roleRepo.GetBySlug(ctx, user.RoleSlug, user.MembershipID)
		if err != nil {
			return false, err
		}
		roleStatements, err := role.Statements()
		if err != nil {
			return false, err
		}
		statements = append(statements, roleStatements...)
	}

	userStatements, err := user.Statements()
	if err != nil {
		return false, err
	}
	statements = append(statements, userStatements...)

	return rbac.HasPermission(statements, required)
}

// NewAccessControlUseCase creates a new AccessControlUseCase with the
// provided role repository.
func NewAccessControlUseCase(roleRepo RoleRepository) AccessControlUseCase {
	return &accessControlUseCase{roleRepo: roleRepo}
}
