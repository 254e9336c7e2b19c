// Package domain defines the role domain model: a named, membership-bounded
// owner of permit and forbid permission statements.
package domain

import (
	"time"

	apperrors "github.com/allisson/identity/internal/errors"
	"github.com/allisson/identity/internal/rbac"
)

// Role domain errors.
var (
	// ErrRoleNotFound indicates a role with the specified slug was not found
	// within the membership.
	ErrRoleNotFound = apperrors.Wrap(apperrors.ErrNotFound, "role not found")
)

// Role belongs to exactly one membership and is referenced by users through
// its slug, which is unique within that membership.
type Role struct {
	ID           string
	MembershipID string
	Name         string
	Slug         string
	Description  string
	Permissions  []string
	Forbidden    []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Statements parses the role's permit and forbid patterns into an evaluable
// statement set. A malformed stored pattern aborts with ErrMalformedRbac.
func (r *Role) Statements() ([]rbac.Statement, error) {
	return rbac.ParseStatements(r.Permissions, r.Forbidden)
}
