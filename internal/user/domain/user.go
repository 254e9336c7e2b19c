// Package domain defines the user domain model. Users are membership-bounded
// and may carry their own permission statements that augment the statements
// of their assigned role.
package domain

import (
	"time"

	"github.com/allisson/identity/internal/document"
	apperrors "github.com/allisson/identity/internal/errors"
	"github.com/allisson/identity/internal/rbac"
)

// User domain errors.
var (
	// ErrUserNotFound indicates the credential subject does not exist within
	// the membership.
	ErrUserNotFound = apperrors.Wrap(apperrors.ErrNotFound, "user not found")
)

// User is a membership-bounded principal. PasswordHash holds the credential
// digest computed with the membership's hash algorithm and encoding. RoleSlug
// references the assigned role within the same membership; Permissions and
// Forbidden are the user's own statements, layered on top of the role's.
type User struct {
	ID           string
	MembershipID string
	FirstName    string
	LastName     string
	Username     string
	EmailAddress string
	PasswordHash string
	RoleSlug     string
	Permissions  []string
	Forbidden    []string
	Properties   *document.Document
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Statements parses the user's own permit and forbid patterns into an
// evaluable statement set. These are consulted in addition to, not instead
// of, the assigned role's statements.
func (u *User) Statements() ([]rbac.Statement, error) {
	return rbac.ParseStatements(u.Permissions, u.Forbidden)
}

// FromDocument builds a typed user view out of a dynamic document by explicit
// field mapping. Identity fields are required; the rest are optional. The
// remaining fields stay reachable through Properties.
func FromDocument(doc *document.Document) (*User, error) {
	if doc == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "nil document")
	}

	id, err := doc.String("_id")
	if err != nil {
		return nil, err
	}
	membershipID, err := doc.String("membership_id")
	if err != nil {
		return nil, err
	}
	username, err := doc.String("username")
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           id,
		MembershipID: membershipID,
		Username:     username,
		Properties:   doc,
	}

	if doc.Has("firstname") {
		if user.FirstName, err = doc.String("firstname"); err != nil {
			return nil, err
		}
	}
	if doc.Has("lastname") {
		if user.LastName, err = doc.String("lastname"); err != nil {
			return nil, err
		}
	}
	if doc.Has("email_address") {
		if user.EmailAddress, err = doc.String("email_address"); err != nil {
			return nil, err
		}
	}
	if doc.Has("password_hash") {
		if user.PasswordHash, err = doc.String("password_hash"); err != nil {
			return nil, err
		}
	}
	if doc.Has("role") {
		if user.RoleSlug, err = doc.String("role"); err != nil {
			return nil, err
		}
	}
	if doc.Has("permissions") {
		if user.Permissions, err = doc.StringSlice("permissions"); err != nil {
			return nil, err
		}
	}
	if doc.Has("forbidden") {
		if user.Forbidden, err = doc.StringSlice("forbidden"); err != nil {
			return nil, err
		}
	}

	return user, nil
}
