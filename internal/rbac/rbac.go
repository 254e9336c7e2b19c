// Package rbac implements the permission grammar and the pure policy engine.
//
// A permission is a dot-separated pattern of four segments
// (subject.resource.action.object) where each segment is either a literal or
// the wildcard marker "*". The same textual form is used both to declare
// permissions on roles and users and to query the engine. Evaluation is pure:
// no I/O, no mutation, safe for unlimited concurrent use.
package rbac

import (
	"fmt"
	"strings"

	apperrors "github.com/allisson/identity/internal/errors"
)

// Wildcard is the segment marker matching any literal value.
const Wildcard = "*"

// SegmentCount is the canonical number of segments in a permission pattern.
const SegmentCount = 4

// ErrMalformedRbac indicates a permission string that does not follow the
// subject.resource.action[.object] grammar.
var ErrMalformedRbac = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed rbac")

// Segment is a single position of a permission pattern.
type Segment string

// IsWildcard reports whether the segment matches any literal.
func (s Segment) IsWildcard() bool {
	return string(s) == Wildcard
}

// Rbac is an immutable four-segment permission pattern.
type Rbac struct {
	Subject  Segment
	Resource Segment
	Action   Segment
	Object   Segment
}

// Parse parses a permission string into an Rbac value. The input must have
// exactly three or four non-empty dot-separated segments; a missing fourth
// segment is filled with the wildcard.
func Parse(value string) (Rbac, error) {
	parts := strings.Split(value, ".")
	if len(parts) < SegmentCount-1 || len(parts) > SegmentCount {
		return Rbac{}, apperrors.Wrap(ErrMalformedRbac, fmt.Sprintf("expected 3 or 4 segments, got %d in %q", len(parts), value))
	}

	for _, part := range parts {
		if part == "" {
			return Rbac{}, apperrors.Wrap(ErrMalformedRbac, fmt.Sprintf("empty segment in %q", value))
		}
	}

	object := Segment(Wildcard)
	if len(parts) == SegmentCount {
		object = Segment(parts[3])
	}

	return Rbac{
		Subject:  Segment(parts[0]),
		Resource: Segment(parts[1]),
		Action:   Segment(parts[2]),
		Object:   object,
	}, nil
}

// String renders the canonical four-segment form, emitting "*" for wildcards.
// It is the exact inverse of Parse modulo object-segment normalization.
func (r Rbac) String() string {
	return strings.Join([]string{
		string(r.Subject),
		string(r.Resource),
		string(r.Action),
		string(r.Object),
	}, ".")
}

// segments returns the pattern positions in wire order.
func (r Rbac) segments() [SegmentCount]Segment {
	return [SegmentCount]Segment{r.Subject, r.Resource, r.Action, r.Object}
}

// Matches reports whether the pattern matches the required permission. Each
// position matches if the pattern segment is the wildcard or equals the
// required literal; all four positions must match. The required value is the
// concrete "ask" and is compared case-sensitively.
func (r Rbac) Matches(required Rbac) bool {
	pattern := r.segments()
	ask := required.segments()

	for i := range pattern {
		if pattern[i].IsWildcard() {
			continue
		}
		if pattern[i] != ask[i] {
			return false
		}
	}
	return true
}

// Specificity counts the literal (non-wildcard) segments of the pattern,
// from 0 (all wildcards) to 4 (fully literal). A matching pattern with
// higher specificity outranks a less specific one.
func (r Rbac) Specificity() int {
	specificity := 0
	for _, segment := range r.segments() {
		if !segment.IsWildcard() {
			specificity++
		}
	}
	return specificity
}
