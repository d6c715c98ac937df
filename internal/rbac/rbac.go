// Package rbac implements the permission expression model and the resolver
// used for authorization decisions.
//
// A permission is a 4-tuple "subject.resource.action.object" where each
// segment is either a literal token or the wildcard "*". Authorization uses
// a deny-overrides model: an explicit forbidden match always wins over any
// permission match, and the absence of any match denies by default.
package rbac

import (
	"fmt"
	"strings"

	apperrors "github.com/authware/authority/internal/errors"
)

// SegmentSeparator separates the four segments of a permission expression.
const SegmentSeparator = "."

// Wildcard matches any value for a segment during permission matching.
const Wildcard = "*"

// ErrMalformedPermission indicates a permission string does not follow the
// "subject.resource.action.object" grammar.
var ErrMalformedPermission = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed permission expression")

// Segment is a single element of a permission expression: a literal token
// or the wildcard "*".
type Segment string

// IsAll reports whether the segment is the wildcard.
func (s Segment) IsAll() bool {
	return s == Wildcard
}

// matches reports whether the segment covers the requested segment.
// A wildcard covers anything; a literal covers only an exact match.
// This is matching compatibility, not equality.
func (s Segment) matches(requested Segment) bool {
	return s.IsAll() || s == requested
}

// Rbac is a parsed permission expression. It is a pure value type: parsing,
// matching and serialization have no side effects, so values can be shared
// freely across concurrent requests.
type Rbac struct {
	Subject  Segment
	Resource Segment
	Action   Segment
	Object   Segment
}

// New builds an Rbac value from its four segments.
func New(subject, resource, action, object Segment) Rbac {
	return Rbac{Subject: subject, Resource: resource, Action: action, Object: object}
}

// Parse parses a permission expression of exactly four non-empty segments
// separated by dots. Returns ErrMalformedPermission otherwise.
func Parse(text string) (Rbac, error) {
	segments := strings.Split(text, SegmentSeparator)
	if len(segments) != 4 {
		return Rbac{}, fmt.Errorf("%w: %q", ErrMalformedPermission, text)
	}
	for _, segment := range segments {
		if segment == "" {
			return Rbac{}, fmt.Errorf("%w: %q", ErrMalformedPermission, text)
		}
	}
	return Rbac{
		Subject:  Segment(segments[0]),
		Resource: Segment(segments[1]),
		Action:   Segment(segments[2]),
		Object:   Segment(segments[3]),
	}, nil
}

// TryParse parses a permission expression and reports success instead of
// returning an error. Used by the resolver, which ignores unparsable
// candidates rather than failing the caller.
func TryParse(text string) (Rbac, bool) {
	r, err := Parse(text)
	return r, err == nil
}

// String serializes the expression back to its canonical form. It is the
// exact inverse of Parse for any valid expression.
func (r Rbac) String() string {
	return strings.Join(
		[]string{string(r.Subject), string(r.Resource), string(r.Action), string(r.Object)},
		SegmentSeparator,
	)
}

// Matches reports whether this expression covers the requested one.
// Every segment must cover its counterpart (logical AND across all four).
func (r Rbac) Matches(requested Rbac) bool {
	return r.Subject.matches(requested.Subject) &&
		r.Resource.matches(requested.Resource) &&
		r.Action.matches(requested.Action) &&
		r.Object.matches(requested.Object)
}

// HasPermission decides whether a role defined by its permission and
// forbidden lists grants the requested expression.
//
// Unparsable candidates never match and never produce an error. The result
// is true only when no forbidden entry matches and at least one permission
// entry matches: explicit deny wins regardless of how specific the allow
// rule is, and an empty permission list denies everything.
func HasPermission(permissions, forbidden []string, requested Rbac) bool {
	for _, candidate := range forbidden {
		if c, ok := TryParse(candidate); ok && c.Matches(requested) {
			return false
		}
	}
	for _, candidate := range permissions {
		if c, ok := TryParse(candidate); ok && c.Matches(requested) {
			return true
		}
	}
	return false
}
