package domain

import (
	"github.com/authware/authority/internal/errors"
)

// Identity domain errors.
var (
	// ErrMembershipNotFound indicates a membership with the given id or slug was not found.
	ErrMembershipNotFound = errors.Wrap(errors.ErrNotFound, "membership not found")

	// ErrUserNotFound indicates a user with the given id was not found.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrApplicationNotFound indicates an application with the given id was not found.
	ErrApplicationNotFound = errors.Wrap(errors.ErrNotFound, "application not found")

	// ErrRoleNotFound indicates a role with the given name was not found in the membership.
	ErrRoleNotFound = errors.Wrap(errors.ErrNotFound, "role not found")

	// ErrMembershipAlreadyExists indicates the membership slug is taken.
	ErrMembershipAlreadyExists = errors.Wrap(errors.ErrConflict, "membership already exists")

	// ErrUserAlreadyExists indicates the username or email is taken within the membership.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrApplicationAlreadyExists indicates the application name is taken within the membership.
	ErrApplicationAlreadyExists = errors.Wrap(errors.ErrConflict, "application already exists")

	// ErrRoleAlreadyExists indicates the role name is taken within the membership.
	ErrRoleAlreadyExists = errors.Wrap(errors.ErrConflict, "role already exists")

	// ErrUserInactive indicates the user exists but is deactivated.
	ErrUserInactive = errors.Wrap(errors.ErrUnauthorized, "user is not active")

	// ErrApplicationInactive indicates the application exists but is deactivated.
	ErrApplicationInactive = errors.Wrap(errors.ErrUnauthorized, "application is not active")

	// ErrForbiddenRoleChange indicates an attempt to delete the seeded admin role.
	ErrForbiddenRoleChange = errors.Wrap(errors.ErrForbidden, "forbidden role change")

	// ErrInvalidCredentials indicates the presented username/password or
	// application secret did not authenticate. Deliberately generic so callers
	// cannot distinguish a wrong password from an unknown username.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidTokenPolicy indicates a membership violates the token policy
	// invariants (non-positive access lifetime or negative refresh lifetime).
	ErrInvalidTokenPolicy = errors.Wrap(errors.ErrInvalidInput, "invalid membership token policy")

	// ErrUnsupportedAlgorithm indicates the membership's configured hash
	// algorithm is not implemented.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported hash algorithm")

	// ErrUnsupportedEncoding indicates the membership's configured secret
	// encoding is not implemented.
	ErrUnsupportedEncoding = errors.Wrap(errors.ErrInvalidInput, "unsupported secret encoding")
)
