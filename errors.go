package goSession

import "errors"

var (
	// ErrMissingIdentifier is returned when an operation is invoked without a user identifier.
	ErrMissingIdentifier = errors.New("missing user identifier")
	// ErrInvalidIdentifier is returned when a malformed session key reaches a delete path.
	ErrInvalidIdentifier = errors.New("invalid user identifier")
	// ErrInvalidCallback is returned when SignIn needs to issue a redirect but no callback was supplied.
	ErrInvalidCallback = errors.New("authorization URL callback is not callable")
	// ErrNotLoggedIn is returned when a token read is attempted for a session with no valid record and no successful refresh.
	ErrNotLoggedIn = errors.New("user is not logged in")
	// ErrRefreshFailed is returned when the authorization client yields no usable token on refresh.
	ErrRefreshFailed = errors.New("token refresh failed")
	// ErrSignOutFailed is returned when the provider sign-out URL cannot be obtained.
	ErrSignOutFailed = errors.New("sign-out failed")
	// ErrUpstream wraps a failure surfaced by the authorization client or key-value store unchanged.
	ErrUpstream = errors.New("upstream collaborator failure")
)
