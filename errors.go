package sessionkit

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the Auth API
	// rejected the email/password pair. The wrapped APIError carries the
	// server's user-visible detail message.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrLoginFailed is returned by Login for any non-credential failure
	// (transport fault, malformed response). No automatic retry; the user
	// resubmits.
	ErrLoginFailed = errors.New("login failed")

	// ErrNotAuthenticated is returned by RefreshUser, UpdateUser, and
	// ExtendSession when no session exists.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRefreshFailed is returned when the Auth API could not supply a
	// current account view. The existing session is left untouched.
	ErrRefreshFailed = errors.New("refresh failed")

	// ErrStaleOperation is returned when a network response arrived after
	// the session it targeted was already torn down. The response is
	// discarded; the store is never resurrected.
	ErrStaleOperation = errors.New("operation targeted a superseded session")

	// ErrManagerClosed is returned by every operation after Close.
	ErrManagerClosed = errors.New("session manager closed")

	// ErrBuilderReused is returned by Build when the builder was already
	// consumed.
	ErrBuilderReused = errors.New("builder already used")

	// ErrNoAuthClient is returned by Build when neither an Auth API
	// client nor a base URL to construct one was provided.
	ErrNoAuthClient = errors.New("no auth client configured")
)
