package auth

import "errors"

// Sentinel errors for the authentication flows. Handlers translate these into
// redirects with a flash message; none of them is fatal to the process.
var (
	// ErrStateMismatch is returned when an OAuth callback presents a state
	// value that does not match the one issued at login begin, or when no
	// stored state exists. The stored state is discarded either way.
	ErrStateMismatch = errors.New("oauth state mismatch")

	// ErrTokenExchangeFailed is returned when the authorization code could
	// not be exchanged at the provider's token endpoint.
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// ErrProfileFetchFailed is returned when the user profile could not be
	// obtained after a successful token exchange.
	ErrProfileFetchFailed = errors.New("profile fetch failed")

	// ErrInvalidCredentials is returned by the local admin authenticator for
	// any username/password pair that does not match configuration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionNotFound signals a missing or expired session. It is the
	// normal trigger for a login redirect, not a failure condition.
	ErrSessionNotFound = errors.New("session not found")
)
