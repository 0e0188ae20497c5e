package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/fleetyard/fleet-ui-api/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes a federated authentication flow
// against an identity provider.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying the nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// LocalAuthenticator verifies the fixed operator credential from configuration.
type LocalAuthenticator interface {
	// Authenticate returns the synthesized admin identity, or
	// domainauth.ErrInvalidCredentials on any mismatch.
	Authenticate(ctx context.Context, username, password string) (domainauth.Identity, error)
}

// SessionStore persists and retrieves user sessions.
// Implementations must be safe for concurrent use; Delete is idempotent.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// OperatorLogin describes a local-admin login to be recorded externally.
type OperatorLogin struct {
	UserID string
	Email  string
}

// OperatorRecorder appends operator logins to an externally-owned allow-list
// table. Recording is best-effort from the gateway's point of view.
type OperatorRecorder interface {
	RecordLogin(ctx context.Context, op OperatorLogin) error
}
