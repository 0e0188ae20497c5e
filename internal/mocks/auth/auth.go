package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"fmt"
	"time"

	domainauth "github.com/fleetyard/fleet-ui-api/internal/domain/auth"
	"github.com/fleetyard/fleet-ui-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider       = (*MockAuthProvider)(nil)
	_ ports.LocalAuthenticator = (*MockLocalAuthenticator)(nil)
	_ ports.OperatorRecorder   = (*OperatorRecorderSpy)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	// Internal state tracking for deterministic behavior
	callCount     int
	exchangeCalls int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			ID:        "mock-user-1",
			Email:     "mock.user@example.com",
			Name:      "Mock User",
			Role:      domainauth.RoleUser,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}

	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	state := fmt.Sprintf("%s-%d", statePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", noncePrefix, m.callCount)

	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	m.exchangeCalls++
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Return a copy of the default user with a fresh expiration time
	user := m.DefaultUser
	if user.ID == "" {
		user = domainauth.Identity{
			ID:    "mock-user-1",
			Email: "mock.user@example.com",
			Name:  "Mock User",
			Role:  domainauth.RoleUser,
		}
	}
	user.ExpiresAt = time.Now().Add(time.Hour)

	return user, nil
}

// ExchangeCalls reports how many times Exchange was invoked. Useful for
// asserting that a rejected callback never attempted a code exchange.
func (m *MockAuthProvider) ExchangeCalls() int { return m.exchangeCalls }

// MockLocalAuthenticator simulates the local operator credential check.
type MockLocalAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, username, password string) (domainauth.Identity, error)

	// Accepted credential pair; anything else fails with ErrInvalidCredentials.
	Username string
	Password string
	Identity domainauth.Identity
}

// NewMockLocalAuthenticator creates a MockLocalAuthenticator accepting the
// given credential pair.
func NewMockLocalAuthenticator(username, password string) *MockLocalAuthenticator {
	return &MockLocalAuthenticator{
		Username: username,
		Password: password,
		Identity: domainauth.Identity{
			ID:        domainauth.LocalAdminID,
			Email:     "admin@localhost",
			Name:      "Administrator",
			Role:      domainauth.RoleAdmin,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockLocalAuthenticator) Authenticate(ctx context.Context, username, password string) (domainauth.Identity, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, username, password)
	}
	if username != m.Username || password != m.Password {
		return domainauth.Identity{}, domainauth.ErrInvalidCredentials
	}
	return m.Identity, nil
}

// OperatorRecorderSpy records calls so tests can assert the allow-list append.
type OperatorRecorderSpy struct {
	Err   error // returned from RecordLogin when set
	Calls []ports.OperatorLogin
}

func (s *OperatorRecorderSpy) RecordLogin(_ context.Context, op ports.OperatorLogin) error {
	s.Calls = append(s.Calls, op)
	return s.Err
}
