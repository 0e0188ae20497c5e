package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/fleetyard/fleet-ui-api/internal/domain/auth"
	"github.com/fleetyard/fleet-ui-api/internal/ports"
	"github.com/google/uuid"
)

// defaultSessionTTL applies when an identity carries no expiry of its own.
const defaultSessionTTL = 8 * time.Hour

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider  ports.AuthProvider     // federated identity provider client
	Local     ports.LocalAuthenticator // local admin authenticator (optional)
	Sessions  ports.SessionStore
	Operators ports.OperatorRecorder // optional; best-effort allow-list append
	Logger    *slog.Logger           // optional
}

// AuthService owns the session lifecycle and orchestrates both login flows by
// coordinating provider, local authenticator, and session persistence.
type AuthService struct {
	provider  ports.AuthProvider
	local     ports.LocalAuthenticator
	sessions  ports.SessionStore
	operators ports.OperatorRecorder
	logger    *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider:  opts.Provider,
		local:     opts.Local,
		sessions:  opts.Sessions,
		operators: opts.Operators,
		logger:    opts.Logger,
	}
}

// BeginLoginResult contains the result of beginning a federated login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates a federated flow and returns the provider auth URL
// with freshly generated state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if s.provider == nil {
		return nil, errors.New("federated login is not configured")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a federated flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the established session.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin exchanges the authorization code for an identity and
// establishes a session. State verification against the stored pre-auth value
// happens at the HTTP boundary before this is called; the provider verifies
// the nonce inside the ID token.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if s.provider == nil {
		return nil, errors.New("federated login is not configured")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	// Federated identities are always plain users; the local path is the
	// only source of the admin role.
	identity.Role = domainauth.RoleUser

	session, err := s.CreateSession(ctx, identity)
	if err != nil {
		return nil, err
	}

	return &CompleteLoginResult{Session: session}, nil
}

// AdminLogin verifies the local operator credential and establishes an admin
// session. On success the operator is appended to the externally-owned
// allow-list table; a recording failure is logged and never fails the login.
func (s *AuthService) AdminLogin(ctx context.Context, username, password string) (*CompleteLoginResult, error) {
	if s.local == nil {
		return nil, errors.New("local admin login is not configured")
	}

	identity, err := s.local.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if s.operators != nil {
		recordErr := s.operators.RecordLogin(ctx, ports.OperatorLogin{
			UserID: identity.ID,
			Email:  identity.Email,
		})
		if recordErr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "operator allow-list append failed", "error", recordErr)
		}
	}

	session, err := s.CreateSession(ctx, identity)
	if err != nil {
		return nil, err
	}

	return &CompleteLoginResult{Session: session}, nil
}

// CreateSession generates an opaque token for the identity and persists the
// session. The token is returned inside the session for the caller to set as
// a cookie.
func (s *AuthService) CreateSession(ctx context.Context, identity domainauth.Identity) (domainauth.Session, error) {
	if identity.ID == "" {
		return domainauth.Session{}, errors.New("identity is required")
	}

	expiresAt := identity.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(defaultSessionTTL)
	}

	session := domainauth.Session{
		ID:        generateSessionToken(),
		UserID:    identity.ID,
		Email:     identity.Email,
		Name:      identity.Name,
		AvatarURL: identity.AvatarURL,
		Role:      identity.Role,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}

	return session, nil
}

// GetSession resolves a session token. Missing and expired sessions both
// yield domainauth.ErrSessionNotFound.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, domainauth.ErrSessionNotFound
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domainauth.ErrSessionNotFound) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if !session.Authenticated() {
		// A session without a live identity counts as absent.
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(domainauth.ErrSessionNotFound, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, domainauth.ErrSessionNotFound
	}

	return &session, nil
}

// Logout destroys a session. Destroying an absent or already-destroyed
// session is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// generateSessionToken creates a cryptographically secure, URL-safe opaque token.
func generateSessionToken() string {
	return uuid.NewString()
}
