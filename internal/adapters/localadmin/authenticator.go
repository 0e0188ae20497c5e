package localadmin

// Package localadmin verifies the fixed operator credential supplied through
// configuration. This path exists for operational access when the identity
// provider is unavailable; it is intentionally a single account, not a
// credential store.

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	domainauth "github.com/fleetyard/fleet-ui-api/internal/domain/auth"
	"golang.org/x/crypto/bcrypt"
)

// defaultSessionDuration bounds admin sessions; the local path has no IdP
// token expiry to inherit.
const defaultSessionDuration = 8 * time.Hour

// Config holds the configured operator credential. Password may be either a
// bcrypt hash (recognized by its $2 prefix) or a plain secret compared in
// constant time.
type Config struct {
	Username        string
	Password        string
	Email           string        // optional, shown in the UI
	SessionDuration time.Duration // default 8h when zero
}

// Authenticator implements ports.LocalAuthenticator against Config.
type Authenticator struct {
	username        string
	password        string
	hashed          bool
	email           string
	sessionDuration time.Duration
}

// NewAuthenticator constructs an Authenticator. Both username and password
// must be configured; an empty credential disables the local path entirely
// rather than matching empty input.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	if cfg.Username == "" {
		return nil, errors.New("local admin: username is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("local admin: password is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = defaultSessionDuration
	}
	email := cfg.Email
	if email == "" {
		email = "admin@localhost"
	}
	return &Authenticator{
		username:        cfg.Username,
		password:        cfg.Password,
		hashed:          strings.HasPrefix(cfg.Password, "$2"),
		email:           email,
		sessionDuration: dur,
	}, nil
}

// Authenticate compares the supplied pair against configuration and
// synthesizes the admin identity on success. Every mismatch returns
// domainauth.ErrInvalidCredentials; the caller cannot tell which part failed.
func (a *Authenticator) Authenticate(_ context.Context, username, password string) (domainauth.Identity, error) {
	userOK := constantTimeEqual(username, a.username)

	var passOK bool
	if a.hashed {
		passOK = bcrypt.CompareHashAndPassword([]byte(a.password), []byte(password)) == nil
	} else {
		passOK = constantTimeEqual(password, a.password)
	}

	if !userOK || !passOK {
		return domainauth.Identity{}, domainauth.ErrInvalidCredentials
	}

	return domainauth.Identity{
		ID:        domainauth.LocalAdminID,
		Email:     a.email,
		Name:      "Administrator",
		Role:      domainauth.RoleAdmin,
		ExpiresAt: time.Now().Add(a.sessionDuration),
	}, nil
}

// constantTimeEqual compares two strings without leaking length via timing.
// Hashing first makes the comparison inputs fixed-size.
func constantTimeEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
