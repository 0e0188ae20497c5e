package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// LocalAdminID is the fixed identifier synthesized for the local operator
// account. There is exactly one such account.
const LocalAdminID = "admin"

// Identity represents the authenticated principal returned by an IdP or the
// local admin authenticator. Adapters map provider-specific claims into this
// shape. Immutable once created; never persisted beyond the session lifetime.
type Identity struct {
	ID        string // stable identifier (provider sub, or "admin" for the local account)
	Email     string
	Name      string // display name
	AvatarURL string // optional
	Role      Role
	ExpiresAt time.Time // absolute expiry from the IdP token; zero means "use default TTL"
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session token (cryptographically random, URL-safe).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// Authenticated reports whether the session carries a live identity.
// A session missing its principal or role is equivalent to "no session".
func (s Session) Authenticated() bool {
	if s.ID == "" || s.UserID == "" {
		return false
	}
	if s.Role != RoleUser && s.Role != RoleAdmin {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}

// Identity reconstructs the Identity carried by the session.
func (s Session) Identity() Identity {
	return Identity{
		ID:        s.UserID,
		Email:     s.Email,
		Name:      s.Name,
		AvatarURL: s.AvatarURL,
		Role:      s.Role,
		ExpiresAt: s.ExpiresAt,
	}
}
