package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/fleetyard/fleet-ui-api/internal/domain/auth"
	"github.com/fleetyard/fleet-ui-api/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	AdminLogin(ctx context.Context, username, password string) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// Flash codes carried on the login page query string. The login page maps
// them to user-visible messages.
const (
	FlashStateMismatch      = "state_mismatch"
	FlashLoginFailed        = "login_failed"
	FlashInvalidCredentials = "invalid_credentials"
	FlashSignedOut          = "signed_out"
)

// flashMessages maps flash codes to the text shown on the login page.
//
//nolint:gochecknoglobals // read-only lookup table
var flashMessages = map[string]string{
	FlashStateMismatch:      "Your sign-in attempt could not be verified. Please try again.",
	FlashLoginFailed:        "Sign-in failed. Please try again.",
	FlashInvalidCredentials: "Invalid username or password.",
	FlashSignedOut:          "You have been signed out.",
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Renderer     *TemplateRenderer
	CallbackURL  string // absolute or relative redirect URI registered with the provider
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// LoginPage renders the login form.
// GET /login?redirect_uri=<optional>&flash=<optional>.
// Already-authenticated visitors are bounced to the application root so a
// stale bookmark never re-renders the form.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sessionCookie, err := r.Cookie(SessionCookieName); err == nil {
		if session, getErr := h.Svc.GetSession(r.Context(), sessionCookie.Value); getErr == nil && session != nil {
			http.Redirect(w, r, RootPath, http.StatusFound)
			return
		}
	}

	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	flash := flashMessages[r.URL.Query().Get("flash")]

	data := map[string]any{
		"Title":       "Sign in - Fleet UI",
		"CurrentPage": PageLogin,
		"RedirectURI": redirectURI,
		"Flash":       flash,
		"CSRFToken":   GetCSRFToken(r),
	}

	if h.Renderer == nil {
		http.Error(w, "login page unavailable", http.StatusInternalServerError)
		return
	}
	if err := h.Renderer.RenderLogin(w, r, data); err != nil {
		http.Error(w, "login page unavailable", http.StatusInternalServerError)
	}
}

// Login begins the federated flow.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	callbackURL := h.CallbackURL
	if callbackURL == "" {
		callbackURL = CallbackPath
	}

	result, err := h.Svc.BeginLogin(r.Context(), callbackURL)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		h.redirectWithFlash(w, r, FlashLoginFailed, redirectURI)
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{State: result.State, Nonce: result.Nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the federated flow.
// GET /auth/callback?code=<code>&state=<state>.
// The state parameter must equal the value stored in the pre-auth cookie; on
// mismatch the code is never exchanged. The state cookie is cleared either
// way so a replayed callback cannot reuse it.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	stateCookie, stateErr := r.Cookie(OAuthStateCookieName)
	nonceCookie, nonceErr := r.Cookie(OAuthNonceCookieName)
	redirectURI := h.getPostLoginRedirect(w, r)
	h.clearCookie(w, r, OAuthStateCookieName)
	h.clearCookie(w, r, OAuthNonceCookieName)

	if code == "" || state == "" || stateErr != nil || stateCookie.Value != state {
		h.logger().WarnContext(r.Context(), "callback rejected",
			"error", domainauth.ErrStateMismatch,
			"have_code", code != "",
			"have_state_cookie", stateErr == nil,
		)
		h.redirectWithFlash(w, r, FlashStateMismatch, redirectURI)
		return
	}

	nonce := ""
	if nonceErr == nil {
		nonce = nonceCookie.Value
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonce,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "login completion failed", "error", err)
		h.redirectWithFlash(w, r, FlashLoginFailed, redirectURI)
		return
	}

	h.setSessionCookie(w, r, result.Session)
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// AdminLogin handles the local operator credential exchange.
// POST /auth/admin-login with form fields username, password, redirect_uri.
func (h *AuthHandlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
		return
	}

	redirectURI := safeRedirectPath(r.PostFormValue("redirect_uri"))
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	result, err := h.Svc.AdminLogin(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, domainauth.ErrInvalidCredentials) {
			h.logger().ErrorContext(r.Context(), "admin login failed", "error", err)
			h.redirectWithFlash(w, r, FlashLoginFailed, redirectURI)
			return
		}
		h.redirectWithFlash(w, r, FlashInvalidCredentials, redirectURI)
		return
	}

	h.setSessionCookie(w, r, result.Session)
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Logout destroys the server-side session and clears the cookie.
// GET/POST /logout and /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionCookie, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}

	h.clearCookie(w, r, SessionCookieName)
	http.Redirect(w, r, LoginPath+"?flash="+FlashSignedOut, http.StatusFound)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sessionCookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		// Session is invalid or expired, clear the cookie
		h.clearCookie(w, r, SessionCookieName)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":     session.UserID,
			"name":   session.Name,
			"email":  session.Email,
			"avatar": session.AvatarURL,
			"role":   session.Role,
		},
		"expires_at": session.ExpiresAt,
	})
}

// redirectWithFlash sends the browser back to the login page carrying a flash
// code and the intended post-login destination.
func (h *AuthHandlers) redirectWithFlash(w http.ResponseWriter, r *http.Request, flash, redirectURI string) {
	u := url.URL{Path: LoginPath}
	q := url.Values{}
	q.Set("flash", flash)
	if redirectURI != "" && redirectURI != RootPath {
		q.Set("redirect_uri", redirectURI)
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// oauthCookieParams groups values needed to set the pre-auth cookies.
type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, nonce, and the post-login redirect in secure cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")

	for name, value := range map[string]string{
		OAuthStateCookieName:    p.State,
		OAuthNonceCookieName:    p.Nonce,
		PostLoginRedirectCookie: p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   oauthCookieMaxAge,
		})
	}
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := RootPath
	if redirectCookie, err := r.Cookie(PostLoginRedirectCookie); err == nil {
		redirectURI = safeRedirectPath(redirectCookie.Value)
		h.clearCookie(w, r, PostLoginRedirectCookie)
	}
	return redirectURI
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return RootPath
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return RootPath
	}
	return candidate
}
