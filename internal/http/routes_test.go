package httpx

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetyard/fleet-ui-api/internal/adapters/memory"
	mockauth "github.com/fleetyard/fleet-ui-api/internal/mocks/auth"
	"github.com/fleetyard/fleet-ui-api/internal/service"
)

// gatewayFixture wires a full router around a real auth service with an
// in-process session store and a simulated identity provider.
type gatewayFixture struct {
	server   *httptest.Server
	client   *http.Client
	provider *mockauth.MockAuthProvider
	sessions *memory.SessionStore
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	provider := mockauth.NewMockAuthProvider()
	sessions := memory.NewSessionStore()

	svc := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Local:    mockauth.NewMockLocalAuthenticator("admin", "hunter2"),
		Sessions: sessions,
		Logger:   discardLogger(),
	})

	router, err := NewRouter(RouterServices{
		Auth:   svc,
		Logger: discardLogger(),
	})
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &gatewayFixture{
		server:   server,
		client:   client,
		provider: provider,
		sessions: sessions,
	}
}

func (f *gatewayFixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := f.client.Get(f.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (f *gatewayFixture) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := f.client.Post(
		f.server.URL+path,
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (f *gatewayFixture) cookie(t *testing.T, name string) string {
	t.Helper()
	u, err := url.Parse(f.server.URL)
	require.NoError(t, err)
	for _, c := range f.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestGateway_AnonymousIsRedirectedToLogin(t *testing.T) {
	f := newGatewayFixture(t)

	resp := f.get(t, "/stats")

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	location := resp.Header.Get("Location")
	assert.True(t, strings.HasPrefix(location, LoginPath+"?"), "location %q", location)
	assert.Contains(t, location, "redirect_uri="+url.QueryEscape("/stats"))

	// The login page itself must be reachable without a session.
	resp = f.get(t, "/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateway_FederatedLoginFlow(t *testing.T) {
	f := newGatewayFixture(t)

	// Begin the flow; the browser is sent to the provider and the state and
	// nonce land in cookies.
	resp := f.get(t, "/auth/login?redirect_uri=/map")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "https://mock-idp/auth")

	state := f.cookie(t, OAuthStateCookieName)
	require.NotEmpty(t, state)

	// The provider redirects back with code and state.
	resp = f.get(t, "/auth/callback?code=fake-code&state="+url.QueryEscape(state))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/map", resp.Header.Get("Location"))
	assert.Equal(t, 1, f.provider.ExchangeCalls())
	require.NotEmpty(t, f.cookie(t, SessionCookieName))

	// The session now unlocks guarded pages.
	resp = f.get(t, "/map")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "page-map")

	// Status reflects the federated identity.
	resp = f.get(t, "/auth/status")
	body := readBody(t, resp)
	assert.Contains(t, body, `"authenticated":true`)
	assert.Contains(t, body, `"role":"user"`)
}

func TestGateway_ForgedStateAbortsBeforeExchange(t *testing.T) {
	f := newGatewayFixture(t)

	resp := f.get(t, "/auth/login")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	require.NotEmpty(t, f.cookie(t, OAuthStateCookieName))

	resp = f.get(t, "/auth/callback?code=fake-code&state=forged")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "flash="+FlashStateMismatch)

	assert.Zero(t, f.provider.ExchangeCalls())
	assert.Empty(t, f.cookie(t, SessionCookieName))
	assert.Zero(t, f.sessions.Len())
}

func TestGateway_AdminLoginFlow(t *testing.T) {
	f := newGatewayFixture(t)

	// The login page issues the CSRF cookie the form must echo back.
	resp := f.get(t, "/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	csrf := f.cookie(t, DefaultCSRFCookieName)
	require.NotEmpty(t, csrf)

	form := url.Values{}
	form.Set("csrf_token", csrf)
	form.Set("username", "admin")
	form.Set("password", "hunter2")
	form.Set("redirect_uri", "/admin")

	resp = f.postForm(t, "/auth/admin-login", form)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))
	require.NotEmpty(t, f.cookie(t, SessionCookieName))

	// The admin role unlocks the restricted pages.
	resp = f.get(t, "/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "page-admin")

	resp = f.get(t, "/driver-documents")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "page-driver-documents")
}

func TestGateway_AdminLoginWrongPassword(t *testing.T) {
	f := newGatewayFixture(t)

	resp := f.get(t, "/login")
	csrf := f.cookie(t, DefaultCSRFCookieName)
	require.NotEmpty(t, csrf)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	form := url.Values{}
	form.Set("csrf_token", csrf)
	form.Set("username", "admin")
	form.Set("password", "wrong")

	resp = f.postForm(t, "/auth/admin-login", form)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "flash="+FlashInvalidCredentials)
	assert.Empty(t, f.cookie(t, SessionCookieName))
	assert.Zero(t, f.sessions.Len())
}

func TestGateway_AdminLoginWithoutCSRFTokenRejected(t *testing.T) {
	f := newGatewayFixture(t)

	resp := f.get(t, "/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	form := url.Values{}
	form.Set("username", "admin")
	form.Set("password", "hunter2")

	resp = f.postForm(t, "/auth/admin-login", form)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, f.sessions.Len())
}

func TestGateway_UserRoleCannotViewAdminPages(t *testing.T) {
	f := newGatewayFixture(t)

	// Complete a federated login, which always yields the user role.
	resp := f.get(t, "/auth/login")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	state := f.cookie(t, OAuthStateCookieName)
	require.NotEmpty(t, state)
	resp = f.get(t, "/auth/callback?code=fake-code&state="+url.QueryEscape(state))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	require.NotEmpty(t, f.cookie(t, SessionCookieName))

	resp = f.get(t, "/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "page-access-denied")
	assert.NotContains(t, body, "page-admin")
}

func TestGateway_RootAndTripsAreAliases(t *testing.T) {
	f := newGatewayFixture(t)

	resp := f.get(t, "/auth/login")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	state := f.cookie(t, OAuthStateCookieName)
	require.NotEmpty(t, state)
	resp = f.get(t, "/auth/callback?code=fake-code&state="+url.QueryEscape(state))
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	for _, path := range []string{"/", "/trips", "/trips/"} {
		resp := f.get(t, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, "path %q", path)
		assert.Contains(t, readBody(t, resp), "page-trips", "path %q", path)
	}
}

func TestGateway_UnknownPathRendersNotFoundInShell(t *testing.T) {
	f := newGatewayFixture(t)

	resp := f.get(t, "/auth/login")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	state := f.cookie(t, OAuthStateCookieName)
	require.NotEmpty(t, state)
	resp = f.get(t, "/auth/callback?code=fake-code&state="+url.QueryEscape(state))
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp = f.get(t, "/nonexistent")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "page-not-found")
}

func TestGateway_LogoutDestroysSession(t *testing.T) {
	f := newGatewayFixture(t)

	resp := f.get(t, "/auth/login")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	state := f.cookie(t, OAuthStateCookieName)
	require.NotEmpty(t, state)
	resp = f.get(t, "/auth/callback?code=fake-code&state="+url.QueryEscape(state))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, 1, f.sessions.Len())

	csrf := f.cookie(t, DefaultCSRFCookieName)
	require.NotEmpty(t, csrf)

	form := url.Values{}
	form.Set("csrf_token", csrf)
	resp = f.postForm(t, "/logout", form)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "flash="+FlashSignedOut)
	assert.Zero(t, f.sessions.Len())

	// Guarded pages redirect again after logout.
	resp = f.get(t, "/stats")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), LoginPath)
}

func TestGateway_HealthIsPublic(t *testing.T) {
	f := newGatewayFixture(t)

	resp := f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, readBody(t, resp))
}

func TestGateway_WebhookIsPublic(t *testing.T) {
	f := newGatewayFixture(t)

	resp, err := f.client.Post(
		f.server.URL+"/webhooks/telematics",
		"application/json",
		strings.NewReader(`{"event":"position"}`),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}
