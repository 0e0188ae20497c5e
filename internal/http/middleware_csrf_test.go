package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfTestHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetCSRFToken(r)))
	})
}

func TestCSRFProtection_GetSetsCookie(t *testing.T) {
	handler := CSRFProtection(CSRFConfig{})(csrfTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	resp := w.Result()
	defer resp.Body.Close()
	cookie := cookieByName(resp.Cookies(), DefaultCSRFCookieName)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.False(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	// The handler sees the same token via context.
	assert.Equal(t, cookie.Value, w.Body.String())
}

func TestCSRFProtection_ExistingCookieNotRegenerated(t *testing.T) {
	handler := CSRFProtection(CSRFConfig{})(csrfTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "existing-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Nil(t, cookieByName(resp.Cookies(), DefaultCSRFCookieName))
	assert.Equal(t, "existing-token", w.Body.String())
}

func TestCSRFProtection_PostWithoutTokenRejected(t *testing.T) {
	handler := CSRFProtection(CSRFConfig{})(csrfTestHandler())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "cookie-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFProtection_PostWithHeaderToken(t *testing.T) {
	handler := CSRFProtection(CSRFConfig{})(csrfTestHandler())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "cookie-token"})
	req.Header.Set(DefaultCSRFHeaderName, "cookie-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFProtection_PostWithMismatchedHeaderToken(t *testing.T) {
	handler := CSRFProtection(CSRFConfig{})(csrfTestHandler())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "cookie-token"})
	req.Header.Set(DefaultCSRFHeaderName, "forged-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFProtection_PostWithFormToken(t *testing.T) {
	handler := CSRFProtection(CSRFConfig{})(csrfTestHandler())

	form := url.Values{}
	form.Set(DefaultCSRFCookieName, "cookie-token")

	req := httptest.NewRequest(http.MethodPost, "/auth/admin-login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "cookie-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFProtection_ExemptPrefixSkipsValidation(t *testing.T) {
	handler := CSRFProtection(CSRFConfig{ExemptPrefixes: []string{"/webhooks/"}})(csrfTestHandler())

	req := httptest.NewRequest(http.MethodPost, "/webhooks/telematics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Nil(t, cookieByName(resp.Cookies(), DefaultCSRFCookieName))
}

func TestCSRFProtection_FirstPostWithoutCookieRejected(t *testing.T) {
	handler := CSRFProtection(CSRFConfig{})(csrfTestHandler())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set(DefaultCSRFHeaderName, "anything")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	// The freshly generated token cannot match a token the client never saw.
	assert.Equal(t, http.StatusForbidden, w.Code)
}
