package httpx

// Page constants identify the registered SPA pages. They are the logical keys
// handed to the page registry and the template layer.
const (
	PageTrips        = "trips" // the application root
	PageStats        = "stats"
	PageMap          = "map"
	PageDrivers      = "drivers"
	PageAdmin        = "admin"
	PageDriverDocs   = "driver-documents"
	PageNotFound     = "not-found"
	PageAccessDenied = "access-denied"
	PageLogin        = "login"
)

// Cookie names shared between middleware and handlers.
const (
	SessionCookieName       = "session_id"
	OAuthStateCookieName    = "oauth_state"
	OAuthNonceCookieName    = "oauth_nonce"
	PostLoginRedirectCookie = "post_login_redirect"
)

// oauthCookieMaxAge bounds how long an abandoned login attempt keeps its
// state and nonce cookies alive.
const oauthCookieMaxAge = 600 // seconds

// Well-known paths.
const (
	LoginPath    = "/login"
	CallbackPath = "/auth/callback"
	RootPath     = "/"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// Content templates are defined once and reused to avoid per-call allocations.
//
//nolint:gochecknoglobals // static read-only lookup for templates; avoids per-call allocations
var contentTemplates = map[string]string{
	PageTrips:        "trips-content",
	PageStats:        "stats-content",
	PageMap:          "map-content",
	PageDrivers:      "drivers-content",
	PageAdmin:        "admin-content",
	PageDriverDocs:   "driver-documents-content",
	PageNotFound:     "not-found-content",
	PageAccessDenied: "access-denied-content",
}

// ContentTemplateFor returns the content template for the given page key.
// Falls back to not-found-content for unknown pages.
func ContentTemplateFor(page string) string {
	if name, ok := contentTemplates[page]; ok {
		return name
	}
	return "not-found-content"
}
