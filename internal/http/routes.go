package httpx

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	fleetui "github.com/fleetyard/fleet-ui-api"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth           AuthServiceInterface
	CallbackURL    string   // redirect URI registered with the identity provider
	CookieDomain   string
	PublicPrefixes []string // defaults to DefaultPublicPrefixes when empty
	IsDev          bool     // serve frontend assets from disk for hot reloading
	Logger         *slog.Logger
}

// NewRouter builds the HTTP handler: auth endpoints, health, webhooks, static
// assets, and the guarded SPA pages. Page registration happens here, so a
// duplicate page path fails the build instead of shadowing an existing page.
func NewRouter(services RouterServices) (http.Handler, error) {
	renderer, err := buildRenderer(services)
	if err != nil {
		return nil, fmt.Errorf("build template renderer: %w", err)
	}

	ui := &UIHandlers{T: renderer, Logger: services.Logger}

	registry, err := BuildPageRegistry(ui)
	if err != nil {
		return nil, fmt.Errorf("build page registry: %w", err)
	}

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Renderer:     renderer,
		CallbackURL:  services.CallbackURL,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	webhooks := &WebhookHandlers{Logger: services.Logger}

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.HandleFunc("POST /webhooks/{source}", webhooks.Receive)

	mux.HandleFunc("GET /login", authHandlers.LoginPage)
	mux.HandleFunc("GET /auth/login", authHandlers.Login)
	mux.HandleFunc("GET /auth/callback", authHandlers.Callback)
	mux.HandleFunc("POST /auth/admin-login", authHandlers.AdminLogin)
	mux.HandleFunc("GET /logout", authHandlers.Logout)
	mux.HandleFunc("POST /logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/logout", authHandlers.Logout)
	mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/status", authHandlers.Status)

	mux.Handle("GET /static/", staticHandler(services.IsDev))

	// Everything else is an SPA page resolved through the registry.
	mux.Handle("/", &PageServer{Registry: registry, UI: ui})

	var handler http.Handler = mux
	handler = CSRFProtection(CSRFConfig{
		CookieDomain:   services.CookieDomain,
		ExemptPrefixes: []string{"/webhooks/"},
	})(handler)
	handler = Guard(GuardConfig{
		Auth:           services.Auth,
		PublicPrefixes: services.PublicPrefixes,
		Logger:         services.Logger,
	})(handler)

	return handler, nil
}

// BuildPageRegistry registers every SPA page. "/" and "/trips" are aliases
// for the same trips handler.
func BuildPageRegistry(ui *UIHandlers) (*PageRegistry, error) {
	registry := NewPageRegistry()

	registrations := []struct {
		path    string
		handler http.HandlerFunc
		admin   bool
	}{
		{RootPath, ui.Trips, false},
		{"/stats", ui.Stats, false},
		{"/map", ui.Map, false},
		{"/drivers", ui.Drivers, false},
		{"/admin", ui.Admin, true},
		{"/driver-documents", ui.DriverDocuments, true},
	}

	for _, reg := range registrations {
		var err error
		if reg.admin {
			err = registry.RegisterAdmin(reg.path, reg.handler)
		} else {
			err = registry.Register(reg.path, reg.handler)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := registry.RegisterAlias("/trips", RootPath); err != nil {
		return nil, err
	}

	return registry, nil
}

// buildRenderer chooses the template and manifest sources by mode. Dev mode
// reads from disk so templates reload per request restart; production reads
// the embedded filesystems.
func buildRenderer(services RouterServices) (*TemplateRenderer, error) {
	var templateFS fs.FS
	var resolver *AssetResolver

	if services.IsDev {
		templateFS = os.DirFS(TemplatePathFromRoot)
		diskManifest := filepath.Join("frontend", "static", "manifest.json")
		resolver, _ = NewAssetResolverFromDisk(diskManifest)
	} else {
		sub, err := fs.Sub(fleetui.TemplateFS, "frontend/templates")
		if err != nil {
			return nil, err
		}
		templateFS = sub

		staticSub, err := fs.Sub(fleetui.StaticFS, "frontend/static")
		if err != nil {
			return nil, err
		}
		resolver, err = NewAssetResolverFromFS(staticSub, "manifest.json")
		if err != nil {
			return nil, err
		}
	}

	return NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		Resolver:   resolver,
		Logger:     services.Logger,
	})
}

// staticHandler serves /static/* assets.
// In dev mode, files come from disk for hot reloading; in production they
// come from the embedded FS.
func staticHandler(isDev bool) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	}

	staticSub, err := fs.Sub(fleetui.StaticFS, "frontend/static")
	if err != nil {
		// Fallback to disk serving if embed fails
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
}

// hashedFilePattern matches content-hashed filenames including optional .map
// (e.g., app.abc123.js, styles.def456.css, app.abc123.js.map).
var hashedFilePattern = regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`)

// staticWithCacheHeaders wraps a static file handler to add appropriate cache headers.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedFilePattern.MatchString(r.URL.Path) {
			// Hashed assets can be cached for a long time (1 year)
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}

		handler.ServeHTTP(w, r)
	})
}
