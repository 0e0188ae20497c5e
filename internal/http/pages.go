package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	domainauth "github.com/fleetyard/fleet-ui-api/internal/domain/auth"
)

// Resolver errors.
var (
	// ErrPathNotRegistered reports a lookup for a path no page claimed.
	ErrPathNotRegistered = errors.New("path not registered")
	// ErrAccessDenied reports a page the current role may not view.
	ErrAccessDenied = errors.New("access denied")
)

// PageRegistry maps logical paths to page handlers. It is built once at
// startup and read-only afterwards, so request-time lookups need no locking.
// Registering the same path twice fails instead of silently overwriting.
type PageRegistry struct {
	pages     map[string]http.HandlerFunc
	adminOnly map[string]bool
}

// NewPageRegistry creates an empty registry.
func NewPageRegistry() *PageRegistry {
	return &PageRegistry{
		pages:     make(map[string]http.HandlerFunc),
		adminOnly: make(map[string]bool),
	}
}

// Register adds a page handler for a logical path.
func (reg *PageRegistry) Register(path string, handler http.HandlerFunc) error {
	return reg.register(path, handler, false)
}

// RegisterAdmin adds a page handler that only admin sessions may view.
func (reg *PageRegistry) RegisterAdmin(path string, handler http.HandlerFunc) error {
	return reg.register(path, handler, true)
}

// RegisterAlias points an additional path at an already-registered page, so
// both resolve to the identical handler.
func (reg *PageRegistry) RegisterAlias(alias, target string) error {
	handler, ok := reg.pages[normalizePagePath(target)]
	if !ok {
		return fmt.Errorf("alias %q: %w: %s", alias, ErrPathNotRegistered, target)
	}
	return reg.register(alias, handler, reg.adminOnly[normalizePagePath(target)])
}

func (reg *PageRegistry) register(path string, handler http.HandlerFunc, admin bool) error {
	if handler == nil {
		return fmt.Errorf("register %q: handler is nil", path)
	}
	normalized := normalizePagePath(path)
	if _, exists := reg.pages[normalized]; exists {
		return fmt.Errorf("register %q: path already registered", normalized)
	}
	reg.pages[normalized] = handler
	if admin {
		reg.adminOnly[normalized] = true
	}
	return nil
}

// MustRegister is Register that panics on error. Registration runs at
// startup, where a duplicate path is a programming error worth crashing on.
func (reg *PageRegistry) MustRegister(path string, handler http.HandlerFunc) {
	if err := reg.Register(path, handler); err != nil {
		panic(err)
	}
}

// Resolve looks up the handler for a path after trailing-slash
// normalization. found is false when no page claimed the path.
func (reg *PageRegistry) Resolve(path string) (http.HandlerFunc, bool) {
	handler, ok := reg.pages[normalizePagePath(path)]
	return handler, ok
}

// IsAdminRestricted reports whether the path belongs to the admin-only set.
func (reg *PageRegistry) IsAdminRestricted(path string) bool {
	return reg.adminOnly[normalizePagePath(path)]
}

// normalizePagePath strips a trailing slash so "/stats/" and "/stats" hit
// the same entry. The root path stays "/".
func normalizePagePath(path string) string {
	if path == "" {
		return RootPath
	}
	if path != RootPath {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		return RootPath
	}
	return path
}

// PageServer dispatches guarded page requests through the registry. Unknown
// paths and denied pages render inside the SPA shell with a 200 status so
// client-side navigation keeps working.
type PageServer struct {
	Registry *PageRegistry
	UI       *UIHandlers
}

// ServeHTTP implements http.Handler.
func (s *PageServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, found := s.Registry.Resolve(r.URL.Path)
	if !found {
		s.UI.NotFound(w, r)
		return
	}

	if s.Registry.IsAdminRestricted(r.URL.Path) {
		session := GetSessionFromContext(r.Context())
		if session == nil || !hasRequiredRole(session.Role, domainauth.RoleAdmin) {
			s.UI.AccessDenied(w, r)
			return
		}
	}

	handler(w, r)
}
