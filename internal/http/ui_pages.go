package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/fleetyard/fleet-ui-api/internal/domain/auth"
)

// UIHandlers renders the registered SPA pages.
type UIHandlers struct {
	T      *TemplateRenderer
	Logger *slog.Logger
}

func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// pageData assembles the template payload shared by every page render.
func (h *UIHandlers) pageData(r *http.Request, page, title string) map[string]any {
	data := map[string]any{
		"Title":       title,
		"CurrentPage": page,
		"RequestPath": r.URL.Path,
		"CSRFToken":   GetCSRFToken(r),
	}

	if session := GetSessionFromContext(r.Context()); session != nil {
		data["User"] = map[string]any{
			"Name":    session.Name,
			"Email":   session.Email,
			"Avatar":  session.AvatarURL,
			"IsAdmin": session.Role == domainauth.RoleAdmin,
		}
	}

	return data
}

func (h *UIHandlers) render(w http.ResponseWriter, r *http.Request, data map[string]any) {
	if h.T == nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	if err := h.T.RenderPage(w, r, data); err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
	}
}

// Trips renders the trip overview, which is also the application root.
func (h *UIHandlers) Trips(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.pageData(r, PageTrips, "Trips - Fleet UI"))
}

// Stats renders the fleet statistics page.
func (h *UIHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.pageData(r, PageStats, "Statistics - Fleet UI"))
}

// Map renders the live map page.
func (h *UIHandlers) Map(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.pageData(r, PageMap, "Map - Fleet UI"))
}

// Drivers renders the driver roster page.
func (h *UIHandlers) Drivers(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.pageData(r, PageDrivers, "Drivers - Fleet UI"))
}

// Admin renders the administration page.
func (h *UIHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.pageData(r, PageAdmin, "Administration - Fleet UI"))
}

// DriverDocuments renders the driver document validation page.
func (h *UIHandlers) DriverDocuments(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.pageData(r, PageDriverDocs, "Driver documents - Fleet UI"))
}

// NotFound renders the in-shell "not found" region. The response status stays
// 200 so client-side navigation keeps working; the content region carries the
// logical 404.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, PageNotFound, "Page not found - Fleet UI")
	data["Message"] = "The page you're looking for doesn't exist."
	h.render(w, r, data)
}

// AccessDenied renders the in-shell "access denied" region without invoking
// the restricted page handler. Status stays 200 for the same reason as
// NotFound.
func (h *UIHandlers) AccessDenied(w http.ResponseWriter, r *http.Request) {
	h.logger().WarnContext(r.Context(), "page access denied",
		"path", r.URL.Path,
		"error", ErrAccessDenied,
	)
	data := h.pageData(r, PageAccessDenied, "Access denied - Fleet UI")
	data["Message"] = "You don't have permission to view this page."
	h.render(w, r, data)
}
