// Package api provides HTTP routing for the UI server and the events backend.
package api

import (
	"github.com/gorilla/mux"

	"github.com/eventlist-manager/backend/internal/api/handlers"
	"github.com/eventlist-manager/backend/internal/api/middleware"
	"github.com/eventlist-manager/backend/internal/session"
	"github.com/eventlist-manager/backend/internal/storage"
	"github.com/eventlist-manager/backend/internal/websocket"
)

// NewBackendRouter serves the /events REST resource, its iCalendar export
// and its change feed.
func NewBackendRouter(db *storage.DB, hub *websocket.Hub) *mux.Router {
	repo := storage.NewEventRepository(db)
	broadcaster := websocket.NewEventBroadcaster(hub)

	r := mux.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	r.HandleFunc("/health", handlers.HealthCheck(db, hub)).Methods("GET")

	r.HandleFunc("/events", handlers.ListEvents(repo)).Methods("GET")
	r.HandleFunc("/events", handlers.CreateEvent(repo, broadcaster)).Methods("POST")
	r.HandleFunc("/events.ics", handlers.ExportEvents(repo)).Methods("GET")
	if hub != nil {
		r.HandleFunc("/events/ws", handlers.ChangeFeed(hub)).Methods("GET")
	}
	r.HandleFunc("/events/{id}", handlers.GetEvent(repo)).Methods("GET")
	r.HandleFunc("/events/{id}", handlers.UpdateEvent(repo, broadcaster)).Methods("PUT")
	r.HandleFunc("/events/{id}", handlers.DeleteEvent(repo, broadcaster)).Methods("DELETE")

	return r
}

// UIOptions configures the UI router.
type UIOptions struct {
	// APIURL is reported by the health endpoint.
	APIURL string
	// CSRFKey enables CSRF protection of the click form when non-empty.
	CSRFKey []byte
	// SecureCookies restricts the CSRF cookie to HTTPS.
	SecureCookies bool
	// TrustedOrigins are extra origins allowed to post the click form.
	TrustedOrigins []string
}

// NewUIRouter serves the event list page and its delegated click endpoint.
func NewUIRouter(sessions *session.Manager, opts UIOptions) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	r.HandleFunc("/health", handlers.UIHealthCheck(sessions, opts.APIURL)).Methods("GET")

	ui := r.NewRoute().Subrouter()
	if len(opts.CSRFKey) > 0 {
		ui.Use(middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins))
	}
	ui.HandleFunc("/", handlers.ShowEvents(sessions)).Methods("GET")
	ui.HandleFunc("/ui/click", handlers.Click(sessions)).Methods("POST")

	return r
}
