// Package handlers provides HTTP request handlers for the UI and backend servers.
package handlers

import (
	"net/http"

	"github.com/eventlist-manager/backend/internal/api/middleware"
	"github.com/eventlist-manager/backend/internal/session"
	"github.com/eventlist-manager/backend/internal/storage"
	"github.com/eventlist-manager/backend/internal/websocket"
)

// HealthResponse represents the backend health check response.
type HealthResponse struct {
	Status        string `json:"status"`
	DBConnected   bool   `json:"db_connected"`
	FeedObservers int    `json:"feed_observers"`
}

// HealthCheck reports whether the backend can reach its database.
func HealthCheck(db *storage.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.PingContext(r.Context()) == nil

		response := HealthResponse{
			Status:      "healthy",
			DBConnected: dbConnected,
		}
		if hub != nil {
			response.FeedObservers = hub.ClientCount()
		}

		status := http.StatusOK
		if !dbConnected {
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		middleware.WriteJSON(w, status, response)
	}
}

// UIHealthResponse represents the UI server health check response.
type UIHealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	APIURL   string `json:"api_url"`
}

// UIHealthCheck reports the UI server's live session count.
func UIHealthCheck(sessions *session.Manager, apiURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, UIHealthResponse{
			Status:   "healthy",
			Sessions: sessions.Count(),
			APIURL:   apiURL,
		})
	}
}
