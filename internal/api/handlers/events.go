package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/eventlist-manager/backend/internal/api/middleware"
	"github.com/eventlist-manager/backend/internal/calendar"
	"github.com/eventlist-manager/backend/internal/storage"
	"github.com/eventlist-manager/backend/internal/storage/models"
	"github.com/eventlist-manager/backend/internal/websocket"
)

// EventRequest is the body of create and update requests. An id in the body
// of an update is ignored in favour of the path.
type EventRequest struct {
	ID    models.EventID `json:"id,omitempty"`
	Name  string         `json:"name"`
	Start string         `json:"start"`
	End   string         `json:"end"`
}

func (req EventRequest) event() models.Event {
	return models.Event{Name: req.Name, Start: req.Start, End: req.End}
}

// ListEvents returns every event in creation order.
func ListEvents(repo *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := repo.List(r.Context())
		if err != nil {
			log.Printf("Failed to list events: %v", err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query events")
			return
		}

		middleware.WriteJSON(w, http.StatusOK, events)
	}
}

// CreateEvent stores a new event and returns it with its assigned id.
func CreateEvent(repo *storage.EventRepository, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		e := req.event()
		if !e.HasRequiredFields() {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name, start and end are required")
			return
		}

		saved, err := repo.Create(r.Context(), e)
		if err != nil {
			log.Printf("Failed to create event: %v", err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create event")
			return
		}

		broadcaster.BroadcastEventCreated(saved)
		middleware.WriteJSON(w, http.StatusCreated, saved)
	}
}

// GetEvent returns a single event by id.
func GetEvent(repo *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := models.EventID(mux.Vars(r)["id"])

		e, err := repo.GetByID(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}
		if err != nil {
			log.Printf("Failed to get event %s: %v", id, err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query event")
			return
		}

		middleware.WriteJSON(w, http.StatusOK, e)
	}
}

// UpdateEvent replaces an existing event and returns the stored record.
func UpdateEvent(repo *storage.EventRepository, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := models.EventID(mux.Vars(r)["id"])

		var req EventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		e := req.event()
		e.ID = id
		if !e.HasRequiredFields() {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name, start and end are required")
			return
		}

		err := repo.Update(r.Context(), e)
		if errors.Is(err, storage.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}
		if err != nil {
			log.Printf("Failed to update event %s: %v", id, err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update event")
			return
		}

		broadcaster.BroadcastEventUpdated(e)
		middleware.WriteJSON(w, http.StatusOK, e)
	}
}

// DeleteEvent removes an event.
func DeleteEvent(repo *storage.EventRepository, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := models.EventID(mux.Vars(r)["id"])

		err := repo.Delete(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}
		if err != nil {
			log.Printf("Failed to delete event %s: %v", id, err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete event")
			return
		}

		broadcaster.BroadcastEventDeleted(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ExportEvents serves every event as an iCalendar feed.
func ExportEvents(repo *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := repo.List(r.Context())
		if err != nil {
			log.Printf("Failed to list events for export: %v", err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query events")
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
		if _, err := calendar.Encode(w, events, time.Now()); err != nil {
			log.Printf("Failed to export events: %v", err)
		}
	}
}
