package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/csrf"

	"github.com/eventlist-manager/backend/internal/api/middleware"
	"github.com/eventlist-manager/backend/internal/controller"
	"github.com/eventlist-manager/backend/internal/session"
	"github.com/eventlist-manager/backend/internal/view"
)

// SessionCookie names the cookie carrying the UI session id.
const SessionCookie = "eventlist_session"

// ShowEvents renders the event list page. A browser without a live session
// gets a new one, which loads every event from the backend first.
func ShowEvents(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(r, sessions)
		if !ok {
			var err error
			s, err = sessions.Create(r.Context())
			if err != nil {
				log.Printf("Failed to start session: %v", err)
				middleware.WriteError(w, http.StatusBadGateway, middleware.ErrBadGateway, "Failed to load events")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    s.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		renderPage(w, r, s, http.StatusOK)
	}
}

// Click is the single delegated handler for every control on the page.
func Click(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(r, sessions)
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		if err := r.ParseForm(); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid form")
			return
		}
		click, err := parseClick(r.PostForm)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, err.Error())
			return
		}

		s.Table.SyncInputs(r.PostForm)
		err = s.Controller.HandleClick(r.Context(), click)
		switch {
		case err == nil:
			renderPage(w, r, s, http.StatusOK)
		case errors.Is(err, controller.ErrFieldsRequired):
			renderPage(w, r, s, http.StatusUnprocessableEntity)
		case errors.Is(err, controller.ErrStaleRow),
			errors.Is(err, view.ErrNoRow),
			errors.Is(err, view.ErrRowState):
			renderPage(w, r, s, http.StatusConflict)
		case errors.Is(err, controller.ErrUnknownControl):
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, err.Error())
		default:
			log.Printf("Click %s on %q failed: %v", click.Control, click.RowID, err)
			middleware.WriteError(w, http.StatusBadGateway, middleware.ErrBadGateway, "Events backend request failed")
		}
	}
}

func currentSession(r *http.Request, sessions *session.Manager) (*session.Session, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	return sessions.Get(cookie.Value)
}

// parseClick decodes "click=<row id>:<control>" (or "click=add") and the
// clicked row's inputs.
func parseClick(form url.Values) (controller.Click, error) {
	value := form.Get("click")
	if value == view.ControlAdd {
		return controller.Click{Control: view.ControlAdd}, nil
	}

	sep := strings.LastIndex(value, ":")
	if sep <= 0 || sep == len(value)-1 {
		return controller.Click{}, fmt.Errorf("malformed click %q", value)
	}

	click := controller.Click{RowID: value[:sep], Control: value[sep+1:]}
	for i, field := range view.Fields {
		click.Inputs[i] = form.Get(view.InputName(click.RowID, field))
	}
	return click, nil
}

func renderPage(w http.ResponseWriter, r *http.Request, s *session.Session, status int) {
	var buf bytes.Buffer
	if err := s.Table.Render(&buf, csrf.Token(r)); err != nil {
		log.Printf("Failed to render page: %v", err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
