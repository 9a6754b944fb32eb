// Package session composes and tracks the per-browser event list sessions.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eventlist-manager/backend/internal/controller"
	"github.com/eventlist-manager/backend/internal/eventstore"
	"github.com/eventlist-manager/backend/internal/view"
)

// Session is one browser's store, table and controller.
type Session struct {
	ID         string
	Store      *eventstore.Store
	Table      *view.Table
	Controller *controller.Controller

	mu       sync.Mutex
	lastSeen time.Time
}

// Wire constructs a store, a table on the embedded host page and a controller
// bound to api. It does not load anything; call Controller.Init for that.
func Wire(id string, api controller.EventAPI) (*Session, error) {
	table, err := view.NewDefaultTable()
	if err != nil {
		return nil, fmt.Errorf("building table: %w", err)
	}
	store := eventstore.New()

	return &Session{
		ID:         id,
		Store:      store,
		Table:      table,
		Controller: controller.New(store, table, api),
		lastSeen:   time.Now(),
	}, nil
}

// Start wires a session and runs the controller's initial load.
func Start(ctx context.Context, id string, api controller.EventAPI) (*Session, error) {
	s, err := Wire(id, api)
	if err != nil {
		return nil, err
	}
	if err := s.Controller.Init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns the last time the session was used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
