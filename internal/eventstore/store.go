// Package eventstore holds the in-memory list of events for one UI session.
package eventstore

import (
	"sync"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

// Store is the authoritative ordered sequence of events for a session.
// It performs no validation; the controller is trusted.
type Store struct {
	mu     sync.RWMutex
	events []models.Event
}

// New creates an empty store.
func New() *Store {
	return &Store{events: []models.Event{}}
}

// SetEvents replaces the entire held sequence.
func (s *Store) SetEvents(events []models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append([]models.Event(nil), events...)
}

// Events returns a copy of the current sequence.
func (s *Store) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Event{}, s.events...)
}

// AddEvent appends one event to the end.
func (s *Store) AddEvent(event models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// ReplaceEvent swaps every event whose id equals id for event, keeping its
// position. It reports whether any event matched.
func (s *Store) ReplaceEvent(id models.EventID, event models.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i] = event
			found = true
		}
	}
	return found
}

// RemoveEvent removes every event whose id equals id.
func (s *Store) RemoveEvent(id models.EventID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0:0]
	for _, e := range s.events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.events = kept
}

// Len returns the number of held events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
