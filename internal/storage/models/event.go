// Package models contains the domain models for the application.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for event start and end.
const DateLayout = "2006-01-02"

// EventID is an opaque, backend-assigned event identifier.
// It decodes from either a JSON string or a JSON number, since stock JSON
// servers hand out numeric ids.
type EventID string

// UnmarshalJSON accepts "abc", 12 and null.
func (id *EventID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EventID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("event id must be a string or number: %w", err)
	}
	*id = EventID(n.String())
	return nil
}

// String returns the id as plain text.
func (id EventID) String() string {
	return string(id)
}

// Event is a calendar item with a name and a start/end date.
type Event struct {
	ID    EventID `json:"id,omitempty"`
	Name  string  `json:"name"`
	Start string  `json:"start"`
	End   string  `json:"end"`
}

// IsSaved reports whether the event has been assigned an id by the backend.
func (e Event) IsSaved() bool {
	return e.ID != ""
}

// HasRequiredFields reports whether name (trimmed), start and end are all non-empty.
func (e Event) HasRequiredFields() bool {
	return strings.TrimSpace(e.Name) != "" && e.Start != "" && e.End != ""
}

// StartDate parses Start as an ISO calendar date.
func (e Event) StartDate() (time.Time, error) {
	return time.Parse(DateLayout, e.Start)
}

// EndDate parses End as an ISO calendar date.
func (e Event) EndDate() (time.Time, error) {
	return time.Parse(DateLayout, e.End)
}

// EventRecord is the persisted form of an event in the backend database.
type EventRecord struct {
	Event
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
