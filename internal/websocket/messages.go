package websocket

import (
	"encoding/json"
	"time"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

// MessageType identifies the type of change feed message.
type MessageType string

const (
	TypeEventCreated MessageType = "event.created"
	TypeEventUpdated MessageType = "event.updated"
	TypeEventDeleted MessageType = "event.deleted"
)

// Message is the change feed envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewMessage creates a message with the current timestamp.
func NewMessage(msgType MessageType, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

// JSON serializes the message.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventPayload carries the event a created or updated message is about.
type EventPayload struct {
	Event models.Event `json:"event"`
}

// EventDeletedPayload carries the id of a deleted event.
type EventDeletedPayload struct {
	ID models.EventID `json:"id"`
}
