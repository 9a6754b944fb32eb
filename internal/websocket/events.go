package websocket

import (
	"log"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

// EventBroadcaster publishes event changes on a hub.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a broadcaster. A nil hub makes every
// broadcast a no-op.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastEventCreated announces a newly created event.
func (b *EventBroadcaster) BroadcastEventCreated(e models.Event) {
	b.broadcast(TypeEventCreated, EventPayload{Event: e})
}

// BroadcastEventUpdated announces a replaced event.
func (b *EventBroadcaster) BroadcastEventUpdated(e models.Event) {
	b.broadcast(TypeEventUpdated, EventPayload{Event: e})
}

// BroadcastEventDeleted announces a deleted event.
func (b *EventBroadcaster) BroadcastEventDeleted(id models.EventID) {
	b.broadcast(TypeEventDeleted, EventDeletedPayload{ID: id})
}

func (b *EventBroadcaster) broadcast(msgType MessageType, payload any) {
	if b == nil || b.hub == nil {
		return
	}

	msg, err := NewMessage(msgType, payload)
	if err != nil {
		log.Printf("Error encoding change feed message: %v", err)
		return
	}
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding change feed message: %v", err)
		return
	}

	b.hub.Broadcast(data)
}
