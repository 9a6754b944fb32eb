package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gorilla/websocket"
)

// Watch connects to a change feed at url and calls fn for every message
// until ctx is done or the connection fails.
func Watch(ctx context.Context, url string, fn func(Message)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dialing change feed: %w", err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading change feed: %w", err)
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Skipping malformed change feed message: %v", err)
			continue
		}
		fn(msg)
	}
}
