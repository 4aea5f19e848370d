package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"server/internal/infra"
)

// The API already serves permissive CORS, so the upgrader mirrors that.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades the connection and attaches it to the hub.
func Handler(hub *Hub, logger infra.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("ws: upgrade failed")
			return
		}
		client := &Client{
			hub:  hub,
			conn: conn,
			send: make(chan []byte, 256),
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// BroadcastJobUpdate publishes a job status snapshot to all subscribers.
func BroadcastJobUpdate(hub *Hub, update any) {
	if hub == nil {
		return
	}
	message, err := json.Marshal(map[string]any{
		"type": "job_update",
		"data": update,
	})
	if err != nil {
		return
	}
	hub.Broadcast(message)
}
