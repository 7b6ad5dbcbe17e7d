package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"bearwatch/internal/logger"
	"bearwatch/internal/services/hub"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebsocketHandler handles GET /ws, subscribing the client to live
// detection events until the connection drops.
func WebsocketHandler(h *hub.Hub, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("Websocket upgrade failed: %v", err)
			return
		}

		h.Register(conn)

		// Drain client messages; the feed is one-way.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.Unregister(conn)
				break
			}
		}
	}
}
