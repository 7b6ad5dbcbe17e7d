package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"bearwatch/internal/logger"
	"bearwatch/internal/models"
)

// detectionEvent is the payload pushed to subscribers for each persisted record.
type detectionEvent struct {
	Type   string                 `json:"type"`
	Record models.DetectionRecord `json:"record"`
}

// Hub fans detection events out to connected websocket clients.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mutex      sync.RWMutex
	logger     *logger.Logger
}

// New creates a Hub. Run must be started for events to be delivered.
func New(logger *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		logger:     logger,
	}
}

// Run serves the register/unregister/broadcast channels. Meant to be run
// in its own goroutine for the lifetime of the process.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Websocket client connected. Total: %d", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Websocket client disconnected. Total: %d", total)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending websocket message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds a client connection to the hub.
func (h *Hub) Register(client *websocket.Conn) {
	h.register <- client
}

// Unregister removes a client connection from the hub.
func (h *Hub) Unregister(client *websocket.Conn) {
	h.unregister <- client
}

// NotifyDetection broadcasts a persisted detection record to all clients.
// Events are dropped when the broadcast queue is full rather than
// blocking the detect request.
func (h *Hub) NotifyDetection(rec models.DetectionRecord) {
	payload, err := json.Marshal(detectionEvent{Type: "detection", Record: rec})
	if err != nil {
		h.logger.Error("Failed to marshal detection event: %v", err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warning("Detection event dropped, broadcast queue full")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
