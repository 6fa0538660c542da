// Package ws fans notifications out to connected browser sessions for the
// in_app channel.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"notification-center/internal/models"
)

// maxConnsPerUser caps simultaneous sessions (tabs) per user.
const maxConnsPerUser = 10

// Hub tracks open WebSocket connections per user.
type Hub struct {
	mu          sync.Mutex
	connections map[int64]map[*websocket.Conn]bool
	logger      *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		connections: make(map[int64]map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// Add registers a connection for the user. It reports false when the
// per-user cap is reached; the caller must close the connection, as it will
// never receive a push.
func (h *Hub) Add(userID int64, conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[userID]; !ok {
		h.connections[userID] = make(map[*websocket.Conn]bool)
	}
	if len(h.connections[userID]) >= maxConnsPerUser {
		h.logger.Warnf("Max connections reached for user %d, rejecting", userID)
		return false
	}
	h.connections[userID][conn] = true
	h.logger.Infof("Added WebSocket connection for user %d (total: %d)", userID, len(h.connections[userID]))
	return true
}

func (h *Hub) Remove(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.connections[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.connections, userID)
		}
		h.logger.Infof("Removed WebSocket connection for user %d (remaining: %d)", userID, len(conns))
	}
}

// Push writes the notification to every open connection of the user and
// returns how many were reached. Dead connections are pruned on write error.
func (h *Hub) Push(userID int64, n models.Notification) int {
	payload, err := json.Marshal(n)
	if err != nil {
		h.logger.Errorf("Failed to encode notification %s for push: %v", n.ID, err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.connections[userID]
	if !ok {
		return 0
	}

	delivered := 0
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Errorf("Failed to push to user %d: %v", userID, err)
			delete(conns, conn)
			continue
		}
		delivered++
	}
	if len(conns) == 0 {
		delete(h.connections, userID)
	}
	return delivered
}
