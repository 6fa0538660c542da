package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth happens in the bearer middleware; origins are the SPA's problem.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NotificationSocket upgrades the connection and registers it with the hub
// so in_app deliveries reach the caller's open sessions. The connection is
// held open until the client goes away.
func (h *Handler) NotificationSocket(c *gin.Context) {
	userID := currentUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed for user %d: %v", userID, err)
		return
	}

	if !h.hub.Add(userID, conn) {
		h.logger.Warnf("Rejecting WebSocket connection for user %d: session cap reached", userID)
		conn.Close()
		return
	}
	defer func() {
		h.hub.Remove(userID, conn)
		conn.Close()
	}()

	// Drain control frames; the server never expects client messages.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
