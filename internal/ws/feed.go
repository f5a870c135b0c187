// Package ws pushes attendance events to connected dashboards the moment
// they are persisted. The hub is write-only from the clients' point of
// view; the ledger store stays the single source of truth.
package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/naveen-b26/ams-back/internal/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins for now
	},
}

// Message is the wire envelope for feed events.
type Message struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

type clientInfo struct {
	userID string
	role   string
}

// Hub tracks connected feed clients and broadcasts events to all of them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]clientInfo
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{clients: make(map[*websocket.Conn]clientInfo), log: log}
}

// Publish broadcasts an event to every connected client, dropping any
// connection whose write fails. Safe for concurrent use.
func (h *Hub) Publish(event string, data map[string]interface{}) {
	msg := Message{Event: event, Data: data}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Warn("feed write failed, dropping client", zap.Error(err))
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Handler upgrades a staff websocket subscription. The bearer token rides
// the query string since browsers cannot set headers on websocket dials.
func (h *Hub) Handler(verifier *middleware.StaffVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(401, gin.H{"error": "token missing"})
			return
		}

		claims, err := verifier.Validate(token)
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid token"})
			return
		}
		if claims.Role != "faculty" && claims.Role != "admin" && claims.Role != "deo" {
			c.JSON(403, gin.H{"error": "Forbidden, staff access required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("ws upgrade failed", zap.Error(err))
			return
		}

		h.mu.Lock()
		h.clients[conn] = clientInfo{userID: claims.UserID, role: claims.Role}
		h.mu.Unlock()

		h.log.Info("feed client connected",
			zap.String("user_id", claims.UserID), zap.String("role", claims.Role))

		go h.drain(conn)
	}
}

// drain reads and discards client frames until the connection dies, then
// unregisters it. The feed carries no client-to-server events.
func (h *Hub) drain(conn *websocket.Conn) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
		h.log.Info("feed client disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
