// server/internal/socket/hub.go
package socket

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type client struct {
	conn *websocket.Conn
	role string
}

// Hub administra todos los clientes WebSocket conectados.
type Hub struct {
	// clients guarda las conexiones, la clave es el username.
	clients map[string]*client
	// mu protege el map clients del acceso desde varias goroutines.
	mu sync.RWMutex
}

// NewHub crea un Hub nuevo.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

// Register agrega un cliente nuevo al Hub.
func (h *Hub) Register(userID, role string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = &client{conn: conn, role: role}
	log.Printf("WebSocket client registered: %s (%s)", userID, role)
}

// Unregister saca un cliente del Hub.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		log.Printf("WebSocket client unregistered: %s", userID)
	}
}

// Send envía un mensaje a un cliente puntual.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[userID]
	if !ok {
		// Cliente no conectado (probablemente offline); no es un error grave.
		log.Printf("WebSocket client not found, could not send message: %s", userID)
		return nil
	}

	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// SendToRole envía un mensaje a todos los clientes conectados con alguno de
// los roles indicados. Se usa para avisar a bodega de requisiciones nuevas.
func (h *Hub) SendToRole(message []byte, roles ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, c := range h.clients {
		for _, role := range roles {
			if c.role == role {
				if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
					log.Printf("WebSocket send to %s failed: %v", userID, err)
				}
				break
			}
		}
	}
}
