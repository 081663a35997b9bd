// Package events fans status-change notifications out to websocket clients.
package events

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MissionStatusChanged = "mission.status"
	DroneStatusChanged   = "drone.status"
	MissionDeleted       = "mission.deleted"
)

// Event is one committed state change.
type Event struct {
	Type      string    `json:"type"`
	MissionID int64     `json:"missionId,omitempty"`
	DroneID   int64     `json:"droneId,omitempty"`
	OwnerID   int64     `json:"ownerId"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	At        time.Time `json:"at"`
}

const writeWait = 5 * time.Second

type client struct {
	conn     *websocket.Conn
	ownerID  int64
	elevated bool
	// gorilla connections allow one concurrent writer
	wmu sync.Mutex
}

// Hub tracks connected websocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// Register adds a client. Elevated clients receive every event; others only
// events for records they own.
func (h *Hub) Register(id string, conn *websocket.Conn, ownerID int64, elevated bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = &client{conn: conn, ownerID: ownerID, elevated: elevated}
	log.Printf("websocket client registered: %s (owner %d)", id, ownerID)
}

// Unregister removes a client.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		log.Printf("websocket client unregistered: %s", id)
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends ev to every interested client. Delivery is best effort:
// a failed write is logged and the client is left for its read loop to reap.
func (h *Hub) Publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Printf("marshal event %s: %v", ev.Type, err)
		return
	}
	h.mu.RLock()
	targets := make(map[string]*client, len(h.clients))
	for id, c := range h.clients {
		if c.elevated || c.ownerID == ev.OwnerID {
			targets[id] = c
		}
	}
	h.mu.RUnlock()

	for id, c := range targets {
		c.wmu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		c.wmu.Unlock()
		if err != nil {
			log.Printf("websocket send to %s: %v", id, err)
		}
	}
}
