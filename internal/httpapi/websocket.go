package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"fleetHQ/internal/events"
)

// Longest silence tolerated from a client before the connection is dropped.
const pongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are enforced by the CORS middleware and the token
	CheckOrigin: func(r *http.Request) bool { return true },
}

type eventsHandler struct {
	hub *events.Hub
}

// serve upgrades GET /api/events and streams status changes the caller may see.
func (h *eventsHandler) serve(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade for user %d: %v", cl.UserID, err)
		return
	}

	id := uuid.NewString()
	h.hub.Register(id, conn, cl.UserID, cl.Elevated())
	defer func() {
		h.hub.Unregister(id)
		conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	// a custom ping handler must send the pong itself
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket %s closed: %v", id, err)
			}
			return
		}
	}
}
