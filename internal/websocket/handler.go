package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs runs one connection until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID string, turns TurnHandler) {
	client := newClient(hub, c, sessionID, turns)
	if !hub.Register(client) {
		return
	}

	go client.writePump()
	client.readPump()
}

// RegisterRoutes mounts GET /ws/chat?session_id=. A missing session id gets a fresh one.
func RegisterRoutes(r fiber.Router, hub *Hub, turns TurnHandler) {
	ws := r.Group("/ws")
	ws.Use(func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		sessionID := c.Query("session_id")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		c.Locals("session_id", sessionID)
		return c.Next()
	})
	ws.Get("/chat", websocket.New(func(c *websocket.Conn) {
		sessionID, _ := c.Locals("session_id").(string)
		ServeWs(hub, c, sessionID, turns)
	}))
}
