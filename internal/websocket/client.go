package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"voice-assistant-be/internal/dto"
	"voice-assistant-be/internal/mapper"
	"voice-assistant-be/internal/pkg/serverutils"
	"voice-assistant-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// TurnHandler is the slice of the chat service a websocket client needs.
type TurnHandler interface {
	HandleTurn(ctx context.Context, sessionID, utterance string) (*service.TurnResult, error)
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	SessionID string

	// Buffered channel of outbound messages.
	Send chan []byte

	turns  TurnHandler
	mapper *mapper.ChatMapper

	closeOnce sync.Once
	closed    bool
	sendMu    sync.Mutex
}

func newClient(hub *Hub, conn *websocket.Conn, sessionID string, turns TurnHandler) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
		turns:     turns,
		mapper:    mapper.NewChatMapper(),
	}
}

// enqueue reports false when the buffer is full or the client is gone.
func (c *Client) enqueue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		c.sendMu.Lock()
		c.closed = true
		close(c.Send)
		c.sendMu.Unlock()
	})
}

// readPump reads turns from the connection and answers them in order.
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("WS", "Unexpected close", map[string]interface{}{"session_id": c.SessionID, "error": err.Error()})
			}
			return
		}
		c.enqueue(c.answer(raw))
	}
}

func (c *Client) answer(raw []byte) []byte {
	var in dto.WsInbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return encode(dto.WsOutbound{Type: "error", Data: "invalid message"})
	}
	if err := serverutils.ValidateRequest(in); err != nil {
		return encode(dto.WsOutbound{Type: "error", Data: err.Error()})
	}

	res, err := c.turns.HandleTurn(context.Background(), c.SessionID, in.Command)
	if err != nil {
		return encode(dto.WsOutbound{Type: "error", Data: err.Error()})
	}
	return encode(dto.WsOutbound{Type: "reply", Data: c.mapper.TurnResultToResponse(res)})
}

func encode(out dto.WsOutbound) []byte {
	data, _ := json.Marshal(out)
	return data
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
