package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Outbound frames buffered per connection before it counts as stuck.
	sendBuffer = 256
)

var _ model.Connection = (*Conn)(nil)

// Conn is one websocket client. Outbound frames go through a buffered
// channel drained by WritePump; Send never blocks.
type Conn struct {
	id       string
	username string
	ws       *websocket.Conn
	send     chan []byte
	logger   *logger.Logger

	mu          sync.Mutex
	closed      bool
	closeReason string
}

func newConn(ws *websocket.Conn, username string, logger *logger.Logger) *Conn {
	id := uuid.NewString()
	return &Conn{
		id:       id,
		username: username,
		ws:       ws,
		send:     make(chan []byte, sendBuffer),
		logger:   logger.With("conn_id", id, "username", username),
	}
}

// ID implements model.Connection.
func (c *Conn) ID() string { return c.id }

// Username is the identity announced in the handshake, or empty.
func (c *Conn) Username() string { return c.username }

// Send implements model.Connection.
func (c *Conn) Send(event string, payload any) error {
	data, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return model.ErrConnectionClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("WebSocket: send buffer full, dropping connection")
		c.closeLocked("send buffer full")
		return model.ErrConnectionClosed
	}
}

// Supersede implements model.Connection.
func (c *Conn) Supersede() {
	if err := c.Send(model.EventSuperseded, struct{}{}); err != nil {
		return
	}
	c.logger.Info("WebSocket: connection superseded")
	c.Close("superseded")
}

// Close stops the write pump after it flushes queued frames. It is safe to
// call more than once.
func (c *Conn) Close(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked(reason)
}

func (c *Conn) closeLocked(reason string) {
	if c.closed {
		return
	}
	c.closed = true
	c.closeReason = reason
	close(c.send)
}

// ReadPump reads frames until the socket fails or closes, handing each to
// handle. It returns when the connection is finished.
func (c *Conn) ReadPump(handle func(model.Frame)) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket: read error", "error", err.Error())
			}
			return
		}

		var frame model.Frame
		if err := json.Unmarshal(message, &frame); err != nil {
			c.logger.Debug("WebSocket: malformed frame", "error", err.Error())
			_ = c.Send(model.EventError, model.ErrorPayload{Message: "malformed frame"})
			continue
		}

		handle(frame)
	}
}

// WritePump writes queued frames and keeps the connection alive with pings.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.mu.Lock()
				reason := c.closeReason
				c.mu.Unlock()
				_ = c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("WebSocket: write failed", "error", err.Error())
				c.Close("write failed")
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close("ping failed")
				return
			}
		}
	}
}

func encodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(model.Frame{Event: event, Data: data})
}
