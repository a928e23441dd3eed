// Package ws is the realtime websocket gateway. It binds connections to
// identities in the presence directory and feeds inbound frames to the
// relay router.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
	"github.com/dtroode/gophchat/internal/relay"
	"github.com/dtroode/gophchat/internal/service"
)

const routeTimeout = 10 * time.Second

// Presence is the live identity-to-connection directory.
type Presence interface {
	Register(username string, conn model.Connection, publicKey *crypto.PublicKey)
	Unregister(conn model.Connection) bool
	Snapshot() []model.PresenceEntry
	Subscribe(fn func())
}

// Router forwards envelopes and typing signals.
type Router interface {
	RouteEnvelope(ctx context.Context, env model.Envelope) (model.Envelope, relay.Delivery, error)
	RouteSignal(ctx context.Context, sig model.TypingSignal) relay.Delivery
}

// Announcer records the key a client presents on connect.
type Announcer interface {
	Announce(ctx context.Context, username string, publicKey *crypto.PublicKey) (model.Identity, error)
}

// Gateway upgrades HTTP requests to websocket connections.
type Gateway struct {
	presence  Presence
	router    Router
	announcer Announcer
	hub       *Hub
	upgrader  websocket.Upgrader
	logger    *logger.Logger

	// usersMu orders snapshots with their delivery, so the last users
	// frame a client sees matches the directory.
	usersMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

// NewGateway creates a Gateway and subscribes it to presence changes.
func NewGateway(presence Presence, router Router, announcer Announcer, logger *logger.Logger) *Gateway {
	ctx, cancel := context.WithCancel(context.Background())
	g := &Gateway{
		presence:  presence,
		router:    router,
		announcer: announcer,
		hub:       NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				// Browser clients are served from another origin.
				return true
			},
		},
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	presence.Subscribe(g.broadcastUsers)
	return g
}

// ServeHTTP handles GET /ws?username=&publicKey=. It blocks for the
// lifetime of the connection.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	username := query.Get("username")
	if username != "" {
		if err := service.ValidateUsername(username); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var publicKey *crypto.PublicKey
	if raw := query.Get("publicKey"); raw != "" {
		pub, err := crypto.ParsePublicKey(raw)
		if err != nil {
			g.logger.Warn("WebSocket: invalid public key in handshake",
				"username", username,
				"error", err.Error())
		} else {
			publicKey = pub
		}
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("WebSocket: failed to upgrade", "error", err.Error())
		return
	}

	c := newConn(ws, username, g.logger)
	g.hub.Add(c)
	go c.WritePump()

	g.logger.Info("WebSocket: client connected",
		"conn_id", c.ID(),
		"username", username)

	if username == "" {
		g.usersMu.Lock()
		_ = c.Send(model.EventUsers, g.presence.Snapshot())
		g.usersMu.Unlock()
	} else {
		if publicKey != nil {
			g.announce(username, publicKey)
		}
		g.presence.Register(username, c, publicKey)
	}

	c.ReadPump(func(frame model.Frame) { g.handleFrame(c, frame) })

	g.hub.Remove(c)
	if username != "" {
		g.presence.Unregister(c)
	}
	c.Close("disconnected")

	g.logger.Info("WebSocket: client disconnected",
		"conn_id", c.ID(),
		"username", username)
}

// Close disconnects every client.
func (g *Gateway) Close() {
	g.cancel()
	g.hub.CloseAll("server shutting down")
}

// Connections reports how many sockets are open.
func (g *Gateway) Connections() int {
	return g.hub.Len()
}

func (g *Gateway) announce(username string, publicKey *crypto.PublicKey) {
	ctx, cancel := context.WithTimeout(g.ctx, routeTimeout)
	defer cancel()

	if _, err := g.announcer.Announce(ctx, username, publicKey); err != nil {
		g.logger.Error("WebSocket: failed to record handshake key",
			"username", username,
			"error", err.Error())
	}
}

func (g *Gateway) broadcastUsers() {
	g.usersMu.Lock()
	defer g.usersMu.Unlock()
	g.hub.Broadcast(model.EventUsers, g.presence.Snapshot())
}

func (g *Gateway) handleFrame(c *Conn, frame model.Frame) {
	switch frame.Event {
	case model.EventSendMessage:
		g.handleSendMessage(c, frame.Data)
	case model.EventTyping:
		g.handleTyping(c, frame.Data)
	default:
		c.logger.Debug("WebSocket: unknown event", "event", frame.Event)
		_ = c.Send(model.EventError, model.ErrorPayload{Message: "unknown event " + frame.Event})
	}
}

func (g *Gateway) handleSendMessage(c *Conn, data json.RawMessage) {
	var in model.SendMessagePayload
	if err := json.Unmarshal(data, &in); err != nil {
		_ = c.Send(model.EventError, model.ErrorPayload{Message: "malformed send_message"})
		return
	}

	// Connections may only send as the identity they registered.
	if c.Username() == "" {
		_ = c.Send(model.EventError, model.ErrorPayload{Message: "connect with a username to send messages"})
		return
	}
	if in.Sender == "" {
		in.Sender = c.Username()
	}
	if in.Sender != c.Username() {
		_ = c.Send(model.EventError, model.ErrorPayload{Message: "sender does not match connection"})
		return
	}

	ctx, cancel := context.WithTimeout(g.ctx, routeTimeout)
	defer cancel()

	_, _, err := g.router.RouteEnvelope(ctx, model.Envelope{
		From:       in.Sender,
		To:         in.Recipient,
		CipherText: in.CipherText,
		IV:         in.IV,
	})
	if err != nil {
		msg := "message could not be stored"
		if errors.Is(err, model.ErrInvalidArgument) {
			msg = err.Error()
		}
		_ = c.Send(model.EventError, model.ErrorPayload{Message: msg})
	}
}

func (g *Gateway) handleTyping(c *Conn, data json.RawMessage) {
	var in model.TypingPayload
	if err := json.Unmarshal(data, &in); err != nil {
		return
	}
	if c.Username() != "" && in.From != c.Username() {
		return
	}

	ctx, cancel := context.WithTimeout(g.ctx, routeTimeout)
	defer cancel()

	g.router.RouteSignal(ctx, model.TypingSignal{
		From:     in.From,
		To:       in.To,
		IsTyping: bool(in.IsTyping),
	})
}
