package relay

import (
	"context"
	"fmt"

	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
)

// Presence resolves online identities to their live connection.
type Presence interface {
	Lookup(username string) (model.Connection, bool)
}

// History durably records every envelope.
type History interface {
	Append(ctx context.Context, envelope model.Envelope) (model.Envelope, error)
}

// Delivery is the live-delivery outcome of a route attempt.
type Delivery int

const (
	// Offline means the recipient had no live connection, or it closed
	// before the payload could be queued.
	Offline Delivery = iota
	// Delivered means the payload was queued on the recipient's connection.
	Delivered
)

func (d Delivery) String() string {
	if d == Delivered {
		return "delivered"
	}
	return "offline"
}

// Router forwards envelopes and typing signals to online recipients.
// Delivery is best-effort: nothing is queued for offline recipients.
type Router struct {
	presence Presence
	history  History
	logger   *logger.Logger
}

// NewRouter creates a Router.
func NewRouter(presence Presence, history History, logger *logger.Logger) *Router {
	return &Router{
		presence: presence,
		history:  history,
		logger:   logger,
	}
}

// RouteEnvelope records env in history and then pushes it to the recipient
// if online. It returns the stored envelope. If recording fails the envelope
// is not delivered and the error is returned.
func (r *Router) RouteEnvelope(ctx context.Context, env model.Envelope) (model.Envelope, Delivery, error) {
	if env.From == "" || env.To == "" {
		return model.Envelope{}, Offline, fmt.Errorf("%w: envelope needs sender and recipient", model.ErrInvalidArgument)
	}

	saved, err := r.history.Append(ctx, env)
	if err != nil {
		r.logger.Error("Relay: failed to record envelope",
			"from", env.From,
			"to", env.To,
			"error", err.Error())
		return model.Envelope{}, Offline, fmt.Errorf("failed to record envelope: %w", err)
	}

	delivery := r.forward(saved.To, model.EventPrivateMessage, model.PrivateMessagePayload{
		From:      saved.From,
		Encrypted: saved.CipherText,
		IV:        saved.IV,
	})

	r.logger.Debug("Relay: envelope routed",
		"envelope_id", saved.ID,
		"from", saved.From,
		"to", saved.To,
		"delivery", delivery.String())
	return saved, delivery, nil
}

// RouteSignal forwards a typing signal. Signals are never stored and are
// dropped silently when the recipient is offline or the signal is incomplete.
func (r *Router) RouteSignal(_ context.Context, sig model.TypingSignal) Delivery {
	if sig.From == "" || sig.To == "" {
		return Offline
	}
	return r.forward(sig.To, model.EventTyping, model.TypingNotice{
		From:     sig.From,
		IsTyping: sig.IsTyping,
	})
}

func (r *Router) forward(to, event string, payload any) Delivery {
	conn, ok := r.presence.Lookup(to)
	if !ok {
		return Offline
	}
	if err := conn.Send(event, payload); err != nil {
		// Lost a race with disconnect; same as offline.
		r.logger.Debug("Relay: recipient connection unavailable",
			"to", to,
			"conn_id", conn.ID(),
			"event", event,
			"error", err.Error())
		return Offline
	}
	return Delivered
}
