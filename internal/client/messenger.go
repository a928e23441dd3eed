package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
	"github.com/dtroode/gophchat/internal/session"
	"github.com/dtroode/gophchat/internal/typing"
)

// ErrSuperseded is returned by Run when the same identity connected
// elsewhere and the server closed this connection.
var ErrSuperseded = errors.New("session taken over by another connection")

const eventBuffer = 64

// Transport carries frames to and from the server.
type Transport interface {
	Send(event string, payload any) error
	Frames() <-chan model.Frame
}

// HistoryFetcher loads stored envelopes for a conversation.
type HistoryFetcher interface {
	History(ctx context.Context, a, b string) ([]model.Envelope, error)
}

// Messenger is one signed-in user's view of the chat. It owns the
// session manager, the transport and the typing debouncer.
type Messenger struct {
	username  string
	sessions  *session.Manager
	history   HistoryFetcher
	transport Transport
	typing    *typing.Debouncer
	logger    *logger.Logger

	messages chan model.Message
	presence chan []model.PresenceEntry
	notices  chan model.TypingNotice
}

// NewMessenger creates a Messenger. typingQuiet is the idle time after which
// a typing indicator is withdrawn.
func NewMessenger(
	username string,
	sessions *session.Manager,
	history HistoryFetcher,
	transport Transport,
	typingQuiet time.Duration,
	logger *logger.Logger,
) *Messenger {
	m := &Messenger{
		username:  username,
		sessions:  sessions,
		history:   history,
		transport: transport,
		logger:    logger,
		messages:  make(chan model.Message, eventBuffer),
		presence:  make(chan []model.PresenceEntry, eventBuffer),
		notices:   make(chan model.TypingNotice, eventBuffer),
	}
	m.typing = typing.NewDebouncer(typingQuiet, m.emitTyping)
	return m
}

// Messages yields decrypted inbound messages, including undecryptable ones.
func (m *Messenger) Messages() <-chan model.Message {
	return m.messages
}

// Presence yields every presence snapshot the server pushes.
func (m *Messenger) Presence() <-chan []model.PresenceEntry {
	return m.presence
}

// TypingNotices yields typing indicators addressed to this user.
func (m *Messenger) TypingNotices() <-chan model.TypingNotice {
	return m.notices
}

// Send encrypts text for peer and hands it to the server. A pending typing
// indicator for peer is withdrawn first.
func (m *Messenger) Send(ctx context.Context, peer, text string) (model.Envelope, error) {
	m.typing.Stop(peer)

	env, err := m.sessions.Seal(ctx, peer, text)
	if err != nil {
		return model.Envelope{}, err
	}

	err = m.transport.Send(model.EventSendMessage, model.SendMessagePayload{
		Sender:     env.From,
		Recipient:  env.To,
		CipherText: env.CipherText,
		IV:         env.IV,
	})
	if err != nil {
		return model.Envelope{}, err
	}

	m.logger.Debug("Messenger: message sent", "to", peer)
	return env, nil
}

// Typing records a keystroke in the conversation with peer.
func (m *Messenger) Typing(peer string) {
	m.typing.Keystroke(peer)
}

// StopTyping withdraws the typing indicator for peer.
func (m *Messenger) StopTyping(peer string) {
	m.typing.Stop(peer)
}

// Conversation loads and decrypts the stored history with peer.
func (m *Messenger) Conversation(ctx context.Context, peer string) ([]model.Message, error) {
	envelopes, err := m.history.History(ctx, m.username, peer)
	if err != nil {
		return nil, fmt.Errorf("failed to load history with %s: %w", peer, err)
	}

	out := make([]model.Message, 0, len(envelopes))
	for _, env := range envelopes {
		out = append(out, m.open(ctx, env))
	}
	return out, nil
}

// Run dispatches inbound frames until ctx ends or the transport closes. It
// returns ErrSuperseded if the server handed this identity to another
// connection.
func (m *Messenger) Run(ctx context.Context) error {
	defer m.typing.Close()

	frames := m.transport.Frames()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if err := m.dispatch(ctx, frame); err != nil {
				return err
			}
		}
	}
}

func (m *Messenger) dispatch(ctx context.Context, frame model.Frame) error {
	switch frame.Event {
	case model.EventPrivateMessage:
		var in model.PrivateMessagePayload
		if err := json.Unmarshal(frame.Data, &in); err != nil {
			m.logger.Warn("Messenger: malformed private_message", "error", err.Error())
			return nil
		}
		msg := m.open(ctx, model.Envelope{
			From:       in.From,
			To:         m.username,
			CipherText: in.Encrypted,
			IV:         in.IV,
			CreatedAt:  time.Now().UTC(),
		})
		return publish(ctx, m.messages, msg)

	case model.EventUsers:
		var entries []model.PresenceEntry
		if err := json.Unmarshal(frame.Data, &entries); err != nil {
			m.logger.Warn("Messenger: malformed users", "error", err.Error())
			return nil
		}
		m.forgetRotated(entries)
		return publish(ctx, m.presence, entries)

	case model.EventTyping:
		var notice model.TypingNotice
		if err := json.Unmarshal(frame.Data, &notice); err != nil {
			return nil
		}
		return publish(ctx, m.notices, notice)

	case model.EventSuperseded:
		m.logger.Warn("Messenger: connection superseded")
		return ErrSuperseded

	case model.EventError:
		var payload model.ErrorPayload
		_ = json.Unmarshal(frame.Data, &payload)
		m.logger.Warn("Messenger: server rejected frame", "message", payload.Message)
	}
	return nil
}

// open decrypts env. Failures produce an undecryptable message rather than
// being dropped.
func (m *Messenger) open(ctx context.Context, env model.Envelope) model.Message {
	msg := model.Message{
		ID:        env.ID,
		From:      env.From,
		To:        env.To,
		CreatedAt: env.CreatedAt,
	}

	text, err := m.sessions.Open(ctx, env)
	if err != nil {
		m.logger.Warn("Messenger: message undecryptable",
			"from", env.From,
			"envelope_id", env.ID,
			"error", err.Error())
		msg.Undecryptable = true
		msg.Err = err
		return msg
	}

	msg.Text = text
	return msg
}

// forgetRotated drops sessions whose peer announced a different key, so the
// next message is sealed for the new one.
func (m *Messenger) forgetRotated(entries []model.PresenceEntry) {
	for _, e := range entries {
		if e.PublicKey == nil || e.Username == m.username {
			continue
		}
		current, ok := m.sessions.PeerKey(e.Username)
		if ok && !current.Equal(e.PublicKey) {
			m.logger.Info("Messenger: peer key rotated",
				"peer", e.Username,
				"fingerprint", e.PublicKey.Fingerprint())
			m.sessions.Forget(e.Username)
		}
	}
}

func (m *Messenger) emitTyping(peer string, isTyping bool) {
	err := m.transport.Send(model.EventTyping, model.TypingPayload{
		From:     m.username,
		To:       peer,
		IsTyping: model.Flag(isTyping),
	})
	if err != nil {
		m.logger.Debug("Messenger: failed to send typing", "to", peer, "error", err.Error())
	}
}

func publish[T any](ctx context.Context, ch chan T, v T) error {
	select {
	case ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
