package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
)

const (
	socketWriteWait = 10 * time.Second
	frameBuffer     = 64
)

// Socket is the client end of the realtime connection.
type Socket struct {
	ws     *websocket.Conn
	logger *logger.Logger

	writeMu   sync.Mutex
	frames    chan model.Frame
	err       error
	done      chan struct{}
	closing   chan struct{}
	closeOnce sync.Once
}

// DialSocket opens the realtime connection and announces username and its
// public key. An empty username connects as an observer.
func DialSocket(ctx context.Context, serverURL, username string, publicKey *crypto.PublicKey, logger *logger.Logger) (*Socket, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	q := u.Query()
	if username != "" {
		q.Set("username", username)
	}
	if publicKey != nil {
		q.Set("publicKey", publicKey.String())
	}
	u.RawQuery = q.Encode()

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", u.Redacted(), err)
	}

	s := &Socket{
		ws:      ws,
		logger:  logger.With("component", "socket"),
		frames:  make(chan model.Frame, frameBuffer),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Send writes one frame.
func (s *Socket) Send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event, err)
	}
	frame, err := json.Marshal(model.Frame{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.ws.SetWriteDeadline(time.Now().Add(socketWriteWait))
	if err := s.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}
	return nil
}

// Frames yields inbound frames. It is closed when the connection ends; Err
// then reports why.
func (s *Socket) Frames() <-chan model.Frame {
	return s.frames
}

// Err returns the error that ended the connection, or nil while it is open
// or after a normal close.
func (s *Socket) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Close sends a close frame and tears the connection down.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() { close(s.closing) })

	s.writeMu.Lock()
	_ = s.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(socketWriteWait))
	s.writeMu.Unlock()

	err := s.ws.Close()
	<-s.done
	return err
}

func (s *Socket) readLoop() {
	defer func() {
		close(s.done)
		close(s.frames)
	}()

	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) || closeErr.Code != websocket.CloseNormalClosure {
				s.err = err
			}
			s.logger.Debug("Socket: connection ended", "error", err.Error())
			return
		}

		var frame model.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.logger.Warn("Socket: malformed frame", "error", err.Error())
			continue
		}
		select {
		case s.frames <- frame:
		case <-s.closing:
			return
		}
	}
}
