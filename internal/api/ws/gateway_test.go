package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/model"
	"github.com/dtroode/gophchat/internal/presence"
	"github.com/dtroode/gophchat/internal/relay"
	"github.com/dtroode/gophchat/internal/repository/memory"
	"github.com/dtroode/gophchat/internal/service"
	"github.com/dtroode/gophchat/internal/testutil"
)

type env struct {
	server    *httptest.Server
	gateway   *Gateway
	presence  *presence.Directory
	history   *service.History
	directory *service.Directory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWith(t, func(d *presence.Directory) Presence { return d })
}

// newEnvWith lets a test wrap the presence directory the gateway sees.
func newEnvWith(t *testing.T, wrap func(*presence.Directory) Presence) *env {
	t.Helper()

	lg := testutil.MakeNoopLogger()
	dir := presence.NewDirectory(lg)
	history := service.NewHistory(memory.NewMessageRepository(), lg)
	directory := service.NewDirectory(memory.NewIdentityRepository(), lg)
	gw := NewGateway(wrap(dir), relay.NewRouter(dir, history, lg), directory, lg)

	srv := httptest.NewServer(gw)
	t.Cleanup(func() {
		gw.Close()
		srv.Close()
	})

	return &env{server: srv, gateway: gw, presence: dir, history: history, directory: directory}
}

type client struct {
	t  *testing.T
	ws *websocket.Conn
}

func (e *env) connect(t *testing.T, username string, publicKey string) *client {
	t.Helper()

	q := url.Values{}
	if username != "" {
		q.Set("username", username)
	}
	if publicKey != "" {
		q.Set("publicKey", publicKey)
	}
	u := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws?" + q.Encode()

	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return &client{t: t, ws: ws}
}

// pausingPresence blocks the first Snapshot taken after arm until release
// is closed.
type pausingPresence struct {
	*presence.Directory
	armed   atomic.Bool
	paused  chan struct{}
	release chan struct{}
}

func (p *pausingPresence) arm() {
	p.paused = make(chan struct{})
	p.release = make(chan struct{})
	p.armed.Store(true)
}

func (p *pausingPresence) Snapshot() []model.PresenceEntry {
	entries := p.Directory.Snapshot()
	if p.armed.CompareAndSwap(true, false) {
		close(p.paused)
		<-p.release
	}
	return entries
}

type stubConn struct {
	id string
}

func (c *stubConn) ID() string             { return c.id }
func (c *stubConn) Send(string, any) error { return nil }
func (c *stubConn) Supersede()             {}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func (c *client) send(event string, payload any) {
	c.t.Helper()
	data, err := encodeFrame(event, payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.ws.WriteMessage(websocket.TextMessage, data))
}

// next returns the next frame with the given event, skipping others.
func (c *client) next(event string) model.Frame {
	c.t.Helper()
	_ = c.ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := c.ws.ReadMessage()
		require.NoError(c.t, err, "waiting for %s", event)
		var f model.Frame
		require.NoError(c.t, json.Unmarshal(data, &f))
		if f.Event == event {
			return f
		}
	}
}

func (c *client) users() []model.PresenceEntry {
	c.t.Helper()
	var entries []model.PresenceEntry
	require.NoError(c.t, json.Unmarshal(c.next(model.EventUsers).Data, &entries))
	return entries
}

func newKeyJSON(t *testing.T) (*crypto.PublicKey, string) {
	t.Helper()
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	return priv.PublicKey(), priv.PublicKey().String()
}

func usernames(entries []model.PresenceEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Username)
	}
	return out
}

func TestGateway_PresenceBroadcast(t *testing.T) {
	e := newEnv(t)
	aliceKey, aliceJSON := newKeyJSON(t)
	_, bobJSON := newKeyJSON(t)

	alice := e.connect(t, "alice", aliceJSON)
	assert.Equal(t, []string{"alice"}, usernames(alice.users()))

	e.connect(t, "bob", bobJSON)
	entries := alice.users()
	require.Equal(t, []string{"alice", "bob"}, usernames(entries))
	assert.True(t, aliceKey.Equal(entries[0].PublicKey))

	stored, err := e.directory.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, aliceKey.Equal(stored.PublicKey), "handshake key is announced to the directory")
}

func TestGateway_AnonymousConnectionGetsSnapshot(t *testing.T) {
	e := newEnv(t)
	_, aliceJSON := newKeyJSON(t)
	e.connect(t, "alice", aliceJSON).users()

	watcher := e.connect(t, "", "")
	assert.Equal(t, []string{"alice"}, usernames(watcher.users()))
	assert.Equal(t, 1, e.presence.Len())
}

func TestGateway_InvalidKeyRegistersWithoutKey(t *testing.T) {
	e := newEnv(t)

	carol := e.connect(t, "carol", `{"kty":"EC","crv":"P-256","x":"bad","y":"bad"}`)
	entries := carol.users()
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].PublicKey)

	_, err := e.directory.Lookup(context.Background(), "carol")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGateway_RejectsInvalidUsername(t *testing.T) {
	e := newEnv(t)

	u := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws?username=" + url.QueryEscape("bad\x01name")
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGateway_RoutesMessages(t *testing.T) {
	e := newEnv(t)
	_, aliceJSON := newKeyJSON(t)
	_, bobJSON := newKeyJSON(t)
	alice := e.connect(t, "alice", aliceJSON)
	bob := e.connect(t, "bob", bobJSON)
	alice.users()
	bob.users()

	alice.send(model.EventSendMessage, model.SendMessagePayload{
		Sender: "alice", Recipient: "bob", CipherText: "Y2lwaGVy", IV: "aXZpdml2aXZpdml2",
	})

	var got model.PrivateMessagePayload
	require.NoError(t, json.Unmarshal(bob.next(model.EventPrivateMessage).Data, &got))
	assert.Equal(t, model.PrivateMessagePayload{From: "alice", Encrypted: "Y2lwaGVy", IV: "aXZpdml2aXZpdml2"}, got)

	conv, err := e.history.Conversation(context.Background(), "bob", "alice")
	require.NoError(t, err)
	assert.Len(t, conv, 1)
}

func TestGateway_OfflineRecipientIsStored(t *testing.T) {
	e := newEnv(t)
	_, aliceJSON := newKeyJSON(t)
	alice := e.connect(t, "alice", aliceJSON)

	alice.send(model.EventSendMessage, model.SendMessagePayload{
		Sender: "alice", Recipient: "dave", CipherText: "Yw==", IV: "aXY=",
	})

	require.Eventually(t, func() bool {
		conv, err := e.history.Conversation(context.Background(), "alice", "dave")
		return err == nil && len(conv) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGateway_RejectsSpoofedSender(t *testing.T) {
	e := newEnv(t)
	_, aliceJSON := newKeyJSON(t)
	alice := e.connect(t, "alice", aliceJSON)

	alice.send(model.EventSendMessage, model.SendMessagePayload{
		Sender: "mallory", Recipient: "bob", CipherText: "Yw==", IV: "aXY=",
	})

	var payload model.ErrorPayload
	require.NoError(t, json.Unmarshal(alice.next(model.EventError).Data, &payload))
	assert.Contains(t, payload.Message, "sender")
}

func TestGateway_ErrorFrames(t *testing.T) {
	e := newEnv(t)
	_, aliceJSON := newKeyJSON(t)
	alice := e.connect(t, "alice", aliceJSON)

	require.NoError(t, alice.ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	alice.next(model.EventError)

	alice.send("join_room", "general")
	alice.next(model.EventError)

	alice.send(model.EventSendMessage, model.SendMessagePayload{Sender: "alice"})
	var payload model.ErrorPayload
	require.NoError(t, json.Unmarshal(alice.next(model.EventError).Data, &payload))
	assert.Contains(t, payload.Message, "invalid argument")
}

func TestGateway_Typing(t *testing.T) {
	e := newEnv(t)
	_, aliceJSON := newKeyJSON(t)
	_, bobJSON := newKeyJSON(t)
	alice := e.connect(t, "alice", aliceJSON)
	alice.users()
	bob := e.connect(t, "bob", bobJSON)
	bob.users()

	alice.send(model.EventTyping, map[string]any{"from": "alice", "to": "bob", "isTyping": 1})

	var notice model.TypingNotice
	require.NoError(t, json.Unmarshal(bob.next(model.EventTyping).Data, &notice))
	assert.Equal(t, model.TypingNotice{From: "alice", IsTyping: true}, notice)
}

func TestGateway_Supersede(t *testing.T) {
	e := newEnv(t)
	_, firstJSON := newKeyJSON(t)
	secondKey, secondJSON := newKeyJSON(t)

	first := e.connect(t, "alice", firstJSON)
	first.users()

	second := e.connect(t, "alice", secondJSON)
	first.next(model.EventSuperseded)

	_ = first.ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, _, err := first.ws.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
			break
		}
	}

	entries := second.users()
	require.Len(t, entries, 1)
	assert.True(t, secondKey.Equal(entries[0].PublicKey))

	// The stale socket going away must not evict the new one.
	require.Eventually(t, func() bool { return e.gateway.Connections() == 1 }, 2*time.Second, 10*time.Millisecond)
	conn, ok := e.presence.Lookup("alice")
	require.True(t, ok)
	assert.NotNil(t, conn)
}

func TestGateway_DisconnectUnregisters(t *testing.T) {
	e := newEnv(t)
	_, aliceJSON := newKeyJSON(t)
	_, bobJSON := newKeyJSON(t)
	alice := e.connect(t, "alice", aliceJSON)
	bob := e.connect(t, "bob", bobJSON)
	alice.users()

	require.NoError(t, bob.ws.Close())

	require.Eventually(t, func() bool {
		_, ok := e.presence.Lookup("bob")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGateway_UsersFramesFollowPresenceOrder(t *testing.T) {
	p := &pausingPresence{}
	e := newEnvWith(t, func(d *presence.Directory) Presence {
		p.Directory = d
		return p
	})

	watcher := e.connect(t, "", "")
	assert.Empty(t, watcher.users())

	alice := &stubConn{id: "alice-conn"}
	p.arm()

	registered := make(chan struct{})
	go func() {
		e.gateway.presence.Register("alice", alice, nil)
		close(registered)
	}()
	waitClosed(t, p.paused, "snapshot after register")

	// The snapshot with alice is taken but not yet delivered when she leaves.
	unregistered := make(chan struct{})
	go func() {
		e.gateway.presence.Unregister(alice)
		close(unregistered)
	}()
	require.Eventually(t, func() bool { return e.presence.Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	close(p.release)
	waitClosed(t, registered, "register")
	waitClosed(t, unregistered, "unregister")

	assert.Equal(t, []string{"alice"}, usernames(watcher.users()))
	assert.Empty(t, watcher.users(), "last users frame matches the directory")
	assert.Empty(t, e.presence.Snapshot())
}

func TestGateway_AnonymousConnectionCannotSend(t *testing.T) {
	e := newEnv(t)
	_, bobJSON := newKeyJSON(t)
	bob := e.connect(t, "bob", bobJSON)
	bob.users()

	watcher := e.connect(t, "", "")
	watcher.users()

	watcher.send(model.EventSendMessage, model.SendMessagePayload{
		Sender: "alice", Recipient: "bob", CipherText: "Yw==", IV: "aXY=",
	})

	var payload model.ErrorPayload
	require.NoError(t, json.Unmarshal(watcher.next(model.EventError).Data, &payload))
	assert.Contains(t, payload.Message, "username")

	conv, err := e.history.Conversation(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, conv)
}
