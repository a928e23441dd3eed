package client

import (
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	grpcctx "github.com/dtroode/gophchat/internal/api/grpc/context"
	grpcrouter "github.com/dtroode/gophchat/internal/api/grpc/router"
	"github.com/dtroode/gophchat/internal/api/rest"
	"github.com/dtroode/gophchat/internal/api/ws"
	"github.com/dtroode/gophchat/internal/client/identity"
	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/model"
	"github.com/dtroode/gophchat/internal/presence"
	"github.com/dtroode/gophchat/internal/relay"
	"github.com/dtroode/gophchat/internal/repository/memory"
	"github.com/dtroode/gophchat/internal/service"
	"github.com/dtroode/gophchat/internal/session"
	"github.com/dtroode/gophchat/internal/testutil"
)

type stack struct {
	wsURL string
	api   *APIClient
}

// startStack runs the whole server in-process: gRPC over bufconn and the
// websocket gateway over httptest.
func startStack(t *testing.T) *stack {
	t.Helper()

	lg := testutil.MakeNoopLogger()
	directory := service.NewDirectory(memory.NewIdentityRepository(), lg)
	history := service.NewHistory(memory.NewMessageRepository(), lg)
	online := presence.NewDirectory(lg)
	gateway := ws.NewGateway(online, relay.NewRouter(online, history, lg), directory, lg)

	httpSrv := httptest.NewServer(rest.NewRouter(rest.NewHandler(directory, history, nil, lg), gateway, lg))
	t.Cleanup(func() {
		gateway.Close()
		httpSrv.Close()
	})

	grpcSrv := grpcrouter.New(directory, history, grpcctx.NewManager(), lg).Register()
	lis := bufconn.Listen(1 << 20)
	go func() { _ = grpcSrv.Serve(lis) }()
	t.Cleanup(grpcSrv.Stop)

	api, err := Dial("passthrough:///bufnet", false, lg,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = api.Close() })

	return &stack{
		wsURL: "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws",
		api:   api,
	}
}

type participant struct {
	id        *identity.Identity
	sessions  *session.Manager
	socket    *Socket
	messenger *Messenger
	done      chan error
}

func (s *stack) join(t *testing.T, id *identity.Identity) *participant {
	t.Helper()

	lg := testutil.MakeNoopLogger()
	socket, err := DialSocket(context.Background(), s.wsURL, id.Username(), id.PublicKey(), lg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = socket.Close() })

	engine, err := crypto.NewEngine(crypto.KDFHKDF)
	require.NoError(t, err)
	sessions := session.NewManager(id, s.api, engine, session.NewCache(), lg, session.WithResolveTimeout(time.Second))

	p := &participant{
		id:        id,
		sessions:  sessions,
		socket:    socket,
		messenger: NewMessenger(id.Username(), sessions, s.api, socket, time.Minute, lg),
		done:      make(chan error, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { p.done <- p.messenger.Run(ctx) }()
	return p
}

// waitPresence drains snapshots until match accepts one.
func (p *participant) waitPresence(t *testing.T, match func([]model.PresenceEntry) bool) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case entries := <-p.messenger.Presence():
			if match(entries) {
				return
			}
		case <-deadline:
			t.Fatal("presence never matched")
		}
	}
}

func (p *participant) receive(t *testing.T) model.Message {
	t.Helper()
	select {
	case msg := <-p.messenger.Messages():
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("no message received")
		return model.Message{}
	}
}

func hasKey(username string, key *crypto.PublicKey) func([]model.PresenceEntry) bool {
	return func(entries []model.PresenceEntry) bool {
		for _, e := range entries {
			if e.Username == username && key.Equal(e.PublicKey) {
				return true
			}
		}
		return false
	}
}

func newIdentity(t *testing.T, username string) *identity.Identity {
	t.Helper()
	id, err := identity.Generate(username)
	require.NoError(t, err)
	return id
}

func TestEndToEnd_AliceAndBob(t *testing.T) {
	t.Parallel()

	s := startStack(t)
	ctx := context.Background()

	aliceID := newIdentity(t, "alice")
	bobID := newIdentity(t, "bob")
	require.NoError(t, s.api.Register(ctx, "alice", aliceID.PublicKey()))
	require.NoError(t, s.api.Register(ctx, "bob", bobID.PublicKey()))

	alice := s.join(t, aliceID)
	bob := s.join(t, bobID)
	alice.waitPresence(t, hasKey("bob", bobID.PublicKey()))

	_, err := alice.messenger.Send(ctx, "bob", "Hola Bob")
	require.NoError(t, err)
	msg := bob.receive(t)
	require.False(t, msg.Undecryptable, "%v", msg.Err)
	assert.Equal(t, "Hola Bob", msg.Text)
	assert.Equal(t, "alice", msg.From)

	_, err = bob.messenger.Send(ctx, "alice", "Hola Alice")
	require.NoError(t, err)
	msg = alice.receive(t)
	require.False(t, msg.Undecryptable, "%v", msg.Err)
	assert.Equal(t, "Hola Alice", msg.Text)

	conversation, err := alice.messenger.Conversation(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, conversation, 2)
	assert.Equal(t, "Hola Bob", conversation[0].Text)
	assert.Equal(t, "Hola Alice", conversation[1].Text)
	assert.False(t, conversation[0].CreatedAt.IsZero())

	// Typing crosses the relay as well.
	alice.messenger.Typing("bob")
	select {
	case notice := <-bob.messenger.TypingNotices():
		assert.Equal(t, model.TypingNotice{From: "alice", IsTyping: true}, notice)
	case <-time.After(3 * time.Second):
		t.Fatal("no typing notice")
	}
}

func TestEndToEnd_KeyRotation(t *testing.T) {
	t.Parallel()

	s := startStack(t)
	ctx := context.Background()

	aliceID := newIdentity(t, "alice")
	bobID := newIdentity(t, "bob")
	require.NoError(t, s.api.Register(ctx, "alice", aliceID.PublicKey()))
	require.NoError(t, s.api.Register(ctx, "bob", bobID.PublicKey()))

	alice := s.join(t, aliceID)
	oldBob := s.join(t, bobID)
	alice.waitPresence(t, hasKey("bob", bobID.PublicKey()))

	_, err := alice.messenger.Send(ctx, "bob", "before")
	require.NoError(t, err)
	assert.Equal(t, "before", oldBob.receive(t).Text)

	// Bob reconnects with a fresh key pair; the old socket is superseded and
	// the handshake key replaces the directory entry.
	newBobID := newIdentity(t, "bob")
	newBob := s.join(t, newBobID)

	select {
	case err := <-oldBob.done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(3 * time.Second):
		t.Fatal("old connection was not superseded")
	}

	alice.waitPresence(t, hasKey("bob", newBobID.PublicKey()))
	resolved, err := s.api.ResolvePublicKey(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, resolved.Equal(newBobID.PublicKey()))

	_, err = alice.messenger.Send(ctx, "bob", "after")
	require.NoError(t, err)
	msg := newBob.receive(t)
	require.False(t, msg.Undecryptable, "%v", msg.Err)
	assert.Equal(t, "after", msg.Text)
}

func TestEndToEnd_DirectoryErrors(t *testing.T) {
	t.Parallel()

	s := startStack(t)
	ctx := context.Background()

	id := newIdentity(t, "alice")
	require.NoError(t, s.api.Register(ctx, "alice", id.PublicKey()))

	err := s.api.Register(ctx, "alice", id.PublicKey())
	assert.ErrorIs(t, err, model.ErrAlreadyExists)

	err = s.api.Register(ctx, " ", id.PublicKey())
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = s.api.ResolvePublicKey(ctx, "nobody")
	assert.ErrorIs(t, err, model.ErrPeerNotFound)

	envs, err := s.api.History(ctx, "alice", "nobody")
	require.NoError(t, err)
	assert.Empty(t, envs)
}
