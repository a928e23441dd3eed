//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/model"
	repo "github.com/dtroode/gophchat/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "gophchat_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/gophchat_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newKey(t *testing.T) *crypto.PublicKey {
	t.Helper()
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	return priv.PublicKey()
}

func TestIdentityRepository(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ir := repo.NewIdentityRepository(conn)
	now := time.Now().UTC()
	first := newKey(t)

	saved, err := ir.Create(ctx, model.Identity{Username: "alice", PublicKey: first, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, "alice", saved.Username)
	assert.True(t, first.Equal(saved.PublicKey))

	_, err = ir.Create(ctx, model.Identity{Username: "alice", PublicKey: newKey(t), CreatedAt: now, UpdatedAt: now})
	require.ErrorIs(t, err, model.ErrAlreadyExists)

	got, err := ir.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, first.Equal(got.PublicKey), "failed create must not replace the key")

	rotated := newKey(t)
	later := now.Add(time.Minute)
	upserted, err := ir.Upsert(ctx, model.Identity{Username: "alice", PublicKey: rotated, CreatedAt: later, UpdatedAt: later})
	require.NoError(t, err)
	assert.True(t, rotated.Equal(upserted.PublicKey))
	assert.WithinDuration(t, now, upserted.CreatedAt, time.Millisecond, "upsert keeps creation time")

	_, err = ir.Upsert(ctx, model.Identity{Username: "bob", PublicKey: newKey(t), CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	_, err = ir.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestMessageRepository(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mr := repo.NewMessageRepository(conn)
	base := time.Now().UTC().Truncate(time.Millisecond)

	sent := []model.Envelope{
		{ID: uuid.New(), From: "carol", To: "dave", CipherText: "c1", IV: "i1", CreatedAt: base},
		{ID: uuid.New(), From: "dave", To: "carol", CipherText: "c2", IV: "i2", CreatedAt: base.Add(time.Second)},
		{ID: uuid.New(), From: "carol", To: "erin", CipherText: "c3", IV: "i3", CreatedAt: base.Add(2 * time.Second)},
		{ID: uuid.New(), From: "carol", To: "dave", CipherText: "c4", IV: "i4", CreatedAt: base.Add(3 * time.Second)},
	}
	for _, env := range sent {
		saved, err := mr.Append(ctx, env)
		require.NoError(t, err)
		require.Equal(t, env.ID, saved.ID)
	}

	conv, err := mr.Conversation(ctx, "dave", "carol")
	require.NoError(t, err)
	require.Len(t, conv, 3)
	assert.Equal(t, []string{"c1", "c2", "c4"}, []string{conv[0].CipherText, conv[1].CipherText, conv[2].CipherText})

	empty, err := mr.Conversation(ctx, "dave", "erin")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
