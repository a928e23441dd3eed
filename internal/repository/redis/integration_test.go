//go:build integration

package redis_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/model"
	repo "github.com/dtroode/gophchat/internal/repository/redis"
)

var addr string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(time.Minute),
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
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		panic(err)
	}
	addr = fmt.Sprintf("%s:%s", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newClient(t *testing.T) *goredis.Client {
	t.Helper()
	rdb, err := repo.NewClient(context.Background(), addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func newKey(t *testing.T) *crypto.PublicKey {
	t.Helper()
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	return priv.PublicKey()
}

func TestIdentityRepository(t *testing.T) {
	ctx := context.Background()
	ir := repo.NewIdentityRepository(newClient(t))
	now := time.Now().UTC()
	first := newKey(t)

	_, err := ir.Create(ctx, model.Identity{Username: "alice", PublicKey: first, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	_, err = ir.Create(ctx, model.Identity{Username: "alice", PublicKey: newKey(t), CreatedAt: now, UpdatedAt: now})
	require.ErrorIs(t, err, model.ErrAlreadyExists)

	got, err := ir.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, first.Equal(got.PublicKey))
	assert.True(t, now.Equal(got.CreatedAt))

	rotated := newKey(t)
	upserted, err := ir.Upsert(ctx, model.Identity{Username: "alice", PublicKey: rotated, CreatedAt: now.Add(time.Hour), UpdatedAt: now.Add(time.Hour)})
	require.NoError(t, err)
	assert.True(t, rotated.Equal(upserted.PublicKey))
	assert.True(t, now.Equal(upserted.CreatedAt), "upsert keeps creation time")

	_, err = ir.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestIdentityRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	ir := repo.NewIdentityRepository(newClient(t))

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < workers; i++ {
		key := newKey(t)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ir.Create(ctx, model.Identity{Username: "race", PublicKey: key, CreatedAt: time.Now()})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, model.ErrAlreadyExists)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}
