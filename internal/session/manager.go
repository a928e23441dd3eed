package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
)

// DefaultResolveTimeout bounds each directory lookup.
const DefaultResolveTimeout = 5 * time.Second

// Resolver fetches a peer's current public key from the directory. It must
// not cache.
type Resolver interface {
	ResolvePublicKey(ctx context.Context, username string) (*crypto.PublicKey, error)
}

// LocalIdentity is the key pair of the user this manager acts for.
type LocalIdentity interface {
	Username() string
	// WithPrivateKey calls fn with the private key; the key must not be
	// retained after fn returns.
	WithPrivateKey(fn func(*crypto.PrivateKey) error) error
}

// State is the client-observable session state for one peer.
type State int

const (
	StateNoSession State = iota
	StateActive
	StateRepairing
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateRepairing:
		return "repairing"
	default:
		return "no_session"
	}
}

// Manager drives the pairwise session protocol for one local identity:
// derive on first use, and on a decrypt failure re-fetch the peer key,
// re-derive and retry exactly once.
type Manager struct {
	local    LocalIdentity
	resolver Resolver
	engine   *crypto.Engine
	cache    *Cache
	logger   *logger.Logger
	timeout  time.Duration

	flight singleflight.Group

	mu     sync.Mutex
	states map[string]State
}

// Option configures a Manager.
type Option func(*Manager)

// WithResolveTimeout overrides DefaultResolveTimeout.
func WithResolveTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewManager creates a Manager.
func NewManager(
	local LocalIdentity,
	resolver Resolver,
	engine *crypto.Engine,
	cache *Cache,
	logger *logger.Logger,
	opts ...Option,
) *Manager {
	m := &Manager{
		local:    local,
		resolver: resolver,
		engine:   engine,
		cache:    cache,
		logger:   logger,
		timeout:  DefaultResolveTimeout,
		states:   make(map[string]State),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Seal encrypts plaintext for peer. There is no retry: if no session exists
// and the peer cannot be resolved the send fails with ErrPeerUnresolvable.
func (m *Manager) Seal(ctx context.Context, peer, plaintext string) (model.Envelope, error) {
	entry, err := m.session(ctx, peer)
	if err != nil {
		return model.Envelope{}, fmt.Errorf("%w: %s: %w", model.ErrPeerUnresolvable, peer, err)
	}

	sealed, err := m.engine.Encrypt(plaintext, entry.Key)
	if err != nil {
		return model.Envelope{}, fmt.Errorf("failed to encrypt message for %s: %w", peer, err)
	}

	return model.Envelope{
		From:       m.local.Username(),
		To:         peer,
		CipherText: sealed.CipherText,
		IV:         sealed.IV,
	}, nil
}

// Open decrypts an envelope exchanged with a peer. Envelopes the local user
// sent (e.g. from history) are opened with the recipient's session.
//
// On an authentication failure the session is treated as stale: the peer key
// is re-fetched, the session re-derived and decryption retried once. A second
// failure returns ErrDecryptFailure; the session entry is kept.
func (m *Manager) Open(ctx context.Context, env model.Envelope) (string, error) {
	peer := env.From
	if peer == m.local.Username() {
		peer = env.To
	}

	entry, err := m.session(ctx, peer)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", model.ErrPeerUnresolvable, peer, err)
	}

	plaintext, err := m.engine.Decrypt(env.IV, env.CipherText, entry.Key)
	if err == nil {
		return plaintext, nil
	}

	m.logger.Warn("Session manager: decryption failed, repairing session",
		"peer", peer,
		"envelope_id", env.ID,
		"error", err.Error())
	m.setState(peer, StateRepairing)
	defer m.setState(peer, StateActive)

	repaired, err := m.repair(ctx, peer, entry.Key)
	if err != nil {
		m.logger.Error("Session manager: session repair failed",
			"peer", peer,
			"error", err.Error())
		return "", fmt.Errorf("%w: repair failed: %w", model.ErrDecryptFailure, err)
	}

	plaintext, err = m.engine.Decrypt(env.IV, env.CipherText, repaired.Key)
	if err != nil {
		m.logger.Error("Session manager: message undecryptable after repair",
			"peer", peer,
			"envelope_id", env.ID)
		return "", fmt.Errorf("%w: %w", model.ErrDecryptFailure, err)
	}

	m.logger.Info("Session manager: session repaired",
		"peer", peer,
		"peer_key", repaired.PeerKey.Fingerprint())
	return plaintext, nil
}

// Forget drops the session for peer; the next Seal or Open re-derives it.
func (m *Manager) Forget(peer string) {
	m.cache.Invalidate(peer)
	m.mu.Lock()
	delete(m.states, peer)
	m.mu.Unlock()
}

// PeerKey returns the public key the current session with peer was derived
// from.
func (m *Manager) PeerKey(peer string) (*crypto.PublicKey, bool) {
	e, ok := m.cache.Get(peer)
	if !ok {
		return nil, false
	}
	return e.PeerKey, true
}

// State returns the session state for peer.
func (m *Manager) State(peer string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[peer]
}

func (m *Manager) setState(peer string, s State) {
	m.mu.Lock()
	m.states[peer] = s
	m.mu.Unlock()
}

// session returns the cached session for peer, deriving it on a miss.
// Concurrent misses for the same peer share one derivation.
func (m *Manager) session(ctx context.Context, peer string) (Entry, error) {
	if e, ok := m.cache.Get(peer); ok {
		return e, nil
	}

	return m.do(ctx, "derive:"+peer, func(ctx context.Context) (Entry, error) {
		if e, ok := m.cache.Get(peer); ok {
			return e, nil
		}
		e, err := m.derive(ctx, peer)
		if err != nil {
			return Entry{}, err
		}
		m.cache.Put(peer, e)
		m.setState(peer, StateActive)
		m.logger.Debug("Session manager: session established",
			"peer", peer,
			"peer_key", e.PeerKey.Fingerprint())
		return e, nil
	})
}

// repair replaces a session whose key failed to decrypt. If another caller
// already replaced stale, the newer session is reused without a lookup.
func (m *Manager) repair(ctx context.Context, peer string, stale crypto.SharedKey) (Entry, error) {
	return m.do(ctx, "repair:"+peer, func(ctx context.Context) (Entry, error) {
		if e, ok := m.cache.Get(peer); ok && e.Key != stale {
			return e, nil
		}
		e, err := m.derive(ctx, peer)
		if err != nil {
			return Entry{}, err
		}
		m.cache.Put(peer, e)
		return e, nil
	})
}

func (m *Manager) derive(ctx context.Context, peer string) (Entry, error) {
	pub, err := m.resolver.ResolvePublicKey(ctx, peer)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to resolve public key: %w", err)
	}
	if pub == nil {
		return Entry{}, fmt.Errorf("directory returned no key: %w", crypto.ErrInvalidKey)
	}

	var key crypto.SharedKey
	err = m.local.WithPrivateKey(func(priv *crypto.PrivateKey) error {
		var derr error
		key, derr = m.engine.DeriveSharedKey(priv, pub)
		return derr
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to derive session key: %w", err)
	}
	return Entry{Key: key, PeerKey: pub}, nil
}

// do runs fn once per key among concurrent callers. fn gets a context that
// survives the first caller's cancellation but is bounded by the resolve
// timeout; each caller still returns early if its own ctx ends.
func (m *Manager) do(ctx context.Context, key string, fn func(context.Context) (Entry, error)) (Entry, error) {
	ch := m.flight.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()
		return fn(fctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Entry{}, res.Err
		}
		return res.Val.(Entry), nil
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	}
}

// IsUndecryptable reports whether err is a terminal per-message failure.
func IsUndecryptable(err error) bool {
	return errors.Is(err, model.ErrDecryptFailure)
}
