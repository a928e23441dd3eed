package session

import (
	"sync"

	"github.com/dtroode/gophchat/internal/crypto"
)

// Entry is a cached session for one peer.
type Entry struct {
	Key crypto.SharedKey
	// PeerKey is the public key the session was derived from.
	PeerKey *crypto.PublicKey
}

// Cache maps peer usernames to derived session keys. One entry per peer;
// Put overwrites. It does no network or crypto work.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Entry)}
}

// Get returns the session for peer, if any.
func (c *Cache) Get(peer string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[peer]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Put stores e for peer, wiping any previous key.
func (c *Cache) Put(peer string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries[peer]; ok {
		old.Key.Wipe()
	}
	c.entries[peer] = &e
}

// Invalidate drops the session for peer. No-op if there is none.
func (c *Cache) Invalidate(peer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries[peer]; ok {
		old.Key.Wipe()
		delete(c.entries, peer)
	}
}

// Len returns the number of cached sessions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
