package presence

import (
	"sort"
	"sync"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
)

type record struct {
	conn      model.Connection
	publicKey *crypto.PublicKey
}

// Directory tracks which identities are online and on which connection.
// There is at most one record per username; the last connection to register
// wins. All mutations happen under a single lock.
type Directory struct {
	mu      sync.Mutex
	records map[string]record
	byConn  map[string]string

	listenersMu sync.RWMutex
	listeners   []func()

	logger *logger.Logger
}

// NewDirectory creates an empty Directory.
func NewDirectory(logger *logger.Logger) *Directory {
	return &Directory{
		records: make(map[string]record),
		byConn:  make(map[string]string),
		logger:  logger,
	}
}

// Subscribe registers fn to be called after every presence change. fn runs
// outside the directory lock and should read a fresh Snapshot.
func (d *Directory) Subscribe(fn func()) {
	d.listenersMu.Lock()
	defer d.listenersMu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Register binds username to conn, replacing any previous connection. A
// replaced connection is superseded (notified and closed). publicKey may be
// nil when the handshake carried no usable key.
func (d *Directory) Register(username string, conn model.Connection, publicKey *crypto.PublicKey) {
	d.mu.Lock()
	prev, hadPrev := d.records[username]
	if hadPrev {
		delete(d.byConn, prev.conn.ID())
	}
	if oldName, ok := d.byConn[conn.ID()]; ok && oldName != username {
		delete(d.records, oldName)
	}
	d.records[username] = record{conn: conn, publicKey: publicKey}
	d.byConn[conn.ID()] = username
	d.mu.Unlock()

	if hadPrev && prev.conn.ID() != conn.ID() {
		d.logger.Info("Presence: connection superseded",
			"username", username,
			"old_conn_id", prev.conn.ID(),
			"new_conn_id", conn.ID())
		prev.conn.Supersede()
	}

	d.logger.Debug("Presence: registered",
		"username", username,
		"conn_id", conn.ID(),
		"has_key", publicKey != nil)
	d.notify()
}

// Unregister removes the record held by conn. If the username has since been
// taken over by a newer connection nothing happens and false is returned.
func (d *Directory) Unregister(conn model.Connection) bool {
	d.mu.Lock()
	username, ok := d.byConn[conn.ID()]
	if ok {
		delete(d.byConn, conn.ID())
		if r, exists := d.records[username]; exists && r.conn.ID() == conn.ID() {
			delete(d.records, username)
		} else {
			ok = false
		}
	}
	d.mu.Unlock()

	if !ok {
		d.logger.Debug("Presence: unregister ignored, connection not current",
			"conn_id", conn.ID())
		return false
	}

	d.logger.Debug("Presence: unregistered",
		"username", username,
		"conn_id", conn.ID())
	d.notify()
	return true
}

// Lookup returns the live connection for username.
func (d *Directory) Lookup(username string) (model.Connection, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.records[username]
	if !ok {
		return nil, false
	}
	return r.conn, true
}

// Snapshot returns every online identity, sorted by username.
func (d *Directory) Snapshot() []model.PresenceEntry {
	d.mu.Lock()
	out := make([]model.PresenceEntry, 0, len(d.records))
	for username, r := range d.records {
		out = append(out, model.PresenceEntry{Username: username, PublicKey: r.publicKey})
	}
	d.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// Len returns the number of online identities.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.records)
}

func (d *Directory) notify() {
	d.listenersMu.RLock()
	listeners := append([]func(){}, d.listeners...)
	d.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
