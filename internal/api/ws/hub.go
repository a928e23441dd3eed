package ws

import "sync"

// Hub is the set of open connections, registered or not. Presence
// broadcasts go to all of them.
type Hub struct {
	mu    sync.RWMutex
	conns map[*Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*Conn]struct{})}
}

func (h *Hub) Add(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *Hub) Remove(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
}

// Broadcast sends an event to every connection. Closed connections are
// skipped; their read pump removes them.
func (h *Hub) Broadcast(event string, payload any) {
	for _, c := range h.snapshot() {
		_ = c.Send(event, payload)
	}
}

// CloseAll closes every connection, for shutdown.
func (h *Hub) CloseAll(reason string) {
	for _, c := range h.snapshot() {
		c.Close(reason)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) snapshot() []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		out = append(out, c)
	}
	return out
}
