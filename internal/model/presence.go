package model

import "github.com/dtroode/gophchat/internal/crypto"

// Connection is a live client connection the server can push events to.
type Connection interface {
	// ID uniquely identifies the connection for its lifetime.
	ID() string
	// Send queues an outbound event. It fails with ErrConnectionClosed once
	// the connection is gone; it must not block.
	Send(event string, payload any) error
	// Supersede tells the client another connection took over its identity
	// and closes this one.
	Supersede()
}

// PresenceEntry is one identity in a presence snapshot.
type PresenceEntry struct {
	Username  string            `json:"username"`
	PublicKey *crypto.PublicKey `json:"publicKey"`
}
