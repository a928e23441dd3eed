package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageStore is the append-only history log.
type MessageStore interface {
	Append(ctx context.Context, envelope Envelope) (Envelope, error)
	// Conversation returns every envelope exchanged between a and b, in
	// either direction, oldest first.
	Conversation(ctx context.Context, a, b string) ([]Envelope, error)
}

// Envelope is an encrypted message as relayed and stored by the server.
// IV and CipherText are standard base64.
type Envelope struct {
	ID         uuid.UUID `json:"id"`
	From       string    `json:"sender"`
	To         string    `json:"recipient"`
	CipherText string    `json:"cipherText"`
	IV         string    `json:"iv"`
	CreatedAt  time.Time `json:"timestamp"`
}

// TypingSignal is an ephemeral typing indicator. It is never persisted.
type TypingSignal struct {
	From     string
	To       string
	IsTyping bool
}

// Message is a decrypted envelope as seen by a client.
type Message struct {
	ID            uuid.UUID
	From          string
	To            string
	Text          string
	CreatedAt     time.Time
	Undecryptable bool
	Err           error
}
