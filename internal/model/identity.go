package model

import (
	"context"
	"time"

	"github.com/dtroode/gophchat/internal/crypto"
)

// IdentityStore is the key-value directory of registered identities.
type IdentityStore interface {
	// Create registers a new identity. Returns ErrAlreadyExists if taken.
	Create(ctx context.Context, identity Identity) (Identity, error)
	// Upsert stores the identity's current key, creating it if needed.
	Upsert(ctx context.Context, identity Identity) (Identity, error)
	// GetByUsername returns ErrNotFound for unknown identities.
	GetByUsername(ctx context.Context, username string) (Identity, error)
}

// Identity is a username bound to its current public key.
type Identity struct {
	Username  string
	PublicKey *crypto.PublicKey
	CreatedAt time.Time
	UpdatedAt time.Time
}
