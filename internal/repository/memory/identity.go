// Package memory holds process-local stores for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/dtroode/gophchat/internal/model"
)

var _ model.IdentityStore = (*IdentityRepository)(nil)

type IdentityRepository struct {
	mu         sync.RWMutex
	identities map[string]model.Identity
}

func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{
		identities: make(map[string]model.Identity),
	}
}

func (r *IdentityRepository) GetByUsername(_ context.Context, username string) (model.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.identities[username]
	if !ok {
		return model.Identity{}, model.ErrNotFound
	}
	return identity, nil
}

func (r *IdentityRepository) Create(_ context.Context, identity model.Identity) (model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.identities[identity.Username]; ok {
		return model.Identity{}, model.ErrAlreadyExists
	}
	r.identities[identity.Username] = identity
	return identity, nil
}

func (r *IdentityRepository) Upsert(_ context.Context, identity model.Identity) (model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.identities[identity.Username]; ok {
		identity.CreatedAt = existing.CreatedAt
	}
	r.identities[identity.Username] = identity
	return identity, nil
}
