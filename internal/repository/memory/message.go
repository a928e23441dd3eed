package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dtroode/gophchat/internal/model"
)

var _ model.MessageStore = (*MessageRepository)(nil)

type MessageRepository struct {
	mu       sync.RWMutex
	messages []model.Envelope
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

func (r *MessageRepository) Append(_ context.Context, env model.Envelope) (model.Envelope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, env)
	return env, nil
}

func (r *MessageRepository) Conversation(_ context.Context, a, b string) ([]model.Envelope, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Envelope, 0)
	for _, env := range r.messages {
		if (env.From == a && env.To == b) || (env.From == b && env.To == a) {
			out = append(out, env)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
