// Package objectlog keeps the message history as one JSON object per
// envelope in an object store. Keys group each conversation under a
// common prefix and sort by time within it.
package objectlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/dtroode/gophchat/internal/model"
)

const rootPrefix = "history/"

var _ model.MessageStore = (*MessageRepository)(nil)

type MessageRepository struct {
	storage model.ObjectStorage
}

func NewMessageRepository(storage model.ObjectStorage) *MessageRepository {
	return &MessageRepository{
		storage: storage,
	}
}

func (r *MessageRepository) Append(ctx context.Context, env model.Envelope) (model.Envelope, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return model.Envelope{}, fmt.Errorf("failed to encode message: %w", err)
	}

	key := conversationPrefix(env.From, env.To) +
		fmt.Sprintf("%020d-%s.json", env.CreatedAt.UnixNano(), env.ID)

	if err := r.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data))); err != nil {
		return model.Envelope{}, fmt.Errorf("failed to append message: %w", err)
	}

	return env, nil
}

func (r *MessageRepository) Conversation(ctx context.Context, a, b string) ([]model.Envelope, error) {
	keys, err := r.storage.List(ctx, conversationPrefix(a, b))
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}

	envelopes := make([]model.Envelope, 0, len(keys))
	for _, key := range keys {
		env, err := r.load(ctx, key)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, env)
	}

	sort.SliceStable(envelopes, func(i, j int) bool {
		return envelopes[i].CreatedAt.Before(envelopes[j].CreatedAt)
	})

	return envelopes, nil
}

func (r *MessageRepository) load(ctx context.Context, key string) (model.Envelope, error) {
	rc, err := r.storage.Download(ctx, key)
	if err != nil {
		return model.Envelope{}, fmt.Errorf("failed to download message %s: %w", key, err)
	}
	defer rc.Close()

	var env model.Envelope
	if err := json.NewDecoder(rc).Decode(&env); err != nil {
		return model.Envelope{}, fmt.Errorf("failed to decode message %s: %w", key, err)
	}
	return env, nil
}

// conversationPrefix is symmetric in a and b.
func conversationPrefix(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return rootPrefix + url.PathEscape(a) + "/" + url.PathEscape(b) + "/"
}
