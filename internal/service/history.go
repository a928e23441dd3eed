package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
)

// History stamps and records envelopes, and serves conversations.
type History struct {
	messageStore model.MessageStore
	logger       *logger.Logger
	now          func() time.Time
}

func NewHistory(messageStore model.MessageStore, logger *logger.Logger) *History {
	return &History{
		messageStore: messageStore,
		logger:       logger,
		now:          time.Now,
	}
}

// Append assigns the envelope its server id and timestamp and stores it.
func (s *History) Append(ctx context.Context, env model.Envelope) (model.Envelope, error) {
	switch {
	case env.From == "" || env.To == "":
		return model.Envelope{}, fmt.Errorf("%w: sender and recipient are required", model.ErrInvalidArgument)
	case env.CipherText == "" || env.IV == "":
		return model.Envelope{}, fmt.Errorf("%w: cipher text and iv are required", model.ErrInvalidArgument)
	}

	env.ID = uuid.New()
	env.CreatedAt = s.now().UTC()

	saved, err := s.messageStore.Append(ctx, env)
	if err != nil {
		s.logger.Error("History service: failed to append message",
			"envelope_id", env.ID,
			"from", env.From,
			"to", env.To,
			"error", err.Error())
		return model.Envelope{}, fmt.Errorf("failed to append message: %w", err)
	}

	return saved, nil
}

// Conversation returns envelopes between a and b in either direction,
// oldest first.
func (s *History) Conversation(ctx context.Context, a, b string) ([]model.Envelope, error) {
	if a == "" || b == "" {
		return nil, fmt.Errorf("%w: both participants are required", model.ErrInvalidArgument)
	}

	envelopes, err := s.messageStore.Conversation(ctx, a, b)
	if err != nil {
		s.logger.Error("History service: failed to load conversation",
			"a", a,
			"b", b,
			"error", err.Error())
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	s.logger.Debug("History service: conversation loaded",
		"a", a,
		"b", b,
		"count", len(envelopes))

	return envelopes, nil
}
