package handler

import (
	"context"

	"github.com/dtroode/gophchat/internal/api/grpc/chatpb"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
)

// HistoryService defines conversation retrieval.
type HistoryService interface {
	Conversation(ctx context.Context, a, b string) ([]model.Envelope, error)
}

// History handles gRPC endpoints for the message history.
type History struct {
	chatpb.UnimplementedHistoryServer
	historyService HistoryService
	logger         *logger.Logger
}

// NewHistory creates a new History handler.
func NewHistory(historyService HistoryService, logger *logger.Logger) *History {
	return &History{
		historyService: historyService,
		logger:         logger,
	}
}

// GetHistory returns the conversation between user_id1 and user_id2, oldest first.
func (h *History) GetHistory(ctx context.Context, req *chatpb.GetHistoryRequest) (*chatpb.GetHistoryResponse, error) {
	envelopes, err := h.historyService.Conversation(ctx, req.GetUserId1(), req.GetUserId2())
	if err != nil {
		return nil, handleError(err)
	}

	h.logger.Debug("History handler: returning conversation",
		"count", len(envelopes))

	out := &chatpb.GetHistoryResponse{Envelopes: make([]*chatpb.Envelope, 0, len(envelopes))}
	for _, env := range envelopes {
		out.Envelopes = append(out.Envelopes, chatpb.NewEnvelope(env))
	}
	return out, nil
}
