package model

import (
	"context"

	"github.com/google/uuid"
)

// ContextManager carries a per-call request id through gRPC metadata so
// client and server log lines can be correlated.
type ContextManager interface {
	EnsureRequestID(ctx context.Context) (context.Context, uuid.UUID)
	GetRequestIDFromContext(ctx context.Context) (uuid.UUID, bool)
}
