package context

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDKey is the metadata key carrying the request id.
const RequestIDKey = "x-request-id"

// Manager reads and writes request ids in gRPC metadata.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// EnsureRequestID returns the incoming request id, minting one and storing
// it in the incoming metadata if the caller sent none.
func (m *Manager) EnsureRequestID(ctx context.Context) (context.Context, uuid.UUID) {
	if id, ok := m.GetRequestIDFromContext(ctx); ok {
		return ctx, id
	}

	id := uuid.New()
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(map[string]string{RequestIDKey: id.String()})
	} else {
		md = md.Copy()
		md.Set(RequestIDKey, id.String())
	}

	return metadata.NewIncomingContext(ctx, md), id
}

// GetRequestIDFromContext retrieves the request id from incoming metadata.
func (m *Manager) GetRequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return parseFirst(md.Get(RequestIDKey))
}

// GetRequestIDFromResponseMetadata retrieves the id echoed back in a
// response header.
func (m *Manager) GetRequestIDFromResponseMetadata(md metadata.MD) (uuid.UUID, bool) {
	return parseFirst(md.Get(RequestIDKey))
}

// UnaryClientInterceptor attaches a fresh request id to every outgoing call
// that does not carry one already.
func (m *Manager) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if md, ok := metadata.FromOutgoingContext(ctx); !ok || len(md.Get(RequestIDKey)) == 0 {
			ctx = metadata.AppendToOutgoingContext(ctx, RequestIDKey, uuid.NewString())
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func parseFirst(values []string) (uuid.UUID, bool) {
	if len(values) == 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(values[0])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
