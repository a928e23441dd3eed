package middleware

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcctx "github.com/dtroode/gophchat/internal/api/grpc/context"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
)

// Logging is a unary interceptor that logs gRPC requests and results.
type Logging struct {
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(contextManager model.ContextManager, logger *logger.Logger) *Logging {
	return &Logging{contextManager: contextManager, logger: logger}
}

// HandleGRPC logs method name, request id, duration and status for each
// unary request, and echoes the request id in the response header.
func (l *Logging) HandleGRPC(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	ctx, requestID := l.contextManager.EnsureRequestID(ctx)
	// Fails outside a real transport stream, e.g. in unit tests.
	_ = grpc.SetHeader(ctx, metadata.Pairs(grpcctx.RequestIDKey, requestID.String()))

	l.logger.Debug("gRPC request started",
		"method", info.FullMethod,
		"request_id", requestID)

	resp, err := handler(ctx, req)

	statusCode := codes.OK
	if err != nil {
		if st, ok := status.FromError(err); ok {
			statusCode = st.Code()
		} else {
			statusCode = codes.Internal
		}
	}

	l.logger.Info("gRPC request completed",
		"method", info.FullMethod,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
		"status", statusCode.String())

	if err != nil && statusCode == codes.Internal {
		l.logger.Error("gRPC request failed",
			"method", info.FullMethod,
			"request_id", requestID,
			"error", err.Error(),
			"status", statusCode.String())
	}

	return resp, err
}
