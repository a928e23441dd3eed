package router

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"

	"github.com/dtroode/gophchat/internal/api/grpc/chatpb"
	"github.com/dtroode/gophchat/internal/api/grpc/handler"
	"github.com/dtroode/gophchat/internal/api/grpc/middleware"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
)

// Router represents a gRPC router for the directory and history services.
// It manages gRPC service registration and middleware configuration.
type Router struct {
	directoryService handler.DirectoryService
	historyService   handler.HistoryService
	contextManager   model.ContextManager
	logger           *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	directoryService handler.DirectoryService,
	historyService handler.HistoryService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		directoryService: directoryService,
		historyService:   historyService,
		contextManager:   contextManager,
		logger:           logger,
	}
}

// Register builds the gRPC server with request logging and panic recovery,
// and registers all services on it.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.contextManager, r.logger)
	recoverer := middleware.NewRecovery(r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(
				recovery.WithRecoveryHandlerContext(recoverer.HandlePanic),
			),
		),
	)
	r.registerDirectoryRoutes(s)
	r.registerHistoryRoutes(s)

	return s
}

func (r *Router) registerDirectoryRoutes(server *grpc.Server) {
	directoryHandler := handler.NewDirectory(r.directoryService, r.logger)
	chatpb.RegisterDirectoryServer(server, directoryHandler)
}

func (r *Router) registerHistoryRoutes(server *grpc.Server) {
	historyHandler := handler.NewHistory(r.historyService, r.logger)
	chatpb.RegisterHistoryServer(server, historyHandler)
}
