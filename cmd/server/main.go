package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"google.golang.org/grpc/reflection"

	grpcctx "github.com/dtroode/gophchat/internal/api/grpc/context"
	"github.com/dtroode/gophchat/internal/api/grpc/router"
	grpcServer "github.com/dtroode/gophchat/internal/api/grpc/server"
	"github.com/dtroode/gophchat/internal/api/rest"
	"github.com/dtroode/gophchat/internal/api/ws"
	"github.com/dtroode/gophchat/internal/config"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
	"github.com/dtroode/gophchat/internal/presence"
	"github.com/dtroode/gophchat/internal/relay"
	"github.com/dtroode/gophchat/internal/repository/memory"
	"github.com/dtroode/gophchat/internal/repository/objectlog"
	"github.com/dtroode/gophchat/internal/repository/postgres"
	"github.com/dtroode/gophchat/internal/repository/redis"
	"github.com/dtroode/gophchat/internal/server"
	"github.com/dtroode/gophchat/internal/service"
	storage "github.com/dtroode/gophchat/internal/storage/minio"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer stores.close()

	directoryService := service.NewDirectory(stores.identities, logger)
	historyService := service.NewHistory(stores.messages, logger)

	online := presence.NewDirectory(logger)
	relayRouter := relay.NewRouter(online, historyService, logger)
	gateway := ws.NewGateway(online, relayRouter, directoryService, logger)

	restHandler := rest.NewHandler(directoryService, historyService, stores.checks, logger)
	httpServer := rest.NewHTTPServer(
		rest.NewRouter(restHandler, gateway, logger),
		fmt.Sprintf(":%s", cfg.HTTP.Port),
		gateway.Close,
	)

	grpcServer := registerGRPCServer(logger, directoryService, historyService, grpcctx.NewManager(), fmt.Sprintf(":%s", cfg.GRPC.Port))

	servers := []struct {
		server model.Server
		sl     model.SecurityLayer
	}{
		{grpcServer, server.SecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)},
		{httpServer, server.SecurityLayer(cfg.HTTP.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)},
	}

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s.server, s.sl)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.server.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.server.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerGRPCServer(
	logger *logger.Logger,
	directoryService *service.Directory,
	historyService *service.History,
	ctxMgr model.ContextManager,
	addr string,
) *grpcServer.GRPCServer {
	r := router.New(directoryService, historyService, ctxMgr, logger)
	s := r.Register()

	reflection.Register(s)

	return grpcServer.NewGRPCServer(s, addr)
}

type stores struct {
	identities model.IdentityStore
	messages   model.MessageStore
	checks     []rest.HealthCheck
	closers    []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores connects the configured directory and history backends. A
// Postgres connection is shared when both use it.
func openStores(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*stores, error) {
	s := &stores{}

	var db *postgres.Connection
	pg := func() (*postgres.Connection, error) {
		if db != nil {
			return db, nil
		}
		conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		db = conn
		s.closers = append(s.closers, func() { _ = conn.Close() })
		s.checks = append(s.checks, rest.HealthCheck{Name: "postgres", Ping: conn.Ping})
		return conn, nil
	}

	switch cfg.DirectoryBackend {
	case config.BackendPostgres:
		conn, err := pg()
		if err != nil {
			s.close()
			return nil, err
		}
		s.identities = postgres.NewIdentityRepository(conn)
	case config.BackendRedis:
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.closers = append(s.closers, func() { _ = rdb.Close() })
		s.checks = append(s.checks, rest.HealthCheck{Name: "redis", Ping: pinger(rdb)})
		s.identities = redis.NewIdentityRepository(rdb)
	default:
		s.identities = memory.NewIdentityRepository()
	}

	switch cfg.HistoryBackend {
	case config.BackendPostgres:
		conn, err := pg()
		if err != nil {
			s.close()
			return nil, err
		}
		s.messages = postgres.NewMessageRepository(conn)
	case config.BackendMinio:
		client, err := storage.Connect(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to initialize storage client: %w", err)
		}
		s.checks = append(s.checks, rest.HealthCheck{Name: "minio", Ping: client.Ping})
		s.messages = objectlog.NewMessageRepository(client)
	default:
		s.messages = memory.NewMessageRepository()
	}

	logger.Info("Storage initialized",
		"directory_backend", cfg.DirectoryBackend,
		"history_backend", cfg.HistoryBackend)

	return s, nil
}

func pinger(rdb *goredis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
