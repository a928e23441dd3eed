package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dtroode/gophchat/internal/client"
	"github.com/dtroode/gophchat/internal/client/identity"
	"github.com/dtroode/gophchat/internal/config"
	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/session"
)

// app is what every subcommand needs once flags and environment are merged.
type app struct {
	cfg    *config.Client
	logger *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var flags config.Client

	root := &cobra.Command{
		Use:           "chat",
		Short:         "End-to-end encrypted chat client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewClientConfig()
			if err != nil {
				return err
			}
			// Flags win over the environment.
			pf := cmd.Flags()
			if pf.Changed("server") {
				cfg.ServerURL = flags.ServerURL
			}
			if pf.Changed("grpc") {
				cfg.GRPCAddr = flags.GRPCAddr
			}
			if pf.Changed("grpc-tls") {
				cfg.GRPCTLS = flags.GRPCTLS
			}
			if pf.Changed("username") {
				cfg.Username = flags.Username
			}
			if pf.Changed("key-file") {
				cfg.KeyFile = flags.KeyFile
			}
			if pf.Changed("kdf") {
				cfg.KDF = flags.KDF
			}
			if pf.Changed("log-level") {
				cfg.LogLevel = flags.LogLevel
			}

			a.cfg = cfg
			a.logger = logger.NewWithWriter(os.Stderr, cfg.LogLevel)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.ServerURL, "server", "", "websocket URL (env CHAT_SERVER_URL)")
	pf.StringVar(&flags.GRPCAddr, "grpc", "", "directory gRPC address (env CHAT_GRPC_ADDR)")
	pf.BoolVar(&flags.GRPCTLS, "grpc-tls", false, "use TLS for gRPC (env CHAT_GRPC_TLS)")
	pf.StringVarP(&flags.Username, "username", "u", "", "your username (env CHAT_USERNAME)")
	pf.StringVar(&flags.KeyFile, "key-file", "", "identity key file (env CHAT_KEY_FILE)")
	pf.StringVar(&flags.KDF, "kdf", "", "session key derivation: hkdf or webcrypto (env CHAT_KDF)")
	pf.IntVar(&flags.LogLevel, "log-level", 0, "slog level, 4 for warnings only (env CHAT_LOG_LEVEL)")

	root.AddCommand(newRegisterCmd(a), newHistoryCmd(a), newChatCmd(a))
	return root
}

func (a *app) identity() (*identity.Identity, bool, error) {
	id, created, err := identity.LoadOrGenerate(a.cfg.KeyFile, a.cfg.Username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load identity: %w", err)
	}
	return id, created, nil
}

func (a *app) dialAPI() (*client.APIClient, error) {
	return client.Dial(a.cfg.GRPCAddr, a.cfg.GRPCTLS, a.logger)
}

func (a *app) sessions(id *identity.Identity, api *client.APIClient) (*session.Manager, error) {
	engine, err := crypto.NewEngine(crypto.KDF(a.cfg.KDF))
	if err != nil {
		return nil, err
	}
	return session.NewManager(id, api, engine, session.NewCache(), a.logger,
		session.WithResolveTimeout(a.cfg.ResolveTimeout)), nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
