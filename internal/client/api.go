// Package client is the chat client: directory and history over gRPC, the
// realtime socket, and the Messenger that encrypts and decrypts through the
// session manager.
package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gophchat/internal/api/grpc/chatpb"
	grpcctx "github.com/dtroode/gophchat/internal/api/grpc/context"
	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
	"github.com/dtroode/gophchat/internal/session"
)

var _ session.Resolver = (*APIClient)(nil)

// APIClient talks to the directory and history gRPC services.
type APIClient struct {
	conn      *grpc.ClientConn
	directory chatpb.DirectoryClient
	history   chatpb.HistoryClient
	logger    *logger.Logger
}

// Dial connects to the gRPC API at addr.
func Dial(addr string, useTLS bool, logger *logger.Logger, opts ...grpc.DialOption) (*APIClient, error) {
	creds := insecure.NewCredentials()
	if useTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithChainUnaryInterceptor(grpcctx.NewManager().UnaryClientInterceptor()),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client: %w", err)
	}

	c := NewAPIClient(conn, logger)
	c.conn = conn
	return c, nil
}

// NewAPIClient wraps an existing connection. Close is a no-op for it.
func NewAPIClient(cc grpc.ClientConnInterface, logger *logger.Logger) *APIClient {
	return &APIClient{
		directory: chatpb.NewDirectoryClient(cc),
		history:   chatpb.NewHistoryClient(cc),
		logger:    logger,
	}
}

// Close closes the connection opened by Dial.
func (c *APIClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// ResolvePublicKey fetches the current key of username from the directory.
// It never caches.
func (c *APIClient) ResolvePublicKey(ctx context.Context, username string) (*crypto.PublicKey, error) {
	resp, err := c.directory.GetIdentity(ctx, &chatpb.GetIdentityRequest{Username: username})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", model.ErrPeerNotFound, username)
		}
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	if resp.GetPublicKey() == nil {
		return nil, fmt.Errorf("%w: directory entry for %s has no key", crypto.ErrInvalidKey, username)
	}
	publicKey, err := resp.GetPublicKey().Crypto()
	if err != nil {
		if errors.Is(err, crypto.ErrInvalidKey) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to decode identity: %w", err)
	}

	c.logger.Debug("API client: resolved public key",
		"username", username,
		"fingerprint", publicKey.Fingerprint())

	return publicKey, nil
}

// Register publishes a new identity.
func (c *APIClient) Register(ctx context.Context, username string, publicKey *crypto.PublicKey) error {
	jwk, err := chatpb.NewPublicKey(publicKey)
	if err != nil {
		return err
	}

	req := &chatpb.Identity{Username: username, PublicKey: jwk}
	if _, err := c.directory.RegisterIdentity(ctx, req); err != nil {
		switch status.Code(err) {
		case codes.AlreadyExists:
			return fmt.Errorf("%w: %s", model.ErrAlreadyExists, username)
		case codes.InvalidArgument:
			return fmt.Errorf("%w: %s", model.ErrInvalidArgument, status.Convert(err).Message())
		}
		return fmt.Errorf("failed to register identity: %w", err)
	}

	return nil
}

// History returns the stored envelopes between a and b, oldest first.
func (c *APIClient) History(ctx context.Context, a, b string) ([]model.Envelope, error) {
	resp, err := c.history.GetHistory(ctx, &chatpb.GetHistoryRequest{UserId1: a, UserId2: b})
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	out := make([]model.Envelope, 0, len(resp.GetEnvelopes()))
	for _, env := range resp.GetEnvelopes() {
		m, err := env.Model()
		if err != nil {
			return nil, fmt.Errorf("failed to decode history: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}
