package handler

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/dtroode/gophchat/internal/api/grpc/chatpb"
	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
)

// DirectoryService defines identity registration and lookup.
type DirectoryService interface {
	Register(ctx context.Context, username string, publicKey *crypto.PublicKey) (model.Identity, error)
	Lookup(ctx context.Context, username string) (model.Identity, error)
}

// Directory handles gRPC endpoints for the identity directory.
type Directory struct {
	chatpb.UnimplementedDirectoryServer
	directoryService DirectoryService
	logger           *logger.Logger
}

// NewDirectory creates a new Directory handler.
func NewDirectory(directoryService DirectoryService, logger *logger.Logger) *Directory {
	return &Directory{
		directoryService: directoryService,
		logger:           logger,
	}
}

// RegisterIdentity creates an identity from a username and its JWK.
func (h *Directory) RegisterIdentity(ctx context.Context, req *chatpb.Identity) (*emptypb.Empty, error) {
	publicKey, err := req.GetPublicKey().Crypto()
	if err != nil {
		h.logger.Debug("Directory handler: malformed register request",
			"username", req.GetUsername(),
			"error", err.Error())
		return nil, handleError(fmt.Errorf("%w: %w", model.ErrInvalidArgument, err))
	}

	h.logger.Debug("Directory handler: processing register request",
		"username", req.GetUsername())

	if _, err := h.directoryService.Register(ctx, req.GetUsername(), publicKey); err != nil {
		return nil, handleError(err)
	}

	return &emptypb.Empty{}, nil
}

// GetIdentity returns the identity registered under a username.
func (h *Directory) GetIdentity(ctx context.Context, req *chatpb.GetIdentityRequest) (*chatpb.Identity, error) {
	identity, err := h.directoryService.Lookup(ctx, req.GetUsername())
	if err != nil {
		return nil, handleError(err)
	}

	publicKey, err := chatpb.NewPublicKey(identity.PublicKey)
	if err != nil {
		h.logger.Error("Directory handler: failed to encode identity",
			"username", identity.Username,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &chatpb.Identity{Username: identity.Username, PublicKey: publicKey}, nil
}
