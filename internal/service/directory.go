package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/logger"
	"github.com/dtroode/gophchat/internal/model"
)

// MaxUsernameLength bounds identity names in bytes.
const MaxUsernameLength = 64

// Directory registers identities and resolves their public keys.
type Directory struct {
	identityStore model.IdentityStore
	logger        *logger.Logger
	now           func() time.Time
}

func NewDirectory(identityStore model.IdentityStore, logger *logger.Logger) *Directory {
	return &Directory{
		identityStore: identityStore,
		logger:        logger,
		now:           time.Now,
	}
}

// Register creates a new identity. It fails with model.ErrAlreadyExists if
// the username is taken.
func (s *Directory) Register(ctx context.Context, username string, publicKey *crypto.PublicKey) (model.Identity, error) {
	s.logger.Debug("Directory service: registering identity",
		"username", username)

	if err := validateIdentity(username, publicKey); err != nil {
		return model.Identity{}, err
	}

	now := s.now().UTC()
	identity, err := s.identityStore.Create(ctx, model.Identity{
		Username:  username,
		PublicKey: publicKey,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, model.ErrAlreadyExists) {
		s.logger.Info("Directory service: identity already exists",
			"username", username)
		return model.Identity{}, fmt.Errorf("identity %q: %w", username, model.ErrAlreadyExists)
	}
	if err != nil {
		s.logger.Error("Directory service: failed to create identity",
			"username", username,
			"error", err.Error())
		return model.Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}

	s.logger.Info("Directory service: identity registered",
		"username", username,
		"fingerprint", publicKey.Fingerprint())

	return identity, nil
}

// Announce records the key a connecting client presents, creating the
// identity if needed, so key rotations reach the directory.
func (s *Directory) Announce(ctx context.Context, username string, publicKey *crypto.PublicKey) (model.Identity, error) {
	if err := validateIdentity(username, publicKey); err != nil {
		return model.Identity{}, err
	}

	now := s.now().UTC()
	identity, err := s.identityStore.Upsert(ctx, model.Identity{
		Username:  username,
		PublicKey: publicKey,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error("Directory service: failed to upsert identity",
			"username", username,
			"error", err.Error())
		return model.Identity{}, fmt.Errorf("failed to upsert identity: %w", err)
	}

	s.logger.Debug("Directory service: identity announced",
		"username", username,
		"fingerprint", publicKey.Fingerprint())

	return identity, nil
}

// Lookup returns the identity for username or model.ErrNotFound.
func (s *Directory) Lookup(ctx context.Context, username string) (model.Identity, error) {
	if username == "" {
		return model.Identity{}, fmt.Errorf("%w: username is required", model.ErrInvalidArgument)
	}

	identity, err := s.identityStore.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return model.Identity{}, fmt.Errorf("identity %q: %w", username, model.ErrNotFound)
	}
	if err != nil {
		s.logger.Error("Directory service: failed to get identity",
			"username", username,
			"error", err.Error())
		return model.Identity{}, fmt.Errorf("failed to get identity by username: %w", err)
	}

	return identity, nil
}

func validateIdentity(username string, publicKey *crypto.PublicKey) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if publicKey == nil {
		return fmt.Errorf("%w: public key is required", model.ErrInvalidArgument)
	}
	return nil
}

// ValidateUsername rejects empty, oversized or non-printable names.
func ValidateUsername(username string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return fmt.Errorf("%w: username is required", model.ErrInvalidArgument)
	case len(username) > MaxUsernameLength:
		return fmt.Errorf("%w: username longer than %d bytes", model.ErrInvalidArgument, MaxUsernameLength)
	case strings.IndexFunc(username, func(r rune) bool { return !unicode.IsPrint(r) }) >= 0:
		return fmt.Errorf("%w: username contains non-printable characters", model.ErrInvalidArgument)
	}
	return nil
}
