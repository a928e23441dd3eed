package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/model"
)

var _ model.IdentityStore = (*IdentityRepository)(nil)

type IdentityRepository struct {
	db *Connection
}

func NewIdentityRepository(db *Connection) *IdentityRepository {
	return &IdentityRepository{
		db: db,
	}
}

func (r *IdentityRepository) GetByUsername(ctx context.Context, username string) (model.Identity, error) {
	query := `SELECT username, public_key, created_at, updated_at
			  FROM identities WHERE username = $1`

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by username: %w", err)
	}

	return identity, nil
}

func (r *IdentityRepository) Create(ctx context.Context, identity model.Identity) (model.Identity, error) {
	query := `INSERT INTO identities (username, public_key, created_at, updated_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (username) DO NOTHING
			  RETURNING username, public_key, created_at, updated_at`

	saved, err := scanIdentity(r.db.QueryRow(ctx, query,
		identity.Username, identity.PublicKey.String(), identity.CreatedAt, identity.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrAlreadyExists
		}
		return model.Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}

	return saved, nil
}

func (r *IdentityRepository) Upsert(ctx context.Context, identity model.Identity) (model.Identity, error) {
	query := `INSERT INTO identities (username, public_key, created_at, updated_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (username) DO UPDATE
			  SET public_key = EXCLUDED.public_key, updated_at = EXCLUDED.updated_at
			  RETURNING username, public_key, created_at, updated_at`

	saved, err := scanIdentity(r.db.QueryRow(ctx, query,
		identity.Username, identity.PublicKey.String(), identity.CreatedAt, identity.UpdatedAt,
	))
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to upsert identity: %w", err)
	}

	return saved, nil
}

func scanIdentity(row pgx.Row) (model.Identity, error) {
	var (
		identity model.Identity
		jwk      string
	)
	if err := row.Scan(&identity.Username, &jwk, &identity.CreatedAt, &identity.UpdatedAt); err != nil {
		return model.Identity{}, err
	}

	pub, err := crypto.ParsePublicKey(jwk)
	if err != nil {
		return model.Identity{}, fmt.Errorf("stored key for %q: %w", identity.Username, err)
	}
	identity.PublicKey = pub

	return identity, nil
}
