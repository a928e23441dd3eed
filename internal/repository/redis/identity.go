// Package redis stores the identity directory in Redis hashes, one per
// username.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/gophchat/internal/crypto"
	"github.com/dtroode/gophchat/internal/model"
)

const (
	keyPrefix = "identity:"

	fieldPublicKey = "public_key"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

var _ model.IdentityStore = (*IdentityRepository)(nil)

type IdentityRepository struct {
	rdb redis.UniversalClient
}

func NewIdentityRepository(rdb redis.UniversalClient) *IdentityRepository {
	return &IdentityRepository{
		rdb: rdb,
	}
}

// NewClient connects to addr and verifies the server answers.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

func (r *IdentityRepository) GetByUsername(ctx context.Context, username string) (model.Identity, error) {
	fields, err := r.rdb.HGetAll(ctx, keyPrefix+username).Result()
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to get identity by username: %w", err)
	}
	if len(fields) == 0 {
		return model.Identity{}, model.ErrNotFound
	}

	return decodeIdentity(username, fields)
}

func (r *IdentityRepository) Create(ctx context.Context, identity model.Identity) (model.Identity, error) {
	key := keyPrefix + identity.Username

	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return model.ErrAlreadyExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				fieldPublicKey, identity.PublicKey.String(),
				fieldCreatedAt, formatTime(identity.CreatedAt),
				fieldUpdatedAt, formatTime(identity.UpdatedAt),
			)
			return nil
		})
		return err
	}, key)
	switch {
	case errors.Is(err, model.ErrAlreadyExists), errors.Is(err, redis.TxFailedErr):
		// A concurrent write to the same key means someone else registered first.
		return model.Identity{}, model.ErrAlreadyExists
	case err != nil:
		return model.Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}

	return identity, nil
}

func (r *IdentityRepository) Upsert(ctx context.Context, identity model.Identity) (model.Identity, error) {
	key := keyPrefix + identity.Username

	var all *redis.MapStringStringCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, fieldCreatedAt, formatTime(identity.CreatedAt))
		pipe.HSet(ctx, key,
			fieldPublicKey, identity.PublicKey.String(),
			fieldUpdatedAt, formatTime(identity.UpdatedAt),
		)
		all = pipe.HGetAll(ctx, key)
		return nil
	})
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to upsert identity: %w", err)
	}

	return decodeIdentity(identity.Username, all.Val())
}

func decodeIdentity(username string, fields map[string]string) (model.Identity, error) {
	pub, err := crypto.ParsePublicKey(fields[fieldPublicKey])
	if err != nil {
		return model.Identity{}, fmt.Errorf("stored key for %q: %w", username, err)
	}

	return model.Identity{
		Username:  username,
		PublicKey: pub,
		CreatedAt: parseTime(fields[fieldCreatedAt]),
		UpdatedAt: parseTime(fields[fieldUpdatedAt]),
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
