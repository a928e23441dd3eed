package postgres

import (
	"context"
	"fmt"

	"github.com/dtroode/gophchat/internal/model"
)

var _ model.MessageStore = (*MessageRepository)(nil)

type MessageRepository struct {
	db *Connection
}

func NewMessageRepository(db *Connection) *MessageRepository {
	return &MessageRepository{
		db: db,
	}
}

func (r *MessageRepository) Append(ctx context.Context, env model.Envelope) (model.Envelope, error) {
	query := `INSERT INTO messages (id, sender, recipient, cipher_text, iv, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, sender, recipient, cipher_text, iv, created_at`

	var saved model.Envelope
	err := r.db.QueryRow(ctx, query,
		env.ID, env.From, env.To, env.CipherText, env.IV, env.CreatedAt,
	).Scan(
		&saved.ID, &saved.From, &saved.To, &saved.CipherText, &saved.IV, &saved.CreatedAt,
	)
	if err != nil {
		return model.Envelope{}, fmt.Errorf("failed to append message: %w", err)
	}

	return saved, nil
}

func (r *MessageRepository) Conversation(ctx context.Context, a, b string) ([]model.Envelope, error) {
	query := `SELECT id, sender, recipient, cipher_text, iv, created_at
			  FROM messages
			  WHERE (sender = $1 AND recipient = $2) OR (sender = $2 AND recipient = $1)
			  ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, a, b)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	defer rows.Close()

	envelopes := make([]model.Envelope, 0)
	for rows.Next() {
		var env model.Envelope
		err := rows.Scan(&env.ID, &env.From, &env.To, &env.CipherText, &env.IV, &env.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		envelopes = append(envelopes, env)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversation: %w", err)
	}

	return envelopes, nil
}
