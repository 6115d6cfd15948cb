package message

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store on top of a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Create persists the message record.
func (s *PGStore) Create(ctx context.Context, m Message) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, sender, recipient, text, file_ref, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.Sender, m.Recipient, m.Text, m.FileRef, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Conversation returns all messages exchanged between the two users,
// ordered by creation time ascending.
func (s *PGStore) Conversation(ctx context.Context, userA, userB string) ([]Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, sender, recipient, text, file_ref, created_at
		 FROM messages
		 WHERE sender IN ($1, $2) AND recipient IN ($1, $2)
		 ORDER BY created_at ASC`,
		userA, userB,
	)
	if err != nil {
		return nil, fmt.Errorf("select conversation: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Recipient, &m.Text, &m.FileRef, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	return messages, nil
}
