/*
Package message defines the persisted chat message record and its Store contract.

A Message is created exactly once per accepted inbound payload by the relay and is
immutable afterward.
*/
package message

import (
	"context"
	"time"
)

// Message is a persisted chat message record.
type Message struct {
	// ID is the unique identifier assigned before insertion.
	ID string `json:"id"`

	// Sender is the opaque user id of the author. Nil when the message was sent
	// over an unauthenticated connection.
	Sender *string `json:"sender"`

	// Recipient is the opaque user id of the addressee.
	Recipient string `json:"recipient"`

	// Text is the message body. May be empty for attachment-only messages.
	Text string `json:"text,omitempty"`

	// FileRef is the generated name under which an attachment was stored, or nil.
	FileRef *string `json:"fileRef"`

	// CreatedAt records when the message was accepted.
	CreatedAt time.Time `json:"createdAt"`
}

// Store defines the persistence operations for chat messages.
type Store interface {
	// Create persists the message record.
	Create(ctx context.Context, m Message) error

	// Conversation returns all messages exchanged between the two users,
	// ordered by creation time ascending.
	Conversation(ctx context.Context, userA, userB string) ([]Message, error)
}
