/*
Package randx provides functions for generating unique identifiers.

It is used to generate UUID identifiers for persisted messages, live connections,
and registered users.
*/
package randx

import "github.com/google/uuid"

// MessageID generates a UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// UserID generates a UUID v4 string to serve as a unique identifier for a user account.
func UserID() string {
	return uuid.New().String()
}

// ConnectionID generates a process-local identifier for a live connection.
// Connection IDs are never persisted.
func ConnectionID() string {
	return uuid.New().String()
}
