/*
Package user contains core data structures and persistence for user accounts.

It defines the basic representation of a registered user and the Store interface
the handlers depend on for account lookups.
*/
package user

import (
	"context"
	"time"
)

// User represents a registered account.
type User struct {
	// ID is the opaque unique identifier for the user.
	ID string `json:"id"`

	// UserName is the unique display name chosen at registration.
	UserName string `json:"userName"`

	// PasswordHash is the bcrypt hash of the account password. Never serialized.
	PasswordHash string `json:"-"`

	// CreatedAt records when the account was created.
	CreatedAt time.Time `json:"-"`
}

// Summary is the public projection of a user, as returned by the people listing.
type Summary struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
}

// Store defines the persistence operations the handlers need for user accounts.
type Store interface {
	// Create persists a new user. The implementation reports a conflict error
	// when the username is already taken.
	Create(ctx context.Context, u User) error

	// ByUserName fetches a user by their unique username.
	ByUserName(ctx context.Context, userName string) (User, error)

	// List returns the public summaries of all registered users.
	List(ctx context.Context) ([]Summary, error)
}
