// Package repository provides the subscriber and account stores.
package repository

import (
	"context"
	"errors"

	"github.com/partygames/waitlist/internal/model"
)

// Common errors for store operations.
var (
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
)

// SubscriberStore owns the waitlist records.
//
// Email comparison is exact: no trimming and no case folding.
type SubscriberStore interface {
	// FindByEmail returns ErrSubscriberNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*model.Subscriber, error)

	// Create assigns a fresh id and timestamp and inserts the record.
	// The uniqueness check and the insert happen atomically; a concurrent
	// or earlier insert of the same email yields ErrEmailExists.
	Create(ctx context.Context, email string) (*model.Subscriber, error)

	// List returns every record in insertion order.
	List(ctx context.Context) ([]*model.Subscriber, error)

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
}

// UserStore holds account records. No route uses it yet.
type UserStore interface {
	CreateUser(ctx context.Context, username, password string) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

var (
	_ SubscriberStore = (*Memory)(nil)
	_ SubscriberStore = (*Postgres)(nil)
	_ UserStore       = (*Memory)(nil)
	_ UserStore       = (*Postgres)(nil)
)
