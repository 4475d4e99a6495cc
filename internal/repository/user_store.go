// Package repository defines the credential store contract consumed by the
// auth handlers, together with the sentinel errors higher layers use to
// distinguish failure scenarios. ErrEmailExists maps to an HTTP 409,
// ErrNotFound to a 401 or 404 depending on the caller, and ErrUnavailable
// to a generic 500.
package repository

import (
	"context"
	"errors"

	"authsvc/internal/model"
)

// ErrNotFound is returned when no record matches the lookup key.
var ErrNotFound = errors.New("user not found")

// ErrEmailExists is returned when a record with the same email already exists.
var ErrEmailExists = errors.New("email already exists")

// ErrUnavailable is returned when the underlying store itself failed.
var ErrUnavailable = errors.New("user store unavailable")

// UserStore persists account records keyed by email. Emails are matched
// exactly as stored (case-sensitive). Create must be atomic within the
// store: two concurrent registrations for the same email may not both
// succeed.
type UserStore interface {
	// Create inserts a new record and returns it with its assigned ID.
	Create(ctx context.Context, u model.User) (model.User, error)
	// FindByEmail returns the record with exactly this email.
	FindByEmail(ctx context.Context, email string) (model.User, error)
	// FindByID returns the record with this ID.
	FindByID(ctx context.Context, id uint64) (model.User, error)
}
