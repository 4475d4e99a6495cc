// Package queue defines the auth events exchanged over the message broker
// and the background consumer that turns them into audit log entries.
package queue

// AuthEventQueue is the durable queue auth events are published to.
const AuthEventQueue = "auth.events"

// Event kinds carried in AuthEvent.Kind.
const (
	KindUserRegistered = "user.registered"
	KindUserLoggedIn   = "user.logged_in"
)

// AuthEvent is published after a successful registration or login. It is
// the single structured emission point for auth activity: downstream
// consumers can audit, notify or feed analytics without touching the
// primary database. It never carries passwords, hashes or tokens.
type AuthEvent struct {
	Kind   string `json:"kind"`
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	At     string `json:"at"` // RFC 3339, UTC
}
