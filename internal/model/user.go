package model

import "time"

// User represents an account record as stored in the `users` table. The
// record is created once at registration and not modified afterwards.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name supplied at registration.
//  Email        – unique email address, stored exactly as given.
//  PasswordHash – bcrypt hash; only ever produced by auth.Hasher, never
//                 the plaintext password.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
}
