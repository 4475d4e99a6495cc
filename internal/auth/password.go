package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmptyPassword is returned when an empty plaintext is offered for hashing.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrMalformedHash is returned when a stored hash is not a valid bcrypt string.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Hasher performs one-way password hashing and verification with bcrypt.
// The cost factor controls how expensive each hash is to compute.
type Hasher struct{ Cost int }

// NewHasher clamps out-of-range costs to the bcrypt default.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{Cost: cost}
}

// Hash returns the bcrypt hash of plain. Every call salts independently, so
// hashing the same plaintext twice yields two different strings.
func (h Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A well-formed mismatch is
// (false, nil); a hash bcrypt cannot parse is (false, ErrMalformedHash).
func (h Hasher) Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrMalformedHash
	}
}
