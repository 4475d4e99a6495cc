// Package auth implements the credential and session-token core: bcrypt
// password hashing and HS256 session tokens with a fixed lifetime.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMalformed is returned when a token cannot be parsed at all.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrInvalidSignature is returned when a token was tampered with or
	// signed under a different key.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrTokenExpired is returned when a token's expiry deadline has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Identity is the result of a successful token validation. It lives for a
// single request and carries only the subject the token asserts.
type Identity struct {
	SubjectID uint64
}

// Issuer mints and validates signed session tokens. The secret is loaded
// once at startup and never mutated, so concurrent use needs no locking.
// Rotating the secret invalidates every outstanding token.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue builds and signs an HS256 token for the subject. The claims carry
// sub, iat and exp; exp is now plus the fixed lifetime, so tokens issued at
// different instants differ while each stays valid until its own expiry.
func (i *Issuer) Issue(subjectID uint64) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(subjectID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Validate checks the signature and expiry of token and returns the
// embedded identity. Failures are classified as ErrTokenMalformed,
// ErrInvalidSignature or ErrTokenExpired. Pure function of the token,
// the clock and the signing secret.
func (i *Issuer) Validate(token string) (Identity, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return i.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Identity{}, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrTokenExpired
		default:
			return Identity{}, ErrInvalidSignature
		}
	}
	if !tok.Valid {
		return Identity{}, ErrInvalidSignature
	}
	sub, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}, ErrTokenMalformed
	}
	return Identity{SubjectID: sub}, nil
}
