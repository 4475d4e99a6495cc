package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"authsvc/internal/auth"
)

// identityKey is the echo context key under which SessionGuard stores the
// authenticated identity for the duration of one request.
const identityKey = "identity"

// SessionGuard returns an Echo middleware that admits only requests carrying
// a currently-valid bearer token. Every failure mode — missing header,
// malformed token, bad signature, expired token — produces the identical
// generic 401 body, so callers probing the endpoint learn nothing about why
// a token was rejected. On success the identity is attached to the request
// context and the next handler runs; on rejection it never does.
func SessionGuard(tokens *auth.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return unauthorized(c)
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			ident, err := tokens.Validate(raw)
			if err != nil {
				return unauthorized(c)
			}

			c.Set(identityKey, ident)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authorized"})
}

// IdentityFrom returns the identity attached by SessionGuard, if any.
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	ident, ok := c.Get(identityKey).(auth.Identity)
	return ident, ok
}
