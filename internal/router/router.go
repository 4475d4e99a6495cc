package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"authsvc/internal/handler"
)

// RegisterRoutes registers routes that require no authentication. Currently
// that is only the health check, used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints. Register and login are open;
// profile runs behind the session guard plus any extra middleware the
// caller supplies (e.g. the response cache, which must run after the guard
// so it can key on the authenticated subject).
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, guard echo.MiddlewareFunc, extra ...echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.GET("/profile", a.Profile, append([]echo.MiddlewareFunc{guard}, extra...)...)
}
