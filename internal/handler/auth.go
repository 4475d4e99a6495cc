package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"authsvc/internal/auth"
	"authsvc/internal/middleware"
	"authsvc/internal/model"
	"authsvc/internal/queue"
	"authsvc/internal/repository"
	queue_publisher "authsvc/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints. Publish is the
// auth-event emission point; it defaults to the RabbitMQ publisher and is
// swappable in tests.
type AuthHandler struct {
	Users   repository.UserStore
	Hasher  auth.Hasher
	Tokens  *auth.Issuer
	Log     *zap.Logger
	Publish func(ctx context.Context, ev queue.AuthEvent) error
}

func NewAuthHandler(users repository.UserStore, hasher auth.Hasher, tokens *auth.Issuer, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		Users:   users,
		Hasher:  hasher,
		Tokens:  tokens,
		Log:     log,
		Publish: queue_publisher.PublishAuthEvent,
	}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}
type profileResp struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register: create the account and return a session token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name, email, and password are required"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		h.Log.Warn("register: missing required fields")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name, email, and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.FindByEmail(ctx, req.Email); err == nil {
		h.Log.Warn("register: email already registered", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{"message": "user already exists with this email"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		h.Log.Error("register: existence check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "something went wrong during registration"})
	}

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		h.Log.Error("register: password hashing failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "something went wrong during registration"})
	}

	u, err := h.Users.Create(ctx, model.User{Name: req.Name, Email: req.Email, PasswordHash: hash})
	if err != nil {
		// A concurrent registration can still win the race between the
		// existence check and the insert; the store's create-if-absent
		// guarantee surfaces that as ErrEmailExists.
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "user already exists with this email"})
		}
		h.Log.Error("register: create user failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "something went wrong during registration"})
	}

	token, err := h.Tokens.Issue(u.ID)
	if err != nil {
		h.Log.Error("register: token issue failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "something went wrong during registration"})
	}

	h.Log.Info("register: new user registered", zap.Uint64("user_id", u.ID), zap.String("email", u.Email))
	h.emit(queue.AuthEvent{Kind: queue.KindUserRegistered, UserID: u.ID, Email: u.Email})

	return c.JSON(http.StatusCreated, tokenResp{Message: "user registered successfully", Token: token})
}

// Login: verify credentials and return a fresh session token. Unknown email
// and wrong password produce the identical response so callers cannot probe
// which addresses are registered.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}
	if req.Email == "" || req.Password == "" {
		h.Log.Warn("login: missing email or password")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.Log.Warn("login: unknown email", zap.String("email", req.Email))
			return invalidCredentials(c)
		}
		h.Log.Error("login: query failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "something went wrong during login"})
	}

	ok, err := h.Hasher.Verify(req.Password, u.PasswordHash)
	if err != nil {
		h.Log.Error("login: stored hash unusable", zap.Uint64("user_id", u.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "something went wrong during login"})
	}
	if !ok {
		h.Log.Warn("login: wrong password", zap.String("email", req.Email))
		return invalidCredentials(c)
	}

	token, err := h.Tokens.Issue(u.ID)
	if err != nil {
		h.Log.Error("login: token issue failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "something went wrong during login"})
	}

	h.Log.Info("login: user logged in", zap.Uint64("user_id", u.ID), zap.String("email", u.Email))
	h.emit(queue.AuthEvent{Kind: queue.KindUserLoggedIn, UserID: u.ID, Email: u.Email})

	return c.JSON(http.StatusOK, tokenResp{Message: "login successful", Token: token})
}

// Profile: return the authenticated user's record, without the hash.
func (h *AuthHandler) Profile(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		// Only reachable when the route is misregistered without the guard.
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindByID(ctx, ident.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.Log.Warn("profile: user not found", zap.Uint64("user_id", ident.SubjectID))
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		h.Log.Error("profile: query failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "something went wrong fetching profile"})
	}

	return c.JSON(http.StatusOK, profileResp{ID: u.ID, Name: u.Name, Email: u.Email})
}

func invalidCredentials(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
}

// emit publishes an auth event in the background. Event delivery is
// best-effort and never affects the request outcome.
func (h *AuthHandler) emit(ev queue.AuthEvent) {
	ev.At = time.Now().UTC().Format(time.RFC3339)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	go func() {
		defer cancel()
		if err := h.Publish(ctx, ev); err != nil {
			h.Log.Warn("auth event publish failed", zap.String("kind", ev.Kind), zap.Error(err))
		}
	}()
}
