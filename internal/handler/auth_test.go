package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"authsvc/internal/auth"
	"authsvc/internal/handler"
	"authsvc/internal/middleware"
	"authsvc/internal/model"
	"authsvc/internal/queue"
	"authsvc/internal/repository"
	"authsvc/internal/router"
)

// testApp wires the full HTTP surface against the in-memory store, with
// auth events captured on a channel instead of RabbitMQ.
type testApp struct {
	e      *echo.Echo
	store  *repository.MemoryUserStore
	tokens *auth.Issuer
	events chan queue.AuthEvent
}

func newTestApp() *testApp {
	store := repository.NewMemoryUserStore()
	tokens := auth.NewIssuer("test-secret", time.Hour)
	h := handler.NewAuthHandler(store, auth.NewHasher(bcrypt.MinCost), tokens, zap.NewNop())

	events := make(chan queue.AuthEvent, 8)
	h.Publish = func(ctx context.Context, ev queue.AuthEvent) error {
		events <- ev
		return nil
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, h, middleware.SessionGuard(tokens))

	return &testApp{e: e, store: store, tokens: tokens, events: events}
}

func (a *testApp) do(method, path string, body any, bearer string) *httptest.ResponseRecorder {
	var r *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func (a *testApp) nextEvent(t *testing.T) queue.AuthEvent {
	t.Helper()
	select {
	case ev := <-a.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no auth event published")
		return queue.AuthEvent{}
	}
}

func TestRegisterProfileLogin_EndToEnd(t *testing.T) {
	t.Parallel()
	app := newTestApp()

	rec := app.do(http.MethodPost, "/auth/register",
		echo.Map{"name": "Ana", "email": "a@x.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	reg := decode(t, rec)
	require.Equal(t, "user registered successfully", reg["message"])
	token, _ := reg["token"].(string)
	require.NotEmpty(t, token)

	rec = app.do(http.MethodGet, "/auth/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode(t, rec)
	require.Equal(t, "Ana", profile["name"])
	require.Equal(t, "a@x.com", profile["email"])
	require.NotZero(t, profile["id"])
	require.NotContains(t, profile, "password")
	require.NotContains(t, profile, "passwordHash")
	require.NotContains(t, profile, "password_hash")

	rec = app.do(http.MethodPost, "/auth/login",
		echo.Map{"email": "a@x.com", "password": "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid email or password", decode(t, rec)["message"])

	rec = app.do(http.MethodPost, "/auth/login",
		echo.Map{"email": "a@x.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode(t, rec)
	require.Equal(t, "login successful", login["message"])
	require.NotEmpty(t, login["token"])
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()
	app := newTestApp()

	cases := map[string]echo.Map{
		"no name":     {"email": "a@x.com", "password": "p"},
		"no email":    {"name": "Ana", "password": "p"},
		"no password": {"name": "Ana", "email": "a@x.com"},
		"empty body":  {},
	}
	for name, body := range cases {
		rec := app.do(http.MethodPost, "/auth/register", body, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, name)
		require.Equal(t, "name, email, and password are required", decode(t, rec)["message"], name)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()
	app := newTestApp()

	for name, body := range map[string]echo.Map{
		"no email":    {"password": "p"},
		"no password": {"email": "a@x.com"},
	} {
		rec := app.do(http.MethodPost, "/auth/login", body, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	app := newTestApp()

	body := echo.Map{"name": "Ana", "email": "a@x.com", "password": "secret123"}

	rec := app.do(http.MethodPost, "/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.do(http.MethodPost, "/auth/register", body, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "user already exists with this email", decode(t, rec)["message"])

	// No second record may exist.
	require.Equal(t, 1, app.store.Len())
}

func TestLogin_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	t.Parallel()
	app := newTestApp()

	rec := app.do(http.MethodPost, "/auth/register",
		echo.Map{"name": "Ana", "email": "a@x.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPass := app.do(http.MethodPost, "/auth/login",
		echo.Map{"email": "a@x.com", "password": "nope"}, "")
	unknownEmail := app.do(http.MethodPost, "/auth/login",
		echo.Map{"email": "nobody@x.com", "password": "nope"}, "")

	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, wrongPass.Code, unknownEmail.Code)
	require.Equal(t, wrongPass.Body.String(), unknownEmail.Body.String())
}

func TestProfile_Unauthorized(t *testing.T) {
	t.Parallel()
	app := newTestApp()

	noToken := app.do(http.MethodGet, "/auth/profile", nil, "")
	garbage := app.do(http.MethodGet, "/auth/profile", nil, "garbage")

	require.Equal(t, http.StatusUnauthorized, noToken.Code)
	require.Equal(t, http.StatusUnauthorized, garbage.Code)
	require.Equal(t, noToken.Body.String(), garbage.Body.String())
}

func TestProfile_UserNotFound(t *testing.T) {
	t.Parallel()
	app := newTestApp()

	// Valid token for a subject that was never stored.
	tok, err := app.tokens.Issue(999)
	require.NoError(t, err)

	rec := app.do(http.MethodGet, "/auth/profile", nil, tok)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "user not found", decode(t, rec)["message"])
}

func TestAuthEvents_Emitted(t *testing.T) {
	t.Parallel()
	app := newTestApp()

	rec := app.do(http.MethodPost, "/auth/register",
		echo.Map{"name": "Ana", "email": "a@x.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	ev := app.nextEvent(t)
	require.Equal(t, queue.KindUserRegistered, ev.Kind)
	require.Equal(t, "a@x.com", ev.Email)
	require.NotZero(t, ev.UserID)
	require.NotEmpty(t, ev.At)

	rec = app.do(http.MethodPost, "/auth/login",
		echo.Map{"email": "a@x.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	ev = app.nextEvent(t)
	require.Equal(t, queue.KindUserLoggedIn, ev.Kind)
}

// failingStore simulates an unavailable backing store.
type failingStore struct{}

func (failingStore) Create(context.Context, model.User) (model.User, error) {
	return model.User{}, repository.ErrUnavailable
}
func (failingStore) FindByEmail(context.Context, string) (model.User, error) {
	return model.User{}, repository.ErrUnavailable
}
func (failingStore) FindByID(context.Context, uint64) (model.User, error) {
	return model.User{}, repository.ErrUnavailable
}

func TestStoreUnavailable_IsServerError(t *testing.T) {
	t.Parallel()

	tokens := auth.NewIssuer("test-secret", time.Hour)
	h := handler.NewAuthHandler(failingStore{}, auth.NewHasher(bcrypt.MinCost), tokens, zap.NewNop())
	h.Publish = func(context.Context, queue.AuthEvent) error { return nil }

	e := echo.New()
	router.RegisterAuth(e, h, middleware.SessionGuard(tokens))
	app := &testApp{e: e, tokens: tokens}

	rec := app.do(http.MethodPost, "/auth/register",
		echo.Map{"name": "Ana", "email": "a@x.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = app.do(http.MethodPost, "/auth/login",
		echo.Map{"email": "a@x.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	tok, err := tokens.Issue(1)
	require.NoError(t, err)
	rec = app.do(http.MethodGet, "/auth/profile", nil, tok)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
