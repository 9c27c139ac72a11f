package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pcelinjak/hivelog/internal/auth"
	"github.com/pcelinjak/hivelog/internal/config"
	apphttp "github.com/pcelinjak/hivelog/internal/http"
	"github.com/pcelinjak/hivelog/internal/repo/memory"
	"github.com/pcelinjak/hivelog/internal/security"
)

const testSecret = "test-secret-key"

func testConfig() config.Config {
	return config.Config{
		Env:        "test",
		JWTSecret:  testSecret,
		BcryptCost: 4,
		CookieName: "token",
		Protected:  []string{"/hives", "/activities", "/comments"},
		TimeZone:   time.UTC,
	}
}

type app struct {
	router *gin.Engine
	store  *memory.Store
	tokens *auth.Manager
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	tokens, err := auth.NewManager(cfg.JWTSecret)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := apphttp.NewRouter(logger, apphttp.Deps{
		Config:        cfg,
		Users:         store.Users(),
		Hives:         store.Hives(),
		Activities:    store.Activities(),
		Comments:      store.Comments(),
		Notifications: store.Notifications(),
		Tokens:        tokens,
		Hasher:        security.NewPasswordHasher(cfg.BcryptCost),
	})

	return &app{router: router, store: store, tokens: tokens}
}

type call struct {
	method string
	path   string
	body   any
	token  string // sent as Bearer
	cookie *http.Cookie
	header map[string]string
}

func (a *app) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body: %v body=%s", err, w.Body.String())
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, w, status)
	if got := decode[errorBody](t, w).Error.Code; got != code {
		t.Fatalf("got error code %q, want %q", got, code)
	}
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (a *app) register(t *testing.T, name, email, password, role string) {
	t.Helper()
	body := map[string]string{"name": name, "email": email, "password": password}
	if role != "" {
		body["role"] = role
	}
	expectStatus(t, a.do(t, call{method: http.MethodPost, path: "/auth/register", body: body}), http.StatusCreated)
}

func (a *app) login(t *testing.T, email, password string) loginResponse {
	t.Helper()
	w := a.do(t, call{method: http.MethodPost, path: "/auth/login", body: map[string]string{"email": email, "password": password}})
	expectStatus(t, w, http.StatusOK)
	return decode[loginResponse](t, w)
}
