package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookshelf-labs/bookshelf-api/internal/database"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/handler"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/router"
	"github.com/bookshelf-labs/bookshelf-api/internal/repository"
	"github.com/bookshelf-labs/bookshelf-api/internal/security"
	"github.com/bookshelf-labs/bookshelf-api/internal/service"
)

const testJWTSecret = "abcdefghijklmnopqrstuvwxyz123456"

type apiEnvelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    []string        `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type testServerOptions struct {
	covers          service.CoverStorage
	listCache       service.ListCacheStore
	authRPM         int
	apiRPM          int
	globalLimiter   router.GlobalRateLimiterFunc
	authLimiter     router.AuthRateLimiterFunc
	signInGuard     service.SignInGuard
	seed            bool
	defaultPageSize int
}

type testServer struct {
	baseURL string
	client  *http.Client
	db      *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithOptions(t, testServerOptions{})
}

func newTestServerWithOptions(t *testing.T, opts testServerOptions) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	hasher, err := security.NewPasswordHasher(4)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	if opts.seed {
		if _, err := database.Seed(t.Context(), db, hasher); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	jwtMgr := security.NewJWTManager("bookshelf-api", testJWTSecret, time.Hour)

	store := opts.listCache
	if store == nil {
		store = service.NewNoopListCacheStore()
	}
	cache := service.NewListCache(store, time.Minute)

	users := repository.NewUserRepository(db)
	authors := repository.NewAuthorRepository(db)
	books := repository.NewBookRepository(db)

	pageSize := opts.defaultPageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	authRPM, apiRPM := opts.authRPM, opts.apiRPM
	if authRPM <= 0 {
		authRPM = 1000
	}
	if apiRPM <= 0 {
		apiRPM = 1000
	}

	h := router.NewRouter(router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(service.NewAuthService(users, hasher, jwtMgr).WithSignInGuard(opts.signInGuard)),
		AuthorHandler:     handler.NewAuthorHandler(service.NewAuthorService(authors, cache), pageSize),
		BookHandler:       handler.NewBookHandler(service.NewBookService(books, authors, opts.covers, cache), pageSize),
		Tokens:            jwtMgr,
		CORSOrigins:       []string{"http://localhost:5173"},
		AuthRateLimitRPM:  authRPM,
		APIRateLimitRPM:   apiRPM,
		GlobalRateLimiter: opts.globalLimiter,
		AuthRateLimiter:   opts.authLimiter,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testServer{baseURL: srv.URL, client: client, db: db}
}

func (s *testServer) doJSON(t *testing.T, method, path string, body any, token string) (*http.Response, apiEnvelope) {
	t.Helper()
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.baseURL+path, payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.do(t, req, token)
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) (*http.Response, apiEnvelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env apiEnvelope
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp, env
}

// signUp registers a user and returns the issued token.
func (s *testServer) signUp(t *testing.T, email string) string {
	t.Helper()
	resp, env := s.doJSON(t, http.MethodPost, "/auth/sign-up", map[string]string{
		"name":     "Integration User",
		"email":    email,
		"password": "Valid#1234",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("sign up failed: status=%d message=%v", resp.StatusCode, env.Message)
	}
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &data)
	if data.Token == "" {
		t.Fatal("expected token from sign up")
	}
	return data.Token
}

func decodeData(t *testing.T, env apiEnvelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", string(env.Data), err)
	}
}

func assertStatus(t *testing.T, resp *http.Response, env apiEnvelope, status int, message ...string) {
	t.Helper()
	if resp.StatusCode != status || env.StatusCode != status {
		t.Fatalf("expected status %d, got http=%d envelope=%d message=%v", status, resp.StatusCode, env.StatusCode, env.Message)
	}
	if len(message) == 0 {
		return
	}
	if strings.Join(env.Message, "|") != strings.Join(message, "|") {
		t.Fatalf("expected message %q, got %q", message, env.Message)
	}
}
