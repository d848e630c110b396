package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/service"
)

func TestAuthLifecycleSignUpSignInAndAccess(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.doJSON(t, http.MethodPost, "/auth/sign-up", map[string]string{
		"name":     "Jane Reader",
		"email":    "jane@example.com",
		"password": "Shelf#2024",
	}, "")
	assertStatus(t, resp, env, http.StatusCreated, "User created")
	if env.Status != "Success" {
		t.Fatalf("expected Success status, got %q", env.Status)
	}
	var created struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Token string `json:"token"`
	}
	decodeData(t, env, &created)
	if created.ID == "" || created.Email != "jane@example.com" || created.Name != "Jane Reader" || created.Token == "" {
		t.Fatalf("unexpected sign up payload: %+v", created)
	}

	resp, env = s.doJSON(t, http.MethodPost, "/auth/sign-up", map[string]string{
		"name":     "Jane Again",
		"email":    "jane@example.com",
		"password": "Shelf#2024",
	}, "")
	assertStatus(t, resp, env, http.StatusConflict, "User already exists")
	if env.Status != "ConflictException" {
		t.Fatalf("expected ConflictException, got %q", env.Status)
	}

	resp, env = s.doJSON(t, http.MethodPost, "/auth/sign-in", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong#0000",
	}, "")
	assertStatus(t, resp, env, http.StatusUnauthorized, "Invalid password")

	resp, env = s.doJSON(t, http.MethodPost, "/auth/sign-in", map[string]string{
		"email":    "nobody@example.com",
		"password": "Shelf#2024",
	}, "")
	assertStatus(t, resp, env, http.StatusNotFound, "User not found")

	resp, env = s.doJSON(t, http.MethodPost, "/auth/sign-in", map[string]string{
		"email":    "jane@example.com",
		"password": "Shelf#2024",
	}, "")
	assertStatus(t, resp, env, http.StatusCreated, "User signed in")
	var signedIn struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &signedIn)

	resp, env = s.doJSON(t, http.MethodGet, "/author", nil, "")
	assertStatus(t, resp, env, http.StatusUnauthorized, "Unauthorized")

	resp, env = s.doJSON(t, http.MethodGet, "/author", nil, "not-a-jwt")
	assertStatus(t, resp, env, http.StatusUnauthorized, "Unauthorized")

	resp, env = s.doJSON(t, http.MethodGet, "/author", nil, signedIn.Token)
	assertStatus(t, resp, env, http.StatusOK, "Authors found")
}

func TestAuthSignUpTestUserScenario(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.doJSON(t, http.MethodPost, "/auth/sign-up", map[string]string{
		"name":     "Test User",
		"email":    "t1@example.com",
		"password": "2ZBGDoYDyzU!HVaAI4KbCousVK3hqJUEgR5eC",
	}, "")
	assertStatus(t, resp, env, http.StatusCreated, "User created")
	var created struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}
	decodeData(t, env, &created)
	if created.Email != "t1@example.com" || created.Token == "" {
		t.Fatalf("unexpected sign-up data: %+v", created)
	}

	resp, env = s.doJSON(t, http.MethodPost, "/auth/sign-in", map[string]string{
		"email":    "t1@example.com",
		"password": "2ZBGDoYDyzU!HVaAI4KbCousVK3hqJUEgR5eC",
	}, "")
	assertStatus(t, resp, env, http.StatusCreated, "User signed in")
}

func TestAuthSignInStaysUnthrottledWithoutGuard(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "steady@example.com")
	s.signUp(t, "neighbour@example.com")

	wrong := map[string]string{"email": "steady@example.com", "password": "Wrong#0000"}
	for i := 0; i < 10; i++ {
		resp, env := s.doJSON(t, http.MethodPost, "/auth/sign-in", wrong, "")
		assertStatus(t, resp, env, http.StatusUnauthorized, "Invalid password")
	}
	for _, email := range []string{"steady@example.com", "neighbour@example.com"} {
		resp, env := s.doJSON(t, http.MethodPost, "/auth/sign-in", map[string]string{"email": email, "password": "Valid#1234"}, "")
		assertStatus(t, resp, env, http.StatusCreated, "User signed in")
	}
}

func TestAuthSignUpValidationMessages(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.doJSON(t, http.MethodPost, "/auth/sign-up", map[string]string{
		"name":     "",
		"email":    "not-an-email",
		"password": "short",
	}, "")
	assertStatus(t, resp, env, http.StatusBadRequest,
		"Name should not be empty",
		"Email is invalid",
		"Password is too weak",
	)
	if env.Status != "BadRequestException" {
		t.Fatalf("expected BadRequestException, got %q", env.Status)
	}
}

func TestAuthSignInWithSeededUser(t *testing.T) {
	s := newTestServerWithOptions(t, testServerOptions{seed: true})

	resp, env := s.doJSON(t, http.MethodPost, "/auth/sign-in", map[string]string{
		"email":    "johndoe@example.com",
		"password": "johndoe@example.com",
	}, "")
	assertStatus(t, resp, env, http.StatusCreated, "User signed in")
}

func TestAuthRateLimitReturns429(t *testing.T) {
	s := newTestServerWithOptions(t, testServerOptions{authRPM: 2})

	body := map[string]string{"email": "limit@example.com", "password": "Shelf#2024"}
	for i := 0; i < 2; i++ {
		resp, _ := s.doJSON(t, http.MethodPost, "/auth/sign-in", body, "")
		if resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("request %d throttled too early", i+1)
		}
	}
	resp, env := s.doJSON(t, http.MethodPost, "/auth/sign-in", body, "")
	assertStatus(t, resp, env, http.StatusTooManyRequests, "Too Many Requests")
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestAuthSignInGuardBacksOffRepeatedFailuresWhenEnabled(t *testing.T) {
	guard := service.NewInMemorySignInGuard(service.SignInGuardPolicy{
		FreeAttempts: 2,
		BaseDelay:    time.Minute,
		Multiplier:   2,
		MaxDelay:     time.Hour,
		ResetWindow:  time.Hour,
	})
	s := newTestServerWithOptions(t, testServerOptions{seed: true, signInGuard: guard})

	wrong := map[string]string{"email": "johndoe@example.com", "password": "not-the-password"}
	for i := 0; i < 3; i++ {
		resp, env := s.doJSON(t, http.MethodPost, "/auth/sign-in", wrong, "")
		assertStatus(t, resp, env, http.StatusUnauthorized, "Invalid password")
	}

	right := map[string]string{"email": "johndoe@example.com", "password": "johndoe@example.com"}
	resp, env := s.doJSON(t, http.MethodPost, "/auth/sign-in", right, "")
	assertStatus(t, resp, env, http.StatusTooManyRequests, "Too many sign-in attempts")
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on guarded sign-in")
	}
}
