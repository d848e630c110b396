package loadgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newFakeAPI(t *testing.T, signIns *int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/sign-in", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(signIns, 1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"UnauthorizedException","statusCode":401,"message":["Invalid credentials"]}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"Success","statusCode":201,"message":["User signed in"],"data":{"token":"tok"}}`))
	})
	catalog := func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"Success","statusCode":200,"message":["Books found"],"data":[]}`))
	}
	mux.HandleFunc("GET /book", catalog)
	mux.HandleFunc("GET /author", catalog)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunCatalogProfile(t *testing.T) {
	var signIns int64
	srv := newFakeAPI(t, &signIns)

	res, err := Run(context.Background(), Config{
		BaseURL:     srv.URL + "/",
		Profile:     "catalog",
		Email:       "johndoe@example.com",
		Password:    "secret",
		Duration:    300 * time.Millisecond,
		RPS:         50,
		Concurrency: 3,
		Seed:        7,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if atomic.LoadInt64(&signIns) != 1 {
		t.Fatalf("expected exactly one sign-in, got %d", signIns)
	}
	if res.TotalRequests == 0 {
		t.Fatal("expected some requests")
	}
	if res.Status2xx != res.TotalRequests || res.Status4xx != 0 || res.Failures != 0 {
		t.Fatalf("expected only successful requests, got %+v", res)
	}
	if res.ByScenario["list-books"] == 0 {
		t.Fatalf("expected list-books traffic, got %v", res.ByScenario)
	}
	if res.Latency.Max < res.Latency.P50 {
		t.Fatalf("max latency below median: %+v", res.Latency)
	}
}

func TestRunErrorHeavyProfileSkipsSignIn(t *testing.T) {
	var signIns int64
	srv := newFakeAPI(t, &signIns)

	res, err := Run(context.Background(), Config{
		BaseURL:     srv.URL,
		Profile:     "error-heavy",
		Password:    "secret",
		Duration:    200 * time.Millisecond,
		RPS:         40,
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.TotalRequests == 0 || res.Status4xx != res.TotalRequests {
		t.Fatalf("expected only 4xx responses, got %+v", res)
	}
}

func TestRunFailsWhenSignInRejected(t *testing.T) {
	var signIns int64
	srv := newFakeAPI(t, &signIns)

	_, err := Run(context.Background(), Config{BaseURL: srv.URL, Password: "nope", Duration: 50 * time.Millisecond})
	if err == nil || !strings.Contains(err.Error(), "Invalid credentials") {
		t.Fatalf("expected sign in error, got %v", err)
	}
}

func TestRunRejectsUnknownProfile(t *testing.T) {
	if _, err := Run(context.Background(), Config{Profile: "bogus"}); err == nil {
		t.Fatal("expected unknown profile error")
	}
}

func TestPercentiles(t *testing.T) {
	var samples []time.Duration
	for i := 100; i >= 1; i-- {
		samples = append(samples, time.Duration(i)*time.Millisecond)
	}
	got := percentiles(samples)
	want := Latency{P50: 50 * time.Millisecond, P90: 90 * time.Millisecond, P99: 99 * time.Millisecond, Max: 100 * time.Millisecond}
	if got != want {
		t.Fatalf("percentiles = %+v, want %+v", got, want)
	}
	if (percentiles(nil) != Latency{}) {
		t.Fatal("expected zero latency for no samples")
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 201: "2xx", 302: "3xx", 404: "4xx", 429: "4xx", 503: "5xx", 0: "other"}
	for status, want := range tests {
		if got := statusClass(status); got != want {
			t.Fatalf("statusClass(%d) = %q, want %q", status, got, want)
		}
	}
}

func TestSummaryOrdersScenarios(t *testing.T) {
	lines := Summary(Result{TotalRequests: 3, ByScenario: map[string]int64{"search-books": 1, "list-books": 2}})
	n := len(lines)
	if lines[n-2] != "scenario list-books=2" || lines[n-1] != "scenario search-books=1" {
		t.Fatalf("unexpected summary tail: %v", lines[n-2:])
	}
}
