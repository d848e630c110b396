package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
)

type Config struct {
	BaseURL     string
	Profile     string
	Email       string
	Password    string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
	Client      *http.Client
}

type Latency struct {
	P50 time.Duration
	P90 time.Duration
	P99 time.Duration
	Max time.Duration
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status5xx     int64
	ByScenario    map[string]int64
	Latency       Latency
}

type scenario struct {
	name  string
	build func(r *rand.Rand, baseURL, token string) (*http.Request, error)
}

type job struct {
	req      *http.Request
	scenario string
}

type sample struct {
	scenario string
	status   int
	latency  time.Duration
	err      error
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:3000"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	scenarios := scenariosForProfile(cfg.Profile, cfg.Email, cfg.Password)
	if len(scenarios) == 0 {
		return Result{}, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}

	token := ""
	if needsToken(cfg.Profile) {
		t, err := signIn(ctx, client, cfg.BaseURL, cfg.Email, cfg.Password)
		if err != nil {
			return Result{}, fmt.Errorf("sign in: %w", err)
		}
		token = t
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	jobs := make(chan job, cfg.Concurrency*2)
	samples := make(chan sample, cfg.Concurrency*2)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				samples <- do(client, j.req, j.scenario)
			}
		}()
	}

	var res Result
	var latencies []time.Duration
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		res.ByScenario = make(map[string]int64)
		for s := range samples {
			record(ctx, &res, s)
			if s.err == nil {
				latencies = append(latencies, s.latency)
			}
		}
	}()

	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)>>1|1))
	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			sc := scenarios[rng.IntN(len(scenarios))]
			req, err := sc.build(rng, cfg.BaseURL, token)
			if err != nil {
				samples <- sample{scenario: sc.name, err: err}
				continue
			}
			select {
			case jobs <- job{req: req.WithContext(ctx), scenario: sc.name}:
			case <-ctx.Done():
				break loop
			}
		}
	}
	close(jobs)
	wg.Wait()
	close(samples)
	<-collected

	res.Latency = percentiles(latencies)
	return res, nil
}

func do(client *http.Client, req *http.Request, name string) sample {
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return sample{scenario: name, err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return sample{scenario: name, status: resp.StatusCode, latency: time.Since(start)}
}

func record(ctx context.Context, res *Result, s sample) {
	if s.err != nil {
		// requests cut off by the run deadline are not failures
		if !errors.Is(s.err, context.DeadlineExceeded) && !errors.Is(s.err, context.Canceled) {
			res.Failures++
			observability.RecordLoadgenRequest(ctx, "error", s.scenario)
		}
		return
	}
	res.TotalRequests++
	res.ByScenario[s.scenario]++
	class := statusClass(s.status)
	switch class {
	case "2xx":
		res.Status2xx++
	case "4xx":
		res.Status4xx++
	case "5xx":
		res.Status5xx++
	}
	observability.RecordLoadgenRequest(ctx, class, s.scenario)
}

func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "other"
	}
}

// percentiles uses nearest-rank selection over the sorted samples.
func percentiles(latencies []time.Duration) Latency {
	if len(latencies) == 0 {
		return Latency{}
	}
	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	at := func(p float64) time.Duration {
		idx := int(p*float64(len(sorted))+0.999999) - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return sorted[idx]
	}
	return Latency{P50: at(0.50), P90: at(0.90), P99: at(0.99), Max: sorted[len(sorted)-1]}
}

func needsToken(profile string) bool {
	switch strings.ToLower(profile) {
	case "", "catalog", "mixed":
		return true
	default:
		return false
	}
}

func scenariosForProfile(profile, email, password string) []scenario {
	signInOK := signInScenario("sign-in", email, password)
	switch strings.ToLower(profile) {
	case "", "catalog":
		return []scenario{listBooks, listBooks, listBooks, listAuthors}
	case "mixed":
		return []scenario{signInOK, listBooks, listBooks, listAuthors, searchBooks}
	case "auth":
		return []scenario{signInOK}
	case "error-heavy":
		return []scenario{signInScenario("sign-in-bad-password", email, password+"-wrong"), unauthorizedList}
	default:
		return nil
	}
}

func signInScenario(name, email, password string) scenario {
	return scenario{name: name, build: func(_ *rand.Rand, baseURL, _ string) (*http.Request, error) {
		return signInRequest(baseURL, email, password)
	}}
}

var (
	listBooks = scenario{name: "list-books", build: func(r *rand.Rand, baseURL, token string) (*http.Request, error) {
		return authed(fmt.Sprintf("%s/book?page=%d&size=10", baseURL, r.IntN(3)+1), token)
	}}
	listAuthors = scenario{name: "list-authors", build: func(r *rand.Rand, baseURL, token string) (*http.Request, error) {
		return authed(fmt.Sprintf("%s/author?page=%d&size=5", baseURL, r.IntN(2)+1), token)
	}}
	searchBooks = scenario{name: "search-books", build: func(r *rand.Rand, baseURL, token string) (*http.Request, error) {
		terms := []string{"the", "harbour", "night", "salt"}
		return authed(fmt.Sprintf("%s/book?title=%s", baseURL, terms[r.IntN(len(terms))]), token)
	}}
	unauthorizedList = scenario{name: "list-books-unauthorized", build: func(_ *rand.Rand, baseURL, _ string) (*http.Request, error) {
		return http.NewRequest(http.MethodGet, baseURL+"/book", nil)
	}}
)

func authed(url, token string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func signInRequest(baseURL, email, password string) (*http.Request, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+"/auth/sign-in", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func signIn(ctx context.Context, client *http.Client, baseURL, email, password string) (string, error) {
	req, err := signInRequest(baseURL, email, password)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var envelope struct {
		Message []string `json:"message"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode sign in response: %w", err)
	}
	if resp.StatusCode >= 300 || envelope.Data.Token == "" {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.Join(envelope.Message, "; "))
	}
	return envelope.Data.Token, nil
}
