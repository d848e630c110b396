package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/response"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
)

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  int
	ResetAt    time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

type FailureMode string

const (
	FailOpen   FailureMode = "fail_open"
	FailClosed FailureMode = "fail_closed"
)

// KeyFunc derives the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

type fixedWindow struct {
	count       int
	windowStart time.Time
}

type localFixedWindowLimiter struct {
	mu      sync.Mutex
	store   map[string]*fixedWindow
	cleanup time.Time
	now     func() time.Time
}

type RateLimiter struct {
	limiter Limiter
	limit   int
	window  time.Duration
	mode    FailureMode
	scope   string
	keyFunc KeyFunc
}

func NewLocalFixedWindowLimiter() Limiter {
	return &localFixedWindowLimiter{
		store:   make(map[string]*fixedWindow),
		cleanup: time.Now().Add(time.Minute),
		now:     time.Now,
	}
}

func NewRateLimiter(limit int, window time.Duration, scope string) *RateLimiter {
	return NewDistributedRateLimiter(NewLocalFixedWindowLimiter(), limit, window, FailClosed, scope)
}

func NewDistributedRateLimiter(limiter Limiter, limit int, window time.Duration, mode FailureMode, scope string) *RateLimiter {
	return NewDistributedRateLimiterWithKey(limiter, limit, window, mode, scope, clientIPKey)
}

func NewDistributedRateLimiterWithKey(limiter Limiter, limit int, window time.Duration, mode FailureMode, scope string, keyFunc KeyFunc) *RateLimiter {
	if scope == "" {
		scope = "api"
	}
	if keyFunc == nil {
		keyFunc = clientIPKey
	}
	return &RateLimiter{
		limiter: limiter,
		limit:   limit,
		window:  window,
		mode:    mode,
		scope:   scope,
		keyFunc: keyFunc,
	}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			decision, err := rl.limiter.Allow(ctx, rl.scope+":"+rl.keyFunc(r), rl.limit, rl.window)
			if err != nil {
				if rl.mode == FailOpen {
					observability.RecordRateLimitDecision(ctx, rl.scope, "backend_error_allowed", string(rl.mode))
					observability.Logger().WarnContext(ctx, "rate limiter backend unavailable, allowing request",
						"scope", rl.scope,
						"mode", string(rl.mode),
						"error", err.Error(),
					)
					next.ServeHTTP(w, r)
					return
				}
				observability.RecordRateLimitDecision(ctx, rl.scope, "backend_error_rejected", string(rl.mode))
				w.Header().Set("Retry-After", retryAfterHeader(rl.window))
				response.Error(w, r, apperr.New(apperr.KindTooManyRequests, "Too Many Requests"))
				return
			}

			rl.setHeaders(w, decision)
			if !decision.Allowed {
				observability.RecordRateLimitDecision(ctx, rl.scope, "rejected", string(rl.mode))
				observability.RecordRateLimitRetryAfter(ctx, rl.scope, decision.RetryAfter)
				w.Header().Set("Retry-After", retryAfterHeader(decision.RetryAfter))
				response.Error(w, r, apperr.New(apperr.KindTooManyRequests, "Too Many Requests"))
				return
			}
			observability.RecordRateLimitDecision(ctx, rl.scope, "allowed", string(rl.mode))
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) setHeaders(w http.ResponseWriter, d Decision) {
	resetAt := d.ResetAt
	if resetAt.IsZero() {
		resetAt = time.Now().Add(rl.window)
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(d.Remaining, 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

func (rl *localFixedWindowLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.After(rl.cleanup) {
		for k, v := range rl.store {
			if now.Sub(v.windowStart) > 2*window {
				delete(rl.store, k)
			}
		}
		rl.cleanup = now.Add(window)
	}

	entry, ok := rl.store[key]
	if !ok || now.Sub(entry.windowStart) >= window {
		entry = &fixedWindow{count: 1, windowStart: now}
		rl.store[key] = entry
		return Decision{Allowed: true, Remaining: limit - 1, ResetAt: now.Add(window)}, nil
	}
	resetAt := entry.windowStart.Add(window)
	if entry.count >= limit {
		return Decision{Allowed: false, RetryAfter: max(resetAt.Sub(now), 0), ResetAt: resetAt}, nil
	}
	entry.count++
	return Decision{Allowed: true, Remaining: limit - entry.count, ResetAt: resetAt}, nil
}

// SubjectOrIPKeyFunc counts authenticated callers by user id and everyone else by address.
func SubjectOrIPKeyFunc(tokens TokenParser) KeyFunc {
	return func(r *http.Request) string {
		if raw := bearerToken(r); raw != "" && tokens != nil {
			if claims, err := tokens.ParseAccessToken(raw); err == nil && claims.UserID != "" {
				return "sub:" + claims.UserID
			}
		}
		return clientIPKey(r)
	}
}

func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func retryAfterHeader(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
