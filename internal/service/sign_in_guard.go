package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// SignInGuardPolicy shapes the backoff applied after failed sign-ins. The first
// FreeAttempts failures cost nothing, later ones wait BaseDelay*Multiplier^n up to MaxDelay.
type SignInGuardPolicy struct {
	FreeAttempts int
	BaseDelay    time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	ResetWindow  time.Duration
}

// SignInGuard tracks failed sign-ins per email and per client IP.
type SignInGuard interface {
	Check(ctx context.Context, email, ip string) (time.Duration, error)
	RegisterFailure(ctx context.Context, email, ip string) (time.Duration, error)
	Reset(ctx context.Context, email, ip string) error
}

type NoopSignInGuard struct{}

func NewNoopSignInGuard() *NoopSignInGuard {
	return &NoopSignInGuard{}
}

func (g *NoopSignInGuard) Check(context.Context, string, string) (time.Duration, error) {
	return 0, nil
}

func (g *NoopSignInGuard) RegisterFailure(context.Context, string, string) (time.Duration, error) {
	return 0, nil
}

func (g *NoopSignInGuard) Reset(context.Context, string, string) error {
	return nil
}

type signInFailures struct {
	count         int
	lastFailureAt time.Time
	cooldownUntil time.Time
}

type InMemorySignInGuard struct {
	mu     sync.Mutex
	policy SignInGuardPolicy
	data   map[string]signInFailures
	now    func() time.Time
}

func NewInMemorySignInGuard(policy SignInGuardPolicy) *InMemorySignInGuard {
	return &InMemorySignInGuard{
		policy: normalizeSignInGuardPolicy(policy),
		data:   make(map[string]signInFailures),
		now:    time.Now,
	}
}

func (g *InMemorySignInGuard) Check(_ context.Context, email, ip string) (time.Duration, error) {
	now := g.now().UTC()
	g.mu.Lock()
	defer g.mu.Unlock()

	return max(
		g.activeCooldownLocked(now, signInStateKey("email", normalizeSignInEmail(email))),
		g.activeCooldownLocked(now, signInStateKey("ip", normalizeSignInIP(ip))),
	), nil
}

func (g *InMemorySignInGuard) RegisterFailure(_ context.Context, email, ip string) (time.Duration, error) {
	now := g.now().UTC()
	g.mu.Lock()
	defer g.mu.Unlock()

	return max(
		g.bumpLocked(now, signInStateKey("email", normalizeSignInEmail(email))),
		g.bumpLocked(now, signInStateKey("ip", normalizeSignInIP(ip))),
	), nil
}

// Reset clears the email dimension only. A successful sign-in must not wipe
// failures other accounts racked up from the same address.
func (g *InMemorySignInGuard) Reset(_ context.Context, email, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.data, signInStateKey("email", normalizeSignInEmail(email)))
	return nil
}

func (g *InMemorySignInGuard) bumpLocked(now time.Time, key string) time.Duration {
	entry := g.data[key]
	if entry.lastFailureAt.IsZero() || now.Sub(entry.lastFailureAt) > g.policy.ResetWindow {
		entry.count = 0
	}
	entry.count++
	entry.lastFailureAt = now
	delay := signInDelay(g.policy, entry.count)
	entry.cooldownUntil = now.Add(delay)
	g.data[key] = entry
	return delay
}

func (g *InMemorySignInGuard) activeCooldownLocked(now time.Time, key string) time.Duration {
	entry, ok := g.data[key]
	if !ok {
		return 0
	}
	if now.Sub(entry.lastFailureAt) > g.policy.ResetWindow {
		delete(g.data, key)
		return 0
	}
	if !now.Before(entry.cooldownUntil) {
		return 0
	}
	return entry.cooldownUntil.Sub(now)
}

func signInDelay(policy SignInGuardPolicy, failures int) time.Duration {
	if failures <= policy.FreeAttempts {
		return 0
	}
	power := math.Pow(policy.Multiplier, float64(failures-policy.FreeAttempts-1))
	delay := time.Duration(float64(policy.BaseDelay) * power)
	if delay > policy.MaxDelay || delay < 0 {
		return policy.MaxDelay
	}
	return delay
}

func signInStateKey(dim, value string) string {
	return fmt.Sprintf("sign_in:%s:%s", dim, value)
}

func normalizeSignInEmail(email string) string {
	v := strings.TrimSpace(strings.ToLower(email))
	if v == "" {
		return "anonymous"
	}
	return v
}

func normalizeSignInIP(ip string) string {
	v := strings.TrimSpace(strings.ToLower(ip))
	if v == "" {
		return "unknown"
	}
	return v
}

func normalizeSignInGuardPolicy(policy SignInGuardPolicy) SignInGuardPolicy {
	if policy.FreeAttempts < 0 {
		policy.FreeAttempts = 0
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 2 * time.Second
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 2
	}
	if policy.MaxDelay < policy.BaseDelay {
		policy.MaxDelay = 5 * time.Minute
	}
	if policy.ResetWindow <= 0 {
		policy.ResetWindow = 30 * time.Minute
	}
	return policy
}

type clientIPContextKey struct{}

// WithClientIP records the caller address for the sign-in guard.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// ClientIPFromContext returns the address recorded by WithClientIP.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
