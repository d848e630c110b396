package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	hash, err := h.Hash("Stronger#Pass1234")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !h.Verify("Stronger#Pass1234", hash) {
		t.Fatal("expected password verification success")
	}
	if h.Verify("wrong-pass", hash) {
		t.Fatal("expected password verification failure")
	}
}

func TestHashIsSaltedAndUsesCost(t *testing.T) {
	h, err := NewPasswordHasher(5)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	a, err := h.Hash("same-input")
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	b, err := h.Hash("same-input")
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if a == b {
		t.Fatal("expected different salted outputs for identical input")
	}
	cost, err := bcrypt.Cost([]byte(a))
	if err != nil {
		t.Fatalf("read cost: %v", err)
	}
	if cost != 5 {
		t.Fatalf("expected cost 5, got %d", cost)
	}
}

func TestVerifyMalformedHashReturnsFalse(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		if h.Verify("anything", hash) {
			t.Fatalf("expected malformed hash %q to fail verification", hash)
		}
	}
}

func TestNewPasswordHasherRejectsOutOfRangeCost(t *testing.T) {
	for _, cost := range []int{0, 3, 32} {
		if _, err := NewPasswordHasher(cost); err == nil || !strings.Contains(err.Error(), "bcrypt cost") {
			t.Fatalf("expected cost %d to be rejected, got %v", cost, err)
		}
	}
	h, err := NewPasswordHasher(DefaultPasswordCost)
	if err != nil {
		t.Fatalf("default cost rejected: %v", err)
	}
	if h.Cost() != 10 {
		t.Fatalf("expected default cost 10, got %d", h.Cost())
	}
}

func FuzzPasswordRoundTrip(f *testing.F) {
	f.Add("2ZBGDoYDyzU!HVaAI4KbCousVK3hqJUEgR5eC", "other")
	f.Add("", "x")
	h, err := NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		f.Fatalf("new hasher: %v", err)
	}
	f.Fuzz(func(t *testing.T, p, p2 string) {
		if len(p) > 72 || len(p2) > 72 {
			t.Skip()
		}
		hash, err := h.Hash(p)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if !h.Verify(p, hash) {
			t.Fatalf("round trip failed for %q", p)
		}
		if p2 != p && h.Verify(p2, hash) {
			t.Fatalf("verify accepted %q for hash of %q", p2, p)
		}
	})
}
