package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenVerifier(t *testing.T) {
	v := NewTokenVerifier(" s3cret ")
	if !v.Enabled() {
		t.Fatalf("expected verifier to be enabled")
	}
	if err := v.Verify("s3cret"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := v.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token, got %v", err)
	}
	if err := v.Verify("nope"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}

	open := NewTokenVerifier("")
	if open.Enabled() || open.Verify("") != nil {
		t.Fatalf("empty token must accept every caller")
	}
}

func TestUserID(t *testing.T) {
	if id, err := UserID(" 1234 "); err != nil || id != "1234" {
		t.Fatalf("id=%q err=%v", id, err)
	}
	for _, raw := range []string{"", "   ", "a b"} {
		if _, err := UserID(raw); err == nil {
			t.Fatalf("raw=%q expected error", raw)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	v := NewTokenVerifier("s3cret")
	if id, err := v.Authenticate("s3cret", "42"); err != nil || id != "42" {
		t.Fatalf("service token: id=%q err=%v", id, err)
	}
	if _, err := v.Authenticate("s3cret", ""); !errors.Is(err, ErrMissingUser) {
		t.Fatalf("service token without user: %v", err)
	}
	if _, err := v.Authenticate("", "42"); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("missing token: %v", err)
	}

	tok, _, err := NewPlayerTokens("s3cret", time.Hour).Issue("77")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if id, err := v.Authenticate(tok, ""); err != nil || id != "77" {
		t.Fatalf("player token: id=%q err=%v", id, err)
	}
	if _, err := v.Authenticate(tok, "42"); err == nil {
		t.Fatalf("player token must not act for another user")
	}
	if _, err := v.Authenticate("garbage", "42"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token: %v", err)
	}

	open := NewTokenVerifier("")
	if id, err := open.Authenticate("", "9"); err != nil || id != "9" {
		t.Fatalf("open verifier: id=%q err=%v", id, err)
	}
}
