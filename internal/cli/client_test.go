package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientSendsIdentityHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" || r.Header.Get("X-User-ID") != "u1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/v1/bank/deposit" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["amount"] != "all" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"user_id": "u1", "cash": 0, "bank": 10000})
	}))
	defer ts.Close()

	c := NewClient(ts.URL+"/", "tok", "u1")
	acct, err := c.Deposit(context.Background(), "all")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if acct.Bank != 10000 || acct.Cash != 0 {
		t.Fatalf("acct=%+v", acct)
	}
}

func TestClientDecodesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"work on cooldown: 59m0s remaining","retry_after_seconds":3540}`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, "", "u1").Earn(context.Background(), "work")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusTooManyRequests || apiErr.RetryAfterSeconds != 3540 {
		t.Fatalf("apiErr=%+v", apiErr)
	}
	if !IsAPIError(err) {
		t.Fatalf("IsAPIError must match")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	prev := Dir
	Dir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { Dir = prev })

	if _, err := LoadSession(); err == nil {
		t.Fatalf("expected missing session error")
	}
	if err := SaveSession(Session{UserID: "u1", Token: "tok"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s, err := LoadSession()
	if err != nil || s.UserID != "u1" || s.Token != "tok" {
		t.Fatalf("session=%+v err=%v", s, err)
	}
	if err := ClearSession(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := LoadSession(); err == nil {
		t.Fatalf("session must be gone")
	}
}
