package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cashbot/internal/auth"
	"cashbot/internal/config"
	"cashbot/internal/game"
	"cashbot/internal/store"
)

const testToken = "test-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := game.NewService(store.NewMemory(), logger, game.WithRNG(game.NewRNG(7)))
	srv := New(config.APIConfig{}, logger, auth.NewTokenVerifier(testToken), svc)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, user string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer res.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res.StatusCode, out
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	res, err := ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", res.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/me", nil)
	req.Header.Set(UserHeader, "u1")
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token status=%d", res.StatusCode)
	}

	if status, _ := call(t, ts, http.MethodGet, "/v1/me", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("missing user status=%d", status)
	}
}

func TestPlayerTokenActsAsSubject(t *testing.T) {
	ts := newTestServer(t)
	tok, _, err := auth.NewPlayerTokens(testToken, time.Hour).Issue("p1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	get := func(user string) int {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		if user != "" {
			req.Header.Set(UserHeader, user)
		}
		res, err := ts.Client().Do(req)
		if err != nil {
			t.Fatalf("do: %v", err)
		}
		res.Body.Close()
		return res.StatusCode
	}
	if status := get(""); status != http.StatusOK {
		t.Fatalf("player token status=%d", status)
	}
	if status := get("someone-else"); status != http.StatusUnauthorized {
		t.Fatalf("impersonation status=%d", status)
	}
}

func TestMoneyAndBank(t *testing.T) {
	ts := newTestServer(t)

	status, out := call(t, ts, http.MethodGet, "/v1/me", "u1", nil)
	if status != http.StatusOK || out["cash"].(float64) != float64(game.StartingCash) {
		t.Fatalf("me status=%d out=%v", status, out)
	}

	status, out = call(t, ts, http.MethodPost, "/v1/bank/deposit", "u1", map[string]any{"amount": "4,000"})
	if status != http.StatusOK || out["bank"].(float64) != 4000 || out["cash"].(float64) != 6000 {
		t.Fatalf("deposit status=%d out=%v", status, out)
	}

	status, out = call(t, ts, http.MethodPost, "/v1/bank/withdraw", "u1", map[string]any{"amount": "all"})
	if status != http.StatusOK || out["bank"].(float64) != 0 {
		t.Fatalf("withdraw status=%d out=%v", status, out)
	}

	if status, _ := call(t, ts, http.MethodPost, "/v1/bank/withdraw", "u1", map[string]any{"amount": 1}); status != http.StatusPaymentRequired {
		t.Fatalf("overdraw status=%d", status)
	}
	if status, _ := call(t, ts, http.MethodPost, "/v1/bank/deposit", "u1", map[string]any{"amount": "-3"}); status != http.StatusBadRequest {
		t.Fatalf("negative status=%d", status)
	}
	if status, _ := call(t, ts, http.MethodPost, "/v1/bank/deposit", "u1", map[string]any{"amount": 1, "extra": true}); status != http.StatusBadRequest {
		t.Fatalf("unknown field status=%d", status)
	}
}

func TestPayAndSelfPay(t *testing.T) {
	ts := newTestServer(t)

	status, out := call(t, ts, http.MethodPost, "/v1/pay", "u1", map[string]any{"to": "u2", "amount": 2500})
	if status != http.StatusOK || out["amount"].(float64) != 2500 {
		t.Fatalf("pay status=%d out=%v", status, out)
	}
	if status, _ := call(t, ts, http.MethodPost, "/v1/pay", "u1", map[string]any{"to": "u1", "amount": 1}); status != http.StatusBadRequest {
		t.Fatalf("self pay status=%d", status)
	}
	_, out = call(t, ts, http.MethodGet, "/v1/me", "u2", nil)
	if out["cash"].(float64) != 12_500 {
		t.Fatalf("recipient=%v", out)
	}
}

func TestWorkCooldownReturns429(t *testing.T) {
	ts := newTestServer(t)

	if status, _ := call(t, ts, http.MethodPost, "/v1/earn/work", "u1", nil); status != http.StatusOK {
		t.Fatalf("first work status=%d", status)
	}
	status, out := call(t, ts, http.MethodPost, "/v1/earn/work", "u1", nil)
	if status != http.StatusTooManyRequests || out["retry_after_seconds"].(float64) <= 0 {
		t.Fatalf("second work status=%d out=%v", status, out)
	}

	_, out = call(t, ts, http.MethodGet, "/v1/cooldowns", "u1", nil)
	remaining := out["remaining_seconds"].(map[string]any)
	if remaining["work"].(float64) <= 0 || remaining["crime"].(float64) != 0 {
		t.Fatalf("cooldowns=%v", remaining)
	}
}

func TestBlackjackRoutes(t *testing.T) {
	ts := newTestServer(t)

	status, out := call(t, ts, http.MethodPost, "/v1/blackjack", "u1", map[string]any{"amount": 500})
	if status != http.StatusCreated {
		t.Fatalf("start status=%d out=%v", status, out)
	}
	id := out["id"].(string)

	if status, _ := call(t, ts, http.MethodPost, "/v1/blackjack/"+id+"/hit", "u2", nil); status != http.StatusForbidden {
		t.Fatalf("foreign hit status=%d", status)
	}
	if status, _ := call(t, ts, http.MethodGet, "/v1/blackjack/"+id, "u2", nil); status != http.StatusForbidden {
		t.Fatalf("foreign view status=%d", status)
	}
	if status, out := call(t, ts, http.MethodGet, "/v1/blackjack/"+id, "u1", nil); status != http.StatusOK || out["owner"] != "u1" {
		t.Fatalf("owner view status=%d out=%v", status, out)
	}
	if status, _ := call(t, ts, http.MethodPost, "/v1/blackjack/"+id+"/stand", "u1", nil); status != http.StatusOK {
		t.Fatalf("stand status=%d", status)
	}
	if status, _ := call(t, ts, http.MethodGet, "/v1/blackjack/"+id, "u1", nil); status != http.StatusNotFound {
		t.Fatalf("finished round status=%d", status)
	}
}

func TestDuelRoutes(t *testing.T) {
	ts := newTestServer(t)

	status, out := call(t, ts, http.MethodPost, "/v1/rps", "a", map[string]any{"opponent": "b"})
	if status != http.StatusCreated || out["bet"].(float64) != 0 {
		t.Fatalf("friendly challenge status=%d out=%v", status, out)
	}
	id := out["id"].(string)

	if status, _ := call(t, ts, http.MethodGet, "/v1/rps/"+id, "c", nil); status != http.StatusForbidden {
		t.Fatalf("bystander view status=%d", status)
	}
	for _, user := range []string{"a", "b"} {
		if status, _ := call(t, ts, http.MethodGet, "/v1/rps/"+id, user, nil); status != http.StatusOK {
			t.Fatalf("%s view status=%d", user, status)
		}
	}

	if status, _ := call(t, ts, http.MethodPost, "/v1/rps/"+id+"/choose", "a", map[string]any{"hand": "rock"}); status != http.StatusConflict {
		t.Fatalf("choose before accept status=%d", status)
	}
	if status, _ := call(t, ts, http.MethodPost, "/v1/rps/"+id+"/accept", "b", nil); status != http.StatusOK {
		t.Fatalf("accept status=%d", status)
	}
	if status, _ := call(t, ts, http.MethodPost, "/v1/rps/"+id+"/choose", "a", map[string]any{"hand": "lizard"}); status != http.StatusBadRequest {
		t.Fatalf("bad hand status=%d", status)
	}
	_, _ = call(t, ts, http.MethodPost, "/v1/rps/"+id+"/choose", "a", map[string]any{"hand": "rock"})
	status, out = call(t, ts, http.MethodPost, "/v1/rps/"+id+"/choose", "b", map[string]any{"hand": "paper"})
	if status != http.StatusOK || out["winner"] != "b" {
		t.Fatalf("resolve status=%d out=%v", status, out)
	}
}

func TestLotteryRoutes(t *testing.T) {
	ts := newTestServer(t)

	status, out := call(t, ts, http.MethodPost, "/v1/lottery/tickets", "u1", map[string]any{"count": 2})
	if status != http.StatusOK || out["cost"].(float64) != 200 {
		t.Fatalf("buy status=%d out=%v", status, out)
	}
	if status, _ := call(t, ts, http.MethodPost, "/v1/lottery/tickets", "u1", map[string]any{"count": 0}); status != http.StatusBadRequest {
		t.Fatalf("zero tickets status=%d", status)
	}
	_, out = call(t, ts, http.MethodGet, "/v1/lottery/tickets", "u1", nil)
	if len(out["tickets"].([]any)) != 2 {
		t.Fatalf("tickets=%v", out)
	}
	_, out = call(t, ts, http.MethodGet, "/v1/lottery", "u1", nil)
	st := out["status"].(map[string]any)
	if st["jackpot"].(float64) != float64(game.StartingJackpot+200) || st["first_draw_pending"] != true {
		t.Fatalf("status=%v", st)
	}
}

func TestRobNothingToSteal(t *testing.T) {
	ts := newTestServer(t)

	_, _ = call(t, ts, http.MethodPost, "/v1/bank/deposit", "victim", map[string]any{"amount": "all"})
	status, out := call(t, ts, http.MethodPost, "/v1/rob", "thief", map[string]any{"target": "victim"})
	if status != http.StatusConflict || out["result"] == nil {
		t.Fatalf("status=%d out=%v", status, out)
	}
	_, out = call(t, ts, http.MethodGet, "/v1/robberies", "thief", nil)
	self := out["self"].(map[string]any)
	if self["failed_robberies"].(float64) != 1 {
		t.Fatalf("self=%v", self)
	}
}

func TestParseAmount(t *testing.T) {
	if a, err := parseAmount(json.RawMessage(`"all"`), false); err != nil || !a.All {
		t.Fatalf("all: %+v %v", a, err)
	}
	if a, err := parseAmount(json.RawMessage(`250`), false); err != nil || a.Value != 250 {
		t.Fatalf("number: %+v %v", a, err)
	}
	if _, err := parseAmount(nil, false); err == nil {
		t.Fatalf("absent amount must be rejected")
	}
	if a, err := parseAmount(nil, true); err != nil || !a.IsZero() {
		t.Fatalf("friendly: %+v %v", a, err)
	}
}
