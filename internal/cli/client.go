package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cashbot/internal/game"
)

// APIError is a non-2xx response from the cashbot API.
type APIError struct {
	Status            int
	Message           string
	RetryAfterSeconds int64
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   string
	UserID  string
}

func NewClient(baseURL, token, userID string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
		Token:  token,
		UserID: userID,
	}
}

type LotteryOverview struct {
	Status         game.LotteryStatus `json:"status"`
	NextDrawInText string             `json:"next_draw_in_human"`
}

func (c *Client) Me(ctx context.Context) (game.MoneyView, error) {
	var out game.MoneyView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/me", nil, &out)
	return out, err
}

func (c *Client) Leaderboard(ctx context.Context, page int) (game.LeaderboardPage, error) {
	var out game.LeaderboardPage
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/leaderboard?page="+strconv.Itoa(page), nil, &out)
	return out, err
}

func (c *Client) Deposit(ctx context.Context, amount string) (game.Account, error) {
	var out game.Account
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/bank/deposit", map[string]any{"amount": amount}, &out)
	return out, err
}

func (c *Client) Withdraw(ctx context.Context, amount string) (game.Account, error) {
	var out game.Account
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/bank/withdraw", map[string]any{"amount": amount}, &out)
	return out, err
}

func (c *Client) Pay(ctx context.Context, to, amount string) (game.PaymentResult, error) {
	var out game.PaymentResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/pay", map[string]any{"to": to, "amount": amount}, &out)
	return out, err
}

// Earn runs one of the cooldown-gated actions: work, crime or hustle.
func (c *Client) Earn(ctx context.Context, action string) (game.EarningResult, error) {
	var out game.EarningResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/earn/"+url.PathEscape(action), nil, &out)
	return out, err
}

func (c *Client) Cooldowns(ctx context.Context) (map[string]int64, error) {
	var out struct {
		Remaining map[string]int64 `json:"remaining_seconds"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/cooldowns", nil, &out)
	return out.Remaining, err
}

func (c *Client) Rob(ctx context.Context, target string) (game.RobberyResult, error) {
	var out game.RobberyResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/rob", map[string]any{"target": target}, &out)
	return out, err
}

func (c *Client) Robberies(ctx context.Context, page int) (game.RobberyBoard, error) {
	var out game.RobberyBoard
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/robberies?page="+strconv.Itoa(page), nil, &out)
	return out, err
}

func (c *Client) Roulette(ctx context.Context, bet, amount string) (game.RouletteResult, error) {
	var out game.RouletteResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/roulette", map[string]any{"bet": bet, "amount": amount}, &out)
	return out, err
}

func (c *Client) Dice(ctx context.Context, amount string, number int) (game.DiceResult, error) {
	var out game.DiceResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/dice", map[string]any{"amount": amount, "number": number}, &out)
	return out, err
}

func (c *Client) StartBlackjack(ctx context.Context, amount string) (game.BlackjackView, error) {
	var out game.BlackjackView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/blackjack", map[string]any{"amount": amount}, &out)
	return out, err
}

// BlackjackMove is hit or stand.
func (c *Client) BlackjackMove(ctx context.Context, id, move string) (game.BlackjackView, error) {
	var out game.BlackjackView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/blackjack/"+url.PathEscape(id)+"/"+url.PathEscape(move), nil, &out)
	return out, err
}

func (c *Client) Challenge(ctx context.Context, opponent, amount string) (game.DuelView, error) {
	body := map[string]any{"opponent": opponent}
	if amount != "" {
		body["amount"] = amount
	}
	var out game.DuelView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/rps", body, &out)
	return out, err
}

func (c *Client) Duel(ctx context.Context, id string) (game.DuelView, error) {
	var out game.DuelView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/rps/"+url.PathEscape(id), nil, &out)
	return out, err
}

// DuelAnswer is accept or decline.
func (c *Client) DuelAnswer(ctx context.Context, id, answer string) (game.DuelView, error) {
	var out game.DuelView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/rps/"+url.PathEscape(id)+"/"+url.PathEscape(answer), nil, &out)
	return out, err
}

func (c *Client) Choose(ctx context.Context, id, hand string) (game.DuelView, error) {
	var out game.DuelView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/rps/"+url.PathEscape(id)+"/choose", map[string]any{"hand": hand}, &out)
	return out, err
}

func (c *Client) Lottery(ctx context.Context) (LotteryOverview, error) {
	var out LotteryOverview
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/lottery", nil, &out)
	return out, err
}

func (c *Client) MyTickets(ctx context.Context) ([]int, error) {
	var out struct {
		Tickets []int `json:"tickets"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/lottery/tickets", nil, &out)
	return out.Tickets, err
}

func (c *Client) BuyTickets(ctx context.Context, count int) (game.TicketPurchase, error) {
	var out game.TicketPurchase
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/lottery/tickets", map[string]any{"count": count}, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.UserID != "" {
		req.Header.Set("X-User-ID", c.UserID)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	var payload struct {
		Error      string `json:"error"`
		RetryAfter int64  `json:"retry_after_seconds"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.RetryAfterSeconds = payload.RetryAfter
	}
	return apiErr
}
