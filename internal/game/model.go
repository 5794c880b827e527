package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	StartingCash    = int64(10_000)
	StartingJackpot = int64(100_000)
	TicketPrice     = int64(100)

	MinTicketNumber       = 1
	MaxTicketNumber       = 99
	MaxTicketsPerPurchase = 1_000

	CooldownWindow = time.Hour
	DrawInterval   = 24 * time.Hour
	DrawPollEvery  = time.Hour

	BlackjackIdleTimeout = 30 * time.Second
	DuelIdleTimeout      = 60 * time.Second

	LeaderboardPageSize = 10
)

var (
	ErrInvalidAmount     = errors.New("amount must be a positive number or 'all'")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTarget     = errors.New("invalid target")
	ErrNotYourGame       = errors.New("this is not your game")
	ErrAlreadyActed      = errors.New("you already made your choice")
	ErrOnCooldown        = errors.New("action on cooldown")
	ErrNothingToSteal    = errors.New("target has nothing to steal")
	ErrInvalidChoice     = errors.New("invalid choice")
	ErrSessionNotFound   = errors.New("game not found")
	ErrSessionEnded      = errors.New("game already ended")
	ErrNotAccepted       = errors.New("challenge not accepted yet")
)

// CooldownError reports how long the caller still has to wait.
type CooldownError struct {
	Kind      CooldownKind
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s on cooldown: %s remaining", e.Kind, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Unwrap() error {
	return ErrOnCooldown
}

// Amount is a user supplied quantity: either a concrete value or "all".
type Amount struct {
	Value int64
	All   bool
}

func ParseAmount(raw string) (Amount, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "all" {
		return Amount{All: true}, nil
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil || n <= 0 {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{Value: n}, nil
}

func (a Amount) IsZero() bool {
	return !a.All && a.Value == 0
}

// resolve turns the amount into a concrete positive value against balance.
// It does not check sufficiency.
func (a Amount) resolve(balance int64) (int64, error) {
	n := a.Value
	if a.All {
		n = balance
	}
	if n <= 0 {
		return 0, ErrInvalidAmount
	}
	return n, nil
}

func insufficient(need, have int64) error {
	return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, need, have)
}

// CooldownRemaining is zero once window has fully elapsed since last.
func CooldownRemaining(last, now time.Time, window time.Duration) time.Duration {
	elapsed := now.Sub(last)
	if elapsed >= window {
		return 0
	}
	return window - elapsed
}

func pageCount(total, size int) int {
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

func clampPage(page, pages int) int {
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}
