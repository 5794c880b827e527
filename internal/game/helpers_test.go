package game_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cashbot/internal/game"
	"cashbot/internal/store"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) game.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs due callbacks on the caller's goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// scriptedRNG replays queued values and falls back to fixed defaults. Shuffle
// leaves the deck in its fresh order.
type scriptedRNG struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
}

func (r *scriptedRNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRNG) Shuffle(int, func(i, j int)) {}

type recordingAnnouncer struct {
	mu       sync.Mutex
	draws    []game.DrawResult
	expiries []game.SessionExpiry
}

func (a *recordingAnnouncer) AnnounceDraw(_ context.Context, res game.DrawResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.draws = append(a.draws, res)
}

func (a *recordingAnnouncer) AnnounceExpiry(_ context.Context, ev game.SessionExpiry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.expiries = append(a.expiries, ev)
}

type harness struct {
	svc   *game.Service
	store *store.Memory
	clock *fakeClock
	rng   *scriptedRNG
	ann   *recordingAnnouncer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store: store.NewMemory(),
		clock: newFakeClock(),
		rng:   &scriptedRNG{},
		ann:   &recordingAnnouncer{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.svc = game.NewService(h.store, logger,
		game.WithClock(h.clock),
		game.WithRNG(h.rng),
		game.WithAnnouncer(h.ann),
	)
	return h
}

func (h *harness) cash(t *testing.T, userID string) int64 {
	t.Helper()
	a, err := h.store.GetAccount(context.Background(), userID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	return a.Cash
}

func (h *harness) wealth(t *testing.T) int64 {
	t.Helper()
	var total int64
	for _, a := range h.store.Snapshot() {
		total += a.Wealth()
	}
	return total
}

func amount(v int64) game.Amount {
	return game.Amount{Value: v}
}
