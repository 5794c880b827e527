package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"cashbot/internal/game"
)

// Memory keeps the whole economy in process memory. State is lost on exit.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*game.Account
	robbery  map[string]*game.RobberyRecord
	lottery  game.LotteryState
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]*game.Account),
		robbery:  make(map[string]*game.RobberyRecord),
		lottery:  game.LotteryState{Jackpot: game.StartingJackpot, Tickets: map[string][]int{}},
	}
}

func (m *Memory) account(userID string) *game.Account {
	a, ok := m.accounts[userID]
	if !ok {
		a = &game.Account{UserID: userID, Cash: game.StartingCash}
		m.accounts[userID] = a
	}
	return a
}

func (m *Memory) GetAccount(_ context.Context, userID string) (game.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyAccount(m.account(userID)), nil
}

func (m *Memory) AdjustAccount(_ context.Context, userID string, cashDelta, bankDelta int64) (game.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.account(userID)
	if a.Bank+bankDelta < 0 {
		return game.Account{}, fmt.Errorf("adjust %s: bank would go negative", userID)
	}
	a.Cash += cashDelta
	a.Bank += bankDelta
	return copyAccount(a), nil
}

func (m *Memory) GetCooldown(_ context.Context, userID string, kind game.CooldownKind) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return time.Time{}, false, nil
	}
	at := cooldownField(a, kind)
	if at == nil || *at == nil {
		return time.Time{}, false, nil
	}
	return **at, true, nil
}

func (m *Memory) SetCooldown(_ context.Context, userID string, kind game.CooldownKind, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	field := cooldownField(m.account(userID), kind)
	if field == nil {
		return fmt.Errorf("unknown cooldown kind %q", kind)
	}
	*field = &at
	return nil
}

func (m *Memory) ListAccountsByWealthDesc(context.Context) ([]game.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]game.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, copyAccount(a))
	}
	slices.SortFunc(out, func(a, b game.Account) int {
		if c := cmp.Compare(b.Wealth(), a.Wealth()); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out, nil
}

func (m *Memory) GetRobberyStats(_ context.Context, userID string) (game.RobberyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.robbery[userID]; ok {
		return *r, nil
	}
	return game.RobberyRecord{UserID: userID}, nil
}

func (m *Memory) RecordRobbery(_ context.Context, userID string, amount int64, success bool) (game.RobberyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.robbery[userID]
	if !ok {
		r = &game.RobberyRecord{UserID: userID}
		m.robbery[userID] = r
	}
	if success {
		r.Successful++
		r.TotalStolen += amount
	} else {
		r.Failed++
	}
	return *r, nil
}

func (m *Memory) ListRobberyStatsDesc(context.Context) ([]game.RobberyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]game.RobberyRecord, 0, len(m.robbery))
	for _, r := range m.robbery {
		out = append(out, *r)
	}
	sortRobbery(out)
	return out, nil
}

func (m *Memory) GetLotteryState(context.Context) (game.LotteryState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := game.LotteryState{Jackpot: m.lottery.Jackpot, Tickets: make(map[string][]int, len(m.lottery.Tickets))}
	for user, nums := range m.lottery.Tickets {
		out.Tickets[user] = slices.Clone(nums)
	}
	if m.lottery.LastDraw != nil {
		at := *m.lottery.LastDraw
		out.LastDraw = &at
	}
	return out, nil
}

func (m *Memory) AddTickets(_ context.Context, userID string, numbers []int, jackpotDelta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lottery.Tickets[userID] = append(m.lottery.Tickets[userID], numbers...)
	m.lottery.Jackpot += jackpotDelta
	return nil
}

func (m *Memory) SetJackpot(_ context.Context, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lottery.Jackpot = amount
	return nil
}

func (m *Memory) SetLastDraw(_ context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lottery.LastDraw = &at
	return nil
}

func (m *Memory) ResetLottery(_ context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.lottery.Tickets)
	m.lottery.Jackpot = game.StartingJackpot
	m.lottery.LastDraw = &at
	return nil
}

func (m *Memory) CompleteDraw(_ context.Context, at time.Time, winners []string, prize int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range winners {
		m.account(w).Cash += prize
	}
	clear(m.lottery.Tickets)
	m.lottery.Jackpot = game.StartingJackpot
	m.lottery.LastDraw = &at
	return nil
}

// Snapshot returns a copy of every account, for tests and diagnostics.
func (m *Memory) Snapshot() map[string]game.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]game.Account, len(m.accounts))
	for id, a := range m.accounts {
		out[id] = copyAccount(a)
	}
	return out
}

func cooldownField(a *game.Account, kind game.CooldownKind) **time.Time {
	switch kind {
	case game.CooldownWork:
		return &a.LastWork
	case game.CooldownCrime:
		return &a.LastCrime
	}
	return nil
}

func copyAccount(a *game.Account) game.Account {
	out := *a
	if a.LastWork != nil {
		t := *a.LastWork
		out.LastWork = &t
	}
	if a.LastCrime != nil {
		t := *a.LastCrime
		out.LastCrime = &t
	}
	return out
}

func sortRobbery(rows []game.RobberyRecord) {
	slices.SortFunc(rows, func(a, b game.RobberyRecord) int {
		if c := cmp.Compare(b.TotalStolen, a.TotalStolen); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
}

var _ game.Store = (*Memory)(nil)
