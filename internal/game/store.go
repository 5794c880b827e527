package game

import (
	"context"
	"time"
)

// Store is the persistence contract of the economy. Implementations make
// every single call atomic; the Service layers per-account exclusivity on
// top for check-then-act sequences.
type Store interface {
	// GetAccount returns the account, creating it with the starting
	// balance on first access.
	GetAccount(ctx context.Context, userID string) (Account, error)
	// AdjustAccount applies both deltas as one unit and returns the result.
	// It creates the account first if needed and never rejects negative cash.
	AdjustAccount(ctx context.Context, userID string, cashDelta, bankDelta int64) (Account, error)
	GetCooldown(ctx context.Context, userID string, kind CooldownKind) (time.Time, bool, error)
	SetCooldown(ctx context.Context, userID string, kind CooldownKind, at time.Time) error
	ListAccountsByWealthDesc(ctx context.Context) ([]Account, error)

	GetRobberyStats(ctx context.Context, userID string) (RobberyRecord, error)
	RecordRobbery(ctx context.Context, userID string, amount int64, success bool) (RobberyRecord, error)
	ListRobberyStatsDesc(ctx context.Context) ([]RobberyRecord, error)

	GetLotteryState(ctx context.Context) (LotteryState, error)
	// AddTickets appends numbers to the user's tickets and grows the
	// jackpot by jackpotDelta in the same write.
	AddTickets(ctx context.Context, userID string, numbers []int, jackpotDelta int64) error
	SetJackpot(ctx context.Context, amount int64) error
	SetLastDraw(ctx context.Context, at time.Time) error
	// ResetLottery restores the starting jackpot, clears every ticket and
	// stamps the draw time.
	ResetLottery(ctx context.Context, at time.Time) error
	// CompleteDraw credits prize to each winner's cash and resets the
	// lottery as ResetLottery does. Either all of it lands or none of it.
	CompleteDraw(ctx context.Context, at time.Time, winners []string, prize int64) error
}

// Announcer receives results produced outside a foreground command.
type Announcer interface {
	AnnounceDraw(ctx context.Context, res DrawResult)
	AnnounceExpiry(ctx context.Context, ev SessionExpiry)
}

type nopAnnouncer struct{}

func (nopAnnouncer) AnnounceDraw(context.Context, DrawResult)     {}
func (nopAnnouncer) AnnounceExpiry(context.Context, SessionExpiry) {}
