package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Service struct {
	store     Store
	log       *slog.Logger
	clock     Clock
	rng       RNG
	announcer Announcer

	accounts  keyedMutex
	lotteryMu sync.Mutex

	blackjacks registry[*blackjackSession]
	duels      registry[*duelSession]
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithRNG(r RNG) Option {
	return func(s *Service) { s.rng = r }
}

func WithAnnouncer(a Announcer) Option {
	return func(s *Service) { s.announcer = a }
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:     store,
		log:       logger,
		clock:     SystemClock(),
		rng:       NewRNG(uint64(time.Now().UnixNano())),
		announcer: nopAnnouncer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAnnouncer swaps the announcement sink. Adapters that are built after
// the service (the Discord bot needs it to route commands) use this.
func (s *Service) SetAnnouncer(a Announcer) {
	if a == nil {
		a = nopAnnouncer{}
	}
	s.announcer = a
}

func (s *Service) Balance(ctx context.Context, userID string) (Account, error) {
	return s.store.GetAccount(ctx, userID)
}

// Money returns the account together with its wealth rank.
func (s *Service) Money(ctx context.Context, userID string) (MoneyView, error) {
	acct, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return MoneyView{}, err
	}
	all, err := s.store.ListAccountsByWealthDesc(ctx)
	if err != nil {
		return MoneyView{}, err
	}
	out := MoneyView{Account: acct, Wealth: acct.Wealth(), Rank: len(all)}
	for i, a := range all {
		if a.UserID == userID {
			out.Rank = i + 1
			break
		}
	}
	return out, nil
}

func (s *Service) Leaderboard(ctx context.Context, page int) (LeaderboardPage, error) {
	all, err := s.store.ListAccountsByWealthDesc(ctx)
	if err != nil {
		return LeaderboardPage{}, err
	}
	out := LeaderboardPage{Pages: pageCount(len(all), LeaderboardPageSize)}
	out.Page = clampPage(page, out.Pages)
	start := (out.Page - 1) * LeaderboardPageSize
	end := min(start+LeaderboardPageSize, len(all))
	for i := start; i < end; i++ {
		a := all[i]
		out.Rows = append(out.Rows, WealthRow{
			Rank:   i + 1,
			UserID: a.UserID,
			Cash:   a.Cash,
			Bank:   a.Bank,
			Wealth: a.Wealth(),
		})
	}
	return out, nil
}

func (s *Service) Deposit(ctx context.Context, userID string, amt Amount) (Account, error) {
	unlock := s.accounts.Lock(userID)
	defer unlock()

	acct, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return Account{}, err
	}
	if acct.Cash <= 0 {
		return acct, fmt.Errorf("%w: no cash to deposit", ErrInsufficientFunds)
	}
	n, err := amt.resolve(acct.Cash)
	if err != nil {
		return acct, err
	}
	if n > acct.Cash {
		return acct, insufficient(n, acct.Cash)
	}
	return s.store.AdjustAccount(ctx, userID, -n, n)
}

func (s *Service) Withdraw(ctx context.Context, userID string, amt Amount) (Account, error) {
	unlock := s.accounts.Lock(userID)
	defer unlock()

	acct, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return Account{}, err
	}
	n, err := amt.resolve(acct.Bank)
	if err != nil {
		return acct, err
	}
	if n > acct.Bank {
		return acct, insufficient(n, acct.Bank)
	}
	return s.store.AdjustAccount(ctx, userID, n, -n)
}

func (s *Service) Pay(ctx context.Context, fromID, toID string, amt Amount) (PaymentResult, error) {
	if fromID == toID {
		return PaymentResult{}, fmt.Errorf("%w: cannot pay yourself", ErrInvalidTarget)
	}
	unlock := s.accounts.Lock(fromID, toID)
	defer unlock()

	from, err := s.store.GetAccount(ctx, fromID)
	if err != nil {
		return PaymentResult{}, err
	}
	if _, err := s.store.GetAccount(ctx, toID); err != nil {
		return PaymentResult{}, err
	}
	n, err := amt.resolve(from.Cash)
	if err != nil {
		return PaymentResult{}, err
	}
	if n > from.Cash {
		return PaymentResult{}, insufficient(n, from.Cash)
	}
	from, to, err := s.transferCash(ctx, fromID, toID, n)
	if err != nil {
		return PaymentResult{}, err
	}
	return PaymentResult{Amount: n, From: from, To: to}, nil
}

// transferCash moves amount of cash between two accounts whose locks the
// caller holds. A failed credit is compensated by refunding the debit.
func (s *Service) transferCash(ctx context.Context, fromID, toID string, amount int64) (Account, Account, error) {
	from, err := s.store.AdjustAccount(ctx, fromID, -amount, 0)
	if err != nil {
		return Account{}, Account{}, fmt.Errorf("debit %s: %w", fromID, err)
	}
	to, err := s.store.AdjustAccount(ctx, toID, amount, 0)
	if err != nil {
		s.refund(ctx, fromID, amount, "transfer credit failed")
		return Account{}, Account{}, fmt.Errorf("credit %s: %w", toID, err)
	}
	return from, to, nil
}

func (s *Service) refund(ctx context.Context, userID string, amount int64, reason string) {
	if amount <= 0 {
		return
	}
	if _, err := s.store.AdjustAccount(ctx, userID, amount, 0); err != nil {
		s.log.Error("refund failed", "user_id", userID, "amount", amount, "reason", reason, "err", err)
	}
}

// stake validates a bet against the account's cash.
func stake(acct Account, amt Amount) (int64, error) {
	n, err := amt.resolve(acct.Cash)
	if err != nil {
		return 0, err
	}
	if n > acct.Cash {
		return 0, insufficient(n, acct.Cash)
	}
	return n, nil
}
