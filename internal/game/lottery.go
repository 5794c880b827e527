package game

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// BuyTickets charges count tickets to the user's cash and moves the whole
// cost into the jackpot. Numbers are drawn uniformly.
func (s *Service) BuyTickets(ctx context.Context, userID string, count int) (TicketPurchase, error) {
	if count <= 0 || count > MaxTicketsPerPurchase {
		return TicketPurchase{}, fmt.Errorf("%w: ticket count must be 1-%d", ErrInvalidAmount, MaxTicketsPerPurchase)
	}
	cost := int64(count) * TicketPrice

	unlock := s.accounts.Lock(userID)
	defer unlock()

	acct, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return TicketPurchase{}, err
	}
	if cost > acct.Cash {
		return TicketPurchase{}, insufficient(cost, acct.Cash)
	}

	s.lotteryMu.Lock()
	defer s.lotteryMu.Unlock()

	acct, err = s.store.AdjustAccount(ctx, userID, -cost, 0)
	if err != nil {
		return TicketPurchase{}, err
	}
	numbers := make([]int, count)
	for i := range numbers {
		numbers[i] = intBetween(s.rng, MinTicketNumber, MaxTicketNumber)
	}
	if err := s.store.AddTickets(ctx, userID, numbers, cost); err != nil {
		s.refund(ctx, userID, cost, "ticket purchase failed")
		s.log.Error("ticket purchase failed", "user_id", userID, "count", count, "err", err)
		return TicketPurchase{}, fmt.Errorf("record tickets: %w", err)
	}
	state, err := s.store.GetLotteryState(ctx)
	if err != nil {
		return TicketPurchase{}, err
	}
	s.log.Info("tickets bought", "user_id", userID, "count", count, "jackpot", state.Jackpot)
	return TicketPurchase{Numbers: numbers, Cost: cost, Jackpot: state.Jackpot, Account: acct}, nil
}

func (s *Service) LotteryStatus(ctx context.Context) (LotteryStatus, error) {
	state, err := s.store.GetLotteryState(ctx)
	if err != nil {
		return LotteryStatus{}, err
	}
	out := LotteryStatus{
		Jackpot:     state.Jackpot,
		TicketPrice: TicketPrice,
		Tickets:     state.TicketCount(),
		Players:     len(state.Tickets),
		LastDraw:    state.LastDraw,
	}
	if state.LastDraw == nil {
		out.FirstDrawPending = true
		return out, nil
	}
	out.NextDrawIn = max(state.NextDrawAt().Sub(s.clock.Now()), 0)
	return out, nil
}

func (s *Service) MyTickets(ctx context.Context, userID string) ([]int, error) {
	state, err := s.store.GetLotteryState(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(state.Tickets[userID]), nil
}

// RunLotteryTick performs a draw when one is due. The first tick on a fresh
// lottery only starts the interval. The jackpot and tickets reset after
// every draw, with or without winners.
func (s *Service) RunLotteryTick(ctx context.Context) (DrawResult, bool, error) {
	res, drawn, err := s.drawIfDue(ctx)
	if err != nil || !drawn {
		return res, drawn, err
	}
	s.announcer.AnnounceDraw(ctx, res)
	return res, true, nil
}

func (s *Service) drawIfDue(ctx context.Context) (DrawResult, bool, error) {
	s.lotteryMu.Lock()
	defer s.lotteryMu.Unlock()

	now := s.clock.Now()
	state, err := s.store.GetLotteryState(ctx)
	if err != nil {
		return DrawResult{}, false, err
	}
	if state.LastDraw == nil {
		if err := s.store.SetLastDraw(ctx, now); err != nil {
			return DrawResult{}, false, err
		}
		s.log.Info("lottery interval started", "at", now)
		return DrawResult{}, false, nil
	}
	if now.Sub(*state.LastDraw) < DrawInterval {
		return DrawResult{}, false, nil
	}

	res := DrawResult{
		Number:  intBetween(s.rng, MinTicketNumber, MaxTicketNumber),
		Jackpot: state.Jackpot,
		DrawnAt: now,
	}
	res.Winners = winnersOf(state.Tickets, res.Number)
	if len(res.Winners) > 0 {
		res.Prize = state.Jackpot / int64(len(res.Winners))
	}
	// Payout and reset commit together; on failure the next tick redraws.
	if err := s.store.CompleteDraw(ctx, now, res.Winners, res.Prize); err != nil {
		return DrawResult{}, false, fmt.Errorf("complete draw: %w", err)
	}
	s.log.Info("lottery draw complete", "number", res.Number, "winners", len(res.Winners), "prize", res.Prize)
	return res, true, nil
}

// winnersOf lists each holder of number once, in sorted order.
func winnersOf(tickets map[string][]int, number int) []string {
	var out []string
	for user, nums := range tickets {
		if slices.Contains(nums, number) {
			out = append(out, user)
		}
	}
	slices.Sort(out)
	return out
}

// NextDrawAt is the earliest time a draw can happen, or zero before the
// first tick.
func (l LotteryState) NextDrawAt() time.Time {
	if l.LastDraw == nil {
		return time.Time{}
	}
	return l.LastDraw.Add(DrawInterval)
}
