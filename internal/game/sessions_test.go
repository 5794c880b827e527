package game_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashbot/internal/game"
)

// With an unshuffled deck the draws run A, K, Q, J, 10, 9 of spades, so the
// player opens on A+K and the dealer holds Q+J.

func TestBlackjackStandWins(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	v, err := h.svc.StartBlackjack(ctx, "u1", amount(1_000))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if v.PlayerValue != 21 || len(v.Dealer) != 1 || v.Account.Cash != 9_000 {
		t.Fatalf("opening view=%+v", v)
	}
	if _, err := h.svc.Hit(ctx, v.ID, "u2"); !errors.Is(err, game.ErrNotYourGame) {
		t.Fatalf("expected not your game, got %v", err)
	}

	v, err = h.svc.Stand(ctx, v.ID, "u1")
	if err != nil {
		t.Fatalf("stand: %v", err)
	}
	if v.State != game.BlackjackStood || v.Outcome != game.OutcomeWin || v.DealerValue != 20 {
		t.Fatalf("stand view=%+v", v)
	}
	if v.Payout != 2_000 || h.cash(t, "u1") != 11_000 {
		t.Fatalf("payout=%d cash=%d", v.Payout, h.cash(t, "u1"))
	}
	if _, err := h.svc.Hit(ctx, v.ID, "u1"); !errors.Is(err, game.ErrSessionNotFound) {
		t.Fatalf("finished round must be gone, got %v", err)
	}
}

func TestBlackjackBust(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	v, _ := h.svc.StartBlackjack(ctx, "u1", amount(1_000))
	v, err := h.svc.Hit(ctx, v.ID, "u1")
	if err != nil || v.PlayerValue != 21 || v.State != game.BlackjackInProgress {
		t.Fatalf("first hit=%+v err=%v", v, err)
	}
	v, err = h.svc.Hit(ctx, v.ID, "u1")
	if err != nil {
		t.Fatalf("second hit: %v", err)
	}
	if v.State != game.BlackjackBusted || v.Outcome != game.OutcomeLose || v.PlayerValue != 30 {
		t.Fatalf("bust view=%+v", v)
	}
	if h.cash(t, "u1") != 9_000 {
		t.Fatalf("bust must lose the bet, cash=%d", h.cash(t, "u1"))
	}
}

func TestBlackjackTimeoutRefunds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	v, _ := h.svc.StartBlackjack(ctx, "u1", amount(1_000))
	h.clock.Advance(game.BlackjackIdleTimeout)

	if h.cash(t, "u1") != game.StartingCash {
		t.Fatalf("timed out round must leave the balance unchanged, cash=%d", h.cash(t, "u1"))
	}
	if len(h.ann.expiries) != 1 || h.ann.expiries[0].Kind != game.SessionBlackjack {
		t.Fatalf("expiries=%+v", h.ann.expiries)
	}
	if _, err := h.svc.Stand(ctx, v.ID, "u1"); !errors.Is(err, game.ErrSessionNotFound) {
		t.Fatalf("late stand must fail, got %v", err)
	}
}

func TestBlackjackActionRearmsTimer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	v, _ := h.svc.StartBlackjack(ctx, "u1", amount(1_000))
	h.clock.Advance(20 * time.Second)
	if _, err := h.svc.Hit(ctx, v.ID, "u1"); err != nil {
		t.Fatalf("hit: %v", err)
	}
	h.clock.Advance(20 * time.Second)
	if _, err := h.svc.BlackjackRound(ctx, v.ID); err != nil {
		t.Fatalf("round should still be live 20s after the last action: %v", err)
	}
	h.clock.Advance(10 * time.Second)
	if _, err := h.svc.BlackjackRound(ctx, v.ID); !errors.Is(err, game.ErrSessionNotFound) {
		t.Fatalf("round should have timed out, got %v", err)
	}
	if len(h.ann.expiries) != 1 {
		t.Fatalf("stale timer must not fire twice, got %d expiries", len(h.ann.expiries))
	}
}

func TestBlackjackRejectsBadBets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.svc.StartBlackjack(ctx, "u1", amount(game.StartingCash+1)); !errors.Is(err, game.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, err := h.svc.StartBlackjack(ctx, "u1", game.Amount{}); !errors.Is(err, game.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if b, d := h.svc.ActiveSessions(); b != 0 || d != 0 {
		t.Fatalf("rejected bets must not open sessions")
	}
}

func TestDuelFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.svc.Challenge(ctx, "a", "a", amount(100)); !errors.Is(err, game.ErrInvalidTarget) {
		t.Fatalf("expected invalid target, got %v", err)
	}
	v, err := h.svc.Challenge(ctx, "a", "b", amount(1_000))
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if v.Stage != game.DuelPending || h.cash(t, "a") != game.StartingCash {
		t.Fatalf("challenge must not move money: %+v", v)
	}
	if _, err := h.svc.Choose(ctx, v.ID, "a", game.Rock); !errors.Is(err, game.ErrNotAccepted) {
		t.Fatalf("expected not accepted, got %v", err)
	}
	if _, err := h.svc.Accept(ctx, v.ID, "a"); !errors.Is(err, game.ErrNotYourGame) {
		t.Fatalf("challenger cannot accept, got %v", err)
	}

	v, err = h.svc.Accept(ctx, v.ID, "b")
	if err != nil || v.Stage != game.DuelActive {
		t.Fatalf("accept=%+v err=%v", v, err)
	}
	if h.cash(t, "a") != 9_000 || h.cash(t, "b") != 9_000 {
		t.Fatalf("stakes not escrowed")
	}

	if _, err := h.svc.Choose(ctx, v.ID, "a", game.Rock); err != nil {
		t.Fatalf("choose a: %v", err)
	}
	if _, err := h.svc.Choose(ctx, v.ID, "a", game.Paper); !errors.Is(err, game.ErrAlreadyActed) {
		t.Fatalf("expected already acted, got %v", err)
	}
	if _, err := h.svc.Choose(ctx, v.ID, "c", game.Paper); !errors.Is(err, game.ErrNotYourGame) {
		t.Fatalf("outsider must be rejected, got %v", err)
	}
	v, err = h.svc.Choose(ctx, v.ID, "b", game.Scissors)
	if err != nil {
		t.Fatalf("choose b: %v", err)
	}
	if v.Stage != game.DuelResolved || v.Winner != "a" || v.Payout != 2_000 {
		t.Fatalf("resolved=%+v", v)
	}
	if h.cash(t, "a") != 11_000 || h.cash(t, "b") != 9_000 {
		t.Fatalf("a=%d b=%d", h.cash(t, "a"), h.cash(t, "b"))
	}
}

func TestDuelTieRefunds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	v, _ := h.svc.Challenge(ctx, "a", "b", amount(500))
	_, _ = h.svc.Accept(ctx, v.ID, "b")
	_, _ = h.svc.Choose(ctx, v.ID, "a", game.Paper)
	v, err := h.svc.Choose(ctx, v.ID, "b", game.Paper)
	if err != nil || v.Winner != "" {
		t.Fatalf("tie=%+v err=%v", v, err)
	}
	if h.cash(t, "a") != game.StartingCash || h.cash(t, "b") != game.StartingCash {
		t.Fatalf("tie must refund both")
	}
}

func TestDuelAcceptRevalidates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	v, _ := h.svc.Challenge(ctx, "a", "b", amount(5_000))
	if _, err := h.svc.Pay(ctx, "b", "c", amount(6_000)); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.Accept(ctx, v.ID, "b"); !errors.Is(err, game.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds at accept, got %v", err)
	}
	if h.cash(t, "a") != game.StartingCash || h.cash(t, "b") != 4_000 {
		t.Fatalf("failed accept must not move money")
	}
	if st, err := h.svc.DuelState(v.ID); err != nil || st.Stage != game.DuelPending {
		t.Fatalf("duel must stay pending: %+v %v", st, err)
	}
}

func TestDuelExpiry(t *testing.T) {
	ctx := context.Background()

	t.Run("pending", func(t *testing.T) {
		h := newHarness(t)
		v, _ := h.svc.Challenge(ctx, "a", "b", amount(1_000))
		h.clock.Advance(game.DuelIdleTimeout)
		if len(h.ann.expiries) != 1 || h.ann.expiries[0].Stage != string(game.DuelPending) || h.ann.expiries[0].Refunded != 0 {
			t.Fatalf("expiries=%+v", h.ann.expiries)
		}
		if h.cash(t, "a") != game.StartingCash || h.cash(t, "b") != game.StartingCash {
			t.Fatalf("pending expiry must not move money")
		}
		if _, err := h.svc.Accept(ctx, v.ID, "b"); !errors.Is(err, game.ErrSessionNotFound) {
			t.Fatalf("late accept must fail, got %v", err)
		}
	})

	t.Run("active", func(t *testing.T) {
		h := newHarness(t)
		v, _ := h.svc.Challenge(ctx, "a", "b", amount(1_000))
		h.clock.Advance(30 * time.Second)
		_, _ = h.svc.Accept(ctx, v.ID, "b")
		_, _ = h.svc.Choose(ctx, v.ID, "a", game.Rock)
		h.clock.Advance(30 * time.Second)
		if len(h.ann.expiries) != 0 {
			t.Fatalf("accept must restart the timeout")
		}
		h.clock.Advance(30 * time.Second)
		if len(h.ann.expiries) != 1 || h.ann.expiries[0].Refunded != 1_000 {
			t.Fatalf("expiries=%+v", h.ann.expiries)
		}
		if h.cash(t, "a") != game.StartingCash || h.cash(t, "b") != game.StartingCash {
			t.Fatalf("active expiry must return both stakes")
		}
	})
}

func TestDuelDeclineAndFriendly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	v, _ := h.svc.Challenge(ctx, "a", "b", amount(100))
	if _, err := h.svc.Decline(ctx, v.ID, "a"); !errors.Is(err, game.ErrNotYourGame) {
		t.Fatalf("only the opponent declines, got %v", err)
	}
	v, err := h.svc.Decline(ctx, v.ID, "b")
	if err != nil || v.Stage != game.DuelDeclined {
		t.Fatalf("decline=%+v err=%v", v, err)
	}

	v, err = h.svc.Challenge(ctx, "a", "b", game.Amount{})
	if err != nil || v.Bet != 0 {
		t.Fatalf("friendly=%+v err=%v", v, err)
	}
	_, _ = h.svc.Accept(ctx, v.ID, "b")
	_, _ = h.svc.Choose(ctx, v.ID, "a", game.Rock)
	v, _ = h.svc.Choose(ctx, v.ID, "b", game.Paper)
	if v.Winner != "b" || v.Payout != 0 || h.cash(t, "b") != game.StartingCash {
		t.Fatalf("friendly match must not move money: %+v", v)
	}
}
