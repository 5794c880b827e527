package game_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"

	"cashbot/internal/game"
	"cashbot/internal/store"
)

func TestDepositWithdrawConserveWealth(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a, err := h.svc.Deposit(ctx, "u1", amount(4_000))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if a.Cash != 6_000 || a.Bank != 4_000 {
		t.Fatalf("after deposit=%+v", a)
	}
	a, err = h.svc.Withdraw(ctx, "u1", game.Amount{All: true})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if a.Cash != game.StartingCash || a.Bank != 0 {
		t.Fatalf("after withdraw all=%+v", a)
	}

	if _, err := h.svc.Withdraw(ctx, "u1", amount(1)); !errors.Is(err, game.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient bank, got %v", err)
	}
	if _, err := h.svc.Deposit(ctx, "u1", amount(game.StartingCash+1)); !errors.Is(err, game.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient cash, got %v", err)
	}
	if _, err := h.svc.Deposit(ctx, "u1", game.Amount{}); !errors.Is(err, game.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestDepositRequiresPositiveCash(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.store.AdjustAccount(ctx, "u1", -game.StartingCash, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.Deposit(ctx, "u1", game.Amount{All: true}); !errors.Is(err, game.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestPay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.svc.Pay(ctx, "u1", "u1", amount(10)); !errors.Is(err, game.ErrInvalidTarget) {
		t.Fatalf("expected invalid target, got %v", err)
	}
	res, err := h.svc.Pay(ctx, "u1", "u2", amount(2_500))
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if res.From.Cash != 7_500 || res.To.Cash != 12_500 {
		t.Fatalf("pay result=%+v", res)
	}
	if _, err := h.svc.Pay(ctx, "u1", "u2", amount(7_501)); !errors.Is(err, game.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if got := h.wealth(t); got != 2*game.StartingCash {
		t.Fatalf("wealth changed to %d", got)
	}
}

func TestConcurrentPaysNeverOverdraw(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.svc.Pay(ctx, "sender", fmt.Sprintf("r%d", i%5), amount(300))
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if ok != int(game.StartingCash/300) {
		t.Fatalf("expected %d successful pays, got %d", game.StartingCash/300, ok)
	}
	if c := h.cash(t, "sender"); c != game.StartingCash-int64(ok)*300 || c < 0 {
		t.Fatalf("sender cash=%d", c)
	}
	if got := h.wealth(t); got != 6*game.StartingCash {
		t.Fatalf("wealth not conserved: %d", got)
	}
}

func TestPaysAreZeroSum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := store.NewMemory()
		svc := game.NewService(s, nil, game.WithRNG(game.NewRNG(1)))
		ctx := context.Background()
		users := []string{"a", "b", "c", "d"}
		for _, u := range users {
			_, _ = s.GetAccount(ctx, u)
		}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			from := rapid.SampledFrom(users).Draw(t, "from")
			to := rapid.SampledFrom(users).Draw(t, "to")
			amt := rapid.Int64Range(1, 15_000).Draw(t, "amount")
			_, _ = svc.Pay(ctx, from, to, game.Amount{Value: amt})
		}

		var total int64
		for _, a := range s.Snapshot() {
			if a.Cash < 0 {
				t.Fatalf("pay drove %s negative: %d", a.UserID, a.Cash)
			}
			total += a.Wealth()
		}
		if total != int64(len(users))*game.StartingCash {
			t.Fatalf("total wealth %d", total)
		}
	})
}

func TestLeaderboardAndRank(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		if _, err := h.store.AdjustAccount(ctx, fmt.Sprintf("u%02d", i), int64(i)*100, 0); err != nil {
			t.Fatal(err)
		}
	}

	first, err := h.svc.Leaderboard(ctx, 1)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if first.Pages != 2 || len(first.Rows) != game.LeaderboardPageSize {
		t.Fatalf("page 1=%+v", first)
	}
	if first.Rows[0].UserID != "u11" || first.Rows[0].Rank != 1 {
		t.Fatalf("top row=%+v", first.Rows[0])
	}
	second, _ := h.svc.Leaderboard(ctx, 99)
	if second.Page != 2 || len(second.Rows) != 2 || second.Rows[1].Rank != 12 {
		t.Fatalf("page 2=%+v", second)
	}

	m, err := h.svc.Money(ctx, "u00")
	if err != nil {
		t.Fatalf("money: %v", err)
	}
	if m.Rank != 12 || m.Wealth != game.StartingCash {
		t.Fatalf("money=%+v", m)
	}
}

func TestWorkCooldown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.rng.ints = []int{500}
	res, err := h.svc.Work(ctx, "u1")
	if err != nil {
		t.Fatalf("work: %v", err)
	}
	if res.Amount != 1_500 || res.Account.Cash != game.StartingCash+1_500 {
		t.Fatalf("work result=%+v", res)
	}

	h.clock.Advance(time.Hour - time.Second)
	_, err = h.svc.Work(ctx, "u1")
	var ce *game.CooldownError
	if !errors.As(err, &ce) || ce.Remaining != time.Second {
		t.Fatalf("expected 1s cooldown, got %v", err)
	}
	if left, _ := h.svc.Cooldown(ctx, "u1", game.CooldownWork); left != time.Second {
		t.Fatalf("cooldown=%s", left)
	}

	h.clock.Advance(time.Second)
	if _, err := h.svc.Work(ctx, "u1"); err != nil {
		t.Fatalf("work at window: %v", err)
	}
}

type failingAdjust struct {
	game.Store
}

func (failingAdjust) AdjustAccount(context.Context, string, int64, int64) (game.Account, error) {
	return game.Account{}, errors.New("database is locked")
}

func TestFailedPayoutKeepsCooldown(t *testing.T) {
	mem := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := game.NewService(failingAdjust{mem}, logger, game.WithRNG(&scriptedRNG{ints: []int{500}}))
	ctx := context.Background()

	if _, err := svc.Work(ctx, "u1"); err == nil {
		t.Fatalf("expected work to fail")
	}
	if _, ok, _ := mem.GetCooldown(ctx, "u1", game.CooldownWork); ok {
		t.Fatalf("a failed payout must not spend the cooldown")
	}
	a, _ := mem.GetAccount(ctx, "u1")
	if a.Cash != game.StartingCash {
		t.Fatalf("cash=%d", a.Cash)
	}
}

func TestCrime(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.rng.floats = []float64{0.1}
	h.rng.ints = []int{0}
	res, err := h.svc.Crime(ctx, "lucky")
	if err != nil || res.Outcome != "success" || res.Amount != 30_000 {
		t.Fatalf("crime success=%+v err=%v", res, err)
	}

	if _, err := h.store.AdjustAccount(ctx, "broke", -7_000, 0); err != nil {
		t.Fatal(err)
	}
	h.rng.floats = []float64{0.9}
	res, err = h.svc.Crime(ctx, "broke")
	if err != nil || res.Outcome != "caught" {
		t.Fatalf("crime caught=%+v err=%v", res, err)
	}
	if res.Amount != -3_000 || res.Account.Cash != 0 {
		t.Fatalf("fine must be capped at cash, got %+v", res)
	}
}

func TestHustleSharesCrimeCooldown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.svc.Crime(ctx, "u1"); err != nil {
		t.Fatalf("crime: %v", err)
	}
	if _, err := h.svc.Hustle(ctx, "u1"); !errors.Is(err, game.ErrOnCooldown) {
		t.Fatalf("expected shared cooldown, got %v", err)
	}

	tests := []struct {
		u    float64
		ints []int
		want int64
	}{
		{u: 0.2, ints: []int{5}, want: 15},
		{u: 0.6, want: 0},
		{u: 0.61, want: 50},
	}
	for i, tc := range tests {
		h.rng.floats = []float64{tc.u}
		h.rng.ints = tc.ints
		res, err := h.svc.Hustle(ctx, fmt.Sprintf("h%d", i))
		if err != nil || res.Amount != tc.want {
			t.Fatalf("u=%.2f got=%+v err=%v", tc.u, res, err)
		}
	}
}

func TestRobbery(t *testing.T) {
	ctx := context.Background()

	t.Run("self", func(t *testing.T) {
		h := newHarness(t)
		if _, err := h.svc.Rob(ctx, "u1", "u1"); !errors.Is(err, game.ErrInvalidTarget) {
			t.Fatalf("expected invalid target, got %v", err)
		}
	})

	t.Run("nothing to steal", func(t *testing.T) {
		h := newHarness(t)
		if _, err := h.store.AdjustAccount(ctx, "victim", -game.StartingCash, 0); err != nil {
			t.Fatal(err)
		}
		res, err := h.svc.Rob(ctx, "thief", "victim")
		if !errors.Is(err, game.ErrNothingToSteal) {
			t.Fatalf("expected nothing to steal, got %v", err)
		}
		if res.Stats.Failed != 1 || h.cash(t, "thief") != game.StartingCash {
			t.Fatalf("result=%+v", res)
		}
	})

	t.Run("caught", func(t *testing.T) {
		h := newHarness(t)
		if _, err := h.svc.Deposit(ctx, "thief", game.Amount{All: true}); err != nil {
			t.Fatal(err)
		}
		h.rng.floats = []float64{0.1}
		res, err := h.svc.Rob(ctx, "thief", "victim")
		if err != nil || res.Outcome != game.RobberyCaught {
			t.Fatalf("result=%+v err=%v", res, err)
		}
		if res.Amount != 3_000 || res.Robber.Cash != -3_000 || res.Robber.Bank != game.StartingCash {
			t.Fatalf("fine must come out of cash and may go negative: %+v", res.Robber)
		}
		if h.cash(t, "victim") != game.StartingCash {
			t.Fatalf("victim must be untouched")
		}
	})

	t.Run("success", func(t *testing.T) {
		h := newHarness(t)
		h.rng.floats = []float64{0.5, 0}
		res, err := h.svc.Rob(ctx, "thief", "victim")
		if err != nil || res.Outcome != game.RobberySuccess {
			t.Fatalf("result=%+v err=%v", res, err)
		}
		if res.Amount != 6_000 || res.Robber.Cash != 16_000 || res.Target.Cash != 4_000 {
			t.Fatalf("result=%+v", res)
		}
		if h.wealth(t) != 2*game.StartingCash {
			t.Fatalf("robbery must be zero-sum")
		}

		board, err := h.svc.Robberies(ctx, "thief", 1)
		if err != nil {
			t.Fatalf("board: %v", err)
		}
		if board.SelfRank != 1 || board.Self.TotalStolen != 6_000 || len(board.Rows) != 1 {
			t.Fatalf("board=%+v", board)
		}
	})
}

func TestRobberyTakeStaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := store.NewMemory()
		svc := game.NewService(s, nil, game.WithRNG(game.NewRNG(rapid.Uint64().Draw(t, "seed"))))
		ctx := context.Background()
		cash := rapid.Int64Range(1, 1_000_000).Draw(t, "cash")
		_, _ = s.AdjustAccount(ctx, "victim", cash-game.StartingCash, 0)

		res, err := svc.Rob(ctx, "thief", "victim")
		if err != nil {
			t.Fatalf("rob: %v", err)
		}
		if res.Outcome == game.RobberySuccess {
			if res.Amount < cash*6/10-1 || res.Amount > cash {
				t.Fatalf("stole %d of %d", res.Amount, cash)
			}
			if res.Robber.Cash+res.Target.Cash != game.StartingCash+cash {
				t.Fatalf("not zero-sum")
			}
		}
	})
}

func TestRoulette(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.rng.ints = []int{17}
	res, err := h.svc.PlayRoulette(ctx, "u1", amount(100), game.RouletteBet{Kind: game.BetNumber, Number: 17})
	if err != nil || !res.Won || res.Net != 3_500 {
		t.Fatalf("number win=%+v err=%v", res, err)
	}

	h.rng.ints = []int{0}
	res, err = h.svc.PlayRoulette(ctx, "u1", amount(100), game.RouletteBet{Kind: game.BetRed})
	if err != nil || res.Won || res.Net != -100 || res.Color != game.Green {
		t.Fatalf("zero must lose colour bets: %+v err=%v", res, err)
	}
	if c := h.cash(t, "u1"); c != game.StartingCash+3_400 {
		t.Fatalf("cash=%d", c)
	}

	if _, err := h.svc.PlayRoulette(ctx, "u1", amount(1_000_000), game.RouletteBet{Kind: game.BetRed}); !errors.Is(err, game.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestDice(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.svc.PlayDice(ctx, "u1", amount(100), 7); !errors.Is(err, game.ErrInvalidChoice) {
		t.Fatalf("expected invalid choice, got %v", err)
	}
	h.rng.ints = []int{2}
	res, err := h.svc.PlayDice(ctx, "u1", amount(100), 3)
	if err != nil || !res.Won || res.Rolled != 3 || res.Net != 400 {
		t.Fatalf("dice win=%+v err=%v", res, err)
	}
	h.rng.ints = []int{0}
	res, err = h.svc.PlayDice(ctx, "u1", game.Amount{All: true}, 6)
	if err != nil || res.Won || res.Account.Cash != 0 {
		t.Fatalf("dice loss=%+v err=%v", res, err)
	}
}
