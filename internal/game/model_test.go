package game

import (
	"errors"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    Amount
		wantErr bool
	}{
		{raw: "100", want: Amount{Value: 100}},
		{raw: "1,500", want: Amount{Value: 1500}},
		{raw: " ALL ", want: Amount{All: true}},
		{raw: "0", wantErr: true},
		{raw: "-5", wantErr: true},
		{raw: "ten", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseAmount(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("raw=%q expected ErrInvalidAmount, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("raw=%q got=%+v err=%v", tc.raw, got, err)
		}
	}
}

func TestAmountResolve(t *testing.T) {
	if n, err := (Amount{All: true}).resolve(750); err != nil || n != 750 {
		t.Fatalf("all of 750: n=%d err=%v", n, err)
	}
	if _, err := (Amount{All: true}).resolve(0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("all of an empty balance must be invalid, got %v", err)
	}
}

func TestCooldownRemaining(t *testing.T) {
	last := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		elapsed time.Duration
		want    time.Duration
	}{
		{elapsed: 0, want: time.Hour},
		{elapsed: time.Hour - time.Second, want: time.Second},
		{elapsed: time.Hour, want: 0},
		{elapsed: 2 * time.Hour, want: 0},
	}
	for _, tc := range tests {
		got := CooldownRemaining(last, last.Add(tc.elapsed), CooldownWindow)
		if got != tc.want {
			t.Fatalf("elapsed=%s got=%s want=%s", tc.elapsed, got, tc.want)
		}
	}
}

func TestCooldownErrorUnwraps(t *testing.T) {
	var err error = &CooldownError{Kind: CooldownWork, Remaining: 90 * time.Second}
	if !errors.Is(err, ErrOnCooldown) {
		t.Fatalf("expected errors.Is ErrOnCooldown")
	}
	var ce *CooldownError
	if !errors.As(err, &ce) || ce.Remaining != 90*time.Second {
		t.Fatalf("expected errors.As to recover remaining, got %+v", ce)
	}
}

func TestPaging(t *testing.T) {
	if got := pageCount(0, 10); got != 1 {
		t.Fatalf("empty board should have one page, got %d", got)
	}
	if got := pageCount(21, 10); got != 3 {
		t.Fatalf("21 rows got %d pages", got)
	}
	if got := clampPage(0, 3); got != 1 {
		t.Fatalf("clamp low got %d", got)
	}
	if got := clampPage(9, 3); got != 3 {
		t.Fatalf("clamp high got %d", got)
	}
}

func cards(ranks ...string) []Card {
	out := make([]Card, len(ranks))
	for i, r := range ranks {
		out[i] = Card{Rank: r, Suit: Spades}
	}
	return out
}

func TestHandValue(t *testing.T) {
	tests := []struct {
		hand []string
		want int
	}{
		{hand: []string{"A", "A"}, want: 12},
		{hand: []string{"A", "K"}, want: 21},
		{hand: []string{"K", "Q", "J"}, want: 30},
		{hand: []string{"A", "A", "A", "A"}, want: 14},
		{hand: []string{"A", "9", "A"}, want: 21},
		{hand: []string{"A", "5", "K"}, want: 16},
		{hand: []string{"2", "3"}, want: 5},
	}
	for _, tc := range tests {
		if got := HandValue(cards(tc.hand...)); got != tc.want {
			t.Fatalf("hand=%v got=%d want=%d", tc.hand, got, tc.want)
		}
	}
}

// The demotion rule yields the largest total that does not bust, or the
// all-ones total when every choice busts.
func TestHandValueIsBestLegalTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		hand := make([]Card, n)
		low, aces := 0, 0
		for i := range hand {
			r := ranks[rapid.IntRange(0, len(ranks)-1).Draw(t, "rank")]
			hand[i] = Card{Rank: r, Suit: Hearts}
			if r == "A" {
				aces++
				low++
			} else {
				low += hand[i].points()
			}
		}
		best := low
		for k := 1; k <= aces; k++ {
			if v := low + 10*k; v <= 21 {
				best = v
			}
		}
		if got := HandValue(hand); got != best {
			t.Fatalf("hand=%v got=%d want=%d", hand, got, best)
		}
	})
}

func TestCompareHands(t *testing.T) {
	tests := []struct {
		player, dealer int
		want           HandOutcome
	}{
		{player: 22, dealer: 18, want: OutcomeLose},
		{player: 22, dealer: 25, want: OutcomeLose},
		{player: 18, dealer: 23, want: OutcomeWin},
		{player: 20, dealer: 19, want: OutcomeWin},
		{player: 17, dealer: 19, want: OutcomeLose},
		{player: 19, dealer: 19, want: OutcomePush},
	}
	for _, tc := range tests {
		if got := CompareHands(tc.player, tc.dealer); got != tc.want {
			t.Fatalf("player=%d dealer=%d got=%s want=%s", tc.player, tc.dealer, got, tc.want)
		}
	}
}

func TestNewDeck(t *testing.T) {
	d := NewDeck()
	if len(d) != 52 {
		t.Fatalf("deck has %d cards", len(d))
	}
	seen := map[Card]bool{}
	for _, c := range d {
		if seen[c] {
			t.Fatalf("duplicate card %s", c)
		}
		seen[c] = true
	}
}

func TestRoulette(t *testing.T) {
	if ColorOf(0) != Green || ColorOf(1) != Red || ColorOf(2) != Black || ColorOf(36) != Red {
		t.Fatalf("unexpected colour mapping")
	}
	red := 0
	for n := 1; n <= 36; n++ {
		if ColorOf(n) == Red {
			red++
		}
	}
	if red != 18 {
		t.Fatalf("expected 18 red numbers, got %d", red)
	}

	seventeen := RouletteBet{Kind: BetNumber, Number: 17}
	if seventeen.Multiplier(17) != 35 || seventeen.Multiplier(18) != 0 {
		t.Fatalf("number bet multiplier wrong")
	}
	zero := RouletteBet{Kind: BetNumber, Number: 0}
	if zero.Multiplier(0) != 35 {
		t.Fatalf("straight bet on zero must pay")
	}
	for _, kind := range []BetKind{BetRed, BetBlack, BetEven, BetOdd, BetLow, BetHigh} {
		if (RouletteBet{Kind: kind}).Multiplier(0) != 0 {
			t.Fatalf("zero must not satisfy %s", kind)
		}
	}
	if (RouletteBet{Kind: BetRed}).Multiplier(3) != 2 || (RouletteBet{Kind: BetBlack}).Multiplier(3) != 0 {
		t.Fatalf("colour bet multiplier wrong")
	}
}

func TestParseRouletteBet(t *testing.T) {
	if b, err := ParseRouletteBet("Red"); err != nil || b.Kind != BetRed {
		t.Fatalf("red: %+v %v", b, err)
	}
	if b, err := ParseRouletteBet("0"); err != nil || b.Kind != BetNumber || b.Number != 0 {
		t.Fatalf("zero: %+v %v", b, err)
	}
	for _, raw := range []string{"37", "-1", "green", ""} {
		if _, err := ParseRouletteBet(raw); !errors.Is(err, ErrInvalidChoice) {
			t.Fatalf("raw=%q expected ErrInvalidChoice, got %v", raw, err)
		}
	}
}

func TestDuel(t *testing.T) {
	tests := []struct {
		a, b Hand
		want int
	}{
		{a: Rock, b: Scissors, want: 1},
		{a: Scissors, b: Paper, want: 1},
		{a: Paper, b: Rock, want: 1},
		{a: Scissors, b: Rock, want: -1},
		{a: Paper, b: Paper, want: 0},
	}
	for _, tc := range tests {
		if got := Duel(tc.a, tc.b); got != tc.want {
			t.Fatalf("%s vs %s got %d", tc.a, tc.b, got)
		}
	}
	if _, err := ParseHand("lizard"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected ErrInvalidChoice, got %v", err)
	}
}

func TestWinnersOf(t *testing.T) {
	tickets := map[string][]int{
		"b": {7, 7, 7},
		"a": {1, 7},
		"c": {8},
	}
	got := winnersOf(tickets, 7)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("winners=%v", got)
	}
}

func TestKeyedMutexDedupes(t *testing.T) {
	var k keyedMutex
	unlock := k.Lock("a", "b", "a")
	unlock()
	if len(k.locks) != 0 {
		t.Fatalf("expected all entries released, got %d", len(k.locks))
	}
}
