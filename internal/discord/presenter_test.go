package discord

import (
	"testing"
	"time"

	"cashbot/internal/game"
)

func TestMoneyFormat(t *testing.T) {
	tests := map[int64]string{
		0:         "$0",
		100:       "$100",
		1_000:     "$1,000",
		1_234_567: "$1,234,567",
		-1_500:    "-$1,500",
	}
	for in, want := range tests {
		if got := money(in); got != want {
			t.Fatalf("money(%d)=%q want %q", in, got, want)
		}
	}
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 42 * time.Second, want: "42s"},
		{in: 5*time.Minute + 3*time.Second, want: "5m 3s"},
		{in: 23*time.Hour + 59*time.Minute, want: "23h 59m"},
	}
	for _, tc := range tests {
		if got := humanDuration(tc.in); got != tc.want {
			t.Fatalf("in=%s got=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestBlackjackHidesHoleCard(t *testing.T) {
	p := NewPresenter("!")
	live := game.BlackjackView{
		ID:     "r1",
		State:  game.BlackjackInProgress,
		Player: []game.Card{{Rank: "A", Suit: game.Spades}, {Rank: "K", Suit: game.Hearts}},
		Dealer: []game.Card{{Rank: "Q", Suit: game.Clubs}},
	}
	e, comps := p.Blackjack(live)
	if len(comps) != 1 || e.Fields[1].Value != "Q♣ (0)" {
		t.Fatalf("fields=%+v comps=%d", e.Fields[1], len(comps))
	}

	done := live
	done.State = game.BlackjackStood
	done.Outcome = game.OutcomePush
	if _, comps := p.Blackjack(done); comps != nil {
		t.Fatalf("finished rounds carry no buttons")
	}
}

func TestTicketsCapsFields(t *testing.T) {
	nums := make([]int, 300)
	for i := range nums {
		nums[i] = i%99 + 1
	}
	e := NewPresenter("!").Tickets(nums)
	if len(e.Fields) != 25 || e.Footer == nil || e.Footer.Text != "and 50 more" {
		t.Fatalf("fields=%d footer=%+v", len(e.Fields), e.Footer)
	}
	if empty := NewPresenter("!").Tickets(nil); empty.Color != colorRed {
		t.Fatalf("no tickets must render as an error")
	}
}

func TestUsageUsesConfiguredPrefix(t *testing.T) {
	e := NewPresenter("$").Usage("Dice Help", "!dice <bet_amount> <number>", "!dice 1000 6")
	if e.Fields[0].Value != "$dice <bet_amount> <number>" {
		t.Fatalf("usage=%q", e.Fields[0].Value)
	}
}
