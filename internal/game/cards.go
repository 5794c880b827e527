package game

import (
	"fmt"
	"strconv"
)

type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

var suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

var ranks = [...]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

type Card struct {
	Rank string `json:"rank"`
	Suit Suit   `json:"suit"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// points is the card's face value with aces at 11.
func (c Card) points() int {
	switch c.Rank {
	case "A":
		return 11
	case "J", "Q", "K":
		return 10
	}
	n, _ := strconv.Atoi(c.Rank)
	return n
}

// Deck is consumed from the end.
type Deck []Card

func NewDeck() Deck {
	d := make(Deck, 0, len(suits)*len(ranks))
	for _, s := range suits {
		for _, r := range ranks {
			d = append(d, Card{Rank: r, Suit: s})
		}
	}
	return d
}

func ShuffledDeck(rng RNG) Deck {
	d := NewDeck()
	rng.Shuffle(len(d), func(i, j int) { d[i], d[j] = d[j], d[i] })
	return d
}

// Draw pops the top card. An exhausted deck is replaced by a fresh shuffle,
// which a single round never reaches.
func (d *Deck) Draw(rng RNG) Card {
	if len(*d) == 0 {
		*d = ShuffledDeck(rng)
	}
	last := len(*d) - 1
	c := (*d)[last]
	*d = (*d)[:last]
	return c
}

// HandValue counts every ace as 11 and demotes them to 1 one at a time
// while the total is over 21.
func HandValue(hand []Card) int {
	total, aces := 0, 0
	for _, c := range hand {
		total += c.points()
		if c.Rank == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// DealerPlay draws until the dealer holds 17 or more.
func DealerPlay(hand []Card, deck *Deck, rng RNG) []Card {
	for HandValue(hand) < 17 {
		hand = append(hand, deck.Draw(rng))
	}
	return hand
}

type HandOutcome string

const (
	OutcomeWin  HandOutcome = "win"
	OutcomeLose HandOutcome = "lose"
	OutcomePush HandOutcome = "push"
)

func CompareHands(player, dealer int) HandOutcome {
	switch {
	case player > 21:
		return OutcomeLose
	case dealer > 21:
		return OutcomeWin
	case player > dealer:
		return OutcomeWin
	case player < dealer:
		return OutcomeLose
	default:
		return OutcomePush
	}
}
