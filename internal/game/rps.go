package game

import (
	"fmt"
	"strings"
)

type Hand string

const (
	Rock     Hand = "rock"
	Paper    Hand = "paper"
	Scissors Hand = "scissors"
)

var beats = map[Hand]Hand{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

func ParseHand(raw string) (Hand, error) {
	h := Hand(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := beats[h]; !ok {
		return "", fmt.Errorf("%w: %q is not rock, paper or scissors", ErrInvalidChoice, raw)
	}
	return h, nil
}

// Duel returns 1 when a wins, -1 when b wins and 0 on a tie.
func Duel(a, b Hand) int {
	switch {
	case a == b:
		return 0
	case beats[a] == b:
		return 1
	default:
		return -1
	}
}
