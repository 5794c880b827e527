package game

import (
	"fmt"
	"strconv"
	"strings"
)

type Color string

const (
	Green Color = "green"
	Red   Color = "red"
	Black Color = "black"
)

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

func ColorOf(n int) Color {
	switch {
	case n == 0:
		return Green
	case redNumbers[n]:
		return Red
	default:
		return Black
	}
}

type BetKind string

const (
	BetNumber BetKind = "number"
	BetRed    BetKind = "red"
	BetBlack  BetKind = "black"
	BetEven   BetKind = "even"
	BetOdd    BetKind = "odd"
	BetLow    BetKind = "1-18"
	BetHigh   BetKind = "19-36"
)

type RouletteBet struct {
	Kind   BetKind `json:"kind"`
	Number int     `json:"number,omitempty"`
}

func ParseRouletteBet(raw string) (RouletteBet, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch BetKind(raw) {
	case BetRed, BetBlack, BetEven, BetOdd, BetLow, BetHigh:
		return RouletteBet{Kind: BetKind(raw)}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 36 {
		return RouletteBet{}, fmt.Errorf("%w: roulette bet %q", ErrInvalidChoice, raw)
	}
	return RouletteBet{Kind: BetNumber, Number: n}, nil
}

func (b RouletteBet) String() string {
	if b.Kind == BetNumber {
		return strconv.Itoa(b.Number)
	}
	return string(b.Kind)
}

// Multiplier is the net winnings per unit staked, or zero for a loss.
func (b RouletteBet) Multiplier(n int) int64 {
	if b.Kind == BetNumber {
		if n == b.Number {
			return 35
		}
		return 0
	}
	if n == 0 {
		return 0
	}
	var hit bool
	switch b.Kind {
	case BetRed:
		hit = ColorOf(n) == Red
	case BetBlack:
		hit = ColorOf(n) == Black
	case BetEven:
		hit = n%2 == 0
	case BetOdd:
		hit = n%2 == 1
	case BetLow:
		hit = n <= 18
	case BetHigh:
		hit = n >= 19
	}
	if hit {
		return 2
	}
	return 0
}

func SpinWheel(rng RNG) int {
	return rng.IntN(37)
}
