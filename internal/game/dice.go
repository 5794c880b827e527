package game

import "fmt"

// DiceMultiplier is the total returned on an exact call, stake included.
const DiceMultiplier = 5

func RollDie(rng RNG) int {
	return intBetween(rng, 1, 6)
}

func validDieFace(n int) error {
	if n < 1 || n > 6 {
		return fmt.Errorf("%w: dice call must be 1-6, got %d", ErrInvalidChoice, n)
	}
	return nil
}
