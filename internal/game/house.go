package game

import "context"

// PlayRoulette spins once against the house. Winnings are credited as
// stake times the bet's multiplier; a miss loses the stake.
func (s *Service) PlayRoulette(ctx context.Context, userID string, amt Amount, bet RouletteBet) (RouletteResult, error) {
	unlock := s.accounts.Lock(userID)
	defer unlock()

	acct, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return RouletteResult{}, err
	}
	n, err := stake(acct, amt)
	if err != nil {
		return RouletteResult{}, err
	}

	number := SpinWheel(s.rng)
	res := RouletteResult{Bet: bet, Number: number, Color: ColorOf(number), Stake: n, Net: -n}
	if m := bet.Multiplier(number); m > 0 {
		res.Won = true
		res.Net = n * m
	}
	res.Account, err = s.store.AdjustAccount(ctx, userID, res.Net, 0)
	if err != nil {
		return RouletteResult{}, err
	}
	s.log.Info("roulette spin", "user_id", userID, "bet", bet.String(), "number", number, "net", res.Net)
	return res, nil
}

// PlayDice pays DiceMultiplier times the stake, stake included, on an exact call.
func (s *Service) PlayDice(ctx context.Context, userID string, amt Amount, called int) (DiceResult, error) {
	if err := validDieFace(called); err != nil {
		return DiceResult{}, err
	}
	unlock := s.accounts.Lock(userID)
	defer unlock()

	acct, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return DiceResult{}, err
	}
	n, err := stake(acct, amt)
	if err != nil {
		return DiceResult{}, err
	}

	rolled := RollDie(s.rng)
	res := DiceResult{Called: called, Rolled: rolled, Stake: n, Net: -n}
	if rolled == called {
		res.Won = true
		res.Net = n * (DiceMultiplier - 1)
	}
	res.Account, err = s.store.AdjustAccount(ctx, userID, res.Net, 0)
	if err != nil {
		return DiceResult{}, err
	}
	s.log.Info("dice roll", "user_id", userID, "called", called, "rolled", rolled, "net", res.Net)
	return res, nil
}
