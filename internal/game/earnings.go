package game

import (
	"context"
	"time"
)

const (
	workMin = 1_000
	workMax = 5_000

	crimeSuccessChance = 0.20
	crimeMin           = 30_000
	crimeMax           = 50_000
	crimeFine          = int64(10_000)

	hustleBigChance   = 0.20
	hustleEmptyChance = 0.60
	hustleMin         = 10
	hustleMax         = 100
	hustleFlat        = int64(50)
)

func (s *Service) Work(ctx context.Context, userID string) (EarningResult, error) {
	return s.earn(ctx, userID, "work", CooldownWork, func(Account) (string, int64) {
		return "paid", int64(intBetween(s.rng, workMin, workMax))
	})
}

func (s *Service) Crime(ctx context.Context, userID string) (EarningResult, error) {
	return s.earn(ctx, userID, "crime", CooldownCrime, func(acct Account) (string, int64) {
		if s.rng.Float64() < crimeSuccessChance {
			return "success", int64(intBetween(s.rng, crimeMin, crimeMax))
		}
		fine := min(crimeFine, max(acct.Cash, 0))
		return "caught", -fine
	})
}

// Hustle is the low-stakes side gig. It shares the crime cooldown.
func (s *Service) Hustle(ctx context.Context, userID string) (EarningResult, error) {
	return s.earn(ctx, userID, "97ab", CooldownCrime, func(Account) (string, int64) {
		u := s.rng.Float64()
		switch {
		case u <= hustleBigChance:
			return "jackpot", int64(intBetween(s.rng, hustleMin, hustleMax))
		case u <= hustleEmptyChance:
			return "nothing", 0
		default:
			return "paid", hustleFlat
		}
	})
}

// Cooldown reports how long until kind is available again, without side effects.
func (s *Service) Cooldown(ctx context.Context, userID string, kind CooldownKind) (time.Duration, error) {
	last, ok, err := s.store.GetCooldown(ctx, userID, kind)
	if err != nil || !ok {
		return 0, err
	}
	return CooldownRemaining(last, s.clock.Now(), CooldownWindow), nil
}

func (s *Service) earn(ctx context.Context, userID, action string, kind CooldownKind, roll func(Account) (string, int64)) (EarningResult, error) {
	unlock := s.accounts.Lock(userID)
	defer unlock()

	now := s.clock.Now()
	last, ok, err := s.store.GetCooldown(ctx, userID, kind)
	if err != nil {
		return EarningResult{}, err
	}
	if ok {
		if left := CooldownRemaining(last, now, CooldownWindow); left > 0 {
			return EarningResult{}, &CooldownError{Kind: kind, Remaining: left}
		}
	}
	acct, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return EarningResult{}, err
	}

	outcome, delta := roll(acct)
	if delta != 0 {
		acct, err = s.store.AdjustAccount(ctx, userID, delta, 0)
		if err != nil {
			return EarningResult{}, err
		}
	}
	// The cooldown is only spent once the payout has landed.
	if err := s.store.SetCooldown(ctx, userID, kind, now); err != nil {
		return EarningResult{}, err
	}
	switch kind {
	case CooldownWork:
		acct.LastWork = &now
	case CooldownCrime:
		acct.LastCrime = &now
	}
	s.log.Info("earning action", "action", action, "user_id", userID, "outcome", outcome, "amount", delta)
	return EarningResult{
		Action:  action,
		Outcome: outcome,
		Amount:  delta,
		Account: acct,
		NextAt:  now.Add(CooldownWindow),
	}, nil
}
