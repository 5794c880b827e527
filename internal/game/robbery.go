package game

import (
	"context"
	"fmt"
	"math"
)

const (
	robberyCaughtChance = 0.20
	robberyFineRate     = 0.30
	robberyMinTake      = 0.60
	robberyMaxTake      = 1.00
)

// Rob resolves one robbery attempt. A caught robber pays a fine out of cash,
// which is allowed to go negative.
func (s *Service) Rob(ctx context.Context, robberID, targetID string) (RobberyResult, error) {
	if robberID == targetID {
		return RobberyResult{}, fmt.Errorf("%w: you cannot rob yourself", ErrInvalidTarget)
	}
	unlock := s.accounts.Lock(robberID, targetID)
	defer unlock()

	robber, err := s.store.GetAccount(ctx, robberID)
	if err != nil {
		return RobberyResult{}, err
	}
	target, err := s.store.GetAccount(ctx, targetID)
	if err != nil {
		return RobberyResult{}, err
	}

	if target.Cash <= 0 {
		stats, err := s.store.RecordRobbery(ctx, robberID, 0, false)
		if err != nil {
			return RobberyResult{}, err
		}
		res := RobberyResult{Outcome: RobberyNothingToSteal, Robber: robber, Target: target, Stats: stats}
		return res, ErrNothingToSteal
	}

	if s.rng.Float64() < robberyCaughtChance {
		fine := max(int64(math.Floor(robberyFineRate*float64(robber.Wealth()))), 0)
		if fine > 0 {
			robber, err = s.store.AdjustAccount(ctx, robberID, -fine, 0)
			if err != nil {
				return RobberyResult{}, err
			}
		}
		stats, err := s.store.RecordRobbery(ctx, robberID, 0, false)
		if err != nil {
			return RobberyResult{}, err
		}
		s.log.Info("robbery caught", "robber_id", robberID, "target_id", targetID, "fine", fine)
		return RobberyResult{Outcome: RobberyCaught, Amount: fine, Robber: robber, Target: target, Stats: stats}, nil
	}

	pct := robberyMinTake + s.rng.Float64()*(robberyMaxTake-robberyMinTake)
	stolen := min(int64(math.Floor(float64(target.Cash)*pct)), target.Cash)
	target, robber, err = s.transferCash(ctx, targetID, robberID, stolen)
	if err != nil {
		return RobberyResult{}, err
	}
	stats, err := s.store.RecordRobbery(ctx, robberID, stolen, true)
	if err != nil {
		return RobberyResult{}, err
	}
	s.log.Info("robbery success", "robber_id", robberID, "target_id", targetID, "amount", stolen)
	return RobberyResult{Outcome: RobberySuccess, Amount: stolen, Robber: robber, Target: target, Stats: stats}, nil
}

// Robberies returns one page of the total-stolen leaderboard plus the
// caller's own record and rank.
func (s *Service) Robberies(ctx context.Context, userID string, page int) (RobberyBoard, error) {
	self, err := s.store.GetRobberyStats(ctx, userID)
	if err != nil {
		return RobberyBoard{}, err
	}
	all, err := s.store.ListRobberyStatsDesc(ctx)
	if err != nil {
		return RobberyBoard{}, err
	}
	board := RobberyBoard{Self: self, Pages: pageCount(len(all), LeaderboardPageSize)}
	board.Page = clampPage(page, board.Pages)
	for i, r := range all {
		if r.UserID == userID {
			board.SelfRank = i + 1
			break
		}
	}
	start := (board.Page - 1) * LeaderboardPageSize
	end := min(start+LeaderboardPageSize, len(all))
	for i := start; i < end; i++ {
		board.Rows = append(board.Rows, RobberyRow{Rank: i + 1, RobberyRecord: all[i]})
	}
	return board, nil
}
