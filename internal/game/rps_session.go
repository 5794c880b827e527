package game

import (
	"context"
	"fmt"
	"sync"
)

type DuelStage string

const (
	DuelPending  DuelStage = "pending"
	DuelActive   DuelStage = "active"
	DuelResolved DuelStage = "resolved"
	DuelDeclined DuelStage = "declined"
	DuelExpired  DuelStage = "expired"
)

// DuelView is a snapshot of a rock-paper-scissors challenge. Hands are only
// revealed once the duel is resolved.
type DuelView struct {
	ID         string          `json:"id"`
	Challenger string          `json:"challenger"`
	Opponent   string          `json:"opponent"`
	Bet        int64           `json:"bet"`
	Stage      DuelStage       `json:"stage"`
	Chosen     []string        `json:"chosen"`
	Hands      map[string]Hand `json:"hands,omitempty"`
	Winner     string          `json:"winner,omitempty"`
	Payout     int64           `json:"payout"`
}

type duelSession struct {
	mu         sync.Mutex
	id         string
	challenger string
	opponent   string
	bet        int64
	stage      DuelStage
	hands      map[string]Hand
	idle       idleTimer
}

func (d *duelSession) participant(userID string) bool {
	return userID == d.challenger || userID == d.opponent
}

func (d *duelSession) view() DuelView {
	v := DuelView{
		ID:         d.id,
		Challenger: d.challenger,
		Opponent:   d.opponent,
		Bet:        d.bet,
		Stage:      d.stage,
	}
	for _, p := range []string{d.challenger, d.opponent} {
		if _, ok := d.hands[p]; ok {
			v.Chosen = append(v.Chosen, p)
		}
	}
	if d.stage == DuelResolved {
		v.Hands = map[string]Hand{d.challenger: d.hands[d.challenger], d.opponent: d.hands[d.opponent]}
	}
	return v
}

// Challenge opens a pending duel. Both players must be able to cover the bet
// now and again when the opponent accepts; no money moves until then. A zero
// amount is a friendly match.
func (s *Service) Challenge(ctx context.Context, challengerID, opponentID string, amt Amount) (DuelView, error) {
	if challengerID == opponentID {
		return DuelView{}, fmt.Errorf("%w: you cannot challenge yourself", ErrInvalidTarget)
	}
	bet, err := s.coverBoth(ctx, challengerID, opponentID, amt)
	if err != nil {
		return DuelView{}, err
	}

	sess := &duelSession{
		id:         newSessionID(),
		challenger: challengerID,
		opponent:   opponentID,
		bet:        bet,
		stage:      DuelPending,
		hands:      make(map[string]Hand, 2),
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.duels.put(sess.id, sess)
	s.armDuel(sess)
	s.log.Info("duel challenged", "session_id", sess.id, "challenger_id", challengerID, "opponent_id", opponentID, "bet", bet)
	return sess.view(), nil
}

// coverBoth resolves amt against the challenger and checks both balances.
func (s *Service) coverBoth(ctx context.Context, challengerID, opponentID string, amt Amount) (int64, error) {
	unlock := s.accounts.Lock(challengerID, opponentID)
	defer unlock()

	challenger, err := s.store.GetAccount(ctx, challengerID)
	if err != nil {
		return 0, err
	}
	opponent, err := s.store.GetAccount(ctx, opponentID)
	if err != nil {
		return 0, err
	}
	if amt.IsZero() {
		return 0, nil
	}
	bet, err := stake(challenger, amt)
	if err != nil {
		return 0, err
	}
	if bet > opponent.Cash {
		return 0, fmt.Errorf("%w: opponent cannot cover %d", ErrInsufficientFunds, bet)
	}
	return bet, nil
}

// Accept moves a pending duel to active and escrows both stakes.
func (s *Service) Accept(ctx context.Context, sessionID, userID string) (DuelView, error) {
	sess, err := s.lockDuel(sessionID)
	if err != nil {
		return DuelView{}, err
	}
	defer sess.mu.Unlock()
	if sess.stage != DuelPending {
		return DuelView{}, ErrSessionEnded
	}
	if userID != sess.opponent {
		return DuelView{}, ErrNotYourGame
	}
	if sess.bet > 0 {
		if err := s.escrowDuel(ctx, sess); err != nil {
			return DuelView{}, err
		}
	}
	sess.stage = DuelActive
	s.armDuel(sess)
	s.log.Info("duel accepted", "session_id", sess.id)
	return sess.view(), nil
}

func (s *Service) escrowDuel(ctx context.Context, sess *duelSession) error {
	unlock := s.accounts.Lock(sess.challenger, sess.opponent)
	defer unlock()

	for _, p := range []string{sess.challenger, sess.opponent} {
		acct, err := s.store.GetAccount(ctx, p)
		if err != nil {
			return err
		}
		if acct.Cash < sess.bet {
			return fmt.Errorf("%s: %w", p, insufficient(sess.bet, acct.Cash))
		}
	}
	if _, err := s.store.AdjustAccount(ctx, sess.challenger, -sess.bet, 0); err != nil {
		return err
	}
	if _, err := s.store.AdjustAccount(ctx, sess.opponent, -sess.bet, 0); err != nil {
		s.refund(ctx, sess.challenger, sess.bet, "duel escrow failed")
		return err
	}
	return nil
}

func (s *Service) Decline(ctx context.Context, sessionID, userID string) (DuelView, error) {
	sess, err := s.lockDuel(sessionID)
	if err != nil {
		return DuelView{}, err
	}
	defer sess.mu.Unlock()
	if sess.stage != DuelPending {
		return DuelView{}, ErrSessionEnded
	}
	if userID != sess.opponent {
		return DuelView{}, ErrNotYourGame
	}
	sess.stage = DuelDeclined
	sess.idle.stop()
	s.duels.remove(sess.id)
	s.log.Info("duel declined", "session_id", sess.id)
	return sess.view(), nil
}

// Choose records one participant's hand. The second hand resolves the duel.
func (s *Service) Choose(ctx context.Context, sessionID, userID string, hand Hand) (DuelView, error) {
	if _, ok := beats[hand]; !ok {
		return DuelView{}, fmt.Errorf("%w: %q", ErrInvalidChoice, hand)
	}
	sess, err := s.lockDuel(sessionID)
	if err != nil {
		return DuelView{}, err
	}
	defer sess.mu.Unlock()
	if !sess.participant(userID) {
		return DuelView{}, ErrNotYourGame
	}
	switch sess.stage {
	case DuelPending:
		return DuelView{}, ErrNotAccepted
	case DuelActive:
	default:
		return DuelView{}, ErrSessionEnded
	}
	if _, ok := sess.hands[userID]; ok {
		return DuelView{}, ErrAlreadyActed
	}
	sess.hands[userID] = hand
	if len(sess.hands) < 2 {
		return sess.view(), nil
	}
	return s.resolveDuel(ctx, sess)
}

func (s *Service) resolveDuel(ctx context.Context, sess *duelSession) (DuelView, error) {
	sess.stage = DuelResolved
	sess.idle.stop()
	s.duels.remove(sess.id)

	var winner string
	switch Duel(sess.hands[sess.challenger], sess.hands[sess.opponent]) {
	case 1:
		winner = sess.challenger
	case -1:
		winner = sess.opponent
	}

	v := sess.view()
	v.Winner = winner
	if sess.bet > 0 {
		unlock := s.accounts.Lock(sess.challenger, sess.opponent)
		defer unlock()
		if winner != "" {
			v.Payout = 2 * sess.bet
			if _, err := s.store.AdjustAccount(ctx, winner, v.Payout, 0); err != nil {
				return DuelView{}, err
			}
		} else {
			s.refund(ctx, sess.challenger, sess.bet, "duel tie")
			s.refund(ctx, sess.opponent, sess.bet, "duel tie")
		}
	}
	s.log.Info("duel resolved", "session_id", sess.id, "winner_id", winner, "payout", v.Payout)
	return v, nil
}

func (s *Service) DuelState(sessionID string) (DuelView, error) {
	sess, err := s.lockDuel(sessionID)
	if err != nil {
		return DuelView{}, err
	}
	defer sess.mu.Unlock()
	return sess.view(), nil
}

func (s *Service) lockDuel(sessionID string) (*duelSession, error) {
	sess, ok := s.duels.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	return sess, nil
}

func (s *Service) armDuel(sess *duelSession) {
	sess.idle.arm(s.clock, DuelIdleTimeout, func(gen uint64) {
		s.expireDuel(sess, gen)
	})
}

// expireDuel fires after the idle timeout. A pending duel moved no money; an
// active one returns both stakes.
func (s *Service) expireDuel(sess *duelSession, gen uint64) {
	ctx := context.Background()

	sess.mu.Lock()
	stage := sess.stage
	if (stage != DuelPending && stage != DuelActive) || !sess.idle.current(gen) {
		sess.mu.Unlock()
		return
	}
	sess.stage = DuelExpired
	s.duels.remove(sess.id)
	var refunded int64
	if stage == DuelActive && sess.bet > 0 {
		func() {
			unlock := s.accounts.Lock(sess.challenger, sess.opponent)
			defer unlock()
			s.refund(ctx, sess.challenger, sess.bet, "duel timeout")
			s.refund(ctx, sess.opponent, sess.bet, "duel timeout")
		}()
		refunded = sess.bet
	}
	ev := SessionExpiry{
		SessionID:    sess.id,
		Kind:         SessionDuel,
		Participants: []string{sess.challenger, sess.opponent},
		Stage:        string(stage),
		Refunded:     refunded,
	}
	sess.mu.Unlock()

	s.log.Info("duel expired", "session_id", sess.id, "stage", stage, "refunded", refunded)
	s.announcer.AnnounceExpiry(ctx, ev)
}
