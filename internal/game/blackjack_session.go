package game

import (
	"context"
	"sync"
)

type BlackjackState string

const (
	BlackjackInProgress BlackjackState = "in_progress"
	BlackjackBusted     BlackjackState = "busted"
	BlackjackStood      BlackjackState = "stood"
	BlackjackTimedOut   BlackjackState = "timed_out"
)

// BlackjackView is a snapshot of a round. While the round is in progress
// only the dealer's first card is shown.
type BlackjackView struct {
	ID          string         `json:"id"`
	Owner       string         `json:"owner"`
	Bet         int64          `json:"bet"`
	State       BlackjackState `json:"state"`
	Player      []Card         `json:"player"`
	Dealer      []Card         `json:"dealer"`
	PlayerValue int            `json:"player_value"`
	DealerValue int            `json:"dealer_value"`
	Outcome     HandOutcome    `json:"outcome,omitempty"`
	Payout      int64          `json:"payout"`
	Account     Account        `json:"account"`
}

type blackjackSession struct {
	mu     sync.Mutex
	id     string
	owner  string
	bet    int64
	deck   Deck
	player []Card
	dealer []Card
	state  BlackjackState
	idle   idleTimer
}

func (b *blackjackSession) view(acct Account) BlackjackView {
	v := BlackjackView{
		ID:          b.id,
		Owner:       b.owner,
		Bet:         b.bet,
		State:       b.state,
		Player:      append([]Card(nil), b.player...),
		PlayerValue: HandValue(b.player),
		Account:     acct,
	}
	if b.state == BlackjackInProgress && len(b.dealer) > 0 {
		v.Dealer = []Card{b.dealer[0]}
		v.DealerValue = HandValue(v.Dealer)
	} else {
		v.Dealer = append([]Card(nil), b.dealer...)
		v.DealerValue = HandValue(b.dealer)
	}
	return v
}

// StartBlackjack escrows the bet and deals the opening hands. The bet is
// returned if the round times out.
func (s *Service) StartBlackjack(ctx context.Context, userID string, amt Amount) (BlackjackView, error) {
	acct, bet, err := s.escrow(ctx, userID, amt)
	if err != nil {
		return BlackjackView{}, err
	}

	sess := &blackjackSession{
		id:    newSessionID(),
		owner: userID,
		bet:   bet,
		deck:  ShuffledDeck(s.rng),
		state: BlackjackInProgress,
	}
	sess.player = append(sess.player, sess.deck.Draw(s.rng), sess.deck.Draw(s.rng))
	sess.dealer = append(sess.dealer, sess.deck.Draw(s.rng), sess.deck.Draw(s.rng))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.blackjacks.put(sess.id, sess)
	s.armBlackjack(sess)
	s.log.Info("blackjack started", "session_id", sess.id, "user_id", userID, "bet", bet)
	return sess.view(acct), nil
}

// escrow takes a validated stake out of the user's cash.
func (s *Service) escrow(ctx context.Context, userID string, amt Amount) (Account, int64, error) {
	unlock := s.accounts.Lock(userID)
	defer unlock()

	acct, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return Account{}, 0, err
	}
	bet, err := stake(acct, amt)
	if err != nil {
		return Account{}, 0, err
	}
	acct, err = s.store.AdjustAccount(ctx, userID, -bet, 0)
	if err != nil {
		return Account{}, 0, err
	}
	return acct, bet, nil
}

func (s *Service) Hit(ctx context.Context, sessionID, userID string) (BlackjackView, error) {
	sess, err := s.openBlackjack(sessionID, userID)
	if err != nil {
		return BlackjackView{}, err
	}
	defer sess.mu.Unlock()

	sess.player = append(sess.player, sess.deck.Draw(s.rng))
	if HandValue(sess.player) <= 21 {
		s.armBlackjack(sess)
		acct, err := s.store.GetAccount(ctx, userID)
		if err != nil {
			return BlackjackView{}, err
		}
		return sess.view(acct), nil
	}
	sess.state = BlackjackBusted
	return s.settleBlackjack(ctx, sess, OutcomeLose)
}

func (s *Service) Stand(ctx context.Context, sessionID, userID string) (BlackjackView, error) {
	sess, err := s.openBlackjack(sessionID, userID)
	if err != nil {
		return BlackjackView{}, err
	}
	defer sess.mu.Unlock()

	sess.dealer = DealerPlay(sess.dealer, &sess.deck, s.rng)
	sess.state = BlackjackStood
	return s.settleBlackjack(ctx, sess, CompareHands(HandValue(sess.player), HandValue(sess.dealer)))
}

func (s *Service) BlackjackRound(ctx context.Context, sessionID string) (BlackjackView, error) {
	sess, ok := s.blackjacks.get(sessionID)
	if !ok {
		return BlackjackView{}, ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	acct, err := s.store.GetAccount(ctx, sess.owner)
	if err != nil {
		return BlackjackView{}, err
	}
	return sess.view(acct), nil
}

// openBlackjack returns the session locked and ready for a player action.
func (s *Service) openBlackjack(sessionID, userID string) (*blackjackSession, error) {
	sess, ok := s.blackjacks.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	if sess.owner != userID {
		sess.mu.Unlock()
		return nil, ErrNotYourGame
	}
	if sess.state != BlackjackInProgress {
		sess.mu.Unlock()
		return nil, ErrSessionEnded
	}
	return sess, nil
}

// settleBlackjack pays out against the escrowed bet. Caller holds sess.mu
// and has already moved the session to a terminal state.
func (s *Service) settleBlackjack(ctx context.Context, sess *blackjackSession, outcome HandOutcome) (BlackjackView, error) {
	sess.idle.stop()
	s.blackjacks.remove(sess.id)

	var payout int64
	switch outcome {
	case OutcomeWin:
		payout = 2 * sess.bet
	case OutcomePush:
		payout = sess.bet
	}

	unlock := s.accounts.Lock(sess.owner)
	defer unlock()
	var (
		acct Account
		err  error
	)
	if payout > 0 {
		acct, err = s.store.AdjustAccount(ctx, sess.owner, payout, 0)
	} else {
		acct, err = s.store.GetAccount(ctx, sess.owner)
	}
	if err != nil {
		return BlackjackView{}, err
	}
	s.log.Info("blackjack settled", "session_id", sess.id, "user_id", sess.owner, "outcome", outcome, "payout", payout)

	v := sess.view(acct)
	v.Outcome = outcome
	v.Payout = payout
	return v, nil
}

func (s *Service) armBlackjack(sess *blackjackSession) {
	sess.idle.arm(s.clock, BlackjackIdleTimeout, func(gen uint64) {
		s.expireBlackjack(sess, gen)
	})
}

func (s *Service) expireBlackjack(sess *blackjackSession, gen uint64) {
	ctx := context.Background()

	sess.mu.Lock()
	if sess.state != BlackjackInProgress || !sess.idle.current(gen) {
		sess.mu.Unlock()
		return
	}
	sess.state = BlackjackTimedOut
	s.blackjacks.remove(sess.id)
	func() {
		unlock := s.accounts.Lock(sess.owner)
		defer unlock()
		s.refund(ctx, sess.owner, sess.bet, "blackjack timeout")
	}()
	ev := SessionExpiry{
		SessionID:    sess.id,
		Kind:         SessionBlackjack,
		Participants: []string{sess.owner},
		Stage:        string(BlackjackInProgress),
		Refunded:     sess.bet,
	}
	sess.mu.Unlock()

	s.log.Info("blackjack timed out", "session_id", sess.id, "user_id", sess.owner, "refunded", sess.bet)
	s.announcer.AnnounceExpiry(ctx, ev)
}
