package game

import "time"

type CooldownKind string

const (
	CooldownWork  CooldownKind = "work"
	CooldownCrime CooldownKind = "crime"
)

func (k CooldownKind) Valid() bool {
	return k == CooldownWork || k == CooldownCrime
}

type Account struct {
	UserID    string     `json:"user_id"`
	Cash      int64      `json:"cash"`
	Bank      int64      `json:"bank"`
	LastWork  *time.Time `json:"last_work,omitempty"`
	LastCrime *time.Time `json:"last_crime,omitempty"`
}

func (a Account) Wealth() int64 {
	return a.Cash + a.Bank
}

type RobberyRecord struct {
	UserID      string `json:"user_id"`
	TotalStolen int64  `json:"total_stolen"`
	Successful  int64  `json:"successful_robberies"`
	Failed      int64  `json:"failed_robberies"`
}

type LotteryState struct {
	Jackpot  int64            `json:"jackpot"`
	Tickets  map[string][]int `json:"tickets"`
	LastDraw *time.Time       `json:"last_draw,omitempty"`
}

func (l LotteryState) TicketCount() int {
	n := 0
	for _, t := range l.Tickets {
		n += len(t)
	}
	return n
}

type WealthRow struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Cash   int64  `json:"cash"`
	Bank   int64  `json:"bank"`
	Wealth int64  `json:"wealth"`
}

type LeaderboardPage struct {
	Page  int         `json:"page"`
	Pages int         `json:"pages"`
	Rows  []WealthRow `json:"rows"`
}

type MoneyView struct {
	Account
	Wealth int64 `json:"wealth"`
	Rank   int   `json:"rank"`
}

type PaymentResult struct {
	Amount int64   `json:"amount"`
	From   Account `json:"from"`
	To     Account `json:"to"`
}

type EarningResult struct {
	Action  string    `json:"action"`
	Outcome string    `json:"outcome"`
	Amount  int64     `json:"amount"`
	Account Account   `json:"account"`
	NextAt  time.Time `json:"next_at"`
}

type RobberyOutcome string

const (
	RobberyNothingToSteal RobberyOutcome = "nothing_to_steal"
	RobberyCaught         RobberyOutcome = "caught"
	RobberySuccess        RobberyOutcome = "success"
)

type RobberyResult struct {
	Outcome RobberyOutcome `json:"outcome"`
	Amount  int64          `json:"amount"`
	Robber  Account        `json:"robber"`
	Target  Account        `json:"target"`
	Stats   RobberyRecord  `json:"stats"`
}

type RobberyRow struct {
	Rank int `json:"rank"`
	RobberyRecord
}

type RobberyBoard struct {
	Self     RobberyRecord `json:"self"`
	SelfRank int           `json:"self_rank"`
	Page     int           `json:"page"`
	Pages    int           `json:"pages"`
	Rows     []RobberyRow  `json:"rows"`
}

type RouletteResult struct {
	Bet     RouletteBet `json:"bet"`
	Number  int         `json:"number"`
	Color   Color       `json:"color"`
	Won     bool        `json:"won"`
	Stake   int64       `json:"stake"`
	Net     int64       `json:"net"`
	Account Account     `json:"account"`
}

type DiceResult struct {
	Called  int     `json:"called"`
	Rolled  int     `json:"rolled"`
	Won     bool    `json:"won"`
	Stake   int64   `json:"stake"`
	Net     int64   `json:"net"`
	Account Account `json:"account"`
}

type TicketPurchase struct {
	Numbers []int   `json:"numbers"`
	Cost    int64   `json:"cost"`
	Jackpot int64   `json:"jackpot"`
	Account Account `json:"account"`
}

type LotteryStatus struct {
	Jackpot          int64         `json:"jackpot"`
	TicketPrice      int64         `json:"ticket_price"`
	Tickets          int           `json:"tickets"`
	Players          int           `json:"players"`
	LastDraw         *time.Time    `json:"last_draw,omitempty"`
	NextDrawIn       time.Duration `json:"next_draw_in"`
	FirstDrawPending bool          `json:"first_draw_pending"`
}

type DrawResult struct {
	Number  int       `json:"number"`
	Winners []string  `json:"winners"`
	Prize   int64     `json:"prize"`
	Jackpot int64     `json:"jackpot"`
	DrawnAt time.Time `json:"drawn_at"`
}

type SessionKind string

const (
	SessionBlackjack SessionKind = "blackjack"
	SessionDuel      SessionKind = "rps"
)

// SessionExpiry is published when a session's idle timer wins the race.
type SessionExpiry struct {
	SessionID    string      `json:"session_id"`
	Kind         SessionKind `json:"kind"`
	Participants []string    `json:"participants"`
	Stage        string      `json:"stage"`
	Refunded     int64       `json:"refunded"`
}
