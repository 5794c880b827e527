package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cashbot/internal/game"
)

// Postgres stores the economy in the cashbot schema. Every mutation is a
// single statement or a row-locked transaction.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{db: pool}
}

func scanPgAccount(row pgx.Row) (game.Account, error) {
	var a game.Account
	if err := row.Scan(&a.UserID, &a.Cash, &a.Bank, &a.LastWork, &a.LastCrime); err != nil {
		return game.Account{}, err
	}
	return a, nil
}

func (p *Postgres) GetAccount(ctx context.Context, userID string) (game.Account, error) {
	return scanPgAccount(p.db.QueryRow(ctx, `
		INSERT INTO cashbot.accounts (user_id, cash, bank) VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, cash, bank, last_work, last_crime
	`, userID, game.StartingCash))
}

func (p *Postgres) AdjustAccount(ctx context.Context, userID string, cashDelta, bankDelta int64) (game.Account, error) {
	acct, err := scanPgAccount(p.db.QueryRow(ctx, `
		INSERT INTO cashbot.accounts (user_id, cash, bank) VALUES ($1, $2::bigint + $3::bigint, $4::bigint)
		ON CONFLICT (user_id) DO UPDATE SET
			cash = cashbot.accounts.cash + $3,
			bank = cashbot.accounts.bank + $4
		RETURNING user_id, cash, bank, last_work, last_crime
	`, userID, game.StartingCash, cashDelta, bankDelta))
	if err != nil {
		return game.Account{}, fmt.Errorf("adjust %s: %w", userID, err)
	}
	return acct, nil
}

func pgCooldownColumn(kind game.CooldownKind) (string, error) {
	switch kind {
	case game.CooldownWork:
		return "last_work", nil
	case game.CooldownCrime:
		return "last_crime", nil
	}
	return "", fmt.Errorf("unknown cooldown kind %q", kind)
}

func (p *Postgres) GetCooldown(ctx context.Context, userID string, kind game.CooldownKind) (time.Time, bool, error) {
	col, err := pgCooldownColumn(kind)
	if err != nil {
		return time.Time{}, false, err
	}
	var at *time.Time
	err = p.db.QueryRow(ctx, `SELECT `+col+` FROM cashbot.accounts WHERE user_id = $1`, userID).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && at == nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return *at, true, nil
}

func (p *Postgres) SetCooldown(ctx context.Context, userID string, kind game.CooldownKind, at time.Time) error {
	col, err := pgCooldownColumn(kind)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO cashbot.accounts (user_id, cash, bank, `+col+`) VALUES ($1, $2, 0, $3)
		ON CONFLICT (user_id) DO UPDATE SET `+col+` = EXCLUDED.`+col, userID, game.StartingCash, at)
	return err
}

func (p *Postgres) ListAccountsByWealthDesc(ctx context.Context) ([]game.Account, error) {
	rows, err := p.db.Query(ctx, `
		SELECT user_id, cash, bank, last_work, last_crime
		FROM cashbot.accounts
		ORDER BY cash + bank DESC, user_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Account
	for rows.Next() {
		a, err := scanPgAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *Postgres) GetRobberyStats(ctx context.Context, userID string) (game.RobberyRecord, error) {
	r := game.RobberyRecord{UserID: userID}
	err := p.db.QueryRow(ctx, `
		SELECT total_stolen, successful, failed FROM cashbot.robbery_stats WHERE user_id = $1
	`, userID).Scan(&r.TotalStolen, &r.Successful, &r.Failed)
	if errors.Is(err, pgx.ErrNoRows) {
		return r, nil
	}
	return r, err
}

func (p *Postgres) RecordRobbery(ctx context.Context, userID string, amount int64, success bool) (game.RobberyRecord, error) {
	var succ, fail int64
	if success {
		succ = 1
	} else {
		fail = 1
		amount = 0
	}
	r := game.RobberyRecord{UserID: userID}
	err := p.db.QueryRow(ctx, `
		INSERT INTO cashbot.robbery_stats (user_id, total_stolen, successful, failed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			total_stolen = cashbot.robbery_stats.total_stolen + EXCLUDED.total_stolen,
			successful   = cashbot.robbery_stats.successful + EXCLUDED.successful,
			failed       = cashbot.robbery_stats.failed + EXCLUDED.failed
		RETURNING total_stolen, successful, failed
	`, userID, amount, succ, fail).Scan(&r.TotalStolen, &r.Successful, &r.Failed)
	if err != nil {
		return game.RobberyRecord{}, fmt.Errorf("record robbery: %w", err)
	}
	return r, nil
}

func (p *Postgres) ListRobberyStatsDesc(ctx context.Context) ([]game.RobberyRecord, error) {
	rows, err := p.db.Query(ctx, `
		SELECT user_id, total_stolen, successful, failed
		FROM cashbot.robbery_stats
		ORDER BY total_stolen DESC, user_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.RobberyRecord
	for rows.Next() {
		var r game.RobberyRecord
		if err := rows.Scan(&r.UserID, &r.TotalStolen, &r.Successful, &r.Failed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) GetLotteryState(ctx context.Context) (game.LotteryState, error) {
	return readPgLottery(ctx, p.db, "")
}

func readPgLottery(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, suffix string) (game.LotteryState, error) {
	var (
		state game.LotteryState
		raw   []byte
	)
	err := q.QueryRow(ctx, `SELECT jackpot, tickets, last_draw FROM cashbot.lottery WHERE id = 1`+suffix).
		Scan(&state.Jackpot, &raw, &state.LastDraw)
	if err != nil {
		return game.LotteryState{}, fmt.Errorf("read lottery: %w", err)
	}
	if err := json.Unmarshal(raw, &state.Tickets); err != nil {
		return game.LotteryState{}, fmt.Errorf("decode tickets: %w", err)
	}
	if state.Tickets == nil {
		state.Tickets = map[string][]int{}
	}
	return state, nil
}

func (p *Postgres) AddTickets(ctx context.Context, userID string, numbers []int, jackpotDelta int64) error {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	state, err := readPgLottery(ctx, tx, " FOR UPDATE")
	if err != nil {
		return err
	}
	state.Tickets[userID] = append(state.Tickets[userID], numbers...)
	raw, err := json.Marshal(state.Tickets)
	if err != nil {
		return fmt.Errorf("encode tickets: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE cashbot.lottery SET tickets = $1::jsonb, jackpot = jackpot + $2 WHERE id = 1
	`, string(raw), jackpotDelta); err != nil {
		return fmt.Errorf("store tickets: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *Postgres) SetJackpot(ctx context.Context, amount int64) error {
	_, err := p.db.Exec(ctx, `UPDATE cashbot.lottery SET jackpot = $1 WHERE id = 1`, amount)
	return err
}

func (p *Postgres) SetLastDraw(ctx context.Context, at time.Time) error {
	_, err := p.db.Exec(ctx, `UPDATE cashbot.lottery SET last_draw = $1 WHERE id = 1`, at)
	return err
}

func (p *Postgres) ResetLottery(ctx context.Context, at time.Time) error {
	_, err := p.db.Exec(ctx, `
		UPDATE cashbot.lottery SET jackpot = $1, tickets = '{}'::jsonb, last_draw = $2 WHERE id = 1
	`, game.StartingJackpot, at)
	return err
}

func (p *Postgres) CompleteDraw(ctx context.Context, at time.Time, winners []string, prize int64) error {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := readPgLottery(ctx, tx, " FOR UPDATE"); err != nil {
		return err
	}
	for _, w := range winners {
		if _, err := tx.Exec(ctx, `
			INSERT INTO cashbot.accounts (user_id, cash, bank) VALUES ($1, $2::bigint + $3::bigint, 0)
			ON CONFLICT (user_id) DO UPDATE SET cash = cashbot.accounts.cash + $3
		`, w, game.StartingCash, prize); err != nil {
			return fmt.Errorf("credit %s: %w", w, err)
		}
	}
	if _, err := tx.Exec(ctx, `
		UPDATE cashbot.lottery SET jackpot = $1, tickets = '{}'::jsonb, last_draw = $2 WHERE id = 1
	`, game.StartingJackpot, at); err != nil {
		return fmt.Errorf("reset lottery: %w", err)
	}
	return tx.Commit(ctx)
}

var _ game.Store = (*Postgres)(nil)
