package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"cashbot/internal/game"
)

// SQLite persists the economy to a single database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; the pure-Go driver reports SQLITE_BUSY otherwise.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if logger != nil {
		logger.Info("sqlite store opened", "path", path)
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			user_id    TEXT PRIMARY KEY,
			cash       INTEGER NOT NULL,
			bank       INTEGER NOT NULL DEFAULT 0 CHECK (bank >= 0),
			last_work  INTEGER,
			last_crime INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS robbery_stats (
			user_id      TEXT PRIMARY KEY,
			total_stolen INTEGER NOT NULL DEFAULT 0,
			successful   INTEGER NOT NULL DEFAULT 0,
			failed       INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS lottery (
			id        INTEGER PRIMARY KEY CHECK (id = 1),
			jackpot   INTEGER NOT NULL,
			tickets   TEXT NOT NULL DEFAULT '{}',
			last_draw INTEGER
		)`,
		fmt.Sprintf(`INSERT OR IGNORE INTO lottery (id, jackpot, tickets) VALUES (1, %d, '{}')`, game.StartingJackpot),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

const accountColumns = `user_id, cash, bank, last_work, last_crime`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (game.Account, error) {
	var (
		a                game.Account
		lastWork, lastCr sql.NullInt64
	)
	if err := row.Scan(&a.UserID, &a.Cash, &a.Bank, &lastWork, &lastCr); err != nil {
		return game.Account{}, err
	}
	a.LastWork = fromNanos(lastWork)
	a.LastCrime = fromNanos(lastCr)
	return a, nil
}

func fromNanos(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(0, v.Int64).UTC()
	return &t
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func ensureAccount(ctx context.Context, db execer, userID string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO accounts (user_id, cash, bank) VALUES (?, ?, 0)`,
		userID, game.StartingCash)
	if err != nil {
		return fmt.Errorf("create account %s: %w", userID, err)
	}
	return nil
}

func (s *SQLite) GetAccount(ctx context.Context, userID string) (game.Account, error) {
	if err := ensureAccount(ctx, s.db, userID); err != nil {
		return game.Account{}, err
	}
	return scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ?`, userID))
}

func (s *SQLite) AdjustAccount(ctx context.Context, userID string, cashDelta, bankDelta int64) (game.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return game.Account{}, err
	}
	defer tx.Rollback()

	if err := ensureAccount(ctx, tx, userID); err != nil {
		return game.Account{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET cash = cash + ?, bank = bank + ? WHERE user_id = ?`,
		cashDelta, bankDelta, userID); err != nil {
		return game.Account{}, fmt.Errorf("adjust %s: %w", userID, err)
	}
	acct, err := scanAccount(tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ?`, userID))
	if err != nil {
		return game.Account{}, err
	}
	return acct, tx.Commit()
}

func cooldownColumn(kind game.CooldownKind) (string, error) {
	switch kind {
	case game.CooldownWork:
		return "last_work", nil
	case game.CooldownCrime:
		return "last_crime", nil
	}
	return "", fmt.Errorf("unknown cooldown kind %q", kind)
}

func (s *SQLite) GetCooldown(ctx context.Context, userID string, kind game.CooldownKind) (time.Time, bool, error) {
	col, err := cooldownColumn(kind)
	if err != nil {
		return time.Time{}, false, err
	}
	var v sql.NullInt64
	err = s.db.QueryRowContext(ctx, `SELECT `+col+` FROM accounts WHERE user_id = ?`, userID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !v.Valid) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return *fromNanos(v), true, nil
}

func (s *SQLite) SetCooldown(ctx context.Context, userID string, kind game.CooldownKind, at time.Time) error {
	col, err := cooldownColumn(kind)
	if err != nil {
		return err
	}
	if err := ensureAccount(ctx, s.db, userID); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE accounts SET `+col+` = ? WHERE user_id = ?`, at.UnixNano(), userID)
	return err
}

func (s *SQLite) ListAccountsByWealthDesc(ctx context.Context) ([]game.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY cash + bank DESC, user_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLite) GetRobberyStats(ctx context.Context, userID string) (game.RobberyRecord, error) {
	r := game.RobberyRecord{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT total_stolen, successful, failed FROM robbery_stats WHERE user_id = ?`, userID).
		Scan(&r.TotalStolen, &r.Successful, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return r, nil
	}
	return r, err
}

func (s *SQLite) RecordRobbery(ctx context.Context, userID string, amount int64, success bool) (game.RobberyRecord, error) {
	var succ, fail int64
	if success {
		succ = 1
	} else {
		fail = 1
		amount = 0
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO robbery_stats (user_id, total_stolen, successful, failed) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			total_stolen = total_stolen + excluded.total_stolen,
			successful   = successful + excluded.successful,
			failed       = failed + excluded.failed`,
		userID, amount, succ, fail)
	if err != nil {
		return game.RobberyRecord{}, fmt.Errorf("record robbery: %w", err)
	}
	return s.GetRobberyStats(ctx, userID)
}

func (s *SQLite) ListRobberyStatsDesc(ctx context.Context) ([]game.RobberyRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, total_stolen, successful, failed FROM robbery_stats ORDER BY total_stolen DESC, user_id ASC`)
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

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readLottery(ctx context.Context, db queryRower) (game.LotteryState, error) {
	var (
		state   game.LotteryState
		tickets string
		last    sql.NullInt64
	)
	err := db.QueryRowContext(ctx, `SELECT jackpot, tickets, last_draw FROM lottery WHERE id = 1`).
		Scan(&state.Jackpot, &tickets, &last)
	if err != nil {
		return game.LotteryState{}, fmt.Errorf("read lottery: %w", err)
	}
	if err := json.Unmarshal([]byte(tickets), &state.Tickets); err != nil {
		return game.LotteryState{}, fmt.Errorf("decode tickets: %w", err)
	}
	if state.Tickets == nil {
		state.Tickets = map[string][]int{}
	}
	state.LastDraw = fromNanos(last)
	return state, nil
}

func (s *SQLite) GetLotteryState(ctx context.Context) (game.LotteryState, error) {
	return readLottery(ctx, s.db)
}

func (s *SQLite) AddTickets(ctx context.Context, userID string, numbers []int, jackpotDelta int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	state, err := readLottery(ctx, tx)
	if err != nil {
		return err
	}
	state.Tickets[userID] = append(state.Tickets[userID], numbers...)
	raw, err := json.Marshal(state.Tickets)
	if err != nil {
		return fmt.Errorf("encode tickets: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE lottery SET tickets = ?, jackpot = jackpot + ? WHERE id = 1`, string(raw), jackpotDelta); err != nil {
		return fmt.Errorf("store tickets: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) SetJackpot(ctx context.Context, amount int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE lottery SET jackpot = ? WHERE id = 1`, amount)
	return err
}

func (s *SQLite) SetLastDraw(ctx context.Context, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE lottery SET last_draw = ? WHERE id = 1`, at.UnixNano())
	return err
}

func (s *SQLite) ResetLottery(ctx context.Context, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE lottery SET jackpot = ?, tickets = '{}', last_draw = ? WHERE id = 1`,
		game.StartingJackpot, at.UnixNano())
	return err
}

func (s *SQLite) CompleteDraw(ctx context.Context, at time.Time, winners []string, prize int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, w := range winners {
		if err := ensureAccount(ctx, tx, w); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET cash = cash + ? WHERE user_id = ?`, prize, w); err != nil {
			return fmt.Errorf("credit %s: %w", w, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE lottery SET jackpot = ?, tickets = '{}', last_draw = ? WHERE id = 1`,
		game.StartingJackpot, at.UnixNano()); err != nil {
		return fmt.Errorf("reset lottery: %w", err)
	}
	return tx.Commit()
}

var _ game.Store = (*SQLite)(nil)
