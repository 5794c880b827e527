package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

var schema = []string{
	`CREATE SCHEMA IF NOT EXISTS cashbot`,
	`CREATE TABLE IF NOT EXISTS cashbot.accounts (
		user_id    TEXT PRIMARY KEY,
		cash       BIGINT NOT NULL,
		bank       BIGINT NOT NULL DEFAULT 0 CHECK (bank >= 0),
		last_work  TIMESTAMPTZ,
		last_crime TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS accounts_wealth_idx ON cashbot.accounts ((cash + bank) DESC)`,
	`CREATE TABLE IF NOT EXISTS cashbot.robbery_stats (
		user_id      TEXT PRIMARY KEY,
		total_stolen BIGINT NOT NULL DEFAULT 0,
		successful   BIGINT NOT NULL DEFAULT 0,
		failed       BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS cashbot.lottery (
		id        SMALLINT PRIMARY KEY CHECK (id = 1),
		jackpot   BIGINT NOT NULL,
		tickets   JSONB NOT NULL DEFAULT '{}'::jsonb,
		last_draw TIMESTAMPTZ
	)`,
}

// Migrate creates the cashbot schema when missing and seeds the lottery row.
func Migrate(ctx context.Context, pool *pgxpool.Pool, startingJackpot int64) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	_, err := pool.Exec(ctx, `
		INSERT INTO cashbot.lottery (id, jackpot) VALUES (1, $1)
		ON CONFLICT (id) DO NOTHING
	`, startingJackpot)
	if err != nil {
		return fmt.Errorf("seed lottery: %w", err)
	}
	return nil
}
