package store

import (
	"context"
	"fmt"
	"log/slog"

	"cashbot/internal/config"
	"cashbot/internal/db"
	"cashbot/internal/game"
)

// Open builds the configured backend. The returned close func releases it.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (game.Store, func(), error) {
	switch cfg.Driver {
	case config.StoreMemory:
		logger.Warn("using in-memory store, balances will not survive a restart")
		return NewMemory(), func() {}, nil
	case config.StoreSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx, pool, game.StartingJackpot); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return NewPostgres(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
