package main

import (
	"context"
	"fmt"

	rediscache "pet-guardianship/internal/adapters/cache/redis"
	"pet-guardianship/internal/adapters/storage/postgres"
	"pet-guardianship/internal/adapters/storage/sqlite"
	"pet-guardianship/internal/adapters/storage/sqlstore"
	"pet-guardianship/internal/platform/cache"
	"pet-guardianship/internal/platform/config"
)

// openStore abre el store durable según DB_DRIVER. Con "memory" devuelve nil y el
// router usa los repos in-memory.
func openStore(ctx context.Context, cfg config.Config) (*sqlstore.Store, func() error, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return postgres.NewStore(db), db.Close, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewStore(db), db.Close, nil
	default:
		return nil, func() error { return nil }, nil
	}
}

// openCache devuelve redis si hay REDIS_URL. nil deja que el router elija el cache in-process.
func openCache(ctx context.Context, cfg config.Config) (cache.Store, func() error, error) {
	if cfg.RedisURL == "" || cfg.CacheTTL <= 0 {
		return nil, func() error { return nil }, nil
	}
	c, err := rediscache.Open(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open redis: %w", err)
	}
	return c, c.Close, nil
}
