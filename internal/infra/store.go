package infra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ucid-labs/ucid/internal/config"
	"github.com/ucid-labs/ucid/internal/kvstore"
	"github.com/ucid-labs/ucid/internal/logging"
)

// OpenStore opens the durable key-value store selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (kvstore.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return kvstore.NewMemory(), nil
	case config.DriverSQLite:
		store, err := kvstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverBadger:
		store, err := kvstore.OpenBadger(cfg.BadgerDir, logging.NewBadgerLogger(logger))
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverRedis:
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return kvstore.NewOwnedRedis(client), nil
	case config.DriverPostgres:
		pool, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store, err := kvstore.NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
