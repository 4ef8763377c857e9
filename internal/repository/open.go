package repository

import (
	"context"
	"fmt"

	"github.com/set-night/gptdesk/internal/config"
)

// Open returns the store selected by cfg.StoreDriver, initialized and ready.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var store Store
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pg, err := OpenPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = pg
	default:
		store = NewJSONStore(cfg.StorePath)
	}

	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	return store, nil
}
