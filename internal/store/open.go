package store

import (
	"context"
	"fmt"

	"github.com/Tiliavir/trivial-event-tracker/internal/config"
)

// Open creates the backend selected by cfg.Backend, instrumented and behind
// a circuit breaker.
func Open(ctx context.Context, cfg config.StoreConfig) (EventStore, error) {
	var s EventStore
	switch cfg.Backend {
	case "", "rest":
		rs, err := NewREST(cfg)
		if err != nil {
			return nil, err
		}
		s = rs
	case "postgres":
		ps, err := NewPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := ps.Migrate(ctx); err != nil {
				ps.Close()
				return nil, err
			}
		}
		s = ps
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	backend := cfg.Backend
	if backend == "" {
		backend = "rest"
	}
	return Instrument(WithBreaker(s, "store-"+backend), backend), nil
}
