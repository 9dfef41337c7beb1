package store

import (
	"context"
	"fmt"

	"ticket-admin-service/internal/config"
)

// CreateStore builds the ticket store on the provider named in config.
func CreateStore(ctx context.Context, cfg config.Store) (Store, error) {
	var (
		provider Provider
		err      error
	)

	switch cfg.Provider {
	case config.ProviderTypeRedis:
		provider, err = NewRedisProvider(ctx, cfg.Redis)
	case config.ProviderTypeRocksDB:
		provider, err = NewRocksDBProvider(cfg.RocksDB)
	default:
		return nil, fmt.Errorf("unknown store provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewTicketStore(provider, cfg.KeyPrefix), nil
}
