// Package storage opens the configured records backend.
package storage

import (
	"context"
	"fmt"

	"github.com/RenanGalvao/pizza-ecommerce/internal/config"
	"github.com/RenanGalvao/pizza-ecommerce/records"
	"github.com/RenanGalvao/pizza-ecommerce/records/filestore"
	"github.com/RenanGalvao/pizza-ecommerce/records/memstore"
	"github.com/RenanGalvao/pizza-ecommerce/records/pgstore"
	"github.com/RenanGalvao/pizza-ecommerce/records/redisstore"
	"github.com/rs/zerolog/log"
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Open returns the store selected by cfg and a func that releases it.
func Open(ctx context.Context, cfg config.StoreConfig) (records.Store, func(), error) {
	backend := cfg.GetStoreBackend()
	noop := func() {}

	switch backend {
	case BackendMemory:
		log.Warn().Msg("using in-memory record store; data is lost on restart")
		return memstore.New(), noop, nil
	case BackendFile:
		s, err := filestore.New(cfg.GetDataFolder())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("folder", cfg.GetDataFolder()).Msg("using file record store")
		return s, noop, nil
	case BackendRedis:
		s, err := redisstore.Open(ctx, redisstore.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
			Prefix:   cfg.GetRedisPrefix(),
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.GetRedisAddr()).Msg("using redis record store")
		return s, func() {
			if err := s.Close(); err != nil {
				log.Err(err).Msg("failed to close redis client")
			}
		}, nil
	case BackendPostgres:
		s, err := pgstore.Open(ctx, cfg.GetPostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("using postgres record store")
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
