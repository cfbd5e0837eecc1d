package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/core"
)

func validateLink(link core.IdentityLink) error {
	if link.Provider == "" || link.Subject == "" {
		return fmt.Errorf("identity link requires provider and subject")
	}
	if link.UserID == "" {
		return fmt.Errorf("identity link for %s/%s has no user id", link.Provider, link.Subject)
	}
	return nil
}

// Open creates the identity store selected in cfg.
// The returned close function releases the underlying connections.
func Open(ctx context.Context, cfg config.StoreConfig) (core.IdentityStore, func() error, error) {
	switch cfg.Type {
	case config.StoreTypeMemory, "":
		log.Warn().Msg("using in-memory identity store, identities are lost on restart")
		return NewInMemoryIdentityStore(), func() error { return nil }, nil

	case config.StoreTypeSQL:
		db, err := NewDB(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		s := NewSQLIdentityStore(db)
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrating database: %w", err)
		}
		log.Info().
			Str("database", string(DetectDatabaseType(cfg.DSN))).
			Msg("using sql identity store")
		return s, db.Close, nil

	case config.StoreTypeRedis:
		s, err := NewRedisIdentityStore(ctx, RedisOptions{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			Prefix:   cfg.Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Addr).Msg("using redis identity store")
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store type '%s'", cfg.Type)
	}
}
