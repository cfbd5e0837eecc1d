package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Yishiba/animeko/internal/core"
)

var _ core.IdentityStore = (*RedisIdentityStore)(nil)

const defaultRedisPrefix = "animeko:"

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key, defaults to "animeko:".
	Prefix string
}

// RedisIdentityStore stores each link as a JSON document under a key derived from (provider, subject).
// SETNX on that key provides the uniqueness guarantee.
type RedisIdentityStore struct {
	client *redis.Client
	prefix string
}

func NewRedisIdentityStore(ctx context.Context, opts RedisOptions) (*RedisIdentityStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisIdentityStoreFromClient(client, opts.Prefix), nil
}

func NewRedisIdentityStoreFromClient(client *redis.Client, prefix string) *RedisIdentityStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisIdentityStore{client: client, prefix: prefix}
}

// linkKey includes the provider length so that separators inside names cannot collide.
func (s *RedisIdentityStore) linkKey(provider, subject string) string {
	return fmt.Sprintf("%sidentity:%d:%s:%s", s.prefix, len(provider), provider, subject)
}

func (s *RedisIdentityStore) countKey() string {
	return s.prefix + "identity_count"
}

func (s *RedisIdentityStore) GetOrCreate(ctx context.Context, link core.IdentityLink) (core.IdentityLink, bool, error) {
	if err := validateLink(link); err != nil {
		return core.IdentityLink{}, false, err
	}

	data, err := json.Marshal(link)
	if err != nil {
		return core.IdentityLink{}, false, fmt.Errorf("encoding identity link: %w", err)
	}

	created, err := s.client.SetNX(ctx, s.linkKey(link.Provider, link.Subject), data, 0).Result()
	if err != nil {
		return core.IdentityLink{}, false, fmt.Errorf("storing identity link: %w", err)
	}
	if created {
		if err := s.client.Incr(ctx, s.countKey()).Err(); err != nil {
			return core.IdentityLink{}, false, fmt.Errorf("updating identity count: %w", err)
		}
		return link, true, nil
	}

	existing, err := s.Lookup(ctx, link.Provider, link.Subject)
	if err != nil {
		return core.IdentityLink{}, false, err
	}
	return existing, false, nil
}

func (s *RedisIdentityStore) Lookup(ctx context.Context, provider, subject string) (core.IdentityLink, error) {
	data, err := s.client.Get(ctx, s.linkKey(provider, subject)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.IdentityLink{}, core.ErrLinkNotFound
		}
		return core.IdentityLink{}, fmt.Errorf("reading identity link: %w", err)
	}
	var link core.IdentityLink
	if err := json.Unmarshal(data, &link); err != nil {
		return core.IdentityLink{}, fmt.Errorf("decoding identity link: %w", err)
	}
	return link, nil
}

func (s *RedisIdentityStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.Get(ctx, s.countKey()).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading identity count: %w", err)
	}
	return n, nil
}

func (s *RedisIdentityStore) Close() error {
	return s.client.Close()
}
