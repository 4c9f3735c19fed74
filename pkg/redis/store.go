package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/identitykit/pkg/vault"
)

var _ vault.Store = (*Store)(nil)

// Store is a vault.Store backed by Redis.
type Store struct {
	db  redis.UniversalClient
	ttl time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL expires written fields after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewStore wraps client.
func NewStore(client redis.UniversalClient, opts ...StoreOption) (*Store, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	s := &Store{db: client}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewStoreFromConfig wraps client using cfg.TokenTTL.
func NewStoreFromConfig(client redis.UniversalClient, cfg Config) (*Store, error) {
	return NewStore(client, WithTTL(cfg.TokenTTL))
}

// Get returns the value of key; a missing key is reported with ok=false.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.db.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetMany writes all values inside MULTI/EXEC so readers never observe a
// nonce without its ciphertext.
func (s *Store) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := s.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, k, v, s.ttl)
		}
		return nil
	})
	return err
}

// Delete removes keys. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.Del(ctx, keys...).Err()
}
