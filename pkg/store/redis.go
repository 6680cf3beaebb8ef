package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	perrors "github.com/matzehuels/parley/pkg/errors"
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, e.g. "parley:".
	Prefix string
}

// RedisStore keeps each document under <prefix>doc:<name> and tracks the
// names in the set <prefix>docs.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ping := func() error { return client.Ping(ctx).Err() }
	if err := retry(ctx, pingAttempts, pingDelay, ping); err != nil {
		client.Close()
		return nil, perrors.Wrap(perrors.ErrCodeStore, err, "connect redis at %s", cfg.Addr)
	}
	return NewRedisStoreFromClient(client, cfg.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) docKey(name string) string { return s.prefix + "doc:" + name }
func (s *RedisStore) indexKey() string          { return s.prefix + "docs" }

func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := perrors.ValidateDocumentName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.docKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, storeErr(err, "get", name)
	}
	return data, nil
}

func (s *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	if err := perrors.ValidateDocumentName(name); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.docKey(name), data, 0)
		p.SAdd(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return storeErr(err, "put", name)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := perrors.ValidateDocumentName(name); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.docKey(name))
		p.SRem(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return storeErr(err, "delete", name)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStore, err, "list documents")
	}
	return sorted(names), nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
