package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vytor/revplan/internal/logger"
	"github.com/vytor/revplan/internal/repository"
)

// Options configures the redis connection.
type Options struct {
	Addr   string
	DB     int
	Prefix string
}

// KVStore keeps each document as a plain redis string under Prefix+key.
type KVStore struct {
	rdb    *goredis.Client
	prefix string
}

var _ repository.KVStore = (*KVStore)(nil)

// Open connects and pings the server.
func Open(ctx context.Context, opts Options) (*KVStore, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.FromContext(ctx).WithPrefix("kv_redis").Info("connected to redis at %s (db %d)", addr, opts.DB)
	return New(rdb, opts.Prefix), nil
}

// New wraps an existing client.
func New(rdb *goredis.Client, prefix string) *KVStore {
	return &KVStore{rdb: rdb, prefix: prefix}
}

func (s *KVStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("kv_redis")
	log.Debug("loading key: %s", key)

	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		log.Error("failed to load key %s: %v", key, err)
		return nil, false, err
	}
	return raw, true, nil
}

func (s *KVStore) Save(ctx context.Context, key string, value []byte) error {
	log := logger.FromContext(ctx).WithPrefix("kv_redis")
	log.Debug("saving key: %s (%d bytes)", key, len(value))

	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		log.Error("failed to save key %s: %v", key, err)
		return err
	}
	return nil
}

// SaveBatch writes all documents in one MULTI/EXEC transaction.
func (s *KVStore) SaveBatch(ctx context.Context, docs map[string][]byte) error {
	log := logger.FromContext(ctx).WithPrefix("kv_redis")
	log.Debug("saving %d keys", len(docs))

	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for key, value := range docs {
			pipe.Set(ctx, s.prefix+key, value, 0)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to save batch: %v", err)
	}
	return err
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx).WithPrefix("kv_redis")
	log.Debug("deleting key: %s", key)

	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		log.Error("failed to delete key %s: %v", key, err)
		return err
	}
	return nil
}

func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("kv_redis")
	log.Debug("listing keys with prefix %q", s.prefix)

	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		log.Error("failed to scan keys: %v", err)
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Ping checks the connection.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *KVStore) Close() error {
	return s.rdb.Close()
}
