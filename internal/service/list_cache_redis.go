package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisListCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisListCacheStore(client redis.UniversalClient, prefix string) *RedisListCacheStore {
	if prefix == "" {
		prefix = "list_cache"
	}
	return &RedisListCacheStore{client: client, prefix: prefix}
}

func (s *RedisListCacheStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if s.client == nil {
		return nil, false, nil
	}
	value, err := s.client.Get(ctx, s.dataKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisListCacheStore) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	dataKey := s.dataKey(namespace, key)
	index := s.namespaceIndexKey(namespace)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, dataKey, value, ttl)
	pipe.SAdd(ctx, index, dataKey)
	pipe.Expire(ctx, index, ttl+time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisListCacheStore) InvalidateNamespace(ctx context.Context, namespace string) error {
	if s.client == nil {
		return nil
	}
	index := s.namespaceIndexKey(namespace)
	keys, err := s.client.SMembers(ctx, index).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := s.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, index)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisListCacheStore) dataKey(namespace, key string) string {
	return fmt.Sprintf("%s:data:%s:%s", s.prefix, normalizeToken(namespace), hashToken(key))
}

func (s *RedisListCacheStore) namespaceIndexKey(namespace string) string {
	return fmt.Sprintf("%s:index:%s", s.prefix, normalizeToken(namespace))
}

func normalizeToken(v string) string {
	if v == "" {
		return "default"
	}
	return v
}

func hashToken(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}
