package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

// RedisStore keeps the memory as a JSON document under a single key.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	seed   domain.FullMemory
}

var _ ports.MemoryStore = (*RedisStore)(nil)

// NewRedisStore wires a client; seed is returned while the key is absent.
func NewRedisStore(client redis.UniversalClient, key string, seed domain.FullMemory) *RedisStore {
	if key == "" {
		key = "runraiser:memory"
	}
	return &RedisStore{client: client, key: key, seed: seed.Clone()}
}

// Get reads and decodes the memory document.
func (s *RedisStore) Get(ctx context.Context) (domain.FullMemory, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return s.seed.Clone(), nil
	}
	if err != nil {
		return domain.FullMemory{}, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var mem domain.FullMemory
	if err := json.Unmarshal(raw, &mem); err != nil {
		return domain.FullMemory{}, fmt.Errorf("decode memory: %w", err)
	}
	return mem, nil
}

// Put encodes and stores the memory document without expiry.
func (s *RedisStore) Put(ctx context.Context, mem domain.FullMemory) error {
	payload, err := json.Marshal(mem)
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
