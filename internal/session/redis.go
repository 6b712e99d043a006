package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implementa Store sobre redis, serializando el registro como JSON
// bajo la clave "asistente:sesion:<id>" con expiración TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

func sessionKey(id string) string {
	return "asistente:sesion:" + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error leyendo sesión %s: %w", id, err)
	}

	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("error deserializando sesión %s: %w", id, err)
	}
	return &record, nil
}

func (s *RedisStore) Save(ctx context.Context, record *Record) error {
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error serializando sesión %s: %w", record.ID, err)
	}

	if err := s.client.Set(ctx, sessionKey(record.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("error guardando sesión %s: %w", record.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("error eliminando sesión %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
