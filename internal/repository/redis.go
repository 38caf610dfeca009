package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yourorg/toolshare/internal/domain"
	"github.com/yourorg/toolshare/internal/infrastructure/redis"
)

// RedisStore implements domain.RecordStore on Redis, one JSON document per
// record under "<prefix>:<id>" keys.
type RedisStore[T any] struct {
	redis  *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisStore creates a record store for one entity type. The prefix
// namespaces the entity's keys, e.g. "user", "tool", "transaction".
func NewRedisStore[T any](client *redis.Client, prefix string, logger *slog.Logger) *RedisStore[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore[T]{
		redis:  client,
		prefix: prefix,
		logger: logger,
	}
}

func (s *RedisStore[T]) key(id string) string {
	return s.prefix + ":" + id
}

// Get returns the record for id
func (s *RedisStore[T]) Get(id string) (T, error) {
	var value T

	data, err := s.redis.Get(context.Background(), s.key(id))
	if err != nil {
		if errors.Is(err, redis.ErrKeyMissing) {
			return value, fmt.Errorf("record %q: %w", id, domain.ErrNotFound)
		}
		return value, fmt.Errorf("failed to get record: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return value, fmt.Errorf("failed to unmarshal record %q: %w", id, err)
	}
	return value, nil
}

// Insert stores value under id, replacing any existing record
func (s *RedisStore[T]) Insert(id string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal record %q: %w", id, err)
	}

	if err := s.redis.Set(context.Background(), s.key(id), string(data)); err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}

	s.logger.Debug("record saved", slog.String("entity", s.prefix), slog.String("id", id))
	return nil
}

// Remove deletes the record for id
func (s *RedisStore[T]) Remove(id string) error {
	removed, err := s.redis.Delete(context.Background(), s.key(id))
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("record %q: %w", id, domain.ErrNotFound)
	}

	s.logger.Debug("record deleted", slog.String("entity", s.prefix), slog.String("id", id))
	return nil
}

// Values returns all records for this entity in unspecified order
func (s *RedisStore[T]) Values() ([]T, error) {
	ctx := context.Background()

	keys, err := s.redis.Keys(ctx, s.prefix+":*")
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	values := make([]T, 0, len(keys))
	for _, key := range keys {
		data, err := s.redis.Get(ctx, key)
		if err != nil {
			// Key may have been removed between Keys and Get
			if errors.Is(err, redis.ErrKeyMissing) {
				continue
			}
			s.logger.Error("failed to get record", slog.String("key", key), slog.String("error", err.Error()))
			continue
		}

		var value T
		if err := json.Unmarshal([]byte(data), &value); err != nil {
			s.logger.Error("failed to unmarshal record",
				slog.String("key", key),
				slog.String("id", strings.TrimPrefix(key, s.prefix+":")),
				slog.String("error", err.Error()),
			)
			continue
		}
		values = append(values, value)
	}

	return values, nil
}
