package authlockout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"jamsession/internal/ratelimit/config"
	"jamsession/internal/ratelimit/models"
)

const (
	fieldCount       = "count"
	fieldLockedUntil = "locked_until"
	fieldLastFailure = "last_failure"
)

// RedisAuthLockoutStore keeps lockout records in a Redis hash per client
// address so every instance behind the load balancer shares the same counters.
// Keys expire on their own: an unlocked record after the lockout window, a
// locked record when its lockout ends.
type RedisAuthLockoutStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

type RedisOption func(*RedisAuthLockoutStore)

func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisAuthLockoutStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

func NewRedis(client redis.UniversalClient, opts ...RedisOption) *RedisAuthLockoutStore {
	store := &RedisAuthLockoutStore{
		client:    client,
		keyPrefix: config.DefaultConfig().KeyPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *RedisAuthLockoutStore) key(identifier string) string {
	return s.keyPrefix + identifier
}

func (s *RedisAuthLockoutStore) Get(ctx context.Context, identifier string) (*models.AuthLockout, error) {
	values, err := s.client.HGetAll(ctx, s.key(identifier)).Result()
	if err != nil {
		return nil, fmt.Errorf("get lockout record: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return decodeRecord(identifier, values)
}

// RecordFailure increments the counter atomically. Concurrent failures from
// several instances are all counted.
func (s *RedisAuthLockoutStore) RecordFailure(ctx context.Context, identifier string, now time.Time) (*models.AuthLockout, error) {
	key := s.key(identifier)

	pipe := s.client.TxPipeline()
	count := pipe.HIncrBy(ctx, key, fieldCount, 1)
	pipe.HSet(ctx, key, fieldLastFailure, now.UnixMilli())
	lockedUntil := pipe.HGet(ctx, key, fieldLockedUntil)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("record lockout failure: %w", err)
	}

	record := &models.AuthLockout{
		Identifier:    identifier,
		FailureCount:  int(count.Val()),
		LastFailureAt: now,
	}
	if raw, err := lockedUntil.Result(); err == nil {
		until, parseErr := parseMillis(raw)
		if parseErr != nil {
			return nil, parseErr
		}
		record.LockedUntil = &until
	}

	if record.LockedUntil == nil {
		if err := s.client.PExpire(ctx, key, config.LockoutDuration).Err(); err != nil {
			return nil, fmt.Errorf("expire lockout record: %w", err)
		}
	}
	return record, nil
}

func (s *RedisAuthLockoutStore) Update(ctx context.Context, record *models.AuthLockout) error {
	key := s.key(record.Identifier)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		fieldCount, record.FailureCount,
		fieldLastFailure, record.LastFailureAt.UnixMilli(),
	)
	if record.LockedUntil != nil {
		pipe.HSet(ctx, key, fieldLockedUntil, record.LockedUntil.UnixMilli())
		pipe.PExpireAt(ctx, key, *record.LockedUntil)
	} else {
		pipe.HDel(ctx, key, fieldLockedUntil)
		pipe.PExpire(ctx, key, config.LockoutDuration)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update lockout record: %w", err)
	}
	return nil
}

func (s *RedisAuthLockoutStore) Clear(ctx context.Context, identifier string) error {
	if err := s.client.Del(ctx, s.key(identifier)).Err(); err != nil {
		return fmt.Errorf("clear lockout record: %w", err)
	}
	return nil
}

func decodeRecord(identifier string, values map[string]string) (*models.AuthLockout, error) {
	record := &models.AuthLockout{Identifier: identifier}

	if raw, ok := values[fieldCount]; ok {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("decode lockout count: %w", err)
		}
		record.FailureCount = count
	}
	if raw, ok := values[fieldLastFailure]; ok {
		last, err := parseMillis(raw)
		if err != nil {
			return nil, err
		}
		record.LastFailureAt = last
	}
	if raw, ok := values[fieldLockedUntil]; ok {
		until, err := parseMillis(raw)
		if err != nil {
			return nil, err
		}
		record.LockedUntil = &until
	}
	return record, nil
}

func parseMillis(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode lockout timestamp: %w", err)
	}
	return time.UnixMilli(ms), nil
}
