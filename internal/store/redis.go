package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/healthcare-diagnosis-server/internal/domain"
)

// RedisStore implements KeyValue over a Redis connection. Every call
// runs through a circuit breaker so a struggling Redis degrades to fast
// ErrStoreUnavailable failures instead of piling up timeouts.
type RedisStore struct {
	client    *redis.Client
	breaker   *gobreaker.CircuitBreaker
	opTimeout time.Duration
	logger    *logrus.Logger
}

// NewRedisStore connects to Redis using the configured URL.
func NewRedisStore(cfg domain.CacheConfig, logger *logrus.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = cfg.DialTimeout
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-store",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Store circuit breaker state changed")
		},
	})

	return &RedisStore{
		client:    redis.NewClient(opts),
		breaker:   breaker,
		opTimeout: cfg.OpTimeout,
		logger:    logger,
	}, nil
}

// Get returns the value and whether the key exists.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	result, err := s.execute(ctx, func(ctx context.Context) (interface{}, error) {
		val, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return val, nil
	})
	if err != nil {
		return "", false, err
	}
	if result == nil {
		return "", false, nil
	}
	return result.(string), true, nil
}

// Set stores a value with a TTL.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, s.client.Set(ctx, key, value, ttl).Err()
	})
	return err
}

// SetNX stores the value only if the key is absent.
func (s *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	result, err := s.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return s.client.SetNX(ctx, key, value, ttl).Result()
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// IncrWithTTL atomically increments a counter, attaching the TTL only
// when the increment created the key (count == 1).
func (s *RedisStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	result, err := s.execute(ctx, func(ctx context.Context) (interface{}, error) {
		count, err := s.client.Incr(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if count == 1 {
			if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
				return nil, err
			}
		}
		return count, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// Del removes a key.
func (s *RedisStore) Del(ctx context.Context, key string) error {
	_, err := s.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, s.client.Del(ctx, key).Err()
	})
	return err
}

// Ping verifies connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	_, err := s.execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, s.client.Ping(ctx).Err()
	})
	return err
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) execute(ctx context.Context, op func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		opCtx := ctx
		if s.opTimeout > 0 {
			var cancel context.CancelFunc
			opCtx, cancel = context.WithTimeout(ctx, s.opTimeout)
			defer cancel()
		}
		return op(opCtx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return result, nil
}
