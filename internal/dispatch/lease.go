package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	leaseKey = "dispatch:lease"
	leaseTTL = 5 * time.Minute
)

// leaseClient is the slice of the Redis API the lease needs.
type leaseClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisLease is a run-scoped mutual-exclusion lease. The TTL bounds how long
// a crashed run can block the next one.
type RedisLease struct {
	client leaseClient
}

func NewRedisLease(client *redis.Client) *RedisLease {
	return &RedisLease{client: client}
}

// Acquire mints a fresh run token per acquisition, so concurrent runs sharing
// one RedisLease each get their own holder identity. The returned release
// drops the lease only while this run's token is still stored: a run that
// outlived its TTL cannot release a successor's lease.
func (l *RedisLease) Acquire(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.New().String()

	acquired, err := l.client.SetNX(ctx, leaseKey, token, leaseTTL).Result()
	if err != nil || !acquired {
		return nil, false, err
	}

	release := func(ctx context.Context) error {
		val, err := l.client.Get(ctx, leaseKey).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if val != token {
			return nil
		}
		return l.client.Del(ctx, leaseKey).Err()
	}
	return release, true, nil
}
