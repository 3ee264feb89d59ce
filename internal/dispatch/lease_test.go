package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeLeaseClient is an in-memory leaseClient. Expiry is driven explicitly
// by the test via expire, standing in for Redis TTL eviction.
type fakeLeaseClient struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeLeaseClient() *fakeLeaseClient {
	return &fakeLeaseClient{values: make(map[string]string)}
}

func (f *fakeLeaseClient) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeLeaseClient) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeLeaseClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeLeaseClient) expire(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
}

func (f *fakeLeaseClient) held(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.values[key]
	return ok
}

func TestLeaseMutualExclusion(t *testing.T) {
	ctx := context.Background()
	client := newFakeLeaseClient()
	lease := &RedisLease{client: client}

	release, acquired, err := lease.Acquire(ctx)
	if err != nil || !acquired {
		t.Fatalf("first Acquire = (%v, %v), want acquired", acquired, err)
	}

	if _, acquired, _ := lease.Acquire(ctx); acquired {
		t.Fatal("second Acquire must fail while the lease is held")
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release returned error: %v", err)
	}
	if _, acquired, _ := lease.Acquire(ctx); !acquired {
		t.Fatal("Acquire must succeed after release")
	}
}

func TestLeaseStaleReleaseDoesNotDropSuccessor(t *testing.T) {
	ctx := context.Background()
	client := newFakeLeaseClient()
	lease := &RedisLease{client: client}

	// First run acquires, then outlives its TTL.
	staleRelease, acquired, err := lease.Acquire(ctx)
	if err != nil || !acquired {
		t.Fatalf("first Acquire = (%v, %v), want acquired", acquired, err)
	}
	client.expire(leaseKey)

	// An overlapping run on the same lease instance takes over.
	successorRelease, acquired, err := lease.Acquire(ctx)
	if err != nil || !acquired {
		t.Fatalf("successor Acquire = (%v, %v), want acquired", acquired, err)
	}

	// The stale run's release must leave the successor's lease alone.
	if err := staleRelease(ctx); err != nil {
		t.Fatalf("stale release returned error: %v", err)
	}
	if !client.held(leaseKey) {
		t.Fatal("stale release must not drop the successor's lease")
	}

	if err := successorRelease(ctx); err != nil {
		t.Fatalf("successor release returned error: %v", err)
	}
	if client.held(leaseKey) {
		t.Fatal("successor release must drop its own lease")
	}
}

func TestLeaseReleaseAfterExpiryIsNoop(t *testing.T) {
	ctx := context.Background()
	client := newFakeLeaseClient()
	lease := &RedisLease{client: client}

	release, acquired, err := lease.Acquire(ctx)
	if err != nil || !acquired {
		t.Fatalf("Acquire = (%v, %v), want acquired", acquired, err)
	}
	client.expire(leaseKey)

	if err := release(ctx); err != nil {
		t.Fatalf("release after expiry must be a no-op, got %v", err)
	}
}
