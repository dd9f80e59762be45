package cache

import (
	"context"
	"time"
)

// Cache is a low-latency key-value store used for quota counters, rate-limit
// windows, and job status markers. Increments must be additive at the cache
// layer, never application-level read-modify-write.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// IncrBy atomically adds delta to the integer counter at key, creating
	// it at zero when absent, and returns the new value. The ttl is applied
	// when the counter is created.
	IncrBy(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
}
