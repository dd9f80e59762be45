package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/andrew/ai-gateway/pkg/cache"
)

// bucketTTL outlives the hour the bucket covers so a counter created late in
// its hour still survives until the boundary; the cache expiry, not this
// package, retires old buckets.
const bucketTTL = 2 * time.Hour

// Tracker enforces an hourly token budget per user. Counters live in the
// shared cache and are incremented additively, so enforcement is approximate
// under concurrency: two requests may both pass the pre-check before either
// increment lands. That lost-update window is an accepted tradeoff.
type Tracker struct {
	cache   cache.Cache
	ceiling int64
	now     func() time.Time
}

// NewTracker returns a Tracker with the given hourly token ceiling.
func NewTracker(c cache.Cache, ceiling int64) *Tracker {
	return &Tracker{cache: c, ceiling: ceiling, now: time.Now}
}

// SetClock overrides the tracker's notion of time for tests.
func (t *Tracker) SetClock(now func() time.Time) { t.now = now }

// BucketKey returns the cache key for the user's current hourly bucket.
func (t *Tracker) BucketKey(userID string) string {
	return fmt.Sprintf("quota:%s:%s", userID, t.now().UTC().Format("2006010215"))
}

// Usage returns the accumulated token estimate for the user's current bucket.
func (t *Tracker) Usage(ctx context.Context, userID string) (int64, error) {
	value, ok, err := t.cache.Get(ctx, t.BucketKey(userID))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	usage, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt quota counter for %s: %w", userID, err)
	}
	return usage, nil
}

// Exceeded reports whether the user's current bucket is at or above the
// ceiling.
func (t *Tracker) Exceeded(ctx context.Context, userID string) (bool, error) {
	usage, err := t.Usage(ctx, userID)
	if err != nil {
		return false, err
	}
	return usage >= t.ceiling, nil
}

// Add records tokens against the user's current bucket. The increment is an
// atomic add at the cache layer.
func (t *Tracker) Add(ctx context.Context, userID string, tokens int64) error {
	if tokens <= 0 {
		return nil
	}
	_, err := t.cache.IncrBy(ctx, t.BucketKey(userID), tokens, bucketTTL)
	return err
}

// Ceiling returns the configured hourly token ceiling.
func (t *Tracker) Ceiling() int64 { return t.ceiling }
