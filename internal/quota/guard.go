// Package quota enforces the per-user, per-day call budget, tiered by
// subscription level, on top of a shared atomic counter store.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pulsecoach/pulsecoach/internal/metrics"
	"github.com/pulsecoach/pulsecoach/internal/schema"
)

// Limits maps subscription tiers to daily call ceilings.
type Limits struct {
	Free int
	Paid int
}

// Guard answers whether a user may make another call today.
//
// Every check increments the day's counter unconditionally — denied
// requests count too — so accounting-store growth is capped at one write
// per request regardless of outcome. Concurrent checks for the same user
// serialize on the store's atomic increment; no locking happens here.
type Guard struct {
	store  schema.CounterStore
	limits Limits
	// now is swapped in tests to pin the period key and TTL.
	now func() time.Time
}

// NewGuard creates a Guard over store with the given tier limits.
func NewGuard(store schema.CounterStore, limits Limits) *Guard {
	return &Guard{store: store, limits: limits, now: time.Now}
}

// IsAllowed atomically increments the user's counter for today and
// reports whether the post-increment count is within the tier ceiling.
// The first increment of a day creates the record with a TTL equal to
// the remainder of the day, so records expire at the period boundary
// and are never explicitly deleted.
//
// A store failure fails closed: the call is denied and the error
// returned so the orchestrator can surface its generic failure reply.
func (g *Guard) IsAllowed(ctx context.Context, userID string, tier schema.SubscriptionTier) (bool, error) {
	now := g.now()
	key := Key(userID, now)

	count, err := g.store.IncrementAndGet(ctx, key, untilEndOfDay(now))
	if err != nil {
		slog.Error("quota store unavailable", "error_kind", "quota_store_failure", "user_id", userID, "err", err)
		return false, fmt.Errorf("quota check for %s: %w", userID, err)
	}

	allowed := count <= int64(g.limit(tier))
	if allowed {
		metrics.QuotaDecisions.WithLabelValues("allowed").Inc()
	} else {
		metrics.QuotaDecisions.WithLabelValues("denied").Inc()
		slog.Info("quota exceeded", "error_kind", "quota_exceeded", "user_id", userID, "tier", string(tier), "count", count)
	}
	return allowed, nil
}

func (g *Guard) limit(tier schema.SubscriptionTier) int {
	if tier == schema.TierPaid {
		return g.limits.Paid
	}
	return g.limits.Free
}

// Key returns the counter key for one user and the calendar day of t:
// quota:<user>:<YYYY-MM-DD>. One record per user per day.
func Key(userID string, t time.Time) string {
	return "quota:" + userID + ":" + t.Format("2006-01-02")
}

// untilEndOfDay returns the remainder of t's calendar day, floored at
// one second so a record created at 23:59:59 still gets a positive TTL.
func untilEndOfDay(t time.Time) time.Duration {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day+1, 0, 0, 0, 0, t.Location())
	ttl := midnight.Sub(t)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
