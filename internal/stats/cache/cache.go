// Package cache holds the computed report snapshots and coordinates
// refreshes so concurrent requests for the same report share one scan.
package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"mayaportal/internal/stats/models"
	psync "mayaportal/pkg/platform/sync"
)

// ComputeFunc produces a fresh snapshot for key from the raw event log.
type ComputeFunc func(ctx context.Context, key models.ReportKey) (*models.Snapshot, error)

type entry struct {
	snapshot  *models.Snapshot
	touchedAt time.Time
}

// SnapshotCache stores one immutable snapshot per report key. Reads always
// serve whatever is cached, refreshes replace entries atomically, and
// concurrent refreshes of the same key collapse into a single computation.
type SnapshotCache struct {
	entries *psync.ShardedMap[entry]
	flights singleflight.Group
	now     func() time.Time
}

// Option configures the cache.
type Option func(*SnapshotCache)

// WithClock overrides the time source used for entry recency tracking.
func WithClock(now func() time.Time) Option {
	return func(c *SnapshotCache) {
		if now != nil {
			c.now = now
		}
	}
}

// New constructs an empty snapshot cache.
func New(opts ...Option) *SnapshotCache {
	c := &SnapshotCache{
		entries: psync.NewShardedMap[entry](),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get returns the cached snapshot for key, computing it only when the key has
// never been filled. A cached snapshot is served as-is even when old; callers
// that need fresh numbers use Refresh.
func (c *SnapshotCache) Get(ctx context.Context, key models.ReportKey, compute ComputeFunc) (*models.Snapshot, error) {
	k := key.String()
	if e, ok := c.entries.Get(k); ok {
		c.touch(k)
		return e.snapshot, nil
	}
	return c.Refresh(ctx, key, compute)
}

// Refresh recomputes the snapshot for key and stores it. Concurrent callers
// for the same key join one in-flight computation. The computation runs
// detached from the caller's context: a caller that gives up stops waiting,
// but the scan other callers joined keeps running and its result is still
// cached. On failure the previously cached snapshot is left untouched.
func (c *SnapshotCache) Refresh(ctx context.Context, key models.ReportKey, compute ComputeFunc) (*models.Snapshot, error) {
	ch := c.flights.DoChan(key.String(), func() (any, error) {
		snap, err := compute(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		c.store(key, snap)
		return snap, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Peek returns the cached snapshot for key without computing or touching.
func (c *SnapshotCache) Peek(key models.ReportKey) (*models.Snapshot, bool) {
	e, ok := c.entries.Get(key.String())
	if !ok {
		return nil, false
	}
	return e.snapshot, true
}

// EvictOlderThan removes entries not touched since cutoff and reports how
// many were dropped. An evicted key is simply recomputed on its next read.
func (c *SnapshotCache) EvictOlderThan(cutoff time.Time) int {
	var stale []string
	c.entries.Range(func(key string, e entry) bool {
		if e.touchedAt.Before(cutoff) {
			stale = append(stale, key)
		}
		return true
	})
	for _, key := range stale {
		c.entries.Delete(key)
	}
	return len(stale)
}

// Len returns the number of cached snapshots.
func (c *SnapshotCache) Len() int {
	return c.entries.Len()
}

// store replaces the entry for key unless the cached snapshot is newer. Two
// refreshes can finish out of order; GeneratedAt never moves backwards.
func (c *SnapshotCache) store(key models.ReportKey, snap *models.Snapshot) {
	c.entries.Update(key.String(), func(old entry, ok bool) (entry, bool) {
		if ok && old.snapshot.GeneratedAt.After(snap.GeneratedAt) {
			return old, false
		}
		return entry{snapshot: snap, touchedAt: c.now()}, true
	})
}

func (c *SnapshotCache) touch(key string) {
	c.entries.Update(key, func(old entry, ok bool) (entry, bool) {
		if !ok {
			return old, false
		}
		old.touchedAt = c.now()
		return old, true
	})
}
