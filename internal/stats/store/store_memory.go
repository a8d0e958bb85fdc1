package store

import (
	"context"
	"fmt"
	"time"

	"mayaportal/internal/stats/models"
	"mayaportal/pkg/platform/sentinel"
	psync "mayaportal/pkg/platform/sync"
)

// InMemoryEventStore keeps events in memory for tests and local development.
// Events are sharded by report kind so concurrent readers of unrelated kinds
// never contend.
type InMemoryEventStore struct {
	kinds  map[string]struct{}
	events *psync.ShardedMap[[]models.RawEvent]
	now    func() time.Time
}

// MemoryOption configures the in-memory store.
type MemoryOption func(*InMemoryEventStore)

// WithMemoryClock overrides the time source used for window filtering.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryEventStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemory constructs an empty store serving the given report kinds.
func NewInMemory(kinds []string, opts ...MemoryOption) *InMemoryEventStore {
	s := &InMemoryEventStore{
		kinds:  make(map[string]struct{}, len(kinds)),
		events: psync.NewShardedMap[[]models.RawEvent](),
		now:    time.Now,
	}
	for _, kind := range kinds {
		s.kinds[kind] = struct{}{}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Append records events for a kind. Unknown kinds are rejected so tests fail
// loudly instead of silently seeding an unserved kind.
func (s *InMemoryEventStore) Append(kind string, events ...models.RawEvent) error {
	if _, ok := s.kinds[kind]; !ok {
		return fmt.Errorf("report kind %q: %w", kind, sentinel.ErrNotFound)
	}
	s.events.Update(kind, func(old []models.RawEvent, _ bool) ([]models.RawEvent, bool) {
		return append(old, events...), true
	})
	return nil
}

// ListEvents returns the events for kind inside the trailing window.
func (s *InMemoryEventStore) ListEvents(_ context.Context, kind string, windowDays int) ([]models.RawEvent, error) {
	if _, ok := s.kinds[kind]; !ok {
		return nil, fmt.Errorf("report kind %q: %w", kind, sentinel.ErrNotFound)
	}

	all, _ := s.events.Get(kind)
	if windowDays <= 0 {
		out := make([]models.RawEvent, len(all))
		copy(out, all)
		return out, nil
	}

	cutoff := s.now().AddDate(0, 0, -windowDays)
	out := make([]models.RawEvent, 0, len(all))
	for _, ev := range all {
		if !ev.OccurredAt.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out, nil
}
