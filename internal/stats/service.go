// Package stats implements the reporting core: windowed aggregation of the
// raw interaction log into cached snapshots, with coalesced on-demand
// refresh. Reads never block on freshness; only an explicit refresh pays for
// a scan.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"mayaportal/internal/stats/aggregate"
	"mayaportal/internal/stats/cache"
	"mayaportal/internal/stats/models"
	"mayaportal/internal/stats/store"
	"mayaportal/internal/stats/tracer"
	dErrors "mayaportal/pkg/domain-errors"
	"mayaportal/pkg/platform/sentinel"
)

// DefaultMaxWindowDays caps the aggregation window at roughly ten years.
const DefaultMaxWindowDays = 3650

// Recorder abstracts the prometheus collectors so tests can count calls
// without touching the default registry.
type Recorder interface {
	ObserveRefresh(kind string, d time.Duration, scanned int)
	IncrementRefreshFailures(kind string)
	IncrementCacheHits()
	IncrementCacheMisses()
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) ObserveRefresh(string, time.Duration, int) {}
func (NopRecorder) IncrementRefreshFailures(string)           {}
func (NopRecorder) IncrementCacheHits()                       {}
func (NopRecorder) IncrementCacheMisses()                     {}

// Service is the reporting core.
type Service struct {
	kinds         []string
	kindSet       map[string]struct{}
	store         store.EventStore
	cache         *cache.SnapshotCache
	tracer        tracer.Tracer
	metrics       Recorder
	logger        *slog.Logger
	now           func() time.Time
	maxWindowDays int
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the time source. The time parameter is injected for
// testability (no hidden time.Now() calls).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxWindowDays overrides the window clamp.
func WithMaxWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.maxWindowDays = days
		}
	}
}

// NewService constructs the reporting core serving the given report kinds.
func NewService(kinds []string, events store.EventStore, snapshots *cache.SnapshotCache, tr tracer.Tracer, metrics Recorder, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		kinds:         append([]string(nil), kinds...),
		kindSet:       make(map[string]struct{}, len(kinds)),
		store:         events,
		cache:         snapshots,
		tracer:        tr,
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
		maxWindowDays: DefaultMaxWindowDays,
	}
	for _, kind := range kinds {
		svc.kindSet[kind] = struct{}{}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Kinds returns the report kinds this service serves.
func (s *Service) Kinds() []string {
	return append([]string(nil), s.kinds...)
}

// ResolveKey validates kind and window and returns the canonical report key.
// Unknown kinds are not_found, a non-positive window is invalid_input, and
// oversized windows clamp to the maximum rather than fail.
func (s *Service) ResolveKey(kind string, days int) (models.ReportKey, error) {
	if _, ok := s.kindSet[kind]; !ok {
		return models.ReportKey{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("unknown report kind %q", kind))
	}
	if days <= 0 {
		return models.ReportKey{}, dErrors.New(dErrors.CodeInvalidInput, "days must be a positive integer")
	}
	if days > s.maxWindowDays {
		days = s.maxWindowDays
	}
	return models.ReportKey{Kind: kind, WindowDays: days}, nil
}

// Report returns the snapshot for key, serving the cached copy when one
// exists. Only a key that has never been computed triggers a scan.
func (s *Service) Report(ctx context.Context, key models.ReportKey) (snap *models.Snapshot, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanReport,
		tracer.String(tracer.AttrReportKind, key.Kind),
		tracer.Int64(tracer.AttrWindowDays, int64(key.WindowDays)),
	)
	defer func() { span.End(err) }()

	_, hit := s.cache.Peek(key)
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, hit))
	if hit {
		s.metrics.IncrementCacheHits()
	} else {
		s.metrics.IncrementCacheMisses()
	}

	return s.cache.Get(ctx, key, s.compute)
}

// Refresh recomputes the snapshot for key and returns the fresh copy.
// Concurrent refreshes of the same key share one scan.
func (s *Service) Refresh(ctx context.Context, key models.ReportKey) (snap *models.Snapshot, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRefresh,
		tracer.String(tracer.AttrReportKind, key.Kind),
		tracer.Int64(tracer.AttrWindowDays, int64(key.WindowDays)),
	)
	defer func() { span.End(err) }()

	return s.cache.Refresh(ctx, key, s.compute)
}

// Warm computes the configured windows for every kind up front so the first
// reader after startup is not the one paying for the scan.
func (s *Service) Warm(ctx context.Context, windows []int) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range s.kinds {
		for _, days := range windows {
			key, err := s.ResolveKey(kind, days)
			if err != nil {
				return err
			}
			g.Go(func() error {
				if _, err := s.Refresh(ctx, key); err != nil {
					return fmt.Errorf("warm %s: %w", key, err)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "snapshot warmup complete",
		"kinds", len(s.kinds),
		"windows", len(windows),
	)
	return nil
}

// EvictStale drops snapshots not read or refreshed within the retention
// period and returns how many were evicted.
func (s *Service) EvictStale(retention time.Duration) int {
	return s.cache.EvictOlderThan(s.now().Add(-retention))
}

// compute scans the raw event log for key's window and aggregates it into a
// fresh snapshot. Store failures map to the two externally meaningful
// outcomes: unknown kind and unreachable log.
func (s *Service) compute(ctx context.Context, key models.ReportKey) (snap *models.Snapshot, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanScan,
		tracer.String(tracer.AttrReportKind, key.Kind),
		tracer.Int64(tracer.AttrWindowDays, int64(key.WindowDays)),
	)
	defer func() { span.End(err) }()

	started := s.now()
	events, err := s.store.ListEvents(ctx, key.Kind, key.WindowDays)
	if err != nil {
		s.metrics.IncrementRefreshFailures(key.Kind)
		s.logger.ErrorContext(ctx, "event scan failed",
			"report_key", key.String(),
			"error", err,
		)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("unknown report kind %q", key.Kind))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "event log unavailable")
	}
	span.SetAttributes(tracer.Int64(tracer.AttrEventCount, int64(len(events))))

	generatedAt := s.now()
	snap = aggregate.Aggregate(key, events, generatedAt)

	s.metrics.ObserveRefresh(key.Kind, generatedAt.Sub(started), len(events))
	s.logger.InfoContext(ctx, "snapshot refreshed",
		"report_key", key.String(),
		"events", len(events),
		"subjects", len(snap.Rows),
	)
	return snap, nil
}
