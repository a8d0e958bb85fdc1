package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SnapshotEvicter exposes eviction of snapshots unused for a retention period.
type SnapshotEvicter interface {
	EvictStale(retention time.Duration) int
}

// Result summarizes one retention sweep.
type Result struct {
	EvictedSnapshots int
}

// Service periodically drops report snapshots nobody has read or refreshed
// within the retention period. An evicted report is simply recomputed on its
// next read, so sweeping is safe at any time.
type Service struct {
	evicter   SnapshotEvicter
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

// Option configures the retention Service.
type Option func(*Service)

// WithInterval overrides the sweep interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithRetention overrides the retention period when greater than zero.
func WithRetention(retention time.Duration) Option {
	return func(s *Service) {
		if retention > 0 {
			s.retention = retention
		}
	}
}

// WithLogger overrides the logger used for sweep reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a retention Service with the required evicter and options
// applied.
func New(evicter SnapshotEvicter, opts ...Option) (*Service, error) {
	if evicter == nil {
		return nil, fmt.Errorf("evicter is required")
	}
	svc := &Service{
		evicter:   evicter,
		retention: 24 * time.Hour,
		interval:  10 * time.Minute,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs sweeps periodically until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res := s.RunOnce(ctx)
			if res.EvictedSnapshots > 0 {
				s.logger.InfoContext(ctx, "snapshot retention sweep",
					"evicted", res.EvictedSnapshots,
					"retention", s.retention.String(),
				)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single sweep and returns how many snapshots it evicted.
func (s *Service) RunOnce(_ context.Context) Result {
	return Result{EvictedSnapshots: s.evicter.EvictStale(s.retention)}
}
