package client

import (
	"context"
	"errors"
	"sync"
)

// View errors.
var (
	// ErrSyncInFlight is returned when a sync is requested while another one
	// for the same view is still running.
	ErrSyncInFlight = errors.New("client: sync already in flight")
	// ErrViewNotReady is returned when a sync is requested before the view
	// has a snapshot to refresh.
	ErrViewNotReady = errors.New("client: view has no snapshot yet")
	// ErrViewClosed is returned for any operation on a closed view.
	ErrViewClosed = errors.New("client: view closed")
	// ErrSuperseded is returned to a caller whose result arrived after a
	// newer load took over the view. The result is discarded.
	ErrSuperseded = errors.New("client: result superseded by a newer load")
)

// ViewState is the lifecycle state of a StatsView.
type ViewState int

const (
	ViewIdle ViewState = iota
	ViewLoading
	ViewReady
	ViewSyncing
	ViewError
	ViewClosed
)

func (s ViewState) String() string {
	switch s {
	case ViewIdle:
		return "idle"
	case ViewLoading:
		return "loading"
	case ViewReady:
		return "ready"
	case ViewSyncing:
		return "syncing"
	case ViewError:
		return "error"
	case ViewClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ReportFetcher is the part of Client a view needs.
type ReportFetcher interface {
	Stats(ctx context.Context, kind string, days int) (*Report, error)
	Sync(ctx context.Context, kind string, days int) (*Report, error)
}

// StatsView coordinates loading and refreshing one report for display. Every
// request carries the view's sequence number at the time it started; a result
// whose sequence is no longer current is discarded before it can touch any
// state, so a slow response can never clobber a newer one. A failed sync
// keeps the last good snapshot; only a failed load puts the view in the
// error state.
type StatsView struct {
	fetcher ReportFetcher
	kind    string
	days    int

	mu     sync.Mutex
	state  ViewState
	report *Report
	err    error
	seq    uint64
	closed bool
}

// NewStatsView creates an idle view over one report.
func NewStatsView(fetcher ReportFetcher, kind string, days int) *StatsView {
	return &StatsView{
		fetcher: fetcher,
		kind:    kind,
		days:    days,
		state:   ViewIdle,
	}
}

// Load fetches the report and moves the view to ready. Calling Load again
// supersedes any in-flight load or sync; the superseded result is discarded
// when it arrives.
func (v *StatsView) Load(ctx context.Context) (*Report, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrViewClosed
	}
	v.seq++
	seq := v.seq
	v.state = ViewLoading
	v.mu.Unlock()

	report, err := v.fetcher.Stats(ctx, v.kind, v.days)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, ErrViewClosed
	}
	if seq != v.seq {
		return nil, ErrSuperseded
	}
	if err != nil {
		v.state = ViewError
		v.err = err
		return nil, err
	}
	v.state = ViewReady
	v.report = report
	v.err = nil
	return report, nil
}

// Sync refreshes the current snapshot. Only one sync may be in flight; the
// view must already hold a snapshot. On failure the view returns to ready
// with the previous snapshot intact and the error retrievable via Err.
func (v *StatsView) Sync(ctx context.Context) (*Report, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrViewClosed
	}
	switch v.state {
	case ViewSyncing:
		v.mu.Unlock()
		return nil, ErrSyncInFlight
	case ViewReady:
	default:
		v.mu.Unlock()
		return nil, ErrViewNotReady
	}
	seq := v.seq
	v.state = ViewSyncing
	v.mu.Unlock()

	report, err := v.fetcher.Sync(ctx, v.kind, v.days)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, ErrViewClosed
	}
	if seq != v.seq {
		return nil, ErrSuperseded
	}
	if err != nil {
		v.state = ViewReady
		v.err = err
		return nil, err
	}
	v.state = ViewReady
	v.report = report
	v.err = nil
	return report, nil
}

// Close shuts the view down. In-flight results are discarded on arrival and
// every later operation fails with ErrViewClosed.
func (v *StatsView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.state = ViewClosed
}

// State returns the current lifecycle state.
func (v *StatsView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Report returns the last successfully loaded or synced snapshot, if any.
func (v *StatsView) Report() (*Report, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.report, v.report != nil
}

// Err returns the most recent load or sync error, if the last operation
// failed.
func (v *StatsView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}
