package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type stubFetcher struct {
	statsFn func(ctx context.Context, kind string, days int) (*Report, error)
	syncFn  func(ctx context.Context, kind string, days int) (*Report, error)
}

func (f *stubFetcher) Stats(ctx context.Context, kind string, days int) (*Report, error) {
	return f.statsFn(ctx, kind, days)
}

func (f *stubFetcher) Sync(ctx context.Context, kind string, days int) (*Report, error) {
	return f.syncFn(ctx, kind, days)
}

type StatsViewSuite struct {
	suite.Suite
}

func (s *StatsViewSuite) report(kind string) *Report {
	return &Report{OK: true, Kind: kind, WindowDays: 30}
}

func (s *StatsViewSuite) TestLoadMovesToReady() {
	fetcher := &stubFetcher{
		statsFn: func(_ context.Context, kind string, days int) (*Report, error) {
			assert.Equal(s.T(), "ebook", kind)
			assert.Equal(s.T(), 30, days)
			return s.report("ebook"), nil
		},
	}
	view := NewStatsView(fetcher, "ebook", 30)
	assert.Equal(s.T(), ViewIdle, view.State())

	report, err := view.Load(context.Background())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), ViewReady, view.State())

	got, ok := view.Report()
	require.True(s.T(), ok)
	assert.Same(s.T(), report, got)
	assert.NoError(s.T(), view.Err())
}

func (s *StatsViewSuite) TestLoadFailureLandsInErrorState() {
	wantErr := errors.New("portal down")
	fetcher := &stubFetcher{
		statsFn: func(context.Context, string, int) (*Report, error) { return nil, wantErr },
	}
	view := NewStatsView(fetcher, "ebook", 30)

	_, err := view.Load(context.Background())
	assert.ErrorIs(s.T(), err, wantErr)
	assert.Equal(s.T(), ViewError, view.State())
	assert.ErrorIs(s.T(), view.Err(), wantErr)

	_, ok := view.Report()
	assert.False(s.T(), ok)
}

func (s *StatsViewSuite) TestSyncRequiresSnapshot() {
	view := NewStatsView(&stubFetcher{}, "ebook", 30)

	_, err := view.Sync(context.Background())
	assert.ErrorIs(s.T(), err, ErrViewNotReady)
}

func (s *StatsViewSuite) TestSyncReplacesSnapshot() {
	fetcher := &stubFetcher{
		statsFn: func(context.Context, string, int) (*Report, error) { return s.report("ebook"), nil },
		syncFn: func(context.Context, string, int) (*Report, error) {
			fresh := s.report("ebook")
			fresh.Summary = map[string]int64{"visited": 9}
			return fresh, nil
		},
	}
	view := NewStatsView(fetcher, "ebook", 30)
	_, err := view.Load(context.Background())
	require.NoError(s.T(), err)

	fresh, err := view.Sync(context.Background())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), ViewReady, view.State())

	got, ok := view.Report()
	require.True(s.T(), ok)
	assert.Same(s.T(), fresh, got)
}

func (s *StatsViewSuite) TestSyncFailureKeepsSnapshot() {
	wantErr := errors.New("event log unavailable")
	fetcher := &stubFetcher{
		statsFn: func(context.Context, string, int) (*Report, error) { return s.report("ebook"), nil },
		syncFn:  func(context.Context, string, int) (*Report, error) { return nil, wantErr },
	}
	view := NewStatsView(fetcher, "ebook", 30)
	loaded, err := view.Load(context.Background())
	require.NoError(s.T(), err)

	_, err = view.Sync(context.Background())
	assert.ErrorIs(s.T(), err, wantErr)

	// The view is usable again with the last good snapshot.
	assert.Equal(s.T(), ViewReady, view.State())
	got, ok := view.Report()
	require.True(s.T(), ok)
	assert.Same(s.T(), loaded, got)
	assert.ErrorIs(s.T(), view.Err(), wantErr)
}

func (s *StatsViewSuite) TestSecondSyncRejectedWhileInFlight() {
	release := make(chan struct{})
	fetcher := &stubFetcher{
		statsFn: func(context.Context, string, int) (*Report, error) { return s.report("ebook"), nil },
		syncFn: func(context.Context, string, int) (*Report, error) {
			<-release
			return s.report("ebook"), nil
		},
	}
	view := NewStatsView(fetcher, "ebook", 30)
	_, err := view.Load(context.Background())
	require.NoError(s.T(), err)

	done := make(chan error, 1)
	go func() {
		_, err := view.Sync(context.Background())
		done <- err
	}()

	require.Eventually(s.T(), func() bool { return view.State() == ViewSyncing }, time.Second, time.Millisecond)

	_, err = view.Sync(context.Background())
	assert.ErrorIs(s.T(), err, ErrSyncInFlight)

	close(release)
	require.NoError(s.T(), <-done)
	assert.Equal(s.T(), ViewReady, view.State())
}

func (s *StatsViewSuite) TestSlowLoadCannotClobberNewerOne() {
	var calls atomic.Int32
	release := make(chan struct{})
	fetcher := &stubFetcher{
		statsFn: func(context.Context, string, int) (*Report, error) {
			if calls.Add(1) == 1 {
				<-release
				return s.report("stale"), nil
			}
			return s.report("fresh"), nil
		},
	}
	view := NewStatsView(fetcher, "ebook", 30)

	first := make(chan error, 1)
	go func() {
		_, err := view.Load(context.Background())
		first <- err
	}()
	require.Eventually(s.T(), func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	// A second load takes over the view.
	fresh, err := view.Load(context.Background())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "fresh", fresh.Kind)

	// The stale result arrives late and is discarded without touching state.
	close(release)
	assert.ErrorIs(s.T(), <-first, ErrSuperseded)

	got, ok := view.Report()
	require.True(s.T(), ok)
	assert.Equal(s.T(), "fresh", got.Kind)
	assert.Equal(s.T(), ViewReady, view.State())
}

func (s *StatsViewSuite) TestCloseDiscardsInFlightResult() {
	release := make(chan struct{})
	fetcher := &stubFetcher{
		statsFn: func(context.Context, string, int) (*Report, error) {
			<-release
			return s.report("ebook"), nil
		},
	}
	view := NewStatsView(fetcher, "ebook", 30)

	done := make(chan error, 1)
	go func() {
		_, err := view.Load(context.Background())
		done <- err
	}()
	require.Eventually(s.T(), func() bool { return view.State() == ViewLoading }, time.Second, time.Millisecond)

	view.Close()
	close(release)

	assert.ErrorIs(s.T(), <-done, ErrViewClosed)
	assert.Equal(s.T(), ViewClosed, view.State())
	_, ok := view.Report()
	assert.False(s.T(), ok)

	// Everything after close fails the same way.
	_, err := view.Load(context.Background())
	assert.ErrorIs(s.T(), err, ErrViewClosed)
	_, err = view.Sync(context.Background())
	assert.ErrorIs(s.T(), err, ErrViewClosed)
}

func TestStatsViewSuite(t *testing.T) {
	suite.Run(t, new(StatsViewSuite))
}
