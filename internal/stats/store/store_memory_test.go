package store

import (
	"context"
	"testing"
	"time"

	"mayaportal/internal/stats/models"
	"mayaportal/pkg/platform/sentinel"
	"mayaportal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type InMemoryEventStoreSuite struct {
	suite.Suite
	now   time.Time
	store *InMemoryEventStore
}

func (s *InMemoryEventStoreSuite) SetupTest() {
	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemory([]string{"ebook"}, WithMemoryClock(func() time.Time { return s.now }))
}

func (s *InMemoryEventStoreSuite) event(subject string, age time.Duration) models.RawEvent {
	return models.RawEvent{
		SubjectID:  subject,
		EventType:  models.EventTypeVisit,
		Country:    "de",
		OccurredAt: s.now.Add(-age),
	}
}

func (s *InMemoryEventStoreSuite) TestAppendAndList() {
	require.NoError(s.T(), s.store.Append("ebook",
		s.event("a", time.Hour),
		s.event("b", 48*time.Hour),
	))

	events, err := s.store.ListEvents(context.Background(), "ebook", 30)
	require.NoError(s.T(), err)
	assert.Len(s.T(), events, 2)
}

func (s *InMemoryEventStoreSuite) TestWindowFiltersOldEvents() {
	require.NoError(s.T(), s.store.Append("ebook",
		s.event("recent", 12*time.Hour),
		s.event("old", 40*24*time.Hour),
	))

	events, err := s.store.ListEvents(context.Background(), "ebook", 30)
	require.NoError(s.T(), err)
	require.Len(s.T(), events, 1)
	assert.Equal(s.T(), "recent", events[0].SubjectID)

	// windowDays <= 0 means full history.
	events, err = s.store.ListEvents(context.Background(), "ebook", 0)
	require.NoError(s.T(), err)
	assert.Len(s.T(), events, 2)
}

func (s *InMemoryEventStoreSuite) TestUnknownKind() {
	err := s.store.Append("audiobook", s.event("a", time.Hour))
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)

	_, err = s.store.ListEvents(context.Background(), "audiobook", 30)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryEventStoreSuite) TestListCopyIsIsolated() {
	require.NoError(s.T(), s.store.Append("ebook", s.event("a", time.Hour)))

	events, err := s.store.ListEvents(context.Background(), "ebook", 0)
	require.NoError(s.T(), err)
	events[0].SubjectID = "mutated"

	again, err := s.store.ListEvents(context.Background(), "ebook", 0)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "a", again[0].SubjectID)
}

func (s *InMemoryEventStoreSuite) TestConcurrentAppendAndList() {
	res := testutil.RunConcurrent(32, func(idx int) error {
		if idx%2 == 0 {
			return s.store.Append("ebook", s.event("subject", time.Hour))
		}
		_, err := s.store.ListEvents(context.Background(), "ebook", 30)
		return err
	})
	assert.Equal(s.T(), int32(32), res.Successes)

	events, err := s.store.ListEvents(context.Background(), "ebook", 30)
	require.NoError(s.T(), err)
	assert.Len(s.T(), events, 16)
}

func TestInMemoryEventStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryEventStoreSuite))
}
