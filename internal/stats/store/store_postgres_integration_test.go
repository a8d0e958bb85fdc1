package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"mayaportal/internal/stats/models"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration test against a real PostgreSQL instance.
// Skipped unless TEST_DATABASE_URL is set.
func TestPostgresEventStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres integration test")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	table := fmt.Sprintf("ebook_events_it_%d", time.Now().UnixNano())
	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE %s (
			subject_id text NOT NULL,
			event_type text NOT NULL,
			"format"   text,
			country    text,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, table))
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+table)
	})

	insert := fmt.Sprintf(
		`INSERT INTO %s (subject_id, event_type, "format", country, created_at) VALUES ($1, $2, $3, $4, $5)`,
		table)
	now := time.Now().UTC()
	for _, row := range []struct {
		subject, eventType, format, country string
		at                                  time.Time
	}{
		{"a", models.EventTypeDownload, models.FormatPDF, "de", now.Add(-time.Hour)},
		{"a", models.EventTypeVisit, "", "de", now.Add(-2 * time.Hour)},
		{"b", models.EventTypeDownload, models.FormatEPUB, "", now.Add(-3 * time.Hour)},
		{"old", models.EventTypeVisit, "", "us", now.AddDate(0, 0, -60)},
	} {
		_, err = db.ExecContext(ctx, insert, row.subject, row.eventType, row.format, row.country, row.at)
		require.NoError(t, err)
	}

	s := NewPostgres(db, map[string]string{"ebook": table})

	events, err := s.ListEvents(ctx, "ebook", 30)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Oldest first, empty country normalized.
	assert.Equal(t, "b", events[0].SubjectID)
	assert.Equal(t, models.UnknownCountry, events[0].Country)
	assert.Equal(t, "a", events[2].SubjectID)
	assert.Equal(t, models.FormatPDF, events[2].Format)

	// Full history includes the 60 day old event.
	events, err = s.ListEvents(ctx, "ebook", 0)
	require.NoError(t, err)
	assert.Len(t, events, 4)
}
