package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mayaportal/internal/stats/models"
	"mayaportal/pkg/platform/sentinel"
)

// DefaultTables maps report kinds to their event tables. Each kind owns one
// append-only table written by the public-facing services; the portal only
// reads them.
var DefaultTables = map[string]string{
	"ebook":          "ebook.download_events",
	"pledge-manager": "pledge_manager.download_events",
}

// PostgresEventStore reads raw events from PostgreSQL.
type PostgresEventStore struct {
	db     *sql.DB
	tables map[string]string
}

// NewPostgres constructs a PostgreSQL-backed event store. tables maps report
// kinds to table names; nil uses DefaultTables.
func NewPostgres(db *sql.DB, tables map[string]string) *PostgresEventStore {
	if tables == nil {
		tables = DefaultTables
	}
	return &PostgresEventStore{db: db, tables: tables}
}

// ListEvents returns the events for kind inside the trailing window, oldest
// first. Country normalization to "unknown" happens here so the aggregator
// sees clean labels.
func (s *PostgresEventStore) ListEvents(ctx context.Context, kind string, windowDays int) ([]models.RawEvent, error) {
	table, ok := s.tables[kind]
	if !ok {
		return nil, fmt.Errorf("report kind %q: %w", kind, sentinel.ErrNotFound)
	}

	// Table names come from the static kind map, never from request input.
	query := fmt.Sprintf(`
		SELECT e.subject_id,
		       e.event_type,
		       COALESCE(e."format", '') AS format,
		       COALESCE(NULLIF(e.country, ''), '%s') AS country,
		       e.created_at
		FROM %s e`, models.UnknownCountry, table)

	var args []any
	if windowDays > 0 {
		query += `
		WHERE e.created_at >= (CURRENT_TIMESTAMP - ($1 * interval '1 day'))`
		args = append(args, windowDays)
	}
	query += `
		ORDER BY e.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s events: %v: %w", kind, err, sentinel.ErrUnavailable)
	}
	defer rows.Close()

	var events []models.RawEvent
	for rows.Next() {
		var ev models.RawEvent
		var occurredAt time.Time
		if err := rows.Scan(&ev.SubjectID, &ev.EventType, &ev.Format, &ev.Country, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan %s event: %v: %w", kind, err, sentinel.ErrUnavailable)
		}
		ev.OccurredAt = occurredAt
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s events: %v: %w", kind, err, sentinel.ErrUnavailable)
	}

	return events, nil
}
