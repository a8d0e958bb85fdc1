// Package models defines the data model of the reporting core: raw events
// read from the event store, the report key identifying one cached aggregate,
// and the snapshot served to clients.
package models

import (
	"fmt"
	"time"
)

// Event types recorded in the raw interaction log.
const (
	EventTypeVisit    = "visit"
	EventTypeDownload = "download"
)

// Download formats with dedicated summary categories.
const (
	FormatPDF  = "pdf"
	FormatEPUB = "epub"
)

// Summary category labels. CategoryBoth is derived from the per-subject PDF
// and EPUB flags by conjunction, never by re-scanning raw events.
const (
	CategoryVisited = "visited"
	CategoryPDF     = "pdf"
	CategoryEPUB    = "epub"
	CategoryBoth    = "both"
)

// UnknownCountry replaces empty country codes in breakdowns.
const UnknownCountry = "unknown"

// ReportKey identifies one cached aggregate: a report kind plus the trailing
// window, in days, over which raw events are aggregated.
type ReportKey struct {
	Kind       string `json:"kind"`
	WindowDays int    `json:"window_days"`
}

// String renders the key in the canonical "kind:days" form used for cache
// and flight keying.
func (k ReportKey) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.WindowDays)
}

// RawEvent is one append-only record of the external interaction log. The
// core only ever reads these.
type RawEvent struct {
	SubjectID  string
	EventType  string
	Format     string
	Country    string
	OccurredAt time.Time
}

// SubjectRow carries the per-subject flags for one subject seen in the
// window. Rows are the superset from which clients derive any filtered or
// paginated view; the server itself never paginates.
type SubjectRow struct {
	SubjectID   string    `json:"subject_id"`
	Visited     bool      `json:"visited"`
	PDF         bool      `json:"pdf"`
	EPUB        bool      `json:"epub"`
	EventCount  int64     `json:"event_count"`
	LastEventAt time.Time `json:"last_event_at"`
}

// CategoryCount is one labeled bucket of a breakdown. Breakdowns count raw
// events, not distinct subjects.
type CategoryCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Snapshot is the immutable aggregate cached per ReportKey. It is replaced
// atomically on refresh and never partially updated; GeneratedAt is
// monotonically non-decreasing for a given key.
type Snapshot struct {
	Key          ReportKey        `json:"report_key"`
	GeneratedAt  time.Time        `json:"generated_at"`
	Summary      map[string]int64 `json:"summary"`
	ByFormat     []CategoryCount  `json:"by_format"`
	ByEventType  []CategoryCount  `json:"by_event_type"`
	TopCountries []CategoryCount  `json:"top_countries"`
	Rows         []SubjectRow     `json:"rows"`
}
