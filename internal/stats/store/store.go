// Package store provides read-only access to the raw interaction log.
package store

import (
	"context"

	"mayaportal/internal/stats/models"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound (wrapped) when the report kind is unknown
// - Return sentinel.ErrUnavailable (wrapped) when the underlying log cannot be reached
// - Return nil with the event batch otherwise; an empty window is not an error

// EventStore reads raw events for one report kind scoped to the trailing
// window. windowDays <= 0 means the full history.
type EventStore interface {
	ListEvents(ctx context.Context, kind string, windowDays int) ([]models.RawEvent, error)
}
