// Package aggregate builds report snapshots from raw events. Aggregation is
// pure: same events in, same snapshot out, regardless of input order.
package aggregate

import (
	"sort"
	"time"

	"mayaportal/internal/stats/models"
)

// TopCountriesLimit caps the country breakdown length.
const TopCountriesLimit = 12

type subjectState struct {
	visited     bool
	pdf         bool
	epub        bool
	eventCount  int64
	lastEventAt time.Time
}

// Aggregate computes the snapshot for key from the raw events of its window.
// Summary counts distinct subjects per category; breakdowns count raw events.
func Aggregate(key models.ReportKey, events []models.RawEvent, generatedAt time.Time) *models.Snapshot {
	subjects := make(map[string]*subjectState)
	byFormat := make(map[string]int64)
	byEventType := make(map[string]int64)
	byCountry := make(map[string]int64)

	for _, ev := range events {
		st, ok := subjects[ev.SubjectID]
		if !ok {
			st = &subjectState{}
			subjects[ev.SubjectID] = st
		}
		st.eventCount++
		if ev.OccurredAt.After(st.lastEventAt) {
			st.lastEventAt = ev.OccurredAt
		}

		switch ev.EventType {
		case models.EventTypeVisit:
			st.visited = true
		case models.EventTypeDownload:
			switch ev.Format {
			case models.FormatPDF:
				st.pdf = true
			case models.FormatEPUB:
				st.epub = true
			}
			if ev.Format != "" {
				byFormat[ev.Format]++
			}
		}

		byEventType[ev.EventType]++

		country := ev.Country
		if country == "" {
			country = models.UnknownCountry
		}
		byCountry[country]++
	}

	summary := map[string]int64{
		models.CategoryVisited: 0,
		models.CategoryPDF:     0,
		models.CategoryEPUB:    0,
		models.CategoryBoth:    0,
	}
	rows := make([]models.SubjectRow, 0, len(subjects))
	for id, st := range subjects {
		if st.visited {
			summary[models.CategoryVisited]++
		}
		if st.pdf {
			summary[models.CategoryPDF]++
		}
		if st.epub {
			summary[models.CategoryEPUB]++
		}
		if st.pdf && st.epub {
			summary[models.CategoryBoth]++
		}
		rows = append(rows, models.SubjectRow{
			SubjectID:   id,
			Visited:     st.visited,
			PDF:         st.pdf,
			EPUB:        st.epub,
			EventCount:  st.eventCount,
			LastEventAt: st.lastEventAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SubjectID < rows[j].SubjectID })

	return &models.Snapshot{
		Key:          key,
		GeneratedAt:  generatedAt,
		Summary:      summary,
		ByFormat:     sortedCounts(byFormat, 0),
		ByEventType:  sortedCounts(byEventType, 0),
		TopCountries: sortedCounts(byCountry, TopCountriesLimit),
		Rows:         rows,
	}
}

// sortedCounts flattens a count map into buckets ordered by count descending,
// label ascending on ties. limit <= 0 keeps every bucket.
func sortedCounts(counts map[string]int64, limit int) []models.CategoryCount {
	out := make([]models.CategoryCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, models.CategoryCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
