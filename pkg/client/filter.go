package client

// RowFilter selects the subject rows shown in a view. The server always
// returns the full row set for the window; narrowing is a client concern.
type RowFilter int

const (
	FilterAll RowFilter = iota
	FilterVisited
	FilterPDF
	FilterEPUB
	FilterBoth
)

func (f RowFilter) matches(row SubjectRow) bool {
	switch f {
	case FilterVisited:
		return row.Visited
	case FilterPDF:
		return row.PDF
	case FilterEPUB:
		return row.EPUB
	case FilterBoth:
		return row.PDF && row.EPUB
	default:
		return true
	}
}

// FilterRows returns the rows matching f, preserving order. The input is
// never mutated.
func FilterRows(rows []SubjectRow, f RowFilter) []SubjectRow {
	if f == FilterAll {
		out := make([]SubjectRow, len(rows))
		copy(out, rows)
		return out
	}
	out := make([]SubjectRow, 0, len(rows))
	for _, row := range rows {
		if f.matches(row) {
			out = append(out, row)
		}
	}
	return out
}

// PageRows returns the 1-based page of rows with perPage entries. Pages past
// the end are empty, never an error.
func PageRows(rows []SubjectRow, page, perPage int) []SubjectRow {
	if page < 1 || perPage < 1 {
		return nil
	}
	start := (page - 1) * perPage
	if start >= len(rows) {
		return []SubjectRow{}
	}
	end := start + perPage
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]SubjectRow, end-start)
	copy(out, rows[start:end])
	return out
}

// TotalPages returns how many pages of perPage entries the row set spans.
// An empty set still has one page so views always have something to render.
func TotalPages(total, perPage int) int {
	if perPage < 1 {
		return 1
	}
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}
