package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []SubjectRow {
	return []SubjectRow{
		{SubjectID: "a", Visited: true, PDF: true, EPUB: true},
		{SubjectID: "b", Visited: true},
		{SubjectID: "c", PDF: true},
		{SubjectID: "d", EPUB: true},
	}
}

func TestFilterRows(t *testing.T) {
	rows := sampleRows()

	tests := []struct {
		name   string
		filter RowFilter
		want   []string
	}{
		{"all", FilterAll, []string{"a", "b", "c", "d"}},
		{"visited", FilterVisited, []string{"a", "b"}},
		{"pdf", FilterPDF, []string{"a", "c"}},
		{"epub", FilterEPUB, []string{"a", "d"}},
		{"both", FilterBoth, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRows(rows, tt.filter)
			ids := make([]string, 0, len(got))
			for _, row := range got {
				ids = append(ids, row.SubjectID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterRowsDoesNotMutateInput(t *testing.T) {
	rows := sampleRows()
	out := FilterRows(rows, FilterAll)
	out[0].SubjectID = "mutated"
	assert.Equal(t, "a", rows[0].SubjectID)
}

func TestPageRows(t *testing.T) {
	rows := sampleRows()

	first := PageRows(rows, 1, 3)
	require.Len(t, first, 3)
	assert.Equal(t, "a", first[0].SubjectID)

	second := PageRows(rows, 2, 3)
	require.Len(t, second, 1)
	assert.Equal(t, "d", second[0].SubjectID)

	assert.Empty(t, PageRows(rows, 3, 3))
	assert.Nil(t, PageRows(rows, 0, 3))
	assert.Nil(t, PageRows(rows, 1, 0))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 1, TotalPages(5, 0))
}
