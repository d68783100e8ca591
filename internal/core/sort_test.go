package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/creak/internal/ledger"
)

func TestSort_Empty(t *testing.T) {
	var entries []ledger.Entry
	Sort(entries, DefaultSortOptions())
	assert.Len(t, entries, 0)
}

func TestSort(t *testing.T) {
	tests := []struct {
		name string
		opts SortOptions
		want []uint64
	}{
		{"id asc", SortOptions{Field: SortByID, Order: SortAsc}, []uint64{1, 2, 3}},
		{"id desc", SortOptions{Field: SortByID, Order: SortDesc}, []uint64{3, 2, 1}},
		{"expires asc puts never last", SortOptions{Field: SortByExpires, Order: SortAsc}, []uint64{1, 2, 3}},
		{"expires desc", SortOptions{Field: SortByExpires, Order: SortDesc}, []uint64{3, 2, 1}},
		{"position asc", SortOptions{Field: SortByPosition, Order: SortAsc}, []uint64{2, 1, 3}},
		{"height desc", SortOptions{Field: SortByHeight, Order: SortDesc}, []uint64{2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := sampleEntries()
			Sort(entries, tt.opts)
			assert.Equal(t, tt.want, ids(entries))
		})
	}
}

func TestParseSortField(t *testing.T) {
	tests := map[string]SortField{
		"":         SortByID,
		"id":       SortByID,
		"EXPIRES":  SortByExpires,
		"pos":      SortByPosition,
		"h":        SortByHeight,
		"whatever": SortByID,
	}
	for input, want := range tests {
		got, err := ParseSortField(input)
		assert.NoError(t, err)
		assert.Equal(t, want, got, input)
	}
}

func TestParseSortOrder(t *testing.T) {
	got, _ := ParseSortOrder("Descending")
	assert.Equal(t, SortDesc, got)
	got, _ = ParseSortOrder("asc")
	assert.Equal(t, SortAsc, got)
	got, _ = ParseSortOrder("sideways")
	assert.Equal(t, SortAsc, got)
}
