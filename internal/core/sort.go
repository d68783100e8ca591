package core

import (
	"sort"
	"strings"

	"github.com/jmylchreest/creak/internal/ledger"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByID       SortField = "id"
	SortByExpires  SortField = "expires"
	SortByPosition SortField = "position"
	SortByHeight   SortField = "height"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns default sort options: ledger order.
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByID,
		Order: SortAsc,
	}
}

// Sort sorts entries in place based on the provided options.
func Sort(entries []ledger.Entry, opts SortOptions) {
	if len(entries) == 0 {
		return
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		var less bool

		switch opts.Field {
		case SortByExpires:
			less = expiryKey(a) < expiryKey(b)
		case SortByPosition:
			less = strings.ToLower(a.Position) < strings.ToLower(b.Position)
		case SortByHeight:
			less = a.Height < b.Height
		default:
			less = a.ID < b.ID
		}

		if opts.Order == SortDesc {
			return !less
		}
		return less
	})
}

// expiryKey sorts entries without a deadline last.
func expiryKey(e ledger.Entry) uint64 {
	if e.ExpiresAt == 0 {
		return ^uint64(0)
	}
	return e.ExpiresAt
}

// ParseSortField parses a sort field string. Unknown values sort by id.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "id", "created", "":
		return SortByID, nil
	case "expires", "expiry", "e":
		return SortByExpires, nil
	case "position", "pos", "p":
		return SortByPosition, nil
	case "height", "h":
		return SortByHeight, nil
	default:
		return SortByID, nil
	}
}

// ParseSortOrder parses a sort order string. Unknown values sort ascending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending", "d":
		return SortDesc, nil
	default:
		return SortAsc, nil
	}
}
