package core

import (
	"sort"
	"strings"

	"github.com/jmylchreest/creak/internal/ledger"
)

// LookupByID finds an entry by its ledger id.
// Returns nil if not found.
func LookupByID(entries []ledger.Entry, id uint64) *ledger.Entry {
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i]
		}
	}
	return nil
}

// Search finds entries whose summary, name or class contains term.
// Case-insensitive substring match.
func Search(entries []ledger.Entry, term string) []ledger.Entry {
	if term == "" {
		return entries
	}

	term = strings.ToLower(term)
	var result []ledger.Entry

	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Summary), term) ||
			strings.Contains(strings.ToLower(e.Name), term) ||
			strings.Contains(strings.ToLower(e.Class), term) {
			result = append(result, e)
		}
	}

	return result
}

// Positions returns the sorted distinct position classes in use.
func Positions(entries []ledger.Entry) []string {
	seen := make(map[string]bool)
	var positions []string

	for _, e := range entries {
		if e.Position != "" && !seen[e.Position] {
			seen[e.Position] = true
			positions = append(positions, e.Position)
		}
	}

	sort.Strings(positions)
	return positions
}
