package ledger

import (
	"math"
	"strings"
)

// maxSummaryLen caps the summary stored alongside an entry.
const maxSummaryLen = 120

// Entry is one currently displayed notification.
// Fields are immutable after insertion; JSON names match ledgers written by
// earlier releases, and missing fields decode to their zero values.
type Entry struct {
	ID        uint64 `json:"id" yaml:"id"`
	Position  string `json:"position" yaml:"position"`     // Position class the entry stacks within
	Height    int    `json:"height" yaml:"height"`         // Extent along the stacking axis
	Gap       int    `json:"gap" yaml:"gap"`               // Spacing inserted after the entry
	ExpiresAt uint64 `json:"expires_at" yaml:"expires_at"` // Epoch milliseconds, 0 = never
	CreatedAt uint64 `json:"created_at" yaml:"created_at"` // Epoch milliseconds
	PID       int    `json:"pid" yaml:"pid"`               // Owning process, 0 = always alive
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Class     string `json:"class,omitempty" yaml:"class,omitempty"`
	Summary   string `json:"summary" yaml:"summary"`
}

// Extent returns the space the entry takes up in its stack, gap included.
func (e Entry) Extent() int {
	return e.Height + e.Gap
}

// Expired reports whether the entry's deadline is at or before now.
func (e Entry) Expired(now uint64) bool {
	return e.ExpiresAt != 0 && e.ExpiresAt <= now
}

// Ledger is the persisted collection of active entries.
type Ledger struct {
	NextID  uint64  `json:"next_id"`
	Entries []Entry `json:"entries"`
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{NextID: 1, Entries: []Entry{}}
}

// normalize repairs ledgers written without next_id (or with one that would
// reissue an existing id).
func (l *Ledger) normalize() {
	if l.Entries == nil {
		l.Entries = []Entry{}
	}
	var maxID uint64
	for _, e := range l.Entries {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	if l.NextID <= maxID {
		l.NextID = maxID + 1
	}
	if l.NextID == 0 {
		l.NextID = 1
	}
}

// StackHeight sums the extents of every entry in the position class.
func (l *Ledger) StackHeight(position string) int {
	total := 0
	for _, e := range l.Entries {
		if e.Position == position {
			total += e.Extent()
		}
	}
	return total
}

// OffsetBefore sums the extents of same-class entries ahead of id, stopping
// at id itself. Entries with a larger id are never counted, so a missing id
// or an out-of-order ledger still yields the entries reserved earlier.
func (l *Ledger) OffsetBefore(id uint64, position string) int {
	total := 0
	for _, e := range l.Entries {
		if e.ID == id {
			break
		}
		if e.Position != position || e.ID > id {
			continue
		}
		total += e.Extent()
	}
	return total
}

// Remove drops the entry with the given id and reports whether it existed.
func (l *Ledger) Remove(id uint64) bool {
	for i, e := range l.Entries {
		if e.ID == id {
			l.Entries = append(l.Entries[:i:i], l.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the entry with the given id.
func (l *Ledger) Find(id uint64) (Entry, bool) {
	for _, e := range l.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Summary reduces a message to the label stored in the ledger: its first
// line, trimmed and capped at 120 bytes without splitting a UTF-8 sequence.
func Summary(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	line = strings.TrimSpace(line)
	if len(line) <= maxSummaryLen {
		return line
	}
	cut := maxSummaryLen
	for cut > 0 && !isRuneStart(line[cut]) {
		cut--
	}
	return line[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// addMillis adds a duration in milliseconds to an epoch timestamp,
// saturating instead of wrapping.
func addMillis(now, ms uint64) uint64 {
	if ms > math.MaxUint64-now {
		return math.MaxUint64
	}
	return now + ms
}
