package ledger

import (
	"fmt"
	"strconv"
)

// Field names the entry attribute a Selector matches on.
type Field string

const (
	FieldID    Field = "id"
	FieldName  Field = "name"
	FieldClass Field = "class"
)

// Selector picks the entries removed by Clear.
type Selector struct {
	Field Field
	Value string
	id    uint64
}

// ParseSelector builds a selector from a field name and value.
func ParseSelector(field, value string) (Selector, error) {
	switch Field(field) {
	case FieldID:
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return Selector{}, fmt.Errorf("invalid id %q: %w", value, err)
		}
		return ByID(id), nil
	case FieldName:
		return ByName(value), nil
	case FieldClass:
		return ByClass(value), nil
	default:
		return Selector{}, fmt.Errorf("unknown selector %q (want name, class or id)", field)
	}
}

// ByID selects the entry with the given id.
func ByID(id uint64) Selector {
	return Selector{Field: FieldID, Value: strconv.FormatUint(id, 10), id: id}
}

// ByName selects entries with the given name.
func ByName(name string) Selector {
	return Selector{Field: FieldName, Value: name}
}

// ByClass selects entries with the given class.
func ByClass(class string) Selector {
	return Selector{Field: FieldClass, Value: class}
}

// Match reports whether e is selected. Unlabelled entries never match a name
// or class selector.
func (sel Selector) Match(e Entry) bool {
	switch sel.Field {
	case FieldID:
		return e.ID == sel.id
	case FieldName:
		return e.Name != "" && e.Name == sel.Value
	case FieldClass:
		return e.Class != "" && e.Class == sel.Value
	}
	return false
}

// String implements fmt.Stringer.
func (sel Selector) String() string {
	return string(sel.Field) + "=" + sel.Value
}

// List returns the active entries after pruning. The ledger is rewritten only
// when pruning removed something.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := s.Update(func(l *Ledger) (bool, error) {
		removed := s.prune(l)
		entries = append([]Entry{}, l.Entries...)
		return removed > 0, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Clear prunes the ledger, then removes every entry matching sel and asks its
// owner to terminate. It returns the number of entries removed. Signal
// failures are logged and do not stop the clear.
func (s *Store) Clear(sel Selector) (int, error) {
	removed := 0
	err := s.Update(func(l *Ledger) (bool, error) {
		s.prune(l)

		kept := make([]Entry, 0, len(l.Entries))
		for _, e := range l.Entries {
			if !sel.Match(e) {
				kept = append(kept, e)
				continue
			}
			if err := s.signaler.Terminate(e.PID); err != nil {
				s.logger.Warn("failed to signal notification owner", "id", e.ID, "pid", e.PID, "error", err)
			}
			removed++
		}
		l.Entries = kept
		return true, nil
	})
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", sel, err)
	}
	return removed, nil
}
