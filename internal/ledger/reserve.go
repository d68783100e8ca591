package ledger

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Reservation describes a notification asking for a stacking slot.
type Reservation struct {
	Position string
	Height   int
	Gap      int
	TTL      time.Duration
	Name     string
	Class    string
	Summary  string
}

// ttlMillis rounds the TTL up to whole milliseconds.
func (r Reservation) ttlMillis() uint64 {
	if r.TTL <= 0 {
		return 0
	}
	ms := uint64(r.TTL / time.Millisecond)
	if r.TTL%time.Millisecond != 0 {
		ms++
	}
	return ms
}

// Lease owns one ledger entry for the life of a notification.
type Lease struct {
	ID       uint64
	Position string

	store *Store
	once  sync.Once
}

// Reserve computes the offset for a new notification and registers it in one
// locked transaction. A zero TTL reserves nothing and returns a nil lease.
func (s *Store) Reserve(r Reservation) (int, *Lease, error) {
	if r.TTL <= 0 {
		return 0, nil, nil
	}

	var (
		offset int
		id     uint64
	)
	err := s.Update(func(l *Ledger) (bool, error) {
		s.prune(l)
		offset = l.StackHeight(r.Position)

		now := s.Now()
		id = l.NextID
		l.NextID++
		l.Entries = append(l.Entries, Entry{
			ID:        id,
			Position:  r.Position,
			Height:    r.Height,
			Gap:       r.Gap,
			ExpiresAt: addMillis(now, r.ttlMillis()),
			CreatedAt: now,
			PID:       os.Getpid(),
			Name:      r.Name,
			Class:     r.Class,
			Summary:   r.Summary,
		})
		return true, nil
	})
	if err != nil {
		return 0, nil, fmt.Errorf("reserve slot: %w", err)
	}

	s.logger.Debug("reserved slot", "id", id, "position", r.Position, "offset", offset)
	return offset, &Lease{ID: id, Position: r.Position, store: s}, nil
}

// Release removes the lease's entry. Errors are logged and otherwise ignored;
// a stale entry is pruned once its owner exits. Only the first call acts.
func (l *Lease) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		err := l.store.Update(func(ld *Ledger) (bool, error) {
			return ld.Remove(l.ID), nil
		})
		if err != nil {
			l.store.logger.Debug("lease release failed", "id", l.ID, "error", err)
		}
	})
}
