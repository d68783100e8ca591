package ledger

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultPollInterval is how often a live notification re-reads the ledger.
const DefaultPollInterval = 100 * time.Millisecond

// Poller recomputes a lease's stacking offset as peers ahead of it leave.
type Poller struct {
	lease    *Lease
	interval time.Duration
	clock    clockwork.Clock

	applied   int
	lastCheck time.Time
}

// NewPoller returns a poller for lease whose currently applied offset is
// offset. A nil lease yields a poller that never reports a change.
func NewPoller(lease *Lease, offset int, interval time.Duration, clock clockwork.Clock) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{
		lease:     lease,
		interval:  interval,
		clock:     clock,
		applied:   offset,
		lastCheck: clock.Now(),
	}
}

// Offset returns the last applied offset.
func (p *Poller) Offset() int { return p.applied }

// Due reports whether the poll interval has elapsed since the last check.
func (p *Poller) Due() bool {
	return p.lease != nil && p.clock.Since(p.lastCheck) >= p.interval
}

// Poll re-reads the ledger when due and returns the current offset and
// whether it differs from the previously applied one. On error the applied
// offset is kept.
func (p *Poller) Poll() (int, bool, error) {
	if !p.Due() {
		return p.applied, false, nil
	}
	p.lastCheck = p.clock.Now()

	offset, err := p.lease.store.OffsetFor(p.lease.ID, p.lease.Position)
	if err != nil {
		return p.applied, false, err
	}
	if offset == p.applied {
		return offset, false, nil
	}
	p.applied = offset
	return offset, true, nil
}

// OffsetFor prunes the ledger and sums the extents of entries in position
// that were inserted before id. The ledger is saved only if pruning removed
// something.
func (s *Store) OffsetFor(id uint64, position string) (int, error) {
	var offset int
	err := s.Update(func(l *Ledger) (bool, error) {
		removed := s.prune(l)
		offset = l.OffsetBefore(id, position)
		return removed > 0, nil
	})
	return offset, err
}
