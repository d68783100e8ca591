package ledger

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// Prober reports whether a process still owns its pid.
type Prober interface {
	Alive(pid int) bool
}

// Signaler asks the owner of an entry to terminate.
type Signaler interface {
	Terminate(pid int) error
}

// ProcessProber probes liveness by sending signal 0.
// Only ESRCH counts as gone; EPERM and any other failure count as alive, so
// entries owned by other users are never evicted on a guess.
type ProcessProber struct{}

// Alive implements Prober.
func (ProcessProber) Alive(pid int) bool {
	if pid <= 0 {
		return true
	}
	err := unix.Kill(pid, 0)
	return !errors.Is(err, unix.ESRCH)
}

// ProcessSignaler sends SIGTERM. A process that has already exited is not an
// error.
type ProcessSignaler struct{}

// Terminate implements Signaler.
func (ProcessSignaler) Terminate(pid int) error {
	if pid <= 0 {
		return nil
	}
	err := unix.Kill(pid, syscall.SIGTERM)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

// Prune removes entries whose deadline is at or before now and entries whose
// owner is gone. It returns the number removed and is idempotent.
func Prune(l *Ledger, now uint64, p Prober) int {
	kept := l.Entries[:0]
	removed := 0
	for _, e := range l.Entries {
		if e.Expired(now) || (e.PID != 0 && !p.Alive(e.PID)) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	clear(l.Entries[len(kept):])
	l.Entries = kept
	return removed
}

// prune applies Prune with the store's clock and prober.
func (s *Store) prune(l *Ledger) int {
	n := Prune(l, s.Now(), s.prober)
	if n > 0 {
		s.logger.Debug("pruned ledger entries", "removed", n)
	}
	return n
}
