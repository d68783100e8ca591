package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jmylchreest/creak/internal/config"
	"github.com/jmylchreest/creak/internal/ledger"
	"github.com/jmylchreest/creak/internal/surface"
)

// waitInterval bounds each socket wait so the shutdown flag, the deadline
// and the poller are checked promptly.
const waitInterval = 10 * time.Millisecond

// Transport is the compositor connection as the loop drives it.
type Transport interface {
	Wait(timeout time.Duration) (bool, error)
	ReadEvents() error
	Dispatch() error
	Flush() error
}

// Popup is the surface as the loop drives it.
type Popup interface {
	Done() bool
	Reason() surface.Reason
	Finish(r surface.Reason)
	SetMargins(m surface.Margins) error
}

// Loop runs a shown popup until it terminates.
type Loop struct {
	Conn  Transport
	Popup Popup
	// Poller may be nil when the popup is not stacked.
	Poller *ledger.Poller
	// Base is the margin set before any stack offset.
	Base     surface.Margins
	Position config.Position
	// Deadline ends the popup once reached; a zero Deadline has already passed.
	Deadline time.Time
	Clock    clockwork.Clock
	Stopping *atomic.Bool
	Logger   *slog.Logger
}

// Run dispatches compositor events and applies stack offset changes until
// the popup times out, is closed or dismissed, or Stopping is set.
// Cancelling ctx counts as a signal.
func (l *Loop) Run(ctx context.Context) (surface.Reason, error) {
	clock := l.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for {
		if ctx.Err() != nil || (l.Stopping != nil && l.Stopping.Load()) {
			l.Popup.Finish(surface.ReasonSignal)
		}
		if l.Popup.Done() {
			return l.Popup.Reason(), nil
		}
		if !clock.Now().Before(l.Deadline) {
			l.Popup.Finish(surface.ReasonTimeout)
			continue
		}

		if _, err := l.Conn.Wait(waitInterval); err != nil {
			return surface.ReasonNone, fmt.Errorf("wait for compositor: %w", err)
		}
		if err := l.Conn.ReadEvents(); err != nil {
			return surface.ReasonNone, fmt.Errorf("read compositor events: %w", err)
		}
		if err := l.Conn.Dispatch(); err != nil {
			return surface.ReasonNone, fmt.Errorf("dispatch compositor events: %w", err)
		}
		if err := l.Conn.Flush(); err != nil {
			return surface.ReasonNone, fmt.Errorf("flush requests: %w", err)
		}

		if l.Poller == nil || !l.Poller.Due() {
			continue
		}
		offset, changed, err := l.Poller.Poll()
		if err != nil {
			logger.Debug("failed to poll stack", "error", err)
			continue
		}
		if changed {
			logger.Debug("stack offset changed", "offset", offset)
			if err := l.Popup.SetMargins(l.Base.Stacked(l.Position, offset)); err != nil {
				return surface.ReasonNone, fmt.Errorf("move popup: %w", err)
			}
		}
	}
}
