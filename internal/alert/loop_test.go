package alert

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/creak/internal/config"
	"github.com/jmylchreest/creak/internal/ledger"
	"github.com/jmylchreest/creak/internal/surface"
)

var epoch = time.UnixMilli(1_700_000_000_000)

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeTransport advances the clock on every wait, as a real wait would.
type fakeTransport struct {
	clock      fakeClock
	waits      int
	onDispatch func(n int)
	readErr    error
}

func (f *fakeTransport) Wait(timeout time.Duration) (bool, error) {
	f.waits++
	f.clock.Advance(timeout)
	return false, nil
}

func (f *fakeTransport) ReadEvents() error { return f.readErr }

func (f *fakeTransport) Dispatch() error {
	if f.onDispatch != nil {
		f.onDispatch(f.waits)
	}
	return nil
}

func (f *fakeTransport) Flush() error { return nil }

type fakePopup struct {
	done    bool
	reason  surface.Reason
	margins []surface.Margins
}

func (p *fakePopup) Done() bool             { return p.done }
func (p *fakePopup) Reason() surface.Reason { return p.reason }

func (p *fakePopup) Finish(r surface.Reason) {
	if !p.done {
		p.done = true
		p.reason = r
	}
}

func (p *fakePopup) SetMargins(m surface.Margins) error {
	p.margins = append(p.margins, m)
	return nil
}

func newLoop() (*Loop, *fakeTransport, *fakePopup) {
	clock := clockwork.NewFakeClockAt(epoch)
	tr := &fakeTransport{clock: clock}
	popup := &fakePopup{}
	loop := &Loop{Conn: tr, Popup: popup, Deadline: epoch.Add(time.Hour), Clock: clock, Logger: discard}
	return loop, tr, popup
}

func TestLoop_Deadline(t *testing.T) {
	loop, tr, _ := newLoop()
	loop.Deadline = epoch.Add(100 * time.Millisecond)

	reason, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, surface.ReasonTimeout, reason)
	assert.Equal(t, 10, tr.waits)
}

func TestLoop_StoppingFlag(t *testing.T) {
	loop, tr, _ := newLoop()
	var stopping atomic.Bool
	stopping.Store(true)
	loop.Stopping = &stopping

	reason, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, surface.ReasonSignal, reason)
	assert.Zero(t, tr.waits)
}

func TestLoop_ContextCancelled(t *testing.T) {
	loop, _, _ := newLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reason, err := loop.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, surface.ReasonSignal, reason)
}

func TestLoop_ClosedByCompositor(t *testing.T) {
	loop, tr, popup := newLoop()
	tr.onDispatch = func(n int) {
		if n == 3 {
			popup.Finish(surface.ReasonClosed)
		}
	}

	reason, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, surface.ReasonClosed, reason)
	assert.Equal(t, 3, tr.waits)
}

func TestLoop_DismissedBeforeDeadline(t *testing.T) {
	loop, tr, popup := newLoop()
	tr.onDispatch = func(n int) {
		if n == 1000 {
			popup.Finish(surface.ReasonDismissed)
		}
	}

	reason, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, surface.ReasonDismissed, reason)
	assert.Equal(t, 1000, tr.waits)
}

func TestLoop_ZeroTimeoutEndsImmediately(t *testing.T) {
	loop, tr, _ := newLoop()
	loop.Deadline = epoch

	reason, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, surface.ReasonTimeout, reason)
	assert.Zero(t, tr.waits)

	loop, tr, _ = newLoop()
	loop.Deadline = time.Time{}

	reason, err = loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, surface.ReasonTimeout, reason)
	assert.Zero(t, tr.waits)
}

func TestLoop_TransportError(t *testing.T) {
	loop, tr, _ := newLoop()
	tr.readErr = errors.New("boom")

	_, err := loop.Run(context.Background())
	assert.ErrorContains(t, err, "read compositor events: boom")
}

func TestLoop_MovesWhenPeerLeaves(t *testing.T) {
	loop, _, popup := newLoop()
	clock := loop.Clock
	store, err := ledger.NewStore(t.TempDir(), ledger.WithClock(clock), ledger.WithLogger(discard))
	require.NoError(t, err)

	pos := string(config.PositionTopRight)
	_, first, err := store.Reserve(ledger.Reservation{Position: pos, Height: 50, Gap: 10, TTL: 5 * time.Second})
	require.NoError(t, err)
	offset, second, err := store.Reserve(ledger.Reservation{Position: pos, Height: 30, Gap: 10, TTL: 5 * time.Second})
	require.NoError(t, err)
	require.Equal(t, 60, offset)
	defer second.Release()

	first.Release()

	loop.Poller = ledger.NewPoller(second, offset, ledger.DefaultPollInterval, clock)
	loop.Base = surface.Margins{Top: 20, Right: 20}
	loop.Position = config.PositionTopRight
	loop.Deadline = epoch.Add(time.Second)

	reason, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, surface.ReasonTimeout, reason)
	assert.Equal(t, []surface.Margins{{Top: 20, Right: 20}}, popup.margins)
}

func TestLoop_UnstackedNeverMoves(t *testing.T) {
	loop, _, popup := newLoop()
	loop.Poller = ledger.NewPoller(nil, 0, ledger.DefaultPollInterval, loop.Clock)
	loop.Deadline = epoch.Add(time.Second)

	_, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, popup.margins)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "title", Message("title", nil))
	assert.Equal(t, "title\nsome body text", Message("title", []string{"some", "body", "text"}))
}
