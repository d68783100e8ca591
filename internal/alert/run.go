package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/jmylchreest/creak/internal/audio"
	"github.com/jmylchreest/creak/internal/config"
	"github.com/jmylchreest/creak/internal/ledger"
	"github.com/jmylchreest/creak/internal/render"
	"github.com/jmylchreest/creak/internal/shm"
	"github.com/jmylchreest/creak/internal/surface"
	"github.com/jmylchreest/creak/internal/wayland"
)

// Notification is one message to show.
type Notification struct {
	Message string
	Name    string
	Class   string
}

// Message joins a title and body words: the body goes on a second line,
// its words separated by spaces.
func Message(title string, body []string) string {
	if len(body) == 0 {
		return title
	}
	return title + "\n" + strings.Join(body, " ")
}

// Runner shows notifications with one configuration.
type Runner struct {
	Config *config.Config
	// Store holds the shared stack; nil disables stacking.
	Store *ledger.Store
	// Dial connects to the compositor; nil uses wayland.Dial.
	Dial func() (*wayland.Conn, error)
	// Player plays the configured sound; nil is silent.
	Player   *audio.Player
	Clock    clockwork.Clock
	Stopping *atomic.Bool
	Logger   *slog.Logger
}

func (r *Runner) clock() clockwork.Clock {
	if r.Clock == nil {
		return clockwork.NewRealClock()
	}
	return r.Clock
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Show displays n and blocks until it goes away.
func (r *Runner) Show(ctx context.Context, n Notification) (surface.Reason, error) {
	cfg := r.Config
	logger := r.logger()
	clock := r.clock()

	renderer, err := render.New(cfg)
	if err != nil {
		return surface.ReasonNone, err
	}
	width, height := renderer.Measure(n.Message)

	dial := r.Dial
	if dial == nil {
		dial = wayland.Dial
	}
	conn, err := dial()
	if err != nil {
		return surface.ReasonNone, fmt.Errorf("failed to connect to compositor: %w", err)
	}
	defer conn.Close()
	conn.SetLogger(logger)

	m, err := surface.Connect(ctx, conn, surface.Options{Scale: cfg.Display.Scale, Logger: logger})
	if err != nil {
		return surface.ReasonNone, err
	}
	defer m.Close()

	pos := cfg.ResolvedPosition()
	timeout := cfg.Behavior.Timeout.Duration()

	offset, lease := r.reserve(ledger.Reservation{
		Position: string(pos),
		Height:   height,
		Gap:      cfg.Stack.Gap,
		TTL:      timeout,
		Name:     n.Name,
		Class:    n.Class,
		Summary:  ledger.Summary(n.Message),
	})
	defer lease.Release()

	placement := surface.NewPlacement(cfg, width, height, offset)
	if err := m.Configure(ctx, placement); err != nil {
		return surface.ReasonNone, err
	}
	if m.Done() {
		return m.Reason(), nil
	}

	w, h := m.Size()
	scale := m.Scale()
	buf, err := shm.NewBuffer(w*scale, h*scale)
	if err != nil {
		return surface.ReasonNone, err
	}
	defer buf.Close()
	render.CopyARGB(buf.Pixels(), buf.Stride, renderer.Render(n.Message, w, h, scale))
	if err := m.Attach(buf); err != nil {
		return surface.ReasonNone, err
	}
	logger.Debug("popup shown", "width", w, "height", h, "scale", scale, "offset", offset)

	r.playSound(cfg)

	_, base := surface.Place(pos, cfg.Display.Edge, cfg.Display.DefaultOffset)
	loop := &Loop{
		Conn:     conn,
		Popup:    m,
		Poller:   ledger.NewPoller(lease, offset, ledger.DefaultPollInterval, clock),
		Base:     base,
		Position: pos,
		Deadline: clock.Now().Add(timeout),
		Clock:    clock,
		Stopping: r.Stopping,
		Logger:   logger,
	}
	return loop.Run(ctx)
}

// reserve claims a stack slot. Stacking is skipped when disabled or when
// the timeout is zero, and a failed reservation degrades to the unstacked
// position.
func (r *Runner) reserve(res ledger.Reservation) (int, *ledger.Lease) {
	if r.Store == nil || !r.Config.Stack.Enabled {
		return 0, nil
	}
	offset, lease, err := r.Store.Reserve(res)
	if err != nil {
		r.logger().Warn("failed to reserve stack slot, showing unstacked", "error", err)
		return 0, nil
	}
	return offset, lease
}

func (r *Runner) playSound(cfg *config.Config) {
	path := cfg.SoundFile()
	if r.Player == nil || path == "" {
		return
	}
	r.Player.SetVolume(cfg.Audio.Volume)
	if err := r.Player.Play(path); err != nil {
		r.logger().Warn("failed to play sound", "path", path, "error", err)
	}
}
