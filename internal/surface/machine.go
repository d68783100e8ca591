package surface

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/creak/internal/shm"
	"github.com/jmylchreest/creak/internal/wayland"
)

// DefaultNamespace is the layer surface namespace compositors match rules
// against.
const DefaultNamespace = "creak"

// Supported global version ranges.
const (
	compositorMinVersion = 4
	compositorMaxVersion = 5
	shmVersion           = 1
	layerShellMinVersion = 1
	layerShellMaxVersion = 4
	seatMaxVersion       = 7
	outputMinVersion     = 2
	outputMaxVersion     = 4
)

// Options configure a Machine.
type Options struct {
	Namespace string
	// Scale overrides the buffer scale; 0 follows the output.
	Scale  int
	Logger *slog.Logger
}

type output struct {
	proxy *wayland.Output
	name  uint32
	scale int32
}

// Machine drives one layer-shell popup through its lifecycle. Every
// compositor event flows through HandleEvent. It is not safe for concurrent
// use.
type Machine struct {
	conn   *wayland.Conn
	opts   Options
	logger *slog.Logger

	state  State
	reason Reason

	registry   *wayland.Registry
	compositor *wayland.Compositor
	shm        *wayland.Shm
	layerShell *wayland.LayerShell
	seat       *wayland.Seat
	pointer    *wayland.Pointer
	outputs    map[uint32]*output // by object id
	advertised map[string]uint32  // required interface -> advertised version

	surface      *wayland.Surface
	layerSurface *wayland.LayerSurface
	buffer       *wayland.Buffer
	entered      uint32
	preferred    int32
	configured   bool
	width        int
	height       int
	margins      Margins
}

// Connect binds the globals a popup needs. The compositor, shm and layer
// shell are required; a seat and outputs are used when present.
func Connect(ctx context.Context, conn *wayland.Conn, opts Options) (*Machine, error) {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	m := &Machine{
		conn:       conn,
		opts:       opts,
		logger:     opts.Logger,
		state:      StateConnecting,
		outputs:    make(map[uint32]*output),
		advertised: make(map[string]uint32),
	}
	conn.SetHandler(m)
	m.registry = conn.Display().GetRegistry()

	// The first round trip collects globals, the second collects the
	// events bound objects send straight away (output scale, seat
	// capabilities).
	if err := conn.Roundtrip(ctx); err != nil {
		return nil, fmt.Errorf("failed to read globals: %w", err)
	}
	if err := m.checkRequired(); err != nil {
		return nil, err
	}
	if err := conn.Roundtrip(ctx); err != nil {
		return nil, fmt.Errorf("failed to read global state: %w", err)
	}
	return m, nil
}

func (m *Machine) checkRequired() error {
	required := []struct {
		iface   string
		min     uint32
		present bool
	}{
		{wayland.InterfaceCompositor, compositorMinVersion, m.compositor != nil},
		{wayland.InterfaceShm, shmVersion, m.shm != nil},
		{wayland.InterfaceLayerShell, layerShellMinVersion, m.layerShell != nil},
	}
	for _, r := range required {
		if !r.present {
			return &MissingGlobalError{Interface: r.iface, MinVersion: r.min, Advertised: m.advertised[r.iface]}
		}
	}
	return nil
}

// State returns the lifecycle stage.
func (m *Machine) State() State { return m.state }

// Reason returns why the popup is closing, or ReasonNone.
func (m *Machine) Reason() Reason { return m.reason }

// Done reports whether the popup has stopped being shown.
func (m *Machine) Done() bool { return m.state >= StateClosing }

// Size returns the logical size after configure.
func (m *Machine) Size() (width, height int) { return m.width, m.height }

// Configured reports whether the compositor sent a configure.
func (m *Machine) Configured() bool { return m.configured }

// Margins returns the last requested margins.
func (m *Machine) Margins() Margins { return m.margins }

// Scale returns the buffer scale: the override if set, otherwise the
// compositor's preferred scale, the scale of the output the surface is on,
// or the largest known output scale.
func (m *Machine) Scale() int {
	if m.opts.Scale > 0 {
		return m.opts.Scale
	}
	if m.preferred > 0 {
		return int(m.preferred)
	}
	if o, ok := m.outputs[m.entered]; ok {
		return int(max(o.scale, 1))
	}
	scale := int32(1)
	for _, o := range m.outputs {
		scale = max(scale, o.scale)
	}
	return int(scale)
}

// Configure creates the layer surface and performs the initial commit.
// When the compositor proposes a size, positive axes replace the local
// size; without a configure the local size stands.
func (m *Machine) Configure(ctx context.Context, p Placement) error {
	if m.state != StateConnecting {
		return fmt.Errorf("configure in state %s", m.state)
	}

	m.width, m.height = p.Width, p.Height
	m.margins = p.Margins

	m.surface = m.compositor.CreateSurface()
	m.layerSurface = m.layerShell.GetLayerSurface(m.surface, nil, wayland.LayerOverlay, m.opts.Namespace)
	m.layerSurface.SetAnchor(p.Anchor)
	m.layerSurface.SetMargin(p.Margins.Top, p.Margins.Right, p.Margins.Bottom, p.Margins.Left)
	m.layerSurface.SetSize(uint32(p.Width), uint32(p.Height))
	m.layerSurface.SetKeyboardInteractivity(wayland.KeyboardInteractivityNone)
	m.layerSurface.SetExclusiveZone(0)
	m.surface.Commit()
	m.state = StateAwaitingInitialConfigure

	if err := m.conn.Roundtrip(ctx); err != nil {
		return fmt.Errorf("failed to configure layer surface: %w", err)
	}
	if !m.configured {
		m.logger.Debug("no configure received, using local size", "width", m.width, "height", m.height)
		return nil
	}
	if err := m.conn.Flush(); err != nil {
		return fmt.Errorf("failed to acknowledge configure: %w", err)
	}
	return nil
}

// Attach shows buf, which must be Size scaled by Scale.
func (m *Machine) Attach(buf *shm.Buffer) error {
	if m.state != StateAwaitingInitialConfigure {
		return fmt.Errorf("attach in state %s", m.state)
	}
	scale := m.Scale()
	if buf.Width != m.width*scale || buf.Height != m.height*scale {
		return fmt.Errorf("buffer is %dx%d, want %dx%d at scale %d",
			buf.Width, buf.Height, m.width*scale, m.height*scale, scale)
	}

	m.surface.SetBufferScale(int32(scale))

	region := m.compositor.CreateRegion()
	region.Add(0, 0, int32(m.width), int32(m.height))
	m.surface.SetInputRegion(region)
	region.Destroy()

	pool := m.shm.CreatePool(buf.Fd(), int32(buf.Size()))
	m.buffer = pool.CreateBuffer(0, int32(buf.Width), int32(buf.Height), int32(buf.Stride), wayland.ShmFormatARGB8888)
	pool.Destroy()

	m.surface.Attach(m.buffer, 0, 0)
	m.surface.DamageBuffer(0, 0, int32(buf.Width), int32(buf.Height))
	m.surface.Commit()
	m.state = StateCommitted

	if err := m.conn.Flush(); err != nil {
		return fmt.Errorf("failed to commit buffer: %w", err)
	}
	return nil
}

// SetMargins moves the popup by re-committing with new margins.
func (m *Machine) SetMargins(margins Margins) error {
	if m.layerSurface == nil || m.Done() {
		return nil
	}
	m.margins = margins
	m.layerSurface.SetMargin(margins.Top, margins.Right, margins.Bottom, margins.Left)
	m.surface.Commit()
	return m.conn.Flush()
}

// Finish moves the popup to Closing. The first reason wins.
func (m *Machine) Finish(r Reason) {
	if m.state >= StateClosing {
		return
	}
	m.logger.Debug("popup finishing", "reason", r, "state", m.state)
	m.state = StateClosing
	m.reason = r
}

// Close destroys every protocol object best-effort and moves to
// Terminated. The connection itself stays open.
func (m *Machine) Close() error {
	if m.state == StateTerminated {
		return nil
	}
	if m.state < StateClosing {
		m.state = StateClosing
	}

	if m.buffer != nil {
		m.buffer.Destroy()
	}
	if m.layerSurface != nil {
		m.layerSurface.Destroy()
	}
	if m.surface != nil {
		m.surface.Destroy()
	}
	if m.pointer != nil {
		m.pointer.Release()
	}
	if m.seat != nil {
		m.seat.Release()
	}
	for _, o := range m.outputs {
		o.proxy.Release()
	}
	if m.layerShell != nil {
		m.layerShell.Destroy()
	}
	m.state = StateTerminated
	return m.conn.Flush()
}

// HandleEvent applies one compositor event.
func (m *Machine) HandleEvent(ev wayland.Event) {
	switch e := ev.(type) {
	case wayland.Global:
		m.bind(e)

	case wayland.GlobalRemove:
		for id, o := range m.outputs {
			if o.name == e.Name {
				delete(m.outputs, id)
				if m.entered == id {
					m.entered = 0
				}
			}
		}

	case wayland.OutputScale:
		if o, ok := m.outputs[e.ObjectID]; ok {
			o.scale = max(e.Factor, 1)
		}

	case wayland.SurfaceEnter:
		m.entered = e.Output

	case wayland.SurfaceLeave:
		if m.entered == e.Output {
			m.entered = 0
		}

	case wayland.PreferredBufferScale:
		m.preferred = e.Factor

	case wayland.SeatCapabilities:
		hasPointer := e.Capabilities&wayland.SeatCapabilityPointer != 0
		switch {
		case hasPointer && m.pointer == nil:
			m.pointer = m.seat.GetPointer()
		case !hasPointer && m.pointer != nil:
			m.pointer.Release()
			m.pointer = nil
		}

	case wayland.PointerButton:
		if e.Pressed() {
			m.Finish(ReasonDismissed)
		}

	case wayland.LayerSurfaceConfigure:
		m.layerSurface.AckConfigure(e.Serial)
		m.configured = true
		if m.state == StateCommitted {
			// The attached buffer fixes the size.
			m.surface.Commit()
			break
		}
		if e.Width > 0 {
			m.width = int(e.Width)
		}
		if e.Height > 0 {
			m.height = int(e.Height)
		}

	case wayland.LayerSurfaceClosed:
		m.Finish(ReasonClosed)
	}
}

func (m *Machine) bind(g wayland.Global) {
	switch g.Interface {
	case wayland.InterfaceCompositor:
		m.advertised[g.Interface] = g.Version
		if g.Version >= compositorMinVersion && m.compositor == nil {
			m.compositor = m.registry.BindCompositor(g.Name, min(g.Version, compositorMaxVersion))
		}
	case wayland.InterfaceShm:
		m.advertised[g.Interface] = g.Version
		if m.shm == nil {
			m.shm = m.registry.BindShm(g.Name, shmVersion)
		}
	case wayland.InterfaceLayerShell:
		m.advertised[g.Interface] = g.Version
		if m.layerShell == nil {
			m.layerShell = m.registry.BindLayerShell(g.Name, min(g.Version, layerShellMaxVersion))
		}
	case wayland.InterfaceSeat:
		if m.seat == nil {
			m.seat = m.registry.BindSeat(g.Name, min(g.Version, seatMaxVersion))
		}
	case wayland.InterfaceOutput:
		if g.Version >= outputMinVersion {
			o := m.registry.BindOutput(g.Name, min(g.Version, outputMaxVersion))
			m.outputs[o.ID()] = &output{proxy: o, name: g.Name, scale: 1}
		}
	default:
		return
	}
	m.logger.Debug("bound global", "interface", g.Interface, "version", g.Version)
}
