// Package wltest provides a scripted in-process compositor for exercising
// Wayland clients over a socketpair.
package wltest

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/jmylchreest/creak/internal/wayland"
)

// Global advertised by the fake compositor.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// DefaultGlobals advertises everything a layer-shell client binds.
func DefaultGlobals() []Global {
	return []Global{
		{Name: 1, Interface: wayland.InterfaceCompositor, Version: 5},
		{Name: 2, Interface: wayland.InterfaceShm, Version: 1},
		{Name: 3, Interface: wayland.InterfaceLayerShell, Version: 4},
		{Name: 4, Interface: wayland.InterfaceSeat, Version: 7},
		{Name: 5, Interface: wayland.InterfaceOutput, Version: 4},
	}
}

// Options script the compositor's behaviour.
type Options struct {
	Globals []Global
	// OutputScale is sent for every bound wl_output; 0 sends nothing.
	OutputScale int32
	// ConfigureSize picks the size proposed on the initial commit from the
	// size requested with set_size. Nil echoes the request.
	ConfigureSize func(requested [2]uint32) (width, height uint32)
	// NoConfigure suppresses the initial configure event.
	NoConfigure bool
	// SeatCapabilities is sent when wl_seat is bound.
	SeatCapabilities uint32
}

// State is a snapshot of what the client asked for.
type State struct {
	Bound          map[string]uint32 // interface -> bound version
	Requests       []string          // "interface.opcode" in arrival order
	Namespace      string
	Layer          uint32
	Anchor         uint32
	Margin         [4]int32 // top, right, bottom, left
	Size           [2]uint32
	AckedSerial    uint32
	ConfigureSent  uint32
	BufferScale    int32
	AttachedBuffer uint32
	BufferSize     [2]int32
	InputRegion    [4]int32
	KeyboardMode   uint32
	ExclusiveZone  int32
	Commits        int
	FDs            int
	LayerSurface   uint32
	Surface        uint32
	Pointer        uint32
}

// Compositor is a fake compositor serving one client.
type Compositor struct {
	t    testing.TB
	fd   int
	opts Options

	mu      sync.Mutex
	objects map[uint32]string
	state   State
	serial  uint32
	done    chan struct{}
}

// New starts a compositor and returns it with the connected client.
// Everything is torn down when the test ends.
func New(t testing.TB, opts Options) (*Compositor, *wayland.Conn) {
	t.Helper()
	if opts.Globals == nil {
		opts.Globals = DefaultGlobals()
	}

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}

	c := &Compositor{
		t:       t,
		fd:      fds[1],
		opts:    opts,
		objects: map[uint32]string{1: wayland.InterfaceDisplay},
		state:   State{Bound: map[string]uint32{}},
		serial:  100,
		done:    make(chan struct{}),
	}
	go c.serve()

	client := wayland.NewConn(fds[0])
	t.Cleanup(func() {
		client.Close()
		c.Shutdown()
	})
	return c, client
}

// Shutdown hangs up on the client and waits for the serve loop to exit.
func (c *Compositor) Shutdown() {
	c.mu.Lock()
	fd := c.fd
	c.mu.Unlock()
	if fd < 0 {
		<-c.done
		return
	}
	_ = unix.Shutdown(fd, unix.SHUT_RDWR)
	<-c.done

	c.mu.Lock()
	unix.Close(c.fd)
	c.fd = -1
	c.mu.Unlock()
}

// State returns a copy of the recorded client state.
func (c *Compositor) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Bound = make(map[string]uint32, len(c.state.Bound))
	for k, v := range c.state.Bound {
		s.Bound[k] = v
	}
	s.Requests = append([]string(nil), c.state.Requests...)
	return s
}

// SendConfigure sends a configure to the layer surface.
func (c *Compositor) SendConfigure(width, height uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendConfigureLocked(width, height)
}

// SendClosed tells the client its layer surface was closed.
func (c *Compositor) SendClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.send(c.state.LayerSurface, 1)
}

// SendButton sends a pointer button event.
func (c *Compositor) SendButton(button, state uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serial++
	c.send(c.state.Pointer, 3, c.serial, uint32(0), button, state)
}

// SendError sends a fatal wl_display.error.
func (c *Compositor) SendError(object, code uint32, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.send(1, 0, object, code, msg)
}

func (c *Compositor) sendConfigureLocked(width, height uint32) {
	c.serial++
	c.state.ConfigureSent = c.serial
	c.send(c.state.LayerSurface, 0, c.serial, width, height)
}

// send must be called with mu held.
func (c *Compositor) send(object uint32, opcode uint16, args ...any) {
	if c.fd < 0 || object == 0 {
		return
	}
	msg, _, err := wayland.AppendMessage(nil, object, opcode, args...)
	if err != nil {
		c.t.Errorf("wltest: encode event: %v", err)
		return
	}
	for len(msg) > 0 {
		n, err := unix.Write(c.fd, msg)
		if err != nil {
			return
		}
		msg = msg[n:]
	}
}

func (c *Compositor) serve() {
	defer close(c.done)

	var (
		in      []byte
		pending []int
	)
	buf := make([]byte, 4096)
	oob := make([]byte, unix.CmsgSpace(28*4))
	for {
		n, oobn, _, _, err := unix.Recvmsg(c.fd, buf, oob, 0)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			break
		}
		if n == 0 {
			break
		}
		pending = append(pending, parseRights(oob[:oobn])...)
		in = append(in, buf[:n]...)

		for len(in) >= 8 {
			h, err := wayland.ReadHeader(in)
			if err != nil {
				c.t.Errorf("wltest: %v", err)
				return
			}
			if int(h.Size) > len(in) {
				break
			}
			pending = c.handle(h, wayland.NewDecoder(in[8:h.Size]), pending)
			in = in[h.Size:]
		}
	}
	for _, fd := range pending {
		unix.Close(fd)
	}
}

func parseRights(oob []byte) []int {
	if len(oob) == 0 {
		return nil
	}
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil
	}
	var fds []int
	for _, m := range msgs {
		got, err := unix.ParseUnixRights(&m)
		if err == nil {
			fds = append(fds, got...)
		}
	}
	return fds
}

// handle processes one request and returns the unconsumed descriptors.
func (c *Compositor) handle(h wayland.Header, d *wayland.Decoder, fds []int) []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	iface := c.objects[h.Object]
	c.state.Requests = append(c.state.Requests, fmt.Sprintf("%s.%d", iface, h.Opcode))

	switch iface {
	case wayland.InterfaceDisplay:
		switch h.Opcode {
		case 0: // sync
			cb := d.Uint()
			c.serial++
			c.objects[cb] = wayland.InterfaceCallback
			c.send(cb, 0, c.serial)
			delete(c.objects, cb)
			c.send(1, 1, cb)
		case 1: // get_registry
			reg := d.Uint()
			c.objects[reg] = wayland.InterfaceRegistry
			for _, g := range c.opts.Globals {
				c.send(reg, 0, g.Name, g.Interface, g.Version)
			}
		}

	case wayland.InterfaceRegistry:
		d.Uint() // name
		want := d.String()
		version := d.Uint()
		id := d.Uint()
		c.objects[id] = want
		c.state.Bound[want] = version
		switch want {
		case wayland.InterfaceOutput:
			if c.opts.OutputScale != 0 {
				c.send(id, 3, c.opts.OutputScale)
			}
		case wayland.InterfaceSeat:
			c.send(id, 0, c.opts.SeatCapabilities)
		}

	case wayland.InterfaceCompositor:
		id := d.Uint()
		if h.Opcode == 0 {
			c.objects[id] = wayland.InterfaceSurface
			c.state.Surface = id
		} else {
			c.objects[id] = wayland.InterfaceRegion
		}

	case wayland.InterfaceRegion:
		if h.Opcode == 1 {
			c.state.InputRegion = [4]int32{d.Int(), d.Int(), d.Int(), d.Int()}
		}

	case wayland.InterfaceShm:
		id := d.Uint()
		c.objects[id] = wayland.InterfaceShmPool
		if len(fds) > 0 {
			unix.Close(fds[0])
			fds = fds[1:]
			c.state.FDs++
		}

	case wayland.InterfaceShmPool:
		if h.Opcode == 0 {
			id := d.Uint()
			d.Int() // offset
			w, hgt := d.Int(), d.Int()
			c.objects[id] = wayland.InterfaceBuffer
			c.state.BufferSize = [2]int32{w, hgt}
		}

	case wayland.InterfaceSeat:
		if h.Opcode == 0 {
			id := d.Uint()
			c.objects[id] = wayland.InterfacePointer
			c.state.Pointer = id
		}

	case wayland.InterfaceLayerShell:
		if h.Opcode == 0 {
			id := d.Uint()
			d.Uint() // surface
			d.Uint() // output
			c.state.Layer = d.Uint()
			c.state.Namespace = d.String()
			c.objects[id] = wayland.InterfaceLayerSurface
			c.state.LayerSurface = id
		}

	case wayland.InterfaceLayerSurface:
		switch h.Opcode {
		case 0:
			c.state.Size = [2]uint32{d.Uint(), d.Uint()}
		case 1:
			c.state.Anchor = d.Uint()
		case 2:
			c.state.ExclusiveZone = d.Int()
		case 3:
			c.state.Margin = [4]int32{d.Int(), d.Int(), d.Int(), d.Int()}
		case 4:
			c.state.KeyboardMode = d.Uint()
		case 6:
			c.state.AckedSerial = d.Uint()
		}

	case wayland.InterfaceSurface:
		switch h.Opcode {
		case 1:
			c.state.AttachedBuffer = d.Uint()
		case 6:
			c.state.Commits++
			if c.state.Commits == 1 && c.state.LayerSurface != 0 && !c.opts.NoConfigure {
				w, hgt := c.state.Size[0], c.state.Size[1]
				if c.opts.ConfigureSize != nil {
					w, hgt = c.opts.ConfigureSize(c.state.Size)
				}
				c.sendConfigureLocked(w, hgt)
			}
		case 8:
			c.state.BufferScale = d.Int()
		}
	}
	return fds
}
