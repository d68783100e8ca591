package wayland

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

const (
	displayID = 1

	readBufferSize = 4096
	maxFdsPerRecv  = 28
)

// SocketPath resolves the compositor socket from WAYLAND_DISPLAY, relative
// to XDG_RUNTIME_DIR unless absolute.
func SocketPath() (string, error) {
	name := os.Getenv("WAYLAND_DISPLAY")
	if name == "" {
		name = "wayland-0"
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return "", errors.New("wayland: XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(dir, name), nil
}

// Dial connects to the compositor. An inherited WAYLAND_SOCKET takes
// precedence over the socket path.
func Dial() (*Conn, error) {
	if s := os.Getenv("WAYLAND_SOCKET"); s != "" {
		fd, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("wayland: invalid WAYLAND_SOCKET %q: %w", s, err)
		}
		os.Unsetenv("WAYLAND_SOCKET")
		unix.CloseOnExec(fd)
		return NewConn(fd), nil
	}

	path, err := SocketPath()
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("wayland: socket: %w", err)
	}
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("wayland: connect %s: %w", path, err)
	}
	return NewConn(fd), nil
}

// Conn is a client connection. It is not safe for concurrent use.
type Conn struct {
	fd     int
	logger *slog.Logger

	out    []byte
	outFds []int
	in     []byte

	nextID  uint32
	objects map[uint32]string
	done    map[uint32]bool
	handler EventHandler

	display *Display
	err     error
}

// NewConn wraps a connected stream socket and takes ownership of fd.
func NewConn(fd int) *Conn {
	c := &Conn{
		fd:      fd,
		logger:  slog.Default(),
		nextID:  displayID + 1,
		objects: map[uint32]string{displayID: InterfaceDisplay},
		done:    make(map[uint32]bool),
	}
	c.display = &Display{proxy{conn: c, id: displayID, version: 1}}
	return c
}

// SetLogger sets the logger used for protocol diagnostics.
func (c *Conn) SetLogger(l *slog.Logger) { c.logger = l }

// SetHandler sets the receiver of decoded events.
func (c *Conn) SetHandler(h EventHandler) { c.handler = h }

// Display returns the wl_display singleton.
func (c *Conn) Display() *Display { return c.display }

// Fd returns the socket descriptor.
func (c *Conn) Fd() int { return c.fd }

// Err returns the sticky fatal error, if any.
func (c *Conn) Err() error { return c.err }

// Interface returns the interface name of a live object id.
func (c *Conn) Interface(id uint32) (string, bool) {
	iface, ok := c.objects[id]
	return iface, ok
}

func (c *Conn) fail(err error) error {
	if c.err == nil {
		c.err = err
	}
	return c.err
}

func (c *Conn) newID(iface string) uint32 {
	id := c.nextID
	c.nextID++
	c.objects[id] = iface
	return id
}

// request queues a message for the next Flush. Requests on a failed
// connection are dropped; the failure surfaces from Flush or Dispatch.
func (c *Conn) request(object uint32, opcode uint16, args ...any) {
	if c.err != nil {
		return
	}
	out, fds, err := AppendMessage(c.out, object, opcode, args...)
	if err != nil {
		c.fail(err)
		return
	}
	c.out = out
	c.outFds = append(c.outFds, fds...)
}

// Flush writes all queued requests. File descriptors ride with the first
// chunk written.
func (c *Conn) Flush() error {
	if c.err != nil {
		return c.err
	}
	for len(c.out) > 0 {
		var oob []byte
		if len(c.outFds) > 0 {
			oob = unix.UnixRights(c.outFds...)
		}
		n, err := unix.SendmsgN(c.fd, c.out, oob, nil, unix.MSG_NOSIGNAL)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, unix.EAGAIN) {
				if _, werr := c.poll(unix.POLLOUT, 10*time.Millisecond); werr != nil {
					return c.fail(werr)
				}
				continue
			}
			if errors.Is(err, unix.EPIPE) || errors.Is(err, unix.ECONNRESET) {
				return c.fail(ErrClosed)
			}
			return c.fail(fmt.Errorf("wayland: sendmsg: %w", err))
		}
		c.outFds = c.outFds[:0]
		c.out = c.out[n:]
	}
	c.out = c.out[:0]
	return nil
}

// Wait blocks until the socket is readable or timeout elapses.
func (c *Conn) Wait(timeout time.Duration) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.poll(unix.POLLIN, timeout)
}

func (c *Conn) poll(events int16, timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(c.fd), Events: events}}
	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, fmt.Errorf("wayland: poll: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
		return false, ErrClosed
	}
	return true, nil
}

// ReadEvents performs one non-blocking read into the input buffer. Having
// nothing to read is not an error.
func (c *Conn) ReadEvents() error {
	if c.err != nil {
		return c.err
	}

	buf := make([]byte, readBufferSize)
	oob := make([]byte, unix.CmsgSpace(maxFdsPerRecv*4))
	n, oobn, _, _, err := unix.Recvmsg(c.fd, buf, oob, unix.MSG_DONTWAIT|unix.MSG_CMSG_CLOEXEC)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return nil
		}
		if errors.Is(err, unix.ECONNRESET) {
			return c.fail(ErrClosed)
		}
		return c.fail(fmt.Errorf("wayland: recvmsg: %w", err))
	}
	if n == 0 {
		return c.fail(ErrClosed)
	}
	if oobn > 0 {
		c.discardFds(oob[:oobn])
	}
	c.in = append(c.in, buf[:n]...)
	return nil
}

// None of the events this client decodes carry file descriptors.
func (c *Conn) discardFds(oob []byte) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return
	}
	for _, m := range msgs {
		fds, err := unix.ParseUnixRights(&m)
		if err != nil {
			continue
		}
		for _, fd := range fds {
			unix.Close(fd)
		}
		c.logger.Debug("discarded unexpected file descriptors", "count", len(fds))
	}
}

// Dispatch decodes every complete buffered message and delivers it to the
// handler. wl_display events are consumed here.
func (c *Conn) Dispatch() error {
	for c.err == nil && len(c.in) >= headerSize {
		h, err := ReadHeader(c.in)
		if err != nil {
			return c.fail(err)
		}
		if int(h.Size) > len(c.in) {
			break
		}
		payload := c.in[headerSize:h.Size]
		c.dispatchOne(h, payload)
		c.in = c.in[h.Size:]
	}
	if len(c.in) == 0 {
		c.in = nil
	}
	return c.err
}

func (c *Conn) dispatchOne(h Header, payload []byte) {
	iface, ok := c.objects[h.Object]
	if !ok {
		// Events for objects destroyed locally may still be in flight.
		return
	}
	d := NewDecoder(payload)

	if iface == InterfaceDisplay {
		c.handleDisplayEvent(h, d)
		return
	}

	ev := decodeEvent(iface, h, d)
	if err := d.Err(); err != nil {
		c.fail(fmt.Errorf("wayland: decode %s event %d: %w", iface, h.Opcode, err))
		return
	}
	if ev == nil {
		return
	}
	if done, ok := ev.(CallbackDone); ok {
		c.done[done.ObjectID] = true
	}
	if c.handler != nil {
		c.handler.HandleEvent(ev)
	}
}

func (c *Conn) handleDisplayEvent(h Header, d *Decoder) {
	switch h.Opcode {
	case 0:
		pe := &ProtocolError{ObjectID: d.Uint(), Code: d.Uint(), Message: d.String()}
		pe.Interface = c.objects[pe.ObjectID]
		c.fail(pe)
	case 1:
		id := d.Uint()
		delete(c.objects, id)
	}
}

// Roundtrip flushes and blocks until the compositor has processed every
// request sent so far, dispatching events as they arrive.
func (c *Conn) Roundtrip(ctx context.Context) error {
	cb := c.display.Sync()
	defer delete(c.done, cb.id)

	if err := c.Flush(); err != nil {
		return err
	}
	for !c.done[cb.id] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := c.Wait(10 * time.Millisecond); err != nil {
			return c.fail(err)
		}
		if err := c.ReadEvents(); err != nil {
			return err
		}
		if err := c.Dispatch(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the socket. Pending requests are flushed best-effort.
func (c *Conn) Close() error {
	if c.fd < 0 {
		return nil
	}
	if c.err == nil {
		_ = c.Flush()
	}
	err := unix.Close(c.fd)
	c.fd = -1
	c.fail(ErrClosed)
	return err
}
