package wayland_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/jmylchreest/creak/internal/wayland"
	"github.com/jmylchreest/creak/internal/wayland/wltest"
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSocketPath(t *testing.T) {
	t.Run("relative to runtime dir", func(t *testing.T) {
		t.Setenv("WAYLAND_DISPLAY", "wayland-1")
		t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
		path, err := wayland.SocketPath()
		require.NoError(t, err)
		assert.Equal(t, "/run/user/1000/wayland-1", path)
	})

	t.Run("default display", func(t *testing.T) {
		t.Setenv("WAYLAND_DISPLAY", "")
		t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
		path, err := wayland.SocketPath()
		require.NoError(t, err)
		assert.Equal(t, "/run/user/1000/wayland-0", path)
	})

	t.Run("absolute", func(t *testing.T) {
		t.Setenv("WAYLAND_DISPLAY", "/tmp/wl.sock")
		t.Setenv("XDG_RUNTIME_DIR", "")
		path, err := wayland.SocketPath()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/wl.sock", path)
	})

	t.Run("no runtime dir", func(t *testing.T) {
		t.Setenv("WAYLAND_DISPLAY", "wayland-0")
		t.Setenv("XDG_RUNTIME_DIR", "")
		_, err := wayland.SocketPath()
		assert.Error(t, err)
	})
}

func TestConn_RegistryRoundtrip(t *testing.T) {
	_, conn := wltest.New(t, wltest.Options{})

	var globals []wayland.Global
	conn.SetHandler(wayland.HandlerFunc(func(ev wayland.Event) {
		if g, ok := ev.(wayland.Global); ok {
			globals = append(globals, g)
		}
	}))

	reg := conn.Display().GetRegistry()
	require.NoError(t, conn.Roundtrip(testContext(t)))

	require.Len(t, globals, len(wltest.DefaultGlobals()))
	for _, g := range globals {
		assert.Equal(t, reg.ID(), g.Sender())
	}
	assert.Equal(t, wayland.InterfaceCompositor, globals[0].Interface)
	assert.Equal(t, uint32(5), globals[0].Version)
}

func TestConn_BindAndEvents(t *testing.T) {
	fake, conn := wltest.New(t, wltest.Options{OutputScale: 2, SeatCapabilities: wayland.SeatCapabilityPointer})

	var events []wayland.Event
	conn.SetHandler(wayland.HandlerFunc(func(ev wayland.Event) { events = append(events, ev) }))

	reg := conn.Display().GetRegistry()
	out := reg.BindOutput(5, 3)
	seat := reg.BindSeat(4, 7)
	require.NoError(t, conn.Roundtrip(testContext(t)))

	var scale, caps bool
	for _, ev := range events {
		switch e := ev.(type) {
		case wayland.OutputScale:
			scale = true
			assert.Equal(t, out.ID(), e.Sender())
			assert.Equal(t, int32(2), e.Factor)
		case wayland.SeatCapabilities:
			caps = true
			assert.Equal(t, seat.ID(), e.Sender())
		}
	}
	assert.True(t, scale, "output scale delivered")
	assert.True(t, caps, "seat capabilities delivered")

	st := fake.State()
	assert.Equal(t, uint32(3), st.Bound[wayland.InterfaceOutput])
	assert.Equal(t, uint32(7), st.Bound[wayland.InterfaceSeat])
}

func TestConn_PassesFileDescriptors(t *testing.T) {
	fake, conn := wltest.New(t, wltest.Options{})

	reg := conn.Display().GetRegistry()
	shm := reg.BindShm(2, 1)

	fd, err := unix.MemfdCreate("creak-test", unix.MFD_CLOEXEC)
	require.NoError(t, err)
	defer unix.Close(fd)
	require.NoError(t, unix.Ftruncate(fd, 64))

	pool := shm.CreatePool(fd, 64)
	buf := pool.CreateBuffer(0, 4, 4, 16, wayland.ShmFormatARGB8888)
	pool.Destroy()
	require.NoError(t, conn.Roundtrip(testContext(t)))

	st := fake.State()
	assert.Equal(t, 1, st.FDs)
	assert.Equal(t, [2]int32{4, 4}, st.BufferSize)
	assert.NotZero(t, buf.ID())
}

func TestConn_ProtocolError(t *testing.T) {
	fake, conn := wltest.New(t, wltest.Options{})

	reg := conn.Display().GetRegistry()
	require.NoError(t, conn.Roundtrip(testContext(t)))

	fake.SendError(reg.ID(), 3, "invalid bind")
	err := conn.Roundtrip(testContext(t))

	var pe *wayland.ProtocolError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, reg.ID(), pe.ObjectID)
	assert.Equal(t, wayland.InterfaceRegistry, pe.Interface)
	assert.Equal(t, uint32(3), pe.Code)
	assert.Equal(t, "invalid bind", pe.Message)

	// Sticky.
	assert.Equal(t, err, conn.Err())
}

func TestConn_PeerHangup(t *testing.T) {
	fake, conn := wltest.New(t, wltest.Options{})
	fake.Shutdown()

	_, err := conn.Wait(time.Second)
	if err == nil {
		err = conn.ReadEvents()
	}
	assert.ErrorIs(t, err, wayland.ErrClosed)
}

func TestConn_ReadWithoutDataIsNotAnError(t *testing.T) {
	_, conn := wltest.New(t, wltest.Options{})

	readable, err := conn.Wait(10 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, readable)
	assert.NoError(t, conn.ReadEvents())
	assert.NoError(t, conn.Dispatch())
}

func TestConn_RoundtripHonoursContext(t *testing.T) {
	_, conn := wltest.New(t, wltest.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, conn.Roundtrip(ctx), context.Canceled)
}
