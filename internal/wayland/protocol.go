package wayland

// Interface names.
const (
	InterfaceDisplay      = "wl_display"
	InterfaceRegistry     = "wl_registry"
	InterfaceCallback     = "wl_callback"
	InterfaceCompositor   = "wl_compositor"
	InterfaceSurface      = "wl_surface"
	InterfaceRegion       = "wl_region"
	InterfaceShm          = "wl_shm"
	InterfaceShmPool      = "wl_shm_pool"
	InterfaceBuffer       = "wl_buffer"
	InterfaceOutput       = "wl_output"
	InterfaceSeat         = "wl_seat"
	InterfacePointer      = "wl_pointer"
	InterfaceLayerShell   = "zwlr_layer_shell_v1"
	InterfaceLayerSurface = "zwlr_layer_surface_v1"
)

// Enum values used by this client.
const (
	ShmFormatARGB8888 uint32 = 0

	SeatCapabilityPointer uint32 = 1

	PointerButtonPressed uint32 = 1
)

type proxy struct {
	conn    *Conn
	id      uint32
	version uint32
}

// ID returns the object id.
func (p *proxy) ID() uint32 { return p.id }

// Version returns the bound interface version.
func (p *proxy) Version() uint32 { return p.version }

func (p *proxy) forget() { delete(p.conn.objects, p.id) }

// Display is wl_display.
type Display struct{ proxy }

// Sync requests a callback that fires after all prior requests.
func (d *Display) Sync() *Callback {
	id := d.conn.newID(InterfaceCallback)
	d.conn.request(d.id, 0, id)
	return &Callback{proxy{conn: d.conn, id: id, version: 1}}
}

// GetRegistry creates the global registry.
func (d *Display) GetRegistry() *Registry {
	id := d.conn.newID(InterfaceRegistry)
	d.conn.request(d.id, 1, id)
	return &Registry{proxy{conn: d.conn, id: id, version: 1}}
}

// Callback is wl_callback.
type Callback struct{ proxy }

// Registry is wl_registry.
type Registry struct{ proxy }

func (r *Registry) bind(name uint32, iface string, version uint32) proxy {
	id := r.conn.newID(iface)
	r.conn.request(r.id, 0, name, iface, version, id)
	return proxy{conn: r.conn, id: id, version: version}
}

// BindCompositor binds wl_compositor.
func (r *Registry) BindCompositor(name, version uint32) *Compositor {
	return &Compositor{r.bind(name, InterfaceCompositor, version)}
}

// BindShm binds wl_shm.
func (r *Registry) BindShm(name, version uint32) *Shm {
	return &Shm{r.bind(name, InterfaceShm, version)}
}

// BindOutput binds wl_output.
func (r *Registry) BindOutput(name, version uint32) *Output {
	return &Output{r.bind(name, InterfaceOutput, version)}
}

// BindSeat binds wl_seat.
func (r *Registry) BindSeat(name, version uint32) *Seat {
	return &Seat{r.bind(name, InterfaceSeat, version)}
}

// BindLayerShell binds zwlr_layer_shell_v1.
func (r *Registry) BindLayerShell(name, version uint32) *LayerShell {
	return &LayerShell{r.bind(name, InterfaceLayerShell, version)}
}

// Compositor is wl_compositor.
type Compositor struct{ proxy }

// CreateSurface creates a new surface.
func (c *Compositor) CreateSurface() *Surface {
	id := c.conn.newID(InterfaceSurface)
	c.conn.request(c.id, 0, id)
	return &Surface{proxy{conn: c.conn, id: id, version: c.version}}
}

// CreateRegion creates a new region.
func (c *Compositor) CreateRegion() *Region {
	id := c.conn.newID(InterfaceRegion)
	c.conn.request(c.id, 1, id)
	return &Region{proxy{conn: c.conn, id: id, version: c.version}}
}

// Surface is wl_surface.
type Surface struct{ proxy }

// Destroy destroys the surface.
func (s *Surface) Destroy() {
	s.conn.request(s.id, 0)
	s.forget()
}

// Attach sets the pending buffer. A nil buffer detaches.
func (s *Surface) Attach(b *Buffer, x, y int32) {
	var id uint32
	if b != nil {
		id = b.id
	}
	s.conn.request(s.id, 1, id, x, y)
}

// Damage marks a region in surface coordinates.
func (s *Surface) Damage(x, y, w, h int32) {
	s.conn.request(s.id, 2, x, y, w, h)
}

// SetInputRegion sets the pointer input region. A nil region accepts input
// everywhere.
func (s *Surface) SetInputRegion(r *Region) {
	var id uint32
	if r != nil {
		id = r.id
	}
	s.conn.request(s.id, 5, id)
}

// Commit applies the pending state.
func (s *Surface) Commit() {
	s.conn.request(s.id, 6)
}

// SetBufferScale sets the buffer scale (version 3+).
func (s *Surface) SetBufferScale(scale int32) {
	if s.version < 3 {
		return
	}
	s.conn.request(s.id, 8, scale)
}

// DamageBuffer marks a region in buffer coordinates, falling back to
// surface damage before version 4.
func (s *Surface) DamageBuffer(x, y, w, h int32) {
	if s.version < 4 {
		s.Damage(x, y, w, h)
		return
	}
	s.conn.request(s.id, 9, x, y, w, h)
}

// Region is wl_region.
type Region struct{ proxy }

// Destroy destroys the region.
func (r *Region) Destroy() {
	r.conn.request(r.id, 0)
	r.forget()
}

// Add adds a rectangle to the region.
func (r *Region) Add(x, y, w, h int32) {
	r.conn.request(r.id, 1, x, y, w, h)
}

// Shm is wl_shm.
type Shm struct{ proxy }

// CreatePool shares fd with the compositor as a pool of size bytes. The
// descriptor is sent on the next Flush and must stay open until then.
func (s *Shm) CreatePool(fd int, size int32) *ShmPool {
	id := s.conn.newID(InterfaceShmPool)
	s.conn.request(s.id, 0, id, FD(fd), size)
	return &ShmPool{proxy{conn: s.conn, id: id, version: s.version}}
}

// ShmPool is wl_shm_pool.
type ShmPool struct{ proxy }

// CreateBuffer creates a buffer from a slice of the pool.
func (p *ShmPool) CreateBuffer(offset, width, height, stride int32, format uint32) *Buffer {
	id := p.conn.newID(InterfaceBuffer)
	p.conn.request(p.id, 0, id, offset, width, height, stride, format)
	return &Buffer{proxy{conn: p.conn, id: id, version: 1}}
}

// Destroy destroys the pool. Buffers created from it stay valid.
func (p *ShmPool) Destroy() {
	p.conn.request(p.id, 1)
	p.forget()
}

// Buffer is wl_buffer.
type Buffer struct{ proxy }

// Destroy destroys the buffer.
func (b *Buffer) Destroy() {
	b.conn.request(b.id, 0)
	b.forget()
}

// Output is wl_output.
type Output struct{ proxy }

// Release releases the output (version 3+).
func (o *Output) Release() {
	if o.version >= 3 {
		o.conn.request(o.id, 0)
	}
	o.forget()
}

// Seat is wl_seat.
type Seat struct{ proxy }

// GetPointer creates the seat's pointer object.
func (s *Seat) GetPointer() *Pointer {
	id := s.conn.newID(InterfacePointer)
	s.conn.request(s.id, 0, id)
	return &Pointer{proxy{conn: s.conn, id: id, version: s.version}}
}

// Release releases the seat (version 5+).
func (s *Seat) Release() {
	if s.version >= 5 {
		s.conn.request(s.id, 3)
	}
	s.forget()
}

// Pointer is wl_pointer.
type Pointer struct{ proxy }

// Release releases the pointer (version 3+).
func (p *Pointer) Release() {
	if p.version >= 3 {
		p.conn.request(p.id, 1)
	}
	p.forget()
}
