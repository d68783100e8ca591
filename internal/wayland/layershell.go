package wayland

// Layer is a zwlr_layer_shell_v1 layer.
type Layer uint32

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

// Anchor is a bitmask of zwlr_layer_surface_v1 edges.
type Anchor uint32

const (
	AnchorTop    Anchor = 1
	AnchorBottom Anchor = 2
	AnchorLeft   Anchor = 4
	AnchorRight  Anchor = 8
)

// Has reports whether all edges in e are set.
func (a Anchor) Has(e Anchor) bool { return a&e == e }

// Keyboard interactivity modes.
const (
	KeyboardInteractivityNone      uint32 = 0
	KeyboardInteractivityExclusive uint32 = 1
	KeyboardInteractivityOnDemand  uint32 = 2
)

// LayerShell is zwlr_layer_shell_v1.
type LayerShell struct{ proxy }

// GetLayerSurface assigns the layer role to surface. A nil output lets the
// compositor choose.
func (l *LayerShell) GetLayerSurface(surface *Surface, output *Output, layer Layer, namespace string) *LayerSurface {
	var outID uint32
	if output != nil {
		outID = output.id
	}
	id := l.conn.newID(InterfaceLayerSurface)
	l.conn.request(l.id, 0, id, surface.id, outID, uint32(layer), namespace)
	return &LayerSurface{proxy{conn: l.conn, id: id, version: l.version}}
}

// Destroy destroys the layer shell (version 3+).
func (l *LayerShell) Destroy() {
	if l.version >= 3 {
		l.conn.request(l.id, 1)
	}
	l.forget()
}

// LayerSurface is zwlr_layer_surface_v1.
type LayerSurface struct{ proxy }

// SetSize sets the requested size; 0 on an axis lets the compositor decide.
func (s *LayerSurface) SetSize(width, height uint32) {
	s.conn.request(s.id, 0, width, height)
}

// SetAnchor sets the anchored edges.
func (s *LayerSurface) SetAnchor(a Anchor) {
	s.conn.request(s.id, 1, uint32(a))
}

// SetExclusiveZone sets the exclusive zone.
func (s *LayerSurface) SetExclusiveZone(zone int32) {
	s.conn.request(s.id, 2, zone)
}

// SetMargin sets the distance from anchored edges.
func (s *LayerSurface) SetMargin(top, right, bottom, left int32) {
	s.conn.request(s.id, 3, top, right, bottom, left)
}

// SetKeyboardInteractivity sets keyboard focus behaviour.
func (s *LayerSurface) SetKeyboardInteractivity(mode uint32) {
	s.conn.request(s.id, 4, mode)
}

// AckConfigure acknowledges a configure event.
func (s *LayerSurface) AckConfigure(serial uint32) {
	s.conn.request(s.id, 6, serial)
}

// Destroy destroys the layer surface.
func (s *LayerSurface) Destroy() {
	s.conn.request(s.id, 7)
	s.forget()
}
