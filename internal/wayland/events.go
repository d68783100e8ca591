package wayland

// Event is a decoded compositor event.
type Event interface {
	// Sender returns the id of the object that emitted the event.
	Sender() uint32
}

// EventHandler receives every decoded event in wire order.
type EventHandler interface {
	HandleEvent(ev Event)
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ev Event)

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ev Event) { f(ev) }

// Source identifies the emitting object.
type Source struct {
	ObjectID uint32
}

// Sender implements Event.
func (s Source) Sender() uint32 { return s.ObjectID }

// Global is wl_registry.global.
type Global struct {
	Source
	Name      uint32
	Interface string
	Version   uint32
}

// GlobalRemove is wl_registry.global_remove.
type GlobalRemove struct {
	Source
	Name uint32
}

// CallbackDone is wl_callback.done.
type CallbackDone struct {
	Source
	Data uint32
}

// ShmFormat is wl_shm.format.
type ShmFormat struct {
	Source
	Format uint32
}

// BufferRelease is wl_buffer.release.
type BufferRelease struct {
	Source
}

// SurfaceEnter is wl_surface.enter.
type SurfaceEnter struct {
	Source
	Output uint32
}

// SurfaceLeave is wl_surface.leave.
type SurfaceLeave struct {
	Source
	Output uint32
}

// PreferredBufferScale is wl_surface.preferred_buffer_scale.
type PreferredBufferScale struct {
	Source
	Factor int32
}

// OutputScale is wl_output.scale.
type OutputScale struct {
	Source
	Factor int32
}

// SeatCapabilities is wl_seat.capabilities.
type SeatCapabilities struct {
	Source
	Capabilities uint32
}

// PointerButton is wl_pointer.button.
type PointerButton struct {
	Source
	Serial uint32
	Time   uint32
	Button uint32
	State  uint32
}

// Pressed reports whether the button went down.
func (e PointerButton) Pressed() bool { return e.State == PointerButtonPressed }

// LayerSurfaceConfigure is zwlr_layer_surface_v1.configure.
type LayerSurfaceConfigure struct {
	Source
	Serial uint32
	Width  uint32
	Height uint32
}

// LayerSurfaceClosed is zwlr_layer_surface_v1.closed.
type LayerSurfaceClosed struct {
	Source
}

// decodeEvent turns a message into a typed event. It returns nil for
// events this client does not act on.
func decodeEvent(iface string, h Header, d *Decoder) Event {
	src := Source{ObjectID: h.Object}
	switch iface {
	case InterfaceRegistry:
		switch h.Opcode {
		case 0:
			return Global{Source: src, Name: d.Uint(), Interface: d.String(), Version: d.Uint()}
		case 1:
			return GlobalRemove{Source: src, Name: d.Uint()}
		}
	case InterfaceCallback:
		if h.Opcode == 0 {
			return CallbackDone{Source: src, Data: d.Uint()}
		}
	case InterfaceShm:
		if h.Opcode == 0 {
			return ShmFormat{Source: src, Format: d.Uint()}
		}
	case InterfaceBuffer:
		if h.Opcode == 0 {
			return BufferRelease{Source: src}
		}
	case InterfaceSurface:
		switch h.Opcode {
		case 0:
			return SurfaceEnter{Source: src, Output: d.Uint()}
		case 1:
			return SurfaceLeave{Source: src, Output: d.Uint()}
		case 2:
			return PreferredBufferScale{Source: src, Factor: d.Int()}
		}
	case InterfaceOutput:
		if h.Opcode == 3 {
			return OutputScale{Source: src, Factor: d.Int()}
		}
	case InterfaceSeat:
		if h.Opcode == 0 {
			return SeatCapabilities{Source: src, Capabilities: d.Uint()}
		}
	case InterfacePointer:
		if h.Opcode == 3 {
			return PointerButton{Source: src, Serial: d.Uint(), Time: d.Uint(), Button: d.Uint(), State: d.Uint()}
		}
	case InterfaceLayerSurface:
		switch h.Opcode {
		case 0:
			return LayerSurfaceConfigure{Source: src, Serial: d.Uint(), Width: d.Uint(), Height: d.Uint()}
		case 1:
			return LayerSurfaceClosed{Source: src}
		}
	}
	return nil
}
