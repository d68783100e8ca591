// Package wayland is a minimal Wayland client speaking the wire protocol
// directly over the compositor socket.
//
// It covers the core objects a layer-shell popup needs (display, registry,
// compositor, surface, region, shm, seat, pointer, output) plus
// zwlr_layer_shell_v1. Requests are buffered until Flush; incoming messages
// are decoded into typed Event values and delivered to a single
// EventHandler, so all protocol state stays on the caller's goroutine.
package wayland
