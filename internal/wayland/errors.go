package wayland

import (
	"errors"
	"fmt"
)

// ErrClosed is returned once the compositor has hung up or the connection
// was closed locally.
var ErrClosed = errors.New("wayland: connection closed")

// ProtocolError is a fatal wl_display.error sent by the compositor.
type ProtocolError struct {
	ObjectID  uint32
	Interface string
	Code      uint32
	Message   string
}

func (e *ProtocolError) Error() string {
	iface := e.Interface
	if iface == "" {
		iface = "unknown"
	}
	return fmt.Sprintf("wayland: protocol error on %s@%d (code %d): %s", iface, e.ObjectID, e.Code, e.Message)
}
