package surface

// State is the lifecycle stage of a popup surface.
type State int

const (
	StateConnecting State = iota
	StateAwaitingInitialConfigure
	StateCommitted
	StateClosing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAwaitingInitialConfigure:
		return "awaiting-initial-configure"
	case StateCommitted:
		return "committed"
	case StateClosing:
		return "closing"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Reason is why a popup went away.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonTimeout
	ReasonSignal
	ReasonClosed
	ReasonDismissed
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonTimeout:
		return "timeout"
	case ReasonSignal:
		return "signal"
	case ReasonClosed:
		return "closed"
	case ReasonDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}
