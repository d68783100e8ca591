package surface

import "fmt"

// MissingGlobalError reports a required compositor global that is absent
// or too old.
type MissingGlobalError struct {
	Interface  string
	MinVersion uint32
	Advertised uint32 // 0 when not advertised at all
}

func (e *MissingGlobalError) Error() string {
	if e.Advertised == 0 {
		return fmt.Sprintf("compositor does not support %s", e.Interface)
	}
	return fmt.Sprintf("compositor %s version %d is older than required %d", e.Interface, e.Advertised, e.MinVersion)
}
