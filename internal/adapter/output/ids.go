package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/creak/internal/ledger"
)

// IDsFormatter outputs just the entry ids, one per line.
// Useful for piping to other commands (e.g., xargs -n1 creak clear by id).
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes entry ids to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, entries []ledger.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.ID); err != nil {
			return err
		}
	}
	return nil
}
