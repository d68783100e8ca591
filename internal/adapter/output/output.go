// Package output provides output formatters for ledger entries.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/jmylchreest/creak/internal/ledger"
)

// Formatter formats entries for output.
type Formatter interface {
	// Format writes formatted entries to the writer.
	Format(w io.Writer, entries []ledger.Entry) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatTable FormatType = "table"
	FormatPlain FormatType = "plain"
	FormatDmenu FormatType = "dmenu"
	FormatIDs   FormatType = "ids"
)

// ValidFormats returns all format names.
func ValidFormats() []FormatType {
	return []FormatType{FormatJSON, FormatYAML, FormatTable, FormatPlain, FormatDmenu, FormatIDs}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (FormatType, error) {
	for _, f := range ValidFormats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q, must be one of: %v", s, ValidFormats())
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatYAML:
		return NewYAMLFormatter()
	case FormatTable:
		return NewTableFormatter(opts)
	case FormatPlain:
		return NewPlainFormatter(opts)
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter()
	case FormatJSON:
		fallthrough
	default:
		return NewJSONFormatter()
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string    // Custom template for dmenu/plain format
	Separator  string    // Field separator for dmenu format
	SummaryLen int       // Maximum summary length (0 = unlimited)
	Now        time.Time // Reference for relative times, zero = time.Now()
}

// DefaultFormatterOptions returns sensible defaults.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		Separator:  " | ",
		SummaryLen: 60,
	}
}

func (o FormatterOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// millisTime converts epoch milliseconds to a time.
func millisTime(ms uint64) time.Time {
	return time.UnixMilli(int64(ms))
}

// remaining returns a compact time-to-expiry such as "4s" or "2m", or
// "never" for entries without a deadline.
func remaining(e ledger.Entry, now time.Time) string {
	if e.ExpiresAt == 0 {
		return "never"
	}
	d := millisTime(e.ExpiresAt).Sub(now)
	switch {
	case d <= 0:
		return "expired"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()+0.5))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

// truncate shortens s to maxLen bytes with an ellipsis, never splitting a
// UTF-8 sequence.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return cut(s, maxLen)
	}
	return cut(s, maxLen-3) + "..."
}

func cut(s string, n int) string {
	for n > 0 && n < len(s) && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}

// label returns the entry's name, falling back to its class.
func label(e ledger.Entry) string {
	if e.Name != "" {
		return e.Name
	}
	return e.Class
}
