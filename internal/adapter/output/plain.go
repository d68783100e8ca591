package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/creak/internal/ledger"
)

// PlainFormatter formats entries as plain text blocks.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes entries as plain text.
func (f *PlainFormatter) Format(w io.Writer, entries []ledger.Entry) error {
	for i, e := range entries {
		if err := f.formatEntry(w, i+1, e); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatEntry(w io.Writer, index int, e ledger.Entry) error {
	if f.template != nil {
		data := templateData{Index: index, Entry: e, Remaining: remaining(e, f.opts.now())}
		return f.template.Execute(w, data)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d] %s", e.ID, e.Position)
	if l := label(e); l != "" {
		fmt.Fprintf(&sb, " <%s>", l)
	}
	fmt.Fprintf(&sb, " pid=%d height=%d expires=%s\n", e.PID, e.Height, remaining(e, f.opts.now()))
	if e.Summary != "" {
		sb.WriteString("    " + truncate(e.Summary, f.opts.SummaryLen) + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
