package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/creak/internal/ledger"
)

// DmenuFormatter formats entries for dmenu/rofi/fuzzel, one per line with
// the id first so a picked line can be fed back to clear.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes entries in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, entries []ledger.Entry) error {
	for i, e := range entries {
		if _, err := fmt.Fprintln(w, f.formatLine(i+1, e)); err != nil {
			return err
		}
	}
	return nil
}

// formatLine formats a single entry line.
func (f *DmenuFormatter) formatLine(index int, e ledger.Entry) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, f.data(index, e)); err == nil {
			return buf.String()
		}
	}

	// Default format: id | position | remaining | label | summary
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}
	parts := []string{
		fmt.Sprintf("%d", e.ID),
		e.Position,
		remaining(e, f.opts.now()),
	}
	if l := label(e); l != "" {
		parts = append(parts, l)
	}
	parts = append(parts, singleLine(truncate(e.Summary, f.opts.SummaryLen)))
	return strings.Join(parts, sep)
}

// templateData provides data for custom templates.
type templateData struct {
	Index     int
	Entry     ledger.Entry
	Remaining string
}

func (f *DmenuFormatter) data(index int, e ledger.Entry) templateData {
	return templateData{Index: index, Entry: e, Remaining: remaining(e, f.opts.now())}
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"label":    label,
	}
}

// singleLine collapses whitespace runs, newlines included, to single spaces.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
