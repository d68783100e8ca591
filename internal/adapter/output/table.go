package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/creak/internal/ledger"
)

// TableFormatter renders entries as a bordered table.
type TableFormatter struct {
	opts FormatterOptions
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(opts FormatterOptions) *TableFormatter {
	return &TableFormatter{opts: opts}
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Format writes entries as a table with one row per entry.
func (f *TableFormatter) Format(w io.Writer, entries []ledger.Entry) error {
	now := f.opts.now()

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "POSITION", "HEIGHT", "PID", "NAME", "CLASS", "CREATED", "EXPIRES", "SUMMARY").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, e := range entries {
		t.Row(
			strconv.FormatUint(e.ID, 10),
			e.Position,
			strconv.Itoa(e.Height),
			strconv.Itoa(e.PID),
			e.Name,
			e.Class,
			humanize.RelTime(millisTime(e.CreatedAt), now, "ago", "from now"),
			remaining(e, now),
			truncate(e.Summary, f.opts.SummaryLen),
		)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
