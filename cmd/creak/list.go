package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/creak/internal/adapter/output"
	"github.com/jmylchreest/creak/internal/core"
	"github.com/jmylchreest/creak/internal/ledger"
)

var listOpts struct {
	// Filter options
	position string
	name     string
	class    string
	filter   string
	search   string
	limit    int

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format   string
	template string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Inspect the shared notification stack",
}

var listActiveCmd = &cobra.Command{
	Use:   "active [id]",
	Short: "Print popups currently on screen",
	Long: `Print the popups currently registered in the shared stack. Entries whose
owner has exited or whose deadline has passed are pruned first.

Examples:
  # JSON array, the default
  creak list active

  # Human-readable table
  creak list active --format table

  # Popups named volume that disappear within five seconds
  creak list active --filter 'name=volume,expires<5s'

  # One entry by id
  creak list active 12 --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runListActive,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listActiveCmd)

	f := listActiveCmd.Flags()
	f.StringVar(&listOpts.position, "position", "", "Only entries at this position")
	f.StringVar(&listOpts.name, "name", "", "Only entries with this name")
	f.StringVar(&listOpts.class, "class", "", "Only entries with this class")
	f.StringVar(&listOpts.filter, "filter", "",
		"Filter expression, e.g. 'summary~battery,height>100'")
	f.StringVarP(&listOpts.search, "search", "s", "", "Search summary, name and class")
	f.IntVarP(&listOpts.limit, "limit", "n", 0, "Maximum number of entries (0=unlimited)")
	f.StringVar(&listOpts.sortBy, "sort", "id", "Sort by field (id, expires, position, height)")
	f.StringVar(&listOpts.sortOrder, "order", "asc", "Sort order (asc, desc)")
	f.StringVarP(&listOpts.format, "format", "f", "json",
		"Output format (json, yaml, table, plain, dmenu, ids)")
	f.StringVar(&listOpts.template, "template", "", "Go template for dmenu output")
}

func runListActive(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(listOpts.format)
	if err != nil {
		return err
	}
	expr, err := core.ParseFilter(listOpts.filter)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	entries, err := store.List()
	if err != nil {
		return err
	}
	logger.Debug("listed stack", "count", len(entries))

	if len(args) > 0 {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}
		e := core.LookupByID(entries, id)
		if e == nil {
			return fmt.Errorf("no active entry with id %d", id)
		}
		entries = []ledger.Entry{*e}
	}

	now := time.Now()
	entries = selectEntries(entries, expr, now)

	opts := output.DefaultFormatterOptions()
	opts.Template = listOpts.template
	opts.Now = now
	return output.NewFormatter(format, opts).Format(os.Stdout, entries)
}

// selectEntries applies the list filters, search, sort and limit.
func selectEntries(entries []ledger.Entry, expr *core.FilterExpr, now time.Time) []ledger.Entry {
	entries = core.Filter(entries, core.FilterOptions{
		Position: listOpts.position,
		Name:     listOpts.name,
		Class:    listOpts.class,
	})
	entries = core.FilterWithExpr(entries, expr, now)
	entries = core.Search(entries, listOpts.search)

	field, _ := core.ParseSortField(listOpts.sortBy)
	order, _ := core.ParseSortOrder(listOpts.sortOrder)
	core.Sort(entries, core.SortOptions{Field: field, Order: order})

	if listOpts.limit > 0 && len(entries) > listOpts.limit {
		entries = entries[:listOpts.limit]
	}
	return entries
}
