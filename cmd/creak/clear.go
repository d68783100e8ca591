package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/creak/internal/ledger"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Close popups in the shared stack",
}

var clearByCmd = &cobra.Command{
	Use:   "by <name|class|id> <value>",
	Short: "Close matching popups and print how many were removed",
	Long: `Remove every matching entry from the shared stack and send SIGTERM to the
process that owns it, so its popup closes and the stack closes up.

Examples:
  creak clear by name volume
  creak clear by class media
  creak clear by id 12`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(ledger.FieldName), string(ledger.FieldClass), string(ledger.FieldID)},
	RunE:      runClearBy,
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.AddCommand(clearByCmd)
}

func runClearBy(cmd *cobra.Command, args []string) error {
	sel, err := ledger.ParseSelector(args[0], args[1])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	n, err := store.Clear(sel)
	if err != nil {
		return err
	}
	logger.Debug("cleared stack entries", "selector", sel, "count", n)
	fmt.Fprintln(cmd.OutOrStdout(), n)
	return nil
}
