package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/creak/internal/tui"
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Watch the shared notification stack live",
	Long: `Launch an interactive view of the popups currently on screen. The view
follows changes to the stack file as other creak processes come and go.

Key bindings:
  j/k, ↑/↓    Navigate list
  enter       View entry details
  x           Close the selected popup
  X           Close every popup with the same name or class
  c           Copy summary to clipboard
  C           Copy all entries as JSON
  /           Search
  r           Refresh
  ?           Show help
  q           Quit`,
	Args: cobra.NoArgs,
	RunE: runTop,
}

func init() {
	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	return tui.Run(store)
}
