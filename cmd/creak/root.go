// Package main provides the CLI entrypoint for creak.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/creak/internal/ledger"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global options and state
var (
	globalOpts struct {
		verbose  bool
		stateDir string
	}
	logger *slog.Logger
)

// rootCmd shows a notification when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "creak [flags] <title> [body...]",
	Short: "Stacking notification popups for Wayland layer-shell compositors",
	Long: `creak shows a short-lived notification popup on a wlroots-style Wayland
compositor.

Concurrent creak processes coordinate through a shared stack file so their
popups line up instead of overlapping, and close up the gap when one goes
away. Extra arguments after the title are joined into a body line.

Examples:
  # Show a popup in the top-right corner for three seconds
  creak --top-right --timeout 3s "Build finished" "all tests passed"

  # Replace any earlier volume popup
  creak clear by name volume; creak --name volume "Volume 40%"

  # Inspect the shared stack
  creak list active --format table`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
	RunE: runShow,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging (also CREAK_DEBUG=1)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.stateDir, "state-dir", "",
		"Directory holding the shared stack (default: ~/.local/state/creak)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose || os.Getenv("CREAK_DEBUG") != "" {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// openStore opens the shared stack in --state-dir or the default location.
func openStore() (*ledger.Store, error) {
	dir := globalOpts.stateDir
	if dir == "" {
		var err error
		dir, err = ledger.StateDir()
		if err != nil {
			return nil, err
		}
	}
	return ledger.NewStore(dir, ledger.WithLogger(logger))
}
