// Package main implements the cosmos CLI: an interactive TUI agent that
// scans a repo, proposes grounded suggestions, and ships the applied fixes.
//
// Run without arguments to start the interactive workflow. Subcommands
// mirror the TUI's own verbs (scan, suggest, review, ship, reset) for
// scripted, non-interactive use.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cosmos/internal/config"
	"cosmos/internal/logging"
)

var (
	workspace string
	verbose   bool
	timeout   time.Duration

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cosmos",
	Short: "cosmos — an agentic repo-improvement assistant",
	Long: `cosmos scans a local source repo, discovers and verifies grounded
code-improvement suggestions via an agentic loop, and ships the applied
result through a normal git workflow.

Run without arguments to start the interactive TUI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws := workspace
		if ws == "" {
			var err error
			ws, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("determine workspace: %w", err)
			}
		} else if abs, err := filepath.Abs(ws); err == nil {
			ws = abs
		}
		workspace = ws

		loaded, err := config.Load(filepath.Join(ws, "cosmos.yaml"))
		if err != nil {
			loaded = config.DefaultConfig()
		}
		if verbose {
			loaded.Logging.DebugMode = true
		}
		cfg = loaded

		if err := logging.Initialize(verbose, logging.Config{
			DebugMode:  cfg.Logging.DebugMode,
			Categories: cfg.Logging.Categories,
			JSONFormat: cfg.Logging.JSONFormat,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context(), workspace, cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "repo root (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "operation timeout for non-interactive commands")

	rootCmd.AddCommand(scanCmd, suggestCmd, reviewCmd, shipCmd, resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
