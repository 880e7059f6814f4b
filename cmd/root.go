// Package cmd implements the CLI commands for texpipe using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/texpipe/core"
)

// Persistent flag variables.
var (
	flagEngine       string
	flagEngineConfig string
	flagMacros       string
	flagCache        string
	flagVerbose      bool
)

var (
	okMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓")
	failMark = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("✗")
	dimStyle = lipgloss.NewStyle().Faint(true)
)

var rootCmd = &cobra.Command{
	Use:   "texpipe",
	Short: "texpipe: typeset loosely written LaTeX exam questions",
	Long: `texpipe normalizes loosely formatted, LaTeX-like question text, works out
whether it is inline or display math, and typesets it. Questions the engine
cannot handle are shown as readable plain text instead.

Usage:
  texpipe render <source> [flags]
  texpipe preview <source>
  texpipe typeset <latex>
  texpipe sample`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagEngine, "engine", "", "Typesetting backend: canvas, startex or none (default from --engine-config, else canvas)")
	pf.StringVar(&flagEngineConfig, "engine-config", "", "JSON engine configuration file")
	pf.StringVar(&flagMacros, "macros", "", "File of \\newcommand / \\def macro definitions")
	pf.StringVar(&flagCache, "cache", "", "SQLite file for a persistent typeset cache (default: in-memory)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log engine activity to stderr")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", failMark, err)
		os.Exit(1)
	}
}
