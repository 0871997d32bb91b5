// Package cmd implements the bmk CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/blockmark/internal/block"
)

// NewRootCmd creates the root bmk command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bmk",
		Short:         "bmk - block-structured Markdown toolkit",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          rootRunE,
	}
	root.PersistentFlags().String("config", "", "editor config file (default: ./bmk.yaml, then the user config dir)")

	fio := newDefaultFileIO()
	root.AddCommand(NewParseCmd(fio))
	root.AddCommand(NewFmtCmd(fio))
	root.AddCommand(NewHTMLCmd(fio))
	root.AddCommand(NewApplyCmd(fio))
	root.AddCommand(NewStoreCmd(newDefaultStoreIO()))
	root.AddCommand(NewWatchCmd(newDefaultWatchIO()))
	return root
}

func rootRunE(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}

// printDiagnostics writes each diagnostic to stderr in human-readable form.
func printDiagnostics(cmd *cobra.Command, diags []block.Diagnostic) {
	for _, d := range diags {
		if d.BlockID != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s (%s)\n", d.Severity, sanitizeText(d.BlockID), d.Message, d.Code)
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (%s)\n", d.Severity, d.Message, d.Code)
	}
}

func hasDiagnosticError(diags []block.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == block.SeverityError {
			return true
		}
	}
	return false
}
