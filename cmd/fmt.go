package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/blockmark/internal/block"
	"github.com/eykd/blockmark/internal/document"
)

// WriteIO reads and atomically rewrites document files.
type WriteIO interface {
	ReadIO
	WriteFileAtomic(ctx context.Context, path string, data []byte) error
}

// NewFmtCmd creates the fmt subcommand.
func NewFmtCmd(io WriteIO) *cobra.Command {
	var (
		canonical bool
		write     bool
	)

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Re-serialize a Markdown document",
		Long: "Parse a document and serialize it back. Recognized blocks keep their " +
			"source text unless --canonical is given, which regenerates every block " +
			"from its structure.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx := cmd.Context()

			data, err := io.ReadFile(ctx, path)
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}
			doc, err := document.Read(data)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", sanitizeText(path), err)
			}
			if canonical {
				doc.Blocks = block.DropSources(doc.Blocks)
			}
			out, err := doc.Bytes()
			if err != nil {
				return fmt.Errorf("serializing document: %w", err)
			}

			if !write {
				if _, err := cmd.OutOrStdout().Write(out); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
				return nil
			}
			if bytes.Equal(out, data) {
				return nil
			}
			if err := io.WriteFileAtomic(ctx, path, out); err != nil {
				return fmt.Errorf("writing document: %w", err)
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "Formatted "+sanitizeText(path)); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&canonical, "canonical", false, "Regenerate every block instead of reusing its source text")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")

	return cmd
}
