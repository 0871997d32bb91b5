package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eykd/blockmark/internal/block"
	"github.com/eykd/blockmark/internal/document"
)

// ReadIO reads document files.
type ReadIO interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// parseOutput is the output schema of the parse command.
type parseOutput struct {
	Version     string                `json:"version" yaml:"version"`
	Frontmatter *document.Frontmatter `json:"frontmatter,omitempty" yaml:"frontmatter,omitempty"`
	Blocks      []block.Block         `json:"blocks" yaml:"blocks"`
	Diagnostics []block.Diagnostic    `json:"diagnostics" yaml:"diagnostics"`
}

// NewParseCmd creates the parse subcommand.
func NewParseCmd(io ReadIO) *cobra.Command {
	var yamlMode bool

	cmd := &cobra.Command{
		Use:          "parse <file>",
		Short:        "Parse a Markdown document into blocks",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := io.ReadFile(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}

			doc, err := document.Read(data)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", sanitizeText(path), err)
			}

			diags := append(block.Validate(doc.Blocks), doc.Check()...)
			if diags == nil {
				diags = []block.Diagnostic{}
			}
			out := parseOutput{
				Version:     "1",
				Frontmatter: doc.Frontmatter,
				Blocks:      doc.Blocks,
				Diagnostics: diags,
			}

			if yamlMode {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(out); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
				if err := enc.Close(); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
			} else {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
			}

			if hasDiagnosticError(diags) {
				return fmt.Errorf("document has errors")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&yamlMode, "yaml", false, "Output YAML instead of JSON")

	return cmd
}
