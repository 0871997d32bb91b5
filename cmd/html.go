package cmd

import (
	"fmt"
	"html"

	"github.com/spf13/cobra"

	"github.com/eykd/blockmark/internal/document"
	"github.com/eykd/blockmark/internal/markdown"
)

// NewHTMLCmd creates the html subcommand.
func NewHTMLCmd(io ReadIO) *cobra.Command {
	var standalone bool

	cmd := &cobra.Command{
		Use:          "html <file>",
		Short:        "Render a Markdown document as HTML",
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

			body, err := markdown.RenderBlocksHTML(doc.Blocks)
			if err != nil {
				return fmt.Errorf("converting %s: %w", sanitizeText(path), err)
			}

			w := cmd.OutOrStdout()
			if !standalone {
				_, err = fmt.Fprint(w, body)
			} else {
				title := "Untitled"
				if doc.Frontmatter != nil && doc.Frontmatter.Title != "" {
					title = doc.Frontmatter.Title
				}
				_, err = fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
					html.EscapeString(title), body)
			}
			if err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&standalone, "standalone", false, "Wrap the output in a complete HTML page")

	return cmd
}
