package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/eykd/blockmark/internal/block"
)

// htmlMarkdown is a shared goldmark instance with the GitHub Flavored
// Markdown extensions (tables, strikethrough, autolinks, task lists).
var htmlMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderHTML converts Markdown text to an HTML fragment. Unlike Parse it uses
// a full CommonMark parser, so it is a preview of how other tools will read
// the exported Markdown.
func RenderHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := htmlMarkdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return buf.String(), nil
}

// RenderBlocksHTML serializes blocks and renders the result as HTML.
func RenderBlocksHTML(blocks []block.Block) (string, error) {
	return RenderHTML(Serialize(blocks))
}
