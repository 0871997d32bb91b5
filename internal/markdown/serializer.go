package markdown

import (
	"strconv"
	"strings"

	"github.com/eykd/blockmark/internal/block"
)

// blockSeparator sits between consecutive blocks in serialized output.
const blockSeparator = "\n\n"

// Serialize converts blocks back into Markdown. A block with a cached source
// is emitted verbatim; any other block is regenerated from its structured
// fields. Output produced from Derive blocks re-parses to the same types,
// contents, levels, list types and checked flags.
func Serialize(blocks []block.Block) string {
	return serialize(blocks, true)
}

// SerializeDerived is Serialize with every cached source ignored, yielding
// the canonical form of the document.
func SerializeDerived(blocks []block.Block) string {
	return serialize(blocks, false)
}

func serialize(blocks []block.Block, useCache bool) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = serializeBlock(b, useCache)
	}
	return strings.Join(parts, blockSeparator)
}

func serializeBlock(b block.Block, useCache bool) string {
	if useCache {
		if text, ok := b.Markdown.Text(); ok {
			return text
		}
	}

	switch b.Type {
	case block.TypeHeading:
		return strings.Repeat("#", block.ClampLevel(b.Level)) + " " + b.Content
	case block.TypeList:
		return serializeList(b)
	case block.TypeCode:
		return fenceMarker + "\n" + b.Content + "\n" + fenceMarker
	case block.TypeQuote:
		return "> " + b.Content
	case block.TypeDivider:
		return "---"
	default:
		return ApplyStyles(b.Content, b.Styles)
	}
}

// serializeList writes one line per item. Ordered items are renumbered from
// their position; the source numbering is not kept.
func serializeList(b block.Block) string {
	lines := make([]string, len(b.Children))
	for i, child := range b.Children {
		listType := child.ListType
		if listType == "" {
			listType = b.ListType
		}
		switch listType {
		case block.ListOrdered:
			lines[i] = strconv.Itoa(i+1) + ". " + child.Content
		case block.ListChecklist:
			box := "[ ]"
			if child.Checked {
				box = "[x]"
			}
			lines[i] = "- " + box + " " + child.Content
		default:
			lines[i] = "- " + child.Content
		}
	}
	return strings.Join(lines, "\n")
}
