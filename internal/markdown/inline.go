package markdown

import (
	"strings"

	"github.com/eykd/blockmark/internal/block"
)

// inlineRule pairs a style flag with the markers that signal it in source
// text and the marker used to re-apply it.
type inlineRule struct {
	detect []string
	wrap   string
	set    func(*block.Style)
	isSet  func(block.Style) bool
}

// inlineRules is ordered: detection scans every rule, and ApplyStyles wraps
// in this order, so bold ends up innermost and highlight outermost.
//
// Detection is substring presence over the whole line. A "**" line therefore
// also matches the italic rule's "*"; that overlap is kept as-is.
var inlineRules = []inlineRule{
	{
		detect: []string{"**", "__"},
		wrap:   "**",
		set:    func(s *block.Style) { s.Bold = true },
		isSet:  func(s block.Style) bool { return s.Bold },
	},
	{
		detect: []string{"*", "_"},
		wrap:   "*",
		set:    func(s *block.Style) { s.Italic = true },
		isSet:  func(s block.Style) bool { return s.Italic },
	},
	{
		detect: []string{"~~"},
		wrap:   "~~",
		set:    func(s *block.Style) { s.Strikethrough = true },
		isSet:  func(s block.Style) bool { return s.Strikethrough },
	},
	{
		detect: []string{"`"},
		wrap:   "`",
		set:    func(s *block.Style) { s.Code = true },
		isSet:  func(s block.Style) bool { return s.Code },
	},
	{
		detect: []string{"=="},
		wrap:   "==",
		set:    func(s *block.Style) { s.Highlight = true },
		isSet:  func(s block.Style) bool { return s.Highlight },
	},
}

// DetectStyles reports which emphasis markers occur anywhere in line. It does
// not strip markers from the text.
func DetectStyles(line string) block.Style {
	var s block.Style
	for _, r := range inlineRules {
		for _, m := range r.detect {
			if strings.Contains(line, m) {
				r.set(&s)
				break
			}
		}
	}
	return s
}

// ApplyStyles wraps text in the markers of every set emphasis flag. Each
// wrap encloses the whole string built so far. Non-emphasis attributes
// (underline, colors, fonts) have no Markdown form and are ignored.
func ApplyStyles(text string, s block.Style) string {
	for _, r := range inlineRules {
		if r.isSet(s) {
			text = r.wrap + text + r.wrap
		}
	}
	return text
}
