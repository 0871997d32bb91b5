// Package markdown converts between Markdown text and block sequences.
//
// The parser recognizes a fixed, line-oriented subset of Markdown: fenced
// code, ATX headings, flat ordered/unordered/checklist lists, block quotes,
// thematic breaks and paragraphs. It never rejects input; anything it does
// not recognize becomes a paragraph.
package markdown

import (
	"regexp"
	"strings"

	"github.com/eykd/blockmark/internal/block"
)

const fenceMarker = "```"

var (
	headingRE   = regexp.MustCompile(`^(#+)\s+(.*)$`)
	checklistRE = regexp.MustCompile(`^[-*+]\s+\[([ xX])\]\s+(.*)$`)
	unorderedRE = regexp.MustCompile(`^[-*+]\s+(.*)$`)
	orderedRE   = regexp.MustCompile(`^\d+\.\s+(.*)$`)
	quoteRE     = regexp.MustCompile(`^>\s*`)
	dividerRE   = regexp.MustCompile(`^(?:-{3,}|\*{3,}|_{3,})$`)
)

// Option configures a Parse call.
type Option func(*options)

type options struct {
	ids block.IDGenerator
}

// WithIDs makes Parse draw block ids from gen instead of a fresh
// "block-N" sequence. Callers that merge parsed blocks into an existing
// document pass the document's generator to keep one id namespace.
func WithIDs(gen block.IDGenerator) Option {
	return func(o *options) {
		o.ids = gen
	}
}

// parser holds the local state of one Parse call.
type parser struct {
	ids    block.IDGenerator
	blocks []block.Block

	// pending list items, flushed into one list block
	items []block.Block

	inCode    bool
	fenceLine string
	code      []string
}

// Parse converts text into an ordered block sequence. Every block it emits,
// list items included, carries an id unique within the call and caches its
// source fragment so that Serialize reproduces it verbatim.
//
// A pending list is closed by a blank line, by any other non-list line, or
// by the end of input; a non-list line is then processed on its own.
func Parse(text string, opts ...Option) []block.Block {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = block.NewSequence("block")
	}

	p := &parser{ids: o.ids, blocks: make([]block.Block, 0)}
	for _, line := range strings.Split(text, "\n") {
		p.line(strings.TrimSuffix(line, "\r"))
	}
	if p.inCode {
		p.closeCode()
	}
	p.flushList()
	return p.blocks
}

func (p *parser) line(raw string) {
	trimmed := strings.TrimSpace(raw)

	if p.inCode {
		if strings.HasPrefix(trimmed, fenceMarker) {
			p.closeCode()
			return
		}
		p.code = append(p.code, raw)
		return
	}

	if strings.HasPrefix(trimmed, fenceMarker) {
		p.flushList()
		p.inCode = true
		p.fenceLine = trimmed
		p.code = nil
		return
	}

	if trimmed == "" {
		p.flushList()
		return
	}

	if item, ok := p.listItem(trimmed); ok {
		p.items = append(p.items, item)
		return
	}
	p.flushList()

	switch {
	case headingRE.MatchString(trimmed):
		m := headingRE.FindStringSubmatch(trimmed)
		p.emit(block.Block{
			Type:     block.TypeHeading,
			Content:  m[2],
			Level:    block.ClampLevel(len(m[1])),
			Markdown: block.Cached(trimmed),
		})
	case strings.HasPrefix(trimmed, ">"):
		p.emit(block.Block{
			Type:     block.TypeQuote,
			Content:  quoteRE.ReplaceAllString(trimmed, ""),
			Markdown: block.Cached(trimmed),
		})
	case dividerRE.MatchString(trimmed):
		p.emit(block.Block{
			Type:     block.TypeDivider,
			Markdown: block.Cached(trimmed),
		})
	default:
		p.emit(block.Block{
			Type:     block.TypeParagraph,
			Content:  trimmed,
			Styles:   DetectStyles(trimmed),
			Markdown: block.Cached(trimmed),
		})
	}
}

// listItem recognizes a checklist, unordered or ordered item line, checked
// in that order.
func (p *parser) listItem(trimmed string) (block.Block, bool) {
	item := block.Block{Type: block.TypeList, Markdown: block.Cached(trimmed)}
	if m := checklistRE.FindStringSubmatch(trimmed); m != nil {
		item.ListType = block.ListChecklist
		item.Checked = m[1] == "x" || m[1] == "X"
		item.Content = m[2]
	} else if m := unorderedRE.FindStringSubmatch(trimmed); m != nil {
		item.ListType = block.ListUnordered
		item.Content = m[1]
	} else if m := orderedRE.FindStringSubmatch(trimmed); m != nil {
		item.ListType = block.ListOrdered
		item.Content = m[1]
	} else {
		return block.Block{}, false
	}
	item.ID = p.ids.NewID()
	return item, true
}

// flushList closes the pending items into one list block typed after its
// first item. It is a no-op when nothing is pending.
func (p *parser) flushList() {
	if len(p.items) == 0 {
		return
	}
	lines := make([]string, len(p.items))
	for i, item := range p.items {
		lines[i], _ = item.Markdown.Text()
	}
	p.emit(block.Block{
		Type:     block.TypeList,
		ListType: p.items[0].ListType,
		Children: p.items,
		Markdown: block.Cached(strings.Join(lines, "\n")),
	})
	p.items = nil
}

// closeCode emits the captured lines as one code block. The cached source
// keeps the opening fence's info string.
func (p *parser) closeCode() {
	content := strings.Join(p.code, "\n")
	p.emit(block.Block{
		Type:     block.TypeCode,
		Content:  content,
		Markdown: block.Cached(p.fenceLine + "\n" + content + "\n" + fenceMarker),
	})
	p.inCode = false
	p.fenceLine = ""
	p.code = nil
}

func (p *parser) emit(b block.Block) {
	b.ID = p.ids.NewID()
	p.blocks = append(p.blocks, b)
}
