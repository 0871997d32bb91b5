// Package editor owns a live block sequence and the editing state machine
// that turns structural intents into new, consistent sequences.
//
// An Engine is single-threaded: every operation runs to completion before
// the next, and change notifications are delivered synchronously within the
// operation that caused them. It is not safe for concurrent use.
package editor

import (
	"unicode/utf8"

	"github.com/eykd/blockmark/internal/block"
	"github.com/eykd/blockmark/internal/markdown"
)

// Direction is the way MoveBlock shifts a block.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Selection names the selected top-level block and the caret range within
// its content, in runes. A zero Selection means nothing is selected.
type Selection struct {
	BlockID string `json:"blockId"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Change is delivered to listeners after each mutating operation.
type Change struct {
	Blocks    []block.Block
	Revision  uint64
	Selection Selection
	Editing   bool
}

// Listener observes changes. It must not call back into the engine.
type Listener func(Change)

type subscription struct {
	id int
	fn Listener
}

// Engine holds a document and its selection/edit-mode state.
type Engine struct {
	blocks []block.Block
	ids    block.IDGenerator
	cfg    Config

	readOnly  bool
	selection Selection
	editing   bool
	revision  uint64

	listeners []subscription
	nextSub   int
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithIDGenerator sets the source of new block ids. The default issues
// UUIDv7-based ids.
func WithIDGenerator(gen block.IDGenerator) Option {
	return func(e *Engine) {
		e.ids = gen
	}
}

// WithReadOnly forces a read-only engine regardless of cfg.Editable.
func WithReadOnly(readOnly bool) Option {
	return func(e *Engine) {
		e.readOnly = e.readOnly || readOnly
	}
}

// New creates an engine over a copy of initial. Blocks with missing or
// duplicate ids are given fresh ones. An editable engine never starts empty.
// Start from DefaultConfig: the zero Config is read-only.
func New(initial []block.Block, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		ids:      block.NewUUIDGenerator(),
		cfg:      cfg,
		readOnly: !cfg.Editable,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.blocks = e.ingest(initial)
	if !e.ensureNonEmpty() && cfg.AutoFocus && !e.readOnly && len(e.blocks) > 0 {
		e.selection = e.caretAtEnd(e.blocks[0])
		e.editing = true
	}
	return e
}

// Subscribe registers l for change notifications and returns a function
// that removes it. Listeners run in subscription order, after
// Config.OnChange. Operations that change nothing are silent: removing an
// absent id or moving a block past either edge neither notifies nor bumps
// the revision.
func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	e.nextSub++
	id := e.nextSub
	e.listeners = append(e.listeners, subscription{id: id, fn: l})
	return func() {
		for i, s := range e.listeners {
			if s.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Blocks returns a deep copy of the current sequence.
func (e *Engine) Blocks() []block.Block {
	return block.CloneAll(e.blocks)
}

// Block returns a copy of the top-level block with the given id.
func (e *Engine) Block(id string) (block.Block, bool) {
	i := e.index(id)
	if i < 0 {
		return block.Block{}, false
	}
	return e.blocks[i].Clone(), true
}

// Len returns the number of top-level blocks.
func (e *Engine) Len() int {
	return len(e.blocks)
}

// Selection returns the current selection and whether one exists.
func (e *Engine) Selection() (Selection, bool) {
	return e.selection, e.selection.BlockID != ""
}

// IsEditing reports whether the selected block is in edit mode.
func (e *Engine) IsEditing() bool {
	return e.editing
}

// Revision counts completed mutating operations.
func (e *Engine) Revision() uint64 {
	return e.revision
}

// ReadOnly reports whether structural commands are ignored.
func (e *Engine) ReadOnly() bool {
	return e.readOnly
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetReadOnly switches read-only mode. Entering it leaves edit mode; leaving
// it restores the never-empty invariant.
func (e *Engine) SetReadOnly(readOnly bool) {
	e.readOnly = readOnly
	if readOnly {
		e.applySelection(e.selection, false)
		return
	}
	if len(e.blocks) == 0 {
		e.commit()
	}
}

// AddBlock inserts a copy of b with a fresh id right after the block afterID,
// or at the end when afterID is empty or unknown. It returns the new id.
func (e *Engine) AddBlock(b block.Block, afterID string) string {
	nb := e.fresh(b)
	at := len(e.blocks)
	if i := e.index(afterID); afterID != "" && i >= 0 {
		at = i + 1
	}
	e.insert(at, nb)
	e.commit()
	return nb.ID
}

// RemoveBlock deletes the top-level block id. Unknown ids are ignored.
func (e *Engine) RemoveBlock(id string) {
	i := e.index(id)
	if i < 0 {
		return
	}
	e.blocks = append(e.blocks[:i], e.blocks[i+1:]...)
	if e.selection.BlockID == id {
		e.applySelection(Selection{}, false)
	}
	e.commit()
}

// UpdateBlock merges p into the block id. Unknown ids and empty patches are
// ignored. Structured changes drop the block's cached Markdown unless p sets
// Markdown explicitly.
func (e *Engine) UpdateBlock(id string, p block.Patch) {
	i := e.index(id)
	if i < 0 || p.IsEmpty() {
		return
	}
	updated := p.Apply(e.blocks[i])
	if p.Children != nil {
		e.assignChildIDs(&updated, e.usedIDs(i))
	}
	e.blocks[i] = updated
	e.commit()
}

// MoveBlock swaps the block id with its neighbour in dir. Moving past either
// end of the sequence is a no-op.
func (e *Engine) MoveBlock(id string, dir Direction) {
	i := e.index(id)
	if i < 0 {
		return
	}
	j := i + 1
	if dir == Up {
		j = i - 1
	}
	if j < 0 || j >= len(e.blocks) {
		return
	}
	e.blocks[i], e.blocks[j] = e.blocks[j], e.blocks[i]
	e.commit()
}

// SetBlocks replaces the whole sequence with a copy of blocks.
func (e *Engine) SetBlocks(blocks []block.Block) {
	e.blocks = e.ingest(blocks)
	if e.selection.BlockID != "" && e.index(e.selection.BlockID) < 0 {
		e.applySelection(Selection{}, false)
	}
	e.commit()
}

// ImportMarkdown replaces the sequence with the blocks parsed from text.
func (e *Engine) ImportMarkdown(text string) {
	e.SetBlocks(markdown.Parse(text, markdown.WithIDs(e.ids)))
}

// ExportMarkdown serializes the current sequence.
func (e *Engine) ExportMarkdown() string {
	return markdown.Serialize(e.blocks)
}

// Select selects the block id and enters edit mode, as a click would.
// It is ignored in read-only mode and for unknown ids.
func (e *Engine) Select(id string) {
	if e.readOnly {
		return
	}
	i := e.index(id)
	if i < 0 {
		return
	}
	e.applySelection(e.caretAtEnd(e.blocks[i]), true)
}

// Blur leaves edit mode and keeps the selection.
func (e *Engine) Blur() {
	e.applySelection(e.selection, false)
}

// ClearSelection deselects and leaves edit mode.
func (e *Engine) ClearSelection() {
	e.applySelection(Selection{}, false)
}

// SetCaret records the caret range a renderer reports for block id. The
// range is clamped to the block's content and the edit mode is unchanged.
func (e *Engine) SetCaret(id string, start, end int) {
	i := e.index(id)
	if i < 0 {
		return
	}
	n := utf8.RuneCountInString(e.blocks[i].Content)
	start, end = clamp(start, 0, n), clamp(end, 0, n)
	if start > end {
		start, end = end, start
	}
	e.applySelection(Selection{BlockID: id, Start: start, End: end}, e.editing)
}

// ToggleChecked flips the checked flag of checklist item childID inside the
// list listID. It reports whether anything changed.
func (e *Engine) ToggleChecked(listID, childID string) bool {
	if e.readOnly {
		return false
	}
	i := e.index(listID)
	if i < 0 || e.blocks[i].Type != block.TypeList {
		return false
	}
	list := e.blocks[i]
	for j, c := range list.Children {
		if c.ID != childID || c.ListType != block.ListChecklist {
			continue
		}
		children := block.CloneAll(list.Children)
		children[j].Checked = !c.Checked
		children[j].Markdown = block.Derive()
		e.blocks[i] = block.Patch{Children: &children}.Apply(list)
		e.commit()
		return true
	}
	return false
}

// commit finishes a mutating operation: it restores the never-empty
// invariant, bumps the revision once and notifies observers.
func (e *Engine) commit() {
	e.ensureNonEmpty()
	e.revision++

	if e.cfg.OnChange != nil {
		e.cfg.OnChange(block.CloneAll(e.blocks))
	}
	if len(e.listeners) == 0 {
		return
	}
	listeners := append([]subscription(nil), e.listeners...)
	for _, s := range listeners {
		s.fn(Change{
			Blocks:    block.CloneAll(e.blocks),
			Revision:  e.revision,
			Selection: e.selection,
			Editing:   e.editing,
		})
	}
}

// ensureNonEmpty gives an empty editable document one empty paragraph and
// selects it. It reports whether it did so.
func (e *Engine) ensureNonEmpty() bool {
	if e.readOnly || len(e.blocks) > 0 {
		return false
	}
	p := block.Block{ID: e.ids.NewID(), Type: block.TypeParagraph}
	e.blocks = append(e.blocks, p)
	e.applySelection(Selection{BlockID: p.ID}, true)
	return true
}

// applySelection installs sel and the edit flag, forcing edit mode off when
// nothing is selected or the engine is read-only, and reports a changed
// selection to Config.OnSelectionChange.
func (e *Engine) applySelection(sel Selection, editing bool) {
	if sel.BlockID == "" || e.readOnly {
		editing = false
	}
	e.editing = editing
	if sel == e.selection {
		return
	}
	e.selection = sel
	if cb := e.cfg.OnSelectionChange; cb != nil {
		if sel.BlockID == "" {
			cb(nil)
			return
		}
		s := sel
		cb(&s)
	}
}

func (e *Engine) caretAtEnd(b block.Block) Selection {
	n := utf8.RuneCountInString(b.Content)
	return Selection{BlockID: b.ID, Start: n, End: n}
}

func (e *Engine) index(id string) int {
	if id == "" {
		return -1
	}
	for i, b := range e.blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) insert(at int, b block.Block) {
	e.blocks = append(e.blocks, block.Block{})
	copy(e.blocks[at+1:], e.blocks[at:])
	e.blocks[at] = b
}

// fresh prepares an external block for insertion: normalized, deep-copied,
// with new ids for the block and all of its children.
func (e *Engine) fresh(b block.Block) block.Block {
	nb := block.Normalize(b.Clone())
	nb.ID = e.ids.NewID()
	for i := range nb.Children {
		nb.Children[i].ID = e.ids.NewID()
	}
	return nb
}

// ingest copies and normalizes blocks, keeping one id namespace across the
// document: empty or already-used ids are replaced.
func (e *Engine) ingest(blocks []block.Block) []block.Block {
	out := make([]block.Block, 0, len(blocks))
	seen := make(map[string]bool)
	for _, b := range blocks {
		nb := block.Normalize(b.Clone())
		if nb.ID == "" || seen[nb.ID] {
			nb.ID = e.ids.NewID()
		}
		seen[nb.ID] = true
		e.assignChildIDs(&nb, seen)
		out = append(out, nb)
	}
	return out
}

// assignChildIDs replaces empty or already-used child ids and records the
// final ids in seen.
func (e *Engine) assignChildIDs(b *block.Block, seen map[string]bool) {
	for i := range b.Children {
		c := &b.Children[i]
		if c.ID == "" || seen[c.ID] {
			c.ID = e.ids.NewID()
		}
		seen[c.ID] = true
	}
}

// usedIDs collects every id in the document except those of block skip and
// its children.
func (e *Engine) usedIDs(skip int) map[string]bool {
	seen := make(map[string]bool)
	for i, b := range e.blocks {
		if i == skip {
			continue
		}
		seen[b.ID] = true
		for _, c := range b.Children {
			seen[c.ID] = true
		}
	}
	return seen
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
