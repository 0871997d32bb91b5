package editor

import "github.com/eykd/blockmark/internal/block"

// Key names a keyboard key, using the DOM key names renderers report.
type Key string

const (
	KeyEnter     Key = "Enter"
	KeyBackspace Key = "Backspace"
	KeyArrowUp   Key = "ArrowUp"
	KeyArrowDown Key = "ArrowDown"
	KeyTab       Key = "Tab"
)

// KeyEvent is a raw key press reported by a renderer for the focused block.
type KeyEvent struct {
	Key     Key    `json:"key" yaml:"key"`
	Shift   bool   `json:"shift,omitempty" yaml:"shift,omitempty"`
	BlockID string `json:"blockId" yaml:"blockId"`
}

// HandleKey runs the structural command bound to ev and reports whether the
// engine consumed the event. Unconsumed events (Shift+Enter, Backspace in a
// non-empty block, arrows at the document edges) belong to the renderer.
// Every event is ignored in read-only mode.
func (e *Engine) HandleKey(ev KeyEvent) bool {
	if e.readOnly {
		return false
	}
	i := e.index(ev.BlockID)
	if i < 0 {
		return false
	}

	switch ev.Key {
	case KeyEnter:
		if ev.Shift {
			return false
		}
		e.splitAfter(i)
		return true
	case KeyBackspace:
		// List containers keep no content, so a focused list is removed whole.
		if e.blocks[i].Content != "" || len(e.blocks) <= 1 {
			return false
		}
		e.removeBackward(i)
		return true
	case KeyArrowUp:
		if i == 0 {
			return false
		}
		e.applySelection(e.caretAtEnd(e.blocks[i-1]), true)
		return true
	case KeyArrowDown:
		if i == len(e.blocks)-1 {
			return false
		}
		e.applySelection(e.caretAtEnd(e.blocks[i+1]), true)
		return true
	case KeyTab:
		dir := Down
		if ev.Shift {
			dir = Up
		}
		e.MoveBlock(ev.BlockID, dir)
		return true
	}
	return false
}

// splitAfter inserts an empty paragraph after block i and moves the edit
// cursor into it.
func (e *Engine) splitAfter(i int) {
	p := block.Block{ID: e.ids.NewID(), Type: block.TypeParagraph}
	e.insert(i+1, p)
	e.applySelection(Selection{BlockID: p.ID}, true)
	e.commit()
}

// removeBackward deletes block i and moves the edit cursor to the end of the
// previous block, or clears the selection when i was first.
func (e *Engine) removeBackward(i int) {
	e.blocks = append(e.blocks[:i], e.blocks[i+1:]...)
	if i > 0 {
		e.applySelection(e.caretAtEnd(e.blocks[i-1]), true)
	} else {
		e.applySelection(Selection{}, false)
	}
	e.commit()
}
