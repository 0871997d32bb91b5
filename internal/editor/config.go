package editor

import (
	"unicode/utf8"

	"github.com/eykd/blockmark/internal/block"
)

// Config holds the host-supplied editor options.
type Config struct {
	// Editable is false for a read-only view. DefaultConfig sets it.
	Editable bool `mapstructure:"editable" yaml:"editable"`
	// Placeholder is shown by renderers for empty blocks.
	Placeholder string `mapstructure:"placeholder" yaml:"placeholder"`
	// MaxLength caps block content length in runes; 0 means no cap. The
	// renderer enforces it on input; the engine does not.
	MaxLength int `mapstructure:"max_length" yaml:"max_length"`
	// AutoFocus selects and edits the first block when the engine is created.
	AutoFocus bool `mapstructure:"auto_focus" yaml:"auto_focus"`
	// Theme is passed through to renderers untouched.
	Theme Theme `mapstructure:"theme" yaml:"theme"`

	// OnChange receives the full block sequence after every mutation.
	OnChange func([]block.Block) `mapstructure:"-" yaml:"-"`
	// OnSelectionChange receives the new selection, or nil when cleared.
	OnSelectionChange func(*Selection) `mapstructure:"-" yaml:"-"`
}

// Theme is opaque styling configuration. The engine stores it and never
// interprets it.
type Theme struct {
	Colors map[string]string `mapstructure:"colors" yaml:"colors,omitempty"`
	Fonts  map[string]string `mapstructure:"fonts" yaml:"fonts,omitempty"`
	Sizes  map[string]string `mapstructure:"sizes" yaml:"sizes,omitempty"`
}

// DefaultConfig returns an editable configuration with no callbacks.
func DefaultConfig() Config {
	return Config{Editable: true}
}

// AllowsContent reports whether content fits within MaxLength. Renderers
// call it to reject an input event before it reaches the engine.
func (c Config) AllowsContent(content string) bool {
	return c.MaxLength <= 0 || utf8.RuneCountInString(content) <= c.MaxLength
}
