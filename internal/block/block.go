package block

// ClampLevel clamps a heading level to [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Clone returns a deep copy of b; children are copied, not shared.
func (b Block) Clone() Block {
	if b.Children != nil {
		children := make([]Block, len(b.Children))
		for i, c := range b.Children {
			children[i] = c.Clone()
		}
		b.Children = children
	}
	return b
}

// CloneAll deep-copies a block sequence. A nil input yields an empty slice.
func CloneAll(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// DropSources returns a deep copy of blocks with every cached Markdown
// fragment, children included, reset to Derive.
func DropSources(blocks []Block) []Block {
	out := CloneAll(blocks)
	for i := range out {
		out[i].Markdown = Derive()
		for j := range out[i].Children {
			out[i].Children[j].Markdown = Derive()
		}
	}
	return out
}

// Normalize enforces the per-type field invariants on ingestion: heading
// levels are clamped, dividers carry no content, and list containers keep
// their text on children only. List children are normalized as list items.
func Normalize(b Block) Block {
	switch b.Type {
	case TypeHeading:
		b.Level = ClampLevel(b.Level)
	case TypeDivider:
		b.Content = ""
	case TypeList:
		if len(b.Children) > 0 {
			b.Content = ""
			children := make([]Block, len(b.Children))
			for i, c := range b.Children {
				c.Type = TypeList
				c.Children = nil
				if c.ListType == "" {
					c.ListType = b.ListType
				}
				children[i] = c
			}
			b.Children = children
		}
	}
	return b
}

// Patch is a partial update of a block. Nil fields are left untouched.
type Patch struct {
	Type     *Type
	Content  *string
	Styles   *Style
	Level    *int
	ListType *ListType
	Checked  *bool
	Children *[]Block
	// Markdown, when set, replaces the cached source. When nil, any
	// structured change above resets the block to Derive.
	Markdown *Source
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}

// IsEmpty reports whether the patch sets no field.
func (p Patch) IsEmpty() bool {
	return !p.structural() && p.Markdown == nil
}

func (p Patch) structural() bool {
	return p.Type != nil || p.Content != nil || p.Styles != nil || p.Level != nil ||
		p.ListType != nil || p.Checked != nil || p.Children != nil
}

// Apply shallow-merges p into a copy of b and returns it. A structured change
// without an explicit Markdown value transitions the block to Derive so the
// cache never diverges from the authoritative fields.
func (p Patch) Apply(b Block) Block {
	b = b.Clone()
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.Content != nil {
		b.Content = *p.Content
	}
	if p.Styles != nil {
		b.Styles = *p.Styles
	}
	if p.Level != nil {
		b.Level = *p.Level
	}
	if p.ListType != nil {
		b.ListType = *p.ListType
	}
	if p.Checked != nil {
		b.Checked = *p.Checked
	}
	if p.Children != nil {
		b.Children = CloneAll(*p.Children)
	}
	switch {
	case p.Markdown != nil:
		b.Markdown = *p.Markdown
	case p.structural():
		b.Markdown = Derive()
	}
	return Normalize(b)
}
