// Package block provides the domain types for the blockmark document model.
package block

// Type identifies the kind of a Block. Every other component dispatches on it.
type Type string

const (
	TypeParagraph Type = "paragraph"
	TypeHeading   Type = "heading"
	TypeList      Type = "list"
	TypeCode      Type = "code"
	TypeQuote     Type = "quote"
	TypeDivider   Type = "divider"
)

// Valid reports whether t is one of the six known block types.
func (t Type) Valid() bool {
	switch t {
	case TypeParagraph, TypeHeading, TypeList, TypeCode, TypeQuote, TypeDivider:
		return true
	}
	return false
}

// ListType is the marker flavour of a list block or list item.
type ListType string

const (
	ListOrdered   ListType = "ordered"
	ListUnordered ListType = "unordered"
	ListChecklist ListType = "checklist"
)

// Heading levels outside this range are clamped on ingestion.
const (
	MinLevel = 1
	MaxLevel = 6
)

// Style holds the orthogonal presentation attributes of a block.
// Any combination is valid.
type Style struct {
	Bold            bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic          bool   `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline       bool   `json:"underline,omitempty" yaml:"underline,omitempty"`
	Strikethrough   bool   `json:"strikethrough,omitempty" yaml:"strikethrough,omitempty"`
	Code            bool   `json:"code,omitempty" yaml:"code,omitempty"`
	Highlight       bool   `json:"highlight,omitempty" yaml:"highlight,omitempty"`
	Color           string `json:"color,omitempty" yaml:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	FontSize        string `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
}

// IsZero reports whether no attribute is set.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Block is the atomic unit of document content.
type Block struct {
	// ID is opaque, unique within a document and never recomputed from content.
	ID   string `json:"id" yaml:"id"`
	Type Type   `json:"type" yaml:"type"`
	// Content is empty for dividers and for list containers.
	Content string `json:"content" yaml:"content"`
	Styles  Style  `json:"styles,omitzero" yaml:"styles,omitempty"`
	// Level is meaningful only for headings.
	Level int `json:"level,omitempty" yaml:"level,omitempty"`
	// ListType is meaningful only for lists and list items.
	ListType ListType `json:"listType,omitempty" yaml:"listType,omitempty"`
	// Checked is meaningful only on checklist items.
	Checked bool `json:"checked,omitempty" yaml:"checked,omitempty"`
	// Children holds list items; items never nest further.
	Children []Block `json:"children,omitempty" yaml:"children,omitempty"`
	// Markdown is the cached verbatim source, if any.
	Markdown Source `json:"markdown,omitzero" yaml:"markdown,omitempty"`
}

// Diagnostic is a structured error or warning about a block sequence.
type Diagnostic struct {
	Severity string `json:"severity" yaml:"severity"` // "error" | "warning"
	Code     string `json:"code" yaml:"code"`
	Message  string `json:"message" yaml:"message"`
	BlockID  string `json:"blockId,omitempty" yaml:"blockId,omitempty"`
}

// Severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Validation errors.
const (
	// CodeEmptyID: a block or list item has an empty id.
	CodeEmptyID = "BLKE001"
	// CodeDuplicateID: the same id is used by more than one block or list item.
	CodeDuplicateID = "BLKE002"
	// CodeNestedList: a list item has children of its own.
	CodeNestedList = "BLKE003"
	// CodeInvalidChild: a list child is not of type list.
	CodeInvalidChild = "BLKE004"
)

// Validation warnings.
const (
	// CodeUnknownType: the block type is not recognized and renders as a paragraph.
	CodeUnknownType = "BLKW001"
	// CodeLevelOutOfRange: the heading level is outside 1..6 and gets clamped.
	CodeLevelOutOfRange = "BLKW002"
	// CodeDividerContent: a divider carries content, which is ignored.
	CodeDividerContent = "BLKW003"
	// CodeChildrenOnNonList: a block other than a list has children, which are ignored.
	CodeChildrenOnNonList = "BLKW004"
)
