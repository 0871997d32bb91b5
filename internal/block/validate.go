package block

import "fmt"

// Validate checks a block sequence against the document invariants and
// returns the violations found; nil when the sequence is valid. Ids share one
// namespace across top-level blocks and list children.
func Validate(blocks []Block) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[string]bool)

	checkID := func(b Block) {
		if b.ID == "" {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeEmptyID,
				Message:  fmt.Sprintf("%s block has an empty id", b.Type),
			})
			return
		}
		if seen[b.ID] {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeDuplicateID,
				Message:  fmt.Sprintf("id %q is used by more than one block", b.ID),
				BlockID:  b.ID,
			})
		}
		seen[b.ID] = true
	}

	for _, b := range blocks {
		checkID(b)

		if !b.Type.Valid() {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeUnknownType,
				Message:  fmt.Sprintf("unknown block type %q is treated as paragraph", b.Type),
				BlockID:  b.ID,
			})
		}
		if b.Type == TypeHeading && (b.Level < MinLevel || b.Level > MaxLevel) {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeLevelOutOfRange,
				Message:  fmt.Sprintf("heading level %d is clamped to %d", b.Level, ClampLevel(b.Level)),
				BlockID:  b.ID,
			})
		}
		if b.Type == TypeDivider && b.Content != "" {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeDividerContent,
				Message:  "divider content is ignored",
				BlockID:  b.ID,
			})
		}
		if b.Type != TypeList && len(b.Children) > 0 {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeChildrenOnNonList,
				Message:  fmt.Sprintf("children on %s block are ignored", b.Type),
				BlockID:  b.ID,
			})
		}

		for _, c := range b.Children {
			checkID(c)
			if c.Type != TypeList {
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Code:     CodeInvalidChild,
					Message:  fmt.Sprintf("list item has type %q, want %q", c.Type, TypeList),
					BlockID:  c.ID,
				})
			}
			if len(c.Children) > 0 {
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Code:     CodeNestedList,
					Message:  "nested lists are not supported",
					BlockID:  c.ID,
				})
			}
		}
	}
	return diags
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
