package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/eykd/blockmark/internal/block"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain block text", "Grocery list", "Grocery list"},
		{"markdown markers kept", "**bold** `code` ==mark==", "**bold** `code` ==mark=="},
		{"non-ASCII kept", "héllo wörld ✓", "héllo wörld ✓"},
		{"code block newlines", "x := 1\ny := 2", "x := 1?y := 2"},
		{"tab indentation", "\tindented", "?indented"},
		{"ANSI clear screen", "title\x1b[2J", "title?[2J"},
		{"NUL and DEL", "a\x00b\x7fc", "a?b?c"},
		{"CRLF residue", "line\r", "line?"},
		{"C1 control sequence introducer", "x\u009b2J", "x?2J"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeText(tt.input); got != tt.want {
				t.Errorf("sanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer sentence", 10, "a longe..."},
		{"héllo wörld", 8, "héllo..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

// TestSummarize_ScrubsBlockText verifies that block content reaches the
// terminal on one line with control characters replaced.
func TestSummarize_ScrubsBlockText(t *testing.T) {
	blocks := []block.Block{
		{ID: "b1", Type: block.TypeCode, Content: "fmt.Println()\n\x1b[31mred"},
		{ID: "b2", Type: block.TypeHeading, Level: 2, Content: "Plan"},
		{ID: "b3", Type: block.TypeList, ListType: block.ListChecklist, Children: []block.Block{{ID: "c1"}, {ID: "c2"}}},
	}

	var buf bytes.Buffer
	summarize(&buf, blocks)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("summarize wrote %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if strings.ContainsAny(buf.String(), "\x1b") {
		t.Error("summarize output contains an escape character")
	}
	for i, want := range []string{
		"fmt.Println()??[31mred",
		"heading(2)",
		"2 items",
		"-- 3 blocks",
	} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want it to contain %q", i, lines[i], want)
		}
	}
}
