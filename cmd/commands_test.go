package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eykd/blockmark/internal/block"
	"github.com/eykd/blockmark/internal/editor"
	"github.com/eykd/blockmark/internal/store"
)

// execute runs c with args and returns what it wrote to stdout and stderr.
func execute(c *cobra.Command, args ...string) (string, string, error) {
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(errOut)
	c.SetArgs(args)
	err := c.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

const sampleDoc = "---\nid: doc-1\ntitle: Sample\ncreated: 2026-01-02T03:04:05Z\nupdated: 2026-01-02T03:04:05Z\n---\n" +
	"# Sample\n\n- [ ] first\n- [x] second\n\nsome **bold** words\n"

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := map[string]bool{"parse": false, "fmt": false, "html": false, "apply": false, "store": false, "watch": false}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
		if sub.RunE == nil {
			t.Errorf("command %q has nil RunE", sub.Name())
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("expected persistent --config flag")
	}
}

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	out, _, err := execute(NewRootCmd())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "bmk") {
		t.Errorf("expected help output, got %q", out)
	}
}

func TestParseCmd_JSON(t *testing.T) {
	fio := newMockFileIO(map[string]string{"doc.md": sampleDoc})
	out, _, err := execute(NewParseCmd(fio), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got parseOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.Version != "1" || got.Frontmatter == nil || got.Frontmatter.Title != "Sample" {
		t.Errorf("output header = %+v", got)
	}
	if len(got.Blocks) != 3 {
		t.Fatalf("len(Blocks) = %d, want 3", len(got.Blocks))
	}
	if got.Blocks[1].ListType != block.ListChecklist || !got.Blocks[1].Children[1].Checked {
		t.Errorf("list block = %+v", got.Blocks[1])
	}
	if !got.Blocks[2].Styles.Bold {
		t.Error("paragraph styles not detected")
	}
	if got.Diagnostics == nil || len(got.Diagnostics) != 0 {
		t.Errorf("Diagnostics = %#v, want empty array", got.Diagnostics)
	}
}

func TestParseCmd_YAML(t *testing.T) {
	fio := newMockFileIO(map[string]string{"doc.md": "## Two\n"})
	out, _, err := execute(NewParseCmd(fio), "doc.md", "--yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got parseOutput
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if len(got.Blocks) != 1 || got.Blocks[0].Level != 2 {
		t.Errorf("Blocks = %+v, want one level-2 heading", got.Blocks)
	}
	if text, _ := got.Blocks[0].Markdown.Text(); text != "## Two" {
		t.Errorf("Markdown = %q, want cached source", text)
	}
}

func TestParseCmd_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		args  []string
	}{
		{"missing file", nil, []string{"absent.md"}},
		{"malformed frontmatter", map[string]string{"bad.md": "---\nid: [x\n---\nbody"}, []string{"bad.md"}},
		{"invalid frontmatter timestamp", map[string]string{"ts.md": "---\nid: a\ncreated: soon\nupdated: soon\n---\nbody"}, []string{"ts.md"}},
		{"no args", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(NewParseCmd(newMockFileIO(tt.files)), tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFmtCmd(t *testing.T) {
	src := "#   Spaced\n\n3. c\n1. a\n\n* star"
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"keeps sources", []string{"doc.md"}, "#   Spaced\n\n3. c\n1. a\n\n* star\n"},
		{"canonical", []string{"doc.md", "--canonical"}, "# Spaced\n\n1. c\n2. a\n\n- star\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fio := newMockFileIO(map[string]string{"doc.md": src})
			out, _, err := execute(NewFmtCmd(fio), tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
			if len(fio.writes) != 0 {
				t.Error("fmt without --write wrote the file")
			}
		})
	}
}

func TestFmtCmd_Write(t *testing.T) {
	fio := newMockFileIO(map[string]string{"doc.md": "* a\n* b"})
	out, _, err := execute(NewFmtCmd(fio), "doc.md", "--canonical", "--write")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(fio.writes["doc.md"]); got != "- a\n- b\n" {
		t.Errorf("written = %q, want %q", got, "- a\n- b\n")
	}
	if !strings.Contains(out, "Formatted doc.md") {
		t.Errorf("output = %q", out)
	}
}

func TestFmtCmd_WriteUnchangedSkipsWrite(t *testing.T) {
	fio := newMockFileIO(map[string]string{"doc.md": "- a\n- b\n"})
	if _, _, err := execute(NewFmtCmd(fio), "doc.md", "-w"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fio.writes) != 0 {
		t.Error("unchanged document was rewritten")
	}
}

func TestFmtCmd_WriteError(t *testing.T) {
	fio := newMockFileIO(map[string]string{"doc.md": "* a"})
	fio.writeErr = errors.New("disk full")
	if _, _, err := execute(NewFmtCmd(fio), "doc.md", "--canonical", "--write"); err == nil {
		t.Error("expected write error")
	}
}

func TestHTMLCmd(t *testing.T) {
	fio := newMockFileIO(map[string]string{"doc.md": sampleDoc})
	out, _, err := execute(NewHTMLCmd(fio), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"<h1>Sample</h1>", "<strong>bold</strong>", "checkbox"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "doc-1") {
		t.Error("frontmatter leaked into html body")
	}
}

func TestHTMLCmd_Standalone(t *testing.T) {
	fio := newMockFileIO(map[string]string{"doc.md": "---\nid: x\ntitle: A <b> title\ncreated: c\nupdated: u\n---\ntext\n"})
	out, _, err := execute(NewHTMLCmd(fio), "doc.md", "--standalone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") || !strings.Contains(out, "<title>A &lt;b&gt; title</title>") {
		t.Errorf("output = %q", out)
	}
}

// Parsed ids: heading block-1, items block-2 and block-3, their list
// block-4, paragraph block-5. The engine continues the sequence.
func TestApplyCmd(t *testing.T) {
	script := `
steps:
  - key: {key: Enter, blockId: block-1}
  - update: {id: block-6, content: "inserted"}
  - toggle: {list: block-4, item: block-2}
  - move: {id: block-5, direction: up}
  - remove: block-6
`
	fio := newMockFileIO(map[string]string{
		"doc.md":      "# Title\n\n- [ ] one\n- [x] two\n\nclosing",
		"script.yaml": script,
	})
	out, errOut, err := execute(NewApplyCmd(fio), "doc.md", "--script", "script.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, errOut)
	}

	want := "# Title\n\nclosing\n\n- [x] one\n- [x] two\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
	if !strings.Contains(errOut, "revision 5") {
		t.Errorf("stderr = %q, want revision 5", errOut)
	}
	if len(fio.writes) != 0 {
		t.Error("apply without --write wrote the file")
	}
}

func TestApplyCmd_WriteAndWarnings(t *testing.T) {
	fio := newMockFileIO(map[string]string{
		"doc.md": "only",
		"s.yaml": "steps:\n  - remove: ghost\n  - add: {block: {type: quote, content: said}}\n",
	})
	out, errOut, err := execute(NewApplyCmd(fio), "doc.md", "--script", "s.yaml", "--write")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(fio.writes["doc.md"]); got != "only\n\n> said\n" {
		t.Errorf("written = %q", got)
	}
	if !strings.Contains(errOut, "step 1 had no effect") {
		t.Errorf("stderr = %q, want warning for step 1", errOut)
	}
	if !strings.Contains(out, "Applied 2 steps to doc.md (revision 1)") {
		t.Errorf("output = %q", out)
	}
}

func TestApplyCmd_ReadOnlyConfig(t *testing.T) {
	fio := newMockFileIO(map[string]string{
		"doc.md": "a\n\nb",
		"s.yaml": "steps:\n  - key: {key: Enter, blockId: block-1}\n  - select: block-1\n",
	})
	fio.cfg = editor.Config{Editable: false}

	out, errOut, err := execute(NewApplyCmd(fio), "doc.md", "--script", "s.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "a\n\nb\n" {
		t.Errorf("output = %q, want document unchanged", out)
	}
	if strings.Count(errOut, "had no effect") != 2 {
		t.Errorf("stderr = %q, want two warnings", errOut)
	}
}

func TestApplyCmd_PassesConfigFlag(t *testing.T) {
	fio := newMockFileIO(map[string]string{"doc.md": "a", "s.yaml": "steps: []\n"})
	root := &cobra.Command{Use: "bmk"}
	root.PersistentFlags().String("config", "", "")
	root.AddCommand(NewApplyCmd(fio))

	if _, _, err := execute(root, "--config", "custom.yaml", "apply", "doc.md", "--script", "s.yaml"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fio.configPath != "custom.yaml" {
		t.Errorf("config path = %q, want custom.yaml", fio.configPath)
	}
}

func TestApplyCmd_Errors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		cfgErr error
	}{
		{"unknown action", "steps:\n  - explode: block-1\n", nil},
		{"two actions in one step", "steps:\n  - remove: a\n    select: b\n", nil},
		{"empty step", "steps:\n  - {}\n", nil},
		{"bad direction", "steps:\n  - move: {id: block-1, direction: sideways}\n", nil},
		{"config error", "steps: []\n", errors.New("bad config")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fio := newMockFileIO(map[string]string{"doc.md": "a", "s.yaml": tt.script})
			fio.cfgErr = tt.cfgErr
			if _, _, err := execute(NewApplyCmd(fio), "doc.md", "--script", "s.yaml"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestApplyCmd_RequiresScript(t *testing.T) {
	fio := newMockFileIO(map[string]string{"doc.md": "a"})
	if _, _, err := execute(NewApplyCmd(fio), "doc.md"); err == nil {
		t.Error("expected error without --script")
	}
}

func TestStoreCmd_SaveLoadListRm(t *testing.T) {
	sio := &mockStoreIO{
		mockFileIO: newMockFileIO(map[string]string{"doc.md": "# Kept\n\ntext"}),
		store:      newMockStore(),
	}

	out, _, err := execute(NewStoreCmd(sio), "save", "notes", "doc.md", "--db", "x.db")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(out, "Saved notes (2 blocks, revision 1)") {
		t.Errorf("save output = %q", out)
	}
	if sio.dbPath != "x.db" || !sio.store.closed {
		t.Errorf("dbPath = %q closed = %v", sio.dbPath, sio.store.closed)
	}
	if id := sio.store.docs["notes"][0].ID; !strings.HasPrefix(id, "blk-") {
		t.Errorf("stored id = %q, want uuid-based id", id)
	}

	out, _, err = execute(NewStoreCmd(sio), "load", "notes")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out != "# Kept\n\ntext\n" {
		t.Errorf("load output = %q", out)
	}
	if sio.dbPath != "bmk.db" {
		t.Errorf("default db = %q, want bmk.db", sio.dbPath)
	}

	out, _, err = execute(NewStoreCmd(sio), "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "NAME") || !strings.Contains(out, "notes") {
		t.Errorf("list output = %q", out)
	}

	out, _, err = execute(NewStoreCmd(sio), "list", "--json")
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	var infos []store.DocumentInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil || len(infos) != 1 || infos[0].Blocks != 2 {
		t.Errorf("list --json = %q (%v)", out, err)
	}

	if _, _, err = execute(NewStoreCmd(sio), "rm", "notes"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if _, _, err = execute(NewStoreCmd(sio), "load", "notes"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("load after rm error = %v, want ErrNotFound", err)
	}
}

func TestStoreCmd_ListEmptyJSON(t *testing.T) {
	sio := &mockStoreIO{mockFileIO: newMockFileIO(nil), store: newMockStore()}
	out, _, err := execute(NewStoreCmd(sio), "list", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("output = %q, want []", out)
	}
}

func TestStoreCmd_OpenError(t *testing.T) {
	sio := &mockStoreIO{mockFileIO: newMockFileIO(nil), store: newMockStore(), openErr: errors.New("locked")}
	if _, _, err := execute(NewStoreCmd(sio), "list"); err == nil {
		t.Error("expected error")
	}
}

func TestFileStoreIO_OpenStore(t *testing.T) {
	ctx := context.Background()
	s, err := newDefaultStoreIO().OpenStore(ctx, filepath.Join(t.TempDir(), "bmk.db"))
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	defer s.Close()
	if _, err := s.Save(ctx, "a", []block.Block{{ID: "x", Type: block.TypeParagraph, Content: "hi"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Load(ctx, "a")
	if err != nil || len(got) != 1 || got[0].Content != "hi" {
		t.Errorf("Load() = %+v, %v", got, err)
	}
}

func TestWatchCmd(t *testing.T) {
	wio := &mockWatchIO{
		mockFileIO: newMockFileIO(map[string]string{"doc.md": "# One"}),
		changes:    []string{"# One\n\n- a\n- b", "---"},
	}
	out, _, err := execute(NewWatchCmd(wio), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reports := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	want := []string{"heading(1)", "-- 1 blocks", "heading(1)", "list(unordered)", "-- 2 blocks", "divider", "-- 1 blocks"}
	if len(reports) != len(want) {
		t.Fatalf("output lines = %q, want %d lines", reports, len(want))
	}
	for i, w := range want {
		if !strings.Contains(reports[i], w) {
			t.Errorf("line %d = %q, want it to contain %q", i, reports[i], w)
		}
	}
	if !strings.Contains(reports[3], "2 items") {
		t.Errorf("list line = %q, want item count", reports[3])
	}
}

func TestWatchCmd_ReadErrorIsReported(t *testing.T) {
	wio := &mockWatchIO{mockFileIO: newMockFileIO(nil)}
	_, errOut, err := execute(NewWatchCmd(wio), "absent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut, "error: reading absent.md") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestWriteFileAtomicImpl(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("old"), 0o640); err != nil {
		t.Fatal(err)
	}

	if err := writeFileAtomicImpl(path, []byte("new")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "new" {
		t.Errorf("content = %q, %v", got, err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o640 {
		t.Errorf("mode = %v, want 0640 kept", fi.Mode().Perm())
	}
}

func TestWriteFileAtomicImpl_LeavesNothingOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "doc.md")
	if err := writeFileAtomicImpl(path, []byte("x")); err == nil {
		t.Error("expected error writing into a missing directory")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file exists after failed write")
	}
}
