package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eykd/blockmark/internal/block"
	"github.com/eykd/blockmark/internal/document"
	"github.com/eykd/blockmark/internal/editor"
	"github.com/eykd/blockmark/internal/markdown"
)

// ApplyIO handles I/O for the apply command.
type ApplyIO interface {
	WriteIO
	LoadConfig(path string) (editor.Config, error)
}

// Script is a sequence of editing steps replayed against a document.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one editing intent. Exactly one field must be set.
type Step struct {
	Key    *editor.KeyEvent `yaml:"key,omitempty"`
	Add    *AddStep         `yaml:"add,omitempty"`
	Remove *string          `yaml:"remove,omitempty"`
	Update *UpdateStep      `yaml:"update,omitempty"`
	Move   *MoveStep        `yaml:"move,omitempty"`
	Select *string          `yaml:"select,omitempty"`
	Toggle *ToggleStep      `yaml:"toggle,omitempty"`
	Import *string          `yaml:"import,omitempty"`
}

// AddStep inserts Block after the block After, or at the end.
type AddStep struct {
	After string      `yaml:"after,omitempty"`
	Block block.Block `yaml:"block"`
}

// UpdateStep patches the block ID; unset fields are left alone.
type UpdateStep struct {
	ID       string          `yaml:"id"`
	Type     *block.Type     `yaml:"type,omitempty"`
	Content  *string         `yaml:"content,omitempty"`
	Styles   *block.Style    `yaml:"styles,omitempty"`
	Level    *int            `yaml:"level,omitempty"`
	ListType *block.ListType `yaml:"listType,omitempty"`
	Checked  *bool           `yaml:"checked,omitempty"`
	Children *[]block.Block  `yaml:"children,omitempty"`
}

// MoveStep moves the block ID one position "up" or "down".
type MoveStep struct {
	ID        string `yaml:"id"`
	Direction string `yaml:"direction"`
}

// ToggleStep flips a checklist item.
type ToggleStep struct {
	List string `yaml:"list"`
	Item string `yaml:"item"`
}

// ParseScript decodes and checks a YAML editing script.
func ParseScript(data []byte) (Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Script{}, fmt.Errorf("decode script: %w", err)
	}
	for i, st := range s.Steps {
		if n := st.count(); n != 1 {
			return Script{}, fmt.Errorf("step %d: want exactly one action, got %d", i+1, n)
		}
		if st.Move != nil && st.Move.Direction != "up" && st.Move.Direction != "down" {
			return Script{}, fmt.Errorf("step %d: move direction must be up or down, got %q", i+1, st.Move.Direction)
		}
	}
	return s, nil
}

func (st Step) count() int {
	n := 0
	for _, set := range []bool{
		st.Key != nil, st.Add != nil, st.Remove != nil, st.Update != nil,
		st.Move != nil, st.Select != nil, st.Toggle != nil, st.Import != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Run applies the step to e and reports whether the engine acted on it.
func (st Step) Run(e *editor.Engine) bool {
	before := e.Revision()
	switch {
	case st.Key != nil:
		return e.HandleKey(*st.Key)
	case st.Add != nil:
		e.AddBlock(st.Add.Block, st.Add.After)
	case st.Remove != nil:
		e.RemoveBlock(*st.Remove)
	case st.Update != nil:
		u := st.Update
		e.UpdateBlock(u.ID, block.Patch{
			Type:     u.Type,
			Content:  u.Content,
			Styles:   u.Styles,
			Level:    u.Level,
			ListType: u.ListType,
			Checked:  u.Checked,
			Children: u.Children,
		})
	case st.Move != nil:
		dir := editor.Down
		if st.Move.Direction == "up" {
			dir = editor.Up
		}
		e.MoveBlock(st.Move.ID, dir)
	case st.Select != nil:
		e.Select(*st.Select)
		sel, ok := e.Selection()
		return ok && sel.BlockID == *st.Select
	case st.Toggle != nil:
		return e.ToggleChecked(st.Toggle.List, st.Toggle.Item)
	case st.Import != nil:
		e.ImportMarkdown(*st.Import)
	}
	return e.Revision() != before
}

// NewApplyCmd creates the apply subcommand.
func NewApplyCmd(io ApplyIO) *cobra.Command {
	var (
		scriptPath string
		write      bool
	)

	cmd := &cobra.Command{
		Use:   "apply <file> --script <script.yaml>",
		Short: "Replay an editing script against a document",
		Long: "Load a document into the editing engine and replay the steps of a YAML " +
			"script (key, add, remove, update, move, select, toggle, import). Blocks " +
			"parsed from the file are numbered block-1, block-2, ... in document order.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx := cmd.Context()

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := io.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			scriptBytes, err := io.ReadFile(ctx, scriptPath)
			if err != nil {
				return fmt.Errorf("reading script: %w", err)
			}
			script, err := ParseScript(scriptBytes)
			if err != nil {
				return err
			}

			data, err := io.ReadFile(ctx, path)
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}
			ids := block.NewSequence("block")
			doc, err := document.Read(data, markdown.WithIDs(ids))
			if err != nil {
				return fmt.Errorf("parsing %s: %w", sanitizeText(path), err)
			}

			e := editor.New(doc.Blocks, cfg, editor.WithIDGenerator(ids))
			for i, st := range script.Steps {
				if !st.Run(e) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: step %d had no effect\n", i+1)
				}
			}

			doc.Blocks = e.Blocks()
			if e.Revision() > 0 {
				doc.Touch()
			}
			out, err := doc.Bytes()
			if err != nil {
				return fmt.Errorf("serializing document: %w", err)
			}

			if !write {
				if _, err := cmd.OutOrStdout().Write(out); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "revision %d\n", e.Revision())
				return nil
			}
			if e.Revision() > 0 {
				if err := io.WriteFileAtomic(ctx, path, out); err != nil {
					return fmt.Errorf("writing document: %w", err)
				}
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Applied %d steps to %s (revision %d)\n",
				len(script.Steps), sanitizeText(path), e.Revision()); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "YAML editing script (required)")
	_ = cmd.MarkFlagRequired("script")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")

	return cmd
}
