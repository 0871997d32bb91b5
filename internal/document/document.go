// Package document reads and writes blockmark document files: an optional
// YAML frontmatter block followed by a Markdown body.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/eykd/blockmark/internal/block"
	"github.com/eykd/blockmark/internal/markdown"
)

// Frontmatter holds the YAML front matter of a document file.
type Frontmatter struct {
	// ID is the document's UUIDv7 identifier.
	ID string `json:"id" yaml:"id"`
	// Title is optional.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	// Created is the RFC3339Z timestamp of creation.
	Created string `json:"created" yaml:"created"`
	// Updated is the RFC3339Z timestamp of the last write.
	Updated string `json:"updated" yaml:"updated"`
}

// Document is a parsed document file.
type Document struct {
	// Frontmatter is nil for a plain Markdown file.
	Frontmatter *Frontmatter
	Blocks      []block.Block
}

// Frontmatter diagnostics.
const (
	CodeMissingID        = "DOCE001"
	CodeInvalidTimestamp = "DOCE002"
	CodeEmptyBody        = "DOCW001"
)

// frontmatterRE matches a complete frontmatter block at the start of a file.
// The closing "---" must sit at column 0; "---" inside YAML block scalars is
// always indented.
var frontmatterRE = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n`)

// ErrMalformedFrontmatter is returned when a leading frontmatter block is not
// valid YAML.
var ErrMalformedFrontmatter = errors.New("malformed frontmatter")

// Split separates a file's frontmatter from its body. ok is false, and body
// is all of content, when the file has no frontmatter block.
func Split(content []byte) (fm Frontmatter, body []byte, ok bool, err error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	loc := frontmatterRE.FindSubmatchIndex(content)
	if loc == nil {
		return Frontmatter{}, content, false, nil
	}
	if err := yaml.Unmarshal(content[loc[2]:loc[3]], &fm); err != nil {
		return Frontmatter{}, nil, false, fmt.Errorf("%w: %v", ErrMalformedFrontmatter, err)
	}
	return fm, append([]byte(nil), content[loc[1]:]...), true, nil
}

// Read parses a document file. opts are passed to the Markdown parser.
func Read(content []byte, opts ...markdown.Option) (*Document, error) {
	fm, body, ok, err := Split(content)
	if err != nil {
		return nil, err
	}
	doc := &Document{Blocks: markdown.Parse(string(body), opts...)}
	if ok {
		doc.Frontmatter = &fm
	}
	return doc, nil
}

// Bytes serializes the document: frontmatter when present, then the
// Markdown body with a trailing newline.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if d.Frontmatter != nil {
		fm, err := SerializeFrontmatter(*d.Frontmatter)
		if err != nil {
			return nil, err
		}
		buf.Write(fm)
	}
	if body := markdown.Serialize(d.Blocks); body != "" {
		buf.WriteString(body)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// SerializeFrontmatter renders fm wrapped in "---" delimiters. Fields are
// written in the order id, title, created, updated; an empty title is
// omitted.
func SerializeFrontmatter(fm Frontmatter) ([]byte, error) {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("serialize frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(out)
	buf.WriteString("---\n")
	return buf.Bytes(), nil
}

// NewFrontmatter returns frontmatter for a new document with a fresh UUIDv7
// id and both timestamps set to now.
func NewFrontmatter(title string) (Frontmatter, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Frontmatter{}, fmt.Errorf("generate document id: %w", err)
	}
	now := NowUTC()
	return Frontmatter{ID: id.String(), Title: title, Created: now, Updated: now}, nil
}

// Touch sets Updated to now. A document without frontmatter is left as is.
func (d *Document) Touch() {
	if d.Frontmatter != nil {
		d.Frontmatter.Updated = NowUTC()
	}
}

// NowUTC returns the current UTC time as RFC3339 with second precision and
// a "Z" suffix, e.g. "2006-01-02T15:04:05Z".
func NowUTC() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}

// Check reports frontmatter problems and an empty body. It returns nil for a
// well-formed document; a document without frontmatter is checked for its
// body only.
func (d *Document) Check() []block.Diagnostic {
	var diags []block.Diagnostic
	if fm := d.Frontmatter; fm != nil {
		if fm.ID == "" {
			diags = append(diags, block.Diagnostic{
				Severity: block.SeverityError,
				Code:     CodeMissingID,
				Message:  "frontmatter has no id",
			})
		}
		for _, f := range []struct{ name, value string }{
			{"created", fm.Created},
			{"updated", fm.Updated},
		} {
			if !isRFC3339Z(f.value) {
				diags = append(diags, block.Diagnostic{
					Severity: block.SeverityError,
					Code:     CodeInvalidTimestamp,
					Message:  fmt.Sprintf("frontmatter %s %q is not an RFC3339 UTC timestamp", f.name, f.value),
				})
			}
		}
	}
	if len(d.Blocks) == 0 {
		diags = append(diags, block.Diagnostic{
			Severity: block.SeverityWarning,
			Code:     CodeEmptyBody,
			Message:  "document body is empty",
		})
	}
	return diags
}

func isRFC3339Z(s string) bool {
	if !strings.HasSuffix(s, "Z") {
		return false
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}
