package block

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Source is the Markdown representation of a block: either a cached
// verbatim fragment that the serializer emits unchanged, or Derive, meaning
// the serializer regenerates Markdown from the structured fields.
// The zero value is Derive.
type Source struct {
	text   string
	cached bool
}

// Cached returns a Source holding text verbatim. An empty text is Derive.
func Cached(text string) Source {
	if text == "" {
		return Source{}
	}
	return Source{text: text, cached: true}
}

// Derive returns the Source that regenerates Markdown from structured fields.
func Derive() Source {
	return Source{}
}

// Text returns the cached fragment and true, or "" and false for Derive.
func (s Source) Text() (string, bool) {
	return s.text, s.cached
}

// IsCached reports whether s holds a verbatim fragment.
func (s Source) IsCached() bool {
	return s.cached
}

// IsZero reports whether s is Derive. It lets encoders omit the field.
func (s Source) IsZero() bool {
	return !s.cached
}

// MarshalJSON encodes a cached fragment as a string and Derive as null.
func (s Source) MarshalJSON() ([]byte, error) {
	if !s.cached {
		return []byte("null"), nil
	}
	return json.Marshal(s.text)
}

// UnmarshalJSON decodes a string into Cached and null into Derive.
func (s *Source) UnmarshalJSON(data []byte) error {
	var text *string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	if text == nil {
		*s = Derive()
		return nil
	}
	*s = Cached(*text)
	return nil
}

// MarshalYAML encodes a cached fragment as a string and Derive as null.
func (s Source) MarshalYAML() (any, error) {
	if !s.cached {
		return nil, nil
	}
	return s.text, nil
}

// UnmarshalYAML decodes a scalar string into Cached.
func (s *Source) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return err
	}
	*s = Cached(text)
	return nil
}
