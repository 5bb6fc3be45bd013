package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrGlossaryNotObject is returned when glossary JSON is not a flat object
// of string values.
var ErrGlossaryNotObject = errors.New("glossary must be a JSON object of string values")

// GlossaryEntry is a single source → target pair.
type GlossaryEntry struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Glossary maps source terms to target terms and remembers insertion
// order. Overwriting a key keeps its original position.
//
// A Glossary held in workspace state is never mutated; callers Clone
// before changing it.
type Glossary struct {
	keys  []string
	terms map[string]string
}

// NewGlossary returns an empty glossary.
func NewGlossary() *Glossary {
	return &Glossary{terms: make(map[string]string)}
}

// GlossaryFromEntries builds a glossary from pairs, later pairs
// overwriting earlier ones.
func GlossaryFromEntries(entries []GlossaryEntry) *Glossary {
	g := NewGlossary()
	for _, e := range entries {
		g.Set(e.Source, e.Target)
	}
	return g
}

// Len returns the number of entries.
func (g *Glossary) Len() int {
	if g == nil {
		return 0
	}
	return len(g.keys)
}

// Get returns the target for source.
func (g *Glossary) Get(source string) (string, bool) {
	if g == nil {
		return "", false
	}
	t, ok := g.terms[source]
	return t, ok
}

// Set adds or overwrites an entry.
func (g *Glossary) Set(source, target string) {
	if _, ok := g.terms[source]; !ok {
		g.keys = append(g.keys, source)
	}
	g.terms[source] = target
}

// Delete removes an entry and reports whether it existed.
func (g *Glossary) Delete(source string) bool {
	if _, ok := g.terms[source]; !ok {
		return false
	}
	delete(g.terms, source)
	g.keys = slices.DeleteFunc(g.keys, func(k string) bool { return k == source })
	return true
}

// Entries returns the pairs in insertion order.
func (g *Glossary) Entries() []GlossaryEntry {
	if g == nil {
		return []GlossaryEntry{}
	}
	out := make([]GlossaryEntry, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, GlossaryEntry{Source: k, Target: g.terms[k]})
	}
	return out
}

// Clone returns an independent copy.
func (g *Glossary) Clone() *Glossary {
	c := NewGlossary()
	if g == nil {
		return c
	}
	c.keys = slices.Clone(g.keys)
	for k, v := range g.terms {
		c.terms[k] = v
	}
	return c
}

// Equal reports whether both glossaries hold the same pairs in the same
// order.
func (g *Glossary) Equal(other *Glossary) bool {
	return slices.Equal(g.Entries(), other.Entries())
}

// MarshalJSON encodes the glossary as a flat object in insertion order.
func (g *Glossary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range g.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, e.Source); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, e.Target); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeJSONString encodes s without HTML escaping so exported files keep
// characters like & and < readable.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// UnmarshalJSON decodes a flat object of string values, keeping the key
// order of the input. Anything else yields ErrGlossaryNotObject.
func (g *Glossary) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGlossaryNotObject, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrGlossaryNotObject
	}

	parsed := NewGlossary()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrGlossaryNotObject, err)
		}
		key, _ := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrGlossaryNotObject, err)
		}
		val, ok := valTok.(string)
		if !ok {
			return fmt.Errorf("%w: value for %q is not a string", ErrGlossaryNotObject, key)
		}
		parsed.Set(key, val)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrGlossaryNotObject, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrGlossaryNotObject)
	}

	*g = *parsed
	return nil
}

// ParseGlossary decodes glossary JSON.
func ParseGlossary(data []byte) (*Glossary, error) {
	g := NewGlossary()
	if err := g.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return g, nil
}

// ExportJSON encodes the glossary with two-space indentation.
func (g *Glossary) ExportJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// GlossaryFilename is the download name for glossary exports.
const GlossaryFilename = "dictionary.json"
