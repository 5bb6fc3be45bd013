// Package domain holds the core types of a translation workspace: subtitle
// entries, the glossary, word selections and per-workspace settings.
package domain

import "fmt"

// SubtitleEntry is one timed block of a subtitle track.
type SubtitleEntry struct {
	ID             int    `json:"id"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text,omitempty"`
	// IsEdited marks text written by a person rather than the model.
	IsEdited bool `json:"is_edited"`
}

// HasTranslation reports whether the entry carries translated text.
func (e SubtitleEntry) HasTranslation() bool {
	return e.TranslatedText != ""
}

// Text returns the entry text for the given variant. The translated
// variant falls back to the original when no translation exists.
func (e SubtitleEntry) Text(v Variant) string {
	if v == VariantTranslated && e.TranslatedText != "" {
		return e.TranslatedText
	}
	return e.OriginalText
}

// Variant selects which text of an entry to use.
type Variant string

// Supported variants.
const (
	VariantOriginal   Variant = "original"
	VariantTranslated Variant = "translated"
)

// ParseVariant converts a string to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantOriginal, VariantTranslated:
		return Variant(s), nil
	default:
		return "", fmt.Errorf("unknown variant %q", s)
	}
}

// Filename returns the download name for a subtitle export.
func (v Variant) Filename(ext string) string {
	return string(v) + "_subtitles." + ext
}

// Document is an ordered subtitle track. Values are treated as immutable:
// every mutation returns a new Document sharing nothing writable with the
// receiver.
type Document struct {
	Entries []SubtitleEntry `json:"entries"`
}

// NewDocument wraps entries in a Document.
func NewDocument(entries []SubtitleEntry) Document {
	if entries == nil {
		entries = []SubtitleEntry{}
	}
	return Document{Entries: entries}
}

// Len returns the number of entries.
func (d Document) Len() int {
	return len(d.Entries)
}

// At returns the entry at index.
func (d Document) At(index int) (SubtitleEntry, bool) {
	if index < 0 || index >= len(d.Entries) {
		return SubtitleEntry{}, false
	}
	return d.Entries[index], true
}

// Entry returns the first entry with the given id.
func (d Document) Entry(id int) (SubtitleEntry, bool) {
	for _, e := range d.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return SubtitleEntry{}, false
}

// ReplaceEntry returns a copy of the document with fn applied to every
// entry whose id matches. The receiver is left untouched. The boolean
// reports whether any entry matched.
func (d Document) ReplaceEntry(id int, fn func(SubtitleEntry) SubtitleEntry) (Document, bool) {
	out := make([]SubtitleEntry, len(d.Entries))
	found := false
	for i, e := range d.Entries {
		if e.ID == id {
			e = fn(e)
			found = true
		}
		out[i] = e
	}
	return Document{Entries: out}, found
}

// Sample joins the original text of the first n entries with single spaces.
func (d Document) Sample(n int) string {
	if n > len(d.Entries) {
		n = len(d.Entries)
	}
	var sample string
	for i := range n {
		if i > 0 {
			sample += " "
		}
		sample += d.Entries[i].OriginalText
	}
	return sample
}

// TranslatedCount returns how many entries carry a translation.
func (d Document) TranslatedCount() int {
	n := 0
	for _, e := range d.Entries {
		if e.HasTranslation() {
			n++
		}
	}
	return n
}
