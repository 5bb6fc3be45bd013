// Package search keeps an in-memory Bleve index of subtitle lines so
// glossary terms and free text can be located in a document.
package search

import (
	"strconv"

	"github.com/srtwork/srtwork-server/internal/domain"
)

// LineDocument is the indexed form of one subtitle line.
type LineDocument struct {
	Index      int    // position in the document, used as the Bleve ID
	LineID     int    // the entry's sequence number
	Original   string // source text
	Translated string // may be empty
}

// DocID returns the Bleve document ID. Positions are used because
// sequence numbers are not guaranteed unique.
func (d LineDocument) DocID() string {
	return strconv.Itoa(d.Index)
}

// ToMap converts the document to the field layout in the mapping.
func (d LineDocument) ToMap() map[string]any {
	return map[string]any{
		"index":      float64(d.Index),
		"line_id":    float64(d.LineID),
		"original":   d.Original,
		"translated": d.Translated,
	}
}

// LineToDocument converts an entry at position index.
func LineToDocument(index int, e domain.SubtitleEntry) LineDocument {
	return LineDocument{
		Index:      index,
		LineID:     e.ID,
		Original:   e.OriginalText,
		Translated: e.TranslatedText,
	}
}
