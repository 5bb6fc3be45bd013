package translate

import (
	"strings"

	"github.com/srtwork/srtwork-server/internal/domain"
)

// Window is the surrounding text sent with a line.
type Window struct {
	// Before holds preceding lines, oldest first.
	Before []string `json:"before"`
	// After holds following lines, nearest first.
	After []string `json:"after"`
}

// AssembleContext collects up to before preceding and after following
// lines around entries[index], clipped at the document edges. With
// useTranslated set, a neighbour's translation is used when it has one.
func AssembleContext(entries []domain.SubtitleEntry, index, before, after int, useTranslated bool) Window {
	w := Window{Before: []string{}, After: []string{}}
	if index < 0 || index >= len(entries) {
		return w
	}
	before = max(before, 0)
	after = max(after, 0)

	pick := func(e domain.SubtitleEntry) string {
		if useTranslated && e.TranslatedText != "" {
			return e.TranslatedText
		}
		return e.OriginalText
	}

	for _, e := range entries[max(0, index-before):index] {
		w.Before = append(w.Before, pick(e))
	}
	for _, e := range entries[index+1 : min(len(entries), index+1+after)] {
		w.After = append(w.After, pick(e))
	}
	return w
}

// Placeholders used when a prompt section would otherwise be empty.
const (
	NoGlossaryEntries = "No custom dictionary entries provided."
	NoContextBefore   = "No preceding context."
	NoContextAfter    = "No following context."
)

// RenderGlossary lists glossary pairs one per line in insertion order.
func RenderGlossary(g *domain.Glossary) string {
	entries := g.Entries()
	if len(entries) == 0 {
		return NoGlossaryEntries
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, "- '"+e.Source+"' -> '"+e.Target+"'")
	}
	return strings.Join(lines, "\n")
}
