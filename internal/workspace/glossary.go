package workspace

import (
	"context"
	"strings"

	"github.com/srtwork/srtwork-server/internal/domain"
	domainerrors "github.com/srtwork/srtwork-server/internal/errors"
	"github.com/srtwork/srtwork-server/internal/glossary"
	"github.com/srtwork/srtwork-server/internal/sse"
)

// SelectionOutcome says what a word click did.
type SelectionOutcome string

// Selection outcomes.
const (
	// SelectionIgnored: the word was not selectable.
	SelectionIgnored SelectionOutcome = "ignored"
	// SelectionSelected: the word is now the pending half of a pair.
	SelectionSelected SelectionOutcome = "selected"
	// SelectionPaired: the word completed a pair and a glossary entry
	// was written.
	SelectionPaired SelectionOutcome = "paired"
)

// SelectionResult reports the effect of SelectWord.
type SelectionResult struct {
	Outcome   SelectionOutcome
	Selection *domain.WordSelection
	Pair      *domain.GlossaryEntry
}

// SelectWord handles a click on a word of a line. Picking a word on one
// side of a line and then a word on the other side of the same line
// stores the pair, original to translated, in the glossary. Any other
// second pick replaces the first.
func (w *Workspace) SelectWord(lineID int, raw string, side domain.Side) (SelectionResult, error) {
	w.mu.Lock()

	entry, ok := w.state.Document.Entry(lineID)
	if !ok {
		w.mu.Unlock()
		return SelectionResult{}, domainerrors.NotFoundf("no entry with id %d", lineID)
	}

	word := glossary.CleanWord(raw)
	if word == "" || (side == domain.SideTranslated && !entry.IsEdited) {
		sel := w.state.Selection
		w.mu.Unlock()
		return SelectionResult{Outcome: SelectionIgnored, Selection: sel}, nil
	}

	pick := domain.WordSelection{LineID: lineID, Word: word, Side: side}
	prev := w.state.Selection

	if prev == nil || !prev.Pairs(pick) {
		next := w.state.clone()
		next.Selection = &pick
		w.state = next
		w.mu.Unlock()

		w.emitter.Emit(sse.NewSelectionUpdatedEvent(w.id, &pick))
		return SelectionResult{Outcome: SelectionSelected, Selection: &pick}, nil
	}

	pair := domain.GlossaryEntry{Source: prev.Word, Target: pick.Word}
	if pick.Side == domain.SideOriginal {
		pair = domain.GlossaryEntry{Source: pick.Word, Target: prev.Word}
	}

	g := w.state.Glossary.Clone()
	g.Set(pair.Source, pair.Target)
	next := w.state.clone()
	next.Glossary = g
	next.Selection = nil
	w.state = next
	w.mu.Unlock()

	w.logger.Info("glossary pair selected", "source", pair.Source, "target", pair.Target, "line_id", lineID)
	w.emitter.Emit(sse.NewGlossaryUpdatedEvent(w.id, g))
	w.emitter.Emit(sse.NewSelectionUpdatedEvent(w.id, nil))
	return SelectionResult{Outcome: SelectionPaired, Pair: &pair}, nil
}

// ClearSelection drops the pending word, if any.
func (w *Workspace) ClearSelection() {
	w.mu.Lock()
	if w.state.Selection == nil {
		w.mu.Unlock()
		return
	}
	next := w.state.clone()
	next.Selection = nil
	w.state = next
	w.mu.Unlock()

	w.emitter.Emit(sse.NewSelectionUpdatedEvent(w.id, nil))
}

// Glossary returns the current glossary. It must not be modified.
func (w *Workspace) Glossary() *domain.Glossary {
	return w.Snapshot().Glossary
}

// AddGlossaryEntry sets source to translate as target. An existing
// source keeps its position.
func (w *Workspace) AddGlossaryEntry(source, target string) (*domain.Glossary, error) {
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)

	details := map[string]string{}
	if source == "" {
		details["source"] = "must not be blank"
	}
	if target == "" {
		details["target"] = "must not be blank"
	}
	if len(details) > 0 {
		return nil, domainerrors.ValidationWithDetails("validation failed", details)
	}

	return w.updateGlossary(func(g *domain.Glossary) error {
		g.Set(source, target)
		return nil
	})
}

// RemoveGlossaryEntry deletes source from the glossary.
func (w *Workspace) RemoveGlossaryEntry(source string) (*domain.Glossary, error) {
	return w.updateGlossary(func(g *domain.Glossary) error {
		if !g.Delete(source) {
			return domainerrors.NotFoundf("glossary has no entry for %q", source)
		}
		return nil
	})
}

func (w *Workspace) updateGlossary(fn func(g *domain.Glossary) error) (*domain.Glossary, error) {
	w.mu.Lock()
	g := w.state.Glossary.Clone()
	if err := fn(g); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	next := w.state.clone()
	next.Glossary = g
	w.state = next
	w.mu.Unlock()

	w.emitter.Emit(sse.NewGlossaryUpdatedEvent(w.id, g))
	return g, nil
}

// ImportPreview summarises a staged glossary import against the current
// glossary.
type ImportPreview struct {
	Count   int
	Added   []string
	Removed []string
	Changed []string
}

// StageGlossaryImport parses raw as a glossary file and holds it until
// confirmed or discarded. The current glossary is not touched.
func (w *Workspace) StageGlossaryImport(raw []byte) (ImportPreview, error) {
	incoming, err := domain.ParseGlossary(raw)
	if err != nil {
		return ImportPreview{}, domainerrors.ValidationWithDetails(
			"glossary file must be a JSON object mapping words to translations",
			map[string]string{"file": err.Error()},
		)
	}

	w.mu.Lock()
	preview := previewImport(w.state.Glossary, incoming)
	next := w.state.clone()
	next.PendingImport = incoming
	w.state = next
	w.mu.Unlock()

	w.logger.Info("glossary import staged",
		"entries", preview.Count,
		"added", len(preview.Added),
		"removed", len(preview.Removed),
		"changed", len(preview.Changed),
	)
	return preview, nil
}

// ConfirmGlossaryImport replaces the glossary with the staged import.
func (w *Workspace) ConfirmGlossaryImport() (*domain.Glossary, error) {
	w.mu.Lock()
	pending := w.state.PendingImport
	if pending == nil {
		w.mu.Unlock()
		return nil, domainerrors.Conflict("no glossary import is staged")
	}
	next := w.state.clone()
	next.Glossary = pending
	next.PendingImport = nil
	w.state = next
	w.mu.Unlock()

	w.logger.Info("glossary import confirmed", "entries", pending.Len())
	w.emitter.Emit(sse.NewGlossaryUpdatedEvent(w.id, pending))
	return pending, nil
}

// DiscardGlossaryImport drops the staged import and reports whether
// there was one.
func (w *Workspace) DiscardGlossaryImport() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.PendingImport == nil {
		return false
	}
	next := w.state.clone()
	next.PendingImport = nil
	w.state = next
	return true
}

func previewImport(current, incoming *domain.Glossary) ImportPreview {
	p := ImportPreview{
		Count:   incoming.Len(),
		Added:   []string{},
		Removed: []string{},
		Changed: []string{},
	}
	for _, e := range incoming.Entries() {
		old, ok := current.Get(e.Source)
		switch {
		case !ok:
			p.Added = append(p.Added, e.Source)
		case old != e.Target:
			p.Changed = append(p.Changed, e.Source)
		}
	}
	for _, e := range current.Entries() {
		if _, ok := incoming.Get(e.Source); !ok {
			p.Removed = append(p.Removed, e.Source)
		}
	}
	return p
}

// UsageLine is one line containing a glossary source term.
type UsageLine struct {
	Index      int
	LineID     int
	Original   string
	Translated string
	// TargetPresent reports whether the glossary target appears in the
	// line's translation.
	TargetPresent bool
}

// Usage lists where a term occurs in the document.
type Usage struct {
	Term       string
	Target     string
	InGlossary bool
	Lines      []UsageLine
}

// GlossaryUsage finds the lines whose original text contains term and
// checks each translation for the glossary's target.
func (w *Workspace) GlossaryUsage(ctx context.Context, term string) (Usage, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Usage{}, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"term": "must not be blank",
		})
	}

	// Positions and snapshot must describe the same document.
	w.mu.Lock()
	s := w.state
	positions, err := w.index.Occurrences(ctx, term)
	w.mu.Unlock()
	if err != nil {
		return Usage{}, domainerrors.Internal("glossary usage lookup failed", err)
	}

	target, inGlossary := s.Glossary.Get(term)
	usage := Usage{Term: term, Target: target, InGlossary: inGlossary, Lines: []UsageLine{}}
	for _, i := range positions {
		e, ok := s.Document.At(i)
		if !ok {
			continue
		}
		usage.Lines = append(usage.Lines, UsageLine{
			Index:         i,
			LineID:        e.ID,
			Original:      e.OriginalText,
			Translated:    e.TranslatedText,
			TargetPresent: inGlossary && e.TranslatedText != "" && strings.Contains(e.TranslatedText, target),
		})
	}
	return usage, nil
}
