package workspace

import (
	"strings"

	"github.com/srtwork/srtwork-server/internal/domain"
	domainerrors "github.com/srtwork/srtwork-server/internal/errors"
	"github.com/srtwork/srtwork-server/internal/glossary"
	"github.com/srtwork/srtwork-server/internal/sse"
)

// BeginEdit opens the field of entry id for editing. Any other entry
// being edited in the same field is dropped without saving.
func (w *Workspace) BeginEdit(id int, field domain.Field) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.state.Document.Entry(id); !ok {
		return domainerrors.NotFoundf("no entry with id %d", id)
	}
	w.state = w.state.withEditing(field, &id)
	return nil
}

// CancelEdit closes the field's editor without saving.
func (w *Workspace) CancelEdit(field domain.Field) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = w.state.withEditing(field, nil)
}

// SaveEdit stores text in the field of entry id and closes the editor.
// The field must currently be open for that entry. Saving a translation
// marks the entry as edited; saving the original does not.
func (w *Workspace) SaveEdit(id int, field domain.Field, text string) (domain.SubtitleEntry, error) {
	text = strings.TrimSpace(text)

	w.mu.Lock()
	editing := w.state.EditingID(field)
	if editing == nil || *editing != id {
		w.mu.Unlock()
		return domain.SubtitleEntry{}, domainerrors.Conflictf("entry %d is not being edited (%s)", id, field)
	}
	if text == "" {
		w.mu.Unlock()
		return domain.SubtitleEntry{}, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"text": "must not be blank",
		})
	}

	doc, ok := w.state.Document.ReplaceEntry(id, func(e domain.SubtitleEntry) domain.SubtitleEntry {
		if field == domain.FieldOriginal {
			e.OriginalText = text
			return e
		}
		e.TranslatedText = text
		e.IsEdited = true
		return e
	})
	if !ok {
		w.mu.Unlock()
		return domain.SubtitleEntry{}, domainerrors.NotFoundf("no entry with id %d", id)
	}
	next := w.state.withEditing(field, nil)
	next.Document = doc
	w.state = next
	w.reindex(doc, id)
	w.mu.Unlock()

	index, entry := position(doc, id)
	w.logger.Info("entry edited", "entry_id", id, "field", string(field))
	w.emitter.Emit(sse.NewEntryUpdatedEvent(w.id, index, entry, field))
	return entry, nil
}

// Tokens splits one side of an entry into words for display. Words on
// the translated side are selectable only once a person has edited it.
func (w *Workspace) Tokens(id int, side domain.Side) ([]glossary.Token, error) {
	entry, ok := w.Snapshot().Document.Entry(id)
	if !ok {
		return nil, domainerrors.NotFoundf("no entry with id %d", id)
	}
	if side == domain.SideTranslated {
		return glossary.Tokenize(entry.TranslatedText, entry.IsEdited), nil
	}
	return glossary.Tokenize(entry.OriginalText, true), nil
}

// position returns the index and value of the first entry with id.
func position(doc domain.Document, id int) (int, domain.SubtitleEntry) {
	for i, e := range doc.Entries {
		if e.ID == id {
			return i, e
		}
	}
	return -1, domain.SubtitleEntry{}
}
