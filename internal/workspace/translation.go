package workspace

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/srtwork/srtwork-server/internal/domain"
	domainerrors "github.com/srtwork/srtwork-server/internal/errors"
	"github.com/srtwork/srtwork-server/internal/sse"
	"github.com/srtwork/srtwork-server/internal/translate"
)

// job is a translation captured against the snapshot at request time.
type job struct {
	index      int
	entry      domain.SubtitleEntry
	generation uint64
	request    translate.Request
}

// Translate translates the entry at index and waits for the result.
// On failure the entry is left untouched.
func (w *Workspace) Translate(ctx context.Context, index int) (domain.SubtitleEntry, error) {
	j, err := w.beginTranslation(index)
	if err != nil {
		return domain.SubtitleEntry{}, err
	}
	return w.runTranslation(ctx, j)
}

// StartTranslation marks the entry at index as loading and translates it
// in the background. The result is published as an event. The work is
// detached from ctx's cancellation.
func (w *Workspace) StartTranslation(ctx context.Context, index int) (domain.SubtitleEntry, error) {
	j, err := w.beginTranslation(index)
	if err != nil {
		return domain.SubtitleEntry{}, err
	}
	go func() {
		_, _ = w.runTranslation(context.WithoutCancel(ctx), j)
	}()
	return j.entry, nil
}

// PromptPreview renders the prompt Translate would send for index.
func (w *Workspace) PromptPreview(index int) (string, error) {
	s := w.Snapshot()
	if _, ok := s.Document.At(index); !ok {
		return "", domainerrors.NotFoundf("no entry at index %d", index)
	}
	return w.translator.Prompt(w.buildRequest(s, index)), nil
}

func (w *Workspace) buildRequest(s *State, index int) translate.Request {
	entry, _ := s.Document.At(index)
	settings := s.Settings

	var guidance string
	if p, ok := w.presets.Get(settings.Preset); ok {
		guidance = p.Guidance
	}

	return translate.Request{
		Text:           entry.OriginalText,
		Context:        translate.AssembleContext(s.Document.Entries, index, settings.ContextBefore, settings.ContextAfter, settings.UseTranslatedContext),
		Glossary:       s.Glossary,
		SourceLanguage: s.EffectiveSourceLanguage(),
		Guidance:       guidance,
	}
}

func (w *Workspace) beginTranslation(index int) (job, error) {
	if !w.translator.Configured() {
		return job{}, translate.ErrNotConfigured
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return job{}, ErrClosed
	}
	s := w.state
	entry, ok := s.Document.At(index)
	if !ok {
		w.mu.Unlock()
		return job{}, domainerrors.NotFoundf("no entry at index %d", index)
	}
	j := job{
		index:      index,
		entry:      entry,
		generation: s.Generation,
		request:    w.buildRequest(s, index),
	}
	w.state = s.withLoading(entry.ID, 1)
	w.inflight.Add(1)
	w.mu.Unlock()

	w.emitter.Emit(sse.NewTranslationStartedEvent(w.id, index, entry.ID))
	return j, nil
}

func (w *Workspace) runTranslation(ctx context.Context, j job) (domain.SubtitleEntry, error) {
	defer w.inflight.Done()

	start := time.Now()
	text, err := w.translator.Translate(ctx, j.request)
	if err != nil {
		w.finishLoading(j)
		return domain.SubtitleEntry{}, w.translationFailed(j, err)
	}

	w.mu.Lock()
	if w.state.Generation != j.generation {
		w.mu.Unlock()
		w.logger.Debug("dropping translation for replaced document", "entry_id", j.entry.ID)
		return domain.SubtitleEntry{}, domainerrors.Conflict("document was replaced while the line was being translated")
	}
	next, _ := w.state.Document.ReplaceEntry(j.entry.ID, func(e domain.SubtitleEntry) domain.SubtitleEntry {
		e.TranslatedText = text
		e.IsEdited = false
		return e
	})
	s := w.state.withLoading(j.entry.ID, -1)
	s.Document = next
	w.state = s
	w.reindex(next, j.entry.ID)
	w.mu.Unlock()

	updated, _ := next.At(j.index)
	if updated.ID != j.entry.ID {
		updated, _ = next.Entry(j.entry.ID)
	}

	w.logger.Info("line translated",
		"index", j.index,
		"entry_id", j.entry.ID,
		"duration", time.Since(start),
	)
	w.emitter.Emit(sse.NewTranslatedEvent(w.id, j.index, updated))
	return updated, nil
}

func (w *Workspace) finishLoading(j job) {
	w.mu.Lock()
	defer w.mu.Unlock()
	// A load since the job started already reset the loading map.
	if w.state.Generation == j.generation {
		w.state = w.state.withLoading(j.entry.ID, -1)
	}
}

// translationFailed logs and publishes a failure and returns the error
// the blocking caller sees.
func (w *Workspace) translationFailed(j job, err error) error {
	kind := "error"
	var te *translate.TranslationError
	if errors.As(err, &te) {
		kind = string(te.Kind)
	}

	w.logger.Warn("translation failed",
		"index", j.index,
		"entry_id", j.entry.ID,
		"kind", kind,
		"error", err,
	)
	w.emitter.Emit(sse.NewTranslationFailedEvent(w.id, j.index, j.entry.ID, kind, err.Error()))

	var de *domainerrors.Error
	if errors.As(err, &de) {
		return de
	}
	return domainerrors.Upstream("translation failed", err).WithDetails(map[string]string{
		"kind":  kind,
		"index": strconv.Itoa(j.index),
	})
}
