package workspace

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/srtwork/srtwork-server/internal/domain"
	domainerrors "github.com/srtwork/srtwork-server/internal/errors"
	"github.com/srtwork/srtwork-server/internal/normalize"
	"github.com/srtwork/srtwork-server/internal/search"
	"github.com/srtwork/srtwork-server/internal/srt"
	"github.com/srtwork/srtwork-server/internal/sse"
	"github.com/srtwork/srtwork-server/internal/translate"
	"github.com/srtwork/srtwork-server/internal/validation"
)

// languageSampleSize is how many leading entries feed language detection.
const languageSampleSize = 5

// Translator is the part of translate.Gateway a workspace uses.
type Translator interface {
	Configured() bool
	DetectLanguage(ctx context.Context, sample string) (string, error)
	Translate(ctx context.Context, r translate.Request) (string, error)
	Prompt(r translate.Request) string
}

// EventEmitter is the interface for emitting SSE events.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter discards events.
type NoopEmitter struct{}

// Emit implements EventEmitter.
func (NoopEmitter) Emit(any) {}

// Options configures a Workspace.
type Options struct {
	ID         string
	Translator Translator
	Emitter    EventEmitter
	Presets    *translate.Presets
	Validator  *validation.Validator
	Settings   domain.Settings
	Logger     *slog.Logger
}

// Workspace is one translation session: a subtitle document, its
// glossary and the interaction state around them.
type Workspace struct {
	id         string
	createdAt  time.Time
	translator Translator
	emitter    EventEmitter
	presets    *translate.Presets
	validator  *validation.Validator
	index      *search.LineIndex
	logger     *slog.Logger

	mu    sync.Mutex
	state *State

	// inflight tracks background language detection and translations.
	// Add is only called under mu while closed is false.
	inflight sync.WaitGroup
	closed   bool
}

// New creates an empty workspace.
func New(opts Options) (*Workspace, error) {
	if opts.Translator == nil {
		return nil, fmt.Errorf("workspace: translator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("workspace_id", opts.ID)

	emitter := opts.Emitter
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	presets := opts.Presets
	if presets == nil {
		presets = translate.DefaultPresets()
	}
	v := opts.Validator
	if v == nil {
		v = validation.New()
	}
	settings := opts.Settings
	if settings == (domain.Settings{}) {
		settings = domain.DefaultSettings()
	}

	index, err := search.NewLineIndex(logger)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}

	return &Workspace{
		id:         opts.ID,
		createdAt:  time.Now(),
		translator: opts.Translator,
		emitter:    emitter,
		presets:    presets,
		validator:  v,
		index:      index,
		logger:     logger,
		state:      initialState(settings),
	}, nil
}

// ID returns the workspace id.
func (w *Workspace) ID() string {
	return w.id
}

// CreatedAt returns when the workspace was created.
func (w *Workspace) CreatedAt() time.Time {
	return w.createdAt
}

// Snapshot returns the current state. The returned value is shared and
// must not be modified.
func (w *Workspace) Snapshot() *State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// ErrClosed is returned for work started on a workspace after Close.
var ErrClosed = domainerrors.NotFound("workspace has been closed")

// Close refuses further background work, waits for what is running to
// finish or ctx to expire, then releases the line index. Closing twice
// is a no-op.
func (w *Workspace) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("closing workspace with translations still in flight")
	}
	return w.index.Close()
}

// LoadResult describes a completed document load.
type LoadResult struct {
	Generation uint64
	EntryCount int
	Skipped    []srt.SkippedBlock
}

// Load parses SRT text and replaces the document with it.
func (w *Workspace) Load(ctx context.Context, content string) (LoadResult, error) {
	return w.load(ctx, srt.ParseReport(content))
}

// LoadFormat decodes subtitles in the given format and replaces the
// document with them.
func (w *Workspace) LoadFormat(ctx context.Context, content []byte, format srt.Format) (LoadResult, error) {
	if format == srt.FormatSRT {
		return w.Load(ctx, string(content))
	}
	report, err := srt.Decode(content, format)
	if err != nil {
		return LoadResult{}, domainerrors.Validationf("cannot read %s subtitles: %v", format, err)
	}
	return w.load(ctx, report)
}

func (w *Workspace) load(ctx context.Context, report srt.Report) (LoadResult, error) {
	for _, skip := range report.Skipped {
		w.logger.Debug("skipped subtitle block",
			"block", skip.Block,
			"reason", string(skip.Reason),
			"first_line", skip.FirstLine,
		)
	}

	// The index is swapped under the state lock so it never disagrees
	// with the published document.
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return LoadResult{}, ErrClosed
	}
	if err := w.index.Replace(report.Entries); err != nil {
		w.mu.Unlock()
		return LoadResult{}, domainerrors.Internal("failed to index subtitles", err)
	}
	next := initialState(w.state.Settings)
	next.Glossary = w.state.Glossary
	next.Document = domain.NewDocument(report.Entries)
	next.Generation = w.state.Generation + 1
	w.state = next
	w.mu.Unlock()

	result := LoadResult{
		Generation: next.Generation,
		EntryCount: len(report.Entries),
		Skipped:    report.Skipped,
	}
	if result.Skipped == nil {
		result.Skipped = []srt.SkippedBlock{}
	}

	w.logger.Info("document loaded",
		"entries", result.EntryCount,
		"skipped", len(report.Skipped),
		"generation", result.Generation,
	)
	w.emitter.Emit(sse.NewDocumentLoadedEvent(w.id, result.Generation, result.EntryCount, len(report.Skipped)))

	if result.EntryCount > 0 {
		w.detectLanguage(ctx, next.Generation, next.Document.Sample(languageSampleSize))
	}
	return result, nil
}

// detectLanguage runs detection in the background. A result arriving
// after another load is dropped.
func (w *Workspace) detectLanguage(ctx context.Context, generation uint64, sample string) {
	if !w.translator.Configured() {
		w.logger.Info("language detection skipped, translation service not configured")
		return
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.inflight.Done()

		lang, err := w.translator.DetectLanguage(context.WithoutCancel(ctx), sample)
		if err != nil {
			w.logger.Warn("language detection failed", "error", err)
			return
		}

		w.mu.Lock()
		if w.state.Generation != generation {
			w.mu.Unlock()
			w.logger.Debug("dropping language detection for replaced document", "generation", generation)
			return
		}
		next := w.state.clone()
		next.SourceLanguage = lang
		w.state = next
		w.mu.Unlock()

		w.logger.Info("source language detected", "language", lang)
		w.emitter.Emit(sse.NewLanguageDetectedEvent(w.id, generation, lang))
	}()
}

// UpdateSettings validates and applies a partial settings change.
func (w *Workspace) UpdateSettings(patch domain.SettingsPatch) (domain.Settings, error) {
	if err := w.validator.Validate(patch); err != nil {
		return domain.Settings{}, err
	}
	if patch.Preset != nil {
		if _, ok := w.presets.Get(*patch.Preset); !ok {
			return domain.Settings{}, domainerrors.ValidationWithDetails("validation failed", map[string]string{
				"preset": fmt.Sprintf("unknown preset %q", *patch.Preset),
			})
		}
	}

	if patch.SourceLanguage != nil {
		lang := strings.TrimSpace(*patch.SourceLanguage)
		if name := normalize.Language(lang); name != "" {
			lang = name
		}
		patch.SourceLanguage = &lang
	}

	w.mu.Lock()
	next := w.state.clone()
	next.Settings = patch.Apply(w.state.Settings)
	w.state = next
	w.mu.Unlock()

	return next.Settings, nil
}

// Presets returns the preset catalogue the workspace draws guidance from.
func (w *Workspace) Presets() *translate.Presets {
	return w.presets
}

// Search finds lines by free text.
func (w *Workspace) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if params.Field != "" && params.Field != search.FieldOriginal && params.Field != search.FieldTranslated {
		return nil, domainerrors.Validationf("unknown search field %q", params.Field)
	}
	res, err := w.index.Search(ctx, params)
	if err != nil {
		return nil, domainerrors.Internal("search failed", err)
	}
	return res, nil
}

// reindex refreshes the search index for every position holding id.
// Failures are logged; the index only backs lookups. Callers hold w.mu.
func (w *Workspace) reindex(doc domain.Document, id int) {
	for i, e := range doc.Entries {
		if e.ID != id {
			continue
		}
		if err := w.index.Update(i, e); err != nil {
			w.logger.Warn("failed to reindex line", "index", i, "error", err)
		}
	}
}
