package workspace

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srtwork/srtwork-server/internal/domain"
	domainerrors "github.com/srtwork/srtwork-server/internal/errors"
	"github.com/srtwork/srtwork-server/internal/sse"
	"github.com/srtwork/srtwork-server/internal/translate"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:02,000
I see the house.

2
00:00:03,000 --> 00:00:04,000
It is big.

3
00:00:05,000 --> 00:00:06,000
The house is red.

4
00:00:07,000 --> 00:00:08,000
Go home.`

type fakeTranslator struct {
	mu         sync.Mutex
	configured bool
	detect     func(sample string) (string, error)
	translate  func(r translate.Request) (string, error)
	samples    []string
	requests   []translate.Request
}

func newFakeTranslator() *fakeTranslator {
	return &fakeTranslator{
		configured: true,
		detect:     func(string) (string, error) { return "English", nil },
		translate:  func(r translate.Request) (string, error) { return "T:" + r.Text, nil },
	}
}

func (f *fakeTranslator) Configured() bool { return f.configured }

func (f *fakeTranslator) DetectLanguage(_ context.Context, sample string) (string, error) {
	f.mu.Lock()
	f.samples = append(f.samples, sample)
	detect := f.detect
	f.mu.Unlock()
	return detect(sample)
}

func (f *fakeTranslator) Translate(_ context.Context, r translate.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	fn := f.translate
	f.mu.Unlock()
	return fn(r)
}

func (f *fakeTranslator) Prompt(r translate.Request) string {
	return translate.ComposePrompt(r)
}

func (f *fakeTranslator) lastRequest() translate.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event.(sse.Event))
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestWorkspace(t *testing.T, tr *fakeTranslator) (*Workspace, *recordingEmitter) {
	t.Helper()
	em := &recordingEmitter{}
	w, err := New(Options{ID: "ws-test", Translator: tr, Emitter: em})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close(context.Background()) })
	return w, em
}

func loadSample(t *testing.T, w *Workspace) {
	t.Helper()
	res, err := w.Load(context.Background(), sampleSRT)
	require.NoError(t, err)
	require.Equal(t, 4, res.EntryCount)
	w.inflight.Wait()
}

func TestLoad_ReplacesDocumentAndDetectsLanguage(t *testing.T) {
	tr := newFakeTranslator()
	w, em := newTestWorkspace(t, tr)

	res, err := w.Load(context.Background(), sampleSRT+"\n\n5\nbroken")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Generation)
	assert.Equal(t, 4, res.EntryCount)
	require.Len(t, res.Skipped, 1)

	w.inflight.Wait()
	s := w.Snapshot()
	assert.Equal(t, 4, s.Document.Len())
	assert.Equal(t, "English", s.SourceLanguage)
	assert.Equal(t, []string{"I see the house. It is big. The house is red. Go home."}, tr.samples)
	assert.Equal(t, []sse.EventType{sse.EventDocumentLoaded, sse.EventLanguageDetected}, em.types())
}

func TestLoad_ResetsInteractionStateButKeepsGlossary(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())
	loadSample(t, w)

	_, err := w.AddGlossaryEntry("house", "ⵜⵉⴳⵎⵎⵉ")
	require.NoError(t, err)
	require.NoError(t, w.BeginEdit(2, domain.FieldTranslation))
	_, err = w.SelectWord(1, "house", domain.SideOriginal)
	require.NoError(t, err)
	_, err = w.StageGlossaryImport([]byte(`{"a":"b"}`))
	require.NoError(t, err)

	loadSample(t, w)
	s := w.Snapshot()
	assert.Equal(t, uint64(2), s.Generation)
	assert.Nil(t, s.EditingTranslationID)
	assert.Nil(t, s.Selection)
	assert.Nil(t, s.PendingImport)
	assert.Empty(t, s.LoadingIDs())
	assert.Equal(t, 1, s.Glossary.Len())
}

func TestLoad_EmptyInputClearsDocument(t *testing.T) {
	tr := newFakeTranslator()
	w, _ := newTestWorkspace(t, tr)
	loadSample(t, w)
	require.Equal(t, "English", w.Snapshot().SourceLanguage)

	res, err := w.Load(context.Background(), "  \n ")
	require.NoError(t, err)
	assert.Equal(t, 0, res.EntryCount)
	w.inflight.Wait()

	s := w.Snapshot()
	assert.Equal(t, 0, s.Document.Len())
	assert.Equal(t, "", s.SourceLanguage)
	assert.Len(t, tr.samples, 1, "no detection for an empty document")
}

func TestLoad_DropsSupersededDetection(t *testing.T) {
	tr := newFakeTranslator()
	release := make(chan struct{})
	tr.detect = func(sample string) (string, error) {
		if strings.HasPrefix(sample, "I see") {
			<-release
			return "French", nil
		}
		return "English", nil
	}
	w, _ := newTestWorkspace(t, tr)

	_, err := w.Load(context.Background(), sampleSRT)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return len(tr.samples) == 1
	}, time.Second, 5*time.Millisecond)

	_, err = w.Load(context.Background(), "1\n00:00:01,000 --> 00:00:02,000\nHello")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return w.Snapshot().SourceLanguage == "English" }, time.Second, 5*time.Millisecond)

	close(release)
	w.inflight.Wait()
	assert.Equal(t, "English", w.Snapshot().SourceLanguage)
}

func TestLoad_DetectionFailureAndUnconfigured(t *testing.T) {
	tr := newFakeTranslator()
	tr.detect = func(string) (string, error) { return translate.UnknownLanguage, nil }
	w, _ := newTestWorkspace(t, tr)
	loadSample(t, w)
	assert.Equal(t, translate.UnknownLanguage, w.Snapshot().SourceLanguage)

	unconfigured := newFakeTranslator()
	unconfigured.configured = false
	w2, _ := newTestWorkspace(t, unconfigured)
	loadSample(t, w2)
	assert.Equal(t, "", w2.Snapshot().SourceLanguage)
	assert.Equal(t, "Source", w2.Snapshot().LanguageLabel())
	assert.Empty(t, unconfigured.samples)
}

func TestLoadFormat_WebVTT(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())

	vtt := "WEBVTT\n\n00:00:01.000 --> 00:00:02.500\nHello there\n\n00:00:03.000 --> 00:00:04.000\nGeneral Kenobi\n"
	res, err := w.LoadFormat(context.Background(), []byte(vtt), "vtt")
	require.NoError(t, err)
	assert.Equal(t, 2, res.EntryCount)

	e, ok := w.Snapshot().Document.At(1)
	require.True(t, ok)
	assert.Equal(t, 2, e.ID)
	assert.Equal(t, "00:00:03,000", e.StartTime)
	assert.Equal(t, "General Kenobi", e.OriginalText)
}

func TestTranslate_AppliesResult(t *testing.T) {
	tr := newFakeTranslator()
	w, em := newTestWorkspace(t, tr)
	loadSample(t, w)

	entry, err := w.Translate(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, entry.ID)
	assert.Equal(t, "T:The house is red.", entry.TranslatedText)
	assert.False(t, entry.IsEdited)

	req := tr.lastRequest()
	assert.Equal(t, "The house is red.", req.Text)
	assert.Equal(t, []string{"I see the house.", "It is big."}, req.Context.Before)
	assert.Equal(t, []string{"Go home."}, req.Context.After)
	assert.Equal(t, "English", req.SourceLanguage)

	s := w.Snapshot()
	got, _ := s.Document.At(2)
	assert.Equal(t, "T:The house is red.", got.TranslatedText)
	assert.False(t, s.IsLoading(3))
	assert.Contains(t, em.types(), sse.EventTranslationStarted)
	assert.Contains(t, em.types(), sse.EventTranslated)
}

func TestTranslate_UsesTranslatedContextAndClearsEdited(t *testing.T) {
	tr := newFakeTranslator()
	w, _ := newTestWorkspace(t, tr)
	loadSample(t, w)

	require.NoError(t, w.BeginEdit(2, domain.FieldTranslation))
	_, err := w.SaveEdit(2, domain.FieldTranslation, "ⵉⵎⵇⵇⵓⵔ")
	require.NoError(t, err)

	_, err = w.Translate(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"I see the house.", "ⵉⵎⵇⵇⵓⵔ"}, tr.lastRequest().Context.Before)

	off := false
	_, err = w.UpdateSettings(domain.SettingsPatch{UseTranslatedContext: &off})
	require.NoError(t, err)
	_, err = w.Translate(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"I see the house.", "It is big."}, tr.lastRequest().Context.Before)

	// Retranslating an edited line hands it back to the model.
	entry, err := w.Translate(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, entry.IsEdited)
	assert.Equal(t, "T:It is big.", entry.TranslatedText)
}

func TestTranslate_FailureLeavesEntryUntouched(t *testing.T) {
	tr := newFakeTranslator()
	tr.translate = func(translate.Request) (string, error) {
		return "", &translate.TranslationError{Kind: translate.FailureBlocked, Engine: "fake", Err: translate.ErrBlocked}
	}
	w, em := newTestWorkspace(t, tr)
	loadSample(t, w)

	_, err := w.Translate(context.Background(), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUpstream)
	assert.ErrorIs(t, err, translate.ErrBlocked)

	s := w.Snapshot()
	e, _ := s.Document.At(0)
	assert.False(t, e.HasTranslation())
	assert.False(t, s.IsLoading(1))

	em.mu.Lock()
	last := em.events[len(em.events)-1]
	em.mu.Unlock()
	assert.Equal(t, sse.EventTranslationFailed, last.Type)
	assert.Equal(t, "blocked", last.Data.(sse.TranslationFailedEventData).Kind)
}

func TestTranslate_Errors(t *testing.T) {
	tr := newFakeTranslator()
	w, _ := newTestWorkspace(t, tr)
	loadSample(t, w)

	_, err := w.Translate(context.Background(), 4)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = w.Translate(context.Background(), -1)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	tr.configured = false
	_, err = w.Translate(context.Background(), 0)
	assert.ErrorIs(t, err, translate.ErrNotConfigured)
	assert.ErrorIs(t, err, domainerrors.ErrNotConfigured)
	assert.Empty(t, w.Snapshot().LoadingIDs())
}

func TestStartTranslation_TracksLoadingAndCompletesOutOfOrder(t *testing.T) {
	tr := newFakeTranslator()
	gates := map[string]chan struct{}{
		"I see the house.": make(chan struct{}),
		"It is big.":       make(chan struct{}),
	}
	tr.translate = func(r translate.Request) (string, error) {
		<-gates[r.Text]
		return "T:" + r.Text, nil
	}
	w, _ := newTestWorkspace(t, tr)
	loadSample(t, w)

	_, err := w.StartTranslation(context.Background(), 0)
	require.NoError(t, err)
	_, err = w.StartTranslation(context.Background(), 1)
	require.NoError(t, err)

	s := w.Snapshot()
	assert.True(t, s.IsLoading(1))
	assert.True(t, s.IsLoading(2))
	assert.ElementsMatch(t, []int{1, 2}, s.LoadingIDs())

	close(gates["It is big."])
	require.Eventually(t, func() bool { return !w.Snapshot().IsLoading(2) }, time.Second, 5*time.Millisecond)
	assert.True(t, w.Snapshot().IsLoading(1))

	close(gates["I see the house."])
	w.inflight.Wait()

	s = w.Snapshot()
	assert.Empty(t, s.LoadingIDs())
	a, _ := s.Document.At(0)
	b, _ := s.Document.At(1)
	assert.Equal(t, "T:I see the house.", a.TranslatedText)
	assert.Equal(t, "T:It is big.", b.TranslatedText)
}

func TestStartTranslation_ResultForReplacedDocumentIsDropped(t *testing.T) {
	tr := newFakeTranslator()
	release := make(chan struct{})
	tr.translate = func(r translate.Request) (string, error) {
		<-release
		return "late", nil
	}
	w, _ := newTestWorkspace(t, tr)
	loadSample(t, w)

	_, err := w.StartTranslation(context.Background(), 0)
	require.NoError(t, err)
	_, err = w.Load(context.Background(), sampleSRT)
	require.NoError(t, err)
	assert.Empty(t, w.Snapshot().LoadingIDs())
	close(release)
	w.inflight.Wait()

	e, _ := w.Snapshot().Document.At(0)
	assert.False(t, e.HasTranslation())
	assert.Empty(t, w.Snapshot().LoadingIDs())
}

func TestEditing(t *testing.T) {
	w, em := newTestWorkspace(t, newFakeTranslator())
	loadSample(t, w)

	assert.ErrorIs(t, w.BeginEdit(99, domain.FieldTranslation), domainerrors.ErrNotFound)

	_, err := w.SaveEdit(1, domain.FieldTranslation, "x")
	assert.ErrorIs(t, err, domainerrors.ErrConflict, "not editing")

	require.NoError(t, w.BeginEdit(1, domain.FieldTranslation))
	require.NoError(t, w.BeginEdit(2, domain.FieldTranslation))
	_, err = w.SaveEdit(1, domain.FieldTranslation, "x")
	assert.ErrorIs(t, err, domainerrors.ErrConflict, "editing moved to entry 2")

	_, err = w.SaveEdit(2, domain.FieldTranslation, "   ")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.NotNil(t, w.Snapshot().EditingTranslationID, "blank save keeps the editor open")

	entry, err := w.SaveEdit(2, domain.FieldTranslation, " ⵉⵎⵇⵇⵓⵔ ")
	require.NoError(t, err)
	assert.Equal(t, "ⵉⵎⵇⵇⵓⵔ", entry.TranslatedText)
	assert.True(t, entry.IsEdited)
	assert.Nil(t, w.Snapshot().EditingTranslationID)
	assert.Contains(t, em.types(), sse.EventEntryUpdated)

	// Original edits are independent and leave IsEdited alone.
	require.NoError(t, w.BeginEdit(2, domain.FieldOriginal))
	require.NoError(t, w.BeginEdit(3, domain.FieldTranslation))
	entry, err = w.SaveEdit(2, domain.FieldOriginal, "It is huge.")
	require.NoError(t, err)
	assert.Equal(t, "It is huge.", entry.OriginalText)
	assert.True(t, entry.IsEdited)
	assert.Nil(t, w.Snapshot().EditingOriginalID)
	require.NotNil(t, w.Snapshot().EditingTranslationID)
	assert.Equal(t, 3, *w.Snapshot().EditingTranslationID)

	w.CancelEdit(domain.FieldTranslation)
	assert.Nil(t, w.Snapshot().EditingTranslationID)
}

func editTranslation(t *testing.T, w *Workspace, id int, text string) {
	t.Helper()
	require.NoError(t, w.BeginEdit(id, domain.FieldTranslation))
	_, err := w.SaveEdit(id, domain.FieldTranslation, text)
	require.NoError(t, err)
}

func TestSelectWord_PairsOriginalAndTranslatedOnSameLine(t *testing.T) {
	w, em := newTestWorkspace(t, newFakeTranslator())
	loadSample(t, w)
	editTranslation(t, w, 3, "ⵜⵉⴳⵎⵎⵉ ⵜⴰⵣⵡⴳⴰⵖⵜ.")

	res, err := w.SelectWord(3, "house", domain.SideOriginal)
	require.NoError(t, err)
	assert.Equal(t, SelectionSelected, res.Outcome)
	require.NotNil(t, w.Snapshot().Selection)

	res, err = w.SelectWord(3, "ⵜⵉⴳⵎⵎⵉ", domain.SideTranslated)
	require.NoError(t, err)
	assert.Equal(t, SelectionPaired, res.Outcome)
	assert.Equal(t, &domain.GlossaryEntry{Source: "house", Target: "ⵜⵉⴳⵎⵎⵉ"}, res.Pair)

	s := w.Snapshot()
	assert.Nil(t, s.Selection)
	target, ok := s.Glossary.Get("house")
	require.True(t, ok)
	assert.Equal(t, "ⵜⵉⴳⵎⵎⵉ", target)
	assert.Contains(t, em.types(), sse.EventGlossaryUpdated)
}

func TestSelectWord_TranslatedFirstStillStoresOriginalAsSource(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())
	loadSample(t, w)
	editTranslation(t, w, 3, "ⵜⵉⴳⵎⵎⵉ ⵜⴰⵣⵡⴳⴰⵖⵜ.")

	_, err := w.SelectWord(3, "ⵜⴰⵣⵡⴳⴰⵖⵜ.", domain.SideTranslated)
	require.NoError(t, err)
	res, err := w.SelectWord(3, "red.", domain.SideOriginal)
	require.NoError(t, err)
	require.Equal(t, SelectionPaired, res.Outcome)
	assert.Equal(t, domain.GlossaryEntry{Source: "red", Target: "ⵜⴰⵣⵡⴳⴰⵖⵜ"}, *res.Pair)
}

func TestSelectWord_DoesNotPairAcrossLines(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())
	loadSample(t, w)
	editTranslation(t, w, 4, "ⴷⴷⵓ ⵙ ⵜⴰⴷⴷⴰⵔⵜ.")

	_, err := w.SelectWord(3, "house", domain.SideOriginal)
	require.NoError(t, err)
	res, err := w.SelectWord(4, "ⵜⴰⴷⴷⴰⵔⵜ", domain.SideTranslated)
	require.NoError(t, err)

	assert.Equal(t, SelectionSelected, res.Outcome)
	s := w.Snapshot()
	assert.Equal(t, 0, s.Glossary.Len())
	require.NotNil(t, s.Selection)
	assert.Equal(t, domain.WordSelection{LineID: 4, Word: "ⵜⴰⴷⴷⴰⵔⵜ", Side: domain.SideTranslated}, *s.Selection)
}

func TestSelectWord_SameSideReplacesSelection(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())
	loadSample(t, w)

	_, err := w.SelectWord(3, "house", domain.SideOriginal)
	require.NoError(t, err)
	_, err = w.SelectWord(3, "red!", domain.SideOriginal)
	require.NoError(t, err)
	assert.Equal(t, "red", w.Snapshot().Selection.Word)

	w.ClearSelection()
	assert.Nil(t, w.Snapshot().Selection)
}

func TestSelectWord_InertTokens(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())
	loadSample(t, w)
	_, err := w.Translate(context.Background(), 2)
	require.NoError(t, err)

	res, err := w.SelectWord(3, "?!", domain.SideOriginal)
	require.NoError(t, err)
	assert.Equal(t, SelectionIgnored, res.Outcome)

	// Model output is not selectable until a person edits it.
	res, err = w.SelectWord(3, "T:The", domain.SideTranslated)
	require.NoError(t, err)
	assert.Equal(t, SelectionIgnored, res.Outcome)
	assert.Nil(t, w.Snapshot().Selection)

	_, err = w.SelectWord(42, "house", domain.SideOriginal)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestTokens(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())
	loadSample(t, w)

	tokens, err := w.Tokens(3, domain.SideOriginal)
	require.NoError(t, err)
	var words []string
	for _, tok := range tokens {
		if tok.Selectable {
			words = append(words, tok.Word)
		}
	}
	assert.Equal(t, []string{"The", "house", "is", "red"}, words)

	_, err = w.Translate(context.Background(), 2)
	require.NoError(t, err)
	tokens, err = w.Tokens(3, domain.SideTranslated)
	require.NoError(t, err)
	for _, tok := range tokens {
		assert.False(t, tok.Selectable)
	}

	_, err = w.Tokens(9, domain.SideOriginal)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestGlossaryEntries(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())

	_, err := w.AddGlossaryEntry("house", "ⵜⵉⴳⵎⵎⵉ")
	require.NoError(t, err)
	_, err = w.AddGlossaryEntry("water", "ⴰⵎⴰⵏ")
	require.NoError(t, err)
	g, err := w.AddGlossaryEntry(" house ", "ⴰⵅⵅⴰⵎ")
	require.NoError(t, err)
	assert.Equal(t, []domain.GlossaryEntry{{Source: "house", Target: "ⴰⵅⵅⴰⵎ"}, {Source: "water", Target: "ⴰⵎⴰⵏ"}}, g.Entries())

	_, err = w.AddGlossaryEntry(" ", "x")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = w.RemoveGlossaryEntry("fire")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	before := w.Glossary()
	g, err = w.RemoveGlossaryEntry("house")
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, 2, before.Len(), "earlier snapshots are unaffected")
}

func TestGlossaryImport(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())
	_, err := w.AddGlossaryEntry("house", "ⵜⵉⴳⵎⵎⵉ")
	require.NoError(t, err)
	_, err = w.AddGlossaryEntry("sun", "ⵜⴰⴼⵓⴽⵜ")
	require.NoError(t, err)

	for _, bad := range []string{`not json`, `["house"]`, `{"house": 1}`, `{"a":"b"} {}`} {
		_, err := w.StageGlossaryImport([]byte(bad))
		assert.ErrorIs(t, err, domainerrors.ErrValidation, bad)
	}
	assert.Equal(t, 2, w.Glossary().Len())
	assert.Nil(t, w.Snapshot().PendingImport)

	preview, err := w.StageGlossaryImport([]byte(`{"house":"ⴰⵅⵅⴰⵎ","water":"ⴰⵎⴰⵏ"}`))
	require.NoError(t, err)
	assert.Equal(t, ImportPreview{Count: 2, Added: []string{"water"}, Removed: []string{"sun"}, Changed: []string{"house"}}, preview)
	assert.Equal(t, 2, w.Glossary().Len(), "staging does not apply")

	assert.True(t, w.DiscardGlossaryImport())
	assert.False(t, w.DiscardGlossaryImport())
	_, err = w.ConfirmGlossaryImport()
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	_, err = w.StageGlossaryImport([]byte(`{"house":"ⴰⵅⵅⴰⵎ","water":"ⴰⵎⴰⵏ"}`))
	require.NoError(t, err)
	g, err := w.ConfirmGlossaryImport()
	require.NoError(t, err)
	assert.Equal(t, []domain.GlossaryEntry{{Source: "house", Target: "ⴰⵅⵅⴰⵎ"}, {Source: "water", Target: "ⴰⵎⴰⵏ"}}, g.Entries())
	assert.Nil(t, w.Snapshot().PendingImport)
}

func TestExportGlossary_RoundTrips(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())
	_, err := w.AddGlossaryEntry("house", "ⵜⵉⴳⵎⵎⵉ")
	require.NoError(t, err)
	_, err = w.AddGlossaryEntry("a & b", "<c>")
	require.NoError(t, err)

	d, err := w.ExportGlossary()
	require.NoError(t, err)
	assert.Equal(t, "dictionary.json", d.Filename)
	assert.Equal(t, "{\n  \"house\": \"ⵜⵉⴳⵎⵎⵉ\",\n  \"a & b\": \"<c>\"\n}", string(d.Data))

	_, err = w.StageGlossaryImport(d.Data)
	require.NoError(t, err)
	g, err := w.ConfirmGlossaryImport()
	require.NoError(t, err)
	again, err := g.ExportJSON()
	require.NoError(t, err)
	assert.Equal(t, d.Data, again)
}

func TestExportSubtitles(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())
	loadSample(t, w)
	_, err := w.Translate(context.Background(), 0)
	require.NoError(t, err)

	d, err := w.ExportSubtitles(domain.VariantTranslated, "")
	require.NoError(t, err)
	assert.Equal(t, "translated_subtitles.srt", d.Filename)
	assert.True(t, strings.HasPrefix(string(d.Data), "1\n00:00:01,000 --> 00:00:02,000\nT:I see the house.\n\n2\n"))
	assert.Contains(t, string(d.Data), "\nIt is big.\n", "untranslated lines fall back to the original")

	d, err = w.ExportSubtitles(domain.VariantOriginal, "")
	require.NoError(t, err)
	assert.Equal(t, "original_subtitles.srt", d.Filename)
	assert.Equal(t, sampleSRT, string(d.Data))

	d, err = w.ExportSubtitles(domain.VariantOriginal, "vtt")
	require.NoError(t, err)
	assert.Equal(t, "original_subtitles.vtt", d.Filename)
	assert.True(t, strings.HasPrefix(string(d.Data), "WEBVTT"))
}

func TestUpdateSettings(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())

	five, six := 5, 6
	movie, bogus := "movie", "bogus"

	s, err := w.UpdateSettings(domain.SettingsPatch{ContextBefore: &five, Preset: &movie})
	require.NoError(t, err)
	assert.Equal(t, 5, s.ContextBefore)
	assert.Equal(t, domain.DefaultContextWindow, s.ContextAfter)
	assert.Equal(t, "movie", s.Preset)

	_, err = w.UpdateSettings(domain.SettingsPatch{ContextAfter: &six})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	_, err = w.UpdateSettings(domain.SettingsPatch{Preset: &bogus})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, "movie", w.Snapshot().Settings.Preset)
}

func TestPromptPreview(t *testing.T) {
	tr := newFakeTranslator()
	w, _ := newTestWorkspace(t, tr)
	loadSample(t, w)
	_, err := w.AddGlossaryEntry("house", "ⵜⵉⴳⵎⵎⵉ")
	require.NoError(t, err)

	movie := "movie"
	_, err = w.UpdateSettings(domain.SettingsPatch{Preset: &movie})
	require.NoError(t, err)

	p, err := w.PromptPreview(0)
	require.NoError(t, err)
	assert.Contains(t, p, "from English to")
	assert.Contains(t, p, "- 'house' -> 'ⵜⵉⴳⵎⵎⵉ'")
	assert.Contains(t, p, "STYLE:")
	assert.Contains(t, p, "CONTEXT (Before):\n"+translate.NoContextBefore)
	assert.Contains(t, p, "TARGET LINE:\nI see the house.")

	lang := "British English"
	_, err = w.UpdateSettings(domain.SettingsPatch{SourceLanguage: &lang})
	require.NoError(t, err)
	p, err = w.PromptPreview(0)
	require.NoError(t, err)
	assert.Contains(t, p, "from British English to")

	lang = " de "
	settings, err := w.UpdateSettings(domain.SettingsPatch{SourceLanguage: &lang})
	require.NoError(t, err)
	assert.Equal(t, "German", settings.SourceLanguage)

	_, err = w.PromptPreview(10)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Empty(t, tr.requests, "previews never call the engine")
}

func TestGlossaryUsage(t *testing.T) {
	w, _ := newTestWorkspace(t, newFakeTranslator())
	loadSample(t, w)
	_, err := w.AddGlossaryEntry("house", "ⵜⵉⴳⵎⵎⵉ")
	require.NoError(t, err)
	editTranslation(t, w, 3, "ⵜⵉⴳⵎⵎⵉ ⵜⴰⵣⵡⴳⴰⵖⵜ.")

	u, err := w.GlossaryUsage(context.Background(), "house")
	require.NoError(t, err)
	assert.True(t, u.InGlossary)
	assert.Equal(t, "ⵜⵉⴳⵎⵎⵉ", u.Target)
	require.Len(t, u.Lines, 2)
	assert.Equal(t, 1, u.Lines[0].LineID)
	assert.False(t, u.Lines[0].TargetPresent)
	assert.Equal(t, 3, u.Lines[1].LineID)
	assert.True(t, u.Lines[1].TargetPresent)

	_, err = w.GlossaryUsage(context.Background(), " ")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestNew_RequiresTranslator(t *testing.T) {
	_, err := New(Options{ID: "ws-x"})
	require.Error(t, err)
	var de *domainerrors.Error
	assert.False(t, errors.As(err, &de))
}

func TestClose_RefusesLaterWork(t *testing.T) {
	tr := newFakeTranslator()
	w, _ := newTestWorkspace(t, tr)
	loadSample(t, w)

	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, w.Close(context.Background()), "second close is a no-op")

	_, err := w.Translate(context.Background(), 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = w.StartTranslation(context.Background(), 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = w.Load(context.Background(), sampleSRT)
	assert.ErrorIs(t, err, ErrClosed)

	assert.Empty(t, w.Snapshot().LoadingIDs())
	assert.Empty(t, tr.requests, "no translation reached the engine")
}
