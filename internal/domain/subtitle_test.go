package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return NewDocument([]SubtitleEntry{
		{ID: 1, StartTime: "00:00:01,000", EndTime: "00:00:02,000", OriginalText: "Hello"},
		{ID: 2, StartTime: "00:00:03,000", EndTime: "00:00:04,000", OriginalText: "there", TranslatedText: "ⴰⵣⵓⵍ"},
		{ID: 3, StartTime: "00:00:05,000", EndTime: "00:00:06,000", OriginalText: "friend"},
	})
}

func TestSubtitleEntry_Text(t *testing.T) {
	plain := SubtitleEntry{OriginalText: "Hello"}
	translated := SubtitleEntry{OriginalText: "Hello", TranslatedText: "ⴰⵣⵓⵍ"}

	assert.Equal(t, "Hello", plain.Text(VariantOriginal))
	assert.Equal(t, "Hello", plain.Text(VariantTranslated))
	assert.Equal(t, "Hello", translated.Text(VariantOriginal))
	assert.Equal(t, "ⴰⵣⵓⵍ", translated.Text(VariantTranslated))
}

func TestDocument_ReplaceEntryCopiesOnWrite(t *testing.T) {
	doc := sampleDocument()

	updated, ok := doc.ReplaceEntry(3, func(e SubtitleEntry) SubtitleEntry {
		e.TranslatedText = "ⴰⵎⴷⴷⴰⴽⴽⵍ"
		return e
	})
	require.True(t, ok)

	assert.Empty(t, doc.Entries[2].TranslatedText, "original snapshot must not change")
	assert.Equal(t, "ⴰⵎⴷⴷⴰⴽⴽⵍ", updated.Entries[2].TranslatedText)
	assert.Equal(t, doc.Entries[0], updated.Entries[0])
}

func TestDocument_ReplaceEntryUnknownID(t *testing.T) {
	doc := sampleDocument()

	updated, ok := doc.ReplaceEntry(99, func(e SubtitleEntry) SubtitleEntry {
		e.OriginalText = "nope"
		return e
	})

	assert.False(t, ok)
	assert.Equal(t, doc.Entries, updated.Entries)
}

func TestDocument_Lookups(t *testing.T) {
	doc := sampleDocument()

	e, ok := doc.At(1)
	require.True(t, ok)
	assert.Equal(t, 2, e.ID)

	_, ok = doc.At(-1)
	assert.False(t, ok)
	_, ok = doc.At(3)
	assert.False(t, ok)

	e, ok = doc.Entry(3)
	require.True(t, ok)
	assert.Equal(t, "friend", e.OriginalText)

	assert.Equal(t, 1, doc.TranslatedCount())
}

func TestDocument_Sample(t *testing.T) {
	doc := sampleDocument()

	assert.Equal(t, "Hello there", doc.Sample(2))
	assert.Equal(t, "Hello there friend", doc.Sample(5))
	assert.Equal(t, "", NewDocument(nil).Sample(5))
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("translated")
	require.NoError(t, err)
	assert.Equal(t, VariantTranslated, v)
	assert.Equal(t, "translated_subtitles.srt", v.Filename("srt"))

	_, err = ParseVariant("both")
	assert.Error(t, err)
}

func TestSettingsPatch_Apply(t *testing.T) {
	before := 4
	useTranslated := false

	got := SettingsPatch{ContextBefore: &before, UseTranslatedContext: &useTranslated}.Apply(DefaultSettings())

	assert.Equal(t, 4, got.ContextBefore)
	assert.Equal(t, DefaultContextWindow, got.ContextAfter)
	assert.False(t, got.UseTranslatedContext)
	assert.Equal(t, DefaultPreset, got.Preset)
}

func TestWordSelection_Pairs(t *testing.T) {
	first := WordSelection{LineID: 3, Word: "house", Side: SideOriginal}

	assert.True(t, first.Pairs(WordSelection{LineID: 3, Word: "ⵜⵉⴳⵎⵎⵉ", Side: SideTranslated}))
	assert.False(t, first.Pairs(WordSelection{LineID: 4, Word: "ⵜⵉⴳⵎⵎⵉ", Side: SideTranslated}))
	assert.False(t, first.Pairs(WordSelection{LineID: 3, Word: "home", Side: SideOriginal}))
}
