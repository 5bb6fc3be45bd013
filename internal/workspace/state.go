// Package workspace holds the state of one translation session and the
// operations a user performs on it.
//
// A Workspace publishes its state as an immutable *State snapshot. Every
// operation builds a new snapshot from the current one and swaps it in
// under the workspace mutex, so readers never see a half-applied change
// and background translations can complete against whatever the state
// has become in the meantime.
package workspace

import (
	"maps"

	"github.com/srtwork/srtwork-server/internal/domain"
)

// State is a read-only snapshot of a workspace. Values reachable from a
// State (entries, maps, glossaries) must not be modified.
type State struct {
	Document domain.Document
	Glossary *domain.Glossary
	// SourceLanguage is the detected language. Empty until detection
	// finishes or when no engine is configured; "Unknown" when detection
	// failed.
	SourceLanguage string
	// Generation increments on every document load.
	Generation uint64
	// Loading counts in-flight translations per entry id.
	Loading              map[int]int
	EditingTranslationID *int
	EditingOriginalID    *int
	Selection            *domain.WordSelection
	PendingImport        *domain.Glossary
	Settings             domain.Settings
}

func initialState(settings domain.Settings) *State {
	return &State{
		Document: domain.NewDocument(nil),
		Glossary: domain.NewGlossary(),
		Loading:  map[int]int{},
		Settings: settings,
	}
}

// IsLoading reports whether a translation for the entry id is in flight.
func (s *State) IsLoading(id int) bool {
	return s.Loading[id] > 0
}

// LoadingIDs returns the ids with translations in flight.
func (s *State) LoadingIDs() []int {
	out := make([]int, 0, len(s.Loading))
	for id, n := range s.Loading {
		if n > 0 {
			out = append(out, id)
		}
	}
	return out
}

// EffectiveSourceLanguage is the language named in prompts: the
// settings override when set, else the detected language.
func (s *State) EffectiveSourceLanguage() string {
	if s.Settings.SourceLanguage != "" {
		return s.Settings.SourceLanguage
	}
	return s.SourceLanguage
}

// LanguageLabel heads the source column of the glossary.
func (s *State) LanguageLabel() string {
	if lang := s.EffectiveSourceLanguage(); lang != "" {
		return lang
	}
	return "Source"
}

// EditingID returns the id being edited for field.
func (s *State) EditingID(field domain.Field) *int {
	if field == domain.FieldOriginal {
		return s.EditingOriginalID
	}
	return s.EditingTranslationID
}

func (s *State) clone() *State {
	c := *s
	return &c
}

func (s *State) withLoading(id, delta int) *State {
	c := s.clone()
	c.Loading = maps.Clone(s.Loading)
	c.Loading[id] += delta
	if c.Loading[id] <= 0 {
		delete(c.Loading, id)
	}
	return c
}

func (s *State) withEditing(field domain.Field, id *int) *State {
	c := s.clone()
	if field == domain.FieldOriginal {
		c.EditingOriginalID = id
	} else {
		c.EditingTranslationID = id
	}
	return c
}
