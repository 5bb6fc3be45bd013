// Package sse streams workspace events to browsers over Server-Sent Events.
package sse

import (
	"time"

	"github.com/google/uuid"

	"github.com/srtwork/srtwork-server/internal/domain"
)

// Requests are plain request/response; SSE only pushes the results of
// work that finishes after the request returned (language detection,
// background translations) plus state changes a second tab should see.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventConnected is sent once when a stream opens.
	EventConnected EventType = "connected"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"

	// EventDocumentLoaded represents a new subtitle document replacing the old one.
	EventDocumentLoaded EventType = "document.loaded"
	// EventLanguageDetected represents a finished source-language detection.
	EventLanguageDetected EventType = "language.detected"

	// EventTranslationStarted represents a line translation request going out.
	EventTranslationStarted EventType = "entry.translation_started"
	// EventTranslated represents a translation applied to an entry.
	EventTranslated EventType = "entry.translated"
	// EventTranslationFailed represents a translation that left the entry untouched.
	EventTranslationFailed EventType = "entry.translation_failed"
	// EventEntryUpdated represents a manual edit being saved.
	EventEntryUpdated EventType = "entry.updated"

	EventGlossaryUpdated  EventType = "glossary.updated"
	EventSelectionUpdated EventType = "selection.updated"

	// EventWorkspaceDeleted is the last event a workspace stream receives.
	EventWorkspaceDeleted EventType = "workspace.deleted"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	ID        string    `json:"id"`
	Type      EventType `json:"type"`

	// WorkspaceID routes the event. Empty means every client.
	WorkspaceID string `json:"workspace_id,omitempty"`
}

func newEvent(workspaceID string, t EventType, data any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		WorkspaceID: workspaceID,
		Data:        data,
		Timestamp:   time.Now(),
	}
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// DocumentLoadedEventData is the data payload for document.loaded events.
type DocumentLoadedEventData struct {
	Generation uint64 `json:"generation"`
	EntryCount int    `json:"entry_count"`
	Skipped    int    `json:"skipped"`
}

// LanguageDetectedEventData is the data payload for language.detected events.
type LanguageDetectedEventData struct {
	Language   string `json:"language"`
	Generation uint64 `json:"generation"`
}

// TranslationStartedEventData is the data payload for translation start events.
type TranslationStartedEventData struct {
	Index   int `json:"index"`
	EntryID int `json:"entry_id"`
}

// EntryEventData carries an entry after it changed.
type EntryEventData struct {
	Entry domain.SubtitleEntry `json:"entry"`
	Index int                  `json:"index"`
	// Field is set for manual edits.
	Field domain.Field `json:"field,omitempty"`
}

// TranslationFailedEventData is the data payload for translation failure events.
type TranslationFailedEventData struct {
	Index   int    `json:"index"`
	EntryID int    `json:"entry_id"`
	Kind    string `json:"kind"`
	Error   string `json:"error"`
}

// GlossaryEventData is the data payload for glossary.updated events.
type GlossaryEventData struct {
	Glossary *domain.Glossary `json:"glossary"`
	Count    int              `json:"count"`
}

// SelectionEventData is the data payload for selection.updated events.
// A nil Selection means the selection was cleared.
type SelectionEventData struct {
	Selection *domain.WordSelection `json:"selection"`
}

// WorkspaceDeletedEventData is the data payload for workspace.deleted events.
type WorkspaceDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	Reason    string    `json:"reason"`
}

// NewHeartbeatEvent creates a heartbeat event for all clients.
func NewHeartbeatEvent() Event {
	return newEvent("", EventHeartbeat, HeartbeatEventData{ServerTime: time.Now()})
}

// NewDocumentLoadedEvent creates a document.loaded event.
func NewDocumentLoadedEvent(workspaceID string, generation uint64, entries, skipped int) Event {
	return newEvent(workspaceID, EventDocumentLoaded, DocumentLoadedEventData{
		Generation: generation,
		EntryCount: entries,
		Skipped:    skipped,
	})
}

// NewLanguageDetectedEvent creates a language.detected event.
func NewLanguageDetectedEvent(workspaceID string, generation uint64, language string) Event {
	return newEvent(workspaceID, EventLanguageDetected, LanguageDetectedEventData{
		Language:   language,
		Generation: generation,
	})
}

// NewTranslationStartedEvent creates an entry.translation_started event.
func NewTranslationStartedEvent(workspaceID string, index, entryID int) Event {
	return newEvent(workspaceID, EventTranslationStarted, TranslationStartedEventData{Index: index, EntryID: entryID})
}

// NewTranslatedEvent creates an entry.translated event.
func NewTranslatedEvent(workspaceID string, index int, entry domain.SubtitleEntry) Event {
	return newEvent(workspaceID, EventTranslated, EntryEventData{Entry: entry, Index: index})
}

// NewTranslationFailedEvent creates an entry.translation_failed event.
func NewTranslationFailedEvent(workspaceID string, index, entryID int, kind, errMsg string) Event {
	return newEvent(workspaceID, EventTranslationFailed, TranslationFailedEventData{
		Index:   index,
		EntryID: entryID,
		Kind:    kind,
		Error:   errMsg,
	})
}

// NewEntryUpdatedEvent creates an entry.updated event.
func NewEntryUpdatedEvent(workspaceID string, index int, entry domain.SubtitleEntry, field domain.Field) Event {
	return newEvent(workspaceID, EventEntryUpdated, EntryEventData{Entry: entry, Index: index, Field: field})
}

// NewGlossaryUpdatedEvent creates a glossary.updated event. g must not be
// modified afterwards; it is encoded when the event is delivered.
func NewGlossaryUpdatedEvent(workspaceID string, g *domain.Glossary) Event {
	return newEvent(workspaceID, EventGlossaryUpdated, GlossaryEventData{Glossary: g, Count: g.Len()})
}

// NewSelectionUpdatedEvent creates a selection.updated event.
func NewSelectionUpdatedEvent(workspaceID string, sel *domain.WordSelection) Event {
	return newEvent(workspaceID, EventSelectionUpdated, SelectionEventData{Selection: sel})
}

// NewWorkspaceDeletedEvent creates a workspace.deleted event.
func NewWorkspaceDeletedEvent(workspaceID, reason string) Event {
	return newEvent(workspaceID, EventWorkspaceDeleted, WorkspaceDeletedEventData{
		DeletedAt: time.Now(),
		Reason:    reason,
	})
}
