package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/srtwork/srtwork-server/internal/domain"
	"github.com/srtwork/srtwork-server/internal/glossary"
	"github.com/srtwork/srtwork-server/internal/workspace"
)

func (s *Server) registerEditingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getEntryTokens",
		Method:      http.MethodGet,
		Path:        "/api/v1/workspaces/{id}/entries/{entryID}/tokens",
		Summary:     "Get entry words",
		Description: "Splits one side of an entry into words and separators for selection",
		Tags:        []string{"Editing"},
	}, s.handleGetEntryTokens)

	huma.Register(s.api, huma.Operation{
		OperationID: "beginEdit",
		Method:      http.MethodPost,
		Path:        "/api/v1/workspaces/{id}/editing",
		Summary:     "Begin edit",
		Description: "Opens a field of an entry for editing, dropping any other open edit of that field",
		Tags:        []string{"Editing"},
	}, s.handleBeginEdit)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelEdit",
		Method:      http.MethodDelete,
		Path:        "/api/v1/workspaces/{id}/editing/{field}",
		Summary:     "Cancel edit",
		Description: "Closes the field's editor without saving",
		Tags:        []string{"Editing"},
	}, s.handleCancelEdit)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveEdit",
		Method:      http.MethodPut,
		Path:        "/api/v1/workspaces/{id}/entries/{entryID}/{field}",
		Summary:     "Save edit",
		Description: "Stores text in the open field. Saving a translation marks the entry as edited.",
		Tags:        []string{"Editing"},
	}, s.handleSaveEdit)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectWord",
		Method:      http.MethodPost,
		Path:        "/api/v1/workspaces/{id}/selection",
		Summary:     "Select word",
		Description: "Picks a word. A word from the other side of the same line completes a glossary pair.",
		Tags:        []string{"Editing"},
	}, s.handleSelectWord)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearSelection",
		Method:      http.MethodDelete,
		Path:        "/api/v1/workspaces/{id}/selection",
		Summary:     "Clear selection",
		Description: "Drops the pending word",
		Tags:        []string{"Editing"},
	}, s.handleClearSelection)
}

// === DTOs ===

// EntryTokensInput selects the side of an entry to tokenize.
type EntryTokensInput struct {
	ID      string `path:"id" doc:"Workspace ID"`
	EntryID int    `path:"entryID" doc:"Entry ID"`
	Side    string `query:"side" enum:"original,translated" default:"original" doc:"Which text to split"`
}

// EntryTokensOutput wraps the tokens for Huma.
type EntryTokensOutput struct {
	Body struct {
		EntryID int              `json:"entry_id" doc:"Entry ID"`
		Side    string           `json:"side" doc:"Which text was split"`
		Tokens  []glossary.Token `json:"tokens" doc:"Words and separators in order"`
	}
}

// BeginEditRequest is the request body for opening an editor.
type BeginEditRequest struct {
	EntryID int    `json:"entry_id" doc:"Entry ID"`
	Field   string `json:"field" enum:"original,translation" doc:"Field to edit"`
}

// BeginEditInput wraps the begin edit request for Huma.
type BeginEditInput struct {
	ID   string `path:"id" doc:"Workspace ID"`
	Body BeginEditRequest
}

// EditingOutput reports which entries are open for editing.
type EditingOutput struct {
	Body EditingResponse
}

// EditingResponse lists the open editors.
type EditingResponse struct {
	EditingTranslationID *int `json:"editing_translation_id,omitempty" doc:"Entry whose translation is open"`
	EditingOriginalID    *int `json:"editing_original_id,omitempty" doc:"Entry whose original is open"`
}

// CancelEditInput names the field to close.
type CancelEditInput struct {
	ID    string `path:"id" doc:"Workspace ID"`
	Field string `path:"field" enum:"original,translation" doc:"Field to close"`
}

// SaveEditRequest is the request body for saving an edit.
type SaveEditRequest struct {
	Text string `json:"text" doc:"New text"`
}

// SaveEditInput wraps the save request for Huma.
type SaveEditInput struct {
	ID      string `path:"id" doc:"Workspace ID"`
	EntryID int    `path:"entryID" doc:"Entry ID"`
	Field   string `path:"field" enum:"original,translation" doc:"Field being saved"`
	Body    SaveEditRequest
}

// EntryOutput wraps a single entry for Huma.
type EntryOutput struct {
	Body EntryResponse
}

// SelectWordRequest is the request body for picking a word.
type SelectWordRequest struct {
	LineID int    `json:"line_id" doc:"Entry ID the word belongs to"`
	Word   string `json:"word" doc:"The clicked word as displayed"`
	Side   string `json:"side" enum:"original,translated" doc:"Which text the word came from"`
}

// SelectWordInput wraps the selection request for Huma.
type SelectWordInput struct {
	ID   string `path:"id" doc:"Workspace ID"`
	Body SelectWordRequest
}

// SelectWordResponse reports what the pick did.
type SelectWordResponse struct {
	Outcome   string                `json:"outcome" enum:"ignored,selected,paired" doc:"Effect of the pick"`
	Selection *domain.WordSelection `json:"selection,omitempty" doc:"Pending word after the pick"`
	Pair      *domain.GlossaryEntry `json:"pair,omitempty" doc:"Glossary entry written by a completed pair"`
}

// SelectWordOutput wraps the selection response for Huma.
type SelectWordOutput struct {
	Body SelectWordResponse
}

// === Handlers ===

func (s *Server) handleGetEntryTokens(_ context.Context, input *EntryTokensInput) (*EntryTokensOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	side, err := domain.ParseSide(input.Side)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	tokens, err := ws.Tokens(input.EntryID, side)
	if err != nil {
		return nil, err
	}

	resp := &EntryTokensOutput{}
	resp.Body.EntryID = input.EntryID
	resp.Body.Side = string(side)
	resp.Body.Tokens = tokens
	return resp, nil
}

func (s *Server) handleBeginEdit(_ context.Context, input *BeginEditInput) (*EditingOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	field, err := domain.ParseField(input.Body.Field)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if err := ws.BeginEdit(input.Body.EntryID, field); err != nil {
		return nil, err
	}
	return &EditingOutput{Body: toEditingResponse(ws.Snapshot())}, nil
}

func (s *Server) handleCancelEdit(_ context.Context, input *CancelEditInput) (*EditingOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	field, err := domain.ParseField(input.Field)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	ws.CancelEdit(field)
	return &EditingOutput{Body: toEditingResponse(ws.Snapshot())}, nil
}

func (s *Server) handleSaveEdit(_ context.Context, input *SaveEditInput) (*EntryOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	field, err := domain.ParseField(input.Field)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	entry, err := ws.SaveEdit(input.EntryID, field, input.Body.Text)
	if err != nil {
		return nil, err
	}

	state := ws.Snapshot()
	return &EntryOutput{Body: toEntryResponse(indexOf(state, entry.ID), entry, state.IsLoading(entry.ID))}, nil
}

func (s *Server) handleSelectWord(_ context.Context, input *SelectWordInput) (*SelectWordOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	side, err := domain.ParseSide(input.Body.Side)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	result, err := ws.SelectWord(input.Body.LineID, input.Body.Word, side)
	if err != nil {
		return nil, err
	}
	return &SelectWordOutput{Body: toSelectWordResponse(result)}, nil
}

func (s *Server) handleClearSelection(_ context.Context, input *WorkspaceIDInput) (*MessageOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}
	ws.ClearSelection()
	return &MessageOutput{Body: MessageResponse{Message: "Selection cleared"}}, nil
}

// === Helpers ===

func toEditingResponse(state *workspace.State) EditingResponse {
	return EditingResponse{
		EditingTranslationID: state.EditingTranslationID,
		EditingOriginalID:    state.EditingOriginalID,
	}
}

func toSelectWordResponse(r workspace.SelectionResult) SelectWordResponse {
	return SelectWordResponse{
		Outcome:   string(r.Outcome),
		Selection: r.Selection,
		Pair:      r.Pair,
	}
}

// indexOf returns the position of the first entry with id, or -1.
func indexOf(state *workspace.State, id int) int {
	for i, e := range state.Document.Entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
