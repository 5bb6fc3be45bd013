package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/srtwork/srtwork-server/internal/domain"
	"github.com/srtwork/srtwork-server/internal/workspace"
)

func (s *Server) registerGlossaryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGlossary",
		Method:      http.MethodGet,
		Path:        "/api/v1/workspaces/{id}/glossary",
		Summary:     "Get glossary",
		Description: "Returns the glossary pairs in insertion order",
		Tags:        []string{"Glossary"},
	}, s.handleGetGlossary)

	huma.Register(s.api, huma.Operation{
		OperationID: "addGlossaryEntry",
		Method:      http.MethodPost,
		Path:        "/api/v1/workspaces/{id}/glossary",
		Summary:     "Add glossary entry",
		Description: "Sets how a source word is translated. An existing word keeps its position.",
		Tags:        []string{"Glossary"},
	}, s.handleAddGlossaryEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeGlossaryEntry",
		Method:      http.MethodDelete,
		Path:        "/api/v1/workspaces/{id}/glossary",
		Summary:     "Remove glossary entry",
		Description: "Deletes a source word from the glossary. The word is a query parameter so any text, including slashes, can be addressed.",
		Tags:        []string{"Glossary"},
	}, s.handleRemoveGlossaryEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGlossaryUsage",
		Method:      http.MethodGet,
		Path:        "/api/v1/workspaces/{id}/glossary/usage",
		Summary:     "Glossary term usage",
		Description: "Lists lines containing a term and whether each translation uses the glossary target",
		Tags:        []string{"Glossary"},
	}, s.handleGetGlossaryUsage)

	// The dictionary file is checked by the glossary parser, not by a
	// byte-string schema.
	huma.Register(s.api, huma.Operation{
		OperationID:      "stageGlossaryImport",
		Method:           http.MethodPost,
		Path:             "/api/v1/workspaces/{id}/glossary/import",
		Summary:          "Stage glossary import",
		Description:      "Parses a dictionary JSON file and holds it for confirmation. The current glossary is untouched.",
		Tags:             []string{"Glossary"},
		SkipValidateBody: true,
	}, s.handleStageGlossaryImport)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirmGlossaryImport",
		Method:      http.MethodPost,
		Path:        "/api/v1/workspaces/{id}/glossary/import/confirm",
		Summary:     "Confirm glossary import",
		Description: "Replaces the glossary with the staged import",
		Tags:        []string{"Glossary"},
	}, s.handleConfirmGlossaryImport)

	huma.Register(s.api, huma.Operation{
		OperationID: "discardGlossaryImport",
		Method:      http.MethodDelete,
		Path:        "/api/v1/workspaces/{id}/glossary/import",
		Summary:     "Discard glossary import",
		Description: "Drops the staged import",
		Tags:        []string{"Glossary"},
	}, s.handleDiscardGlossaryImport)
}

// === DTOs ===

// GlossaryResponse is the glossary in API responses.
type GlossaryResponse struct {
	LanguageLabel string                 `json:"language_label" doc:"Heading for the source column"`
	Entries       []domain.GlossaryEntry `json:"entries" doc:"Pairs in insertion order"`
}

// GlossaryOutput wraps the glossary for Huma.
type GlossaryOutput struct {
	Body GlossaryResponse
}

// AddGlossaryEntryRequest is the request body for adding a pair.
type AddGlossaryEntryRequest struct {
	Source string `json:"source" doc:"Word in the source language"`
	Target string `json:"target" doc:"Its translation"`
}

// AddGlossaryEntryInput wraps the add request for Huma.
type AddGlossaryEntryInput struct {
	ID   string `path:"id" doc:"Workspace ID"`
	Body AddGlossaryEntryRequest
}

// RemoveGlossaryEntryInput names the pair to delete.
type RemoveGlossaryEntryInput struct {
	ID     string `path:"id" doc:"Workspace ID"`
	Source string `query:"source" required:"true" minLength:"1" doc:"Source word"`
}

// GlossaryUsageInput names the term to look up.
type GlossaryUsageInput struct {
	ID   string `path:"id" doc:"Workspace ID"`
	Term string `query:"term" minLength:"1" doc:"Source term"`
}

// UsageLineResponse is one line containing the term.
type UsageLineResponse struct {
	Index         int    `json:"index" doc:"Position in the document"`
	LineID        int    `json:"line_id" doc:"Entry ID"`
	Original      string `json:"original" doc:"Source text"`
	Translated    string `json:"translated,omitempty" doc:"Translation, if any"`
	TargetPresent bool   `json:"target_present" doc:"Whether the translation contains the glossary target"`
}

// GlossaryUsageOutput wraps usage for Huma.
type GlossaryUsageOutput struct {
	Body struct {
		Term       string              `json:"term" doc:"Term looked up"`
		Target     string              `json:"target,omitempty" doc:"Glossary translation of the term"`
		InGlossary bool                `json:"in_glossary" doc:"Whether the term is a glossary source"`
		Lines      []UsageLineResponse `json:"lines" doc:"Lines containing the term"`
	}
}

// StageGlossaryImportInput carries the raw dictionary file.
type StageGlossaryImportInput struct {
	ID      string `path:"id" doc:"Workspace ID"`
	RawBody []byte `contentType:"application/json"`
}

// ImportPreviewOutput wraps the import preview for Huma.
type ImportPreviewOutput struct {
	Body struct {
		Count   int      `json:"count" doc:"Pairs in the staged file"`
		Added   []string `json:"added" doc:"Sources not in the current glossary"`
		Removed []string `json:"removed" doc:"Sources the import would drop"`
		Changed []string `json:"changed" doc:"Sources whose translation differs"`
	}
}

// DiscardImportOutput reports whether a staged import was dropped.
type DiscardImportOutput struct {
	Body struct {
		Discarded bool `json:"discarded" doc:"False when nothing was staged"`
	}
}

// === Handlers ===

func (s *Server) handleGetGlossary(_ context.Context, input *WorkspaceIDInput) (*GlossaryOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}
	state := ws.Snapshot()
	return &GlossaryOutput{Body: toGlossaryResponse(state, state.Glossary)}, nil
}

func (s *Server) handleAddGlossaryEntry(_ context.Context, input *AddGlossaryEntryInput) (*GlossaryOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	g, err := ws.AddGlossaryEntry(input.Body.Source, input.Body.Target)
	if err != nil {
		return nil, err
	}
	return &GlossaryOutput{Body: toGlossaryResponse(ws.Snapshot(), g)}, nil
}

func (s *Server) handleRemoveGlossaryEntry(_ context.Context, input *RemoveGlossaryEntryInput) (*GlossaryOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	g, err := ws.RemoveGlossaryEntry(input.Source)
	if err != nil {
		return nil, err
	}
	return &GlossaryOutput{Body: toGlossaryResponse(ws.Snapshot(), g)}, nil
}

func (s *Server) handleGetGlossaryUsage(ctx context.Context, input *GlossaryUsageInput) (*GlossaryUsageOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	usage, err := ws.GlossaryUsage(ctx, input.Term)
	if err != nil {
		return nil, err
	}

	resp := &GlossaryUsageOutput{}
	resp.Body.Term = usage.Term
	resp.Body.Target = usage.Target
	resp.Body.InGlossary = usage.InGlossary
	resp.Body.Lines = make([]UsageLineResponse, len(usage.Lines))
	for i, l := range usage.Lines {
		resp.Body.Lines[i] = UsageLineResponse{
			Index:         l.Index,
			LineID:        l.LineID,
			Original:      l.Original,
			Translated:    l.Translated,
			TargetPresent: l.TargetPresent,
		}
	}
	return resp, nil
}

func (s *Server) handleStageGlossaryImport(_ context.Context, input *StageGlossaryImportInput) (*ImportPreviewOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	preview, err := ws.StageGlossaryImport(input.RawBody)
	if err != nil {
		return nil, err
	}
	return toImportPreviewOutput(preview), nil
}

func (s *Server) handleConfirmGlossaryImport(_ context.Context, input *WorkspaceIDInput) (*GlossaryOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	g, err := ws.ConfirmGlossaryImport()
	if err != nil {
		return nil, err
	}
	return &GlossaryOutput{Body: toGlossaryResponse(ws.Snapshot(), g)}, nil
}

func (s *Server) handleDiscardGlossaryImport(_ context.Context, input *WorkspaceIDInput) (*DiscardImportOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	resp := &DiscardImportOutput{}
	resp.Body.Discarded = ws.DiscardGlossaryImport()
	return resp, nil
}

// === Helpers ===

func toGlossaryResponse(state *workspace.State, g *domain.Glossary) GlossaryResponse {
	return GlossaryResponse{
		LanguageLabel: state.LanguageLabel(),
		Entries:       g.Entries(),
	}
}

func toImportPreviewOutput(p workspace.ImportPreview) *ImportPreviewOutput {
	resp := &ImportPreviewOutput{}
	resp.Body.Count = p.Count
	resp.Body.Added = nonNil(p.Added)
	resp.Body.Removed = nonNil(p.Removed)
	resp.Body.Changed = nonNil(p.Changed)
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
