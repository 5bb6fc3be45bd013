package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTranslationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "translateEntry",
		Method:      http.MethodPost,
		Path:        "/api/v1/workspaces/{id}/translations",
		Summary:     "Translate entry",
		Description: "Translates the entry at index. With wait the translated entry is returned; otherwise the request is accepted and the result arrives as an event.",
		Tags:        []string{"Translation"},
	}, s.handleTranslateEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "previewPrompt",
		Method:      http.MethodGet,
		Path:        "/api/v1/workspaces/{id}/prompt",
		Summary:     "Preview prompt",
		Description: "Returns the prompt that translating the entry at index would send",
		Tags:        []string{"Translation"},
	}, s.handlePreviewPrompt)
}

// === DTOs ===

// TranslateRequest is the request body for translating an entry.
type TranslateRequest struct {
	Index int  `json:"index" minimum:"0" doc:"Position of the entry in the document"`
	Wait  bool `json:"wait,omitempty" doc:"Block until the translation completes"`
}

// TranslateInput wraps the translate request for Huma.
type TranslateInput struct {
	ID   string `path:"id" doc:"Workspace ID"`
	Body TranslateRequest
}

// TranslateResponse reports the entry after the request.
type TranslateResponse struct {
	Entry   EntryResponse `json:"entry" doc:"The entry; translated when wait was set"`
	Pending bool          `json:"pending" doc:"Whether the translation is still running"`
}

// TranslateOutput wraps the translate response for Huma.
type TranslateOutput struct {
	Status int
	Body   TranslateResponse
}

// PromptInput selects the entry to preview.
type PromptInput struct {
	ID    string `path:"id" doc:"Workspace ID"`
	Index int    `query:"index" minimum:"0" doc:"Position of the entry in the document"`
}

// PromptOutput wraps the prompt preview for Huma.
type PromptOutput struct {
	Body struct {
		Index  int    `json:"index" doc:"Position of the entry"`
		Prompt string `json:"prompt" doc:"Prompt text"`
	}
}

// === Handlers ===

func (s *Server) handleTranslateEntry(ctx context.Context, input *TranslateInput) (*TranslateOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	index := input.Body.Index
	if input.Body.Wait {
		entry, err := ws.Translate(ctx, index)
		if err != nil {
			return nil, err
		}
		return &TranslateOutput{
			Status: http.StatusOK,
			Body:   TranslateResponse{Entry: toEntryResponse(index, entry, false)},
		}, nil
	}

	entry, err := ws.StartTranslation(ctx, index)
	if err != nil {
		return nil, err
	}
	return &TranslateOutput{
		Status: http.StatusAccepted,
		Body: TranslateResponse{
			Entry:   toEntryResponse(index, entry, true),
			Pending: true,
		},
	}, nil
}

func (s *Server) handlePreviewPrompt(_ context.Context, input *PromptInput) (*PromptOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	prompt, err := ws.PromptPreview(input.Index)
	if err != nil {
		return nil, err
	}

	resp := &PromptOutput{}
	resp.Body.Index = input.Index
	resp.Body.Prompt = prompt
	return resp, nil
}
