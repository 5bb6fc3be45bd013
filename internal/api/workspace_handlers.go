package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/srtwork/srtwork-server/internal/domain"
	domainerrors "github.com/srtwork/srtwork-server/internal/errors"
	"github.com/srtwork/srtwork-server/internal/search"
	"github.com/srtwork/srtwork-server/internal/service"
	"github.com/srtwork/srtwork-server/internal/srt"
	"github.com/srtwork/srtwork-server/internal/translate"
	"github.com/srtwork/srtwork-server/internal/workspace"
)

func (s *Server) registerWorkspaceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createWorkspace",
		Method:      http.MethodPost,
		Path:        "/api/v1/workspaces",
		Summary:     "Create workspace",
		Description: "Creates a workspace, optionally loading subtitles into it",
		Tags:        []string{"Workspaces"},
	}, s.handleCreateWorkspace)

	huma.Register(s.api, huma.Operation{
		OperationID: "listWorkspaces",
		Method:      http.MethodGet,
		Path:        "/api/v1/workspaces",
		Summary:     "List workspaces",
		Description: "Returns all open workspaces",
		Tags:        []string{"Workspaces"},
	}, s.handleListWorkspaces)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWorkspace",
		Method:      http.MethodGet,
		Path:        "/api/v1/workspaces/{id}",
		Summary:     "Get workspace",
		Description: "Returns the workspace state without its entries",
		Tags:        []string{"Workspaces"},
	}, s.handleGetWorkspace)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteWorkspace",
		Method:      http.MethodDelete,
		Path:        "/api/v1/workspaces/{id}",
		Summary:     "Delete workspace",
		Description: "Closes a workspace after its in-flight translations finish",
		Tags:        []string{"Workspaces"},
	}, s.handleDeleteWorkspace)

	huma.Register(s.api, huma.Operation{
		OperationID: "loadDocument",
		Method:      http.MethodPut,
		Path:        "/api/v1/workspaces/{id}/document",
		Summary:     "Load subtitles",
		Description: "Replaces the document. The glossary and settings are kept; editing and selection are reset.",
		Tags:        []string{"Workspaces"},
	}, s.handleLoadDocument)

	huma.Register(s.api, huma.Operation{
		OperationID: "listEntries",
		Method:      http.MethodGet,
		Path:        "/api/v1/workspaces/{id}/entries",
		Summary:     "List entries",
		Description: "Returns every subtitle entry in order with its loading flag",
		Tags:        []string{"Workspaces"},
	}, s.handleListEntries)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchEntries",
		Method:      http.MethodGet,
		Path:        "/api/v1/workspaces/{id}/search",
		Summary:     "Search lines",
		Description: "Full-text search over original and translated text",
		Tags:        []string{"Workspaces"},
	}, s.handleSearchEntries)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSettings",
		Method:      http.MethodPatch,
		Path:        "/api/v1/workspaces/{id}/settings",
		Summary:     "Update settings",
		Description: "Changes context window, preset or source language override",
		Tags:        []string{"Workspaces"},
	}, s.handleUpdateSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPresets",
		Method:      http.MethodGet,
		Path:        "/api/v1/presets",
		Summary:     "List presets",
		Description: "Returns the translation style presets",
		Tags:        []string{"Workspaces"},
	}, s.handleListPresets)
}

// === DTOs ===

// WorkspaceIDInput identifies a workspace in the path.
type WorkspaceIDInput struct {
	ID string `path:"id" doc:"Workspace ID"`
}

// LoadDocumentRequest is the request body for loading subtitles.
type LoadDocumentRequest struct {
	Content string `json:"content" doc:"Subtitle file contents"`
	Format  string `json:"format,omitempty" enum:"srt,vtt,ssa,ttml" doc:"Subtitle format, srt when omitted"`
}

// CreateWorkspaceInput wraps the optional initial document.
type CreateWorkspaceInput struct {
	Body *LoadDocumentRequest `required:"false"`
}

// LoadDocumentInput wraps the load request for Huma.
type LoadDocumentInput struct {
	ID   string `path:"id" doc:"Workspace ID"`
	Body LoadDocumentRequest
}

// LoadResponse describes a completed load.
type LoadResponse struct {
	Generation uint64             `json:"generation" doc:"Document generation, bumped on every load"`
	EntryCount int                `json:"entry_count" doc:"Number of entries parsed"`
	Skipped    []srt.SkippedBlock `json:"skipped" doc:"Blocks dropped as malformed"`
}

// WorkspaceResponse is the workspace state in API responses.
type WorkspaceResponse struct {
	ID                   string                `json:"id" doc:"Workspace ID"`
	CreatedAt            time.Time             `json:"created_at" doc:"Creation time"`
	Generation           uint64                `json:"generation" doc:"Document generation"`
	EntryCount           int                   `json:"entry_count" doc:"Number of entries"`
	TranslatedCount      int                   `json:"translated_count" doc:"Entries with a translation"`
	GlossaryCount        int                   `json:"glossary_count" doc:"Glossary size"`
	SourceLanguage       string                `json:"source_language,omitempty" doc:"Detected source language"`
	LanguageLabel        string                `json:"language_label" doc:"Heading for the glossary source column"`
	Loading              []int                 `json:"loading" doc:"Entry IDs with translations in flight"`
	EditingTranslationID *int                  `json:"editing_translation_id,omitempty" doc:"Entry whose translation is open for editing"`
	EditingOriginalID    *int                  `json:"editing_original_id,omitempty" doc:"Entry whose original is open for editing"`
	Selection            *domain.WordSelection `json:"selection,omitempty" doc:"Pending half of a glossary pair"`
	PendingImport        bool                  `json:"pending_import" doc:"Whether a glossary import awaits confirmation"`
	Settings             domain.Settings       `json:"settings" doc:"Workspace settings"`
	Subscribers          int                   `json:"subscribers" doc:"Open event streams for this workspace"`
}

// WorkspaceOutput wraps the workspace response for Huma.
type WorkspaceOutput struct {
	Body WorkspaceResponse
}

// CreateWorkspaceResponse is returned when a workspace is created.
type CreateWorkspaceResponse struct {
	Workspace WorkspaceResponse `json:"workspace" doc:"The new workspace"`
	Load      *LoadResponse     `json:"load,omitempty" doc:"Result of loading the initial document"`
}

// CreateWorkspaceOutput wraps the create response for Huma.
type CreateWorkspaceOutput struct {
	Status int
	Body   CreateWorkspaceResponse
}

// WorkspaceSummaryResponse is a workspace in list responses.
type WorkspaceSummaryResponse struct {
	ID              string    `json:"id" doc:"Workspace ID"`
	CreatedAt       time.Time `json:"created_at" doc:"Creation time"`
	LastAccessAt    time.Time `json:"last_access_at" doc:"Last time the workspace was used"`
	EntryCount      int       `json:"entry_count" doc:"Number of entries"`
	TranslatedCount int       `json:"translated_count" doc:"Entries with a translation"`
	GlossaryCount   int       `json:"glossary_count" doc:"Glossary size"`
	SourceLanguage  string    `json:"source_language,omitempty" doc:"Detected source language"`
}

// ListWorkspacesOutput wraps the workspace list for Huma.
type ListWorkspacesOutput struct {
	Body struct {
		Workspaces []WorkspaceSummaryResponse `json:"workspaces" doc:"Open workspaces"`
	}
}

// LoadDocumentOutput wraps the load response for Huma.
type LoadDocumentOutput struct {
	Body LoadResponse
}

// EntryResponse is a subtitle entry in API responses.
type EntryResponse struct {
	Index          int    `json:"index" doc:"Position in the document"`
	ID             int    `json:"id" doc:"Entry ID from the subtitle file"`
	StartTime      string `json:"start_time" doc:"Start timestamp"`
	EndTime        string `json:"end_time" doc:"End timestamp"`
	OriginalText   string `json:"original_text" doc:"Source text"`
	TranslatedText string `json:"translated_text,omitempty" doc:"Translation, if any"`
	IsEdited       bool   `json:"is_edited" doc:"Whether the translation was typed by the user"`
	Loading        bool   `json:"loading" doc:"Whether a translation is in flight"`
}

// ListEntriesOutput wraps the entries for Huma.
type ListEntriesOutput struct {
	Body struct {
		Generation uint64          `json:"generation" doc:"Document generation"`
		Entries    []EntryResponse `json:"entries" doc:"Entries in document order"`
	}
}

// SearchEntriesInput contains parameters for searching lines.
type SearchEntriesInput struct {
	ID     string `path:"id" doc:"Workspace ID"`
	Query  string `query:"q" doc:"Search text" minLength:"1"`
	Field  string `query:"field" enum:"original,translated" doc:"Restrict to one side"`
	Phrase bool   `query:"phrase" doc:"Match the words consecutively"`
	Limit  int    `query:"limit" doc:"Maximum hits" minimum:"0" maximum:"500"`
}

// SearchEntriesOutput wraps search results for Huma.
type SearchEntriesOutput struct {
	Body *search.SearchResult
}

// UpdateSettingsInput wraps the settings patch for Huma.
type UpdateSettingsInput struct {
	ID   string `path:"id" doc:"Workspace ID"`
	Body domain.SettingsPatch
}

// SettingsOutput wraps settings for Huma.
type SettingsOutput struct {
	Body domain.Settings
}

// ListPresetsOutput wraps the preset list for Huma.
type ListPresetsOutput struct {
	Body struct {
		Presets []translate.Preset `json:"presets" doc:"Available presets"`
	}
}

// === Handlers ===

func (s *Server) handleCreateWorkspace(ctx context.Context, input *CreateWorkspaceInput) (*CreateWorkspaceOutput, error) {
	ws, err := s.services.Workspaces.Create()
	if err != nil {
		return nil, err
	}

	resp := CreateWorkspaceResponse{}
	if input.Body != nil && input.Body.Content != "" {
		result, err := loadDocument(ctx, ws, *input.Body)
		if err != nil {
			// A workspace that failed its initial load is of no use to the caller.
			_ = s.services.Workspaces.Delete(ctx, ws.ID())
			return nil, err
		}
		resp.Load = &result
	}
	resp.Workspace = toWorkspaceResponse(ws)

	return &CreateWorkspaceOutput{Status: http.StatusCreated, Body: resp}, nil
}

func (s *Server) handleListWorkspaces(_ context.Context, _ *struct{}) (*ListWorkspacesOutput, error) {
	summaries := s.services.Workspaces.List()

	resp := &ListWorkspacesOutput{}
	resp.Body.Workspaces = make([]WorkspaceSummaryResponse, len(summaries))
	for i, sum := range summaries {
		resp.Body.Workspaces[i] = toWorkspaceSummaryResponse(sum)
	}
	return resp, nil
}

func (s *Server) handleGetWorkspace(_ context.Context, input *WorkspaceIDInput) (*WorkspaceOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}
	resp := toWorkspaceResponse(ws)
	resp.Subscribers = s.sseManager.Subscribers(ws.ID())
	return &WorkspaceOutput{Body: resp}, nil
}

func (s *Server) handleDeleteWorkspace(ctx context.Context, input *WorkspaceIDInput) (*MessageOutput, error) {
	if err := s.services.Workspaces.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Workspace deleted"}}, nil
}

func (s *Server) handleLoadDocument(ctx context.Context, input *LoadDocumentInput) (*LoadDocumentOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	result, err := loadDocument(ctx, ws, input.Body)
	if err != nil {
		return nil, err
	}
	return &LoadDocumentOutput{Body: result}, nil
}

func (s *Server) handleListEntries(_ context.Context, input *WorkspaceIDInput) (*ListEntriesOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	state := ws.Snapshot()
	resp := &ListEntriesOutput{}
	resp.Body.Generation = state.Generation
	resp.Body.Entries = make([]EntryResponse, state.Document.Len())
	for i, e := range state.Document.Entries {
		resp.Body.Entries[i] = toEntryResponse(i, e, state.IsLoading(e.ID))
	}
	return resp, nil
}

func (s *Server) handleSearchEntries(ctx context.Context, input *SearchEntriesInput) (*SearchEntriesOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	result, err := ws.Search(ctx, search.SearchParams{
		Query:     input.Query,
		Field:     input.Field,
		Phrase:    input.Phrase,
		Limit:     input.Limit,
		Highlight: true,
	})
	if err != nil {
		return nil, err
	}
	return &SearchEntriesOutput{Body: result}, nil
}

func (s *Server) handleUpdateSettings(_ context.Context, input *UpdateSettingsInput) (*SettingsOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	settings, err := ws.UpdateSettings(input.Body)
	if err != nil {
		return nil, err
	}
	return &SettingsOutput{Body: settings}, nil
}

func (s *Server) handleListPresets(_ context.Context, _ *struct{}) (*ListPresetsOutput, error) {
	resp := &ListPresetsOutput{}
	resp.Body.Presets = s.services.Workspaces.Presets().List()
	return resp, nil
}

// === Helpers ===

func loadDocument(ctx context.Context, ws *workspace.Workspace, req LoadDocumentRequest) (LoadResponse, error) {
	format := srt.FormatSRT
	if req.Format != "" {
		f, err := srt.ParseFormat(req.Format)
		if err != nil {
			return LoadResponse{}, domainerrors.Validationf("unsupported format %q", req.Format)
		}
		format = f
	}

	result, err := ws.LoadFormat(ctx, []byte(req.Content), format)
	if err != nil {
		return LoadResponse{}, err
	}

	skipped := result.Skipped
	if skipped == nil {
		skipped = []srt.SkippedBlock{}
	}
	return LoadResponse{
		Generation: result.Generation,
		EntryCount: result.EntryCount,
		Skipped:    skipped,
	}, nil
}

func toWorkspaceResponse(ws *workspace.Workspace) WorkspaceResponse {
	state := ws.Snapshot()
	loading := state.LoadingIDs()
	slices.Sort(loading)

	return WorkspaceResponse{
		ID:                   ws.ID(),
		CreatedAt:            ws.CreatedAt(),
		Generation:           state.Generation,
		EntryCount:           state.Document.Len(),
		TranslatedCount:      state.Document.TranslatedCount(),
		GlossaryCount:        state.Glossary.Len(),
		SourceLanguage:       state.SourceLanguage,
		LanguageLabel:        state.LanguageLabel(),
		Loading:              loading,
		EditingTranslationID: state.EditingTranslationID,
		EditingOriginalID:    state.EditingOriginalID,
		Selection:            state.Selection,
		PendingImport:        state.PendingImport != nil,
		Settings:             state.Settings,
	}
}

func toWorkspaceSummaryResponse(sum service.WorkspaceSummary) WorkspaceSummaryResponse {
	return WorkspaceSummaryResponse{
		ID:              sum.ID,
		CreatedAt:       sum.CreatedAt,
		LastAccessAt:    sum.LastAccessAt,
		EntryCount:      sum.EntryCount,
		TranslatedCount: sum.TranslatedCount,
		GlossaryCount:   sum.GlossaryCount,
		SourceLanguage:  sum.SourceLanguage,
	}
}

func toEntryResponse(index int, e domain.SubtitleEntry, loading bool) EntryResponse {
	return EntryResponse{
		Index:          index,
		ID:             e.ID,
		StartTime:      e.StartTime,
		EndTime:        e.EndTime,
		OriginalText:   e.OriginalText,
		TranslatedText: e.TranslatedText,
		IsEdited:       e.IsEdited,
		Loading:        loading,
	}
}
