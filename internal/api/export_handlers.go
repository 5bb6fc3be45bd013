package api

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/srtwork/srtwork-server/internal/domain"
	"github.com/srtwork/srtwork-server/internal/srt"
	"github.com/srtwork/srtwork-server/internal/workspace"
)

func (s *Server) registerExportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportGlossary",
		Method:      http.MethodGet,
		Path:        "/api/v1/workspaces/{id}/glossary/export",
		Summary:     "Download glossary",
		Description: "Downloads the glossary as dictionary.json",
		Tags:        []string{"Export"},
	}, s.handleExportGlossary)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportSubtitles",
		Method:      http.MethodGet,
		Path:        "/api/v1/workspaces/{id}/export",
		Summary:     "Download subtitles",
		Description: "Downloads the original or translated track. Untranslated lines fall back to the original text.",
		Tags:        []string{"Export"},
	}, s.handleExportSubtitles)
}

// ExportSubtitlesInput selects the track and format.
type ExportSubtitlesInput struct {
	ID      string `path:"id" doc:"Workspace ID"`
	Variant string `query:"variant" enum:"original,translated" default:"translated" doc:"Which text to export"`
	Format  string `query:"format" enum:"srt,vtt,ssa,ttml" default:"srt" doc:"File format"`
}

// DownloadOutput is a file attachment.
type DownloadOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func (s *Server) handleExportGlossary(_ context.Context, input *WorkspaceIDInput) (*DownloadOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	dl, err := ws.ExportGlossary()
	if err != nil {
		return nil, err
	}
	return toDownloadOutput(dl), nil
}

func (s *Server) handleExportSubtitles(_ context.Context, input *ExportSubtitlesInput) (*DownloadOutput, error) {
	ws, err := s.services.Workspaces.Get(input.ID)
	if err != nil {
		return nil, err
	}

	variant, err := domain.ParseVariant(input.Variant)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	format, err := srt.ParseFormat(input.Format)
	if err != nil {
		return nil, huma.Error400BadRequest(fmt.Sprintf("unsupported format %q", input.Format))
	}

	dl, err := ws.ExportSubtitles(variant, format)
	if err != nil {
		return nil, err
	}
	return toDownloadOutput(dl), nil
}

func toDownloadOutput(dl workspace.Download) *DownloadOutput {
	return &DownloadOutput{
		ContentType:        dl.ContentType,
		ContentDisposition: mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}),
		Body:               dl.Data,
	}
}
