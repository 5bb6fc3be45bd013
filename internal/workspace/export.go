package workspace

import (
	"github.com/srtwork/srtwork-server/internal/domain"
	domainerrors "github.com/srtwork/srtwork-server/internal/errors"
	"github.com/srtwork/srtwork-server/internal/srt"
)

// Download is a file offered to the user.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportGlossary renders the glossary as dictionary.json.
func (w *Workspace) ExportGlossary() (Download, error) {
	data, err := w.Glossary().ExportJSON()
	if err != nil {
		return Download{}, domainerrors.Internal("failed to encode glossary", err)
	}
	return Download{
		Filename:    domain.GlossaryFilename,
		ContentType: "application/json",
		Data:        data,
	}, nil
}

// ExportSubtitles renders the document with the chosen text variant.
// The translated variant falls back to the original for untranslated
// lines.
func (w *Workspace) ExportSubtitles(variant domain.Variant, format srt.Format) (Download, error) {
	if format == "" {
		format = srt.FormatSRT
	}
	doc := w.Snapshot().Document

	data, err := srt.Encode(doc.Entries, variant, format)
	if err != nil {
		return Download{}, domainerrors.Internal("failed to encode subtitles", err)
	}

	w.logger.Info("subtitles exported",
		"variant", string(variant),
		"format", string(format),
		"entries", doc.Len(),
	)
	return Download{
		Filename:    variant.Filename(format.Extension()),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}
