package srt

import (
	"strconv"
	"strings"

	"github.com/srtwork/srtwork-server/internal/domain"
)

// Build serializes entries back to SRT text using the chosen variant.
// Blocks are separated by one blank line and the output carries no
// trailing separator, so Parse(Build(entries, original)) returns entries.
func Build(entries []domain.SubtitleEntry, variant domain.Variant) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strconv.Itoa(e.ID))
		b.WriteByte('\n')
		b.WriteString(e.StartTime)
		b.WriteString(" --> ")
		b.WriteString(e.EndTime)
		b.WriteByte('\n')
		b.WriteString(e.Text(variant))
	}
	return b.String()
}
