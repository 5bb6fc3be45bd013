// Package srt reads and writes SubRip subtitle text and converts other
// subtitle formats into subtitle entries.
package srt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/srtwork/srtwork-server/internal/domain"
)

var (
	blockSeparator = regexp.MustCompile(`\n\s*\n`)
	timingLine     = regexp.MustCompile(`(\d{2}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2},\d{3})`)
)

// SkipReason explains why a block was not turned into an entry.
type SkipReason string

// Reasons a block is skipped.
const (
	SkipTooShort   SkipReason = "fewer than 3 lines"
	SkipBadID      SkipReason = "sequence number is not a non-zero integer"
	SkipBadTimings SkipReason = "second line is not a timestamp range"
)

// SkippedBlock describes a malformed block dropped by the parser.
type SkippedBlock struct {
	// Block is the 1-based position of the block in the input.
	Block     int        `json:"block"`
	Reason    SkipReason `json:"reason"`
	FirstLine string     `json:"first_line"`
}

// Report is the full result of a parse.
type Report struct {
	Entries []domain.SubtitleEntry `json:"entries"`
	Skipped []SkippedBlock         `json:"skipped"`
}

// Parse converts SRT text to entries. Malformed blocks are dropped.
func Parse(text string) []domain.SubtitleEntry {
	return ParseReport(text).Entries
}

// ParseReport converts SRT text to entries and lists every dropped block.
func ParseReport(text string) Report {
	report := Report{
		Entries: []domain.SubtitleEntry{},
		Skipped: []SkippedBlock{},
	}

	text = normalizeNewlines(strings.TrimPrefix(text, "\ufeff"))
	text = strings.TrimSpace(text)
	if text == "" {
		return report
	}

	for i, block := range blockSeparator.Split(text, -1) {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		skip := func(reason SkipReason) {
			report.Skipped = append(report.Skipped, SkippedBlock{
				Block:     i + 1,
				Reason:    reason,
				FirstLine: strings.TrimSpace(lines[0]),
			})
		}

		if len(lines) < 3 {
			skip(SkipTooShort)
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil || id == 0 {
			skip(SkipBadID)
			continue
		}

		m := timingLine.FindStringSubmatch(lines[1])
		if m == nil {
			skip(SkipBadTimings)
			continue
		}

		report.Entries = append(report.Entries, domain.SubtitleEntry{
			ID:           id,
			StartTime:    m[1],
			EndTime:      m[2],
			OriginalText: strings.TrimSpace(strings.Join(lines[2:], "\n")),
		})
	}

	return report
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
