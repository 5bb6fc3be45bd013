package srt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/asticode/go-astisub"

	"github.com/srtwork/srtwork-server/internal/domain"
)

// Format is a subtitle file format.
type Format string

// Supported formats.
const (
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatSSA  Format = "ssa"
	FormatTTML Format = "ttml"
)

// ParseFormat converts a name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "srt":
		return FormatSRT, nil
	case "vtt", "webvtt":
		return FormatVTT, nil
	case "ssa", "ass":
		return FormatSSA, nil
	case "ttml", "xml", "dfxp":
		return FormatTTML, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format %q", s)
	}
}

// FormatFromPath guesses the format from a file name.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Extension returns the file extension for the format, without a dot.
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the MIME type used when serving the format.
func (f Format) ContentType() string {
	switch f {
	case FormatVTT:
		return "text/vtt; charset=utf-8"
	case FormatTTML:
		return "application/ttml+xml; charset=utf-8"
	case FormatSSA:
		return "text/x-ssa; charset=utf-8"
	default:
		return "application/x-subrip; charset=utf-8"
	}
}

// ErrNoCues is returned by Decode when non-blank input yields no cues.
var ErrNoCues = errors.New("no subtitle cues found")

// Decode reads subtitles of the given format into entries. SRT goes
// through Parse; other formats are read with astisub and numbered from 1.
// Blank input and a bare WEBVTT header decode to an empty report, but
// other non-SRT input without a single cue is an error since astisub
// accepts garbage.
func Decode(data []byte, format Format) (Report, error) {
	if format == FormatSRT {
		return ParseReport(string(data)), nil
	}
	if isEmptyDocument(data, format) {
		return Report{Entries: []domain.SubtitleEntry{}, Skipped: []SkippedBlock{}}, nil
	}

	subs, err := read(bytes.NewReader(data), format)
	if err != nil {
		return Report{}, fmt.Errorf("read %s: %w", format, err)
	}
	if len(subs.Items) == 0 {
		return Report{}, fmt.Errorf("read %s: %w", format, ErrNoCues)
	}

	report := Report{
		Entries: make([]domain.SubtitleEntry, 0, len(subs.Items)),
		Skipped: []SkippedBlock{},
	}
	for i, item := range subs.Items {
		text := itemText(item)
		if text == "" {
			report.Skipped = append(report.Skipped, SkippedBlock{Block: i + 1, Reason: SkipTooShort})
			continue
		}
		report.Entries = append(report.Entries, domain.SubtitleEntry{
			ID:           len(report.Entries) + 1,
			StartTime:    FormatTimestamp(item.StartAt),
			EndTime:      FormatTimestamp(item.EndAt),
			OriginalText: text,
		})
	}
	return report, nil
}

func isEmptyDocument(data []byte, format Format) bool {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\uFEFF")))
	if len(trimmed) == 0 {
		return true
	}
	return format == FormatVTT && bytes.HasPrefix(trimmed, []byte("WEBVTT")) && !bytes.ContainsAny(trimmed, "\r\n")
}

// Encode writes entries in the given format using the chosen variant.
func Encode(entries []domain.SubtitleEntry, variant domain.Variant, format Format) ([]byte, error) {
	if format == FormatSRT {
		return []byte(Build(entries, variant)), nil
	}
	if format == FormatVTT && len(entries) == 0 {
		return []byte("WEBVTT\n"), nil
	}

	subs := astisub.NewSubtitles()
	for _, e := range entries {
		start, err := ParseTimestamp(e.StartTime)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		end, err := ParseTimestamp(e.EndTime)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}

		item := &astisub.Item{StartAt: start, EndAt: end}
		for _, line := range strings.Split(e.Text(variant), "\n") {
			item.Lines = append(item.Lines, astisub.Line{Items: []astisub.LineItem{{Text: line}}})
		}
		subs.Items = append(subs.Items, item)
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatVTT:
		err = subs.WriteToWebVTT(&buf)
	case FormatSSA:
		err = subs.WriteToSSA(&buf)
	case FormatTTML:
		err = subs.WriteToTTML(&buf)
	default:
		err = fmt.Errorf("unsupported subtitle format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func read(r io.Reader, format Format) (*astisub.Subtitles, error) {
	switch format {
	case FormatVTT:
		return astisub.ReadFromWebVTT(r)
	case FormatSSA:
		return astisub.ReadFromSSA(r)
	case FormatTTML:
		return astisub.ReadFromTTML(r)
	default:
		return astisub.ReadFromSRT(r)
	}
}

func itemText(item *astisub.Item) string {
	lines := make([]string, 0, len(item.Lines))
	for _, line := range item.Lines {
		parts := make([]string, 0, len(line.Items))
		for _, li := range line.Items {
			if t := strings.TrimSpace(li.Text); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatTimestamp renders d as HH:MM:SS,mmm.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d,%03d", ms/3_600_000, ms/60_000%60, ms/1000%60, ms%1000)
}

// ParseTimestamp reads an HH:MM:SS,mmm timestamp.
func ParseTimestamp(s string) (time.Duration, error) {
	var h, m, sec, ms int
	if _, err := fmt.Sscanf(s, "%d:%d:%d,%d", &h, &m, &sec, &ms); err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
