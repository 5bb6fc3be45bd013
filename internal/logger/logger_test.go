package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripANSI removes colour codes so assertions can match plain text.
func stripANSI(s string) string {
	for _, code := range []string{ansiReset, ansiRed, ansiGreen, ansiYellow, ansiPurple, ansiCyan, ansiBold, ansiDim} {
		s = strings.ReplaceAll(s, code, "")
	}
	return s
}

func TestNew_FormatSelection(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantJSON bool
	}{
		{name: "production defaults to json", cfg: Config{Environment: "production"}, wantJSON: true},
		{name: "development defaults to pretty", cfg: Config{Environment: "development"}},
		{name: "explicit json", cfg: Config{Environment: "development", Format: FormatJSON}, wantJSON: true},
		{name: "explicit pretty in production", cfg: Config{Environment: "production", Format: FormatPretty}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.cfg.Writer = &buf
			New(tt.cfg).Info("hello", "entries", 3)

			var decoded map[string]any
			err := json.Unmarshal(buf.Bytes(), &decoded)
			if tt.wantJSON {
				require.NoError(t, err)
				assert.Equal(t, "hello", decoded["msg"])
				assert.Equal(t, float64(3), decoded["entries"])
			} else {
				assert.Error(t, err)
				assert.Contains(t, stripANSI(buf.String()), "INF hello entries=3")
			}
		})
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf, Format: FormatText}).Warn("slow", "ms", 250)
	assert.Contains(t, buf.String(), "level=WARN msg=slow ms=250")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty, Level: slog.LevelWarn})

	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")

	out := stripANSI(buf.String())
	assert.NotContains(t, out, "DBG")
	assert.NotContains(t, out, "INF")
	assert.Contains(t, out, "WRN w")
	assert.Contains(t, out, "ERR e")
}

func TestPrettyHandler_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Debug("a")
	log.Info("b")
	log.Warn("c")
	log.Error("d")

	lines := strings.Split(strings.TrimSpace(stripANSI(buf.String())), "\n")
	require.Len(t, lines, 4)
	for i, want := range []string{"DBG a", "INF b", "WRN c", "ERR d"} {
		assert.Contains(t, lines[i], want)
	}
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).
		With("workspace_id", "ws-1").
		WithGroup("req").
		With("method", "GET")

	log.Info("served", "path", "/api/v1/workspaces", slog.Group("timing", "took", 1500*time.Millisecond))

	out := stripANSI(buf.String())
	assert.Contains(t, out, "INF served workspace_id=ws-1 req.method=GET req.path=/api/v1/workspaces req.timing.took=1.5s")
}

func TestPrettyHandler_QuotesValues(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.Info("m", "text", "two words", "empty", "", "err", errors.New("boom: bad thing"), "ok", true)

	out := stripANSI(buf.String())
	assert.Contains(t, out, `text="two words"`)
	assert.Contains(t, out, `empty=""`)
	assert.Contains(t, out, `err="boom: bad thing"`)
	assert.Contains(t, out, "ok=true")
}

func TestPrettyHandler_Source(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true}))
	log.Info("where")
	assert.Contains(t, stripANSI(buf.String()), "logger_test.go:")
}

func TestPrettyHandler_WithGroupEmptyName(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	assert.Same(t, h, h.WithGroup(""))
}

func TestPrettyHandler_ConcurrentWritesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.With("worker", i).Info("tick")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(stripANSI(buf.String())), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.Contains(t, line, "INF tick worker=")
	}
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatJSON})

	log.Component("sse").Info("client connected")
	log.WithError(errors.New("nope")).Warn("failed")

	dec := json.NewDecoder(&buf)
	var first, second map[string]any
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "sse", first["component"])
	assert.Equal(t, "nope", second["error"])
	assert.Equal(t, "WARN", second["level"])
}
