package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `1
00:00:01,000 --> 00:00:02,000
I see the house.

2
bad timing
Lost line

3
00:00:05,000 --> 00:00:06,000
The house is red.
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	path := writeFile(t, "in.srt", sample)

	out, err := run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "entries: 2")
	assert.Contains(t, out, "span:    00:00:01,000 --> 00:00:06,000")
	assert.Contains(t, out, "skipped: 1")
	assert.Contains(t, out, "block 2:")
}

func TestInspect_UnknownExtension(t *testing.T) {
	path := writeFile(t, "in.txt", sample)

	_, err := run(t, "inspect", path)
	require.Error(t, err)
}

func TestConvert_ToVTTStdout(t *testing.T) {
	path := writeFile(t, "in.srt", sample)

	out, err := run(t, "convert", path, "--to", "vtt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "WEBVTT"), out)
	assert.Contains(t, out, "The house is red.")
	assert.NotContains(t, out, "Lost line")
}

func TestConvert_ToFile(t *testing.T) {
	path := writeFile(t, "in.srt", sample)
	dest := filepath.Join(t.TempDir(), "out.srt")

	_, err := run(t, "convert", path, "--to", "srt", "-o", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "1\n00:00:01,000 --> 00:00:02,000\nI see the house.\n\n3\n00:00:05,000 --> 00:00:06,000\nThe house is red.", string(data))
}

func TestConvert_RequiresTarget(t *testing.T) {
	path := writeFile(t, "in.srt", sample)

	_, err := run(t, "convert", path)
	require.Error(t, err)

	_, err = run(t, "convert", path, "--to", "docx")
	require.Error(t, err)
}

func TestGlossaryCheck(t *testing.T) {
	subs := writeFile(t, "in.srt", sample)
	dict := writeFile(t, "dictionary.json", `{"house": "ⵜⵉⴳⵎⵎⵉ", "boat": "aɣerrabu"}`)

	out, err := run(t, "glossary", "check", dict, subs)
	require.NoError(t, err)
	assert.Contains(t, out, "2 terms, 2 lines")
	assert.Contains(t, out, "house -> ⵜⵉⴳⵎⵎⵉ: lines [1 3]")
	assert.Contains(t, out, "boat -> aɣerrabu: not found")
	assert.Contains(t, out, "1 terms do not occur")
}

func TestGlossaryCheck_InvalidGlossary(t *testing.T) {
	subs := writeFile(t, "in.srt", sample)
	dict := writeFile(t, "dictionary.json", `["house"]`)

	_, err := run(t, "glossary", "check", dict, subs)
	require.Error(t, err)
}
