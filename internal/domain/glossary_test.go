package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlossary_SetKeepsInsertionOrder(t *testing.T) {
	g := NewGlossary()
	g.Set("house", "ⵜⵉⴳⵎⵎⵉ")
	g.Set("water", "ⴰⵎⴰⵏ")
	g.Set("house", "ⴰⵅⵅⴰⵎ")

	assert.Equal(t, []GlossaryEntry{
		{Source: "house", Target: "ⴰⵅⵅⴰⵎ"},
		{Source: "water", Target: "ⴰⵎⴰⵏ"},
	}, g.Entries())
	assert.Equal(t, 2, g.Len())
}

func TestGlossary_Delete(t *testing.T) {
	g := GlossaryFromEntries([]GlossaryEntry{
		{Source: "a", Target: "1"},
		{Source: "b", Target: "2"},
		{Source: "c", Target: "3"},
	})

	assert.True(t, g.Delete("b"))
	assert.False(t, g.Delete("b"))

	_, ok := g.Get("b")
	assert.False(t, ok)
	assert.Equal(t, []GlossaryEntry{{Source: "a", Target: "1"}, {Source: "c", Target: "3"}}, g.Entries())
}

func TestGlossary_CloneIsIndependent(t *testing.T) {
	g := GlossaryFromEntries([]GlossaryEntry{{Source: "a", Target: "1"}})
	c := g.Clone()
	c.Set("b", "2")
	c.Set("a", "changed")

	v, _ := g.Get("a")
	assert.Equal(t, "1", v)
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, 2, c.Len())
}

func TestGlossary_ExportFormat(t *testing.T) {
	g := GlossaryFromEntries([]GlossaryEntry{
		{Source: "zebra", Target: "z"},
		{Source: "apple", Target: "a & b"},
	})

	data, err := g.ExportJSON()
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"zebra\": \"z\",\n  \"apple\": \"a & b\"\n}", string(data))
}

func TestGlossary_ExportEmpty(t *testing.T) {
	data, err := NewGlossary().ExportJSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestGlossary_ExportImportRoundTrip(t *testing.T) {
	g := GlossaryFromEntries([]GlossaryEntry{
		{Source: "house", Target: "ⵜⵉⴳⵎⵎⵉ"},
		{Source: "\"quoted\"", Target: "line\nbreak"},
		{Source: "bread", Target: "ⴰⵖⵔⵓⵎ"},
	})

	data, err := g.ExportJSON()
	require.NoError(t, err)

	imported, err := ParseGlossary(data)
	require.NoError(t, err)
	assert.True(t, g.Equal(imported))
}

func TestParseGlossary_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array", `["a", "b"]`},
		{"string", `"house"`},
		{"number", `42`},
		{"null", `null`},
		{"nested object", `{"a": {"b": "c"}}`},
		{"number value", `{"a": 1}`},
		{"invalid json", `{"a": "b"`},
		{"empty input", ``},
		{"trailing data", `{"a": "b"} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGlossary([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrGlossaryNotObject))
		})
	}
}

func TestParseGlossary_PreservesFileOrder(t *testing.T) {
	g, err := ParseGlossary([]byte(`{"c": "3", "a": "1", "b": "2"}`))
	require.NoError(t, err)

	assert.Equal(t, []GlossaryEntry{
		{Source: "c", Target: "3"},
		{Source: "a", Target: "1"},
		{Source: "b", Target: "2"},
	}, g.Entries())
}

func TestParseGlossary_EmptyObject(t *testing.T) {
	g, err := ParseGlossary([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
}
