package glossary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanWord(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"house", "house"},
		{"house,", "house"},
		{"  ¿Qué?  ", "Qué"},
		{"ⵜⵉⴳⵎⵎⵉ؟", "ⵜⵉⴳⵎⵎⵉ"},
		{"«ⴰⵎⴰⵏ»", "ⴰⵎⴰⵏ"},
		{`"house"`, "house"},
		{"(house)", "house"},
		{"don't", "don't"},
		{"42!", "42"},
		{"...", ""},
		{"؟،", ""},
		{"   ", ""},
		{"-", ""},
		{"café", "café"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanWord(tt.raw))
		})
	}
}

func TestTokenize_ReassemblesInput(t *testing.T) {
	inputs := []string{
		"Hello, world!",
		"ⴰⵣⵓⵍ ⴼⵍⵍⴰⴽ؟ ⵜⵉⴳⵎⵎⵉ",
		"  leading and trailing  ",
		"line one\nline two",
		"",
	}

	for _, in := range inputs {
		var b strings.Builder
		for _, tok := range Tokenize(in, true) {
			b.WriteString(tok.Text)
		}
		assert.Equal(t, in, b.String())
	}
}

func TestTokenize_Selectable(t *testing.T) {
	tokens := Tokenize("Hi, you!", true)

	require.Len(t, tokens, 5)
	assert.Equal(t, Token{Text: "Hi", Word: "Hi", Selectable: true}, tokens[0])
	assert.Equal(t, Token{Text: ","}, tokens[1])
	assert.Equal(t, Token{Text: " "}, tokens[2])
	assert.Equal(t, Token{Text: "you", Word: "you", Selectable: true}, tokens[3])
	assert.Equal(t, Token{Text: "!"}, tokens[4])
}

func TestTokenize_NotSelectableWhenDisabled(t *testing.T) {
	for _, tok := range Tokenize("ⴰⵣⵓⵍ ⴼⵍⵍⴰⴽ", false) {
		assert.False(t, tok.Selectable)
	}
}
