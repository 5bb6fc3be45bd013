// Package glossary handles the word-level side of glossary building:
// splitting subtitle text into clickable tokens and cleaning picked words.
package glossary

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Punctuation stripped from picked words, Latin and Arabic script.
const strippedPunctuation = ".,!?؟،؛"

var tokenSplitter = regexp.MustCompile(`(\s+|[.,!?؟،؛])`)

// Token is a piece of subtitle text as shown to the user.
type Token struct {
	Text string `json:"text"`
	// Word is the cleaned form committed to the glossary; empty for
	// separators and punctuation.
	Word       string `json:"word,omitempty"`
	Selectable bool   `json:"selectable"`
}

// CleanWord strips punctuation and surrounding space from a picked word
// and normalises it to NFC. It returns "" when nothing alphanumeric is
// left.
func CleanWord(raw string) string {
	w := strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedPunctuation, r) {
			return -1
		}
		return r
	}, raw)
	w = strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	w = norm.NFC.String(w)
	if !hasAlphanumeric(w) {
		return ""
	}
	return w
}

func hasAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Tokenize splits text on whitespace and punctuation, keeping the
// separators so the tokens concatenate back to the input. Words are
// marked selectable when selectable is true and they carry alphanumeric
// content.
func Tokenize(text string, selectable bool) []Token {
	tokens := []Token{}
	last := 0
	for _, loc := range tokenSplitter.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			tokens = append(tokens, wordToken(text[last:loc[0]], selectable))
		}
		tokens = append(tokens, Token{Text: text[loc[0]:loc[1]]})
		last = loc[1]
	}
	if last < len(text) {
		tokens = append(tokens, wordToken(text[last:], selectable))
	}
	return tokens
}

func wordToken(text string, selectable bool) Token {
	word := CleanWord(text)
	return Token{Text: text, Word: word, Selectable: selectable && word != ""}
}
