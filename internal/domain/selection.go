package domain

import "fmt"

// Side identifies which text of a line a word was picked from.
type Side string

// Sides of a subtitle line.
const (
	SideOriginal   Side = "original"
	SideTranslated Side = "translated"
)

// ParseSide converts a string to a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideOriginal, SideTranslated:
		return Side(s), nil
	default:
		return "", fmt.Errorf("unknown side %q", s)
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideOriginal {
		return SideTranslated
	}
	return SideOriginal
}

// WordSelection is the first half of a glossary pairing gesture.
type WordSelection struct {
	LineID int    `json:"line_id"`
	Word   string `json:"word"`
	Side   Side   `json:"side"`
}

// Pairs reports whether next completes a pair with s: same line, other
// side.
func (s WordSelection) Pairs(next WordSelection) bool {
	return s.LineID == next.LineID && s.Side != next.Side
}

// Field names an editable text of an entry.
type Field string

// Editable fields.
const (
	FieldOriginal    Field = "original"
	FieldTranslation Field = "translation"
)

// ParseField converts a string to a Field.
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldOriginal, FieldTranslation:
		return Field(s), nil
	default:
		return "", fmt.Errorf("unknown field %q", s)
	}
}
