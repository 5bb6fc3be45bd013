// Package normalize turns loose language names into canonical ones.
package normalize

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// nameToBase maps lower-cased English language names to their base
// language, built once from every two-letter code x/text knows.
var nameToBase = sync.OnceValue(func() map[string]language.Base {
	names := display.English.Languages()
	out := make(map[string]language.Base, 200)
	for a := 'a'; a <= 'z'; a++ {
		for b := 'a'; b <= 'z'; b++ {
			base, err := language.ParseBase(string([]rune{a, b}))
			if err != nil {
				continue
			}
			name := names.Name(language.Make(base.String()))
			if name == "" {
				continue
			}
			out[strings.ToLower(name)] = base
		}
	}
	// Common names the CLDR table spells differently.
	out["farsi"] = language.MustParseBase("fa")
	out["scottish gaelic"] = language.MustParseBase("gd")
	return out
})

// Language converts various language representations to English display
// names. It handles:
//   - ISO 639-1 codes: "en" -> "English"
//   - ISO 639-2 codes: "deu" -> "German"
//   - Locale codes: "en-US", "pt_BR" -> "English", "Portuguese"
//   - Language names in any case: "FARSI" -> "Persian"
//
// Returns empty string for unrecognized values.
func Language(raw string) string {
	base, ok := parse(raw)
	if !ok {
		return ""
	}
	return display.English.Languages().Name(language.Make(base.String()))
}

// DetectedLanguage cleans a model's answer to "which language is this".
// Recognized languages come back as their display name; anything else
// is returned trimmed of quotes and punctuation, so rarer languages
// survive as the model spelled them.
func DetectedLanguage(reply string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(reply), "\n")
	line = strings.Trim(strings.TrimSpace(line), "\"'`*.!:; ")
	if line == "" {
		return ""
	}
	if name := Language(line); name != "" {
		return name
	}
	return line
}

func parse(raw string) (language.Base, bool) {
	s := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, "\x00", "")))
	if s == "" {
		return language.Base{}, false
	}

	if base, ok := nameToBase()[s]; ok {
		return base, true
	}

	s = strings.ReplaceAll(s, "_", "-")
	// Only code-shaped input goes to the tag parser; a word like "klingon"
	// is well-formed BCP 47 and would otherwise be guessed at.
	code, _, _ := strings.Cut(s, "-")
	if len(code) < 2 || len(code) > 3 {
		return language.Base{}, false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Base{}, false
	}
	base, conf := tag.Base()
	if conf == language.No || base.String() == "und" {
		return language.Base{}, false
	}
	return base, true
}
