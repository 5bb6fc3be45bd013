package translate

import (
	"fmt"
	"strings"

	"github.com/srtwork/srtwork-server/internal/domain"
)

// DefaultTargetLanguage is the language lines are translated into.
const DefaultTargetLanguage = "Standard Moroccan Amazigh (using the Tifinagh script)"

// UnknownLanguage is reported when language detection fails.
const UnknownLanguage = "Unknown"

// Request is everything needed to translate one line.
type Request struct {
	Text           string
	Context        Window
	Glossary       *domain.Glossary
	SourceLanguage string
	TargetLanguage string
	// Guidance is preset style text appended to the prompt.
	Guidance string
}

// ComposePrompt renders the translation prompt for a request.
func ComposePrompt(r Request) string {
	source := strings.TrimSpace(r.SourceLanguage)
	if source == "" || source == UnknownLanguage {
		source = "the source language"
	}
	target := strings.TrimSpace(r.TargetLanguage)
	if target == "" {
		target = DefaultTargetLanguage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert translator specializing in translating subtitles from %s to %s.\n", source, target)
	b.WriteString("Your task is to translate ONLY the \"TARGET LINE\".\n\n")
	b.WriteString("- Use the \"CONTEXT\" from surrounding subtitle lines to ensure the translation is accurate and flows naturally.\n")
	b.WriteString("- Strictly adhere to the \"DICTIONARY\" for specific word translations to maintain consistency.\n")
	b.WriteString("- Your response must contain only the translated text of the target line, with no extra explanations, labels, or formatting.\n")

	section(&b, "DICTIONARY", RenderGlossary(r.Glossary))
	if g := strings.TrimSpace(r.Guidance); g != "" {
		section(&b, "STYLE", g)
	}
	section(&b, "CONTEXT (Before)", joinOr(r.Context.Before, NoContextBefore))
	section(&b, "TARGET LINE", r.Text)
	section(&b, "CONTEXT (After)", joinOr(r.Context.After, NoContextAfter))
	b.WriteString("---\n")

	return b.String()
}

// DetectionPrompt asks the model to name the language of sample.
func DetectionPrompt(sample string) string {
	return "Detect the language of the following text. Respond with only the name of the language in English " +
		"(e.g., \"Arabic\", \"English\", \"French\"). Do not add any other words or punctuation.\n\n" +
		"Text: \"\"\"" + sample + "\"\"\""
}

func section(b *strings.Builder, title, body string) {
	b.WriteString("---\n")
	b.WriteString(title)
	b.WriteString(":\n")
	b.WriteString(body)
	b.WriteString("\n")
}

func joinOr(lines []string, placeholder string) string {
	joined := strings.Join(lines, "\n")
	if strings.TrimSpace(joined) == "" {
		return placeholder
	}
	return joined
}
