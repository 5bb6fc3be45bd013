// Package translate builds translation prompts and sends them to a
// text-generation engine.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "github.com/srtwork/srtwork-server/internal/errors"
	"github.com/srtwork/srtwork-server/internal/normalize"
)

// ErrNotConfigured is returned by every gateway call when no engine
// credential is configured.
var ErrNotConfigured = domainerrors.NotConfigured("translation service credential is not configured")

// ErrBlocked is wrapped by engines when the model refuses a prompt.
var ErrBlocked = errors.New("prompt blocked by model")

// FailureKind classifies a failed translation.
type FailureKind string

// Failure kinds.
const (
	FailureRemote  FailureKind = "remote"
	FailureEmpty   FailureKind = "empty"
	FailureBlocked FailureKind = "blocked"
)

// TranslationError reports a failed translation call.
type TranslationError struct {
	Kind   FailureKind
	Engine string
	Err    error
}

func (e *TranslationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s translation failed (%s)", e.Engine, e.Kind)
	}
	return fmt.Sprintf("%s translation failed (%s): %v", e.Engine, e.Kind, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

// Generator sends a prompt to a model and returns its raw text.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gateway turns translation requests into prompts for a Generator and
// interprets the results. A Gateway without a Generator is unconfigured.
type Gateway struct {
	generator      Generator
	targetLanguage string
	logger         *slog.Logger
}

// NewGateway creates a gateway. gen may be nil.
func NewGateway(gen Generator, targetLanguage string, logger *slog.Logger) *Gateway {
	if targetLanguage == "" {
		targetLanguage = DefaultTargetLanguage
	}
	return &Gateway{generator: gen, targetLanguage: targetLanguage, logger: logger}
}

// Configured reports whether the gateway has an engine.
func (g *Gateway) Configured() bool {
	return g.generator != nil
}

// Engine returns the engine name, or "none".
func (g *Gateway) Engine() string {
	if g.generator == nil {
		return "none"
	}
	return g.generator.Name()
}

// TargetLanguage returns the language lines are translated into.
func (g *Gateway) TargetLanguage() string {
	return g.targetLanguage
}

// DetectLanguage asks the model for the language of sample. Remote
// failures yield UnknownLanguage rather than an error.
func (g *Gateway) DetectLanguage(ctx context.Context, sample string) (string, error) {
	if g.generator == nil {
		return "", ErrNotConfigured
	}
	if sample == "" {
		return "", nil
	}

	start := time.Now()
	text, err := g.generator.Generate(ctx, DetectionPrompt(sample))
	if err != nil {
		g.logger.Warn("language detection failed", "engine", g.generator.Name(), "error", err)
		return UnknownLanguage, nil
	}
	lang := normalize.DetectedLanguage(text)
	if lang == "" {
		return UnknownLanguage, nil
	}

	g.logger.Debug("language detected", "engine", g.generator.Name(), "language", lang, "duration", time.Since(start))
	return lang, nil
}

// Prompt renders the prompt Translate would send for r.
func (g *Gateway) Prompt(r Request) string {
	if r.TargetLanguage == "" {
		r.TargetLanguage = g.targetLanguage
	}
	return ComposePrompt(r)
}

// Translate sends one line to the model. Failures are *TranslationError
// values; a missing credential is ErrNotConfigured.
func (g *Gateway) Translate(ctx context.Context, r Request) (string, error) {
	if g.generator == nil {
		return "", ErrNotConfigured
	}

	name := g.generator.Name()
	start := time.Now()
	text, err := g.generator.Generate(ctx, g.Prompt(r))
	if err != nil {
		kind := FailureRemote
		if errors.Is(err, ErrBlocked) {
			kind = FailureBlocked
		}
		return "", &TranslationError{Kind: kind, Engine: name, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &TranslationError{Kind: FailureEmpty, Engine: name}
	}

	g.logger.Debug("line translated", "engine", name, "chars", len(text), "duration", time.Since(start))
	return text, nil
}
