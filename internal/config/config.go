// Package config loads server configuration from command-line flags,
// environment variables and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/srtwork/srtwork-server/internal/domain"
	"github.com/srtwork/srtwork-server/internal/translate"
)

// Config holds the application configuration.
type Config struct {
	App         AppConfig
	Logger      LoggerConfig
	Server      ServerConfig
	Translation TranslationConfig
	Workspace   WorkspaceConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // default: 8080
	ReadTimeout  time.Duration // default: 15s
	WriteTimeout time.Duration // default: 0, SSE streams stay open
	IdleTimeout  time.Duration // default: 60s
	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string
}

// TranslationConfig selects the model backing translations.
type TranslationConfig struct {
	Provider       string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	TargetLanguage string
	// PresetsPath points at a YAML file of extra prompt presets.
	PresetsPath string
	Timeout     time.Duration
}

// Engine converts the section to the translate package's engine config.
func (t TranslationConfig) Engine() translate.EngineConfig {
	return translate.EngineConfig{
		Provider:      t.Provider,
		GeminiAPIKey:  t.GeminiAPIKey,
		GeminiModel:   t.GeminiModel,
		GeminiBaseURL: t.GeminiBaseURL,
		OpenAIAPIKey:  t.OpenAIAPIKey,
		OpenAIModel:   t.OpenAIModel,
		OpenAIBaseURL: t.OpenAIBaseURL,
		Timeout:       t.Timeout,
	}
}

// WorkspaceConfig holds defaults for translation workspaces.
type WorkspaceConfig struct {
	// IdleTTL is how long an untouched workspace is kept.
	IdleTTL       time.Duration
	ContextWindow int
}

// Settings returns the settings new workspaces start with.
func (w WorkspaceConfig) Settings() domain.Settings {
	s := domain.DefaultSettings()
	s.ContextBefore = w.ContextWindow
	s.ContextAfter = w.ContextWindow
	return s
}

// Load builds the configuration with precedence:
// 1. Command-line flags in args.
// 2. Environment variables.
// 3. The .env file (never overriding real environment variables).
// 4. Defaults.
func Load(args []string) (*Config, error) {
	flags := flag.NewFlagSet("srtwork", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	env := flags.String("env", "", "Environment (development, staging, production)")
	logLevel := flags.String("log-level", "", "Log level (debug, info, warn, error)")
	envFile := flags.String("env-file", ".env", "Path to .env file")

	port := flags.String("port", "", "Server port (default: 8080)")
	readTimeout := flags.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flags.String("write-timeout", "", "HTTP write timeout (default: none)")
	idleTimeout := flags.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := flags.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")

	provider := flags.String("provider", "", "Translation provider (gemini, openai)")
	targetLanguage := flags.String("target-language", "", "Language lines are translated into")
	presetsPath := flags.String("presets", "", "Path to a YAML file of prompt presets")
	translationTimeout := flags.String("translation-timeout", "", "Per-request model timeout (default: 2m)")

	idleTTL := flags.String("workspace-idle-ttl", "", "Evict workspaces idle longer than this (default: 24h)")
	contextWindow := flags.String("context-window", "", "Default context lines before and after (default: 2)")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := loadEnvFile(*envFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*port, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Translation: TranslationConfig{
			Provider:       strings.ToLower(getConfigValue(*provider, "TRANSLATION_PROVIDER", translate.EngineGemini)),
			GeminiAPIKey:   getConfigValue("", "GEMINI_API_KEY", os.Getenv("API_KEY")),
			GeminiModel:    getConfigValue("", "GEMINI_MODEL", translate.DefaultGeminiModel),
			GeminiBaseURL:  getConfigValue("", "GEMINI_BASE_URL", ""),
			OpenAIAPIKey:   getConfigValue("", "OPENAI_API_KEY", ""),
			OpenAIModel:    getConfigValue("", "OPENAI_MODEL", translate.DefaultOpenAIModel),
			OpenAIBaseURL:  getConfigValue("", "OPENAI_BASE_URL", ""),
			TargetLanguage: getConfigValue(*targetLanguage, "TARGET_LANGUAGE", translate.DefaultTargetLanguage),
			PresetsPath:    getConfigValue(*presetsPath, "PRESETS_PATH", ""),
		},
	}

	var err error
	durations := []struct {
		dst      *time.Duration
		flag     string
		key      string
		fallback string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "0s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Translation.Timeout, *translationTimeout, "TRANSLATION_TIMEOUT", "2m"},
		{&cfg.Workspace.IdleTTL, *idleTTL, "WORKSPACE_IDLE_TTL", "24h"},
	}
	for _, d := range durations {
		if *d.dst, err = getDurationConfigValue(d.flag, d.key, d.fallback); err != nil {
			return nil, err
		}
	}

	if cfg.Workspace.ContextWindow, err = getIntConfigValue(*contextWindow, "CONTEXT_WINDOW", domain.DefaultContextWindow); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all config values are usable.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Translation.Provider {
	case translate.EngineGemini, translate.EngineOpenAI:
	default:
		return fmt.Errorf("invalid translation provider: %s (must be gemini or openai)", c.Translation.Provider)
	}

	if c.Workspace.ContextWindow < domain.MinContextWindow || c.Workspace.ContextWindow > domain.MaxContextWindow {
		return fmt.Errorf("invalid context window: %d (must be between %d and %d)",
			c.Workspace.ContextWindow, domain.MinContextWindow, domain.MaxContextWindow)
	}

	if c.Workspace.IdleTTL <= 0 {
		return errors.New("workspace idle TTL must be positive")
	}

	return nil
}

// TranslationConfigured reports whether the selected provider has a
// credential.
func (c *Config) TranslationConfigured() bool {
	if c.Translation.Provider == translate.EngineOpenAI {
		return c.Translation.OpenAIAPIKey != ""
	}
	return c.Translation.GeminiAPIKey != ""
}

// loadEnvFile loads path into the environment. A missing file is not an
// error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, s, err)
	}
	return n, nil
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, s, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
