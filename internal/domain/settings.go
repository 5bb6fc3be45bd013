package domain

// Context window bounds.
const (
	MinContextWindow     = 0
	MaxContextWindow     = 5
	DefaultContextWindow = 2
)

// DefaultPreset is the prompt style used when none is chosen.
const DefaultPreset = "general"

// Settings tune how translation requests are built for a workspace.
type Settings struct {
	ContextBefore        int    `json:"context_before"`
	ContextAfter         int    `json:"context_after"`
	UseTranslatedContext bool   `json:"use_translated_context"`
	Preset               string `json:"preset"`
	// SourceLanguage overrides the detected language when set.
	SourceLanguage string `json:"source_language,omitempty"`
}

// DefaultSettings returns the settings a new workspace starts with.
func DefaultSettings() Settings {
	return Settings{
		ContextBefore:        DefaultContextWindow,
		ContextAfter:         DefaultContextWindow,
		UseTranslatedContext: true,
		Preset:               DefaultPreset,
	}
}

// SettingsPatch carries a partial settings update; nil fields are left
// unchanged.
type SettingsPatch struct {
	ContextBefore        *int    `json:"context_before,omitempty" validate:"omitempty,min=0,max=5"`
	ContextAfter         *int    `json:"context_after,omitempty" validate:"omitempty,min=0,max=5"`
	UseTranslatedContext *bool   `json:"use_translated_context,omitempty"`
	Preset               *string `json:"preset,omitempty" validate:"omitempty,min=1,max=64"`
	SourceLanguage       *string `json:"source_language,omitempty" validate:"omitempty,max=64"`
}

// Apply returns s with the patch applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.ContextBefore != nil {
		s.ContextBefore = *p.ContextBefore
	}
	if p.ContextAfter != nil {
		s.ContextAfter = *p.ContextAfter
	}
	if p.UseTranslatedContext != nil {
		s.UseTranslatedContext = *p.UseTranslatedContext
	}
	if p.Preset != nil {
		s.Preset = *p.Preset
	}
	if p.SourceLanguage != nil {
		s.SourceLanguage = *p.SourceLanguage
	}
	return s
}
