package translate

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultPresetsYAML []byte

// Preset is a named block of style guidance for the prompt.
type Preset struct {
	Name        string `yaml:"-" json:"name"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Guidance    string `yaml:"guidance" json:"guidance"`
}

// Presets is the catalogue of available presets.
type Presets struct {
	byName map[string]Preset
}

type presetFile struct {
	Presets map[string]Preset `yaml:"presets"`
}

// DefaultPresets returns the built-in catalogue.
func DefaultPresets() *Presets {
	p, err := ParsePresets(defaultPresetsYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in presets: %v", err))
	}
	return p
}

// LoadPresets reads a catalogue from path, layered over the built-in
// presets. An empty path returns the built-in catalogue.
func LoadPresets(path string) (*Presets, error) {
	presets := DefaultPresets()
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path) //#nosec G304 -- operator-supplied config path
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	custom, err := ParsePresets(data)
	if err != nil {
		return nil, err
	}
	for name, p := range custom.byName {
		presets.byName[name] = p
	}
	return presets, nil
}

// ParsePresets decodes a presets YAML document.
func ParsePresets(data []byte) (*Presets, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	p := &Presets{byName: make(map[string]Preset, len(file.Presets))}
	for name, preset := range file.Presets {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("parse presets: empty preset name")
		}
		preset.Name = name
		preset.Guidance = strings.TrimSpace(preset.Guidance)
		p.byName[name] = preset
	}
	return p, nil
}

// Get looks up a preset by name.
func (p *Presets) Get(name string) (Preset, bool) {
	preset, ok := p.byName[name]
	return preset, ok
}

// List returns all presets sorted by name.
func (p *Presets) List() []Preset {
	out := make([]Preset, 0, len(p.byName))
	for _, preset := range p.byName {
		out = append(out, preset)
	}
	slices.SortFunc(out, func(a, b Preset) int { return strings.Compare(a.Name, b.Name) })
	return out
}
