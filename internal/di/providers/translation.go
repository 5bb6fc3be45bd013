package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/srtwork/srtwork-server/internal/config"
	"github.com/srtwork/srtwork-server/internal/logger"
	"github.com/srtwork/srtwork-server/internal/translate"
	"github.com/srtwork/srtwork-server/internal/validation"
)

// ProvideGateway provides the translation gateway. A missing API key is
// not fatal: the server runs and reports translation as unavailable.
func ProvideGateway(i do.Injector) (*translate.Gateway, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	gen, err := translate.NewGenerator(cfg.Translation.Engine())
	if err != nil {
		return nil, fmt.Errorf("translation engine: %w", err)
	}

	gateway := translate.NewGateway(gen, cfg.Translation.TargetLanguage, log.Component("translate"))
	if gateway.Configured() {
		log.Info("Translation engine ready",
			"engine", gateway.Engine(),
			"target_language", gateway.TargetLanguage(),
		)
	} else {
		log.Warn("No translation API key configured; translation is disabled",
			"provider", cfg.Translation.Provider,
		)
	}
	return gateway, nil
}

// ProvidePresets provides the prompt preset catalogue.
func ProvidePresets(i do.Injector) (*translate.Presets, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	presets, err := translate.LoadPresets(cfg.Translation.PresetsPath)
	if err != nil {
		return nil, err
	}
	log.Info("Presets loaded", "count", len(presets.List()), "path", cfg.Translation.PresetsPath)
	return presets, nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
