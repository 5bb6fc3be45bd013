// Package di provides dependency injection configuration for the SRTWork server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/srtwork/srtwork-server/internal/config"
	"github.com/srtwork/srtwork-server/internal/di/providers"
	"github.com/srtwork/srtwork-server/internal/logger"
	"github.com/srtwork/srtwork-server/internal/translate"
	"github.com/srtwork/srtwork-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideValidator)

	// Translation layer
	do.Provide(injector, providers.ProvideGateway)
	do.Provide(injector, providers.ProvidePresets)

	// Business services
	do.Provide(injector, providers.ProvideWorkspaceService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the HTTP server is
// listening in the background.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	if _, err := do.Invoke[*translate.Gateway](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*translate.Presets](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*providers.WorkspaceServiceHandle](injector)

	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
