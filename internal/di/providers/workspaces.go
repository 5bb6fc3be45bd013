package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/srtwork/srtwork-server/internal/config"
	"github.com/srtwork/srtwork-server/internal/logger"
	"github.com/srtwork/srtwork-server/internal/service"
	"github.com/srtwork/srtwork-server/internal/translate"
	"github.com/srtwork/srtwork-server/internal/validation"
)

// WorkspaceServiceHandle wraps the workspace service with its reaper.
type WorkspaceServiceHandle struct {
	*service.WorkspaceService
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *WorkspaceServiceHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.WorkspaceService.Shutdown(ctx)
}

// ProvideWorkspaceService provides the in-memory workspace registry and
// starts evicting idle workspaces.
func ProvideWorkspaceService(i do.Injector) (*WorkspaceServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	gateway := do.MustInvoke[*translate.Gateway](i)
	presets := do.MustInvoke[*translate.Presets](i)
	validator := do.MustInvoke[*validation.Validator](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	svc := service.NewWorkspaceService(gateway, presets, validator, sseHandle.Manager, cfg, log.Component("workspace"))

	ctx, cancel := context.WithCancel(context.Background())
	svc.StartReaper(ctx)

	log.Info("Workspace service started", "idle_ttl", cfg.Workspace.IdleTTL)

	return &WorkspaceServiceHandle{
		WorkspaceService: svc,
		cancel:           cancel,
	}, nil
}
