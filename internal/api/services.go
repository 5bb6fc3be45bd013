package api

import (
	"github.com/srtwork/srtwork-server/internal/service"
)

// TranslationInfo describes the configured translation engine.
type TranslationInfo interface {
	Configured() bool
	Engine() string
	TargetLanguage() string
}

// Services groups the business logic used by the API server.
type Services struct {
	Workspaces  *service.WorkspaceService
	Translation TranslationInfo
}
