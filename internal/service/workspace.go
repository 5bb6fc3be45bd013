package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/srtwork/srtwork-server/internal/config"
	"github.com/srtwork/srtwork-server/internal/domain"
	domainerrors "github.com/srtwork/srtwork-server/internal/errors"
	"github.com/srtwork/srtwork-server/internal/id"
	"github.com/srtwork/srtwork-server/internal/sse"
	"github.com/srtwork/srtwork-server/internal/translate"
	"github.com/srtwork/srtwork-server/internal/validation"
	"github.com/srtwork/srtwork-server/internal/workspace"
)

// Reasons attached to workspace.deleted events.
const (
	DeleteReasonRequested = "deleted"
	DeleteReasonIdle      = "idle"
	DeleteReasonShutdown  = "shutdown"
)

// closeTimeout bounds how long a deleted workspace may wait for its
// in-flight translations.
const closeTimeout = 30 * time.Second

// WorkspaceSummary describes a workspace without its document.
type WorkspaceSummary struct {
	ID              string
	CreatedAt       time.Time
	LastAccessAt    time.Time
	EntryCount      int
	TranslatedCount int
	GlossaryCount   int
	SourceLanguage  string
}

type workspaceEntry struct {
	ws         *workspace.Workspace
	lastAccess time.Time
}

// WorkspaceService keeps translation workspaces in memory and evicts
// the ones nobody has touched for a while.
type WorkspaceService struct {
	translator workspace.Translator
	presets    *translate.Presets
	validator  *validation.Validator
	emitter    workspace.EventEmitter
	settings   domain.Settings
	idleTTL    time.Duration
	logger     *slog.Logger
	now        func() time.Time

	mu         sync.Mutex
	workspaces map[string]*workspaceEntry

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewWorkspaceService creates a workspace service.
func NewWorkspaceService(
	translator workspace.Translator,
	presets *translate.Presets,
	validator *validation.Validator,
	emitter workspace.EventEmitter,
	cfg *config.Config,
	logger *slog.Logger,
) *WorkspaceService {
	return &WorkspaceService{
		translator: translator,
		presets:    presets,
		validator:  validator,
		emitter:    emitter,
		settings:   cfg.Workspace.Settings(),
		idleTTL:    cfg.Workspace.IdleTTL,
		logger:     logger,
		now:        time.Now,
		workspaces: make(map[string]*workspaceEntry),
		stop:       make(chan struct{}),
	}
}

// Create makes a new empty workspace.
func (s *WorkspaceService) Create() (*workspace.Workspace, error) {
	wsID, err := id.Generate(id.PrefixWorkspace)
	if err != nil {
		return nil, domainerrors.Internal("failed to generate workspace id", err)
	}

	ws, err := workspace.New(workspace.Options{
		ID:         wsID,
		Translator: s.translator,
		Emitter:    s.emitter,
		Presets:    s.presets,
		Validator:  s.validator,
		Settings:   s.settings,
		Logger:     s.logger,
	})
	if err != nil {
		return nil, domainerrors.Internal("failed to create workspace", err)
	}

	s.mu.Lock()
	s.workspaces[wsID] = &workspaceEntry{ws: ws, lastAccess: s.now()}
	count := len(s.workspaces)
	s.mu.Unlock()

	s.logger.Info("workspace created", "workspace_id", wsID, "workspaces", count)
	return ws, nil
}

// Get returns the workspace and marks it as used.
func (s *WorkspaceService) Get(wsID string) (*workspace.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.workspaces[wsID]
	if !ok {
		return nil, domainerrors.NotFoundf("workspace %s not found", wsID)
	}
	e.lastAccess = s.now()
	return e.ws, nil
}

// Presets returns the translation style presets offered to workspaces.
func (s *WorkspaceService) Presets() *translate.Presets {
	return s.presets
}

// Exists reports whether the workspace is registered, marking it as used.
func (s *WorkspaceService) Exists(wsID string) bool {
	_, err := s.Get(wsID)
	return err == nil
}

// List returns summaries of all workspaces, oldest first.
func (s *WorkspaceService) List() []WorkspaceSummary {
	s.mu.Lock()
	out := make([]WorkspaceSummary, 0, len(s.workspaces))
	for _, e := range s.workspaces {
		st := e.ws.Snapshot()
		out = append(out, WorkspaceSummary{
			ID:              e.ws.ID(),
			CreatedAt:       e.ws.CreatedAt(),
			LastAccessAt:    e.lastAccess,
			EntryCount:      st.Document.Len(),
			TranslatedCount: st.Document.TranslatedCount(),
			GlossaryCount:   st.Glossary.Len(),
			SourceLanguage:  st.EffectiveSourceLanguage(),
		})
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b WorkspaceSummary) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// Count returns the number of live workspaces.
func (s *WorkspaceService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}

// Delete removes a workspace, waiting briefly for its translations.
func (s *WorkspaceService) Delete(ctx context.Context, wsID string) error {
	s.mu.Lock()
	e, ok := s.workspaces[wsID]
	if ok {
		delete(s.workspaces, wsID)
	}
	s.mu.Unlock()

	if !ok {
		return domainerrors.NotFoundf("workspace %s not found", wsID)
	}
	s.close(ctx, e.ws, DeleteReasonRequested)
	return nil
}

func (s *WorkspaceService) close(ctx context.Context, ws *workspace.Workspace, reason string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	if err := ws.Close(ctx); err != nil {
		s.logger.Warn("failed to close workspace", "workspace_id", ws.ID(), "error", err)
	}
	s.emitter.Emit(sse.NewWorkspaceDeletedEvent(ws.ID(), reason))
	s.logger.Info("workspace deleted", "workspace_id", ws.ID(), "reason", reason)
}

// StartReaper evicts idle workspaces until ctx is done or the service
// shuts down.
func (s *WorkspaceService) StartReaper(ctx context.Context) {
	interval := min(s.idleTTL/4, time.Minute)
	if interval <= 0 {
		interval = time.Minute
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.reap(ctx)
			}
		}
	}()
}

// reap removes workspaces idle longer than the TTL and returns their ids.
func (s *WorkspaceService) reap(ctx context.Context) []string {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	var idle []*workspace.Workspace
	for wsID, e := range s.workspaces {
		if e.lastAccess.Before(cutoff) {
			idle = append(idle, e.ws)
			delete(s.workspaces, wsID)
		}
	}
	s.mu.Unlock()

	ids := make([]string, 0, len(idle))
	for _, ws := range idle {
		s.close(ctx, ws, DeleteReasonIdle)
		ids = append(ids, ws.ID())
	}
	if len(ids) > 0 {
		s.logger.Info("evicted idle workspaces", "count", len(ids), "idle_ttl", s.idleTTL)
	}
	return ids
}

// Shutdown stops the reaper and closes every workspace.
func (s *WorkspaceService) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()

	s.mu.Lock()
	all := make([]*workspace.Workspace, 0, len(s.workspaces))
	for _, e := range s.workspaces {
		all = append(all, e.ws)
	}
	clear(s.workspaces)
	s.mu.Unlock()

	for _, ws := range all {
		s.close(ctx, ws, DeleteReasonShutdown)
	}
	if len(all) > 0 {
		s.logger.Info("workspaces closed", "count", len(all))
	}
	return ctx.Err()
}

