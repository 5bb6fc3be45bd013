package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/srtwork/srtwork-server/internal/id"
)

const (
	queueSize         = 1000
	clientBufferSize  = 100
	heartbeatInterval = 30 * time.Second
)

// Client is one open event stream. It only receives its workspace's
// events plus broadcasts such as heartbeats.
type Client struct {
	ID          string
	WorkspaceID string
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
}

func (c *Client) close() {
	close(c.Done)
	close(c.EventChan)
}

// Manager fans workspace events out to the streams subscribed to them.
type Manager struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[string]map[string]*Client // workspace id -> client id -> client
	owners      map[string]string             // client id -> workspace id

	// queueMu guards queue against a send after Shutdown closed it.
	queueMu sync.RWMutex
	queue   chan Event
	closed  bool

	running sync.WaitGroup
}

// NewManager creates an idle Manager; call Start to begin delivery.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:      logger,
		subscribers: make(map[string]map[string]*Client),
		owners:      make(map[string]string),
		queue:       make(chan Event, queueSize),
	}
}

// Start delivers queued events and heartbeats until ctx is canceled or
// Shutdown closes the queue.
func (m *Manager) Start(ctx context.Context) {
	m.running.Add(1)
	defer m.running.Done()

	m.logger.Info("SSE manager starting")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-m.queue:
			if !ok {
				return
			}
			m.deliver(event)
		case <-heartbeat.C:
			m.deliver(NewHeartbeatEvent())
		case <-ctx.Done():
			m.logger.Info("SSE manager stopping")
			m.releaseAll()
			return
		}
	}
}

// Shutdown stops accepting events, delivers what is already queued and
// closes every stream.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.queueMu.Lock()
	if m.closed {
		m.queueMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.queueMu.Unlock()

	drained := make(chan struct{})
	go func() {
		for event := range m.queue {
			m.deliver(event)
		}
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		m.logger.Warn("SSE event drain timed out, some events may be lost")
	}

	m.running.Wait()
	m.releaseAll()
	m.logger.Info("SSE manager shutdown complete")
	return nil
}

// Emit queues an event. Values other than Event are logged and dropped,
// and a full queue drops the event rather than blocking the caller.
func (m *Manager) Emit(event any) {
	evt, ok := event.(Event)
	if !ok {
		m.logger.Error("invalid event type emitted")
		return
	}

	m.queueMu.RLock()
	defer m.queueMu.RUnlock()
	if m.closed {
		return
	}

	select {
	case m.queue <- evt:
	default:
		m.logger.Error("SSE event queue full, dropping event",
			slog.String("event_type", string(evt.Type)),
			slog.String("workspace_id", evt.WorkspaceID))
	}
}

// deliver sends event to its workspace's clients, or to every client
// when it names no workspace. A slow client misses the event. After a
// workspace.deleted event the workspace's streams are released: clients
// that received it finish on their own, the others are closed.
func (m *Manager) deliver(event Event) {
	var targets []*Client

	m.mu.RLock()
	if event.WorkspaceID == "" {
		for _, clients := range m.subscribers {
			for _, c := range clients {
				targets = append(targets, c)
			}
		}
	} else {
		for _, c := range m.subscribers[event.WorkspaceID] {
			targets = append(targets, c)
		}
	}

	var missed []*Client
	for _, c := range targets {
		select {
		case c.EventChan <- event:
		default:
			missed = append(missed, c)
			m.logger.Warn("dropped event for slow client",
				slog.String("client_id", c.ID),
				slog.String("event_type", string(event.Type)))
		}
	}
	m.mu.RUnlock()

	if event.Type != EventHeartbeat {
		m.logger.Debug("event delivered",
			slog.String("event_type", string(event.Type)),
			slog.String("workspace_id", event.WorkspaceID),
			slog.Int("delivered", len(targets)-len(missed)),
			slog.Int("dropped", len(missed)))
	}

	if event.Type == EventWorkspaceDeleted && event.WorkspaceID != "" {
		m.release(event.WorkspaceID, missed)
	}
}

// release forgets every client of a workspace and closes the ones in
// stale, which never got the deletion notice.
func (m *Manager) release(workspaceID string, stale []*Client) {
	m.mu.Lock()
	for clientID := range m.subscribers[workspaceID] {
		delete(m.owners, clientID)
	}
	delete(m.subscribers, workspaceID)
	m.mu.Unlock()

	for _, c := range stale {
		c.close()
	}
}

// Connect registers a new stream for a workspace.
func (m *Manager) Connect(workspaceID string) (*Client, error) {
	clientID, err := id.Generate(id.PrefixSSEClient)
	if err != nil {
		return nil, err
	}

	c := &Client{
		ID:          clientID,
		WorkspaceID: workspaceID,
		ConnectedAt: time.Now(),
		EventChan:   make(chan Event, clientBufferSize),
		Done:        make(chan struct{}),
	}

	m.mu.Lock()
	clients, ok := m.subscribers[workspaceID]
	if !ok {
		clients = make(map[string]*Client)
		m.subscribers[workspaceID] = clients
	}
	clients[clientID] = c
	m.owners[clientID] = workspaceID
	total := len(m.owners)
	m.mu.Unlock()

	m.logger.Info("SSE client connected",
		slog.String("client_id", clientID),
		slog.String("workspace_id", workspaceID),
		slog.Int("total_clients", total))
	return c, nil
}

// Disconnect removes a client and closes its channels. Unknown or
// already released clients are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	workspaceID, ok := m.owners[clientID]
	if !ok {
		m.mu.Unlock()
		return
	}
	c := m.subscribers[workspaceID][clientID]
	delete(m.owners, clientID)
	delete(m.subscribers[workspaceID], clientID)
	if len(m.subscribers[workspaceID]) == 0 {
		delete(m.subscribers, workspaceID)
	}
	total := len(m.owners)
	m.mu.Unlock()

	c.close()

	m.logger.Info("SSE client disconnected",
		slog.String("client_id", clientID),
		slog.Duration("duration", time.Since(c.ConnectedAt)),
		slog.Int("total_clients", total))
}

// ClientCount returns the number of open streams.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.owners)
}

// Subscribers returns the number of open streams for one workspace.
func (m *Manager) Subscribers(workspaceID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[workspaceID])
}

func (m *Manager) releaseAll() {
	m.mu.Lock()
	subscribers := m.subscribers
	m.subscribers = make(map[string]map[string]*Client)
	m.owners = make(map[string]string)
	m.mu.Unlock()

	for _, clients := range subscribers {
		for _, c := range clients {
			c.close()
		}
	}
}
