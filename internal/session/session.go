// Package session manages SSE client sessions: a keyed table of open
// streams with one worker goroutine per session draining inbound
// JSON-RPC messages in arrival order. A session survives tool failures;
// only client disconnect, server shutdown, an idle sweep, or a
// transport error closes it, and cleanup runs exactly once.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"toolbelt-mcp/internal/mcp"
)

const (
	inboxBuffer = 32
	eventBuffer = 16

	defaultHeartbeat = 15 * time.Second
)

var (
	// ErrUnknownSession reports a sessionId with no open session.
	ErrUnknownSession = errors.New("session: unknown session")
	// ErrClosed reports delivery to a session that has been closed.
	ErrClosed = errors.New("session: session closed")
	// ErrShuttingDown reports an open attempt after Shutdown.
	ErrShuttingDown = errors.New("session: manager shutting down")
)

// Route maps one inbound JSON-RPC message to an optional response. A
// nil response means nothing is pushed to the stream, which is how
// notifications are absorbed.
type Route func(ctx context.Context, s *Session, req *mcp.Request) *mcp.Response

// Session is one open SSE stream. Messages enqueue on inbox and the
// session's worker dispatches them in order, pushing responses onto
// events for the stream writer.
type Session struct {
	ID string

	inbox  chan *mcp.Request
	events chan *mcp.Response

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu         sync.Mutex
	openedAt   time.Time
	lastActive time.Time
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Events is the stream of responses awaiting the SSE writer.
func (s *Session) Events() <-chan *mcp.Response { return s.events }

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// LastActive reports when the session last received a message or was
// opened.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) deliver(ctx context.Context, req *mcp.Request) error {
	select {
	case s.inbox <- req:
		s.touch()
		return nil
	case <-s.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Manager owns the session table. Route is fixed at construction;
// Heartbeat and OnClose may be adjusted before the first Open.
type Manager struct {
	// Heartbeat is the interval between SSE keepalive comments.
	Heartbeat time.Duration
	// OnClose runs once per session after it is deregistered.
	OnClose func(*Session)

	route  Route
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// NewManager builds an empty session table dispatching through route.
// A nil logger falls back to slog.Default().
func NewManager(route Route, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		Heartbeat: defaultHeartbeat,
		route:     route,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Open registers a new session and starts its worker.
func (m *Manager) Open() (*Session, error) {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		inbox:      make(chan *mcp.Request, inboxBuffer),
		events:     make(chan *mcp.Response, eventBuffer),
		ctx:        ctx,
		cancel:     cancel,
		openedAt:   now,
		lastActive: now,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		return nil, ErrShuttingDown
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	go m.work(s)
	m.logger.Info("session opened", "session_id", s.ID)
	return s, nil
}

// Get returns the open session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Deliver enqueues a message on the identified session's inbox. FIFO
// per session; blocks only while the inbox is full.
func (m *Manager) Deliver(ctx context.Context, id string, req *mcp.Request) error {
	s, ok := m.Get(id)
	if !ok {
		return ErrUnknownSession
	}
	return s.deliver(ctx, req)
}

// Close closes the identified session. Returns false if it was not
// open.
func (m *Manager) Close(id string) bool {
	s, ok := m.Get(id)
	if !ok {
		return false
	}
	m.closeSession(s, "closed")
	return true
}

// CloseIdle closes every session idle for longer than ttl and returns
// how many were closed.
func (m *Manager) CloseIdle(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-ttl)

	m.mu.RLock()
	stale := make([]*Session, 0)
	for _, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range stale {
		m.closeSession(s, "idle")
	}
	return len(stale)
}

// Shutdown closes every open session and refuses new ones.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		m.closeSession(s, "shutdown")
	}
	return ctx.Err()
}

func (m *Manager) closeSession(s *Session, reason string) {
	s.closeOnce.Do(func() {
		s.cancel()
		m.mu.Lock()
		delete(m.sessions, s.ID)
		m.mu.Unlock()
		if m.OnClose != nil {
			m.OnClose(s)
		}
		m.logger.Info("session closed",
			"session_id", s.ID,
			"reason", reason,
			"open_for", time.Since(s.openedAt).Round(time.Millisecond).String())
	})
}

// work drains the inbox until the session closes. Responses push in
// dispatch order, so per-session ordering is the arrival order.
func (m *Manager) work(s *Session) {
	for {
		select {
		case req := <-s.inbox:
			resp := m.route(s.ctx, s, req)
			if resp == nil {
				continue
			}
			select {
			case s.events <- resp:
			case <-s.ctx.Done():
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}
