package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
	"github.com/JustAGhosT/content-creation-sub001/internal/metrics"
)

const (
	// DefaultSessionTTL is how long an idle session is kept alive.
	DefaultSessionTTL = 30 * time.Minute
	// sweepInterval is how often expired sessions are collected.
	sweepInterval = 1 * time.Minute
)

// Manager tracks the live pipeline sessions for this process instance.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration

	dispatcher Dispatcher
	metrics    *metrics.Metrics
	logger     logger.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	startMu  sync.Mutex
}

// NewManager creates a session manager. A non-positive ttl falls back to
// DefaultSessionTTL.
func NewManager(dispatcher Dispatcher, m *metrics.Metrics, log logger.Logger, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		sessions:   make(map[string]*Session),
		ttl:        ttl,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     log,
		stopChan:   make(chan struct{}),
	}
}

// Create makes a new session with a generated id.
func (m *Manager) Create() *Session {
	session := newSession(uuid.NewString(), m.dispatcher, m.metrics, m.logger)

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Debug("session created", logger.String("session_id", session.ID))
	return session
}

// Get returns the session with the given id, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// GetOrCreate returns the session with the given id, creating a fresh one
// when id is empty or unknown.
func (m *Manager) GetOrCreate(id string) *Session {
	if id != "" {
		if session := m.Get(id); session != nil {
			return session
		}
	}
	return m.Create()
}

// Destroy removes the session with the given id.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Start begins the background sweep of expired sessions.
func (m *Manager) Start(ctx context.Context) {
	m.startMu.Lock()
	if m.started {
		m.startMu.Unlock()
		return
	}
	m.started = true
	m.startMu.Unlock()

	m.wg.Add(1)
	go m.runSweep(ctx)
}

// Stop gracefully stops the sweeper.
func (m *Manager) Stop() {
	m.startMu.Lock()
	if !m.started {
		m.startMu.Unlock()
		return
	}
	m.startMu.Unlock()

	close(m.stopChan)
	m.wg.Wait()
}

func (m *Manager) runSweep(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweepExpired()
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweepExpired drops sessions idle for longer than the TTL.
func (m *Manager) sweepExpired() {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	swept := 0
	for id, session := range m.sessions {
		session.mu.Lock()
		expired := session.lastActive.Before(cutoff)
		session.mu.Unlock()
		if expired {
			delete(m.sessions, id)
			swept++
		}
	}

	if swept > 0 {
		m.logger.Debug("swept expired sessions",
			logger.Int("swept", swept),
			logger.Int("remaining", len(m.sessions)),
		)
	}
}
