package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/eventlist-manager/backend/internal/controller"
)

// DefaultIdleTimeout is how long an unused session is kept.
const DefaultIdleTimeout = 30 * time.Minute

// Manager hands out sessions by id and expires idle ones.
type Manager struct {
	api         controller.EventAPI
	idleTimeout time.Duration
	cron        *cron.Cron

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager whose sessions talk to api.
func NewManager(api controller.EventAPI, idleTimeout time.Duration) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Manager{
		api:         api,
		idleTimeout: idleTimeout,
		cron:        cron.New(cron.WithSeconds()),
		sessions:    make(map[string]*Session),
	}
}

// Start schedules the idle session sweep.
func (m *Manager) Start() error {
	log.Println("Starting session sweeper...")
	if _, err := m.cron.AddFunc("@every 1m", func() {
		if n := m.Sweep(time.Now()); n > 0 {
			log.Printf("Expired %d idle sessions", n)
		}
	}); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop halts the sweeper and waits for a running sweep to finish.
func (m *Manager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Session sweeper stopped")
}

// Get returns a live session and marks it used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.Touch()
	}
	return s, ok
}

// Create starts a new session, loading events through the API. The session
// is only registered if the initial load succeeds.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s, err := Start(ctx, uuid.NewString(), m.api)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Sweep drops sessions idle for longer than the idle timeout and returns how
// many were dropped.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := 0
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) > m.idleTimeout {
			delete(m.sessions, id)
			expired++
		}
	}
	return expired
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
