package editor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type session struct {
	vm       *ViewModel
	lastSeen time.Time
}

// SessionManager keeps one view-model per open editor session. Sessions
// untouched for longer than the idle timeout are disposed by SweepIdle,
// unless someone is still subscribed to their changes.
type SessionManager struct {
	repo        Repository
	pageSize    int
	idleTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionManager creates a new session manager. A non-positive
// idleTimeout disables eviction.
func NewSessionManager(repo Repository, pageSize int, idleTimeout time.Duration, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionManager{
		repo:        repo,
		pageSize:    pageSize,
		idleTimeout: idleTimeout,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
}

// Open creates a session and performs its initial fetch. The session is
// registered even when the fetch fails; the error is returned so the caller
// can report that the list is empty for now.
func (sm *SessionManager) Open(ctx context.Context) (string, *ViewModel, error) {
	id := uuid.NewString()
	vm := NewViewModel(sm.repo, sm.pageSize, sm.logger.With(zap.String("session", id)))

	sm.mu.Lock()
	sm.sessions[id] = &session{vm: vm, lastSeen: sm.now()}
	sm.mu.Unlock()

	sm.logger.Info("editor session opened", zap.String("session", id))

	return id, vm, vm.Load(ctx)
}

// Get retrieves an open session and marks it as used.
func (sm *SessionManager) Get(id string) (*ViewModel, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s, ok := sm.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = sm.now()
	return s.vm, true
}

// Close disposes and removes a session. It reports whether the session existed.
func (sm *SessionManager) Close(id string) bool {
	sm.mu.Lock()
	s, ok := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()

	if !ok {
		return false
	}

	s.vm.Dispose()
	sm.logger.Info("editor session closed", zap.String("session", id))
	return true
}

// CloseAll disposes every open session.
func (sm *SessionManager) CloseAll() {
	sm.mu.Lock()
	sessions := sm.sessions
	sm.sessions = make(map[string]*session)
	sm.mu.Unlock()

	for _, s := range sessions {
		s.vm.Dispose()
	}
}

// SweepIdle disposes and removes the sessions idle for at least the idle
// timeout and returns how many were evicted.
func (sm *SessionManager) SweepIdle() int {
	if sm.idleTimeout <= 0 {
		return 0
	}

	now := sm.now()
	var evicted []*ViewModel

	sm.mu.Lock()
	for id, s := range sm.sessions {
		if now.Sub(s.lastSeen) < sm.idleTimeout || s.vm.hasSubscribers() {
			continue
		}
		delete(sm.sessions, id)
		evicted = append(evicted, s.vm)
		sm.logger.Info("editor session expired", zap.String("session", id))
	}
	sm.mu.Unlock()

	for _, vm := range evicted {
		vm.Dispose()
	}
	return len(evicted)
}

// RunSweeper calls SweepIdle every interval until ctx is done.
func (sm *SessionManager) RunSweeper(ctx context.Context, interval time.Duration) {
	if sm.idleTimeout <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sm.SweepIdle(); n > 0 {
				sm.logger.Debug("idle editor sessions swept", zap.Int("evicted", n), zap.Int("open", sm.Len()))
			}
		}
	}
}

// Len returns the number of open sessions.
func (sm *SessionManager) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}
