package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/golang/glog"

	"intellitest/internal/app"
	"intellitest/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// With a positive ttl every save pushes the session's expiry out by ttl,
// like SET EX in the Redis store; expired sessions read as not found and are
// dropped by Sweep.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	sessions map[string]storedSession
}

type storedSession struct {
	state     app.State
	expiresAt time.Time
}

// NewSessionStore keeps sessions until they are deleted.
func NewSessionStore() *SessionStore {
	return NewSessionStoreWithTTL(0)
}

// NewSessionStoreWithTTL expires sessions ttl after their last save.
func NewSessionStoreWithTTL(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]storedSession),
	}
}

func (s *SessionStore) Save(_ context.Context, state app.State) error {
	entry := storedSession{state: state}
	if s.ttl > 0 {
		entry.expiresAt = s.clock().Add(s.ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.ID] = entry
	return nil
}

func (s *SessionStore) Load(_ context.Context, sessionID string) (app.State, error) {
	now := s.clock()
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sessionID]
	if !ok || entry.expired(now) {
		return app.State{}, domain.ErrSessionNotFound
	}
	return entry.state, nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// SessionIDs lists the live sessions in id order.
func (s *SessionStore) SessionIDs(_ context.Context) ([]string, error) {
	now := s.clock()
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id, entry := range s.sessions {
		if !entry.expired(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.sessions {
		if entry.expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				glog.V(1).Infof("swept %d expired sessions", n)
			}
		}
	}
}

// Len reports how many sessions are held, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (e storedSession) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
