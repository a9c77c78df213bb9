// Package session keeps per-visitor wizard state and the latest generation
// result per tool. State lives in process memory and expires after a TTL.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/wizard"
)

const DefaultTTL = 30 * time.Minute

type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{ttl: ttl, now: time.Now, sessions: make(map[string]*Session)}
}

// Get returns the session for key, creating it when absent or expired.
func (s *Store) Get(key string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess, ok := s.sessions[key]
	if !ok || now.Sub(sess.lastSeen()) > s.ttl {
		sess = &Session{
			wizards: make(map[string]*wizard.Wizard),
			results: make(map[string]*domain.GenerationResult),
		}
		s.sessions[key] = sess
	}
	sess.touch(now)
	return sess
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, sess := range s.sessions {
		if now.Sub(sess.lastSeen()) > s.ttl {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// Session holds one visitor's wizards and results keyed by tool.
type Session struct {
	mu      sync.Mutex
	seen    time.Time
	wizards map[string]*wizard.Wizard
	results map[string]*domain.GenerationResult
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.seen = t
	s.mu.Unlock()
}

func (s *Session) lastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}

// Wizard runs fn against the tool's wizard under the session lock, creating
// the wizard on first use, and returns the resulting snapshot.
func (s *Session) Wizard(tool domain.ToolDescriptor, fn func(w *wizard.Wizard) error) (wizard.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wizards[tool.Key]
	if !ok {
		w = wizard.New(tool)
		s.wizards[tool.Key] = w
	}
	var err error
	if fn != nil {
		err = fn(w)
	}
	return w.Snapshot(), err
}

// Discard drops the tool's wizard and result.
func (s *Session) Discard(toolKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wizards, toolKey)
	delete(s.results, toolKey)
}

func (s *Session) Result(toolKey string) (*domain.GenerationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[toolKey]
	return res, ok
}

func (s *Session) SetResult(res *domain.GenerationResult) {
	if res == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[res.ToolKey] = res
}
