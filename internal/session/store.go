// Package session keeps one dashboard view per browser session.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/hedgeai/internal/core"
	"github.com/newthinker/hedgeai/internal/dashboard"
)

// Factory creates the view of a new session.
type Factory func() (*dashboard.View, error)

// Session is a dashboard view bound to an ID.
type Session struct {
	ID        string
	View      *dashboard.View
	CreatedAt time.Time
	LastSeen  time.Time
}

// Store manages sessions.
type Store struct {
	sessions map[string]*Session
	order    []string // Track insertion order for eviction
	maxSize  int
	ttl      time.Duration
	factory  Factory
	now      func() time.Time
	mu       sync.Mutex
}

// NewStore creates a new session store. A zero ttl keeps idle sessions
// until they are evicted by size.
func NewStore(maxSize int, ttl time.Duration, factory Factory) *Store {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Store{
		sessions: make(map[string]*Session),
		order:    make([]string, 0, maxSize),
		maxSize:  maxSize,
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
	}
}

// Create starts a new session with a fresh view.
func (s *Store) Create() (*Session, error) {
	view, err := s.factory()
	if err != nil {
		return nil, fmt.Errorf("creating view: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		View:      view,
		CreatedAt: now,
		LastSeen:  now,
	}

	// Evict oldest if at capacity
	for len(s.sessions) >= s.maxSize && len(s.order) > 0 {
		oldest := s.order[0]
		delete(s.sessions, oldest)
		s.order = s.order[1:]
	}

	s.sessions[sess.ID] = sess
	s.order = append(s.order, sess.ID)

	return sess, nil
}

// Get retrieves a live session by ID and marks it as seen.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	now := s.now()
	if s.expired(sess, now) {
		s.remove(id)
		return nil, core.ErrSessionNotFound
	}

	sess.LastSeen = now
	return sess, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown
// or expired. The bool reports whether a session was created.
func (s *Store) GetOrCreate(id string) (*Session, bool, error) {
	if id != "" {
		if sess, err := s.Get(id); err == nil {
			return sess, false, nil
		}
	}
	sess, err := s.Create()
	if err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			s.remove(id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done. onSweep, if not
// nil, receives the removed and remaining counts after each pass.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed, remaining int)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := s.Sweep()
			if onSweep != nil {
				onSweep(removed, s.Len())
			}
		}
	}
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.LastSeen) > s.ttl
}

// remove must be called with mu held.
func (s *Store) remove(id string) {
	delete(s.sessions, id)
	for i, candidate := range s.order {
		if candidate == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
