package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrBusy reports that the session already runs an action.
	ErrBusy = errors.New("session busy")
	// ErrNotFound reports an unknown or evicted session.
	ErrNotFound = errors.New("session not found")
)

type entry struct {
	busy    sync.Mutex
	state   State
	touched time.Time
}

// Store keeps session states in memory.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewStore returns a store that evicts sessions idle for longer than ttl.
// A non-positive ttl disables eviction.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new idle session and returns its id.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.evictLocked(now)
	id := uuid.NewString()
	s.sessions[id] = &entry{touched: now, state: State{Stage: StageIdle}}
	return id
}

// Get returns the state of a session.
func (s *Store) Get(id string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.evictLocked(now)
	e, ok := s.sessions[id]
	if !ok {
		return State{}, false
	}
	e.touched = now
	return e.state, true
}

// Ensure returns id when it names a live session, otherwise a new session id.
func (s *Store) Ensure(id string) string {
	if id != "" {
		if _, ok := s.Get(id); ok {
			return id
		}
	}
	return s.Create()
}

// Do runs fn against the session's state and stores the result. Only one Do
// may run per session at a time; a concurrent call returns ErrBusy.
func (s *Store) Do(id string, fn func(State) (State, error)) (State, error) {
	// The action lock is taken under s.mu so eviction cannot drop the entry
	// between lookup and lock.
	s.mu.Lock()
	s.evictLocked(s.now())
	e, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return State{}, ErrNotFound
	}
	if !e.busy.TryLock() {
		s.mu.Unlock()
		return State{}, ErrBusy
	}
	current := e.state
	s.mu.Unlock()
	defer e.busy.Unlock()

	next, err := fn(current)

	s.mu.Lock()
	e.state = next
	e.touched = s.now()
	s.mu.Unlock()
	return next, err
}

// Publish replaces the visible state of a session without taking its action
// lock. Used to expose in-flight progress.
func (s *Store) Publish(id string, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[id]; ok {
		e.state = st
		e.touched = s.now()
	}
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) evictLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, e := range s.sessions {
		if now.Sub(e.touched) <= s.ttl {
			continue
		}
		if !e.busy.TryLock() {
			continue
		}
		e.busy.Unlock()
		delete(s.sessions, id)
	}
}
