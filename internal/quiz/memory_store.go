package quiz

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory SessionStore for tests and local development.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	locks    map[string]*sync.Mutex
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Create persists a new session.
func (s *MemoryStore) Create(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := session.ID.String()
	if _, ok := s.sessions[key]; ok {
		return fmt.Errorf("session %s already exists", key)
	}
	s.sessions[key] = copySession(session)
	return nil
}

// Get loads a session copy by id.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copySession(session), nil
}

// Update overwrites an existing session.
func (s *MemoryStore) Update(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := session.ID.String()
	if _, ok := s.sessions[key]; !ok {
		return ErrSessionNotFound
	}
	s.sessions[key] = copySession(session)
	return nil
}

// Lock acquires the per-session mutex.
func (s *MemoryStore) Lock(ctx context.Context, sessionID string) (func() error, error) {
	s.mu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return func() error {
		lock.Unlock()
		return nil
	}, nil
}

// copySession deep-copies so callers never share slices with the store.
func copySession(in *Session) *Session {
	out := *in
	out.Questions = make([]Question, len(in.Questions))
	for i, q := range in.Questions {
		qc := q
		qc.Choices = append([]string(nil), q.Choices...)
		out.Questions[i] = qc
	}
	out.Answers = append([]int(nil), in.Answers...)
	if in.FinishedAt != nil {
		t := *in.FinishedAt
		out.FinishedAt = &t
	}
	return &out
}
