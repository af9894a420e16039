package quiz

import "context"

// SessionStore is durable keyed storage for full session state, answer key
// included. Implementations must support atomic read-modify-write per session;
// the Service acquires the per-session lock before Get/Update pairs.
type SessionStore interface {
	// Create persists a new session. The session id must be unused.
	Create(ctx context.Context, session *Session) error
	// Get loads a session by id, returning ErrSessionNotFound when absent.
	Get(ctx context.Context, sessionID string) (*Session, error)
	// Update overwrites an existing session's state.
	Update(ctx context.Context, session *Session) error
	// Lock acquires the per-session mutual exclusion and returns its release
	// function. All session mutations happen under this lock.
	Lock(ctx context.Context, sessionID string) (func() error, error)
}
