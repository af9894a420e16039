package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultSessionTTL = 24 * time.Hour
	lockTTL           = 30 * time.Second
	lockRetryInterval = 50 * time.Millisecond
	lockWaitTimeout   = 5 * time.Second
)

// unlockScript deletes the lock only if we still own it.
const unlockScript = `
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`

// RedisStore persists sessions as JSON in Redis and serializes mutations with
// a per-session SetNX lock.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

var _ SessionStore = (*RedisStore)(nil)

// NewRedisStore creates a session store backed by Redis. A non-positive ttl
// gets the 24h default; sessions older than that are treated as expired.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		logger: logger.With().Str("component", "session_store").Logger(),
	}
}

// Create persists a new session under its id.
func (s *RedisStore) Create(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := s.redis.SetNX(ctx, s.sessionKey(session.ID.String()), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	return nil
}

// Get loads a session by id.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Update overwrites the stored session, keeping the remaining TTL.
func (s *RedisStore) Update(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	key := s.sessionKey(session.ID.String())
	set, err := s.redis.SetXX(ctx, key, data, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if !set {
		return ErrSessionNotFound
	}
	return nil
}

// Lock acquires the per-session distributed lock, waiting briefly when another
// request holds it. The lock expires after 30s as a crash guard.
func (s *RedisStore) Lock(ctx context.Context, sessionID string) (func() error, error) {
	key := s.lockKey(sessionID)
	lockValue := uuid.New().String()
	deadline := time.Now().Add(lockWaitTimeout)

	for {
		acquired, err := s.redis.SetNX(ctx, key, lockValue, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if acquired {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("lock on session %s is held", sessionID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	unlock := func() error {
		if err := s.redis.Eval(ctx, unlockScript, []string{key}, lockValue).Err(); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to release session lock")
			return err
		}
		return nil
	}
	return unlock, nil
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return fmt.Sprintf("quiz:session:%s", sessionID)
}

func (s *RedisStore) lockKey(sessionID string) string {
	return fmt.Sprintf("quiz:lock:%s", sessionID)
}
