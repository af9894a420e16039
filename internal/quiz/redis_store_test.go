package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour, zerolog.Nop()), mr
}

func sampleSession() *Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &Session{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Level:  1,
		Questions: []Question{
			{SignID: "a", MediaRef: "media/a.mp4", Choices: []string{"w", "x", "y", "z"}, CorrectIndex: 2},
		},
		Answers:   []int{AnswerPending},
		StartedAt: now,
	}
}

func TestRedisStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)
	session := sampleSession()

	require.NoError(t, store.Create(ctx, session))

	loaded, err := store.Get(ctx, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, session.UserID, loaded.UserID)
	assert.Equal(t, session.Questions, loaded.Questions)
	assert.Equal(t, []int{AnswerPending}, loaded.Answers)
}

func TestRedisStore_CreateRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)
	session := sampleSession()

	require.NoError(t, store.Create(ctx, session))
	assert.Error(t, store.Create(ctx, session))
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := newRedisStore(t)

	_, err := store.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_Update(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)
	session := sampleSession()

	require.NoError(t, store.Create(ctx, session))

	session.Answers[0] = 2
	session.Score = ScoreCorrect
	session.CorrectCount = 1
	require.NoError(t, store.Update(ctx, session))

	loaded, err := store.Get(ctx, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []int{2}, loaded.Answers)
	assert.Equal(t, ScoreCorrect, loaded.Score)
	assert.Equal(t, 1, loaded.CorrectCount)
}

func TestRedisStore_UpdateMissing(t *testing.T) {
	store, _ := newRedisStore(t)

	err := store.Update(context.Background(), sampleSession())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_SessionExpires(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	session := sampleSession()

	require.NoError(t, store.Create(ctx, session))

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, session.ID.String())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_LockExcludes(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)
	sessionID := uuid.NewString()

	unlock, err := store.Lock(ctx, sessionID)
	require.NoError(t, err)

	// A second holder times out while the first still owns the lock.
	shortCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = store.Lock(shortCtx, sessionID)
	assert.Error(t, err)

	require.NoError(t, unlock())

	unlock2, err := store.Lock(ctx, sessionID)
	require.NoError(t, err)
	require.NoError(t, unlock2())
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	session := sampleSession()

	require.NoError(t, store.Create(ctx, session))
	assert.Error(t, store.Create(ctx, session))

	loaded, err := store.Get(ctx, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)

	// Mutating the loaded copy must not leak into the store.
	loaded.Answers[0] = 3
	again, err := store.Get(ctx, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, AnswerPending, again.Answers[0])

	loaded.Score = 5
	require.NoError(t, store.Update(ctx, loaded))
	updated, err := store.Get(ctx, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Score)

	_, err = store.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
