package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	signs     []Sign
	texts     []string
	textCalls int
	items     []ListItem
	detail    *Detail
}

func (s *stubSource) SampleUsable(ctx context.Context, f Filter, count int) ([]Sign, error) {
	if count > len(s.signs) {
		count = len(s.signs)
	}
	return s.signs[:count], nil
}

func (s *stubSource) ListUsableDisplayTexts(ctx context.Context) ([]string, error) {
	s.textCalls++
	return s.texts, nil
}

func (s *stubSource) Search(ctx context.Context, term string, limit int) ([]ListItem, error) {
	return s.items, nil
}

func (s *stubSource) GetByID(ctx context.Context, id string) (*Detail, error) {
	if s.detail == nil || s.detail.ID != id {
		return nil, ErrSignNotFound
	}
	return s.detail, nil
}

func newTextCacheForTest(t *testing.T) (*TextCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTextCache(client, time.Minute), mr
}

func TestTextCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTextCacheForTest(t)

	missed, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, missed)

	texts := []string{"Hello", "Thank You", "Please"}
	require.NoError(t, cache.Set(ctx, texts))

	cached, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, texts, cached)

	require.NoError(t, cache.Invalidate(ctx))
	gone, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestTextCache_Expires(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTextCacheForTest(t)

	require.NoError(t, cache.Set(ctx, []string{"Hello"}))
	mr.FastForward(2 * time.Minute)

	cached, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestService_DisplayTextsCacheFirst(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTextCacheForTest(t)
	source := &stubSource{texts: []string{"Hello", "Thank You", "Please", "Sorry"}}
	svc := NewService(source, cache)

	first, err := svc.ListUsableDisplayTexts(ctx)
	require.NoError(t, err)
	assert.Equal(t, source.texts, first)
	assert.Equal(t, 1, source.textCalls)

	// The second read is served from the cache.
	second, err := svc.ListUsableDisplayTexts(ctx)
	require.NoError(t, err)
	assert.Equal(t, source.texts, second)
	assert.Equal(t, 1, source.textCalls)
}

func TestService_DisplayTextsWithoutCache(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{texts: []string{"Hello"}}
	svc := NewService(source, nil)

	texts, err := svc.ListUsableDisplayTexts(ctx)
	require.NoError(t, err)
	assert.Equal(t, source.texts, texts)
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{detail: &Detail{ID: "abc", Label: "Hello"}}
	svc := NewService(source, nil)

	detail, err := svc.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Hello", detail.Label)

	_, err = svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrSignNotFound)
}
