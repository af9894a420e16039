package catalog

import (
	"context"
	"fmt"
)

// signSource defines repository behavior (implemented by the Postgres Repository).
type signSource interface {
	SampleUsable(ctx context.Context, f Filter, count int) ([]Sign, error)
	ListUsableDisplayTexts(ctx context.Context) ([]string, error)
	Search(ctx context.Context, term string, limit int) ([]ListItem, error)
	GetByID(ctx context.Context, id string) (*Detail, error)
}

// DisplayTextCache defines cache behavior (implemented by the Redis TextCache).
type DisplayTextCache interface {
	Get(ctx context.Context) ([]string, error)
	Set(ctx context.Context, texts []string) error
}

// Service is the read-only accessor over the signs catalog. The quiz builder
// consumes it as its content pool; HTTP handlers use it for browse/detail.
type Service struct {
	source signSource
	cache  DisplayTextCache
}

// NewService composes the repository with an optional text cache.
func NewService(source signSource, cache DisplayTextCache) *Service {
	return &Service{source: source, cache: cache}
}

// SampleUsable draws random usable signs matching the filter.
func (s *Service) SampleUsable(ctx context.Context, f Filter, count int) ([]Sign, error) {
	return s.source.SampleUsable(ctx, f, count)
}

// ListUsableDisplayTexts returns the distractor text pool, cache-first.
func (s *Service) ListUsableDisplayTexts(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if texts, err := s.cache.Get(ctx); err == nil && texts != nil {
			return texts, nil
		}
	}

	texts, err := s.source.ListUsableDisplayTexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load display texts: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, texts)
	}
	return texts, nil
}

// Search lists signs for the browse grid.
func (s *Service) Search(ctx context.Context, term string, limit int) ([]ListItem, error) {
	return s.source.Search(ctx, term, limit)
}

// GetByID fetches details for the sign modal.
func (s *Service) GetByID(ctx context.Context, id string) (*Detail, error) {
	return s.source.GetByID(ctx, id)
}
