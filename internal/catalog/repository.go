package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrSignNotFound is returned when a sign id does not exist.
var ErrSignNotFound = errors.New("sign not found")

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides read-only access to the signs catalog in Postgres.
type Repository struct {
	db querier
}

// NewRepository constructs a catalog repository over a pgx pool.
func NewRepository(db querier) *Repository {
	return &Repository{db: db}
}

// SampleUsable returns up to count random signs that have usable media and
// match the filter. Fewer rows than requested means the pool is too small.
func (r *Repository) SampleUsable(ctx context.Context, f Filter, count int) ([]Sign, error) {
	maxDifficulty := f.MaxDifficulty
	if maxDifficulty <= 0 {
		maxDifficulty = 1
	}

	query := `
		SELECT sign_id, display_text, category, difficulty, media_ref
		FROM signs
		WHERE media_ref <> '' AND difficulty <= $1`
	args := []any{maxDifficulty}
	if f.Topic != "" {
		query += ` AND category = $2`
		args = append(args, f.Topic)
	}
	query += fmt.Sprintf(` ORDER BY random() LIMIT %d`, count)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sample signs: %w", err)
	}
	defer rows.Close()

	var signs []Sign
	for rows.Next() {
		var s Sign
		if err := rows.Scan(&s.ID, &s.Display, &s.Category, &s.Difficulty, &s.MediaRef); err != nil {
			return nil, fmt.Errorf("scan sign: %w", err)
		}
		signs = append(signs, s)
	}
	return signs, rows.Err()
}

// ListUsableDisplayTexts returns the display text of every sign with usable
// media. The quiz builder draws distractors from this pool.
func (r *Repository) ListUsableDisplayTexts(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT display_text FROM signs WHERE media_ref <> '' AND display_text <> ''`)
	if err != nil {
		return nil, fmt.Errorf("list display texts: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan display text: %w", err)
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

// Search lists signs matching the term against display text, category, or
// tags. An empty term lists everything up to limit.
func (r *Repository) Search(ctx context.Context, term string, limit int) ([]ListItem, error) {
	query := `
		SELECT sign_id, display_text, category, media_ref
		FROM signs`
	args := []any{}
	if term != "" {
		query += `
		WHERE display_text ILIKE '%' || $1 || '%'
		   OR category ILIKE '%' || $1 || '%'
		   OR EXISTS (SELECT 1 FROM unnest(tags) tag WHERE tag ILIKE '%' || $1 || '%')`
		args = append(args, term)
	}
	query += fmt.Sprintf(` ORDER BY display_text LIMIT %d`, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search signs: %w", err)
	}
	defer rows.Close()

	items := make([]ListItem, 0, limit)
	for rows.Next() {
		var it ListItem
		if err := rows.Scan(&it.ID, &it.Label, &it.Category, &it.MediaRef); err != nil {
			return nil, fmt.Errorf("scan sign row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetByID fetches full details for a single sign.
func (r *Repository) GetByID(ctx context.Context, id string) (*Detail, error) {
	row := r.db.QueryRow(ctx, `
		SELECT sign_id, display_text, category, COALESCE(description, ''),
		       COALESCE(aliases, '{}'), COALESCE(tags, '{}'), difficulty, media_ref
		FROM signs WHERE sign_id = $1`, id)

	var d Detail
	if err := row.Scan(&d.ID, &d.Label, &d.Category, &d.Description, &d.Aliases, &d.Tags, &d.Difficulty, &d.MediaRef); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSignNotFound
		}
		return nil, fmt.Errorf("get sign: %w", err)
	}
	return &d, nil
}
