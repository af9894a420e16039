package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// beginner is satisfied by *pgxpool.Pool.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore persists ledgers in the quiz_progress table. Update runs a
// transaction with a row lock so concurrent finalizations never lose deltas.
type PostgresStore struct {
	db beginner
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore constructs a ledger store over a pgx pool.
func NewPostgresStore(db beginner) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get reads the current ledger without locking.
func (s *PostgresStore) Get(ctx context.Context, userID uuid.UUID) (Ledger, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Ledger{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	ledger, err := loadLedger(ctx, tx, userID, false)
	if err != nil {
		return Ledger{}, err
	}
	return ledger, tx.Commit(ctx)
}

// Update applies fn under a SELECT ... FOR UPDATE row lock and upserts the result.
func (s *PostgresStore) Update(ctx context.Context, userID uuid.UUID, fn func(*Ledger) error) (Ledger, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Ledger{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	ledger, err := loadLedger(ctx, tx, userID, true)
	if err != nil {
		return Ledger{}, err
	}

	ledger.normalize()
	if err := fn(&ledger); err != nil {
		return Ledger{}, err
	}

	if err := saveLedger(ctx, tx, userID, ledger); err != nil {
		return Ledger{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Ledger{}, fmt.Errorf("commit: %w", err)
	}
	return ledger, nil
}

// Reset reinitializes the user's ledger to the fresh state.
func (s *PostgresStore) Reset(ctx context.Context, userID uuid.UUID) (Ledger, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Ledger{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	fresh := NewLedger()
	if err := saveLedger(ctx, tx, userID, fresh); err != nil {
		return Ledger{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Ledger{}, fmt.Errorf("commit: %w", err)
	}
	return fresh, nil
}

func loadLedger(ctx context.Context, tx pgx.Tx, userID uuid.UUID, forUpdate bool) (Ledger, error) {
	query := `SELECT unlocked_level, total_score, stars_by_level FROM quiz_progress WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		ledger    Ledger
		starsJSON []byte
	)
	err := tx.QueryRow(ctx, query, userID).Scan(&ledger.UnlockedLevel, &ledger.TotalScore, &starsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return NewLedger(), nil
	}
	if err != nil {
		return Ledger{}, fmt.Errorf("load ledger: %w", err)
	}

	if len(starsJSON) > 0 {
		if err := json.Unmarshal(starsJSON, &ledger.StarsByLevel); err != nil {
			return Ledger{}, fmt.Errorf("decode stars: %w", err)
		}
	}
	ledger.normalize()
	return ledger, nil
}

func saveLedger(ctx context.Context, tx pgx.Tx, userID uuid.UUID, ledger Ledger) error {
	starsJSON, err := json.Marshal(ledger.StarsByLevel)
	if err != nil {
		return fmt.Errorf("encode stars: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO quiz_progress (user_id, unlocked_level, total_score, stars_by_level, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE SET
			unlocked_level = EXCLUDED.unlocked_level,
			total_score    = EXCLUDED.total_score,
			stars_by_level = EXCLUDED.stars_by_level,
			updated_at     = now()`,
		userID, ledger.UnlockedLevel, ledger.TotalScore, starsJSON)
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}
