package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/sayingsbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a saying cannot be resolved by its text.
	ErrNotFound = errors.New("saying not found")
	// ErrUnknownItem is returned when counters are updated for an id with no row.
	ErrUnknownItem = errors.New("unknown saying id")
)

// InitResult holds the outcome of seeding the store from a catalog
type InitResult struct {
	TotalProcessed int
	Created        int
	Existing       int
}

// SayingRepository handles database operations for sayings and their counters
type SayingRepository struct {
	db *sqlx.DB
}

// NewSayingRepository creates a new repository instance
func NewSayingRepository(db *sqlx.DB) *SayingRepository {
	return &SayingRepository{db: db}
}

// Initialize inserts every saying that is not stored yet with zeroed counters.
// Sayings are matched by source text, so re-running never duplicates rows or
// resets counters.
func (r *SayingRepository) Initialize(ctx context.Context, catalog []models.Saying) (*InitResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO sayings (source_text, correct_translation, incorrect_translation, difficulty_level)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (source_text) DO NOTHING
	`)

	result := &InitResult{}
	for _, s := range catalog {
		res, err := tx.ExecContext(ctx, query,
			s.SourceText,
			s.CorrectTranslation,
			s.IncorrectTranslation,
			s.DifficultyLevel,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert saying %q: %w", s.SourceText, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}

		result.TotalProcessed++
		if rows > 0 {
			result.Created++
		} else {
			result.Existing++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit initialization: %w", err)
	}
	return result, nil
}

// RecordAttempt bumps the attempt counter of a saying and, when the answer was
// correct, its correct-attempt counter. Both counters move in one statement.
func (r *SayingRepository) RecordAttempt(ctx context.Context, id int64, wasCorrect bool) error {
	delta := 0
	if wasCorrect {
		delta = 1
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE sayings SET
			attempts = attempts + 1,
			correct_attempts = correct_attempts + ?
		WHERE id = ?
	`), delta, id)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("record attempt for id %d: %w", id, ErrUnknownItem)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit attempt: %w", err)
	}
	return nil
}

// LookupIDBySourceText resolves the store id of a saying from its text
func (r *SayingRepository) LookupIDBySourceText(ctx context.Context, text string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind("SELECT id FROM sayings WHERE source_text = ?"), text)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup %q: %w", text, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up saying: %w", err)
	}
	return id, nil
}

// GetByID returns a saying with its counters
func (r *SayingRepository) GetByID(ctx context.Context, id int64) (*models.SayingStats, error) {
	var stats models.SayingStats
	err := r.db.GetContext(ctx, &stats, r.db.Rebind(`
		SELECT id, source_text, correct_translation, incorrect_translation,
		       difficulty_level, attempts, correct_attempts
		FROM sayings
		WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get saying %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saying by ID: %w", err)
	}
	return &stats, nil
}

// List returns all sayings with their counters ordered by id
func (r *SayingRepository) List(ctx context.Context) ([]models.SayingStats, error) {
	stats := []models.SayingStats{}
	err := r.db.SelectContext(ctx, &stats, `
		SELECT id, source_text, correct_translation, incorrect_translation,
		       difficulty_level, attempts, correct_attempts
		FROM sayings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sayings: %w", err)
	}
	return stats, nil
}

// Ping checks that the database is reachable
func (r *SayingRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
