package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

var _ domain.CompletionRepository = (*PostgresCompletionRepository)(nil)

type PostgresCompletionRepository struct {
	db *sqlx.DB
}

func NewPostgresCompletionRepository(db *sqlx.DB) *PostgresCompletionRepository {
	return &PostgresCompletionRepository{db: db}
}

// Toggle removes the row when it exists and inserts it otherwise. Both paths
// run in one transaction and the primary key on (habit_id, completion_date)
// serializes concurrent toggles of the same date.
func (r *PostgresCompletionRepository) Toggle(ctx context.Context, c *domain.Completion) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("toggle: begin failed: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM habit_completions WHERE habit_id = $1 AND completion_date = $2`,
		c.HabitID, c.Date)
	if err != nil {
		return false, fmt.Errorf("toggle: delete failed: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	completed := removed == 0
	if completed {
		if _, err := insertCompletion(ctx, tx, c); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("toggle: commit failed: %w", err)
	}
	return completed, nil
}

func (r *PostgresCompletionRepository) Add(ctx context.Context, c *domain.Completion) (bool, error) {
	return insertCompletion(ctx, r.db, c)
}

func insertCompletion(ctx context.Context, db sqlx.ExtContext, c *domain.Completion) (bool, error) {
	query := `
		INSERT INTO habit_completions (habit_id, user_id, completion_date, created_at)
		VALUES (:habit_id, :user_id, :completion_date, :created_at)
		ON CONFLICT (habit_id, completion_date) DO NOTHING`

	res, err := sqlx.NamedExecContext(ctx, db, query, c)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, domain.ErrHabitNotFound
		}
		return false, fmt.Errorf("insert completion failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *PostgresCompletionRepository) Remove(ctx context.Context, habitID string, date domain.CalendarKey) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM habit_completions WHERE habit_id = $1 AND completion_date = $2`,
		habitID, date)
	if err != nil {
		return false, fmt.Errorf("remove completion failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *PostgresCompletionRepository) Exists(ctx context.Context, habitID string, date domain.CalendarKey) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one,
		`SELECT 1 FROM habit_completions WHERE habit_id = $1 AND completion_date = $2`,
		habitID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostgresCompletionRepository) ListDates(ctx context.Context, habitID string) ([]domain.CalendarKey, error) {
	dates := []domain.CalendarKey{}

	query := `
		SELECT completion_date FROM habit_completions
		WHERE habit_id = $1
		ORDER BY completion_date ASC`

	if err := r.db.SelectContext(ctx, &dates, query, habitID); err != nil {
		return nil, fmt.Errorf("list completions failed: %w", err)
	}
	return dates, nil
}

func (r *PostgresCompletionRepository) ListDatesInRange(ctx context.Context, habitID string, from, to domain.CalendarKey) ([]domain.CalendarKey, error) {
	dates := []domain.CalendarKey{}

	query := `
		SELECT completion_date FROM habit_completions
		WHERE habit_id = $1
		  AND completion_date >= $2
		  AND completion_date <= $3
		ORDER BY completion_date ASC`

	if err := r.db.SelectContext(ctx, &dates, query, habitID, from, to); err != nil {
		return nil, fmt.Errorf("list completions failed: %w", err)
	}
	return dates, nil
}
