package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.HabitRepository = (*PostgresHabitRepository)(nil)

const habitColumns = `
    id, user_id, title, description, color, icon, sort_order,
    schedule_kind, weekdays, duration_days,
    challenge_completed_count, current_streak, best_streak, start_date,
    archived_at, version, deleted_at, created_at, updated_at`

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanHabit(row scannable, weekdays sql.Scanner, tags *[]string) (*domain.Habit, error) {
	var h domain.Habit

	err := row.Scan(
		&h.ID, &h.UserID, &h.Title, &h.Description, &h.Color, &h.Icon, &h.SortOrder,
		&h.Schedule.Kind, weekdays, &h.Schedule.DurationDays,
		&h.ChallengeCompletedCount, &h.CurrentStreak, &h.BestStreak, &h.StartDate,
		&h.ArchivedAt, &h.Version, &h.DeletedAt, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	days, err := domain.ParseWeekdaySet(*tags)
	if err != nil {
		return nil, fmt.Errorf("failed to decode weekdays of habit %s: %w", h.ID, err)
	}
	h.Schedule.Days = days

	return &h, nil
}

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var tags []string
	return scanHabit(row, pq.Array(&tags), &tags)
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (
            id, user_id, title, description, color, icon, sort_order,
            schedule_kind, weekdays, duration_days,
            challenge_completed_count, current_streak, best_streak, start_date,
            archived_at, version, deleted_at, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7,
            $8, $9, $10,
            $11, $12, $13, $14,
            $15, 1, NULL, $16, $17
        )`

	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Title, h.Description, h.Color, h.Icon, h.SortOrder,
		h.Schedule.Kind, pq.Array(h.Schedule.Days.Tags()), h.Schedule.DurationDays,
		h.ChallengeCompletedCount, h.CurrentStreak, h.BestStreak, h.StartDate,
		h.ArchivedAt, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrHabitConflict
		case isForeignKeyViolation(err):
			return fmt.Errorf("%w: owner %s does not exist", domain.ErrHabitInvalidUserID, h.UserID)
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND deleted_at IS NULL`

	h, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY sort_order ASC, created_at DESC`

	return r.queryHabits(ctx, query, userID)
}

func (r *PostgresHabitRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	query := `SELECT id FROM habits WHERE deleted_at IS NULL AND archived_at IS NULL ORDER BY id`

	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("active habits query error: %w", err)
	}
	return ids, nil
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	query := `
        UPDATE habits SET
            title=$1, description=$2, color=$3, icon=$4, sort_order=$5,
            schedule_kind=$6, weekdays=$7, duration_days=$8,
            challenge_completed_count=$9, start_date=$10, archived_at=$11,
            updated_at=NOW(), version = version + 1
        WHERE id=$12 AND version=$13 AND deleted_at IS NULL
        RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		h.Title, h.Description, h.Color, h.Icon, h.SortOrder,
		h.Schedule.Kind, pq.Array(h.Schedule.Days.Tags()), h.Schedule.DurationDays,
		h.ChallengeCompletedCount, h.StartDate, h.ArchivedAt,
		h.ID, h.Version,
	)

	var newVersion int
	var newUpdatedAt time.Time

	if err := row.Scan(&newVersion, &newUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.missingOrConflict(ctx, h.ID)
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	h.Version = newVersion
	h.UpdatedAt = newUpdatedAt

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE habits
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "delete", query, id)
}

func (r *PostgresHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	return r.queryHabits(ctx, query, userID, since)
}

// UpdateStreaks touches updated_at so that sync clients pick up the new
// values, but leaves the version alone: streaks are derived, not edited.
func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	query := `
        UPDATE habits
        SET current_streak = $1, best_streak = GREATEST(best_streak, $2), updated_at = NOW()
        WHERE id = $3 AND deleted_at IS NULL`

	return r.execOne(ctx, "streak update", query, current, best, id)
}

func (r *PostgresHabitRepository) UpdateChallengeCount(ctx context.Context, id string, count int) error {
	query := `
        UPDATE habits
        SET challenge_completed_count = GREATEST($1, 0), updated_at = NOW()
        WHERE id = $2 AND deleted_at IS NULL`

	return r.execOne(ctx, "challenge update", query, count, id)
}

func (r *PostgresHabitRepository) queryHabits(ctx context.Context, query string, args ...any) ([]*domain.Habit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	habits := []*domain.Habit{}
	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (r *PostgresHabitRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s query failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

func (r *PostgresHabitRepository) missingOrConflict(ctx context.Context, id string) error {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM habits WHERE id = $1 AND deleted_at IS NULL`, id); err != nil {
		return fmt.Errorf("existence check failed: %w", err)
	}
	if count == 0 {
		return domain.ErrHabitNotFound
	}
	return domain.ErrHabitConflict
}
