package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"

	_ "modernc.org/sqlite"
)

var (
	_ domain.HabitRepository      = (*SQLiteHabitRepository)(nil)
	_ domain.CompletionRepository = (*SQLiteCompletionRepository)(nil)
)

// Timestamps are stored as fixed-width UTC text so that string comparison
// in SQL matches chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore is the single-file database behind the offline CLI.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database at path and migrates it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single writer keeps toggles serialized.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.conn.Close() }

func (s *SQLiteStore) Habits() *SQLiteHabitRepository {
	return &SQLiteHabitRepository{db: s.conn}
}

func (s *SQLiteStore) Completions() *SQLiteCompletionRepository {
	return &SQLiteCompletionRepository{db: s.conn}
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			schedule_kind TEXT NOT NULL,
			weekdays TEXT NOT NULL DEFAULT '',
			duration_days INTEGER NOT NULL DEFAULT 0,
			challenge_completed_count INTEGER NOT NULL DEFAULT 0,
			current_streak INTEGER NOT NULL DEFAULT 0,
			best_streak INTEGER NOT NULL DEFAULT 0,
			start_date TEXT NOT NULL DEFAULT '',
			archived_at TEXT,
			version INTEGER NOT NULL DEFAULT 1,
			deleted_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_habits_user ON habits(user_id)`,
		`CREATE TABLE IF NOT EXISTS habit_completions (
			habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			completion_date TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (habit_id, completion_date)
		)`,
	}

	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string { return t.UTC().Format(sqliteTimeLayout) }

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, s)
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type SQLiteHabitRepository struct {
	db *sql.DB
}

func (r *SQLiteHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var (
		h                    domain.Habit
		weekdays             string
		archived, deleted    sql.NullString
		createdAt, updatedAt string
	)

	err := row.Scan(
		&h.ID, &h.UserID, &h.Title, &h.Description, &h.Color, &h.Icon, &h.SortOrder,
		&h.Schedule.Kind, &weekdays, &h.Schedule.DurationDays,
		&h.ChallengeCompletedCount, &h.CurrentStreak, &h.BestStreak, &h.StartDate,
		&archived, &h.Version, &deleted, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	var tags []string
	if weekdays != "" {
		tags = strings.Split(weekdays, ",")
	}
	if h.Schedule.Days, err = domain.ParseWeekdaySet(tags); err != nil {
		return nil, fmt.Errorf("failed to decode weekdays of habit %s: %w", h.ID, err)
	}
	if h.ArchivedAt, err = parseNullTime(archived); err != nil {
		return nil, err
	}
	if h.DeletedAt, err = parseNullTime(deleted); err != nil {
		return nil, err
	}
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if h.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *SQLiteHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
		INSERT INTO habits (` + habitColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, NULL, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Title, h.Description, h.Color, h.Icon, h.SortOrder,
		h.Schedule.Kind, h.Schedule.Days.String(), h.Schedule.DurationDays,
		h.ChallengeCompletedCount, h.CurrentStreak, h.BestStreak, string(h.StartDate),
		formatNullTime(h.ArchivedAt), formatTime(h.CreatedAt), formatTime(h.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *SQLiteHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = ? AND deleted_at IS NULL`

	h, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return h, nil
}

func (r *SQLiteHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY sort_order ASC, created_at DESC`
	return r.queryHabits(ctx, query, userID)
}

func (r *SQLiteHabitRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM habits WHERE deleted_at IS NULL AND archived_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("active habits query error: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	now := time.Now().UTC()

	query := `
		UPDATE habits SET
			title=?, description=?, color=?, icon=?, sort_order=?,
			schedule_kind=?, weekdays=?, duration_days=?,
			challenge_completed_count=?, start_date=?, archived_at=?,
			updated_at=?, version = version + 1
		WHERE id=? AND version=? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query,
		h.Title, h.Description, h.Color, h.Icon, h.SortOrder,
		h.Schedule.Kind, h.Schedule.Days.String(), h.Schedule.DurationDays,
		h.ChallengeCompletedCount, string(h.StartDate), formatNullTime(h.ArchivedAt),
		formatTime(now), h.ID, h.Version,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, h.ID); err != nil {
			return err
		}
		return domain.ErrHabitConflict
	}

	h.Version++
	h.UpdatedAt = now
	return nil
}

func (r *SQLiteHabitRepository) Delete(ctx context.Context, id string) error {
	now := formatTime(time.Now())
	return r.execOne(ctx, "delete",
		`UPDATE habits SET deleted_at = ?, updated_at = ?, version = version + 1
		 WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
}

func (r *SQLiteHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits
		WHERE user_id = ? AND updated_at > ?
		ORDER BY updated_at ASC`
	return r.queryHabits(ctx, query, userID, formatTime(since))
}

func (r *SQLiteHabitRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	return r.execOne(ctx, "streak update",
		`UPDATE habits SET current_streak = ?, best_streak = MAX(best_streak, ?), updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		current, best, formatTime(time.Now()), id)
}

func (r *SQLiteHabitRepository) UpdateChallengeCount(ctx context.Context, id string, count int) error {
	return r.execOne(ctx, "challenge update",
		`UPDATE habits SET challenge_completed_count = MAX(?, 0), updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		count, formatTime(time.Now()), id)
}

func (r *SQLiteHabitRepository) queryHabits(ctx context.Context, query string, args ...any) ([]*domain.Habit, error) {
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

func (r *SQLiteHabitRepository) execOne(ctx context.Context, op, query string, args ...any) error {
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

type SQLiteCompletionRepository struct {
	db *sql.DB
}

func (r *SQLiteCompletionRepository) Toggle(ctx context.Context, c *domain.Completion) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("toggle: begin failed: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM habit_completions WHERE habit_id = ? AND completion_date = ?`,
		c.HabitID, string(c.Date))
	if err != nil {
		return false, fmt.Errorf("toggle: delete failed: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	completed := removed == 0
	if completed {
		if _, err := r.insert(ctx, tx, c); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("toggle: commit failed: %w", err)
	}
	return completed, nil
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteCompletionRepository) insert(ctx context.Context, db sqlExecer, c *domain.Completion) (bool, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO habit_completions (habit_id, user_id, completion_date, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (habit_id, completion_date) DO NOTHING`,
		c.HabitID, c.UserID, string(c.Date), formatTime(c.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
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

func (r *SQLiteCompletionRepository) Add(ctx context.Context, c *domain.Completion) (bool, error) {
	return r.insert(ctx, r.db, c)
}

func (r *SQLiteCompletionRepository) Remove(ctx context.Context, habitID string, date domain.CalendarKey) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM habit_completions WHERE habit_id = ? AND completion_date = ?`,
		habitID, string(date))
	if err != nil {
		return false, fmt.Errorf("remove completion failed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *SQLiteCompletionRepository) Exists(ctx context.Context, habitID string, date domain.CalendarKey) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM habit_completions WHERE habit_id = ? AND completion_date = ?`,
		habitID, string(date)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *SQLiteCompletionRepository) ListDates(ctx context.Context, habitID string) ([]domain.CalendarKey, error) {
	return r.listDates(ctx,
		`SELECT completion_date FROM habit_completions WHERE habit_id = ? ORDER BY completion_date ASC`,
		habitID)
}

func (r *SQLiteCompletionRepository) ListDatesInRange(ctx context.Context, habitID string, from, to domain.CalendarKey) ([]domain.CalendarKey, error) {
	return r.listDates(ctx,
		`SELECT completion_date FROM habit_completions
		 WHERE habit_id = ? AND completion_date >= ? AND completion_date <= ?
		 ORDER BY completion_date ASC`,
		habitID, string(from), string(to))
}

func (r *SQLiteCompletionRepository) listDates(ctx context.Context, query string, args ...any) ([]domain.CalendarKey, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list completions failed: %w", err)
	}
	defer rows.Close()

	dates := []domain.CalendarKey{}
	for rows.Next() {
		var d domain.CalendarKey
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
