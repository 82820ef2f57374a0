package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
	ErrNotChallenge       = errors.New("habit is not a challenge")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	DefaultIcon = "default_icon"
	MaxTitleLen = 100
	MaxDescLen  = 500
)

type Habit struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	SortOrder   int    `json:"sort_order"`

	Schedule                Schedule `json:"schedule"`
	ChallengeCompletedCount int      `json:"challenge_completed_count"`

	// CurrentStreak is the value computed at the last recalculation; it goes
	// stale at day rollover until the streak worker sweeps the habit again.
	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`

	StartDate CalendarKey `json:"start_date"`

	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

func validateAndNormalize(title, desc, color string, schedule Schedule) (Schedule, error) {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return Schedule{}, ErrHabitTitleEmpty
	}
	if len(trimmedTitle) > MaxTitleLen {
		return Schedule{}, ErrHabitTitleTooLong
	}

	if len(strings.TrimSpace(desc)) > MaxDescLen {
		return Schedule{}, ErrHabitDescTooLong
	}

	if color != "" && !colorRegex.MatchString(color) {
		return Schedule{}, ErrInvalidColor
	}

	if err := schedule.Validate(); err != nil {
		return Schedule{}, err
	}

	return schedule.Normalize(), nil
}

func NewHabit(userID, title string, schedule Schedule) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	safeSchedule, err := validateAndNormalize(title, "", "", schedule)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Habit{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Icon:      DefaultIcon,
		Schedule:  safeSchedule,
		StartDate: KeyOf(now),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (h *Habit) Update(title, description, color, icon string, schedule Schedule) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	cleanDesc := strings.TrimSpace(description)

	safeSchedule, err := validateAndNormalize(title, cleanDesc, color, schedule)
	if err != nil {
		return err
	}

	if icon == "" {
		icon = DefaultIcon
	}

	if !safeSchedule.IsChallenge() {
		h.ChallengeCompletedCount = 0
	}

	h.Title = strings.TrimSpace(title)
	h.Description = cleanDesc
	h.Color = color
	h.Icon = icon
	h.Schedule = safeSchedule

	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) ChangePosition(newOrder int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	h.SortOrder = newOrder
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) IsArchived() bool { return h.ArchivedAt != nil }

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}

// CreditChallengeDay moves the challenge counter by delta, never below zero.
// Non-challenge habits are left untouched.
func (h *Habit) CreditChallengeDay(delta int) {
	if !h.Schedule.IsChallenge() {
		return
	}
	h.ChallengeCompletedCount = max(0, h.ChallengeCompletedCount+delta)
	h.UpdatedAt = time.Now().UTC()
}

// ResetChallenge restarts challenge accounting. Completion history is kept.
func (h *Habit) ResetChallenge() error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}
	if !h.Schedule.IsChallenge() {
		return ErrNotChallenge
	}
	h.ChallengeCompletedCount = 0
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordStreak stores the current streak and raises the best streak to
// candidate when it is higher. It reports whether anything changed.
func (h *Habit) RecordStreak(current, candidate int) bool {
	best := max(h.BestStreak, candidate)
	if h.CurrentStreak == current && h.BestStreak == best {
		return false
	}
	h.CurrentStreak = current
	h.BestStreak = best
	return true
}

func (h *Habit) Snapshot(completed []CalendarKey) HabitSnapshot {
	return HabitSnapshot{
		Schedule:                h.Schedule,
		Completed:               NewCompletionSet(completed...),
		ChallengeDurationDays:   h.Schedule.DurationDays,
		ChallengeCompletedCount: h.ChallengeCompletedCount,
		BestStreakRecorded:      h.BestStreak,
		Since:                   h.StartDate,
	}
}
