package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

var (
	_ domain.HabitRepository      = (*InMemoryHabitRepository)(nil)
	_ domain.CompletionRepository = (*InMemoryCompletionRepository)(nil)
	_ domain.UserRepository       = (*InMemoryUserRepository)(nil)
)

// InMemoryHabitRepository mirrors the Postgres semantics (soft delete,
// optimistic locking, monotonic best streak) without a database. Habits are
// copied on the way in and out so callers never share state with the store.
type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func cloneHabit(h *domain.Habit) *domain.Habit {
	c := *h
	if h.ArchivedAt != nil {
		t := *h.ArchivedAt
		c.ArchivedAt = &t
	}
	if h.DeletedAt != nil {
		t := *h.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; ok {
		return domain.ErrHabitConflict
	}

	habit.Version = 1
	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

// live returns the stored habit unless it is missing or soft-deleted.
// Callers hold the lock.
func (r *InMemoryHabitRepository) live(id string) (*domain.Habit, error) {
	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, err := r.live(id)
	if err != nil {
		return nil, err
	}
	return cloneHabit(habit), nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID && h.DeletedAt == nil {
			habits = append(habits, cloneHabit(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		if habits[i].SortOrder != habits[j].SortOrder {
			return habits[i].SortOrder < habits[j].SortOrder
		}
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := []string{}
	for id, h := range r.store {
		if h.DeletedAt == nil && h.ArchivedAt == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.live(habit.ID)
	if err != nil {
		return err
	}
	if stored.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	habit.Version++
	habit.UpdatedAt = time.Now().UTC()

	next := cloneHabit(habit)
	// Derived fields are owned by UpdateStreaks.
	next.CurrentStreak = stored.CurrentStreak
	next.BestStreak = stored.BestStreak
	next.CreatedAt = stored.CreatedAt
	r.store[habit.ID] = next
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, err := r.live(id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	habit.DeletedAt = &now
	habit.UpdatedAt = now
	habit.Version++
	return nil
}

func (r *InMemoryHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID && h.UpdatedAt.After(since) {
			habits = append(habits, cloneHabit(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].UpdatedAt.Before(habits[j].UpdatedAt)
	})
	return habits, nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, err := r.live(id)
	if err != nil {
		return err
	}

	habit.CurrentStreak = current
	habit.BestStreak = max(habit.BestStreak, best)
	habit.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryHabitRepository) UpdateChallengeCount(ctx context.Context, id string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, err := r.live(id)
	if err != nil {
		return err
	}

	habit.ChallengeCompletedCount = max(count, 0)
	habit.UpdatedAt = time.Now().UTC()
	return nil
}

// InMemoryCompletionRepository stores completed dates per habit. The single
// mutex serializes toggles the way the primary key does in Postgres.
type InMemoryCompletionRepository struct {
	dates map[string]domain.CompletionSet

	mu sync.RWMutex
}

func NewInMemoryCompletionRepository() *InMemoryCompletionRepository {
	return &InMemoryCompletionRepository{
		dates: make(map[string]domain.CompletionSet),
	}
}

func (r *InMemoryCompletionRepository) Toggle(ctx context.Context, c *domain.Completion) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.setFor(c.HabitID)
	if set.Has(c.Date) {
		delete(set, c.Date)
		return false, nil
	}
	set[c.Date] = struct{}{}
	return true, nil
}

func (r *InMemoryCompletionRepository) Add(ctx context.Context, c *domain.Completion) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.setFor(c.HabitID)
	if set.Has(c.Date) {
		return false, nil
	}
	set[c.Date] = struct{}{}
	return true, nil
}

func (r *InMemoryCompletionRepository) Remove(ctx context.Context, habitID string, date domain.CalendarKey) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.dates[habitID]
	if !set.Has(date) {
		return false, nil
	}
	delete(set, date)
	return true, nil
}

func (r *InMemoryCompletionRepository) Exists(ctx context.Context, habitID string, date domain.CalendarKey) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.dates[habitID].Has(date), nil
}

func (r *InMemoryCompletionRepository) ListDates(ctx context.Context, habitID string) ([]domain.CalendarKey, error) {
	return r.ListDatesInRange(ctx, habitID, "", "")
}

// ListDatesInRange treats empty bounds as open.
func (r *InMemoryCompletionRepository) ListDatesInRange(ctx context.Context, habitID string, from, to domain.CalendarKey) ([]domain.CalendarKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dates := []domain.CalendarKey{}
	for d := range r.dates[habitID] {
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		dates = append(dates, d)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates, nil
}

func (r *InMemoryCompletionRepository) setFor(habitID string) domain.CompletionSet {
	set, ok := r.dates[habitID]
	if !ok {
		set = domain.NewCompletionSet()
		r.dates[habitID] = set
	}
	return set
}

type InMemoryUserRepository struct {
	byID    map[string]domain.User
	byEmail map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return domain.ErrEmailAlreadyExists
	}
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}
