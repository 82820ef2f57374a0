package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

// fixedClock pins the server date to 2024-03-10.
func fixedClock() time.Time {
	return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
}

type MockRepo struct {
	store         map[string]*domain.Habit
	simulateError error
	challengeErr  error
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		store: make(map[string]*domain.Habit),
	}
}

func (m *MockRepo) Create(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *MockRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	h, ok := m.store[id]
	if !ok || h.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	clone := *h
	return &clone, nil
}

func (m *MockRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var list []*domain.Habit
	for _, h := range m.store {
		if h.UserID == userID && h.DeletedAt == nil {
			clone := *h
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *MockRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id, h := range m.store {
		if h.DeletedAt == nil && h.ArchivedAt == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MockRepo) Update(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	stored, ok := m.store[habit.ID]
	if !ok {
		return domain.ErrHabitNotFound
	}
	if stored.Version != habit.Version {
		return domain.ErrHabitConflict
	}
	habit.Version++
	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *MockRepo) Delete(ctx context.Context, id string) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	h, ok := m.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	now := time.Now().UTC()
	h.DeletedAt = &now
	h.Version++
	h.UpdatedAt = now
	return nil
}

func (m *MockRepo) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	var changes []*domain.Habit
	for _, h := range m.store {
		if h.UserID == userID && h.UpdatedAt.After(since) {
			clone := *h
			changes = append(changes, &clone)
		}
	}
	return changes, nil
}

func (m *MockRepo) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	h, ok := m.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	h.CurrentStreak = current
	h.BestStreak = best
	return nil
}

func (m *MockRepo) UpdateChallengeCount(ctx context.Context, id string, count int) error {
	if m.challengeErr != nil {
		return m.challengeErr
	}
	h, ok := m.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	h.ChallengeCompletedCount = count
	return nil
}

type MockCompletionRepo struct {
	dates         map[string]domain.CompletionSet
	simulateError error
}

func NewMockCompletionRepo() *MockCompletionRepo {
	return &MockCompletionRepo{dates: make(map[string]domain.CompletionSet)}
}

func (m *MockCompletionRepo) seed(habitID string, keys ...domain.CalendarKey) {
	m.dates[habitID] = domain.NewCompletionSet(keys...)
}

func (m *MockCompletionRepo) Toggle(ctx context.Context, c *domain.Completion) (bool, error) {
	if m.simulateError != nil {
		return false, m.simulateError
	}
	if m.dates[c.HabitID].Has(c.Date) {
		_, err := m.Remove(ctx, c.HabitID, c.Date)
		return false, err
	}
	_, err := m.Add(ctx, c)
	return true, err
}

func (m *MockCompletionRepo) Add(ctx context.Context, c *domain.Completion) (bool, error) {
	set, ok := m.dates[c.HabitID]
	if !ok {
		set = domain.NewCompletionSet()
		m.dates[c.HabitID] = set
	}
	if set.Has(c.Date) {
		return false, nil
	}
	set[c.Date] = struct{}{}
	return true, nil
}

func (m *MockCompletionRepo) Remove(ctx context.Context, habitID string, date domain.CalendarKey) (bool, error) {
	set := m.dates[habitID]
	if !set.Has(date) {
		return false, nil
	}
	delete(set, date)
	return true, nil
}

func (m *MockCompletionRepo) Exists(ctx context.Context, habitID string, date domain.CalendarKey) (bool, error) {
	return m.dates[habitID].Has(date), nil
}

func (m *MockCompletionRepo) ListDates(ctx context.Context, habitID string) ([]domain.CalendarKey, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	return m.dates[habitID].Keys(), nil
}

func (m *MockCompletionRepo) ListDatesInRange(ctx context.Context, habitID string, from, to domain.CalendarKey) ([]domain.CalendarKey, error) {
	var out []domain.CalendarKey
	for _, k := range m.dates[habitID].Keys() {
		if !k.Before(from) && !k.After(to) {
			out = append(out, k)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.HabitEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.HabitEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type recordingQueue struct {
	ids []string
}

func (q *recordingQueue) Enqueue(habitID string) {
	q.ids = append(q.ids, habitID)
}
