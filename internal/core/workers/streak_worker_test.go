package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHabitRepo struct {
	mu      sync.Mutex
	habits  map[string]*domain.Habit
	listErr error
	updates int
}

func (r *fakeHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.habits[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *h
	return &clone, nil
}

func (r *fakeHabitRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, h := range r.habits {
		if !h.IsArchived() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeHabitRepo) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.habits[id].CurrentStreak = current
	r.habits[id].BestStreak = best
	r.updates++
	return nil
}

func (r *fakeHabitRepo) streaks(id string) (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.habits[id].CurrentStreak, r.habits[id].BestStreak
}

type fakeCompletionRepo map[string][]domain.CalendarKey

func (r fakeCompletionRepo) ListDates(ctx context.Context, habitID string) ([]domain.CalendarKey, error) {
	return r[habitID], nil
}

type countingPublisher struct {
	mu     sync.Mutex
	events []domain.HabitEvent
}

func (p *countingPublisher) Publish(ctx context.Context, e domain.HabitEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

var fixedNow = time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)

func newHabit(t *testing.T, id string, schedule domain.Schedule) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit("user-1", "Habit "+id, schedule)
	require.NoError(t, err)
	h.ID = id
	return h
}

func newTestWorker(habits *fakeHabitRepo, completions fakeCompletionRepo, pub domain.EventPublisher) *StreakWorker {
	w := NewStreakWorker(habits, completions, pub, 0)
	w.now = func() time.Time { return fixedNow }
	return w
}

func TestStreakWorker_ProcessJob(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		schedule    domain.Schedule
		dates       []domain.CalendarKey
		storedBest  int
		storedCur   int
		wantCurrent int
		wantBest    int
		wantChanged bool
	}{
		{
			name:        "Empty history",
			schedule:    domain.Everyday(),
			wantChanged: false,
		},
		{
			name:        "Completed today and yesterday",
			schedule:    domain.Everyday(),
			dates:       []domain.CalendarKey{"2024-03-09", "2024-03-10"},
			wantCurrent: 2,
			wantBest:    2,
			wantChanged: true,
		},
		{
			name:        "Open today keeps yesterday's streak",
			schedule:    domain.Everyday(),
			dates:       []domain.CalendarKey{"2024-03-08", "2024-03-09"},
			wantCurrent: 2,
			wantBest:    2,
			wantChanged: true,
		},
		{
			name:        "Missed scheduled day decays a stored streak",
			schedule:    domain.Everyday(),
			dates:       []domain.CalendarKey{"2024-03-06", "2024-03-07"},
			storedCur:   2,
			storedBest:  5,
			wantCurrent: 0,
			wantBest:    5,
			wantChanged: true,
		},
		{
			name:        "Unscheduled weekend does not break a weekday streak",
			schedule:    domain.SpecificWeekdays(domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday),
			dates:       []domain.CalendarKey{"2024-03-06", "2024-03-07", "2024-03-08"},
			wantCurrent: 3,
			wantBest:    3,
			wantChanged: true,
		},
		{
			name:        "Unchanged values are not written",
			schedule:    domain.Everyday(),
			dates:       []domain.CalendarKey{"2024-03-10"},
			storedCur:   1,
			storedBest:  4,
			wantCurrent: 1,
			wantBest:    4,
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHabit(t, "h1", tt.schedule)
			h.CurrentStreak = tt.storedCur
			h.BestStreak = tt.storedBest
			habits := &fakeHabitRepo{habits: map[string]*domain.Habit{"h1": h}}
			pub := &countingPublisher{}
			w := newTestWorker(habits, fakeCompletionRepo{"h1": tt.dates}, pub)

			changed := w.processJob(ctx, StreakJob{HabitID: "h1"})

			assert.Equal(t, tt.wantChanged, changed)
			cur, best := habits.streaks("h1")
			assert.Equal(t, tt.wantCurrent, cur, "Current Streak mismatch")
			assert.Equal(t, tt.wantBest, best, "Best Streak mismatch")
			if tt.wantChanged {
				require.Len(t, pub.events, 1)
				assert.Equal(t, domain.EventStreakChanged, pub.events[0].Type)
				assert.Equal(t, tt.wantCurrent, pub.events[0].CurrentStreak)
			} else {
				assert.Empty(t, pub.events)
				assert.Zero(t, habits.updates)
			}
		})
	}

	t.Run("Missing habit is skipped", func(t *testing.T) {
		w := newTestWorker(&fakeHabitRepo{habits: map[string]*domain.Habit{}}, fakeCompletionRepo{}, nil)
		assert.False(t, w.processJob(ctx, StreakJob{HabitID: "ghost"}))
	})
}

func TestStreakWorker_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("Revisits every active habit", func(t *testing.T) {
		archived := newHabit(t, "h3", domain.Everyday())
		archived.Archive()
		archived.CurrentStreak = 9

		habits := &fakeHabitRepo{habits: map[string]*domain.Habit{
			"h1": newHabit(t, "h1", domain.Everyday()),
			"h2": newHabit(t, "h2", domain.Everyday()),
			"h3": archived,
		}}
		completions := fakeCompletionRepo{
			"h1": {"2024-03-10"},
			"h2": {"2024-03-01"},
			"h3": {"2024-03-10"},
		}
		w := newTestWorker(habits, completions, nil)

		changed := w.Sweep(ctx)

		assert.Equal(t, 1, changed)
		cur, _ := habits.streaks("h1")
		assert.Equal(t, 1, cur)
		cur, _ = habits.streaks("h3")
		assert.Equal(t, 9, cur, "archived habits are left alone")
	})

	t.Run("List failure sweeps nothing", func(t *testing.T) {
		habits := &fakeHabitRepo{habits: map[string]*domain.Habit{}, listErr: errors.New("db down")}
		w := newTestWorker(habits, fakeCompletionRepo{}, nil)

		assert.Zero(t, w.Sweep(ctx))
	})
}

func TestStreakWorker_QueueAndLifecycle(t *testing.T) {
	habits := &fakeHabitRepo{habits: map[string]*domain.Habit{"h1": newHabit(t, "h1", domain.Everyday())}}
	w := newTestWorker(habits, fakeCompletionRepo{"h1": {"2024-03-09", "2024-03-10"}}, nil)

	for i := 0; i < queueSize+5; i++ {
		w.Enqueue("h1")
	}
	assert.Len(t, w.jobs, queueSize, "overflowing jobs are dropped, not blocked on")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	assert.Eventually(t, func() bool {
		cur, _ := habits.streaks("h1")
		return cur == 2 && len(w.jobs) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
