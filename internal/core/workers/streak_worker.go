package workers

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/metrics"
)

const queueSize = 100

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	ListActiveIDs(ctx context.Context) ([]string, error)
	UpdateStreaks(ctx context.Context, id string, current, best int) error
}

type CompletionRepository interface {
	ListDates(ctx context.Context, habitID string) ([]domain.CalendarKey, error)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker keeps the stored current and best streak of each habit in
// line with its completion history. Jobs arrive through Enqueue; a periodic
// sweep also revisits every active habit so that streaks decay after missed
// days even when nobody toggles anything.
type StreakWorker struct {
	habitRepo      HabitRepository
	completionRepo CompletionRepository
	publisher      domain.EventPublisher
	jobs           chan StreakJob
	sweepInterval  time.Duration
	now            func() time.Time
}

func NewStreakWorker(hRepo HabitRepository, cRepo CompletionRepository, publisher domain.EventPublisher, sweepInterval time.Duration) *StreakWorker {
	return &StreakWorker{
		habitRepo:      hRepo,
		completionRepo: cRepo,
		publisher:      publisher,
		jobs:           make(chan StreakJob, queueSize),
		sweepInterval:  sweepInterval,
		now:            time.Now,
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("[WORKER] Streak Worker started in background...")

		var tick <-chan time.Time
		if w.sweepInterval > 0 {
			ticker := time.NewTicker(w.sweepInterval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-tick:
				w.Sweep(ctx)
			case <-ctx.Done():
				log.Println("[WORKER] Streak Worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("[WORKER] queue full! Dropping job for habit %s", habitID)
	}
}

// Sweep recomputes every active habit in place. It runs on the worker
// goroutine, so queued jobs wait until it is done.
func (w *StreakWorker) Sweep(ctx context.Context) int {
	ids, err := w.habitRepo.ListActiveIDs(ctx)
	if err != nil {
		log.Printf("[WORKER] sweep failed to list habits: %v", err)
		return 0
	}

	changed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if w.processJob(ctx, StreakJob{HabitID: id}) {
			changed++
		}
	}

	if changed > 0 {
		log.Printf("[WORKER] sweep updated %d of %d habits", changed, len(ids))
	}
	return changed
}

// processJob reports whether the stored streaks changed.
func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) bool {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Printf("[WORKER] Error fetching habit %s: %v", job.HabitID, err)
		return false
	}
	if habit.IsArchived() {
		return false
	}

	dates, err := w.completionRepo.ListDates(ctx, job.HabitID)
	if err != nil {
		log.Printf("[WORKER] Error fetching completions for %s: %v", job.HabitID, err)
		return false
	}

	today := domain.KeyOf(w.now().UTC())
	snapshot := habit.Snapshot(dates)

	if !habit.RecordStreak(metrics.CurrentStreak(snapshot, today), metrics.BestStreak(snapshot, today)) {
		return false
	}

	if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, habit.CurrentStreak, habit.BestStreak); err != nil {
		log.Printf("[WORKER] Failed to update streak for %s: %v", job.HabitID, err)
		return false
	}
	log.Printf("[WORKER] Streak updated for %s: Current=%d, Best=%d", habit.Title, habit.CurrentStreak, habit.BestStreak)

	if w.publisher != nil {
		event := domain.NewHabitEvent(domain.EventStreakChanged, habit)
		if err := w.publisher.Publish(ctx, event); err != nil {
			log.Printf("[EVENTS] failed to publish %s for habit %s: %v", event.Type, habit.ID, err)
		}
	}

	return true
}
