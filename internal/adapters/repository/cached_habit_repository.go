package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

const habitListTTL = 30 * time.Minute

// CachedHabitRepository keeps each user's habit list in Redis. Every Redis
// call goes through a circuit breaker so a dead cache costs one failed
// round-trip per breaker timeout instead of one per request.
type CachedHabitRepository struct {
	next    domain.HabitRepository
	cache   *redis.Client
	breaker *gobreaker.CircuitBreaker[any]
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client) *CachedHabitRepository {
	settings := gobreaker.Settings{
		Name:        "habit-cache",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[CACHE] Breaker %s: %s -> %s", name, from, to)
		},
	}

	return &CachedHabitRepository{
		next:    next,
		cache:   cache,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (r *CachedHabitRepository) cacheKey(userID string) string {
	return fmt.Sprintf("habits:%s", userID)
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, userID string) {
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.cache.Del(ctx, r.cacheKey(userID)).Err()
	})
	if err != nil {
		log.Printf("[CACHE] Failed to invalidate for user %s: %v", userID, err)
	}
}

// invalidateOwner drops the cached list of whoever owns id. The lookup hits
// the underlying store since the cache is keyed by user.
func (r *CachedHabitRepository) invalidateOwner(ctx context.Context, id string) {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		r.invalidate(ctx, habit.UserID)
	}
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	key := r.cacheKey(userID)

	val, err := r.breaker.Execute(func() (any, error) {
		return r.cache.Get(ctx, key).Result()
	})
	switch {
	case err == nil:
		var habits []*domain.Habit
		if err := json.Unmarshal([]byte(val.(string)), &habits); err == nil {
			return habits, nil
		}

		log.Printf("[CACHE] Corrupted data for user %s, cleaning up key", userID)
		r.invalidate(ctx, userID)
	case errors.Is(err, redis.Nil):
		// miss
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		// breaker open, go straight to the store
	default:
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	habits, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(habits); err == nil {
		_, setErr := r.breaker.Execute(func() (any, error) {
			return nil, r.cache.Set(ctx, key, data, habitListTTL).Err()
		})
		if setErr != nil && !errors.Is(setErr, gobreaker.ErrOpenState) {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	return r.next.ListActiveIDs(ctx)
}

func (r *CachedHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	return r.next.GetChanges(ctx, userID, since)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID)
	}

	return r.next.Delete(ctx, id)
}

func (r *CachedHabitRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	if err := r.next.UpdateStreaks(ctx, id, current, best); err != nil {
		return err
	}
	r.invalidateOwner(ctx, id)
	return nil
}

func (r *CachedHabitRepository) UpdateChallengeCount(ctx context.Context, id string, count int) error {
	if err := r.next.UpdateChallengeCount(ctx, id, count); err != nil {
		return err
	}
	r.invalidateOwner(ctx, id)
	return nil
}
