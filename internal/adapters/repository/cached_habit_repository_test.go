package repository

import (
	"context"
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedHabitRepository_FallsThroughWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()

	dead := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer dead.Close()

	store := NewInMemoryHabitRepository()
	repo := NewCachedHabitRepository(store, dead)

	h, err := domain.NewHabit("user-1", "Stretch", domain.Everyday())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, h))

	for i := 0; i < 5; i++ {
		habits, err := repo.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, habits, 1)
		assert.Equal(t, "Stretch", habits[0].Title)
	}

	assert.Equal(t, gobreaker.StateOpen, repo.breaker.State())

	require.NoError(t, repo.UpdateStreaks(ctx, h.ID, 2, 2))
	fetched, err := repo.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.CurrentStreak)
}

func TestCachedHabitRepository_Integration(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: getEnv("REDIS_ADDR", "localhost:6379")})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping cache integration test: redis unavailable: %v", err)
	}

	store := NewInMemoryHabitRepository()
	repo := NewCachedHabitRepository(store, client)
	userID := "cache-user-" + time.Now().Format("150405.000000")
	defer client.Del(ctx, repo.cacheKey(userID))

	h, _ := domain.NewHabit(userID, "Walk", domain.Everyday())
	require.NoError(t, repo.Create(ctx, h))

	first, err := repo.ListByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	cached, err := client.Get(ctx, repo.cacheKey(userID)).Result()
	require.NoError(t, err)
	assert.Contains(t, cached, "Walk")

	require.NoError(t, repo.UpdateStreaks(ctx, h.ID, 3, 3))
	_, err = client.Get(ctx, repo.cacheKey(userID)).Result()
	assert.ErrorIs(t, err, redis.Nil, "streak update invalidates the list")

	second, err := repo.ListByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, second[0].CurrentStreak)
}
