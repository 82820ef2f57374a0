package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/adapters/events"
	adapterHTTP "github.com/comitanigiacomo/kanso-habit-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/config"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/workers"
)

type publisher interface {
	domain.EventPublisher
	Close() error
}

// app holds the wired engine. closers run in reverse order on shutdown.
type app struct {
	router  *gin.Engine
	worker  *workers.StreakWorker
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("[ERROR] shutdown: %v", err)
		}
	}
}

type stores struct {
	habits      domain.HabitRepository
	completions domain.CompletionRepository
	users       domain.UserRepository
	db          adapterHTTP.Pinger
	redis       *redis.Client
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	st, err := openStores(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	var pub publisher = events.NewNoopPublisher()
	if cfg.RabbitMQURL != "" {
		rmq, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("[EVENTS] RabbitMQ unavailable, events will be dropped: %v", err)
		} else {
			pub = rmq
		}
	}
	a.closers = append(a.closers, pub.Close)

	a.worker = workers.NewStreakWorker(st.habits, st.completions, pub, cfg.StreakSweepInterval)
	a.worker.Start(ctx)

	tokenService := services.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, st.users)

	authService := services.NewAuthService(st.users, tokenService)
	habitService := services.NewHabitService(st.habits, a.worker)
	completionService := services.NewCompletionService(st.completions, st.habits, pub)
	statsService := services.NewStatsService(st.habits, st.completions)

	a.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:       adapterHTTP.NewAuthHandler(authService),
		HabitHandler:      adapterHTTP.NewHabitHandler(habitService),
		CompletionHandler: adapterHTTP.NewCompletionHandler(completionService),
		StatsHandler:      adapterHTTP.NewStatsHandler(statsService),
		Tokens:            tokenService,
		DB:                st.db,
		Redis:             st.redis,
		RateLimit:         cfg.RateLimit,
		StartTime:         time.Now(),
	})

	return a, nil
}

func openStores(ctx context.Context, cfg *config.Config, a *app) (*stores, error) {
	if cfg.Storage == "memory" {
		log.Println("[CONFIG] Using in-memory storage, data is lost on restart")
		return &stores{
			habits:      repository.NewInMemoryHabitRepository(),
			completions: repository.NewInMemoryCompletionRepository(),
			users:       repository.NewInMemoryUserRepository(),
		}, nil
	}

	log.Println("Connecting to database...")

	db, err := sqlx.Connect(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	st := &stores{
		completions: repository.NewPostgresCompletionRepository(db),
		users:       repository.NewPostgresUserRepository(db),
		db:          db,
	}

	var habits domain.HabitRepository = repository.NewPostgresHabitRepository(db)

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Printf("[CACHE] Redis unavailable, running without cache and rate limiting: %v", err)
	} else {
		a.closers = append(a.closers, rdb.Close)
		habits = repository.NewCachedHabitRepository(habits, rdb)
		st.redis = rdb
		log.Println("[CACHE] Redis connected successfully.")
	}
	st.habits = habits

	return st, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: invalid configuration: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Kanso Habit Engine running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	// Stop the worker before the stores it writes to are closed.
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown error: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
