package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingSecret = errors.New("JWT_SECRET is required outside development")

type Database struct {
	// Driver is a database/sql driver name: "pgx" or "postgres" (lib/pq).
	Driver   string
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// DSN is the pgx connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type Redis struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r Redis) Addr() string { return r.Host + ":" + r.Port }

type Auth struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

type RateLimit struct {
	Limit  int
	Window time.Duration
}

type Config struct {
	Env  string
	Port string

	// Storage selects postgres or memory. Memory skips Postgres and Redis
	// entirely and is meant for demos.
	Storage string

	Database  Database
	Redis     Redis
	Auth      Auth
	RateLimit RateLimit

	// RabbitMQURL is optional; events are logged and dropped without it.
	RabbitMQURL         string
	StreakSweepInterval time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			log.Printf("[CONFIG] Loaded %s", f)
		}
	}

	cfg := &Config{
		Env:     getEnv("APP_ENV", "development"),
		Port:    getEnv("PORT", "8080"),
		Storage: getEnv("STORAGE", "postgres"),
		Database: Database{
			Driver:   getEnv("DB_DRIVER", "pgx"),
			User:     getEnv("DB_USER", "kanso_user"),
			Password: getEnv("DB_PASSWORD", "secret"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "kanso_db"),
		},
		Redis: Redis{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Auth: Auth{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getEnv("JWT_ISSUER", "kanso-habit-engine"),
		},
		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
	}

	var err error
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Auth.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.StreakSweepInterval, err = getDuration("STREAK_SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Limit, err = getInt("RATE_LIMIT", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Window, err = getDuration("RATE_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	if cfg.Storage != "postgres" && cfg.Storage != "memory" {
		return nil, fmt.Errorf("config: STORAGE must be postgres or memory, got %q", cfg.Storage)
	}

	if cfg.Auth.Secret == "" {
		if cfg.Env != "development" {
			return nil, ErrMissingSecret
		}
		log.Println("[CONFIG] JWT_SECRET not set, using an insecure development secret")
		cfg.Auth.Secret = "kanso-dev-secret"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a duration like 30s or 1h: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive", key)
	}
	return d, nil
}
