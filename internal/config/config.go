package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string
	JWTSecret     string

	RedisURL     string
	ViewCacheTTL time.Duration

	LogLevel string
	AppEnv   string

	AdminEmail    string
	AdminPassword string

	SettingsDebounce time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisURL:      os.Getenv("REDIS_URL"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AppEnv:        getEnv("APP_ENV", "production"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@pm.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		ViewCacheTTL:     getDuration("VIEW_CACHE_TTL", 5*time.Minute),
		SettingsDebounce: getDuration("SETTINGS_DEBOUNCE", time.Second),
	}

	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}
	// токены API подписываем тем же секретом, если отдельный не задан
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = cfg.SessionSecret
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
