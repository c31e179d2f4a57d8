package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"

	CatalogJSON     = "json"
	CatalogPostgres = "postgres"
)

type Config struct {
	Session  string
	LogLevel slog.Level
	Storage  StorageConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

type StorageConfig struct {
	Backend string
	CartDir string
	Timeout time.Duration
}

type CatalogConfig struct {
	Source   string
	File     string
	Currency currency.Unit
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CartTTL  time.Duration
}

// Load reads the environment, after merging .env.local and .env if present.
// Variables already set in the environment win over both files.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*Config, error) {
	unit, err := currency.ParseISO(getEnv("EVENTCART_CURRENCY", "PEN"))
	if err != nil {
		return nil, fmt.Errorf("EVENTCART_CURRENCY is not valid: %w", err)
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	redisTTL, err := getEnvAsDuration("REDIS_CART_TTL", 0)
	if err != nil {
		return nil, err
	}

	timeout, err := getEnvAsDuration("EVENTCART_STORE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Session:  getEnv("EVENTCART_SESSION", "default"),
		LogLevel: level,
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("EVENTCART_STORAGE", StorageFile)),
			CartDir: getEnv("EVENTCART_CART_DIR", ".eventcart"),
			Timeout: timeout,
		},
		Catalog: CatalogConfig{
			Source:   strings.ToLower(getEnv("EVENTCART_CATALOG", CatalogJSON)),
			File:     getEnv("EVENTCART_CATALOG_FILE", "data/events.json"),
			Currency: unit,
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			CartTTL:  redisTTL,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageFile, StoragePostgres, StorageRedis:
	default:
		return fmt.Errorf("EVENTCART_STORAGE[%s] is not supported", c.Storage.Backend)
	}

	switch c.Catalog.Source {
	case CatalogJSON, CatalogPostgres:
	default:
		return fmt.Errorf("EVENTCART_CATALOG[%s] is not supported", c.Catalog.Source)
	}

	if c.Session == "" {
		return fmt.Errorf("EVENTCART_SESSION is empty")
	}

	if c.NeedsDatabase() && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}

	return nil
}

func (c *Config) NeedsDatabase() bool {
	return c.Storage.Backend == StoragePostgres || c.Catalog.Source == CatalogPostgres
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL[%s] is not valid: %w", s, err)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s[%s] is not an integer: %w", key, value, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s[%s] is not a duration: %w", key, value, err)
	}
	return d, nil
}
