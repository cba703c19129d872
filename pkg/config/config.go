package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DBConfig holds PostgreSQL connection and pool settings.
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds cache backend connection settings. An empty Addr
// disables cache use entirely.
type RedisConfig struct {
	Addr     string
	Password string
}

// CacheConfig holds read-path caching knobs.
type CacheConfig struct {
	TTL        time.Duration
	GetTimeout time.Duration
}

// Config aggregates all runtime settings for the service.
type Config struct {
	DB             DBConfig
	Redis          RedisConfig
	Cache          CacheConfig
	SearchFullText bool
}

// LoadEnv loads environment variables from .env.local if APP_ENV is "local"
func LoadEnv() {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development" // Default to development if not set
		os.Setenv("APP_ENV", appEnv)
	}

	if appEnv == "local" {
		err := godotenv.Load(".env.local")
		if err != nil {
			log.Printf("Warning: .env.local file not found, or error loading: %v. Relying on system environment variables.", err)
		} else {
			log.Println("Loaded .env.local for local development.")
		}
	} else {
		log.Printf("Running in %s environment. Not loading .env.local.", appEnv)
	}
}

// Load collects all service configuration from the environment, applying
// defaults where a variable is absent or unparsable.
func Load() Config {
	return Config{
		DB: DBConfig{
			Host:            getenv("DB_HOST", "localhost"),
			Port:            getenv("DB_PORT", "5432"),
			User:            getenv("DB_USER", "postgres"),
			Password:        getenv("DB_PASSWORD", ""),
			Name:            getenv("DB_NAME", "postgres"),
			MaxOpenConns:    atoienv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    atoienv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: time.Duration(atoienv("DB_CONN_MAX_LIFETIME_MIN", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
		},
		Cache: CacheConfig{
			TTL:        time.Duration(atoienv("CACHE_TTL_SECONDS", 600)) * time.Second,
			GetTimeout: time.Duration(atoienv("CACHE_GET_TIMEOUT_MS", 2000)) * time.Millisecond,
		},
		SearchFullText: boolenv("SEARCH_FULLTEXT", false),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q, using default %d", key, v, def)
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q, using default %t", key, v, def)
		return def
	}
	return b
}
