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

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	devSessionSecret = "dev-session-secret-change-me"
	devResetSecret   = "dev-reset-secret-change-me"
)

type Config struct {
	APIPort        string
	Env            string
	LogLevel       string
	RequestTimeout time.Duration

	SessionSecret []byte
	ResetSecret   []byte
	SessionTTL    time.Duration
	ResetTTL      time.Duration

	StorageBackend string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ResetQueueName string

	// Warnings collects non-fatal notes produced while loading, logged once
	// the logger exists.
	Warnings []string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIPort:        getEnv("API_PORT", "8080"),
		Env:            getEnv("APP_ENV", "dev"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RequestTimeout: time.Duration(getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		SessionSecret:  []byte(getEnv("JWT_SECRET", "")),
		ResetSecret:    []byte(getEnv("RESET_SECRET", "")),
		SessionTTL:     time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
		ResetTTL:       time.Duration(getEnvAsInt("RESET_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute,
		StorageBackend: getEnv("STORAGE_BACKEND", StoragePostgres),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "user"),
		DBPassword:     getEnv("DB_PASSWORD", "password"),
		DBName:         getEnv("DB_NAME", "ecommerce_db"),
		DBSslMode:      getEnv("DB_SSLMODE", "disable"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		ResetQueueName: getEnv("RESET_QUEUE_NAME", "password_reset_queue"),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	if cfg.IsDev() {
		if len(cfg.SessionSecret) == 0 {
			cfg.SessionSecret = []byte(devSessionSecret)
			cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set, using development secret")
		}
		if len(cfg.ResetSecret) == 0 {
			cfg.ResetSecret = []byte(devResetSecret)
			cfg.Warnings = append(cfg.Warnings, "RESET_SECRET not set, using development secret")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.SessionSecret) == 0 {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if len(c.ResetSecret) == 0 {
		errs = append(errs, errors.New("RESET_SECRET is required"))
	}
	if len(c.SessionSecret) > 0 && string(c.SessionSecret) == string(c.ResetSecret) {
		errs = append(errs, errors.New("JWT_SECRET and RESET_SECRET must differ"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.ResetTTL <= 0 {
		errs = append(errs, errors.New("RESET_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.StorageBackend != StoragePostgres && c.StorageBackend != StorageMemory {
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
