package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Cron     CronConfig
	Policy   PolicyConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// CronConfig holds the recovery job cadences.
type CronConfig struct {
	AutoPunchOutInterval time.Duration
	MarkAbsentInterval   time.Duration
	PayrollInterval      time.Duration
	TenantChunkSize      int
}

// PolicyConfig bounds the policy snapshot cache.
type PolicyConfig struct {
	CacheTTL time.Duration
}

func Load() (*Config, error) {
	// .env is optional outside development
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendly"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: maxConns,
		MinConns: minConns,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Cron configuration
	autoPunchOutInterval, err := time.ParseDuration(getEnv("AUTO_PUNCH_OUT_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_PUNCH_OUT_INTERVAL: %w", err)
	}
	markAbsentInterval, err := time.ParseDuration(getEnv("MARK_ABSENT_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid MARK_ABSENT_INTERVAL: %w", err)
	}
	payrollInterval, err := time.ParseDuration(getEnv("PAYROLL_GENERATION_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_GENERATION_INTERVAL: %w", err)
	}
	chunkSize, err := strconv.Atoi(getEnv("TENANT_CHUNK_SIZE", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid TENANT_CHUNK_SIZE: %w", err)
	}

	config.Cron = CronConfig{
		AutoPunchOutInterval: autoPunchOutInterval,
		MarkAbsentInterval:   markAbsentInterval,
		PayrollInterval:      payrollInterval,
		TenantChunkSize:      chunkSize,
	}

	policyTTL, err := time.ParseDuration(getEnv("POLICY_CACHE_TTL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLICY_CACHE_TTL: %w", err)
	}
	config.Policy = PolicyConfig{CacheTTL: policyTTL}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Cron.TenantChunkSize < 1 {
		return fmt.Errorf("TENANT_CHUNK_SIZE must be at least 1")
	}
	if c.Database.MaxConns > 0 && c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
