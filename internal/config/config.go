package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database       DatabaseConfig
	App            AppConfig
	Identity       IdentityConfig
	Reconciliation ReconciliationConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// IdentityConfig controls the identity resolution engine.
type IdentityConfig struct {
	// BatchSize is the number of employee codes checked against the
	// directory per round.
	BatchSize int
	// FallbackTimeout bounds the bulk-fetch attempt made when a batch
	// lookup fails. A timeout counts as batch failure; the run continues.
	FallbackTimeout time.Duration
	// FuzzyThreshold is the minimum name similarity (0..1) accepted by
	// the fuzzy tier.
	FuzzyThreshold float64
}

// ReconciliationConfig carries the schedule and anomaly thresholds used
// when raw scans are rolled up into daily attendance records. Defaults
// are placeholders pending sign-off from HR operations.
type ReconciliationConfig struct {
	ShiftStart         string // "HH:MM" wall clock
	GracePeriodMinutes int
	HalfDayBelowHours  float64 // status half_day when total hours fall below this
	ExpectedShiftHours float64
	MaxDailyHours      float64 // anomaly excessive_hours above this
	MinDailyHours      float64 // anomaly insufficient_hours below this
	EarliestArrival    string  // "HH:MM", anomaly very_early_arrival before this
	LatestDeparture    string  // "HH:MM", anomaly very_late_departure after this
	ExtremeLateCutoff  string  // "HH:MM", anomaly extremely_late after this
	MarkAbsentees      bool    // emit absent records for scanless active employees
}

func Load() (*Config, error) {
	// .env is optional outside development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "tetsos"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
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

	// Identity resolution configuration
	batchSize, err := strconv.Atoi(getEnv("IDENTITY_BATCH_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid IDENTITY_BATCH_SIZE: %w", err)
	}

	fallbackTimeout, err := time.ParseDuration(getEnv("IDENTITY_FALLBACK_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid IDENTITY_FALLBACK_TIMEOUT: %w", err)
	}

	fuzzyThreshold, err := strconv.ParseFloat(getEnv("IDENTITY_FUZZY_THRESHOLD", "0.85"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid IDENTITY_FUZZY_THRESHOLD: %w", err)
	}

	config.Identity = IdentityConfig{
		BatchSize:       batchSize,
		FallbackTimeout: fallbackTimeout,
		FuzzyThreshold:  fuzzyThreshold,
	}

	// Reconciliation configuration
	grace, err := strconv.Atoi(getEnv("RECON_GRACE_PERIOD_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECON_GRACE_PERIOD_MINUTES: %w", err)
	}

	halfDay, err := strconv.ParseFloat(getEnv("RECON_HALF_DAY_BELOW_HOURS", "4"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RECON_HALF_DAY_BELOW_HOURS: %w", err)
	}

	expected, err := strconv.ParseFloat(getEnv("RECON_EXPECTED_SHIFT_HOURS", "8"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RECON_EXPECTED_SHIFT_HOURS: %w", err)
	}

	maxHours, err := strconv.ParseFloat(getEnv("RECON_MAX_DAILY_HOURS", "12"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RECON_MAX_DAILY_HOURS: %w", err)
	}

	minHours, err := strconv.ParseFloat(getEnv("RECON_MIN_DAILY_HOURS", "3"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RECON_MIN_DAILY_HOURS: %w", err)
	}

	markAbsentees, err := strconv.ParseBool(getEnv("RECON_MARK_ABSENTEES", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECON_MARK_ABSENTEES: %w", err)
	}

	config.Reconciliation = ReconciliationConfig{
		ShiftStart:         getEnv("RECON_SHIFT_START", "09:00"),
		GracePeriodMinutes: grace,
		HalfDayBelowHours:  halfDay,
		ExpectedShiftHours: expected,
		MaxDailyHours:      maxHours,
		MinDailyHours:      minHours,
		EarliestArrival:    getEnv("RECON_EARLIEST_ARRIVAL", "06:00"),
		LatestDeparture:    getEnv("RECON_LATEST_DEPARTURE", "22:00"),
		ExtremeLateCutoff:  getEnv("RECON_EXTREME_LATE_CUTOFF", "12:00"),
		MarkAbsentees:      markAbsentees,
	}

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
	if c.Identity.BatchSize <= 0 {
		return fmt.Errorf("IDENTITY_BATCH_SIZE must be positive")
	}
	if c.Identity.FuzzyThreshold <= 0 || c.Identity.FuzzyThreshold > 1 {
		return fmt.Errorf("IDENTITY_FUZZY_THRESHOLD must be in (0, 1]")
	}
	for _, v := range []string{
		c.Reconciliation.ShiftStart,
		c.Reconciliation.EarliestArrival,
		c.Reconciliation.LatestDeparture,
		c.Reconciliation.ExtremeLateCutoff,
	} {
		if _, err := time.Parse("15:04", v); err != nil {
			return fmt.Errorf("invalid clock threshold %q: %w", v, err)
		}
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
