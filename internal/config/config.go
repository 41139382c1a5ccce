package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/validator"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database         DatabaseConfig
	ScheduleDatabase DatabaseConfig
	JWT              JWTConfig
	App              AppConfig
	Payroll          PayrollConfig
	TutorPerformance TutorPerformanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// JWTConfig holds the secret used to verify caller tokens. Tokens are issued elsewhere.
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type PayrollConfig struct {
	Workers     int `validate:"gte=1,lte=64"`
	SalaryDay   int `validate:"gte=1,lte=28"`
	DueDay      int `validate:"gte=1,lte=28,gtefield=SalaryDay"`
	FinalDueDay int `validate:"gte=1,lte=28,gtefield=DueDay"`

	CronEnabled bool
	// GenerationDay is the first day of the month the scheduler generates the previous month.
	GenerationDay      int           `validate:"gte=1,lte=28"`
	GenerationInterval time.Duration `validate:"gt=0"`
	SalaryInterval     time.Duration `validate:"gt=0"`
	BillSweepInterval  time.Duration `validate:"gt=0"`
}

type TutorPerformanceConfig struct {
	Threshold          int `validate:"gte=0"`
	IncrementPercent   decimal.Decimal
	DecrementPerMissed decimal.Decimal
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Info("no .env file found, using process environment")
	}

	config := &Config{}
	var err error

	// Database configuration
	if config.Database, err = loadDatabase("DB_", DatabaseConfig{
		Host:    "localhost",
		Port:    5432,
		User:    "postgres",
		Name:    "edu-payroll",
		SSLMode: "disable",
	}); err != nil {
		return nil, err
	}

	// Schedule store, defaults to the payroll store's server
	if config.ScheduleDatabase, err = loadDatabase("SCHEDULE_DB_", DatabaseConfig{
		Host:     config.Database.Host,
		Port:     config.Database.Port,
		User:     config.Database.User,
		Password: config.Database.Password,
		Name:     "edu-schedule",
		SSLMode:  config.Database.SSLMode,
	}); err != nil {
		return nil, err
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	if config.Payroll, err = loadPayroll(); err != nil {
		return nil, err
	}
	if config.TutorPerformance, err = loadTutorPerformance(); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadDatabase(prefix string, defaults DatabaseConfig) (DatabaseConfig, error) {
	port, err := getEnvInt(prefix+"PORT", defaults.Port)
	if err != nil {
		return DatabaseConfig{}, err
	}
	maxConns, err := getEnvInt(prefix+"MAX_CONNS", 25)
	if err != nil {
		return DatabaseConfig{}, err
	}
	return DatabaseConfig{
		Host:     getEnv(prefix+"HOST", defaults.Host),
		Port:     port,
		User:     getEnv(prefix+"USER", defaults.User),
		Password: getEnv(prefix+"PASSWORD", defaults.Password),
		Name:     getEnv(prefix+"NAME", defaults.Name),
		SSLMode:  getEnv(prefix+"SSL_MODE", defaults.SSLMode),
		MaxConns: int32(maxConns),
	}, nil
}

func loadPayroll() (PayrollConfig, error) {
	var (
		cfg PayrollConfig
		err error
	)
	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"PAYROLL_WORKERS", 4, &cfg.Workers},
		{"PAYROLL_SALARY_DAY", 8, &cfg.SalaryDay},
		{"PAYROLL_DUE_DAY", 9, &cfg.DueDay},
		{"PAYROLL_FINAL_DUE_DAY", 10, &cfg.FinalDueDay},
		{"PAYROLL_GENERATION_DAY", 1, &cfg.GenerationDay},
	}
	for _, v := range ints {
		if *v.dst, err = getEnvInt(v.key, v.fallback); err != nil {
			return PayrollConfig{}, err
		}
	}

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"PAYROLL_CRON_INTERVAL", 6 * time.Hour, &cfg.GenerationInterval},
		{"SALARY_CRON_INTERVAL", 6 * time.Hour, &cfg.SalaryInterval},
		{"BILL_SWEEP_INTERVAL", 1 * time.Hour, &cfg.BillSweepInterval},
	}
	for _, v := range durations {
		if *v.dst, err = getEnvDuration(v.key, v.fallback); err != nil {
			return PayrollConfig{}, err
		}
	}

	cfg.CronEnabled = getEnvBool("CRON_ENABLED", true)
	return cfg, nil
}

func loadTutorPerformance() (TutorPerformanceConfig, error) {
	threshold, err := getEnvInt("TUTOR_PERFORMANCE_THRESHOLD", 10)
	if err != nil {
		return TutorPerformanceConfig{}, err
	}
	increment, err := getEnvDecimal("TUTOR_PERFORMANCE_INCREMENT_PERCENT", "10")
	if err != nil {
		return TutorPerformanceConfig{}, err
	}
	decrement, err := getEnvDecimal("TUTOR_PERFORMANCE_DECREMENT_PER_MISSED", "5")
	if err != nil {
		return TutorPerformanceConfig{}, err
	}
	return TutorPerformanceConfig{
		Threshold:          threshold,
		IncrementPercent:   increment,
		DecrementPerMissed: decrement,
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.ScheduleDatabase.Password == "" {
		return fmt.Errorf("SCHEDULE_DB_PASSWORD is required")
	}
	if c.TutorPerformance.IncrementPercent.IsNegative() || c.TutorPerformance.DecrementPerMissed.IsNegative() {
		return fmt.Errorf("tutor performance percentages must be non-negative")
	}
	if err := validator.Struct(c.Payroll); err != nil {
		return fmt.Errorf("payroll: %w", err)
	}
	if err := validator.Struct(c.TutorPerformance); err != nil {
		return fmt.Errorf("tutor performance: %w", err)
	}
	return nil
}

// DatabaseURL returns the payroll store connection string
func (c *Config) DatabaseURL() string {
	return c.Database.URL()
}

// ScheduleDatabaseURL returns the schedule store connection string
func (c *Config) ScheduleDatabaseURL() string {
	return c.ScheduleDatabase.URL()
}

func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvDecimal(key, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
