package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Storage      StorageConfig
	JWT          JWTConfig
	Attendance   AttendanceConfig
	Notification NotificationConfig
	Leave        LeaveConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// StorageConfig picks the repository backend
type StorageConfig struct {
	Driver     string
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

type AttendanceConfig struct {
	LateCutoff       timemath.Clock
	LatePolicy       string
	Location         *time.Location
	RolloverInterval time.Duration
}

type NotificationConfig struct {
	Workers   int
	QueueSize int
	SSEBuffer int
}

type LeaveConfig struct {
	PolicyFile string
	Policy     leave.Policy
}

// Load reads the environment, with an optional .env file, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance_leave"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		SQLitePath: getEnv("SQLITE_PATH", "attendance_leave.db"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance configuration
	cutoff, err := timemath.ParseClock(getEnv("ATTENDANCE_LATE_CUTOFF", "11:00:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_LATE_CUTOFF: %w", err)
	}
	location, err := time.LoadLocation(getEnv("ATTENDANCE_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}
	interval, err := time.ParseDuration(getEnv("ATTENDANCE_ROLLOVER_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_ROLLOVER_INTERVAL: %w", err)
	}

	config.Attendance = AttendanceConfig{
		LateCutoff:       cutoff,
		LatePolicy:       strings.ToLower(getEnv("ATTENDANCE_LATE_POLICY", "mark")),
		Location:         location,
		RolloverInterval: interval,
	}

	// Notification configuration
	workers, err := strconv.Atoi(getEnv("NOTIFICATION_WORKERS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_WORKERS: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("NOTIFICATION_QUEUE_SIZE", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_QUEUE_SIZE: %w", err)
	}
	sseBuffer, err := strconv.Atoi(getEnv("NOTIFICATION_SSE_BUFFER", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_SSE_BUFFER: %w", err)
	}

	config.Notification = NotificationConfig{
		Workers:   workers,
		QueueSize: queueSize,
		SSEBuffer: sseBuffer,
	}

	// Leave configuration
	config.Leave = LeaveConfig{PolicyFile: getEnv("LEAVE_POLICY_FILE", "")}
	config.Leave.Policy, err = LoadLeavePolicy(config.Leave.PolicyFile)
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case StoragePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres driver")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of memory, sqlite, postgres, got %q", c.Storage.Driver)
	}

	if c.Attendance.LatePolicy != "mark" && c.Attendance.LatePolicy != "reject" {
		return fmt.Errorf("ATTENDANCE_LATE_POLICY must be mark or reject, got %q", c.Attendance.LatePolicy)
	}
	if c.Attendance.RolloverInterval <= 0 {
		return fmt.Errorf("ATTENDANCE_ROLLOVER_INTERVAL must be positive")
	}
	if c.Notification.Workers < 0 {
		return fmt.Errorf("NOTIFICATION_WORKERS must not be negative")
	}
	if c.Notification.QueueSize <= 0 {
		return fmt.Errorf("NOTIFICATION_QUEUE_SIZE must be positive")
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

// SlogLevel maps LOG_LEVEL to a slog level, info when unknown.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

type policyFile struct {
	Allotments map[string]int `toml:"allotments"`
}

// LoadLeavePolicy reads yearly allotments from a TOML file on top of the defaults:
//
//	[allotments]
//	casual = 14
//	sick = 10
//
// An empty path returns the defaults.
func LoadLeavePolicy(path string) (leave.Policy, error) {
	policy := leave.DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return leave.Policy{}, fmt.Errorf("read leave policy: %w", err)
	}
	var file policyFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return leave.Policy{}, fmt.Errorf("parse leave policy %s: %w", path, err)
	}

	var errs []error
	for name, days := range file.Allotments {
		leaveType, err := leave.ParseLeaveType(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if days < 0 {
			errs = append(errs, fmt.Errorf("%s: allotment must not be negative", name))
			continue
		}
		policy.Allotments[leaveType] = days
	}
	if err := errors.Join(errs...); err != nil {
		return leave.Policy{}, fmt.Errorf("invalid leave policy %s: %w", path, err)
	}
	return policy, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
