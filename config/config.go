// Package config reads the service settings from the environment, with an
// optional .env file in the working directory.
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
	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBaseURL   string
	APITimeout   time.Duration
	APIRateLimit float64
	APIRateBurst int

	Port             string
	CORSAllowOrigins string

	DB Database

	PollInterval    time.Duration
	TrackingTimeout time.Duration
	NoticeSuccess   time.Duration
	NoticeError     time.Duration
	NoticeCard      time.Duration

	// StatusTable is nil when STATUS_TABLE_FILE is unset.
	StatusTable *StatusTable

	LogLevel  slog.Level
	LogFormat string
}

type Database struct {
	Driver     string
	SQLitePath string
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SSLMode    string
}

// DSN is the postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// StatusTable is the YAML form of the terminal status classification.
type StatusTable struct {
	Success []string `yaml:"success"`
	Failure []string `yaml:"failure"`
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	r := &reader{}
	cfg := &Config{
		APIBaseURL:       strings.TrimRight(getenv("API_BASE_URL", "http://localhost:8000/api/v1"), "/"),
		APITimeout:       r.duration("API_TIMEOUT", 15*time.Second),
		APIRateLimit:     r.float("API_RATE_LIMIT", 5),
		APIRateBurst:     r.int("API_RATE_BURST", 5),
		Port:             getenv("PORT", "8080"),
		CORSAllowOrigins: getenv("CORS_ALLOW_ORIGINS", "*"),
		DB: Database{
			Driver:     strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			SQLitePath: getenv("SQLITE_PATH", "donatehub.db"),
			Host:       getenv("DB_HOST", "localhost"),
			User:       os.Getenv("DB_USER"),
			Password:   os.Getenv("DB_PASSWORD"),
			Name:       os.Getenv("DB_NAME"),
			Port:       getenv("DB_PORT", "5432"),
			SSLMode:    getenv("DB_SSLMODE", "disable"),
		},
		PollInterval:    r.duration("POLL_INTERVAL", 5*time.Second),
		TrackingTimeout: r.duration("TRACKING_TIMEOUT", 600*time.Second),
		NoticeSuccess:   r.duration("NOTICE_SUCCESS_TTL", 10*time.Second),
		NoticeError:     r.duration("NOTICE_ERROR_TTL", 5*time.Second),
		NoticeCard:      r.duration("NOTICE_CARD_TTL", 5*time.Second),
		LogFormat:       strings.ToLower(getenv("LOG_FORMAT", "json")),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		r.errs = append(r.errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		r.errs = append(r.errs, fmt.Errorf("LOG_FORMAT: want json or text, got %q", cfg.LogFormat))
	}
	if cfg.DB.Driver != "sqlite" && cfg.DB.Driver != "postgres" {
		r.errs = append(r.errs, fmt.Errorf("DB_DRIVER: want sqlite or postgres, got %q", cfg.DB.Driver))
	}
	if cfg.PollInterval <= 0 {
		r.errs = append(r.errs, errors.New("POLL_INTERVAL: must be positive"))
	}
	if cfg.TrackingTimeout <= 0 {
		r.errs = append(r.errs, errors.New("TRACKING_TIMEOUT: must be positive"))
	}
	if cfg.APIRateLimit < 0 {
		r.errs = append(r.errs, errors.New("API_RATE_LIMIT: must not be negative"))
	}

	if path := os.Getenv("STATUS_TABLE_FILE"); path != "" {
		table, err := LoadStatusTable(path)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("STATUS_TABLE_FILE: %w", err))
		}
		cfg.StatusTable = table
	}

	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStatusTable reads a YAML file with success and failure lists.
func LoadStatusTable(path string) (*StatusTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var table StatusTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(table.Success) == 0 && len(table.Failure) == 0 {
		return nil, fmt.Errorf("%s lists no statuses", path)
	}
	return &table, nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// reader collects parse errors so every bad variable is reported at once.
type reader struct {
	errs []error
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// bare numbers are seconds
		n, nerr := strconv.Atoi(v)
		if nerr != nil {
			r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, v))
			return fallback
		}
		d = time.Duration(n) * time.Second
	}
	return d
}

func (r *reader) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return fallback
	}
	return f
}

func (r *reader) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return fallback
	}
	return n
}
