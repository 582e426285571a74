package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Storage       StorageConfig
	Ingest        IngestConfig
	Limits        LimitsConfig
	Parser        ParserConfig
	Committees    CommitteesConfig
	Observability ObservabilityConfig
	Alerts        AlertsConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

// StorageConfig locates the report folders.
type StorageConfig struct {
	BasePath string
}

// IngestConfig controls the scheduled inbox ingest.
type IngestConfig struct {
	Enabled     bool
	Schedule    string
	Workers     int
	PdfToText   string
	VerifyPages bool
}

// LimitsConfig holds the per-election contribution limit.
type LimitsConfig struct {
	ContributionLimitCents int64
}

// ParserConfig overrides the parser's page classification.
type ParserConfig struct {
	SkipPages          int
	BoilerplatePhrases []string
}

// CommitteesConfig locates the committee-name index.
type CommitteesConfig struct {
	IndexPath      string
	MatchThreshold float64
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// AlertsConfig points at the alert webhook. An empty URL disables alerts.
type AlertsConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 40),
			AllowedOrigins:     getEnvAsList("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "campaign-finance"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("POSTGRES_MAX_CONNS", 10),
			MinConns: getEnvAsInt("POSTGRES_MIN_CONNS", 2),
		},
		Storage: StorageConfig{
			BasePath: getEnv("STORAGE_PATH", "./data"),
		},
		Ingest: IngestConfig{
			Enabled:     getEnvAsBool("INGEST_ENABLED", true),
			Schedule:    getEnv("INGEST_SCHEDULE", "*/15 * * * *"),
			Workers:     getEnvAsInt("INGEST_WORKERS", 4),
			PdfToText:   getEnv("PDFTOTEXT_BIN", "pdftotext"),
			VerifyPages: getEnvAsBool("INGEST_VERIFY_PAGES", true),
		},
		Limits: LimitsConfig{
			ContributionLimitCents: int64(getEnvAsInt("CONTRIBUTION_LIMIT_CENTS", 200000)),
		},
		Parser: ParserConfig{
			SkipPages:          getEnvAsInt("PARSER_SKIP_PAGES", 2),
			BoilerplatePhrases: getEnvAsList("PARSER_BOILERPLATE_PHRASES", nil),
		},
		Committees: CommitteesConfig{
			IndexPath:      getEnv("COMMITTEE_INDEX_PATH", ""),
			MatchThreshold: getEnvAsFloat("COMMITTEE_MATCH_THRESHOLD", 0.5),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
		Alerts: AlertsConfig{
			WebhookURL: getEnv("ALERT_WEBHOOK_URL", ""),
		},
	}

	if cfg.Ingest.Workers < 1 {
		return nil, errors.New("INGEST_WORKERS must be at least 1")
	}

	if cfg.Parser.SkipPages < 0 {
		return nil, errors.New("PARSER_SKIP_PAGES must not be negative")
	}

	if cfg.Limits.ContributionLimitCents <= 0 {
		return nil, errors.New("CONTRIBUTION_LIMIT_CENTS must be positive")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Addr returns the host:port the API listens on.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
