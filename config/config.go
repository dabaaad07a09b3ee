package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Log           LogConfig           `yaml:"log"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// HTTPConfig holds the API server settings.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// RateLimit is requests per second per client IP; RateBurst is the bucket size.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL keeps the bus in process.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|text
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment    string `yaml:"environment"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	ServiceName    string `yaml:"service_name"`
}

// LoadConfig loads the configuration from a YAML file, then applies environment
// overrides. A .env file in the working directory is loaded first when present. When
// the YAML file is missing the configuration comes from the environment alone.
func LoadConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(filename)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, cfg.Validate()
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	cfg.applyDefaults()
	return &cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_LIMIT value: %w", err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("HTTP_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_BURST value: %w", err)
		}
		cfg.HTTP.RateBurst = n
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Observability.MetricsEnabled = v == "true"
	}
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.Observability.ServiceName = v
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.RateLimit == 0 {
		c.HTTP.RateLimit = 20
	}
	if c.HTTP.RateBurst == 0 {
		c.HTTP.RateBurst = 40
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = "production"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
		if c.Observability.Environment == "development" {
			c.Log.Format = "text"
		}
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "stage-console"
	}
}

// Validate checks values the server cannot start without.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.HTTP.RateLimit < 0 || c.HTTP.RateBurst < 0 {
		return errors.New("http rate limit and burst must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}
