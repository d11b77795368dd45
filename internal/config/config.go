// Package config loads the producer service configuration from YAML with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JustAGhosT/content-creation-sub001/internal/publish"
)

const (
	// DefaultPort is the default HTTP listen port
	DefaultPort = 8090
	// DefaultUpstreamTimeout is the default timeout for backend calls
	DefaultUpstreamTimeout = 30 * time.Second
	// DefaultPublishTimeout is the default timeout for platform publishes
	DefaultPublishTimeout = 15 * time.Second
	// DefaultSessionTTL is the default idle session lifetime
	DefaultSessionTTL = 30 * time.Minute
	// DefaultPublishConcurrency bounds parallel platform dispatches
	DefaultPublishConcurrency = 4
	// DefaultPublishRateRPS paces platform dispatches
	DefaultPublishRateRPS = 10
)

type Config struct {
	Debug     bool                     `yaml:"debug"` // Application debug mode (controls log level and format)
	Server    ServerConfig             `yaml:"server"`
	Logging   LoggingConfig            `yaml:"logging"`
	Postgres  PostgresConfig           `yaml:"postgres"`
	Redis     RedisConfig              `yaml:"redis"`
	Upstreams UpstreamsConfig          `yaml:"upstreams"`
	Platforms []publish.PlatformConfig `yaml:"platforms"`
	Publish   PublishConfig            `yaml:"publish"`
	Session   SessionConfig            `yaml:"session"`
	Webhooks  []string                 `yaml:"webhooks"` // Optional: notification webhook URLs
}

type ServerConfig struct {
	Port         int           `yaml:"port"`          // e.g., 8090
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // Default: 60s
	CORSOrigins  []string      `yaml:"cors_origins"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// Enabled reports whether a Postgres connection is configured.
func (c PostgresConfig) Enabled() bool {
	return c.Host != ""
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Enabled reports whether a Redis connection is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// UpstreamsConfig holds the backend service URLs for each pipeline feature.
type UpstreamsConfig struct {
	TextParser     TextParserUpstreams `yaml:"text_parser"`
	Summarizer     string              `yaml:"summarizer"`
	ImageGenerator string              `yaml:"image_generator"`
	Timeout        time.Duration       `yaml:"timeout"` // Default: 30s
}

// TextParserUpstreams holds one URL per parser implementation.
type TextParserUpstreams struct {
	Deepseek string `yaml:"deepseek"`
	OpenAI   string `yaml:"openai"`
	Azure    string `yaml:"azure"`
}

type PublishConfig struct {
	Concurrency  int           `yaml:"concurrency"`    // Default: 4
	RateLimitRPS int           `yaml:"rate_limit_rps"` // Default: 10
	Timeout      time.Duration `yaml:"timeout"`        // Default: 15s
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"` // Default: 30m
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Upstreams.Summarizer == "" {
		return errors.New("upstreams.summarizer is required")
	}
	if c.Upstreams.ImageGenerator == "" {
		return errors.New("upstreams.image_generator is required")
	}
	if c.Upstreams.TextParser.Deepseek == "" {
		return errors.New("upstreams.text_parser.deepseek is required")
	}
	for i, platform := range c.Platforms {
		if platform.Name == "" {
			return fmt.Errorf("platforms[%d].name is required", i)
		}
	}
	return nil
}

// setDefaults sets default values for configuration fields
func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Postgres.Port == "" {
		cfg.Postgres.Port = "5432"
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
	if cfg.Upstreams.Timeout == 0 {
		cfg.Upstreams.Timeout = DefaultUpstreamTimeout
	}
	if cfg.Publish.Concurrency == 0 {
		cfg.Publish.Concurrency = DefaultPublishConcurrency
	}
	if cfg.Publish.RateLimitRPS == 0 {
		cfg.Publish.RateLimitRPS = DefaultPublishRateRPS
	}
	if cfg.Publish.Timeout == 0 {
		cfg.Publish.Timeout = DefaultPublishTimeout
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = DefaultSessionTTL
	}
}

// overrideWithEnvVars overrides configuration with environment variables
func overrideWithEnvVars(cfg *Config) {
	if port := os.Getenv("PRODUCER_PORT"); port != "" {
		if parsed, parseErr := strconv.Atoi(port); parseErr == nil {
			cfg.Server.Port = parsed
		}
	}
	if appDebug := os.Getenv("APP_DEBUG"); appDebug != "" {
		cfg.Debug = parseBool(appDebug)
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}

	if pgHost := os.Getenv("POSTGRES_HOST"); pgHost != "" {
		cfg.Postgres.Host = pgHost
	}
	if pgPort := os.Getenv("POSTGRES_PORT"); pgPort != "" {
		cfg.Postgres.Port = pgPort
	}
	if pgUser := os.Getenv("POSTGRES_USER"); pgUser != "" {
		cfg.Postgres.User = pgUser
	}
	if pgPassword := os.Getenv("POSTGRES_PASSWORD"); pgPassword != "" {
		cfg.Postgres.Password = pgPassword
	}
	if pgDB := os.Getenv("POSTGRES_DB"); pgDB != "" {
		cfg.Postgres.DBName = pgDB
	}

	if url := os.Getenv("TEXT_PARSER_DEEPSEEK_URL"); url != "" {
		cfg.Upstreams.TextParser.Deepseek = url
	}
	if url := os.Getenv("TEXT_PARSER_OPENAI_URL"); url != "" {
		cfg.Upstreams.TextParser.OpenAI = url
	}
	if url := os.Getenv("TEXT_PARSER_AZURE_URL"); url != "" {
		cfg.Upstreams.TextParser.Azure = url
	}
	if url := os.Getenv("SUMMARIZER_URL"); url != "" {
		cfg.Upstreams.Summarizer = url
	}
	if url := os.Getenv("IMAGE_GENERATOR_URL"); url != "" {
		cfg.Upstreams.ImageGenerator = url
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)
	overrideWithEnvVars(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// parseBool parses a string value as a boolean.
// Returns true for "true", "1", "yes" (case-insensitive), false otherwise.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}
