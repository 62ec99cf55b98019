package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the gamelist pipeline.
type Config struct {
	Endpoint       string        `yaml:"endpoint"`
	Output         string        `yaml:"output"`
	PageSize       int           `yaml:"page_size"`
	MaxRecords     int           `yaml:"max_records"`
	ShardSize      int           `yaml:"shard_size"`
	OuterAttempts  int           `yaml:"outer_attempts"`
	PageRetries    int           `yaml:"page_retries"`
	PageDelay      time.Duration `yaml:"page_delay"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	Cooldown       time.Duration `yaml:"cooldown"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Combined       bool          `yaml:"combined"`
	Retry          RetryConfig   `yaml:"retry"`
}

// RetryConfig defines transport-level retry behavior.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Output:         "data",
		PageSize:       500,
		MaxRecords:     400000,
		ShardSize:      10000,
		OuterAttempts:  10,
		PageRetries:    3,
		PageDelay:      400 * time.Millisecond,
		RetryDelay:     5 * time.Second,
		Cooldown:       time.Minute,
		RequestTimeout: 30 * time.Second,
		Retry: RetryConfig{
			Attempts:   5,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	Endpoint       string          `yaml:"endpoint"`
	Output         string          `yaml:"output"`
	PageSize       int             `yaml:"page_size"`
	MaxRecords     int             `yaml:"max_records"`
	ShardSize      int             `yaml:"shard_size"`
	OuterAttempts  int             `yaml:"outer_attempts"`
	PageRetries    int             `yaml:"page_retries"`
	PageDelay      string          `yaml:"page_delay"`
	RetryDelay     string          `yaml:"retry_delay"`
	Cooldown       string          `yaml:"cooldown"`
	RequestTimeout string          `yaml:"request_timeout"`
	Combined       bool            `yaml:"combined"`
	Retry          yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Endpoint != "" {
		cfg.Endpoint = yc.Endpoint
	}
	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	if yc.PageSize != 0 {
		cfg.PageSize = yc.PageSize
	}
	if yc.MaxRecords != 0 {
		cfg.MaxRecords = yc.MaxRecords
	}
	if yc.ShardSize != 0 {
		cfg.ShardSize = yc.ShardSize
	}
	if yc.OuterAttempts != 0 {
		cfg.OuterAttempts = yc.OuterAttempts
	}
	if yc.PageRetries != 0 {
		cfg.PageRetries = yc.PageRetries
	}
	cfg.Combined = yc.Combined
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}

	durations := []struct {
		value string
		name  string
		dst   *time.Duration
	}{
		{yc.PageDelay, "page_delay", &cfg.PageDelay},
		{yc.RetryDelay, "retry_delay", &cfg.RetryDelay},
		{yc.Cooldown, "cooldown", &cfg.Cooldown},
		{yc.RequestTimeout, "request_timeout", &cfg.RequestTimeout},
		{yc.Retry.Backoff, "retry.backoff", &cfg.Retry.Backoff},
		{yc.Retry.MaxBackoff, "retry.max_backoff", &cfg.Retry.MaxBackoff},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the GAMELIST_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("GAMELIST_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("GAMELIST_OUTPUT"); v != "" {
		c.Output = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"GAMELIST_PAGE_SIZE", &c.PageSize},
		{"GAMELIST_MAX_RECORDS", &c.MaxRecords},
		{"GAMELIST_SHARD_SIZE", &c.ShardSize},
		{"GAMELIST_OUTER_ATTEMPTS", &c.OuterAttempts},
		{"GAMELIST_PAGE_RETRIES", &c.PageRetries},
		{"GAMELIST_RETRY_ATTEMPTS", &c.Retry.Attempts},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", e.name, err)
		}
		*e.dst = n
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"GAMELIST_PAGE_DELAY", &c.PageDelay},
		{"GAMELIST_RETRY_DELAY", &c.RetryDelay},
		{"GAMELIST_COOLDOWN", &c.Cooldown},
		{"GAMELIST_REQUEST_TIMEOUT", &c.RequestTimeout},
		{"GAMELIST_RETRY_BACKOFF", &c.Retry.Backoff},
		{"GAMELIST_RETRY_MAX_BACKOFF", &c.Retry.MaxBackoff},
	}
	for _, e := range durations {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", e.name, err)
		}
		*e.dst = d
	}

	if v := os.Getenv("GAMELIST_COMBINED"); v != "" {
		c.Combined = v == "true" || v == "1"
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("config: endpoint is required")
	}
	if c.Output == "" {
		return errors.New("config: output is required")
	}
	if c.PageSize <= 0 {
		return errors.New("config: page_size must be positive")
	}
	if c.MaxRecords <= 0 {
		return errors.New("config: max_records must be positive")
	}
	if c.ShardSize <= 0 {
		return errors.New("config: shard_size must be positive")
	}
	if c.OuterAttempts <= 0 {
		return errors.New("config: outer_attempts must be positive")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Endpoint != "" {
		c.Endpoint = override.Endpoint
	}
	if override.Output != "" {
		c.Output = override.Output
	}
	if override.PageSize != 0 {
		c.PageSize = override.PageSize
	}
	if override.MaxRecords != 0 {
		c.MaxRecords = override.MaxRecords
	}
	if override.ShardSize != 0 {
		c.ShardSize = override.ShardSize
	}
	if override.OuterAttempts != 0 {
		c.OuterAttempts = override.OuterAttempts
	}
	if override.PageRetries != 0 {
		c.PageRetries = override.PageRetries
	}
	if override.PageDelay != 0 {
		c.PageDelay = override.PageDelay
	}
	if override.RetryDelay != 0 {
		c.RetryDelay = override.RetryDelay
	}
	if override.Cooldown != 0 {
		c.Cooldown = override.Cooldown
	}
	if override.RequestTimeout != 0 {
		c.RequestTimeout = override.RequestTimeout
	}
	if override.Combined {
		c.Combined = override.Combined
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	return c
}
