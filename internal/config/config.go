// Package config handles loading and validation of agent configuration.
// Configuration comes from an optional YAML file; a few settings can be
// overridden through environment variables for container deployments.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBatchPostingLimit  = 1000
	DefaultFlushPeriodSeconds = 2
	DefaultMaxRetries         = 3
	DefaultQueueSize          = 10000
)

type ServerConfig struct {
	URL                   string `yaml:"url"`
	APIKey                string `yaml:"api_key"`
	EventBodyLimitBytes   int    `yaml:"event_body_limit_bytes"`
	Gzip                  bool   `yaml:"gzip"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

type BatchConfig struct {
	PostingLimit      int `yaml:"posting_limit"`
	FlushPeriodSecs   int `yaml:"flush_period_seconds"`
	MaxRetries        int `yaml:"max_retries"`
	RetryDelaySeconds int `yaml:"retry_delay_seconds"`
	QueueSize         int `yaml:"queue_size"`
}

type DaemonConfig struct {
	LogRootPath            string  `yaml:"log_root_path"`
	ScanIntervalSeconds    int     `yaml:"scan_interval_seconds"`
	MinWorkers             int     `yaml:"min_workers"`
	MaxWorkers             int     `yaml:"max_workers"`
	FileQueueSize          int     `yaml:"file_queue_size"`
	ScaleUpThreshold       float64 `yaml:"scale_up_threshold"`
	ScaleDownThreshold     float64 `yaml:"scale_down_threshold"`
	ScaleCheckIntervalSecs int     `yaml:"scale_check_interval_seconds"`
	FileIdleTimeoutSeconds int     `yaml:"file_idle_timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Batch   BatchConfig   `yaml:"batch"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	Logging LoggingConfig `yaml:"logging"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			RequestTimeoutSeconds: 30,
		},
		Batch: BatchConfig{
			PostingLimit:      DefaultBatchPostingLimit,
			FlushPeriodSecs:   DefaultFlushPeriodSeconds,
			MaxRetries:        DefaultMaxRetries,
			RetryDelaySeconds: 1,
			QueueSize:         DefaultQueueSize,
		},
		Daemon: DaemonConfig{
			LogRootPath:            "/var/log/services",
			ScanIntervalSeconds:    30,
			MinWorkers:             2,
			MaxWorkers:             10,
			FileQueueSize:          50,
			ScaleUpThreshold:       0.9,
			ScaleDownThreshold:     0.3,
			ScaleCheckIntervalSecs: 15,
			FileIdleTimeoutSeconds: 300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the given YAML file (optional), applies
// environment overrides, and validates the result.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.URL = getEnv("SEQSHIP_SERVER_URL", cfg.Server.URL)
	cfg.Server.APIKey = getEnv("SEQSHIP_API_KEY", cfg.Server.APIKey)
	cfg.Daemon.LogRootPath = getEnv("SEQSHIP_LOG_PATH", cfg.Daemon.LogRootPath)
	cfg.Batch.PostingLimit = getEnvAsInt("SEQSHIP_BATCH_LIMIT", cfg.Batch.PostingLimit)
	cfg.Logging.Level = getEnv("SEQSHIP_LOG_LEVEL", cfg.Logging.Level)
}

func validate(cfg *Config) error {
	if cfg.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	u, err := url.Parse(cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("invalid server.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("server.url must include host")
	}

	if cfg.Server.EventBodyLimitBytes < 0 {
		return fmt.Errorf("server.event_body_limit_bytes must not be negative")
	}
	if cfg.Batch.PostingLimit <= 0 {
		return fmt.Errorf("batch.posting_limit must be positive")
	}
	if cfg.Batch.FlushPeriodSecs <= 0 {
		return fmt.Errorf("batch.flush_period_seconds must be positive")
	}
	if cfg.Daemon.MinWorkers <= 0 || cfg.Daemon.MaxWorkers < cfg.Daemon.MinWorkers {
		return fmt.Errorf("daemon.min_workers must be positive and at most daemon.max_workers")
	}

	return nil
}

func (c *Config) FlushPeriod() time.Duration {
	return time.Duration(c.Batch.FlushPeriodSecs) * time.Second
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Batch.RetryDelaySeconds) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Daemon.ScanIntervalSeconds) * time.Second
}

func (c *Config) ScaleCheckInterval() time.Duration {
	return time.Duration(c.Daemon.ScaleCheckIntervalSecs) * time.Second
}

func (c *Config) FileIdleTimeout() time.Duration {
	return time.Duration(c.Daemon.FileIdleTimeoutSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}
