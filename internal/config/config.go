package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Tracker  TrackerConfig  `yaml:"tracker"`
	Cloud    CloudConfig    `yaml:"cloud"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port            int    `yaml:"port"`
	MetricsPort     int    `yaml:"metrics_port"`
	AdminToken      string `yaml:"admin_token"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// DatabaseConfig selects the store backend. Driver is "postgres" or "sqlite";
// for sqlite the URL is a file path or DSN.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type UpstreamConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type TrackerConfig struct {
	PollIntervalMs   int `yaml:"poll_interval_ms"`
	ExpiryIntervalMs int `yaml:"expiry_interval_ms"`
	MaxRunningMs     int `yaml:"max_running_ms"`
	SolutionLimit    int `yaml:"solution_limit"`
}

// CloudConfig holds defaults for cloud requests that omit them.
type CloudConfig struct {
	Shape string `yaml:"shape"`
	Size  int    `yaml:"size"`
	Seed  uint64 `yaml:"seed"`
}

type CacheConfig struct {
	Entries int `yaml:"entries"`
	TTLMs   int `yaml:"ttl_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Tracker.PollIntervalMs) * time.Millisecond
}

func (c *Config) ExpiryInterval() time.Duration {
	return time.Duration(c.Tracker.ExpiryIntervalMs) * time.Millisecond
}

func (c *Config) MaxRunning() time.Duration {
	return time.Duration(c.Tracker.MaxRunningMs) * time.Millisecond
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            8700,
			MetricsPort:     8701,
			RateLimitPerMin: 120,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			URL:    "frontier.db",
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Upstream: UpstreamConfig{
			URL: "http://localhost:8000",
		},
		Tracker: TrackerConfig{
			PollIntervalMs:   2000,
			ExpiryIntervalMs: 30000,
			MaxRunningMs:     1800000,
			SolutionLimit:    20,
		},
		Cloud: CloudConfig{
			Shape: frontier.DefaultShapeName,
			Size:  frontier.DefaultShape().DefaultSize,
			Seed:  1,
		},
		Cache: CacheConfig{
			Entries: 64,
			TTLMs:   600000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if _, err := frontier.ShapeByName(c.Cloud.Shape); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Cloud.Size < 0 {
		return fmt.Errorf("config: cloud size must not be negative, got %d", c.Cloud.Size)
	}
	if c.Tracker.PollIntervalMs <= 0 || c.Tracker.ExpiryIntervalMs <= 0 {
		return fmt.Errorf("config: tracker intervals must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FRONTIER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("FRONTIER_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("FRONTIER_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("FRONTIER_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("FRONTIER_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("FRONTIER_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("FRONTIER_UPSTREAM_URL"); v != "" {
		cfg.Upstream.URL = v
	}
	if v := os.Getenv("FRONTIER_UPSTREAM_TOKEN"); v != "" {
		cfg.Upstream.Token = v
	}
	if v := os.Getenv("FRONTIER_POLL_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tracker.PollIntervalMs = n
		}
	}
	if v := os.Getenv("FRONTIER_MAX_RUNNING_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tracker.MaxRunningMs = n
		}
	}
	if v := os.Getenv("FRONTIER_CLOUD_SHAPE"); v != "" {
		cfg.Cloud.Shape = v
	}
	if v := os.Getenv("FRONTIER_CLOUD_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cloud.Size = n
		}
	}
	if v := os.Getenv("FRONTIER_CLOUD_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Cloud.Seed = n
		}
	}
	if v := os.Getenv("FRONTIER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FRONTIER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
