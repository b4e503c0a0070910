package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port    string `yaml:"port"`
	AppName string `yaml:"app_name"`
}

type UpstreamConfig struct {
	CommentsURL string `yaml:"comments_url"`
	Timeout     string `yaml:"timeout"`
	MinInterval string `yaml:"min_interval"`
	UserAgent   string `yaml:"user_agent"`
}

type HarvestConfig struct {
	DefaultBudget string `yaml:"default_budget"`
	MaxBudget     string `yaml:"max_budget"`
	PageSizeMin   int    `yaml:"page_size_min"`
	PageSizeMax   int    `yaml:"page_size_max"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

type Config struct {
	Server      ServerConfig   `yaml:"server"`
	Upstream    UpstreamConfig `yaml:"upstream"`
	Harvest     HarvestConfig  `yaml:"harvest"`
	Log         LogConfig      `yaml:"log"`
	DatabaseURL string         `yaml:"database_url,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    "3000",
			AppName: "pullpush user archive",
		},
		Upstream: UpstreamConfig{
			CommentsURL: "https://api.pullpush.io/reddit/search/comment/?",
			Timeout:     "30s",
			MinInterval: "0s",
			UserAgent:   "pullpush-archive/1.0",
		},
		Harvest: HarvestConfig{
			DefaultBudget: "25s",
			MaxBudget:     "300s",
			PageSizeMin:   50,
			PageSizeMax:   59,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "pullpush-archive", "config.yaml")
}

// Load reads path (or the default path when empty) over the defaults and
// applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("PULLPUSH_COMMENTS_URL"); v != "" {
		cfg.Upstream.CommentsURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Upstream.CommentsURL)
	if err != nil {
		return fmt.Errorf("upstream.comments_url: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream.comments_url: scheme must be http or https, got %q", u.Scheme)
	}
	for name, v := range map[string]string{
		"upstream.timeout":       cfg.Upstream.Timeout,
		"upstream.min_interval":  cfg.Upstream.MinInterval,
		"harvest.default_budget": cfg.Harvest.DefaultBudget,
		"harvest.max_budget":     cfg.Harvest.MaxBudget,
	} {
		if _, err := ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if cfg.Harvest.PageSizeMin < 0 || cfg.Harvest.PageSizeMax < 0 {
		return fmt.Errorf("harvest page sizes must not be negative")
	}
	if cfg.Harvest.PageSizeMax > 100 {
		return fmt.Errorf("harvest.page_size_max: %d exceeds the upstream cap of 100", cfg.Harvest.PageSizeMax)
	}
	if cfg.Harvest.PageSizeMax != 0 && cfg.Harvest.PageSizeMin > cfg.Harvest.PageSizeMax {
		return fmt.Errorf("harvest.page_size_min %d is above page_size_max %d", cfg.Harvest.PageSizeMin, cfg.Harvest.PageSizeMax)
	}
	return nil
}

// ParseDuration accepts Go durations ("25s", "2m") and bare seconds ("25").
// An empty string is zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func (c *Config) UpstreamTimeout() time.Duration {
	d, _ := ParseDuration(c.Upstream.Timeout)
	return d
}

func (c *Config) UpstreamMinInterval() time.Duration {
	d, _ := ParseDuration(c.Upstream.MinInterval)
	return d
}

func (c *Config) DefaultBudget() time.Duration {
	d, _ := ParseDuration(c.Harvest.DefaultBudget)
	return d
}

func (c *Config) MaxBudget() time.Duration {
	d, _ := ParseDuration(c.Harvest.MaxBudget)
	return d
}
