package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Feeds    []FeedConfig   `yaml:"feeds"`
	Gesture  GestureConfig  `yaml:"gesture"`
	Feed     FeedUIConfig   `yaml:"feed"`
	Sampler  SamplerConfig  `yaml:"sampler"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type APIConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIToken string `yaml:"api_token"`
}

type FeedConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type GestureConfig struct {
	PullThreshold   float64 `yaml:"pull_threshold"`
	MaxPullDistance float64 `yaml:"max_pull_distance"`
	Damping         float64 `yaml:"damping"`
	MinIndicator    string  `yaml:"min_indicator"`
}

type FeedUIConfig struct {
	PageSize       int `yaml:"page_size"`
	MaxCachedItems int `yaml:"max_cached_items"`
}

type SamplerConfig struct {
	Tick        string  `yaml:"tick"`
	Probability float64 `yaml:"probability"`
	Step        int     `yaml:"step"`
	FlagWindow  string  `yaml:"flag_window"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// GetMinIndicator parses the minimum refresh-indicator duration.
func (g *GestureConfig) GetMinIndicator() (time.Duration, error) {
	return time.ParseDuration(g.MinIndicator)
}

// GetTick parses the sampler tick interval.
func (s *SamplerConfig) GetTick() (time.Duration, error) {
	return time.ParseDuration(s.Tick)
}

// GetFlagWindow parses the transient "recently increased" display window.
func (s *SamplerConfig) GetFlagWindow() (time.Duration, error) {
	return time.ParseDuration(s.FlagWindow)
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand home directory in file paths
	if cfg.Database.Path != "" {
		cfg.Database.Path = expandPath(cfg.Database.Path)
	}
	if cfg.Log.Path != "" {
		cfg.Log.Path = expandPath(cfg.Log.Path)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every tunable at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Gesture.PullThreshold == 0 {
		cfg.Gesture.PullThreshold = 80
	}
	if cfg.Gesture.MaxPullDistance == 0 {
		cfg.Gesture.MaxPullDistance = 120
	}
	if cfg.Gesture.Damping == 0 {
		cfg.Gesture.Damping = 0.5
	}
	if cfg.Gesture.MinIndicator == "" {
		cfg.Gesture.MinIndicator = "1s"
	}
	if cfg.Feed.PageSize == 0 {
		cfg.Feed.PageSize = 6
	}
	if cfg.Feed.MaxCachedItems == 0 {
		cfg.Feed.MaxCachedItems = 200
	}
	if cfg.Sampler.Tick == "" {
		cfg.Sampler.Tick = "30s"
	}
	if cfg.Sampler.Probability == 0 {
		cfg.Sampler.Probability = 0.1
	}
	if cfg.Sampler.Step == 0 {
		cfg.Sampler.Step = 1
	}
	if cfg.Sampler.FlagWindow == "" {
		cfg.Sampler.FlagWindow = "3s"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Save writes configuration to file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "pulse", "config.yaml")
}
