package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Shortcuts   ShortcutsConfig   `yaml:"shortcuts"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Sources     SourcesConfig     `yaml:"sources"`
	Server      ServerConfig      `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ShortcutsConfig holds the ranking tunables consumed by the shortcut engine.
type ShortcutsConfig struct {
	MaxStatAge        string `yaml:"max_stat_age"`
	MaxSourceEventAge string `yaml:"max_source_event_age"`
	MinClicksRanking  int    `yaml:"min_clicks_for_ranking"`
	MaxReturned       int    `yaml:"max_returned"`
	ScoreHalfLife     string `yaml:"score_half_life"`
	RefreshingIcon    string `yaml:"refreshing_icon"`
}

// ParseMaxStatAge returns the shortcut stat window as a duration.
func (s ShortcutsConfig) ParseMaxStatAge() time.Duration {
	return parseDuration(s.MaxStatAge, 30*24*time.Hour)
}

// ParseMaxSourceEventAge returns the source ranking window as a duration.
func (s ShortcutsConfig) ParseMaxSourceEventAge() time.Duration {
	return parseDuration(s.MaxSourceEventAge, 30*24*time.Hour)
}

// ParseScoreHalfLife returns the recency-weight half-life as a duration.
func (s ShortcutsConfig) ParseScoreHalfLife() time.Duration {
	return parseDuration(s.ScoreHalfLife, 24*time.Hour)
}

// MaintenanceConfig configures the background purge loop.
type MaintenanceConfig struct {
	PurgeInterval string `yaml:"purge_interval"`
}

// ParsePurgeInterval returns the purge interval as a duration.
func (m MaintenanceConfig) ParsePurgeInterval() time.Duration {
	return parseDuration(m.PurgeInterval, time.Hour)
}

// SourcesConfig holds configuration for the bundled suggestion sources.
type SourcesConfig struct {
	RSS    RSSConfig    `yaml:"rss"`
	Static StaticConfig `yaml:"static"`
}

// RSSConfig for the feed-backed suggestion source.
type RSSConfig struct {
	Enabled bool       `yaml:"enabled"`
	Feeds   []FeedItem `yaml:"feeds"`
}

// FeedItem is a single RSS/Atom feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// StaticConfig for the fixed-list suggestion source.
type StaticConfig struct {
	Enabled bool          `yaml:"enabled"`
	Entries []StaticEntry `yaml:"entries"`
}

// StaticEntry is one configured suggestion: a title and the URL it opens.
type StaticEntry struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./suggestbox.db"},
		Shortcuts: ShortcutsConfig{
			MaxStatAge:        "720h", // 30 days
			MaxSourceEventAge: "720h",
			MinClicksRanking:  3,
			MaxReturned:       12,
			ScoreHalfLife:     "24h",
			RefreshingIcon:    "suggestbox:refreshing",
		},
		Maintenance: MaintenanceConfig{PurgeInterval: "1h"},
		Sources: SourcesConfig{
			RSS: RSSConfig{
				Enabled: false,
				Feeds: []FeedItem{
					{Name: "Hacker News", URL: "https://news.ycombinator.com/rss"},
				},
			},
			Static: StaticConfig{Enabled: false},
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SUGGESTBOX_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SUGGESTBOX_REFRESHING_ICON"); v != "" {
		cfg.Shortcuts.RefreshingIcon = v
	}
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
