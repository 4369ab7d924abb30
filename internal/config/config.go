package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Feed struct {
		Provider        string `yaml:"provider"` // "sheets" or "workbook"
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		CredentialsFile string `yaml:"credentials_file"`
		WorkbookPath    string `yaml:"workbook_path"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
		CacheMaxEntries int    `yaml:"cache_max_entries"`
	} `yaml:"feed"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Rooms struct {
		Path          string `yaml:"path"`
		ReloadSeconds int    `yaml:"reload_seconds"`
		MiradorRoom   int    `yaml:"mirador_room"`
	} `yaml:"rooms"`

	Notify struct {
		Endpoint       string `yaml:"endpoint"`
		APIKey         string `yaml:"api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		MaxRetries     int    `yaml:"max_retries"`
	} `yaml:"notify"`

	Booking struct {
		RatePerMinute int `yaml:"rate_per_minute"`
		Burst         int `yaml:"burst"`
	} `yaml:"booking"`

	Session struct {
		TimeoutMinutes int `yaml:"timeout_minutes"`
		CleanupSeconds int `yaml:"cleanup_seconds"`
	} `yaml:"session"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if cfg.Feed.Provider == "sheets" && cfg.Feed.SpreadsheetID == "" {
		return nil, fmt.Errorf("feed.spreadsheet_id is required for the sheets provider")
	}
	if cfg.Feed.Provider == "workbook" && cfg.Feed.WorkbookPath == "" {
		return nil, fmt.Errorf("feed.workbook_path is required for the workbook provider")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Feed.Provider == "" {
		c.Feed.Provider = "sheets"
	}
	if c.Feed.CacheTTLSeconds == 0 {
		c.Feed.CacheTTLSeconds = 300
	}
	if c.Feed.CacheMaxEntries == 0 {
		c.Feed.CacheMaxEntries = 64
	}
	if c.Rooms.Path == "" {
		c.Rooms.Path = "configs/rooms.yaml"
	}
	if c.Rooms.ReloadSeconds == 0 {
		c.Rooms.ReloadSeconds = 60
	}
	if c.Notify.TimeoutSeconds == 0 {
		c.Notify.TimeoutSeconds = 10
	}
	if c.Notify.MaxRetries == 0 {
		c.Notify.MaxRetries = 3
	}
	if c.Booking.RatePerMinute == 0 {
		c.Booking.RatePerMinute = 10
	}
	if c.Booking.Burst == 0 {
		c.Booking.Burst = 5
	}
	if c.Session.TimeoutMinutes == 0 {
		c.Session.TimeoutMinutes = 30
	}
	if c.Session.CleanupSeconds == 0 {
		c.Session.CleanupSeconds = 300
	}
}

func (c *Config) FeedCacheTTL() time.Duration {
	return time.Duration(c.Feed.CacheTTLSeconds) * time.Second
}

func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Session.TimeoutMinutes) * time.Minute
}

func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Notify.TimeoutSeconds) * time.Second
}
