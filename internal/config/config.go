package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`
	Server   struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	DataSource struct {
		Provider string   `yaml:"provider"`
		BaseURL  string   `yaml:"base_url"`
		APIKey   string   `yaml:"api_key"`
		Symbols  []string `yaml:"symbols"`
		Days     int      `yaml:"days"`
		Interval string   `yaml:"interval"`
	} `yaml:"data_source"`
	Synthetic struct {
		Seed     int64   `yaml:"seed"`
		Bars     int     `yaml:"bars"`
		MaxValue float64 `yaml:"max_value"`
		Mode     string  `yaml:"mode"`
		Start    string  `yaml:"start"`
	} `yaml:"synthetic"`
	Chart struct {
		PadLow  *float64 `yaml:"pad_low"`
		PadHigh *float64 `yaml:"pad_high"`
	} `yaml:"chart"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		Driver      string `yaml:"driver"`
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.DataSource.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8050
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "synthetic"
	}
	for i, s := range cfg.DataSource.Symbols {
		cfg.DataSource.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if len(cfg.DataSource.Symbols) == 0 {
		cfg.DataSource.Symbols = []string{"AAPL"}
	}
	if cfg.DataSource.Days == 0 {
		cfg.DataSource.Days = 365
	}
	if cfg.DataSource.Interval == "" {
		cfg.DataSource.Interval = "1d"
	}
	if cfg.Synthetic.Seed == 0 {
		cfg.Synthetic.Seed = 42
	}
	if cfg.Synthetic.Bars == 0 {
		cfg.Synthetic.Bars = 1000
	}
	if cfg.Synthetic.MaxValue == 0 {
		cfg.Synthetic.MaxValue = 100
	}
	if cfg.Synthetic.Mode == "" {
		cfg.Synthetic.Mode = "drift"
	}
	if cfg.Synthetic.Start == "" {
		cfg.Synthetic.Start = "2023-01-01"
	}
	if cfg.Chart.PadLow == nil {
		v := 0.01
		cfg.Chart.PadLow = &v
	}
	if cfg.Chart.PadHigh == nil {
		v := 0.01
		cfg.Chart.PadHigh = &v
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 */5 * * * *"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/candledash.db"
	}

	return cfg, nil
}

// SyntheticStart parses synthetic.start.
func (c *Config) SyntheticStart() (time.Time, error) {
	return time.Parse("2006-01-02", c.Synthetic.Start)
}

// TelegramEnabled reports whether both bot credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("log_level must be DEBUG, INFO, WARN or ERROR, got %q", c.LogLevel)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.DataSource.Provider {
	case "synthetic":
		if c.Synthetic.Bars <= 0 {
			return fmt.Errorf("synthetic.bars must be positive")
		}
		if c.Synthetic.MaxValue <= 0 {
			return fmt.Errorf("synthetic.max_value must be positive")
		}
		if c.Synthetic.Mode != "drift" && c.Synthetic.Mode != "uniform" {
			return fmt.Errorf("synthetic.mode must be drift or uniform, got %q", c.Synthetic.Mode)
		}
		if _, err := c.SyntheticStart(); err != nil {
			return fmt.Errorf("synthetic.start: %w", err)
		}
	case "yahoo":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider must be synthetic, yahoo or rest, got %q", c.DataSource.Provider)
	}
	if c.DataSource.Days <= 0 {
		return fmt.Errorf("data_source.days must be positive")
	}
	if c.DataSource.Interval != "1d" && c.DataSource.Interval != "1wk" {
		return fmt.Errorf("data_source.interval must be 1d or 1wk, got %q", c.DataSource.Interval)
	}
	if !finite(*c.Chart.PadLow) || *c.Chart.PadLow < 0 || *c.Chart.PadLow >= 1 {
		return fmt.Errorf("chart.pad_low must be in [0, 1)")
	}
	if !finite(*c.Chart.PadHigh) || *c.Chart.PadHigh < 0 {
		return fmt.Errorf("chart.pad_high must be non-negative")
	}
	switch c.Database.Driver {
	case "sqlite", "none":
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("database.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite, postgres or none, got %q", c.Database.Driver)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
