package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yml"

// AIProviderType represents the type of AI provider
type AIProviderType string

const (
	AIProviderTypeCLI AIProviderType = "cli" // CLI tool (codex, gemini, claude, ollama)
	AIProviderTypeAPI AIProviderType = "api" // OpenAI-compatible HTTP API
)

// AIProvider represents a unified AI provider configuration
// Providers are tried in order from first to last
type AIProvider struct {
	Type    AIProviderType `yaml:"type"`               // "cli" or "api"
	Name    string         `yaml:"name"`               // CLI name (codex, gemini, claude) or friendly name for API
	Model   string         `yaml:"model"`              // model to use (required)
	BaseURL string         `yaml:"base_url,omitempty"` // API base URL (required for type: api)
	APIKey  string         `yaml:"api_key,omitempty"`  // API key (required for type: api)
}

// ServerConfig configures `apptcal serve`
type ServerConfig struct {
	Listen string `yaml:"listen" json:"listen"`
	// DSN overrides the DB_* environment variables when set
	DSN string `yaml:"dsn,omitempty" json:"dsn,omitempty"`
}

// SMTPConfig configures outgoing appointment invitations
type SMTPConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
	From     string `yaml:"from" json:"from"`
}

type Config struct {
	BaseURL     string `yaml:"base_url" json:"base_url"`
	DefaultView string `yaml:"default_view" json:"default_view"`
	SlotMinutes int    `yaml:"slot_minutes" json:"slot_minutes"`

	// Visible hours of the week and day grids
	DayStartHour int `yaml:"day_start_hour" json:"day_start_hour"`
	DayEndHour   int `yaml:"day_end_hour" json:"day_end_hour"`

	WeekStart             string `yaml:"week_start" json:"week_start"`
	MenuOffset            int    `yaml:"menu_offset" json:"menu_offset"`
	DoubleClickMS         int    `yaml:"double_click_ms" json:"double_click_ms"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
	RequireEndAfterStart  bool   `yaml:"require_end_after_start" json:"require_end_after_start"`

	Language string `yaml:"language,omitempty" json:"language,omitempty"` // Language code (en, ko) - empty means auto-detect
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	LogFile  string `yaml:"log_file,omitempty" json:"log_file,omitempty"`

	// AI providers for natural-language quick add, tried in order
	AIProviders []AIProvider `yaml:"ai_providers,omitempty" json:"ai_providers,omitempty"`

	Server ServerConfig `yaml:"server" json:"server"`
	SMTP   *SMTPConfig  `yaml:"smtp,omitempty" json:"smtp,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:               "http://localhost:5000/api",
		DefaultView:           "week",
		SlotMinutes:           30,
		DayStartHour:          0,
		DayEndHour:            24,
		WeekStart:             "sunday",
		MenuOffset:            1,
		DoubleClickMS:         400,
		RequestTimeoutSeconds: 15,
		LogLevel:              "info",
		Server: ServerConfig{
			Listen: ":5000",
		},
	}
}

func Load() (Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return DefaultConfig(), err
	}

	configPath := filepath.Join(configDir, configFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero values. DayStartHour 0 is a valid setting and is left alone.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.DefaultView == "" {
		c.DefaultView = def.DefaultView
	}
	if c.SlotMinutes <= 0 || c.SlotMinutes > 240 {
		c.SlotMinutes = def.SlotMinutes
	}
	if c.DayEndHour <= c.DayStartHour || c.DayEndHour > 24 {
		c.DayStartHour = def.DayStartHour
		c.DayEndHour = def.DayEndHour
	}
	if c.WeekStart == "" {
		c.WeekStart = def.WeekStart
	}
	if c.MenuOffset == 0 {
		c.MenuOffset = def.MenuOffset
	}
	if c.DoubleClickMS <= 0 {
		c.DoubleClickMS = def.DoubleClickMS
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = def.RequestTimeoutSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Server.Listen == "" {
		c.Server.Listen = def.Server.Listen
	}
}

func (c Config) Save() error {
	configDir, err := getConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	configPath := filepath.Join(configDir, configFileName)
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// Slot is the calendar slot length
func (c Config) Slot() time.Duration {
	return time.Duration(c.SlotMinutes) * time.Minute
}

// DoubleClick is the max gap between two presses of a double click
func (c Config) DoubleClick() time.Duration {
	return time.Duration(c.DoubleClickMS) * time.Millisecond
}

// RequestTimeout bounds every store call
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// FirstWeekday parses week_start; anything but "monday" is Sunday
func (c Config) FirstWeekday() time.Weekday {
	if strings.EqualFold(strings.TrimSpace(c.WeekStart), "monday") {
		return time.Monday
	}
	return time.Sunday
}

// LogPath returns the log file, defaulting to apptcal.log in the config dir
func (c Config) LogPath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "apptcal.log"), nil
}

func getConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "apptcal"), nil
}

func GetConfigDir() (string, error) {
	return getConfigDir()
}
