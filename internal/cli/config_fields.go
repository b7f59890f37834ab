package cli

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"apptcal/config"
	"apptcal/internal/i18n"
	"apptcal/internal/interaction"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// sanitizeValue strips ANSI escape sequences and control characters from config values
func sanitizeValue(s string) string {
	s = ansiRegex.ReplaceAllString(s, "")
	var b strings.Builder
	for _, r := range s {
		if r >= 32 || r == '\t' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// configField is one editable setting of config.yml
type configField struct {
	key    string
	label  string
	secret bool
	get    func(c *config.Config) string
	set    func(c *config.Config, value string) error
}

// providerField is one editable setting of an ai_providers entry
type providerField struct {
	key    string
	label  string
	secret bool
	get    func(p *config.AIProvider) string
	set    func(p *config.AIProvider, value string) error
}

var generalFields = []configField{
	{
		key: "base_url", label: "Store URL",
		get: func(c *config.Config) string { return c.BaseURL },
		set: func(c *config.Config, v string) error {
			u, err := url.Parse(v)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return errors.New("Must be an http(s) URL")
			}
			c.BaseURL = strings.TrimRight(v, "/")
			return nil
		},
	},
	{
		key: "default_view", label: "Default View",
		get: func(c *config.Config) string { return c.DefaultView },
		set: func(c *config.Config, v string) error {
			if _, err := interaction.ParseView(v); err != nil || v == "" {
				return errors.New("Must be month, week or day")
			}
			c.DefaultView = strings.ToLower(v)
			return nil
		},
	},
	intField("slot_minutes", "Slot Minutes", 1, 240,
		func(c *config.Config) *int { return &c.SlotMinutes }),
	intField("day_start_hour", "Day Starts At", 0, 23,
		func(c *config.Config) *int { return &c.DayStartHour }),
	intField("day_end_hour", "Day Ends At", 1, 24,
		func(c *config.Config) *int { return &c.DayEndHour }),
	{
		key: "week_start", label: "Week Starts On",
		get: func(c *config.Config) string { return c.WeekStart },
		set: func(c *config.Config, v string) error {
			v = strings.ToLower(v)
			if v != "sunday" && v != "monday" {
				return errors.New("Must be sunday or monday")
			}
			c.WeekStart = v
			return nil
		},
	},
	intField("menu_offset", "Menu Offset", 0, 10,
		func(c *config.Config) *int { return &c.MenuOffset }),
	intField("double_click_ms", "Double Click (ms)", 50, 2000,
		func(c *config.Config) *int { return &c.DoubleClickMS }),
	intField("request_timeout_seconds", "Request Timeout (s)", 1, 300,
		func(c *config.Config) *int { return &c.RequestTimeoutSeconds }),
	{
		key: "require_end_after_start", label: "End After Start",
		get: func(c *config.Config) string { return strconv.FormatBool(c.RequireEndAfterStart) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.New("Must be true or false")
			}
			c.RequireEndAfterStart = b
			return nil
		},
	},
	{
		key: "language", label: "Language",
		get: func(c *config.Config) string { return c.Language },
		set: func(c *config.Config, v string) error {
			if v != "" && !i18n.IsSupported(v) {
				return fmt.Errorf("Must be one of %s, or empty", strings.Join(i18n.SupportedLanguages, ", "))
			}
			c.Language = v
			return nil
		},
	},
	{
		key: "log_level", label: "Log Level",
		get: func(c *config.Config) string { return c.LogLevel },
		set: func(c *config.Config, v string) error {
			switch strings.ToLower(v) {
			case "debug", "info", "warn", "error":
				c.LogLevel = strings.ToLower(v)
				return nil
			}
			return errors.New("Must be debug, info, warn or error")
		},
	},
	{
		key: "server.listen", label: "Serve Address",
		get: func(c *config.Config) string { return c.Server.Listen },
		set: func(c *config.Config, v string) error {
			if !strings.Contains(v, ":") {
				return errors.New("Must be host:port or :port")
			}
			c.Server.Listen = v
			return nil
		},
	},
}

// smtpFields edit the smtp section, creating it on the first change
var smtpFields = []configField{
	smtpString("smtp.host", "SMTP Host", false, func(s *config.SMTPConfig) *string { return &s.Host }),
	{
		key: "smtp.port", label: "SMTP Port",
		get: func(c *config.Config) string {
			if c.SMTP == nil || c.SMTP.Port == 0 {
				return ""
			}
			return strconv.Itoa(c.SMTP.Port)
		},
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 65535 {
				return errors.New("Must be a port between 1 and 65535")
			}
			smtpSection(c).Port = n
			return nil
		},
	},
	smtpString("smtp.username", "SMTP Username", false, func(s *config.SMTPConfig) *string { return &s.Username }),
	smtpString("smtp.password", "SMTP Password", true, func(s *config.SMTPConfig) *string { return &s.Password }),
	smtpString("smtp.from", "Invite From", false, func(s *config.SMTPConfig) *string { return &s.From }),
}

var providerFields = []providerField{
	{
		key: "type", label: "Type",
		get: func(p *config.AIProvider) string { return string(p.Type) },
		set: func(p *config.AIProvider, v string) error {
			switch config.AIProviderType(v) {
			case config.AIProviderTypeCLI, config.AIProviderTypeAPI:
				p.Type = config.AIProviderType(v)
				return nil
			}
			return errors.New("Must be cli or api")
		},
	},
	{
		key: "name", label: "Name",
		get: func(p *config.AIProvider) string { return p.Name },
		set: func(p *config.AIProvider, v string) error { p.Name = v; return nil },
	},
	{
		key: "model", label: "Model",
		get: func(p *config.AIProvider) string { return p.Model },
		set: func(p *config.AIProvider, v string) error {
			if v == "" {
				return errors.New("Model is required")
			}
			p.Model = v
			return nil
		},
	},
	{
		key: "base_url", label: "Base URL",
		get: func(p *config.AIProvider) string { return p.BaseURL },
		set: func(p *config.AIProvider, v string) error { p.BaseURL = v; return nil },
	},
	{
		key: "api_key", label: "API Key", secret: true,
		get: func(p *config.AIProvider) string { return p.APIKey },
		set: func(p *config.AIProvider, v string) error { p.APIKey = v; return nil },
	},
}

func intField(key, label string, lo, hi int, ptr func(c *config.Config) *int) configField {
	return configField{
		key: key, label: label,
		get: func(c *config.Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < lo || n > hi {
				return fmt.Errorf("Must be a number from %d to %d", lo, hi)
			}
			*ptr(c) = n
			return nil
		},
	}
}

func smtpString(key, label string, secret bool, ptr func(s *config.SMTPConfig) *string) configField {
	return configField{
		key: key, label: label, secret: secret,
		get: func(c *config.Config) string {
			if c.SMTP == nil {
				return ""
			}
			return *ptr(c.SMTP)
		},
		set: func(c *config.Config, v string) error {
			*ptr(smtpSection(c)) = v
			return nil
		},
	}
}

func smtpSection(c *config.Config) *config.SMTPConfig {
	if c.SMTP == nil {
		c.SMTP = &config.SMTPConfig{Port: 587}
	}
	return c.SMTP
}

// maskSecret shows only the ends of long secrets
func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) > 8:
		return s[:4] + "••••" + s[len(s)-4:]
	default:
		return "••••••••"
	}
}
