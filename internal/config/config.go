package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ColorBlindMode adjusts how achievement markers are rendered.
type ColorBlindMode string

const (
	ColorBlindNone         ColorBlindMode = "none"
	ColorBlindProtanopia   ColorBlindMode = "protanopia"
	ColorBlindDeuteranopia ColorBlindMode = "deuteranopia"
	ColorBlindTritanopia   ColorBlindMode = "tritanopia"
)

// ParseColorBlindMode falls back to none for unrecognized values instead of
// failing the whole config read.
func ParseColorBlindMode(s string) ColorBlindMode {
	mode := ColorBlindMode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case ColorBlindProtanopia, ColorBlindDeuteranopia, ColorBlindTritanopia:
		return mode
	default:
		return ColorBlindNone
	}
}

// Config keeps runtime settings for the tracker.
type Config struct {
	// TelegramToken enables the Telegram transport. Empty means the tracker
	// runs headless: evaluation ticks still happen, notifications are only
	// logged.
	TelegramToken string `yaml:"telegram_token"`

	// DatabaseURL is the SQLite DSN or file path.
	DatabaseURL string `yaml:"database"`

	// Timezone is the IANA zone countdowns are presented in.
	Timezone string `yaml:"timezone"`

	// EvalIntervalMinutes is how often the milestone and recurrence passes
	// run.
	EvalIntervalMinutes int `yaml:"eval_interval_minutes"`

	// SummaryTime is the daily summary time as HH:MM, empty to disable.
	SummaryTime string `yaml:"summary_time"`

	// UpcomingLimit caps how many events the /list view shows.
	UpcomingLimit int `yaml:"upcoming_limit"`

	// ColorBlindMode selects colorblind-friendly markers. Unknown values
	// act as "none".
	ColorBlindMode string `yaml:"color_blind_mode"`

	// Holidays feeds the recurrence engine's skip-holidays filter. Entries
	// are "2006-01-02" for one-off dates or "01-02" for yearly ones;
	// unparseable entries are dropped.
	Holidays []string `yaml:"holidays"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DatabaseURL:         "countdown_tracker.db",
		Timezone:            "UTC",
		EvalIntervalMinutes: 5,
		SummaryTime:         "09:00",
		UpcomingLimit:       10,
		ColorBlindMode:      string(ColorBlindNone),
	}
}

// Load reads the YAML config file (creating it with defaults on first run
// when a path is given), then applies environment overrides. TELEGRAM_TOKEN
// and DATABASE_URL always win over the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %q: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			if err := writeDefault(path); err != nil {
				return cfg, err
			}
		default:
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	if token := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")); token != "" {
		cfg.TelegramToken = token
	}
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		cfg.DatabaseURL = dsn
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize fills in missing/zero values so partially-filled configs still
// behave correctly.
func (c *Config) Normalize() {
	defaults := Default()
	if c.DatabaseURL == "" {
		c.DatabaseURL = defaults.DatabaseURL
	}
	if c.Timezone == "" {
		c.Timezone = defaults.Timezone
	}
	if c.EvalIntervalMinutes <= 0 {
		c.EvalIntervalMinutes = defaults.EvalIntervalMinutes
	}
	if c.UpcomingLimit <= 0 {
		c.UpcomingLimit = defaults.UpcomingLimit
	}
	c.ColorBlindMode = string(ParseColorBlindMode(c.ColorBlindMode))
}

// EvalInterval is the evaluation tick period.
func (c *Config) EvalInterval() time.Duration {
	return time.Duration(c.EvalIntervalMinutes) * time.Minute
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HolidaySet parses the holiday list into lookup keys, dropping entries
// that are neither "2006-01-02" nor "01-02".
func (c *Config) HolidaySet() map[string]bool {
	set := make(map[string]bool)
	for _, raw := range c.Holidays {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", raw); err == nil {
			set[raw] = true
			continue
		}
		if _, err := time.Parse("01-02", raw); err == nil {
			set[raw] = true
		}
	}
	return set
}

func writeDefault(path string) error {
	cfg := Default()
	raw, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write default config %q: %w", path, err)
	}
	return nil
}
