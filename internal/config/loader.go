package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath returns the default config file location, ~/.tp/config.toml
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".tp", "config.toml")
}

// Loader handles loading configuration from multiple sources
type Loader struct {
	config *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
	}
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the TOML file, when present
// 3. Override with environment variables
func (l *Loader) Load(path string) (*Config, error) {
	if err := l.loadFile(path); err != nil {
		return nil, err
	}

	l.loadEnvironment()

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// loadFile merges a TOML config file into the current configuration.
// A missing file is not an error; the defaults stand.
func (l *Loader) loadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return toml.Unmarshal(data, l.config)
}

// loadEnvironment applies TP_* environment variable overrides
func (l *Loader) loadEnvironment() {
	c := l.config

	// Database configuration
	if dir := os.Getenv("TP_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TP_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	c.Database.QueryTimeout = envDuration("TP_DB_QUERY_TIMEOUT", c.Database.QueryTimeout)
	c.Database.WriteTimeout = envDuration("TP_DB_WRITE_TIMEOUT", c.Database.WriteTimeout)

	// Working hours configuration
	if days := os.Getenv("TP_HOURS_WORK_DAYS"); days != "" {
		if parsed, ok := parseWorkDays(days); ok {
			c.Hours.WorkDays = parsed
		}
	}
	if v := os.Getenv("TP_HOURS_DAY_START"); v != "" {
		c.Hours.DayStart = v
	}
	if v := os.Getenv("TP_HOURS_DAY_END"); v != "" {
		c.Hours.DayEnd = v
	}
	if v := os.Getenv("TP_HOURS_LUNCH_START"); v != "" {
		c.Hours.LunchStart = v
	}
	if v := os.Getenv("TP_HOURS_LUNCH_END"); v != "" {
		c.Hours.LunchEnd = v
	}

	// Scheduling configuration
	c.Scheduling.DailyCapacityMinutes = envInt("TP_SCHED_DAILY_CAPACITY", c.Scheduling.DailyCapacityMinutes)
	c.Scheduling.CascadeGapMinutes = envInt("TP_SCHED_CASCADE_GAP", c.Scheduling.CascadeGapMinutes)
	c.Scheduling.LeadTimeMinutes = envInt("TP_SCHED_LEAD_TIME", c.Scheduling.LeadTimeMinutes)
	c.Scheduling.GridMinutes = envInt("TP_SCHED_GRID", c.Scheduling.GridMinutes)
	c.Scheduling.HorizonDays = envInt("TP_SCHED_HORIZON_DAYS", c.Scheduling.HorizonDays)
	c.Scheduling.MaxSuggestions = envInt("TP_SCHED_MAX_SUGGESTIONS", c.Scheduling.MaxSuggestions)
	c.Scheduling.OverrunWarnRatio = envFloat("TP_SCHED_OVERRUN_WARN_RATIO", c.Scheduling.OverrunWarnRatio)
	c.Scheduling.UseIdleBuffer = envBool("TP_SCHED_USE_IDLE_BUFFER", c.Scheduling.UseIdleBuffer)

	// Timer configuration
	c.Timer.SyncInterval = envDuration("TP_TIMER_SYNC_INTERVAL", c.Timer.SyncInterval)
	c.Timer.IdleCheckInterval = envDuration("TP_TIMER_IDLE_CHECK_INTERVAL", c.Timer.IdleCheckInterval)
	c.Timer.IdleThreshold = envDuration("TP_TIMER_IDLE_THRESHOLD", c.Timer.IdleThreshold)

	// Alerts configuration
	c.Alerts.HistoryLimit = envInt("TP_ALERTS_HISTORY_LIMIT", c.Alerts.HistoryLimit)
	c.Alerts.HistoryTTL = envDuration("TP_ALERTS_HISTORY_TTL", c.Alerts.HistoryTTL)
	c.Alerts.DefaultMinInterval = envDuration("TP_ALERTS_DEFAULT_MIN_INTERVAL", c.Alerts.DefaultMinInterval)
	if endpoint := os.Getenv("TP_ALERTS_PUSH_ENDPOINT"); endpoint != "" {
		c.Alerts.PushEndpoint = endpoint
	}
	c.Alerts.PushTimeout = envDuration("TP_ALERTS_PUSH_TIMEOUT", c.Alerts.PushTimeout)

	// Application configuration
	c.Application.Timeout = envDuration("TP_APP_TIMEOUT", c.Application.Timeout)
	if level := os.Getenv("TP_APP_LOG_LEVEL"); level != "" {
		c.Application.LogLevel = level
	}
}

// parseWorkDays parses a comma-separated list of weekday numbers (0=Sunday)
func parseWorkDays(s string) ([]time.Weekday, bool) {
	parts := strings.Split(s, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return nil, false
		}
		days = append(days, time.Weekday(n))
	}
	return days, true
}

func envDuration(name string, fallback time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(name string, fallback float64) float64 {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(name string, fallback bool) bool {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
