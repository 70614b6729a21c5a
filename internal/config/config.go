package config

import (
	"os"
	"path/filepath"
	"time"

	"task-planner/internal/domain"
)

// Config holds all configuration options for the scheduling engine
type Config struct {
	Database    DatabaseConfig    `toml:"database"`
	Hours       HoursConfig       `toml:"hours"`
	Scheduling  SchedulingConfig  `toml:"scheduling"`
	Timer       TimerConfig       `toml:"timer"`
	Alerts      AlertsConfig      `toml:"alerts"`
	Application ApplicationConfig `toml:"application"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Dir          string        `toml:"dir" env:"TP_DB_DIR"`
	Filename     string        `toml:"filename" env:"TP_DB_FILENAME"`
	QueryTimeout time.Duration `toml:"query_timeout" env:"TP_DB_QUERY_TIMEOUT"`
	WriteTimeout time.Duration `toml:"write_timeout" env:"TP_DB_WRITE_TIMEOUT"`
}

// HoursConfig defines the working-day window eligible for scheduling
type HoursConfig struct {
	WorkDays   []time.Weekday `toml:"work_days" env:"TP_HOURS_WORK_DAYS"`
	DayStart   string         `toml:"day_start" env:"TP_HOURS_DAY_START"`
	DayEnd     string         `toml:"day_end" env:"TP_HOURS_DAY_END"`
	LunchStart string         `toml:"lunch_start" env:"TP_HOURS_LUNCH_START"`
	LunchEnd   string         `toml:"lunch_end" env:"TP_HOURS_LUNCH_END"`
}

// SchedulingConfig holds capacity and cascade parameters
type SchedulingConfig struct {
	DailyCapacityMinutes int     `toml:"daily_capacity_minutes" env:"TP_SCHED_DAILY_CAPACITY"`
	CascadeGapMinutes    int     `toml:"cascade_gap_minutes" env:"TP_SCHED_CASCADE_GAP"`
	LeadTimeMinutes      int     `toml:"lead_time_minutes" env:"TP_SCHED_LEAD_TIME"`
	GridMinutes          int     `toml:"grid_minutes" env:"TP_SCHED_GRID"`
	HorizonDays          int     `toml:"horizon_days" env:"TP_SCHED_HORIZON_DAYS"`
	MaxSuggestions       int     `toml:"max_suggestions" env:"TP_SCHED_MAX_SUGGESTIONS"`
	OverrunWarnRatio     float64 `toml:"overrun_warn_ratio" env:"TP_SCHED_OVERRUN_WARN_RATIO"`
	UseIdleBuffer        bool    `toml:"use_idle_buffer" env:"TP_SCHED_USE_IDLE_BUFFER"`
}

// TimerConfig holds timer coordination and idle detection parameters
type TimerConfig struct {
	SyncInterval      time.Duration `toml:"sync_interval" env:"TP_TIMER_SYNC_INTERVAL"`
	IdleCheckInterval time.Duration `toml:"idle_check_interval" env:"TP_TIMER_IDLE_CHECK_INTERVAL"`
	IdleThreshold     time.Duration `toml:"idle_threshold" env:"TP_TIMER_IDLE_THRESHOLD"`
}

// AlertsConfig holds alert dedup, retention and push parameters
type AlertsConfig struct {
	HistoryLimit       int           `toml:"history_limit" env:"TP_ALERTS_HISTORY_LIMIT"`
	HistoryTTL         time.Duration `toml:"history_ttl" env:"TP_ALERTS_HISTORY_TTL"`
	DefaultMinInterval time.Duration `toml:"default_min_interval" env:"TP_ALERTS_DEFAULT_MIN_INTERVAL"`
	PushEndpoint       string        `toml:"push_endpoint" env:"TP_ALERTS_PUSH_ENDPOINT"`
	PushTimeout        time.Duration `toml:"push_timeout" env:"TP_ALERTS_PUSH_TIMEOUT"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout  time.Duration `toml:"timeout" env:"TP_APP_TIMEOUT"`
	LogLevel string        `toml:"log_level" env:"TP_APP_LOG_LEVEL"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".tp")

	return &Config{
		Database: DatabaseConfig{
			Dir:          defaultDBDir,
			Filename:     "tp.db",
			QueryTimeout: 10 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Hours: HoursConfig{
			WorkDays:   []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
			DayStart:   "09:00",
			DayEnd:     "17:30",
			LunchStart: "12:30",
			LunchEnd:   "13:00",
		},
		Scheduling: SchedulingConfig{
			DailyCapacityMinutes: 420,
			CascadeGapMinutes:    5,
			LeadTimeMinutes:      10,
			GridMinutes:          15,
			HorizonDays:          14,
			MaxSuggestions:       5,
			OverrunWarnRatio:     0.8,
			UseIdleBuffer:        false,
		},
		Timer: TimerConfig{
			SyncInterval:      5 * time.Second,
			IdleCheckInterval: 60 * time.Second,
			IdleThreshold:     15 * time.Minute,
		},
		Alerts: AlertsConfig{
			HistoryLimit:       100,
			HistoryTTL:         24 * time.Hour,
			DefaultMinInterval: 5 * time.Minute,
			PushEndpoint:       "",
			PushTimeout:        10 * time.Second,
		},
		Application: ApplicationConfig{
			Timeout:  60 * time.Second,
			LogLevel: "info",
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// DayStartMinute returns the start of the work day as a minute of day.
// Parsing errors are caught by Validate; this accessor assumes a valid config.
func (c *Config) DayStartMinute() domain.MinuteOfDay {
	m, _ := domain.ParseMinuteOfDay(c.Hours.DayStart)
	return m
}

// DayEndMinute returns the end of the work day as a minute of day
func (c *Config) DayEndMinute() domain.MinuteOfDay {
	m, _ := domain.ParseMinuteOfDay(c.Hours.DayEnd)
	return m
}

// LunchInterval returns the fixed lunch interval
func (c *Config) LunchInterval() domain.Interval {
	start, _ := domain.ParseMinuteOfDay(c.Hours.LunchStart)
	end, _ := domain.ParseMinuteOfDay(c.Hours.LunchEnd)
	return domain.Interval{Start: start, End: end}
}

// IsWorkDay reports whether the given weekday is eligible for scheduling
func (c *Config) IsWorkDay(day time.Weekday) bool {
	for _, d := range c.Hours.WorkDays {
		if d == day {
			return true
		}
	}
	return false
}

// IsWithinWorkHours reports whether the instant falls inside the configured
// working window of a work day
func (c *Config) IsWithinWorkHours(t time.Time) bool {
	if !c.IsWorkDay(t.Weekday()) {
		return false
	}
	minute := domain.MinuteOfDay(t.Hour()*60 + t.Minute())
	return minute >= c.DayStartMinute() && minute < c.DayEndMinute()
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if c.Database.Dir == "" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	if len(c.Hours.WorkDays) == 0 {
		return &ConfigError{Field: "hours.work_days", Message: "at least one work day is required"}
	}
	start, err := domain.ParseMinuteOfDay(c.Hours.DayStart)
	if err != nil {
		return &ConfigError{Field: "hours.day_start", Message: err.Error()}
	}
	end, err := domain.ParseMinuteOfDay(c.Hours.DayEnd)
	if err != nil {
		return &ConfigError{Field: "hours.day_end", Message: err.Error()}
	}
	if end <= start {
		return &ConfigError{Field: "hours.day_end", Message: "day end must be after day start"}
	}
	lunchStart, err := domain.ParseMinuteOfDay(c.Hours.LunchStart)
	if err != nil {
		return &ConfigError{Field: "hours.lunch_start", Message: err.Error()}
	}
	lunchEnd, err := domain.ParseMinuteOfDay(c.Hours.LunchEnd)
	if err != nil {
		return &ConfigError{Field: "hours.lunch_end", Message: err.Error()}
	}
	if lunchEnd < lunchStart {
		return &ConfigError{Field: "hours.lunch_end", Message: "lunch end must not be before lunch start"}
	}

	if c.Scheduling.DailyCapacityMinutes <= 0 {
		return &ConfigError{Field: "scheduling.daily_capacity_minutes", Message: "daily capacity must be positive"}
	}
	if c.Scheduling.CascadeGapMinutes < 0 {
		return &ConfigError{Field: "scheduling.cascade_gap_minutes", Message: "cascade gap cannot be negative"}
	}
	if c.Scheduling.GridMinutes <= 0 {
		return &ConfigError{Field: "scheduling.grid_minutes", Message: "grid must be positive"}
	}
	if c.Scheduling.HorizonDays <= 0 {
		return &ConfigError{Field: "scheduling.horizon_days", Message: "horizon must be positive"}
	}
	if c.Scheduling.MaxSuggestions <= 0 {
		return &ConfigError{Field: "scheduling.max_suggestions", Message: "max suggestions must be positive"}
	}
	if c.Scheduling.OverrunWarnRatio <= 0 || c.Scheduling.OverrunWarnRatio > 1 {
		return &ConfigError{Field: "scheduling.overrun_warn_ratio", Message: "overrun warn ratio must be in (0, 1]"}
	}

	if c.Timer.SyncInterval <= 0 {
		return &ConfigError{Field: "timer.sync_interval", Message: "sync interval must be positive"}
	}
	if c.Timer.IdleCheckInterval <= 0 {
		return &ConfigError{Field: "timer.idle_check_interval", Message: "idle check interval must be positive"}
	}
	if c.Timer.IdleThreshold <= 0 {
		return &ConfigError{Field: "timer.idle_threshold", Message: "idle threshold must be positive"}
	}

	if c.Alerts.HistoryLimit <= 0 {
		return &ConfigError{Field: "alerts.history_limit", Message: "history limit must be positive"}
	}
	if c.Alerts.HistoryTTL <= 0 {
		return &ConfigError{Field: "alerts.history_ttl", Message: "history ttl must be positive"}
	}
	if c.Alerts.DefaultMinInterval <= 0 {
		return &ConfigError{Field: "alerts.default_min_interval", Message: "default min interval must be positive"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
