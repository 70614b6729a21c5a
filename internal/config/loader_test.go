package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load("")
	require.NoError(t, err)

	assert.Equal(t, 420, cfg.Scheduling.DailyCapacityMinutes)
	assert.Equal(t, 5, cfg.Scheduling.CascadeGapMinutes)
	assert.Equal(t, 0.8, cfg.Scheduling.OverrunWarnRatio)
	assert.Equal(t, 5*time.Second, cfg.Timer.SyncInterval)
	assert.Equal(t, 15*time.Minute, cfg.Timer.IdleThreshold)
	assert.Equal(t, 100, cfg.Alerts.HistoryLimit)
	assert.Equal(t, 24*time.Hour, cfg.Alerts.HistoryTTL)
	assert.Equal(t, "09:00", cfg.Hours.DayStart)
	assert.Equal(t, "17:30", cfg.Hours.DayEnd)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, 420, cfg.Scheduling.DailyCapacityMinutes)
}

func TestLoader_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[scheduling]
daily_capacity_minutes = 300
cascade_gap_minutes = 10

[hours]
day_start = "08:00"
day_end = "16:00"

[alerts]
push_endpoint = "https://ntfy.example.com/planner"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.Scheduling.DailyCapacityMinutes)
	assert.Equal(t, 10, cfg.Scheduling.CascadeGapMinutes)
	assert.Equal(t, "08:00", cfg.Hours.DayStart)
	assert.Equal(t, "https://ntfy.example.com/planner", cfg.Alerts.PushEndpoint)

	// Untouched sections keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.Timer.SyncInterval)
}

func TestLoader_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scheduling]\ndaily_capacity_minutes = 300\n"), 0644))

	t.Setenv("TP_SCHED_DAILY_CAPACITY", "360")
	t.Setenv("TP_TIMER_SYNC_INTERVAL", "10s")
	t.Setenv("TP_HOURS_WORK_DAYS", "1,2,3")

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, 360, cfg.Scheduling.DailyCapacityMinutes)
	assert.Equal(t, 10*time.Second, cfg.Timer.SyncInterval)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday}, cfg.Hours.WorkDays)
}

func TestLoader_InvalidEnvValueKeepsFallback(t *testing.T) {
	t.Setenv("TP_SCHED_DAILY_CAPACITY", "not a number")
	t.Setenv("TP_HOURS_WORK_DAYS", "1,9")

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, 420, cfg.Scheduling.DailyCapacityMinutes)
	assert.Len(t, cfg.Hours.WorkDays, 5)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "should reject empty database dir",
			mutate: func(c *Config) { c.Database.Dir = "" },
			field:  "database.dir",
		},
		{
			name:   "should reject day end before day start",
			mutate: func(c *Config) { c.Hours.DayStart = "18:00" },
			field:  "hours.day_end",
		},
		{
			name:   "should reject unparseable day start",
			mutate: func(c *Config) { c.Hours.DayStart = "morning" },
			field:  "hours.day_start",
		},
		{
			name:   "should reject zero capacity",
			mutate: func(c *Config) { c.Scheduling.DailyCapacityMinutes = 0 },
			field:  "scheduling.daily_capacity_minutes",
		},
		{
			name:   "should reject warn ratio above one",
			mutate: func(c *Config) { c.Scheduling.OverrunWarnRatio = 1.5 },
			field:  "scheduling.overrun_warn_ratio",
		},
		{
			name:   "should reject negative cascade gap",
			mutate: func(c *Config) { c.Scheduling.CascadeGapMinutes = -1 },
			field:  "scheduling.cascade_gap_minutes",
		},
		{
			name:   "should reject no work days",
			mutate: func(c *Config) { c.Hours.WorkDays = nil },
			field:  "hours.work_days",
		},
		{
			name:   "should reject zero idle threshold",
			mutate: func(c *Config) { c.Timer.IdleThreshold = 0 },
			field:  "timer.idle_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestConfig_WorkingHoursHelpers(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "09:00", cfg.DayStartMinute().String())
	assert.Equal(t, "17:30", cfg.DayEndMinute().String())
	assert.Equal(t, 30, cfg.LunchInterval().Minutes())

	assert.True(t, cfg.IsWorkDay(time.Wednesday))
	assert.False(t, cfg.IsWorkDay(time.Sunday))

	// Friday 10:00 is inside, Friday 18:00 and Saturday 10:00 are not.
	assert.True(t, cfg.IsWithinWorkHours(time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local)))
	assert.False(t, cfg.IsWithinWorkHours(time.Date(2026, 8, 28, 18, 0, 0, 0, time.Local)))
	assert.False(t, cfg.IsWithinWorkHours(time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local)))
}
