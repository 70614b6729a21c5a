package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinuteOfDay(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  MinuteOfDay
		expectErr bool
	}{
		{
			name:     "should parse morning time",
			input:    "09:00",
			expected: 540,
		},
		{
			name:     "should parse afternoon time",
			input:    "17:30",
			expected: 1050,
		},
		{
			name:     "should parse midnight",
			input:    "00:00",
			expected: 0,
		},
		{
			name:      "should reject hour out of range",
			input:     "24:00",
			expectErr: true,
		},
		{
			name:      "should reject minute out of range",
			input:     "12:60",
			expectErr: true,
		},
		{
			name:      "should reject garbage",
			input:     "noon",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMinuteOfDay(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestMinuteOfDay_String(t *testing.T) {
	assert.Equal(t, "09:05", MinuteOfDay(545).String())
	assert.Equal(t, "00:00", MinuteOfDay(0).String())
	assert.Equal(t, "23:59", MinuteOfDay(23*60+59).String())
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a        Interval
		b        Interval
		expected bool
	}{
		{
			name:     "should overlap when ranges intersect",
			a:        Interval{Start: 540, End: 600},
			b:        Interval{Start: 570, End: 630},
			expected: true,
		},
		{
			name:     "should not overlap when ranges touch",
			a:        Interval{Start: 540, End: 600},
			b:        Interval{Start: 600, End: 660},
			expected: false,
		},
		{
			name:     "should not overlap when disjoint",
			a:        Interval{Start: 540, End: 600},
			b:        Interval{Start: 700, End: 760},
			expected: false,
		},
		{
			name:     "should overlap when one contains the other",
			a:        Interval{Start: 540, End: 700},
			b:        Interval{Start: 560, End: 580},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.expected, tt.b.Overlaps(tt.a))
		})
	}
}

func TestTaskRef_ScheduledInterval(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local)
	minute := MinuteOfDay(540)

	t.Run("should return interval for scheduled task", func(t *testing.T) {
		task := TaskRef{ID: 1, Title: "Report", EstimateMinutes: 90, DueDate: &date, DueMinute: &minute}
		interval, ok := task.ScheduledInterval()
		require.True(t, ok)
		assert.Equal(t, MinuteOfDay(540), interval.Start)
		assert.Equal(t, MinuteOfDay(630), interval.End)
	})

	t.Run("should report nothing for unscheduled task", func(t *testing.T) {
		task := TaskRef{ID: 1, Title: "Report", EstimateMinutes: 90, DueDate: &date}
		_, ok := task.ScheduledInterval()
		assert.False(t, ok)
	})
}

func TestTimerRecord_Elapsed(t *testing.T) {
	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)

	t.Run("should include ticking segment while active", func(t *testing.T) {
		record := NewTimerRecord(1, start)
		record.AccumulatedSeconds = 120

		elapsed := record.Elapsed(start.Add(5 * time.Minute))
		assert.Equal(t, 7*time.Minute, elapsed)
	})

	t.Run("should freeze when paused", func(t *testing.T) {
		record := TimerRecord{TaskID: 1, Running: true, Paused: true, AccumulatedSeconds: 300}
		elapsed := record.Elapsed(start.Add(time.Hour))
		assert.Equal(t, 5*time.Minute, elapsed)
	})
}

func TestTimerRecord_IsActive(t *testing.T) {
	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)

	record := NewTimerRecord(1, start)
	assert.True(t, record.IsActive())

	record.Paused = true
	assert.False(t, record.IsActive())

	record.Paused = false
	record.Interrupted = true
	assert.False(t, record.IsActive())
}

func TestAlertRecord_DedupIdentity(t *testing.T) {
	t.Run("should prefer explicit dedup key", func(t *testing.T) {
		alert := AlertRecord{Type: AlertIdleDetected, DedupKey: "idle-detected", TaskID: 7}
		assert.Equal(t, "idle-detected", alert.DedupIdentity())
	})

	t.Run("should derive from type and task id", func(t *testing.T) {
		alert := AlertRecord{Type: AlertOverrunWarning, TaskID: 7}
		assert.Equal(t, "overrun_warning:7", alert.DedupIdentity())
	})
}

func TestDayOrder(t *testing.T) {
	order := NewDayOrder("2026-08-28", []int64{5, 3, 8})

	assert.Equal(t, 0, order.Position(5))
	assert.Equal(t, 2, order.Position(8))
	assert.Equal(t, -1, order.Position(99))

	removed := order.Remove(3)
	assert.Equal(t, []int64{5, 8}, removed.TaskIDs)

	appended := removed.Append(3)
	assert.Equal(t, []int64{5, 8, 3}, appended.TaskIDs)
}
