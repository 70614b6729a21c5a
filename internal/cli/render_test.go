package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"task-planner/internal/domain"
)

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "45m", formatMinutes(45))
	assert.Equal(t, "1h", formatMinutes(60))
	assert.Equal(t, "1h30m", formatMinutes(90))
	assert.Equal(t, "2h05m", formatMinutes(125))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0m30s", formatElapsed(30*time.Second))
	assert.Equal(t, "15m00s", formatElapsed(15*time.Minute))
	assert.Equal(t, "1h02m03s", formatElapsed(time.Hour+2*time.Minute+3*time.Second))
}

func TestRenderTasks(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local)
	minute := domain.MinuteOfDay(600)
	done := domain.TaskRef{ID: 2, Title: "Old chore", EstimateMinutes: 15, Priority: domain.PriorityLow, Completed: true}

	out := renderTasks([]*domain.TaskRef{
		{ID: 1, Title: "Write report", EstimateMinutes: 90, DueDate: &date, DueMinute: &minute, Priority: domain.PriorityHigh},
		&done,
	})

	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "2026-08-28 10:00")
	assert.Contains(t, out, "1h30m")
	assert.Contains(t, out, "done")
}

func TestParseTaskID(t *testing.T) {
	id, err := parseTaskID("42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseTaskID("0")
	assert.Error(t, err)
	_, err = parseTaskID("abc")
	assert.Error(t, err)
}
