package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/domain"
)

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

func TestCascadePlan_PushesCongestedFollowers(t *testing.T) {
	day := workday()
	tasks := []*domain.TaskRef{
		scheduledTask(1, "Design review", day, 560, 45), // 09:20, interrupted
		scheduledTask(2, "Write report", day, 600, 60),  // 10:00
		scheduledTask(3, "Email triage", day, 665, 30),  // 11:05
	}

	// The anchor now effectively ends at 10:05; with a 5 minute gap the
	// 10:00 task moves to 10:10, which in turn pushes the 11:05 task.
	result := CascadePlan(tasks, 1, 605, 5, 1050)

	require.Len(t, result.Moves, 2)
	assert.Equal(t, int64(2), result.Moves[0].TaskID)
	assert.Equal(t, "10:00", result.Moves[0].OldStart.String())
	assert.Equal(t, "10:10", result.Moves[0].NewStart.String())

	assert.Equal(t, int64(3), result.Moves[1].TaskID)
	assert.Equal(t, "11:15", result.Moves[1].NewStart.String())
	assert.Empty(t, result.Overflow)
}

func TestCascadePlan_StopsAtFirstDecongestedTask(t *testing.T) {
	day := workday()
	tasks := []*domain.TaskRef{
		scheduledTask(1, "Anchor", day, 540, 30),
		scheduledTask(2, "Close follower", day, 575, 30), // 09:35, must move
		scheduledTask(3, "Afternoon task", day, 900, 30), // 15:00, untouched
	}

	result := CascadePlan(tasks, 1, 590, 5, 1050)

	require.Len(t, result.Moves, 1)
	assert.Equal(t, int64(2), result.Moves[0].TaskID)
	assert.Equal(t, "09:55", result.Moves[0].NewStart.String())
}

func TestCascadePlan_ReportsOverflowChain(t *testing.T) {
	day := workday()
	tasks := []*domain.TaskRef{
		scheduledTask(1, "Anchor", day, 960, 60),     // 16:00
		scheduledTask(2, "Follower A", day, 1000, 30), // 16:40
		scheduledTask(3, "Follower B", day, 1020, 20), // 17:00
	}

	// The anchor runs to 17:25; both followers would start at or past the
	// 17:30 day end and neither may be written there silently.
	result := CascadePlan(tasks, 1, 1045, 5, 1050)

	assert.Empty(t, result.Moves)
	require.Len(t, result.Overflow, 2)
	assert.Equal(t, int64(2), result.Overflow[0].ID)
	assert.Equal(t, int64(3), result.Overflow[1].ID)
}

func TestCascadePlan_IgnoresCompletedAndUnscheduledTasks(t *testing.T) {
	day := workday()
	done := scheduledTask(2, "Done already", day, 600, 30)
	done.Completed = true
	unscheduled := &domain.TaskRef{ID: 3, Title: "Someday", EstimateMinutes: 60, Priority: domain.PriorityNormal}

	tasks := []*domain.TaskRef{
		scheduledTask(1, "Anchor", day, 540, 30),
		done,
		unscheduled,
		scheduledTask(4, "Real follower", day, 580, 30), // 09:40
	}

	result := CascadePlan(tasks, 1, 600, 5, 1050)

	require.Len(t, result.Moves, 1)
	assert.Equal(t, int64(4), result.Moves[0].TaskID)
	assert.Equal(t, "10:05", result.Moves[0].NewStart.String())
}

func TestCascadePlan_UnknownAnchorIsNoOp(t *testing.T) {
	day := workday()
	tasks := []*domain.TaskRef{
		scheduledTask(1, "Only task", day, 540, 30),
	}

	result := CascadePlan(tasks, 99, 600, 5, 1050)
	assert.Empty(t, result.Moves)
	assert.Empty(t, result.Overflow)
}

func TestClassifyOverrun(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  int // minutes
		estimate int
		expected OverrunLevel
	}{
		{name: "should be none well under estimate", elapsed: 30, estimate: 60, expected: OverrunNone},
		{name: "should warn at the soft threshold", elapsed: 48, estimate: 60, expected: OverrunSoft},
		{name: "should stay soft just under the estimate", elapsed: 59, estimate: 60, expected: OverrunSoft},
		{name: "should be hard at the estimate", elapsed: 60, estimate: 60, expected: OverrunHard},
		{name: "should be hard past the estimate", elapsed: 90, estimate: 60, expected: OverrunHard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := ClassifyOverrun(minutes(tt.elapsed), tt.estimate, 0.8)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestClassifyOverrun_NoEstimateNeverFires(t *testing.T) {
	assert.Equal(t, OverrunNone, ClassifyOverrun(minutes(500), 0, 0.8))
}
