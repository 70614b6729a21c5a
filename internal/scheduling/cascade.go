package scheduling

import (
	"sort"

	"task-planner/internal/domain"
)

// Move is a start-time reassignment produced by a cascade
type Move struct {
	TaskID   int64
	Title    string
	OldStart domain.MinuteOfDay
	NewStart domain.MinuteOfDay
}

// CascadeResult is the outcome of a cascade computation. Overflow holds the
// tasks that could not fit before the end-of-day boundary. They are never
// moved silently; pushing into overtime, moving to another day or leaving
// them alone is an explicit caller decision.
type CascadeResult struct {
	Moves    []Move
	Overflow []*domain.TaskRef
}

// CascadePlan recomputes start times for the same-day tasks following the
// anchor, so that none overlaps and every pair keeps at least gapMinutes
// between them. The walk stops at the first task that needs no move: once
// the chain is decongested nothing after it can be congested either.
func CascadePlan(tasks []*domain.TaskRef, anchorID int64, anchorEnd domain.MinuteOfDay, gapMinutes int, dayEnd domain.MinuteOfDay) CascadeResult {
	ordered := scheduledByStart(tasks)

	anchorIdx := -1
	for i, task := range ordered {
		if task.ID == anchorID {
			anchorIdx = i
			break
		}
	}
	if anchorIdx < 0 {
		return CascadeResult{}
	}

	gap := domain.MinuteOfDay(gapMinutes)
	previousEnd := anchorEnd

	var result CascadeResult
	for _, task := range ordered[anchorIdx+1:] {
		start := *task.DueMinute
		if start >= previousEnd+gap {
			break
		}

		newStart := previousEnd + gap
		if newStart >= dayEnd {
			// Overflow candidates keep advancing the hypothetical chain so
			// every task behind them is reported too.
			result.Overflow = append(result.Overflow, task)
			previousEnd = newStart + domain.MinuteOfDay(task.EstimateMinutes)
			continue
		}

		result.Moves = append(result.Moves, Move{
			TaskID:   task.ID,
			Title:    task.Title,
			OldStart: start,
			NewStart: newStart,
		})
		previousEnd = newStart + domain.MinuteOfDay(task.EstimateMinutes)
	}

	return result
}

// scheduledByStart filters to non-completed tasks with an explicit start
// time, sorted by start time ascending
func scheduledByStart(tasks []*domain.TaskRef) []*domain.TaskRef {
	ordered := make([]*domain.TaskRef, 0, len(tasks))
	for _, task := range tasks {
		if task.Completed || !task.IsScheduled() {
			continue
		}
		ordered = append(ordered, task)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return *ordered[i].DueMinute < *ordered[j].DueMinute
	})
	return ordered
}
