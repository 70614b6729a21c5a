package scheduling

import (
	"time"
)

// OverrunLevel classifies accumulated time against a task's estimate
type OverrunLevel int

const (
	// OverrunNone means the task is still within its soft threshold
	OverrunNone OverrunLevel = iota
	// OverrunSoft means accumulated time reached the warning ratio of the
	// estimate (80% by default)
	OverrunSoft
	// OverrunHard means the estimate is fully consumed; a cascade
	// computation is due
	OverrunHard
)

// String returns the string representation of the overrun level
func (l OverrunLevel) String() string {
	switch l {
	case OverrunSoft:
		return "soft"
	case OverrunHard:
		return "hard"
	default:
		return "none"
	}
}

// ClassifyOverrun compares elapsed work time against the estimate
func ClassifyOverrun(elapsed time.Duration, estimateMinutes int, warnRatio float64) OverrunLevel {
	if estimateMinutes <= 0 {
		return OverrunNone
	}
	estimate := time.Duration(estimateMinutes) * time.Minute
	if elapsed >= estimate {
		return OverrunHard
	}
	if elapsed >= time.Duration(float64(estimate)*warnRatio) {
		return OverrunSoft
	}
	return OverrunNone
}
