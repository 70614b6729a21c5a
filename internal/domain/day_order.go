package domain

// DayOrder is the manual sort order of tasks within one calendar day.
// Created lazily when a day is first ordered; removed by the retention
// sweep once the day is old enough.
type DayOrder struct {
	Date    string  `json:"date"`
	TaskIDs []int64 `json:"task_ids"`
}

// NewDayOrder creates an order for the given date key.
func NewDayOrder(date string, taskIDs []int64) DayOrder {
	return DayOrder{
		Date:    date,
		TaskIDs: taskIDs,
	}
}

// Position returns the index of a task in the manual order, or -1 when the
// task is not part of it.
func (o DayOrder) Position(taskID int64) int {
	for i, id := range o.TaskIDs {
		if id == taskID {
			return i
		}
	}
	return -1
}

// Remove returns a copy of the order without the given task.
func (o DayOrder) Remove(taskID int64) DayOrder {
	ids := make([]int64, 0, len(o.TaskIDs))
	for _, id := range o.TaskIDs {
		if id != taskID {
			ids = append(ids, id)
		}
	}
	return DayOrder{Date: o.Date, TaskIDs: ids}
}

// Append returns a copy of the order with the task appended, ignoring
// duplicates.
func (o DayOrder) Append(taskID int64) DayOrder {
	if o.Position(taskID) >= 0 {
		return o
	}
	ids := make([]int64, 0, len(o.TaskIDs)+1)
	ids = append(ids, o.TaskIDs...)
	ids = append(ids, taskID)
	return DayOrder{Date: o.Date, TaskIDs: ids}
}
