package statestore

import (
	"encoding/json"
	"strconv"
	"strings"

	"task-planner/internal/domain"
)

// Persisted records decode leniently: a malformed value is treated as
// absent, never surfaced as an error. This keeps the engine self-healing
// against corrupted local state.

// EncodeTimer serializes a timer record
func EncodeTimer(record domain.TimerRecord) []byte {
	data, _ := json.Marshal(record)
	return data
}

// DecodeTimer deserializes a timer record; malformed input reads as absent
func DecodeTimer(data []byte) (domain.TimerRecord, bool) {
	var record domain.TimerRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.TimerRecord{}, false
	}
	if !record.IsValid() {
		return domain.TimerRecord{}, false
	}
	return record, true
}

// EncodeDayOrder serializes a day order
func EncodeDayOrder(order domain.DayOrder) []byte {
	data, _ := json.Marshal(order)
	return data
}

// DecodeDayOrder deserializes a day order; malformed input reads as absent
func DecodeDayOrder(data []byte) (domain.DayOrder, bool) {
	var order domain.DayOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return domain.DayOrder{}, false
	}
	return order, true
}

// EncodeIdleLog serializes a day's idle periods
func EncodeIdleLog(periods []domain.IdlePeriod) []byte {
	data, _ := json.Marshal(periods)
	return data
}

// DecodeIdleLog deserializes a day's idle periods; malformed input reads as
// an empty log
func DecodeIdleLog(data []byte) []domain.IdlePeriod {
	var periods []domain.IdlePeriod
	if err := json.Unmarshal(data, &periods); err != nil {
		return nil
	}
	return periods
}

// EncodeActiveTimer serializes the active timer pointer
func EncodeActiveTimer(taskID int64) []byte {
	return []byte(strconv.FormatInt(taskID, 10))
}

// DecodeActiveTimer deserializes the active timer pointer
func DecodeActiveTimer(data []byte) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
