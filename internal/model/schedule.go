package model

import "time"

// ShiftPosition is a post code a shift can be scheduled on.  The set
// matches the schedules.position enum.
type ShiftPosition string

// ShiftPositions lists every schedulable post.  PD exists as a position
// but is never scheduled as a shift.
var ShiftPositions = []ShiftPosition{
	"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8",
	"PW", "PW2",
	"WR", "WR2", "WR3",
	"WS", "WS2",
	"SR",
	"K1", "K2",
	"TGT", "TG",
	"PTG", "PTG2",
	"OTG", "OTG2",
	"BT",
}

// ValidShiftPosition reports whether p is a schedulable post.
func ValidShiftPosition(p string) bool {
	for _, sp := range ShiftPositions {
		if string(sp) == p {
			return true
		}
	}
	return false
}

// ScheduleStatus mirrors schedules.status.
type ScheduleStatus string

const (
	StatusScheduled   ScheduleStatus = "scheduled"
	StatusCompleted   ScheduleStatus = "completed"
	StatusCancelled   ScheduleStatus = "cancelled"
	StatusVacation    ScheduleStatus = "vacation"
	StatusUnavailable ScheduleStatus = "unavailable"
)

// ParseScheduleStatus maps a status name onto the enum.
func ParseScheduleStatus(s string) (ScheduleStatus, bool) {
	switch ScheduleStatus(s) {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusVacation, StatusUnavailable:
		return ScheduleStatus(s), true
	}
	return "", false
}

// Schedule is a single shift assigned to an employee.
//
// Fields:
//
//	UserID      – employee the shift belongs to.
//	Date        – day of the shift (YYYY-MM-DD).
//	Position    – post code, see ShiftPositions.
//	ShiftStart  – HH:MM.
//	ShiftEnd    – HH:MM; earlier than ShiftStart means the shift ends the next day.
//	HoursWorked – whole hours, computed from start and end.
//	HourlyRate  – rate applied to the shift, copied from the user when omitted.
type Schedule struct {
	ID          uint64         `json:"id"`
	UserID      uint64         `json:"user_id"`
	Date        string         `json:"date"`
	Position    ShiftPosition  `json:"position"`
	ShiftStart  string         `json:"shift_start"`
	ShiftEnd    string         `json:"shift_end"`
	HoursWorked *uint16        `json:"hours_worked"`
	Status      ScheduleStatus `json:"status"`
	HourlyRate  Decimal        `json:"hourly_rate"`
	Notes       *string        `json:"notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
