package models

import "time"

// TimeEntry is one tracked interval. It is open while EndTime and Duration are nil
// and closed once both are set.
type TimeEntry struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"task_id"`
	OwnerID   *string    `json:"owner_id"`
	StartTime LocalTime  `json:"start_time"`
	EndTime   *LocalTime `json:"end_time"`
	Duration  *float64   `json:"duration"` // minutes
	Notes     string     `json:"notes"`
	CreatedAt LocalTime  `json:"created_at"`

	// Task is resolved on read and never stored.
	Task *Task `json:"task,omitempty"`
}

func (e *TimeEntry) IsOpen() bool {
	return e.EndTime == nil && e.Duration == nil
}

type TimeEntryFilter struct {
	OwnerID *string
	TaskID  *string
	Limit   int
	Offset  int
}

type TimeEntryCreate struct {
	TaskID    string
	StartTime time.Time
	EndTime   *time.Time
	Duration  *float64
	Notes     *string
}

// TimeEntryUpdate is a partial update; nil fields are left untouched.
type TimeEntryUpdate struct {
	EndTime  *time.Time
	Duration *float64
	Notes    *string
}
