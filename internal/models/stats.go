package models

// TaskDuration is the time booked against one task inside an aggregate window.
type TaskDuration struct {
	TaskID   string  `json:"task_id"`
	TaskName string  `json:"task_name"`
	Duration float64 `json:"duration"`
}

type DayDuration struct {
	Date     string  `json:"date"`
	Duration float64 `json:"duration"`
}

type DailyStats struct {
	Date          string         `json:"date"`
	TotalDuration float64        `json:"total_duration"`
	Tasks         []TaskDuration `json:"tasks"`
}

type WeeklyStats struct {
	WeekStart      string         `json:"week_start"`
	WeekEnd        string         `json:"week_end"`
	TotalDuration  float64        `json:"total_duration"`
	DailyBreakdown []DayDuration  `json:"daily_breakdown"`
	TaskBreakdown  []TaskDuration `json:"task_breakdown"`
}
