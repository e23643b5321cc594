// internal/models/task.go
package models

// Task is a named bucket that time entries are booked against.
type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     *string   `json:"owner_id"`
	CreatedAt   LocalTime `json:"created_at"`
}

// TaskFilter defines the available parameters for listing tasks.
type TaskFilter struct {
	OwnerID *string
	Name    *string
	Limit   int
	Offset  int
}

type TaskCreate struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}
