package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chrona/internal/authz"
	"chrona/internal/models"
	"chrona/internal/repositories"
	"chrona/internal/store"
)

type testEnv struct {
	store   *store.MemoryStore
	tasks   TaskService
	entries TimeEntryService
	stats   StatsService
	now     time.Time
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	db := store.NewMemoryStore()
	taskRepo := repositories.NewTaskRepository(db)
	entryRepo := repositories.NewTimeEntryRepository(db)
	clock := func() time.Time { return now }
	return &testEnv{
		store:   db,
		tasks:   NewTaskService(taskRepo, entryRepo, clock),
		entries: NewTimeEntryService(entryRepo, taskRepo, clock),
		stats:   NewStatsService(entryRepo, taskRepo, clock),
		now:     now,
	}
}

func (e *testEnv) createTask(t *testing.T, actor authz.Actor, name string) *models.Task {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), actor, models.TaskCreate{Name: name})
	require.NoError(t, err)
	return task
}

// closedEntry creates an entry starting at start and closes it after minutes.
func (e *testEnv) closedEntry(t *testing.T, actor authz.Actor, taskID string, start time.Time, minutes float64) *models.TimeEntry {
	t.Helper()
	entry, err := e.entries.Create(context.Background(), actor, models.TimeEntryCreate{
		TaskID:    taskID,
		StartTime: start,
		Duration:  &minutes,
	})
	require.NoError(t, err)
	return entry
}

// legacyTask inserts a task without an owner, as older clients did.
func (e *testEnv) legacyTask(t *testing.T, name string) string {
	t.Helper()
	id, err := e.store.Create(context.Background(), store.CollectionTasks, map[string]any{
		"name":        name,
		"description": "",
		"owner_id":    nil,
		"created_at":  e.now,
	})
	require.NoError(t, err)
	return id
}

func (e *testEnv) legacyEntry(t *testing.T, taskID string, start time.Time) string {
	t.Helper()
	id, err := e.store.Create(context.Background(), store.CollectionTimeEntries, map[string]any{
		"task_id":    taskID,
		"owner_id":   nil,
		"start_time": start,
		"end_time":   nil,
		"duration":   nil,
		"notes":      "",
		"created_at": e.now,
	})
	require.NoError(t, err)
	return id
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC)
}

func f64(v float64) *float64 { return &v }

func str(v string) *string { return &v }
