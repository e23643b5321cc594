package services

import (
	"context"
	"time"

	"chrona/internal/authz"
	"chrona/internal/models"
	"chrona/internal/repositories"
)

// StatsService sums closed time entries per task over a day or an ISO week.
type StatsService interface {
	// Daily aggregates the calendar day containing day; a zero day means today.
	Daily(ctx context.Context, actor authz.Actor, day time.Time) (*models.DailyStats, error)
	// Weekly aggregates the Monday..Sunday week containing day; a zero day means today.
	Weekly(ctx context.Context, actor authz.Actor, day time.Time) (*models.WeeklyStats, error)
}

type statsService struct {
	entries repositories.TimeEntryRepository
	tasks   repositories.TaskRepository
	now     func() time.Time
}

func NewStatsService(entries repositories.TimeEntryRepository, tasks repositories.TaskRepository, now func() time.Time) StatsService {
	if now == nil {
		now = time.Now
	}
	return &statsService{entries: entries, tasks: tasks, now: now}
}

// taskTotals accumulates durations per task in first-seen order.
type taskTotals struct {
	lookup *taskLookup
	order  []string
	byID   map[string]*models.TaskDuration
}

func newTaskTotals(lookup *taskLookup) *taskTotals {
	return &taskTotals{lookup: lookup, byID: map[string]*models.TaskDuration{}}
}

func (t *taskTotals) add(ctx context.Context, taskID string, minutes float64) error {
	if td, ok := t.byID[taskID]; ok {
		td.Duration += minutes
		return nil
	}
	name, err := t.lookup.name(ctx, taskID)
	if err != nil {
		return err
	}
	t.byID[taskID] = &models.TaskDuration{TaskID: taskID, TaskName: name, Duration: minutes}
	t.order = append(t.order, taskID)
	return nil
}

func (t *taskTotals) list() []models.TaskDuration {
	out := make([]models.TaskDuration, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.byID[id])
	}
	return out
}

func (s *statsService) day(day time.Time) time.Time {
	if day.IsZero() {
		day = s.now()
	}
	return models.StartOfDay(models.Naive(day))
}

// ownedClosed fetches entries started in [from, to) and keeps the actor's closed ones.
// The store cannot combine the range with an owner filter, so ownership is checked here.
func (s *statsService) ownedClosed(ctx context.Context, actor authz.Actor, from, to time.Time) ([]models.TimeEntry, error) {
	entries, err := s.entries.FindStartedBetween(ctx, from, to.Add(-time.Nanosecond))
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Duration == nil || !authz.Visible(actor, e.OwnerID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *statsService) Daily(ctx context.Context, actor authz.Actor, day time.Time) (*models.DailyStats, error) {
	if err := authz.Check(actor, nil, authz.OpStats); err != nil {
		return nil, err
	}
	start := s.day(day)
	entries, err := s.ownedClosed(ctx, actor, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	total := 0.0
	tasks := newTaskTotals(newTaskLookup(s.tasks))
	for _, e := range entries {
		total += *e.Duration
		if err := tasks.add(ctx, e.TaskID, *e.Duration); err != nil {
			return nil, err
		}
	}
	return &models.DailyStats{
		Date:          start.Format(models.DateLayout),
		TotalDuration: total,
		Tasks:         tasks.list(),
	}, nil
}

func (s *statsService) Weekly(ctx context.Context, actor authz.Actor, day time.Time) (*models.WeeklyStats, error) {
	if err := authz.Check(actor, nil, authz.OpStats); err != nil {
		return nil, err
	}
	today := s.day(day)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	weekEnd := weekStart.AddDate(0, 0, 6)

	entries, err := s.ownedClosed(ctx, actor, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}

	daily := make([]models.DayDuration, 7)
	dayIndex := make(map[string]int, 7)
	for i := range daily {
		date := weekStart.AddDate(0, 0, i).Format(models.DateLayout)
		daily[i] = models.DayDuration{Date: date}
		dayIndex[date] = i
	}

	total := 0.0
	tasks := newTaskTotals(newTaskLookup(s.tasks))
	for _, e := range entries {
		total += *e.Duration
		if i, ok := dayIndex[e.StartTime.Format(models.DateLayout)]; ok {
			daily[i].Duration += *e.Duration
		}
		if err := tasks.add(ctx, e.TaskID, *e.Duration); err != nil {
			return nil, err
		}
	}
	return &models.WeeklyStats{
		WeekStart:      weekStart.Format(models.DateLayout),
		WeekEnd:        weekEnd.Format(models.DateLayout),
		TotalDuration:  total,
		DailyBreakdown: daily,
		TaskBreakdown:  tasks.list(),
	}, nil
}
