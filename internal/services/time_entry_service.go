package services

import (
	"context"
	"math"
	"strings"
	"time"

	"chrona/internal/apperrors"
	"chrona/internal/authz"
	"chrona/internal/models"
	"chrona/internal/repositories"
)

// TimeEntryService owns the open -> closed lifecycle of time entries.
type TimeEntryService interface {
	Create(ctx context.Context, actor authz.Actor, in models.TimeEntryCreate) (*models.TimeEntry, error)
	GetByID(ctx context.Context, actor authz.Actor, id string) (*models.TimeEntry, error)
	GetAll(ctx context.Context, actor authz.Actor, skip, limit int) ([]models.TimeEntry, error)
	Update(ctx context.Context, actor authz.Actor, id string, in models.TimeEntryUpdate) (*models.TimeEntry, error)
	Delete(ctx context.Context, actor authz.Actor, id string) error
}

type timeEntryService struct {
	repo  repositories.TimeEntryRepository
	tasks repositories.TaskRepository
	now   func() time.Time
}

func NewTimeEntryService(repo repositories.TimeEntryRepository, tasks repositories.TaskRepository, now func() time.Time) TimeEntryService {
	if now == nil {
		now = time.Now
	}
	return &timeEntryService{repo: repo, tasks: tasks, now: now}
}

// maxDurationMinutes is the longest duration a time.Duration can hold.
var maxDurationMinutes = float64(math.MaxInt64 / int64(time.Minute))

// closeFields fills in whichever of end/duration is missing so both are set or
// both are nil. Duration is trusted as given when both are supplied.
func closeFields(start time.Time, end *time.Time, duration *float64) (*time.Time, *float64, error) {
	if end == nil && duration == nil {
		return nil, nil, nil
	}
	if duration != nil {
		switch d := *duration; {
		case math.IsNaN(d) || math.IsInf(d, 0):
			return nil, nil, apperrors.Validation("duration must be a finite number of minutes")
		case d < 0:
			return nil, nil, apperrors.Validation("duration must not be negative")
		case d > maxDurationMinutes:
			return nil, nil, apperrors.Validation("duration %.0f minutes is out of range", d)
		}
	}
	if end != nil {
		e := models.Naive(*end)
		if e.Before(start) {
			return nil, nil, apperrors.Validation("end_time %s is before start_time %s",
				e.Format(models.LocalTimeLayout), start.Format(models.LocalTimeLayout))
		}
		end = &e
	}
	switch {
	case end == nil:
		e := start.Add(time.Duration(*duration * float64(time.Minute)))
		end = &e
	case duration == nil:
		d := end.Sub(start).Minutes()
		duration = &d
	}
	return end, duration, nil
}

func (s *timeEntryService) Create(ctx context.Context, actor authz.Actor, in models.TimeEntryCreate) (*models.TimeEntry, error) {
	if err := authz.Check(actor, nil, authz.OpCreate); err != nil {
		return nil, err
	}
	taskID := strings.TrimSpace(in.TaskID)
	if taskID == "" {
		return nil, apperrors.Validation("task_id is required")
	}
	if in.StartTime.IsZero() {
		return nil, apperrors.Validation("start_time is required")
	}
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(actor, task.OwnerID, authz.OpRead); err != nil {
		return nil, err
	}

	start := models.Naive(in.StartTime)
	end, duration, err := closeFields(start, in.EndTime, in.Duration)
	if err != nil {
		return nil, err
	}
	notes := ""
	if in.Notes != nil {
		notes = *in.Notes
	}
	owner := actor.UserID
	entry := &models.TimeEntry{
		TaskID:    taskID,
		OwnerID:   &owner,
		StartTime: models.LocalTime{Time: start},
		EndTime:   models.LocalTimePtr(end),
		Duration:  duration,
		Notes:     notes,
		CreatedAt: models.NewLocalTime(s.now()),
	}
	if err := s.repo.Store(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *timeEntryService) GetByID(ctx context.Context, actor authz.Actor, id string) (*models.TimeEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(actor, entry.OwnerID, authz.OpRead); err != nil {
		return nil, err
	}
	if entry.Task, err = newTaskLookup(s.tasks).get(ctx, entry.TaskID); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *timeEntryService) GetAll(ctx context.Context, actor authz.Actor, skip, limit int) ([]models.TimeEntry, error) {
	skip, limit, err := normalizePage(skip, limit)
	if err != nil {
		return nil, err
	}
	filter := models.TimeEntryFilter{Limit: limit, Offset: skip}
	if owner, ok := authz.ListScope(actor); ok {
		filter.OwnerID = &owner
	}
	entries, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	lookup := newTaskLookup(s.tasks)
	for i := range entries {
		if entries[i].Task, err = lookup.get(ctx, entries[i].TaskID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// Update applies only the supplied fields. Closing happens once: an entry that
// already has end_time and duration accepts notes only.
func (s *timeEntryService) Update(ctx context.Context, actor authz.Actor, id string, in models.TimeEntryUpdate) (*models.TimeEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(actor, entry.OwnerID, authz.OpUpdate); err != nil {
		return nil, err
	}

	patch := models.TimeEntryUpdate{Notes: in.Notes}
	if in.EndTime != nil || in.Duration != nil {
		if !entry.IsOpen() {
			return nil, apperrors.Conflict("time entry %s is already closed", id)
		}
		patch.EndTime, patch.Duration, err = closeFields(entry.StartTime.Time, in.EndTime, in.Duration)
		if err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *timeEntryService) Delete(ctx context.Context, actor authz.Actor, id string) error {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Check(actor, entry.OwnerID, authz.OpDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
