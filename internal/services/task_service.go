// internal/services/task_service.go
package services

import (
	"context"
	"strings"
	"time"

	"chrona/internal/apperrors"
	"chrona/internal/authz"
	"chrona/internal/models"
	"chrona/internal/repositories"
)

// TaskService defines the interface for task-related business logic.
type TaskService interface {
	Create(ctx context.Context, actor authz.Actor, in models.TaskCreate) (*models.Task, error)
	GetByID(ctx context.Context, actor authz.Actor, id string) (*models.Task, error)
	GetAll(ctx context.Context, actor authz.Actor, skip, limit int) ([]models.Task, error)
	GetByName(ctx context.Context, actor authz.Actor, name string) (*models.Task, error)
	Delete(ctx context.Context, actor authz.Actor, id string) error
}

type taskService struct {
	repo    repositories.TaskRepository
	entries repositories.TimeEntryRepository
	now     func() time.Time
}

// NewTaskService creates a new instance of TaskService. A nil clock means time.Now.
func NewTaskService(repo repositories.TaskRepository, entries repositories.TimeEntryRepository, now func() time.Time) TaskService {
	if now == nil {
		now = time.Now
	}
	return &taskService{repo: repo, entries: entries, now: now}
}

func (s *taskService) Create(ctx context.Context, actor authz.Actor, in models.TaskCreate) (*models.Task, error) {
	if err := authz.Check(actor, nil, authz.OpCreate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("task name is required")
	}
	owner := actor.UserID
	task := &models.Task{
		Name:        name,
		Description: in.Description,
		OwnerID:     &owner,
		CreatedAt:   models.NewLocalTime(s.now()),
	}
	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, actor authz.Actor, id string) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(actor, task.OwnerID, authz.OpRead); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetAll(ctx context.Context, actor authz.Actor, skip, limit int) ([]models.Task, error) {
	skip, limit, err := normalizePage(skip, limit)
	if err != nil {
		return nil, err
	}
	filter := models.TaskFilter{Limit: limit, Offset: skip}
	if owner, ok := authz.ListScope(actor); ok {
		filter.OwnerID = &owner
	}
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) GetByName(ctx context.Context, actor authz.Actor, name string) (*models.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("task name is required")
	}
	filter := models.TaskFilter{Name: &name, Limit: 1}
	if owner, ok := authz.ListScope(actor); ok {
		filter.OwnerID = &owner
	}
	tasks, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, apperrors.NotFound("task named %q not found", name)
	}
	return &tasks[0], nil
}

// Delete refuses to remove a task that still has time entries; callers delete those first.
func (s *taskService) Delete(ctx context.Context, actor authz.Actor, id string) error {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Check(actor, task.OwnerID, authz.OpDelete); err != nil {
		return err
	}
	inUse, err := s.entries.ExistsForTask(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperrors.Conflict("cannot delete task with ID %s because it has associated time entries; delete these entries first", id)
	}
	return s.repo.Delete(ctx, id)
}
