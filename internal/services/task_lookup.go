package services

import (
	"context"

	"chrona/internal/apperrors"
	"chrona/internal/models"
	"chrona/internal/repositories"
)

const unknownTaskName = "Unknown"

// taskLookup resolves task ids once per call. Missing tasks resolve to nil.
type taskLookup struct {
	repo  repositories.TaskRepository
	cache map[string]*models.Task
}

func newTaskLookup(repo repositories.TaskRepository) *taskLookup {
	return &taskLookup{repo: repo, cache: map[string]*models.Task{}}
}

func (l *taskLookup) get(ctx context.Context, id string) (*models.Task, error) {
	if t, ok := l.cache[id]; ok {
		return t, nil
	}
	t, err := l.repo.FindByID(ctx, id)
	if err != nil {
		if !apperrors.Is(err, apperrors.KindNotFound) {
			return nil, err
		}
		t = nil
	}
	l.cache[id] = t
	return t, nil
}

func (l *taskLookup) name(ctx context.Context, id string) (string, error) {
	t, err := l.get(ctx, id)
	if err != nil {
		return "", err
	}
	if t == nil {
		return unknownTaskName, nil
	}
	return t.Name, nil
}
