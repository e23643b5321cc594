package repositories

import (
	"context"

	"chrona/internal/apperrors"
	"chrona/internal/models"
	"chrona/internal/store"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Delete(ctx context.Context, id string) error
}

type taskRepository struct {
	db store.Store
}

func NewTaskRepository(db store.Store) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	id, err := r.db.Create(ctx, store.CollectionTasks, TaskToFields(task))
	if err != nil {
		return apperrors.Upstream(err, "create task")
	}
	task.ID = id
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	doc, err := r.db.Get(ctx, store.CollectionTasks, id)
	if err != nil {
		return nil, storeErr(err, "task", id)
	}
	return TaskFromDocument(*doc)
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	q := store.From(store.CollectionTasks)
	if filter.OwnerID != nil {
		q = q.Where(fieldOwnerID, store.OpEqual, *filter.OwnerID)
	}
	if filter.Name != nil {
		q = q.Where(fieldName, store.OpEqual, *filter.Name)
	}
	docs, err := r.db.Query(ctx, q.Limit(filter.Limit).Offset(filter.Offset))
	if err != nil {
		return nil, apperrors.Upstream(err, "list tasks")
	}
	tasks := make([]models.Task, 0, len(docs))
	for _, d := range docs {
		t, err := TaskFromDocument(d)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.Delete(ctx, store.CollectionTasks, id); err != nil {
		return storeErr(err, "task", id)
	}
	return nil
}
