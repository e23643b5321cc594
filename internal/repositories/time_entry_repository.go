package repositories

import (
	"context"
	"time"

	"chrona/internal/apperrors"
	"chrona/internal/models"
	"chrona/internal/store"
)

type TimeEntryRepository interface {
	Store(ctx context.Context, entry *models.TimeEntry) error
	FindByID(ctx context.Context, id string) (*models.TimeEntry, error)
	// FindAll lists entries newest start first.
	FindAll(ctx context.Context, filter models.TimeEntryFilter) ([]models.TimeEntry, error)
	// FindStartedBetween returns every entry whose start lies in [from, to], regardless of owner.
	FindStartedBetween(ctx context.Context, from, to time.Time) ([]models.TimeEntry, error)
	ExistsForTask(ctx context.Context, taskID string) (bool, error)
	Update(ctx context.Context, id string, patch models.TimeEntryUpdate) error
	Delete(ctx context.Context, id string) error
}

type timeEntryRepository struct {
	db store.Store
}

func NewTimeEntryRepository(db store.Store) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

func (r *timeEntryRepository) Store(ctx context.Context, entry *models.TimeEntry) error {
	id, err := r.db.Create(ctx, store.CollectionTimeEntries, TimeEntryToFields(entry))
	if err != nil {
		return apperrors.Upstream(err, "create time entry")
	}
	entry.ID = id
	return nil
}

func (r *timeEntryRepository) FindByID(ctx context.Context, id string) (*models.TimeEntry, error) {
	doc, err := r.db.Get(ctx, store.CollectionTimeEntries, id)
	if err != nil {
		return nil, storeErr(err, "time entry", id)
	}
	return TimeEntryFromDocument(*doc)
}

func (r *timeEntryRepository) decodeAll(docs []store.Document) ([]models.TimeEntry, error) {
	entries := make([]models.TimeEntry, 0, len(docs))
	for _, d := range docs {
		e, err := TimeEntryFromDocument(d)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

func (r *timeEntryRepository) FindAll(ctx context.Context, filter models.TimeEntryFilter) ([]models.TimeEntry, error) {
	q := store.From(store.CollectionTimeEntries)
	if filter.OwnerID != nil {
		q = q.Where(fieldOwnerID, store.OpEqual, *filter.OwnerID)
	}
	if filter.TaskID != nil {
		q = q.Where(fieldTaskID, store.OpEqual, *filter.TaskID)
	}
	q = q.OrderBy(fieldStartTime, store.Descending).Limit(filter.Limit).Offset(filter.Offset)
	docs, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, apperrors.Upstream(err, "list time entries")
	}
	return r.decodeAll(docs)
}

func (r *timeEntryRepository) FindStartedBetween(ctx context.Context, from, to time.Time) ([]models.TimeEntry, error) {
	docs, err := r.db.Query(ctx, store.From(store.CollectionTimeEntries).
		Where(fieldStartTime, store.OpGreaterOrEqual, from).
		Where(fieldStartTime, store.OpLessOrEqual, to))
	if err != nil {
		return nil, apperrors.Upstream(err, "query time entries by start")
	}
	return r.decodeAll(docs)
}

func (r *timeEntryRepository) ExistsForTask(ctx context.Context, taskID string) (bool, error) {
	docs, err := r.db.Query(ctx, store.From(store.CollectionTimeEntries).
		Where(fieldTaskID, store.OpEqual, taskID).
		Limit(1))
	if err != nil {
		return false, apperrors.Upstream(err, "query time entries of task %s", taskID)
	}
	return len(docs) > 0, nil
}

func (r *timeEntryRepository) Update(ctx context.Context, id string, patch models.TimeEntryUpdate) error {
	fields := map[string]any{}
	if patch.EndTime != nil {
		fields[fieldEndTime] = models.Naive(*patch.EndTime)
	}
	if patch.Duration != nil {
		fields[fieldDuration] = *patch.Duration
	}
	if patch.Notes != nil {
		fields[fieldNotes] = *patch.Notes
	}
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.Update(ctx, store.CollectionTimeEntries, id, fields); err != nil {
		return storeErr(err, "time entry", id)
	}
	return nil
}

func (r *timeEntryRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.Delete(ctx, store.CollectionTimeEntries, id); err != nil {
		return storeErr(err, "time entry", id)
	}
	return nil
}
