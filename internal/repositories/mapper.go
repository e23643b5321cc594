package repositories

import (
	"errors"
	"fmt"
	"time"

	"chrona/internal/apperrors"
	"chrona/internal/models"
	"chrona/internal/store"
)

// Field names as stored in the document store.
const (
	fieldName               = "name"
	fieldDescription        = "description"
	fieldOwnerID            = "owner_id"
	fieldCreatedAt          = "created_at"
	fieldTaskID             = "task_id"
	fieldStartTime          = "start_time"
	fieldEndTime            = "end_time"
	fieldDuration           = "duration"
	fieldNotes              = "notes"
	fieldEmail              = "email"
	fieldExternalIdentityID = "external_identity_id"
	fieldPasswordHash       = "password_hash"
)

func storeErr(err error, what, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("%s with ID %s not found", what, id)
	}
	return apperrors.Upstream(err, "%s %s", what, id)
}

func getString(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func getStringPtr(fields map[string]any, key string) *string {
	s, ok := fields[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func getTime(fields map[string]any, key string) (time.Time, error) {
	switch v := fields[key].(type) {
	case time.Time:
		return models.Naive(v), nil
	case string:
		if t, err := time.ParseInLocation(store.TimeLayout, v, time.UTC); err == nil {
			return t, nil
		}
		return models.ParseLocalTime(v)
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("field %s: unexpected type %T", key, v)
	}
}

func getTimePtr(fields map[string]any, key string) (*models.LocalTime, error) {
	if fields[key] == nil {
		return nil, nil
	}
	t, err := getTime(fields, key)
	if err != nil {
		return nil, err
	}
	return &models.LocalTime{Time: t}, nil
}

func getFloatPtr(fields map[string]any, key string) *float64 {
	switch v := fields[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	}
	return nil
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func timeOrNil(t *models.LocalTime) any {
	if t == nil {
		return nil
	}
	return t.Time
}

func TaskToFields(t *models.Task) map[string]any {
	return map[string]any{
		fieldName:        t.Name,
		fieldDescription: t.Description,
		fieldOwnerID:     stringOrNil(t.OwnerID),
		fieldCreatedAt:   t.CreatedAt.Time,
	}
}

func TaskFromDocument(doc store.Document) (*models.Task, error) {
	created, err := getTime(doc.Fields, fieldCreatedAt)
	if err != nil {
		return nil, apperrors.Upstream(err, "decode task %s", doc.ID)
	}
	return &models.Task{
		ID:          doc.ID,
		Name:        getString(doc.Fields, fieldName),
		Description: getString(doc.Fields, fieldDescription),
		OwnerID:     getStringPtr(doc.Fields, fieldOwnerID),
		CreatedAt:   models.LocalTime{Time: created},
	}, nil
}

func TimeEntryToFields(e *models.TimeEntry) map[string]any {
	return map[string]any{
		fieldTaskID:    e.TaskID,
		fieldOwnerID:   stringOrNil(e.OwnerID),
		fieldStartTime: e.StartTime.Time,
		fieldEndTime:   timeOrNil(e.EndTime),
		fieldDuration:  floatOrNil(e.Duration),
		fieldNotes:     e.Notes,
		fieldCreatedAt: e.CreatedAt.Time,
	}
}

func TimeEntryFromDocument(doc store.Document) (*models.TimeEntry, error) {
	start, err := getTime(doc.Fields, fieldStartTime)
	if err != nil {
		return nil, apperrors.Upstream(err, "decode time entry %s", doc.ID)
	}
	end, err := getTimePtr(doc.Fields, fieldEndTime)
	if err != nil {
		return nil, apperrors.Upstream(err, "decode time entry %s", doc.ID)
	}
	created, err := getTime(doc.Fields, fieldCreatedAt)
	if err != nil {
		return nil, apperrors.Upstream(err, "decode time entry %s", doc.ID)
	}
	return &models.TimeEntry{
		ID:        doc.ID,
		TaskID:    getString(doc.Fields, fieldTaskID),
		OwnerID:   getStringPtr(doc.Fields, fieldOwnerID),
		StartTime: models.LocalTime{Time: start},
		EndTime:   end,
		Duration:  getFloatPtr(doc.Fields, fieldDuration),
		Notes:     getString(doc.Fields, fieldNotes),
		CreatedAt: models.LocalTime{Time: created},
	}, nil
}

func UserToFields(u *models.User) map[string]any {
	return map[string]any{
		fieldEmail:              u.Email,
		fieldName:               u.Name,
		fieldExternalIdentityID: u.ExternalIdentityID,
		fieldPasswordHash:       u.PasswordHash,
		fieldCreatedAt:          u.CreatedAt.Time,
	}
}

func UserFromDocument(doc store.Document) (*models.User, error) {
	created, err := getTime(doc.Fields, fieldCreatedAt)
	if err != nil {
		return nil, apperrors.Upstream(err, "decode user %s", doc.ID)
	}
	return &models.User{
		ID:                 doc.ID,
		Email:              getString(doc.Fields, fieldEmail),
		Name:               getString(doc.Fields, fieldName),
		ExternalIdentityID: getString(doc.Fields, fieldExternalIdentityID),
		PasswordHash:       getString(doc.Fields, fieldPasswordHash),
		CreatedAt:          models.LocalTime{Time: created},
	}, nil
}
