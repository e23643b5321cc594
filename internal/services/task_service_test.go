package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chrona/internal/apperrors"
	"chrona/internal/authz"
	"chrona/internal/models"
)

func TestTaskService_Create(t *testing.T) {
	env := newTestEnv(t, at(1, 8, 0))
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, authz.User("alice"), models.TaskCreate{Name: "  Writing "})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Writing", task.Name)
	assert.Equal(t, "", task.Description)
	require.NotNil(t, task.OwnerID)
	assert.Equal(t, "alice", *task.OwnerID)
	assert.Equal(t, at(1, 8, 0), task.CreatedAt.Time)

	_, err = env.tasks.Create(ctx, authz.User("alice"), models.TaskCreate{Name: "  "})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = env.tasks.Create(ctx, authz.Anonymous(), models.TaskCreate{Name: "Reading"})
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestTaskService_GetByID(t *testing.T) {
	env := newTestEnv(t, at(1, 8, 0))
	ctx := context.Background()
	task := env.createTask(t, authz.User("alice"), "Writing")

	got, err := env.tasks.GetByID(ctx, authz.User("alice"), task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, got)

	_, err = env.tasks.GetByID(ctx, authz.User("bob"), task.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	_, err = env.tasks.GetByID(ctx, authz.Anonymous(), task.ID)
	assert.NoError(t, err)

	_, err = env.tasks.GetByID(ctx, authz.User("alice"), "missing")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestTaskService_GetAllScopesByOwner(t *testing.T) {
	env := newTestEnv(t, at(1, 8, 0))
	ctx := context.Background()
	env.createTask(t, authz.User("alice"), "Writing")
	env.createTask(t, authz.User("alice"), "Reading")
	env.createTask(t, authz.User("bob"), "Cooking")
	env.legacyTask(t, "Legacy")

	mine, err := env.tasks.GetAll(ctx, authz.User("alice"), 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := env.tasks.GetAll(ctx, authz.Anonymous(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	page, err := env.tasks.GetAll(ctx, authz.Anonymous(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	_, err = env.tasks.GetAll(ctx, authz.Anonymous(), -1, 0)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestTaskService_GetByName(t *testing.T) {
	env := newTestEnv(t, at(1, 8, 0))
	ctx := context.Background()
	task := env.createTask(t, authz.User("alice"), "Writing")
	env.createTask(t, authz.User("bob"), "Writing")

	got, err := env.tasks.GetByName(ctx, authz.User("alice"), "Writing")
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = env.tasks.GetByName(ctx, authz.User("carol"), "Writing")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestTaskService_DeleteGuardedByEntries(t *testing.T) {
	env := newTestEnv(t, at(1, 12, 0))
	ctx := context.Background()
	alice := authz.User("alice")
	task := env.createTask(t, alice, "Writing")
	entry := env.closedEntry(t, alice, task.ID, at(1, 9, 0), 30)

	err := env.tasks.Delete(ctx, alice, task.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	_, err = env.tasks.GetByID(ctx, alice, task.ID)
	require.NoError(t, err, "task must survive a refused delete")

	require.NoError(t, env.entries.Delete(ctx, alice, entry.ID))
	require.NoError(t, env.tasks.Delete(ctx, alice, task.ID))

	_, err = env.tasks.GetByID(ctx, alice, task.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestTaskService_DeleteAccess(t *testing.T) {
	env := newTestEnv(t, at(1, 12, 0))
	ctx := context.Background()
	task := env.createTask(t, authz.User("alice"), "Writing")

	err := env.tasks.Delete(ctx, authz.User("bob"), task.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	err = env.tasks.Delete(ctx, authz.User("bob"), "missing")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	legacy := env.legacyTask(t, "Legacy")
	assert.NoError(t, env.tasks.Delete(ctx, authz.Anonymous(), legacy))
}
