package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// timeField reads a time value back from any backend. JSONB-backed stores return
// the encoded string.
func timeField(t *testing.T, v any) time.Time {
	t.Helper()
	switch x := v.(type) {
	case time.Time:
		return x.UTC()
	case string:
		parsed, err := time.Parse(TimeLayout, x)
		require.NoError(t, err)
		return parsed
	}
	t.Fatalf("unexpected time value %T(%v)", v, v)
	return time.Time{}
}

func durations(docs []Document) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = d.Fields["duration"]
	}
	return out
}

// exerciseStore runs the same create/query/update/stream round trip against any Store.
// The tasks and time_entries collections must start empty.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	t.Run("crud", func(t *testing.T) {
		id, err := s.Create(ctx, CollectionTasks, map[string]any{"name": "Writing", "description": "", "owner_id": "u1"})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		require.NoError(t, s.Update(ctx, CollectionTasks, id, map[string]any{"description": "drafts"}))
		doc, err := s.Get(ctx, CollectionTasks, id)
		require.NoError(t, err)
		assert.Equal(t, id, doc.ID)
		assert.Equal(t, "Writing", doc.Fields["name"])
		assert.Equal(t, "drafts", doc.Fields["description"])
		assert.Equal(t, "u1", doc.Fields["owner_id"])

		require.NoError(t, s.Delete(ctx, CollectionTasks, id))
		_, err = s.Get(ctx, CollectionTasks, id)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Update(ctx, CollectionTasks, id, map[string]any{"name": "x"}), ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, CollectionTasks, id), ErrNotFound)
	})

	t.Run("query", func(t *testing.T) {
		for i, owner := range []any{"u1", "u2", "u1", nil} {
			_, err := s.Create(ctx, CollectionTimeEntries, map[string]any{
				"owner_id":   owner,
				"task_id":    "t1",
				"start_time": base.Add(time.Duration(i) * time.Hour),
				"duration":   30 * (i + 1),
			})
			require.NoError(t, err)
		}

		owned, err := s.Query(ctx, From(CollectionTimeEntries).Where("owner_id", OpEqual, "u1").OrderBy("start_time", Ascending))
		require.NoError(t, err)
		assert.Equal(t, []any{30.0, 90.0}, durations(owned))

		legacy, err := s.Query(ctx, From(CollectionTimeEntries).Where("owner_id", OpEqual, nil))
		require.NoError(t, err)
		require.Len(t, legacy, 1)
		assert.Equal(t, 120.0, legacy[0].Fields["duration"])

		window := From(CollectionTimeEntries).
			Where("start_time", OpGreaterOrEqual, base.Add(time.Hour)).
			Where("start_time", OpLess, base.Add(3*time.Hour))
		inRange, err := s.Query(ctx, window.OrderBy("start_time", Ascending))
		require.NoError(t, err)
		require.Len(t, inRange, 2)
		assert.Equal(t, base.Add(time.Hour), timeField(t, inRange[0].Fields["start_time"]))
		assert.Equal(t, []any{60.0, 90.0}, durations(inRange))

		page, err := s.Query(ctx, From(CollectionTimeEntries).OrderBy("start_time", Descending).Limit(2).Offset(1))
		require.NoError(t, err)
		assert.Equal(t, []any{90.0, 60.0}, durations(page))

		byDuration, err := s.Query(ctx, From(CollectionTimeEntries).Where("duration", OpEqual, 60))
		require.NoError(t, err)
		require.Len(t, byDuration, 1)
		assert.Equal(t, "u2", byDuration[0].Fields["owner_id"])

		_, err = s.Query(ctx, window.Where("owner_id", OpEqual, "u1"))
		assert.ErrorIs(t, err, ErrUnsupportedQuery)
	})

	t.Run("stream", func(t *testing.T) {
		seen := 0
		require.NoError(t, s.Stream(ctx, CollectionTimeEntries, func(Document) error {
			seen++
			return nil
		}))
		assert.Equal(t, 4, seen)

		n, err := DeleteAll(ctx, s, CollectionTimeEntries)
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		left, err := s.Query(ctx, From(CollectionTimeEntries))
		require.NoError(t, err)
		assert.Empty(t, left)
	})
}
