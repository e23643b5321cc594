//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Run with: go test -tags integration ./internal/store/
// CHRONA_TEST_POSTGRES_URL and CHRONA_TEST_MONGO_URL point at disposable servers.

func TestPostgresStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("CHRONA_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("CHRONA_TEST_POSTGRES_URL not set")
	}
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Skipf("Skipping test: database not available: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db))

	s := NewPostgresStore(db)
	for _, c := range []string{CollectionTasks, CollectionTimeEntries} {
		_, err := DeleteAll(context.Background(), s, c)
		require.NoError(t, err)
	}
	exerciseStore(t, s)
}

func TestMongoStore_RoundTrip(t *testing.T) {
	uri := os.Getenv("CHRONA_TEST_MONGO_URL")
	if uri == "" {
		t.Skip("CHRONA_TEST_MONGO_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := OpenMongo(ctx, uri)
	if err != nil {
		t.Skipf("Skipping test: mongo not available: %v", err)
	}
	db := client.Database("chrona_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	s := NewMongoStore(db)
	require.NoError(t, s.EnsureIndexes(ctx))
	exerciseStore(t, s)
}
