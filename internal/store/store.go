// Package store is the document store the rest of the service talks to.
// Documents are flat field maps grouped into collections; ids are assigned by the store.
package store

import (
	"context"
	"errors"
)

const (
	CollectionUsers       = "users"
	CollectionTasks       = "tasks"
	CollectionTimeEntries = "time_entries"
)

var (
	ErrNotFound = errors.New("store: document not found")

	// ErrUnsupportedQuery is returned for a range filter combined with a filter or
	// ordering on a different field. Callers narrow by range first and filter the
	// rest in memory.
	ErrUnsupportedQuery = errors.New("store: range filter cannot be combined with filters on other fields")
)

// Document is a stored record. Field values are nil, string, float64, bool or time.Time.
type Document struct {
	ID     string
	Fields map[string]any
}

type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, q Query) ([]Document, error)
	// Create stores fields under a new store-assigned id and returns that id.
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// Stream calls fn for every document in collection until fn returns an error.
	Stream(ctx context.Context, collection string, fn func(Document) error) error
}

// DeleteAll streams collection and deletes each document, returning how many
// were removed.
func DeleteAll(ctx context.Context, s Store, collection string) (int, error) {
	n := 0
	err := s.Stream(ctx, collection, func(doc Document) error {
		if err := s.Delete(ctx, collection, doc.ID); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}
