package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TimeLayout is how time values are written into JSONB. Fixed width so text order is time order.
const TimeLayout = "2006-01-02T15:04:05.000000"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore keeps every collection in one JSONB table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, wrapErr("ping", err)
	}
	return db, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: migrations source: %w", err)
	}
	drv, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("store: migrations driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		return fmt.Errorf("store: migrations init: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: migrations up: %w", err)
	}
	return nil
}

func wrapErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("store: %s: %s (%s): %w", op, pqErr.Message, pqErr.Code.Name(), err)
	}
	return fmt.Errorf("store: %s: %w", op, err)
}

func encodeValue(v any) any {
	v = normalize(v)
	if t, ok := v.(time.Time); ok {
		return t.Format(TimeLayout)
	}
	return v
}

func encodeFields(fields map[string]any) ([]byte, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = encodeValue(v)
	}
	return json.Marshal(out)
}

func decodeFields(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`, collection, id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapErr("get "+collection, err)
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, wrapErr("decode "+collection, err)
	}
	return &Document{ID: id, Fields: fields}, nil
}

// buildQuery renders q as SQL. Text comparisons use the C collation so encoded
// timestamps compare chronologically.
func buildQuery(q Query) (string, []any) {
	var sb strings.Builder
	args := []any{q.collection}
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	for _, f := range q.filters {
		field := next(f.Field)
		op := string(f.Op)
		if f.Op == OpEqual {
			op = "="
		}
		switch v := f.Value.(type) {
		case nil:
			fmt.Fprintf(&sb, ` AND (data->%s::text IS NULL OR data->%s::text = 'null'::jsonb)`, field, field)
		case float64:
			fmt.Fprintf(&sb, ` AND (data->>%s::text)::double precision %s %s`, field, op, next(v))
		case bool:
			fmt.Fprintf(&sb, ` AND (data->>%s::text)::boolean %s %s`, field, op, next(v))
		default:
			fmt.Fprintf(&sb, ` AND (data->>%s::text) COLLATE "C" %s %s`, field, op, next(encodeValue(v)))
		}
	}
	if q.orderBy != "" {
		dir := "ASC NULLS FIRST"
		if q.direction == Descending {
			dir = "DESC NULLS LAST"
		}
		fmt.Fprintf(&sb, ` ORDER BY (data->>%s::text) COLLATE "C" %s, id`, next(q.orderBy), dir)
	} else {
		sb.WriteString(` ORDER BY inserted_at, id`)
	}
	if q.limit > 0 {
		fmt.Fprintf(&sb, ` LIMIT %s`, next(q.limit))
	}
	if q.offset > 0 {
		fmt.Fprintf(&sb, ` OFFSET %s`, next(q.offset))
	}
	return sb.String(), args
}

func (s *PostgresStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	query, args := buildQuery(q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("query "+q.collection, err)
	}
	defer rows.Close()
	return scanDocuments(rows, q.collection)
}

func scanDocuments(rows *sql.Rows, collection string) ([]Document, error) {
	var out []Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, wrapErr("scan "+collection, err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, wrapErr("decode "+collection, err)
		}
		out = append(out, Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("rows "+collection, err)
	}
	return out, nil
}

func (s *PostgresStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	raw, err := encodeFields(fields)
	if err != nil {
		return "", wrapErr("encode "+collection, err)
	}
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`,
		collection, id, string(raw),
	); err != nil {
		return "", wrapErr("create "+collection, err)
	}
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := encodeFields(fields)
	if err != nil {
		return wrapErr("encode "+collection, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET data = data || $3::jsonb WHERE collection = $1 AND id = $2`,
		collection, id, string(raw),
	)
	if err != nil {
		return wrapErr("update "+collection, err)
	}
	return checkAffected(res, "update "+collection)
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return wrapErr("delete "+collection, err)
	}
	return checkAffected(res, "delete "+collection)
}

func checkAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Stream(ctx context.Context, collection string, fn func(Document) error) error {
	// Buffer the documents so fn may write to the same collection without holding the cursor open.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 ORDER BY inserted_at, id`, collection)
	if err != nil {
		return wrapErr("stream "+collection, err)
	}
	docs, err := scanDocuments(rows, collection)
	rows.Close()
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}
