package store

import (
	"fmt"
	"time"
)

type Operator string

const (
	OpEqual          Operator = "=="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
)

func (op Operator) isRange() bool {
	return op != OpEqual
}

type Direction int

const (
	Ascending Direction = iota
	Descending
)

type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Query describes a read against one collection. Build it with From and the chained setters.
type Query struct {
	collection string
	filters    []Filter
	orderBy    string
	direction  Direction
	limit      int
	offset     int
}

func From(collection string) Query {
	return Query{collection: collection}
}

func (q Query) Where(field string, op Operator, value any) Query {
	filters := make([]Filter, len(q.filters), len(q.filters)+1)
	copy(filters, q.filters)
	q.filters = append(filters, Filter{Field: field, Op: op, Value: normalize(value)})
	return q
}

func (q Query) OrderBy(field string, dir Direction) Query {
	q.orderBy = field
	q.direction = dir
	return q
}

func (q Query) Limit(n int) Query {
	q.limit = n
	return q
}

func (q Query) Offset(n int) Query {
	q.offset = n
	return q
}

func (q Query) Collection() string { return q.collection }

func (q Query) Filters() []Filter { return q.filters }

func (q Query) validate() error {
	if q.collection == "" {
		return fmt.Errorf("store: query without collection")
	}
	if q.limit < 0 || q.offset < 0 {
		return fmt.Errorf("store: negative limit or offset")
	}
	rangeField := ""
	for _, f := range q.filters {
		switch f.Op {
		case OpEqual, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual:
		default:
			return fmt.Errorf("store: unknown operator %q", f.Op)
		}
		if !f.Op.isRange() {
			continue
		}
		if rangeField != "" && rangeField != f.Field {
			return ErrUnsupportedQuery
		}
		rangeField = f.Field
	}
	if rangeField == "" {
		return nil
	}
	for _, f := range q.filters {
		if f.Field != rangeField {
			return ErrUnsupportedQuery
		}
	}
	if q.orderBy != "" && q.orderBy != rangeField {
		return ErrUnsupportedQuery
	}
	return nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case *float64:
		if t == nil {
			return nil
		}
		return *t
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	}
	return v
}

// compare orders two field values of the same type. ok is false when they are not comparable.
func compare(a, b any) (c int, ok bool) {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case bool:
		y, ok := b.(bool)
		if !ok || x != y {
			return 0, false
		}
		return 0, true
	}
	return 0, false
}

func (f Filter) matches(fields map[string]any) bool {
	v := fields[f.Field]
	if f.Value == nil || v == nil {
		return f.Op == OpEqual && f.Value == nil && v == nil
	}
	c, ok := compare(v, f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case OpEqual:
		return c == 0
	case OpLess:
		return c < 0
	case OpLessOrEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterOrEqual:
		return c >= 0
	}
	return false
}
