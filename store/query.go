package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/modelkit/modelkit"
	"github.com/modelkit/modelkit/dialect/sql"
)

// Query selects rows of one table. Predicates added with Where are joined
// with AND. Without Order, rows come back in the order the database
// returns them.
type Query struct {
	table   *Table
	preds   []func(*sql.Selector)
	order   []string
	limit   *int
	offset  *int
	with    []string
	nocache bool
}

// Where adds predicates to the query.
func (q *Query) Where(preds ...func(*sql.Selector)) *Query {
	q.preds = append(q.preds, preds...)
	return q
}

// Order adds ORDER BY terms. Use sql.Asc and sql.Desc for the direction.
func (q *Query) Order(terms ...string) *Query {
	q.order = append(q.order, terms...)
	return q
}

// Limit limits the number of returned rows.
func (q *Query) Limit(n int) *Query {
	q.limit = &n
	return q
}

// Offset skips the first n rows.
func (q *Query) Offset(n int) *Query {
	q.offset = &n
	return q
}

// With loads the named edges on every returned row, and the edges those
// edges load eagerly.
func (q *Query) With(edges ...string) *Query {
	q.with = append(q.with, edges...)
	return q
}

// Clone returns a copy of the query.
func (q *Query) Clone() *Query {
	c := *q
	c.preds = slices.Clone(q.preds)
	c.order = append([]string(nil), q.order...)
	c.with = append([]string(nil), q.with...)
	return &c
}

func (q *Query) noCache() *Query {
	q.nocache = true
	return q
}

func (q *Query) selector(columns ...string) *sql.Selector {
	t := sql.Table(q.table.name)
	s := sql.Dialect(q.table.client.Dialect()).Select().From(t)
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = t.C(c)
	}
	s.Select(cols...)
	for _, p := range q.preds {
		p(s)
	}
	for _, term := range q.order {
		s.OrderBy(s.C(term))
	}
	if q.limit != nil {
		s.Limit(*q.limit)
	}
	if q.offset != nil {
		s.Offset(*q.offset)
	}
	return s
}

// All returns the matching rows.
func (q *Query) All(ctx context.Context) ([]*Row, error) {
	for _, name := range q.with {
		if _, ok := q.table.edges[name]; !ok {
			return nil, fmt.Errorf("store: %s has no edge %q", q.table.typ, name)
		}
	}
	s := q.selector(q.table.columns()...)
	query, args := s.Query()
	if err := s.Err(); err != nil {
		return nil, modelkit.NewQueryError(q.table.typ, "select", err)
	}
	useCache := q.table.client.cache != nil && !q.nocache && len(q.with) == 0
	if useCache {
		if rows, ok := q.table.cacheGet(ctx, q.cacheKey(query, args)); ok {
			return rows, nil
		}
	}
	rows, err := q.table.scan(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if useCache {
		q.table.cacheSet(ctx, q.cacheKey(query, args), rows)
	}
	if err := q.table.client.loadEdges(ctx, q.table, rows, q.with); err != nil {
		return nil, err
	}
	return rows, nil
}

// AllX is like All but panics on error.
func (q *Query) AllX(ctx context.Context) []*Row {
	rows, err := q.All(ctx)
	if err != nil {
		panic(err)
	}
	return rows
}

// First returns the first matching row, or a NotFoundError.
func (q *Query) First(ctx context.Context) (*Row, error) {
	rows, err := q.Clone().Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, modelkit.NewNotFoundError(q.table.typ)
	}
	return rows[0], nil
}

// Only returns the single matching row. It fails with a NotFoundError
// when no row matches and a NotSingularError when more than one does.
func (q *Query) Only(ctx context.Context) (*Row, error) {
	rows, err := q.Clone().Limit(2).All(ctx)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 1:
		return rows[0], nil
	case 0:
		return nil, modelkit.NewNotFoundError(q.table.typ)
	default:
		return nil, modelkit.NewNotSingularError(q.table.typ)
	}
}

// Count returns the number of matching rows.
func (q *Query) Count(ctx context.Context) (int, error) {
	s := q.selector().Count()
	query, args := s.Query()
	if err := s.Err(); err != nil {
		return 0, modelkit.NewQueryError(q.table.typ, "count", err)
	}
	rows := &sql.Rows{}
	if err := q.table.client.drv.Query(ctx, query, args, rows); err != nil {
		return 0, modelkit.NewQueryError(q.table.typ, "count", err)
	}
	n, err := sql.ScanInt(rows)
	if err != nil {
		return 0, modelkit.NewQueryError(q.table.typ, "count", err)
	}
	return n, nil
}

// Exist reports whether any row matches.
func (q *Query) Exist(ctx context.Context) (bool, error) {
	ids, err := q.Clone().Limit(1).IDs(ctx)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// IDs returns the ids of the matching rows.
func (q *Query) IDs(ctx context.Context) ([]int64, error) {
	s := q.selector(IDColumn)
	query, args := s.Query()
	if err := s.Err(); err != nil {
		return nil, modelkit.NewQueryError(q.table.typ, "ids", err)
	}
	rows := &sql.Rows{}
	if err := q.table.client.drv.Query(ctx, query, args, rows); err != nil {
		return nil, modelkit.NewQueryError(q.table.typ, "ids", err)
	}
	values, err := sql.ScanValues(rows)
	if err != nil {
		return nil, modelkit.NewQueryError(q.table.typ, "ids", err)
	}
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := toID(v[IDColumn])
		if err != nil {
			return nil, modelkit.NewQueryError(q.table.typ, "ids", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (q *Query) cacheKey(query string, args []any) string {
	key := modelkit.CacheKey{
		Table:      q.table.name,
		Operation:  "all",
		Predicates: query + fmt.Sprint(args),
		OrderBy:    fmt.Sprint(q.order),
	}
	if q.limit != nil {
		key.Limit = *q.limit
	}
	if q.offset != nil {
		key.Offset = *q.offset
	}
	return key.String()
}

// scan runs a select statement and converts the result to rows.
func (t *Table) scan(ctx context.Context, query string, args []any) ([]*Row, error) {
	rows := &sql.Rows{}
	if err := t.client.drv.Query(ctx, query, args, rows); err != nil {
		return nil, modelkit.NewQueryError(t.typ, "select", err)
	}
	values, err := sql.ScanValues(rows)
	if err != nil {
		return nil, modelkit.NewQueryError(t.typ, "select", err)
	}
	out := make([]*Row, 0, len(values))
	for _, v := range values {
		row, err := t.newRow(v)
		if err != nil {
			return nil, modelkit.NewQueryError(t.typ, "select", err)
		}
		out = append(out, row)
	}
	return out, nil
}
