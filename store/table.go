package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelkit/modelkit"
	"github.com/modelkit/modelkit/dialect/sql"
	"github.com/modelkit/modelkit/schema/edge"
	"github.com/modelkit/modelkit/schema/field"
)

// Table is a registered schema.
type Table struct {
	client    *Client
	typ       string
	name      string
	fields    []*field.Descriptor
	byName    map[string]*field.Descriptor
	edges     map[string]*edge.Descriptor
	edgeNames []string
	hooks     []modelkit.Hook // mixin hooks, then schema hooks.

	mu  sync.RWMutex
	use []modelkit.Hook
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Type returns the schema type name.
func (t *Table) Type() string { return t.typ }

// Client returns the client the table is registered on.
func (t *Table) Client() *Client { return t.client }

// Fields returns the declared field names in declaration order, mixin
// fields first. The id column is not included.
func (t *Table) Fields() []string {
	names := make([]string, len(t.fields))
	for i, f := range t.fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the descriptor of the named field.
func (t *Table) Field(name string) (*field.Descriptor, bool) {
	d, ok := t.byName[name]
	return d, ok
}

// Edges returns the declared edge names in declaration order.
func (t *Table) Edges() []string {
	return append([]string(nil), t.edgeNames...)
}

// Edge returns the descriptor of the named edge.
func (t *Table) Edge(name string) (*edge.Descriptor, bool) {
	d, ok := t.edges[name]
	return d, ok
}

// Use adds hooks that run after the schema hooks on every mutation of
// the table.
func (t *Table) Use(hooks ...modelkit.Hook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.use = append(t.use, hooks...)
}

// OnBeforeCreate registers fn to run before rows are created.
func (t *Table) OnBeforeCreate(fn func(context.Context, modelkit.Mutation) error) {
	t.Use(modelkit.Before(modelkit.OpCreate, fn))
}

// OnBeforeUpdate registers fn to run before rows are updated.
func (t *Table) OnBeforeUpdate(fn func(context.Context, modelkit.Mutation) error) {
	t.Use(modelkit.Before(modelkit.OpUpdate|modelkit.OpUpdateOne, fn))
}

func (t *Table) chain() modelkit.Chain {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return modelkit.NewChain(t.hooks...).Append(t.use...)
}

// Create returns a mutation creating one row.
func (t *Table) Create() *Mutation {
	return newMutation(t, modelkit.OpCreate)
}

// UpdateOne returns a mutation updating the given row.
func (t *Table) UpdateOne(row *Row) *Mutation {
	return t.UpdateOneID(row.ID())
}

// UpdateOneID returns a mutation updating the row with the given id.
func (t *Table) UpdateOneID(id int64) *Mutation {
	m := newMutation(t, modelkit.OpUpdateOne)
	m.id = &id
	return m
}

// Update returns a mutation updating every row matching preds.
func (t *Table) Update(preds ...func(*sql.Selector)) *Mutation {
	return newMutation(t, modelkit.OpUpdate).Where(preds...)
}

// DeleteOne returns a mutation deleting the given row.
func (t *Table) DeleteOne(row *Row) *Mutation {
	return t.DeleteOneID(row.ID())
}

// DeleteOneID returns a mutation deleting the row with the given id.
func (t *Table) DeleteOneID(id int64) *Mutation {
	m := newMutation(t, modelkit.OpDeleteOne)
	m.id = &id
	return m
}

// Delete returns a mutation deleting every row matching preds.
func (t *Table) Delete(preds ...func(*sql.Selector)) *Mutation {
	return newMutation(t, modelkit.OpDelete).Where(preds...)
}

// Query returns a query over the rows of the table.
func (t *Table) Query() *Query {
	return &Query{table: t}
}

// Get returns the row with the given id.
func (t *Table) Get(ctx context.Context, id int64) (*Row, error) {
	row, err := t.Query().Where(sql.FieldEQ(IDColumn, id)).Only(ctx)
	if modelkit.IsNotFound(err) {
		return nil, modelkit.NewNotFoundErrorWithID(t.typ, id)
	}
	return row, err
}

// QueryEdge returns a query over the rows the named edge of row points
// at. The edges the edge loads eagerly are loaded on the result.
func (t *Table) QueryEdge(row *Row, name string) (*Query, error) {
	e, ok := t.edges[name]
	if !ok {
		return nil, fmt.Errorf("store: %s has no edge %q", t.typ, name)
	}
	target, err := t.target(e)
	if err != nil {
		return nil, err
	}
	q := target.Query().With(e.Eager...)
	if e.Inverse() {
		fk, ok := row.fk(e.Field)
		if !ok {
			return q.Where(func(s *sql.Selector) { s.Where(sql.False()) }), nil
		}
		return q.Where(sql.FieldEQ(IDColumn, fk)), nil
	}
	return q.Where(sql.FieldEQ(e.Field, row.ID())), nil
}

// target returns the table an edge points at.
func (t *Table) target(e *edge.Descriptor) (*Table, error) {
	if e.Self() {
		return t, nil
	}
	target, ok := t.client.Table(e.Type)
	if !ok {
		return nil, fmt.Errorf("store: %s edge %q points at unregistered type %s", t.typ, e.Name, e.Type)
	}
	return target, nil
}

// columns returns the selected columns, id first.
func (t *Table) columns() []string {
	cols := make([]string, 0, len(t.fields)+1)
	cols = append(cols, IDColumn)
	for _, f := range t.fields {
		cols = append(cols, f.Name)
	}
	return cols
}

// cachePrefix is the prefix of every cache key of the table.
func (t *Table) cachePrefix() string { return t.name + ":" }

// invalidate drops the cached results of the table.
func (t *Table) invalidate(ctx context.Context) {
	c := t.client
	if c.cache == nil {
		return
	}
	if err := c.cache.DeletePrefix(ctx, t.cachePrefix()); err != nil {
		c.log.WarnContext(ctx, "store: cache invalidation failed", "table", t.name, "error", err)
	}
}
