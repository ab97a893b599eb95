package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelkit/modelkit"
	"github.com/modelkit/modelkit/dialect"
	"github.com/modelkit/modelkit/dialect/sql"
	"github.com/modelkit/modelkit/dialect/sql/sqlgraph"
)

var (
	errImmutable = errors.New("store: field is immutable")
	errNotNull   = errors.New("store: field is not nillable")
)

// Mutation creates, updates or deletes rows of one table. It implements
// modelkit.Mutation, so hooks can read and rewrite its pending values.
type Mutation struct {
	table  *Table
	op     modelkit.Op
	id     *int64
	preds  []func(*sql.Selector)
	values map[string]modelkit.Value
	order  []string // field names in the order they were first set.
	err    error

	old     *Row
	oldDone bool
}

func newMutation(t *Table, op modelkit.Op) *Mutation {
	return &Mutation{table: t, op: op, values: make(map[string]modelkit.Value)}
}

// Op returns the operation of the mutation.
func (m *Mutation) Op() modelkit.Op { return m.op }

// Type returns the schema type name.
func (m *Mutation) Type() string { return m.table.typ }

// Table returns the table the mutation applies to.
func (m *Mutation) Table() *Table { return m.table }

// ID returns the id of the row an OpUpdateOne or OpDeleteOne mutation
// targets.
func (m *Mutation) ID() (int64, bool) {
	if m.id == nil {
		return 0, false
	}
	return *m.id, true
}

// Fields returns the names of the fields set on the mutation.
func (m *Mutation) Fields() []string {
	return append([]string(nil), m.order...)
}

// Field returns the pending value of a field and whether it was set.
func (m *Mutation) Field(name string) (modelkit.Value, bool) {
	v, ok := m.values[name]
	return v, ok
}

// SetField sets the pending value of a field. The value is converted to
// the field type. Unknown fields fail with a ValidationError, and so do
// immutable fields on update.
func (m *Mutation) SetField(name string, v modelkit.Value) error {
	d, ok := m.table.byName[name]
	if !ok {
		return modelkit.NewValidationError(name, modelkit.ErrUnknownField)
	}
	if d.Immutable && m.op.Is(modelkit.OpUpdate|modelkit.OpUpdateOne) {
		return modelkit.NewValidationError(name, errImmutable)
	}
	cv, err := d.Coerce(v)
	if err != nil {
		return modelkit.NewValidationError(name, err)
	}
	if cv == nil && !d.Nillable && !d.Optional {
		return modelkit.NewValidationError(name, errNotNull)
	}
	m.set(name, cv)
	return nil
}

// ClearField sets a nillable field to NULL.
func (m *Mutation) ClearField(name string) error {
	d, ok := m.table.byName[name]
	if !ok {
		return modelkit.NewValidationError(name, modelkit.ErrUnknownField)
	}
	if !d.Nillable {
		return modelkit.NewValidationError(name, errNotNull)
	}
	m.set(name, nil)
	return nil
}

func (m *Mutation) set(name string, v modelkit.Value) {
	if _, ok := m.values[name]; !ok {
		m.order = append(m.order, name)
	}
	m.values[name] = v
}

// Set is the chainable form of SetField. The first error is returned by
// Save or Exec.
func (m *Mutation) Set(name string, v modelkit.Value) *Mutation {
	if err := m.SetField(name, v); err != nil && m.err == nil {
		m.err = err
	}
	return m
}

// Clear is the chainable form of ClearField.
func (m *Mutation) Clear(name string) *Mutation {
	if err := m.ClearField(name); err != nil && m.err == nil {
		m.err = err
	}
	return m
}

// Where adds predicates to an OpUpdate or OpDelete mutation.
func (m *Mutation) Where(preds ...func(*sql.Selector)) *Mutation {
	m.preds = append(m.preds, preds...)
	return m
}

// OldField returns the stored value of a field. It is available on
// OpUpdateOne mutations only, and loads the row once.
func (m *Mutation) OldField(ctx context.Context, name string) (modelkit.Value, error) {
	if m.op != modelkit.OpUpdateOne || m.id == nil {
		return nil, fmt.Errorf("store: OldField is only allowed on UpdateOne operations")
	}
	if _, ok := m.table.byName[name]; !ok {
		return nil, modelkit.NewValidationError(name, modelkit.ErrUnknownField)
	}
	if !m.oldDone {
		old, err := m.table.Query().Where(sql.FieldEQ(IDColumn, *m.id)).noCache().Only(ctx)
		if err != nil {
			return nil, fmt.Errorf("store: querying old values: %w", err)
		}
		m.old, m.oldDone = old, true
	}
	v, _ := m.old.Value(name)
	return v, nil
}

// Save runs an OpCreate or OpUpdateOne mutation and returns the stored row.
func (m *Mutation) Save(ctx context.Context) (*Row, error) {
	if !m.op.Is(modelkit.OpCreate | modelkit.OpUpdateOne) {
		return nil, fmt.Errorf("store: Save is not supported on %s, use Exec", m.op)
	}
	v, err := m.run(ctx)
	if err != nil {
		return nil, err
	}
	row, ok := v.(*Row)
	if !ok {
		return nil, fmt.Errorf("store: unexpected mutation result %T", v)
	}
	return row, nil
}

// SaveX is like Save but panics on error.
func (m *Mutation) SaveX(ctx context.Context) *Row {
	row, err := m.Save(ctx)
	if err != nil {
		panic(err)
	}
	return row
}

// Exec runs the mutation and returns the number of affected rows.
func (m *Mutation) Exec(ctx context.Context) (int, error) {
	v, err := m.run(ctx)
	if err != nil {
		return 0, err
	}
	switch v := v.(type) {
	case *Row:
		return 1, nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("store: unexpected mutation result %T", v)
	}
}

func (m *Mutation) run(ctx context.Context) (modelkit.Value, error) {
	if m.err != nil {
		return nil, m.err
	}
	mut := m.table.chain().Hook()(modelkit.MutateFunc(func(ctx context.Context, mm modelkit.Mutation) (modelkit.Value, error) {
		if mm != modelkit.Mutation(m) {
			return nil, fmt.Errorf("store: unexpected mutation type %T", mm)
		}
		return m.exec(ctx)
	}))
	v, err := mut.Mutate(ctx, m)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (m *Mutation) exec(ctx context.Context) (modelkit.Value, error) {
	var (
		v   modelkit.Value
		err error
	)
	switch m.op {
	case modelkit.OpCreate:
		v, err = m.create(ctx)
	case modelkit.OpUpdateOne:
		v, err = m.updateOne(ctx)
	case modelkit.OpUpdate:
		v, err = m.update(ctx)
	case modelkit.OpDeleteOne, modelkit.OpDelete:
		v, err = m.delete(ctx)
	default:
		err = fmt.Errorf("store: unknown operation %s", m.op)
	}
	if err != nil {
		return nil, err
	}
	m.table.invalidate(ctx)
	return v, nil
}

func (m *Mutation) create(ctx context.Context) (*Row, error) {
	t := m.table
	var (
		columns []string
		values  []any
	)
	for _, f := range t.fields {
		v, ok := m.values[f.Name]
		if !ok {
			if v, ok = f.DefaultValue(); !ok {
				continue
			}
		}
		columns = append(columns, f.Name)
		values = append(values, v)
	}
	d := t.client.Dialect()
	insert := sql.Dialect(d).Insert(t.name).Columns(columns...)
	if len(columns) > 0 {
		insert.Values(values...)
	}
	if d == dialect.Postgres {
		insert.Returning(IDColumn)
	}
	query, args := insert.Query()
	if err := insert.Err(); err != nil {
		return nil, m.error(err)
	}
	var id int64
	if d == dialect.Postgres {
		rows := &sql.Rows{}
		if err := t.client.drv.Query(ctx, query, args, rows); err != nil {
			return nil, m.error(err)
		}
		n, err := sql.ScanInt64(rows)
		if err != nil {
			return nil, m.error(err)
		}
		id = n
	} else {
		var res sql.Result
		if err := t.client.drv.Exec(ctx, query, args, &res); err != nil {
			return nil, m.error(err)
		}
		n, err := res.LastInsertId()
		if err != nil {
			return nil, m.error(err)
		}
		id = n
	}
	return m.reload(ctx, id)
}

func (m *Mutation) updateOne(ctx context.Context) (*Row, error) {
	if len(m.values) > 0 {
		update := m.updateBuilder().Where(sql.EQ(IDColumn, *m.id))
		if _, err := m.execAffected(ctx, update); err != nil {
			return nil, err
		}
	}
	return m.reload(ctx, *m.id)
}

func (m *Mutation) update(ctx context.Context) (int, error) {
	if len(m.values) == 0 {
		return 0, nil
	}
	update := m.updateBuilder()
	if p := m.predicate(); p != nil {
		update.Where(p)
	}
	return m.execAffected(ctx, update)
}

func (m *Mutation) delete(ctx context.Context) (int, error) {
	del := sql.Dialect(m.table.client.Dialect()).Delete(m.table.name)
	if m.id != nil {
		del.Where(sql.EQ(IDColumn, *m.id))
	} else if p := m.predicate(); p != nil {
		del.Where(p)
	}
	n, err := m.execAffected(ctx, del)
	if err != nil {
		return 0, err
	}
	if m.op == modelkit.OpDeleteOne && n == 0 {
		return 0, modelkit.NewNotFoundErrorWithID(m.table.typ, *m.id)
	}
	return n, nil
}

func (m *Mutation) updateBuilder() *sql.UpdateBuilder {
	update := sql.Dialect(m.table.client.Dialect()).Update(m.table.name)
	for _, name := range m.order {
		if v := m.values[name]; v == nil {
			update.SetNull(name)
		} else {
			update.Set(name, v)
		}
	}
	return update
}

// predicate combines the selector predicates of the mutation.
func (m *Mutation) predicate() *sql.Predicate {
	if len(m.preds) == 0 {
		return nil
	}
	s := sql.Dialect(m.table.client.Dialect()).Select().From(sql.Table(m.table.name))
	for _, p := range m.preds {
		p(s)
	}
	return s.P()
}

func (m *Mutation) execAffected(ctx context.Context, b sql.Querier) (int, error) {
	query, args := b.Query()
	var res sql.Result
	if err := m.table.client.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, m.error(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, m.error(err)
	}
	return int(n), nil
}

func (m *Mutation) reload(ctx context.Context, id int64) (*Row, error) {
	row, err := m.table.Query().Where(sql.FieldEQ(IDColumn, id)).noCache().Only(ctx)
	if modelkit.IsNotFound(err) {
		return nil, modelkit.NewNotFoundErrorWithID(m.table.typ, id)
	}
	return row, err
}

// error wraps a driver error, classifying constraint violations.
func (m *Mutation) error(err error) error {
	if sqlgraph.IsConstraintError(err) {
		err = modelkit.NewConstraintError(err.Error(), err)
	}
	return modelkit.NewMutationError(m.table.typ, opName(m.op), err)
}

func opName(op modelkit.Op) string {
	switch op {
	case modelkit.OpCreate:
		return "create"
	case modelkit.OpUpdate, modelkit.OpUpdateOne:
		return "update"
	default:
		return "delete"
	}
}

var _ modelkit.Mutation = (*Mutation)(nil)
