package store

import (
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/modelkit/modelkit"
)

// Row is a stored row of a table. Field values are converted to the Go
// type of their field; NULL is nil.
type Row struct {
	table  *Table
	id     int64
	values map[string]modelkit.Value
	edges  map[string][]*Row
}

func (t *Table) newRow(values map[string]any) (*Row, error) {
	id, err := toID(values[IDColumn])
	if err != nil {
		return nil, err
	}
	r := &Row{table: t, id: id, values: make(map[string]modelkit.Value, len(t.fields))}
	for _, f := range t.fields {
		v, err := f.Coerce(values[f.Name])
		if err != nil {
			return nil, err
		}
		r.values[f.Name] = v
	}
	return r, nil
}

func toID(v any) (int64, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	}
	return 0, fmt.Errorf("store: unexpected id type %T", v)
}

// ID returns the primary key of the row.
func (r *Row) ID() int64 { return r.id }

// Type returns the schema type name of the row.
func (r *Row) Type() string { return r.table.typ }

// Table returns the table of the row.
func (r *Row) Table() *Table { return r.table }

// Value returns the value of a field and whether the field is declared.
func (r *Row) Value(name string) (modelkit.Value, bool) {
	if name == IDColumn {
		return r.id, true
	}
	v, ok := r.values[name]
	return v, ok
}

// Values returns a copy of the field values of the row.
func (r *Row) Values() map[string]modelkit.Value {
	return maps.Clone(r.values)
}

// String returns the value of a string field, or "" when it is NULL.
func (r *Row) String(name string) string {
	s, _ := r.values[name].(string)
	return s
}

// Bool returns the value of a bool field, or false when it is NULL.
func (r *Row) Bool(name string) bool {
	b, _ := r.values[name].(bool)
	return b
}

// Int64 returns the value of an int64 field, or 0 when it is NULL.
func (r *Row) Int64(name string) int64 {
	n, _ := r.values[name].(int64)
	return n
}

// Time returns the value of a time field, or the zero time when it is NULL.
func (r *Row) Time(name string) time.Time {
	t, _ := r.values[name].(time.Time)
	return t
}

// IsNull reports whether a field is NULL.
func (r *Row) IsNull(name string) bool {
	v, ok := r.values[name]
	return ok && v == nil
}

// fk returns the foreign key stored in column, if any.
func (r *Row) fk(column string) (int64, bool) {
	n, ok := r.values[column].(int64)
	return n, ok
}

// Edge returns the rows of an edge loaded with Query.With. It fails with a
// NotLoadedError when the edge was not loaded.
func (r *Row) Edge(name string) ([]*Row, error) {
	rows, ok := r.edges[name]
	if !ok {
		return nil, modelkit.NewNotLoadedError(name)
	}
	return rows, nil
}

// EdgeOne returns the single row of a loaded edge, or nil when the edge is
// empty.
func (r *Row) EdgeOne(name string) (*Row, error) {
	rows, err := r.Edge(name)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	default:
		return nil, modelkit.NewNotSingularErrorWithCount(r.table.typ, len(rows))
	}
}

// QueryEdge returns a query over the rows the named edge points at.
func (r *Row) QueryEdge(name string) (*Query, error) {
	return r.table.QueryEdge(r, name)
}

// Update returns a mutation updating the row.
func (r *Row) Update() *Mutation {
	return r.table.UpdateOne(r)
}

// Delete returns a mutation deleting the row.
func (r *Row) Delete() *Mutation {
	return r.table.DeleteOne(r)
}

func (r *Row) setEdge(name string, rows []*Row) {
	if r.edges == nil {
		r.edges = make(map[string][]*Row)
	}
	if rows == nil {
		rows = []*Row{}
	}
	r.edges[name] = rows
}
