package sql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelkit/modelkit/dialect"
)

// Querier wraps the basic Query method that is implemented
// by the different builders in this file.
type Querier interface {
	// Query returns the query representation of the element
	// and its arguments (if any).
	Query() (string, []any)
}

// Builder is the base query builder for the sql dsl. It writes the SQL
// text, collects the arguments and numbers the placeholders of the
// dialect.
type Builder struct {
	sb      *strings.Builder
	args    []any
	total   int
	dialect string
	errs    []error
}

func (b *Builder) init() {
	if b.sb == nil {
		b.sb = &strings.Builder{}
	}
}

// SetDialect sets the builder dialect. It's used for garnering dialect
// specific queries.
func (b *Builder) SetDialect(dialect string) {
	b.dialect = dialect
}

// Dialect returns the dialect of the builder.
func (b Builder) Dialect() string {
	return b.dialect
}

// Quote quotes the given identifier with the characters of the dialect.
func (b *Builder) Quote(ident string) string {
	quote := `"`
	if b.dialect == dialect.MySQL {
		quote = "`"
	}
	return quote + strings.ReplaceAll(ident, quote, quote+quote) + quote
}

// Ident appends the given string as an identifier. A qualified name
// (table.column) is quoted part by part and "*" is kept as is.
func (b *Builder) Ident(s string) *Builder {
	b.init()
	switch {
	case s == "" || s == "*":
		b.sb.WriteString(s)
	case strings.Contains(s, "."):
		parts := strings.Split(s, ".")
		for i, p := range parts {
			if i > 0 {
				b.sb.WriteByte('.')
			}
			if p == "*" {
				b.sb.WriteString(p)
			} else {
				b.sb.WriteString(b.Quote(p))
			}
		}
	default:
		b.sb.WriteString(b.Quote(s))
	}
	return b
}

// IdentComma calls Ident on all arguments and adds a comma between them.
func (b *Builder) IdentComma(s ...string) *Builder {
	for i := range s {
		if i > 0 {
			b.Comma()
		}
		b.Ident(s[i])
	}
	return b
}

// WriteString writes the given string as is.
func (b *Builder) WriteString(s string) *Builder {
	b.init()
	b.sb.WriteString(s)
	return b
}

// WriteChar writes a single byte. It returns the builder for chaining.
func (b *Builder) WriteChar(c byte) *Builder {
	b.init()
	b.sb.WriteByte(c)
	return b
}

// Pad adds a space to the query.
func (b *Builder) Pad() *Builder {
	return b.WriteChar(' ')
}

// Comma adds a comma to the query.
func (b *Builder) Comma() *Builder {
	return b.WriteString(", ")
}

// Arg appends an input argument to the builder and writes its placeholder.
func (b *Builder) Arg(a any) *Builder {
	b.total++
	b.args = append(b.args, a)
	if b.dialect == dialect.Postgres {
		return b.WriteString("$" + strconv.Itoa(b.total))
	}
	return b.WriteChar('?')
}

// Args appends a list of arguments to the builder.
func (b *Builder) Args(a ...any) *Builder {
	for i := range a {
		if i > 0 {
			b.Comma()
		}
		b.Arg(a[i])
	}
	return b
}

// Wrap gets a callback, and wraps its result with parentheses.
func (b *Builder) Wrap(f func(*Builder)) *Builder {
	b.WriteChar('(')
	f(b)
	return b.WriteChar(')')
}

// AddError appends an error to the builder errors.
func (b *Builder) AddError(err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Err returns a concatenated error of all errors encountered during
// the query-building, or were added manually by calling AddError.
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// String returns the accumulated string.
func (b *Builder) String() string {
	if b.sb == nil {
		return ""
	}
	return b.sb.String()
}

// Query implements the Querier interface.
func (b *Builder) Query() (string, []any) {
	return b.String(), b.args
}

// DialectBuilder prefixes all root builders with the Dialect method.
//
//	Dialect(dialect.Postgres).
//		Select("id", "slug").
//		From(Table("posts")).
//		Where(EQ("lang", "en"))
type DialectBuilder struct {
	dialect string
}

// Dialect creates a new DialectBuilder with the given dialect name.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{name}
}

// Select creates a Selector for the configured dialect.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	s := Select(columns...)
	s.SetDialect(d.dialect)
	return s
}

// Insert creates an InsertBuilder for the configured dialect.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	i := Insert(table)
	i.SetDialect(d.dialect)
	return i
}

// Update creates an UpdateBuilder for the configured dialect.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	u := Update(table)
	u.SetDialect(d.dialect)
	return u
}

// Delete creates a DeleteBuilder for the configured dialect.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	del := Delete(table)
	del.SetDialect(d.dialect)
	return del
}

// SelectTable is a table reference used in FROM clauses.
type SelectTable struct {
	name string
}

// Table returns a new table selector.
func Table(name string) *SelectTable {
	return &SelectTable{name: name}
}

// Name returns the table name.
func (t *SelectTable) Name() string { return t.name }

// C returns a formatted string for the table column.
func (t *SelectTable) C(column string) string {
	return t.name + "." + column
}

// Order directions appended by Asc and Desc.
const (
	orderAsc  = " ASC"
	orderDesc = " DESC"
)

// Asc adds the ASC suffix for the given column.
func Asc(column string) string { return column + orderAsc }

// Desc adds the DESC suffix for the given column.
func Desc(column string) string { return column + orderDesc }

// Selector is a builder for the `SELECT` statement.
type Selector struct {
	Builder
	columns []string
	from    *SelectTable
	where   []*Predicate
	order   []string
	limit   *int
	offset  *int
	count   bool
}

// Select returns a new selector for the `SELECT` statement.
//
//	t := sql.Table("posts")
//	s := sql.Select(t.C("id"), t.C("slug")).
//		From(t).
//		Where(sql.EQ(t.C("is_active"), true))
func Select(columns ...string) *Selector {
	return &Selector{columns: columns}
}

// Select changes the columns selection of the SELECT statement.
func (s *Selector) Select(columns ...string) *Selector {
	s.columns = columns
	s.count = false
	return s
}

// Columns returns the selected columns.
func (s *Selector) Columns() []string {
	return append([]string(nil), s.columns...)
}

// From sets the source of `FROM` clause.
func (s *Selector) From(t *SelectTable) *Selector {
	s.from = t
	return s
}

// Table returns the selected table.
func (s *Selector) Table() *SelectTable {
	return s.from
}

// C returns a formatted string for a selected column of this statement.
func (s *Selector) C(column string) string {
	if s.from == nil || strings.Contains(column, ".") {
		return column
	}
	return s.from.C(column)
}

// Where sets or appends the given predicate to the statement.
// Successive calls are joined with AND.
func (s *Selector) Where(p *Predicate) *Selector {
	if p != nil {
		s.where = append(s.where, p)
	}
	return s
}

// P returns the predicate of the statement, or nil.
func (s *Selector) P() *Predicate {
	switch len(s.where) {
	case 0:
		return nil
	case 1:
		return s.where[0]
	default:
		return And(s.where...)
	}
}

// OrderBy appends the `ORDER BY` clause to the `SELECT` statement.
// Terms built with Desc sort descending.
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.order = append(s.order, columns...)
	return s
}

// Limit adds the `LIMIT` clause to the `SELECT` statement.
func (s *Selector) Limit(limit int) *Selector {
	s.limit = &limit
	return s
}

// Offset adds the `OFFSET` clause to the `SELECT` statement.
func (s *Selector) Offset(offset int) *Selector {
	s.offset = &offset
	return s
}

// Count sets the Select statement to be a `SELECT COUNT(*)`.
func (s *Selector) Count() *Selector {
	s.count = true
	return s
}

// Clone returns a duplicate of the selector. Predicates are shared.
func (s *Selector) Clone() *Selector {
	c := *s
	c.Builder = Builder{dialect: s.dialect}
	c.columns = append([]string(nil), s.columns...)
	c.order = append([]string(nil), s.order...)
	c.where = append([]*Predicate(nil), s.where...)
	return &c
}

// Query returns query representation of a `SELECT` statement.
func (s *Selector) Query() (string, []any) {
	b := &Builder{dialect: s.dialect}
	b.WriteString("SELECT ")
	switch {
	case s.count:
		b.WriteString("COUNT(*)")
	case len(s.columns) == 0:
		b.WriteString("*")
	default:
		b.IdentComma(s.columns...)
	}
	if s.from == nil {
		b.AddError(fmt.Errorf("sql: missing FROM clause"))
	} else {
		b.WriteString(" FROM ").Ident(s.from.name)
	}
	writeWhere(b, s.where)
	if len(s.order) > 0 && !s.count {
		b.WriteString(" ORDER BY ")
		for i, term := range s.order {
			if i > 0 {
				b.Comma()
			}
			switch {
			case strings.HasSuffix(term, orderDesc):
				b.Ident(strings.TrimSuffix(term, orderDesc)).WriteString(orderDesc)
			case strings.HasSuffix(term, orderAsc):
				b.Ident(strings.TrimSuffix(term, orderAsc)).WriteString(orderAsc)
			default:
				b.Ident(term)
			}
		}
	}
	if s.limit != nil {
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(*s.limit))
	}
	if s.offset != nil {
		// MySQL and SQLite accept OFFSET only after a LIMIT clause.
		if s.limit == nil {
			switch s.dialect {
			case dialect.MySQL:
				b.WriteString(" LIMIT 18446744073709551615")
			case dialect.Postgres:
			default:
				b.WriteString(" LIMIT -1")
			}
		}
		b.WriteString(" OFFSET ").WriteString(strconv.Itoa(*s.offset))
	}
	s.errs = b.errs
	return b.Query()
}

// InsertBuilder is a builder for `INSERT INTO` statement.
type InsertBuilder struct {
	Builder
	table     string
	columns   []string
	values    [][]any
	returning []string
}

// Insert creates a builder for the `INSERT INTO` statement.
//
//	Insert("posts").
//		Columns("title", "slug").
//		Values("Hello World", "hello-world")
func Insert(table string) *InsertBuilder { return &InsertBuilder{table: table} }

// Columns sets the columns of the insert statement.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Values append a value tuple for the insert statement.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values)
	return i
}

// Returning adds the `RETURNING` clause to the insert statement.
// It is emitted for Postgres only; the other dialects report the
// inserted id through the statement result.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

// Query returns query representation of an `INSERT INTO` statement.
func (i *InsertBuilder) Query() (string, []any) {
	b := &Builder{dialect: i.dialect}
	b.WriteString("INSERT INTO ").Ident(i.table).Pad()
	if len(i.columns) == 0 {
		if i.dialect == dialect.MySQL {
			b.WriteString("VALUES ()")
		} else {
			b.WriteString("DEFAULT VALUES")
		}
	} else {
		b.Wrap(func(b *Builder) { b.IdentComma(i.columns...) })
		b.WriteString(" VALUES ")
		for j, v := range i.values {
			if j > 0 {
				b.Comma()
			}
			if len(v) != len(i.columns) {
				b.AddError(fmt.Errorf("sql: insert row %d has %d values for %d columns", j, len(v), len(i.columns)))
			}
			b.Wrap(func(b *Builder) { b.Args(v...) })
		}
	}
	if len(i.returning) > 0 && i.dialect == dialect.Postgres {
		b.WriteString(" RETURNING ").IdentComma(i.returning...)
	}
	i.errs = b.errs
	return b.Query()
}

// UpdateBuilder is a builder for `UPDATE` statement.
type UpdateBuilder struct {
	Builder
	table   string
	columns []string
	values  []any
	nulls   []string
	where   []*Predicate
}

// Update creates a builder for the `UPDATE` statement.
//
//	Update("posts").Set("is_active", false).Where(EQ("id", 1))
func Update(table string) *UpdateBuilder { return &UpdateBuilder{table: table} }

// Set sets a column to a given value.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// SetNull sets a column as null value.
func (u *UpdateBuilder) SetNull(column string) *UpdateBuilder {
	u.nulls = append(u.nulls, column)
	return u
}

// Where adds a where predicate for update statement.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	if p != nil {
		u.where = append(u.where, p)
	}
	return u
}

// Empty reports whether this builder does not contain update changes.
func (u *UpdateBuilder) Empty() bool {
	return len(u.columns) == 0 && len(u.nulls) == 0
}

// Query returns query representation of an `UPDATE` statement.
func (u *UpdateBuilder) Query() (string, []any) {
	b := &Builder{dialect: u.dialect}
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	if u.Empty() {
		b.AddError(fmt.Errorf("sql: update %s without changes", u.table))
	}
	for i, c := range u.nulls {
		if i > 0 {
			b.Comma()
		}
		b.Ident(c).WriteString(" = NULL")
	}
	if len(u.nulls) > 0 && len(u.columns) > 0 {
		b.Comma()
	}
	for i, c := range u.columns {
		if i > 0 {
			b.Comma()
		}
		b.Ident(c).WriteString(" = ").Arg(u.values[i])
	}
	writeWhere(b, u.where)
	u.errs = b.errs
	return b.Query()
}

// DeleteBuilder is a builder for `DELETE` statement.
type DeleteBuilder struct {
	Builder
	table string
	where []*Predicate
}

// Delete creates a builder for the `DELETE` statement.
//
//	Delete("posts").Where(EQ("lang", "fr"))
func Delete(table string) *DeleteBuilder { return &DeleteBuilder{table: table} }

// Where appends a where predicate to the `DELETE` statement.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	if p != nil {
		d.where = append(d.where, p)
	}
	return d
}

// Query returns query representation of a `DELETE` statement.
func (d *DeleteBuilder) Query() (string, []any) {
	b := &Builder{dialect: d.dialect}
	b.WriteString("DELETE FROM ").Ident(d.table)
	writeWhere(b, d.where)
	return b.Query()
}

// writeWhere writes the WHERE clause joining the predicates with AND.
func writeWhere(b *Builder, preds []*Predicate) {
	if len(preds) == 0 {
		return
	}
	b.WriteString(" WHERE ")
	for i, p := range preds {
		if i > 0 {
			b.WriteString(" AND ")
		}
		p.build(b)
	}
}

var (
	_ Querier = (*Selector)(nil)
	_ Querier = (*InsertBuilder)(nil)
	_ Querier = (*UpdateBuilder)(nil)
	_ Querier = (*DeleteBuilder)(nil)
)
